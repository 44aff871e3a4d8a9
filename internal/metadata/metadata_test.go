package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xsj/sql-analyzer/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_CSVListing(t *testing.T) {
	path := writeFile(t, "catalog.csv", "Table Name,Column,Type,Notes\n"+
		"users,id,integer,\n"+
		"users, name ,,\n"+
		",orphan,integer,\n"+
		"orders,id\n")

	metadata, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, model.TableMetadata{
		"users": {
			{Name: "id", DataType: "integer"},
			{Name: "name", DataType: "unknown"},
		},
		"orders": {
			{Name: "id", DataType: "unknown"},
		},
	}, metadata)
}

func TestLoad_CSVSchemaSheet(t *testing.T) {
	path := writeFile(t, "customers.csv", "id,code,score,active,joined,signup,notes\n"+
		"1,007,1.5,true,2024-01-02 10:00:00,2024-01-02,hello\n"+
		"2,010,2,false,2024-02-03T04:05:06Z,03/04/2024,hi there\n")

	metadata, err := Load(path)
	require.NoError(t, err)
	require.Contains(t, metadata, "customers")

	types := make(map[string]string)
	for _, field := range metadata["customers"] {
		types[field.Name] = field.DataType
		assert.Equal(t, "Field from customers sheet", field.Description)
	}

	assert.Equal(t, map[string]string{
		"id":     "integer",
		"code":   "numeric_string",
		"score":  "float",
		"active": "boolean",
		"joined": "datetime",
		"signup": "date_string",
		"notes":  "varchar(8)",
	}, types)
}

func TestLoad_Documents(t *testing.T) {
	jsonPath := writeFile(t, "meta.json",
		`{"users": [{"name": "id", "data_type": "integer", "description": "PK"}, {"name": "email"}]}`)
	yamlPath := writeFile(t, "meta.yaml", `
users:
  - name: id
    data_type: integer
    description: PK
  - name: email
`)

	expected := model.TableMetadata{
		"users": {
			{Name: "id", DataType: "integer", Description: "PK"},
			{Name: "email", DataType: "unknown"},
		},
	}

	for _, path := range []string{jsonPath, yamlPath} {
		metadata, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, expected, metadata)
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "meta.txt", "x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(writeFile(t, "empty.csv", "table_name,field_name\n"))
	assert.ErrorIs(t, err, ErrNoMetadata)

	_, err = Load(writeFile(t, "broken.json", "{"))
	assert.ErrorContains(t, err, "error parsing metadata file")

	_, err = Load(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestWriteSample_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.xlsx")
	require.NoError(t, WriteSample(path))

	metadata, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"order_items", "orders", "users"}, TableNames(metadata))
	assert.Equal(t, []model.FieldMetadata{
		{Name: "user_id", DataType: "integer", Description: "Primary key"},
		{Name: "username", DataType: "varchar(50)", Description: "User login name"},
	}, metadata["users"])
}

func TestParseSheet_HeaderAliases(t *testing.T) {
	rows := [][]string{
		{"TABLE_NM", "FieldSQL", "DataType", "Remarks"},
		{"accounts", "balance", "decimal(10,2)", "Current balance"},
	}

	metadata := ParseSheet("ignored", rows)
	assert.Equal(t, model.TableMetadata{
		"accounts": {{Name: "balance", DataType: "decimal(10,2)", Description: "Current balance"}},
	}, metadata)

	assert.Empty(t, ParseSheet("empty", nil))
}

func TestInferDataType(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected string
	}{
		{"all blank", []string{"", "  "}, "unknown"},
		{"integers with blanks", []string{"1", "", "-20"}, "integer"},
		{"floats", []string{"1", "2.5"}, "float"},
		{"leading zero", []string{"0012", "45"}, "numeric_string"},
		{"zero is an integer", []string{"0", "0"}, "integer"},
		{"words are not numbers", []string{"inf", "nan"}, "varchar(3)"},
		{"booleans", []string{"TRUE", "false"}, "boolean"},
		{"mixed dates", []string{"2024-01-02", "15-Mar-2023"}, "date_string"},
		{"long text", []string{strings.Repeat("x", 300)}, "text"},
		{"short text", []string{"ab", "abcd"}, "varchar(4)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferDataType(tt.values))
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		report := Validate(model.TableMetadata{})
		assert.False(t, report.IsValid)
		assert.Equal(t, []string{"No tables found in the metadata", "No fields found in any table"}, report.Errors)
	})

	t.Run("table without fields", func(t *testing.T) {
		report := Validate(model.TableMetadata{
			"users": {{Name: "id", DataType: "integer"}, {Name: "name"}},
			"audit": {},
		})
		assert.True(t, report.IsValid)
		assert.Equal(t, []string{"Table 'audit' has no fields"}, report.Warnings)
		assert.Equal(t, []string{"audit"}, report.Summary.TablesWithNoFields)
		assert.Equal(t, 2, report.Summary.TotalTables)
		assert.Equal(t, 2, report.Summary.TotalFields)
		assert.Equal(t, map[string]int{"integer": 1, "unknown": 1}, report.Summary.DataTypeDistribution)
	})
}

func TestMerge(t *testing.T) {
	base := model.TableMetadata{"users": {{Name: "id"}}, "orders": {{Name: "id"}}}
	overlay := model.TableMetadata{"users": {{Name: "uid"}}}

	merged := Merge(base, overlay)
	assert.Equal(t, "uid", merged["users"][0].Name)
	assert.Contains(t, merged, "orders")

	assert.Equal(t, overlay, Merge(nil, overlay))
}
