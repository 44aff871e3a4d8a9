// internal/metadata/sheet.go
package metadata

import (
	"strings"

	"github.com/0xsj/sql-analyzer/internal/model"
)

type columnRole string

const (
	roleTable       columnRole = "table_name"
	roleField       columnRole = "field_name"
	roleType        columnRole = "data_type"
	roleDescription columnRole = "description"
)

// headerAliases are matched as substrings of the lower-cased header. The
// first header containing any alias of a role takes that role.
var headerAliases = []struct {
	role    columnRole
	aliases []string
}{
	{roleTable, []string{"table_name", "table", "tablename", "table_nm"}},
	{roleField, []string{"field_name", "field", "column", "column_name", "fieldname", "fieldsql"}},
	{roleType, []string{"data_type", "datatype", "type", "field_type"}},
	{roleDescription, []string{"description", "desc", "comment", "remarks"}},
}

func mapColumns(headers []string) map[columnRole]int {
	mapping := make(map[columnRole]int)
	for _, entry := range headerAliases {
		for idx, header := range headers {
			if headerMatches(header, entry.aliases) {
				mapping[entry.role] = idx
				break
			}
		}
	}
	return mapping
}

func headerMatches(header string, aliases []string) bool {
	for _, alias := range aliases {
		if strings.Contains(header, alias) {
			return true
		}
	}
	return false
}

// ParseSheet turns the rows of one sheet (header row first) into metadata. A
// sheet with table and field columns is a metadata listing grouped by table.
// Any other sheet describes a single table named after the sheet, whose
// columns are the fields.
func ParseSheet(sheet string, rows [][]string) model.TableMetadata {
	if len(rows) == 0 {
		return model.TableMetadata{}
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	mapping := mapColumns(headers)
	_, hasTable := mapping[roleTable]
	_, hasField := mapping[roleField]
	if !hasTable || !hasField {
		return parseSchemaSheet(sheet, rows)
	}
	return parseListingSheet(rows[1:], mapping)
}

func parseListingSheet(rows [][]string, mapping map[columnRole]int) model.TableMetadata {
	metadata := make(model.TableMetadata)

	for _, row := range rows {
		table := cell(row, mapping[roleTable])
		field := cell(row, mapping[roleField])
		if table == "" || field == "" {
			continue
		}

		dataType := unknownType
		if idx, ok := mapping[roleType]; ok {
			if v := cell(row, idx); v != "" {
				dataType = v
			}
		}

		var description string
		if idx, ok := mapping[roleDescription]; ok {
			description = cell(row, idx)
		}

		metadata[table] = append(metadata[table], model.FieldMetadata{
			Name:        field,
			DataType:    dataType,
			Description: description,
		})
	}

	return metadata
}

func parseSchemaSheet(sheet string, rows [][]string) model.TableMetadata {
	table := strings.TrimSpace(sheet)
	header := rows[0]
	fields := make([]model.FieldMetadata, 0, len(header))

	for idx, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		values := make([]string, 0, len(rows)-1)
		for _, row := range rows[1:] {
			values = append(values, cell(row, idx))
		}

		fields = append(fields, model.FieldMetadata{
			Name:        name,
			DataType:    InferDataType(values),
			Description: "Field from " + sheet + " sheet",
		})
	}

	if table == "" || len(fields) == 0 {
		return model.TableMetadata{}
	}
	return model.TableMetadata{table: fields}
}

// cell returns the trimmed value at idx. Spreadsheet rows may be ragged.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
