// internal/database/catalog.go
package database

import (
	"context"
	"fmt"

	"github.com/0xsj/sql-analyzer/internal/model"
)

// ColumnRow is one column definition read from a catalog.
type ColumnRow struct {
	Schema      string
	Table       string
	Column      string
	DataType    string
	Description string
}

const mysqlColumnsQuery = `
	SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, COLUMN_TYPE, COLUMN_COMMENT
	FROM information_schema.COLUMNS
	WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
	ORDER BY TABLE_NAME, ORDINAL_POSITION
`

const postgresColumnsQuery = `
	SELECT
		c.table_schema,
		c.table_name,
		c.column_name,
		c.data_type,
		COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position::int), '')
	FROM information_schema.columns c
	JOIN information_schema.tables t
	  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
	WHERE t.table_type = 'BASE TABLE'
	  AND c.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
	  AND ($1::text = '' OR c.table_schema = $1::text)
	ORDER BY c.table_schema, c.table_name, c.ordinal_position
`

const sqlServerColumnsQuery = `
	SELECT
		s.name,
		t.name,
		c.name,
		tp.name,
		CAST(ISNULL(ep.value, '') AS NVARCHAR(4000))
	FROM sys.tables t
	INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
	INNER JOIN sys.columns c ON c.object_id = t.object_id
	INNER JOIN sys.types tp ON c.user_type_id = tp.user_type_id
	LEFT JOIN sys.extended_properties ep
	  ON ep.major_id = c.object_id AND ep.minor_id = c.column_id AND ep.name = 'MS_Description'
	WHERE (@schema = '' OR s.name = @schema)
	ORDER BY s.name, t.name, c.column_id
`

func versionQuery(driver Driver) string {
	switch driver {
	case DriverSQLServer:
		return "SELECT @@VERSION"
	case DriverPostgres:
		return "SELECT version()"
	default:
		return "SELECT VERSION()"
	}
}

// DiscoverMetadata reads every column visible in schema (all user schemas when
// empty) and groups them into table metadata.
func DiscoverMetadata(ctx context.Context, catalog Catalog, schema string) (model.TableMetadata, error) {
	rows, err := catalog.Columns(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("discover %s catalog: %w", catalog.Driver(), err)
	}
	return GroupColumns(rows), nil
}

// GroupColumns builds metadata keyed by unqualified table name, keeping row
// order within each table. When the same table name exists in several
// schemas, the first schema seen wins.
func GroupColumns(rows []ColumnRow) model.TableMetadata {
	metadata := make(model.TableMetadata)
	owner := make(map[string]string)

	for _, row := range rows {
		if row.Table == "" || row.Column == "" {
			continue
		}
		if schema, seen := owner[row.Table]; seen && schema != row.Schema {
			continue
		}
		owner[row.Table] = row.Schema

		dataType := row.DataType
		if dataType == "" {
			dataType = "unknown"
		}
		metadata[row.Table] = append(metadata[row.Table], model.FieldMetadata{
			Name:        row.Column,
			DataType:    dataType,
			Description: row.Description,
		})
	}

	return metadata
}
