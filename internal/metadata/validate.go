// internal/metadata/validate.go
package metadata

import (
	"fmt"
	"sort"

	"github.com/0xsj/sql-analyzer/internal/model"
)

// ValidationReport describes the shape and sanity of loaded metadata.
type ValidationReport struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []string          `json:"errors"`
	Warnings []string          `json:"warnings"`
	Summary  ValidationSummary `json:"summary"`
}

type ValidationSummary struct {
	TotalTables          int            `json:"total_tables"`
	TotalFields          int            `json:"total_fields"`
	TablesWithNoFields   []string       `json:"tables_with_no_fields"`
	DataTypeDistribution map[string]int `json:"data_type_distribution"`
}

// Validate checks that metadata holds at least one table with fields. Tables
// without fields are warnings.
func Validate(metadata model.TableMetadata) ValidationReport {
	report := ValidationReport{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
		Summary: ValidationSummary{
			TotalTables:          len(metadata),
			TablesWithNoFields:   []string{},
			DataTypeDistribution: make(map[string]int),
		},
	}

	for _, table := range TableNames(metadata) {
		fields := metadata[table]
		report.Summary.TotalFields += len(fields)

		if len(fields) == 0 {
			report.Summary.TablesWithNoFields = append(report.Summary.TablesWithNoFields, table)
			report.Warnings = append(report.Warnings, fmt.Sprintf("Table '%s' has no fields", table))
		}

		for _, field := range fields {
			dataType := field.DataType
			if dataType == "" {
				dataType = unknownType
			}
			report.Summary.DataTypeDistribution[dataType]++
		}
	}

	if report.Summary.TotalTables == 0 {
		report.IsValid = false
		report.Errors = append(report.Errors, "No tables found in the metadata")
	}
	if report.Summary.TotalFields == 0 {
		report.IsValid = false
		report.Errors = append(report.Errors, "No fields found in any table")
	}

	return report
}

// TableNames returns the table names in sorted order.
func TableNames(metadata model.TableMetadata) []string {
	names := make([]string, 0, len(metadata))
	for name := range metadata {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
