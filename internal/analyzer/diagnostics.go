// internal/analyzer/diagnostics.go
package analyzer

import (
	"fmt"

	"github.com/0xsj/sql-analyzer/internal/model"
)

const (
	maxTablesBeforeWarning     = 5
	maxJoinTypesBeforeWarning  = 3
	maxSubqueriesBeforeWarning = 2
	maxScoreBeforeWarning      = 20
)

// identifyChangeAreas turns thresholds and metadata mismatches into review
// notes. An empty finding list becomes the single no-issues sentinel.
func identifyChangeAreas(f features, score int, metadata model.TableMetadata) []string {
	areas := make([]string, 0)

	if len(f.tables) > maxTablesBeforeWarning {
		areas = append(areas, "Query involves many tables - consider breaking into smaller queries")
	}
	if len(f.joinTypes) > maxJoinTypesBeforeWarning {
		areas = append(areas, "Complex join structure - review for optimization opportunities")
	}
	if f.subqueries > maxSubqueriesBeforeWarning {
		areas = append(areas, "Multiple subqueries detected - consider using CTEs for better readability")
	}
	if score > maxScoreBeforeWarning {
		areas = append(areas, "High complexity score - consider refactoring for maintainability")
	}
	if len(f.tempTables) > 0 {
		areas = append(areas, "Temporary tables used - ensure proper cleanup and consider alternatives")
	}

	if len(metadata) > 0 {
		for _, table := range f.tables {
			if !metadata.HasTable(table) {
				areas = append(areas, fmt.Sprintf("Table '%s' not found in provided metadata", table))
			}
		}
	}

	if len(areas) == 0 {
		areas = append(areas, model.NoIssuesSentinel)
	}
	return areas
}
