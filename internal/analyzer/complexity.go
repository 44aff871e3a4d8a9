// internal/analyzer/complexity.go
package analyzer

import "github.com/0xsj/sql-analyzer/internal/model"

// Complexity weights per feature.
const (
	weightTable     = 1.0
	weightColumn    = 0.5
	weightJoinType  = 2.0
	weightTempTable = 3.0
	weightSubquery  = 4.0
	weightFunction  = 1.0
	weightCondition = 1.0
)

// features holds the raw extraction output of one query.
type features struct {
	queryType  model.QueryType
	tables     []string
	joinTables []string
	columns    []string
	joinTypes  []string
	tempTables []string
	operations []string
	subqueries int
	functions  []string
	conditions []string
}

func baseScore(qt model.QueryType) float64 {
	switch qt {
	case model.QueryTypeSelect:
		return 1
	case model.QueryTypeInsert, model.QueryTypeUpdate, model.QueryTypeDelete:
		return 2
	case model.QueryTypeCreate, model.QueryTypeAlter, model.QueryTypeDrop:
		return 3
	default:
		return 0
	}
}

// calculateComplexity sums the weighted feature counts and truncates once at
// the end, so fractional column weight only matters in pairs.
func calculateComplexity(f features) int {
	score := baseScore(f.queryType)
	score += float64(len(f.tables)) * weightTable
	score += float64(len(f.columns)) * weightColumn
	score += float64(len(f.joinTypes)) * weightJoinType
	score += float64(len(f.tempTables)) * weightTempTable
	score += float64(f.subqueries) * weightSubquery
	score += float64(len(f.functions)) * weightFunction
	score += float64(len(f.conditions)) * weightCondition
	return int(score)
}

// Priority buckets a complexity score for reporting.
func Priority(score int) string {
	switch {
	case score > 15:
		return "High"
	case score > 8:
		return "Medium"
	default:
		return "Low"
	}
}
