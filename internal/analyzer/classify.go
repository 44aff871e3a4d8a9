// internal/analyzer/classify.go
package analyzer

import (
	"strings"

	"github.com/0xsj/sql-analyzer/internal/model"
)

// statementTypes is checked in order; the first prefix match wins.
var statementTypes = []model.QueryType{
	model.QueryTypeSelect,
	model.QueryTypeInsert,
	model.QueryTypeUpdate,
	model.QueryTypeDelete,
	model.QueryTypeCreate,
	model.QueryTypeDrop,
	model.QueryTypeAlter,
	model.QueryTypeMerge,
	model.QueryTypeUpsert,
}

// DetermineQueryType classifies a statement by its leading keyword.
// Statements opening with WITH are reported as CTE.
func DetermineQueryType(query string) model.QueryType {
	upper := strings.ToUpper(strings.TrimSpace(query))

	for _, qt := range statementTypes {
		if strings.HasPrefix(upper, string(qt)) {
			return qt
		}
	}

	if strings.HasPrefix(upper, "WITH") {
		return model.QueryTypeCTE
	}

	return model.QueryTypeUnknown
}
