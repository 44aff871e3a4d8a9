// internal/analyzer/columns.go
package analyzer

import (
	"strings"
	"unicode/utf8"

	"github.com/0xsj/sql-analyzer/internal/model"
	"github.com/0xsj/sql-analyzer/internal/sqltoken"
	"github.com/0xsj/sql-analyzer/pkg/utils"
)

// reservedWords are never table names. Aggregates are listed so that they are
// classified as column candidates instead.
var reservedWords = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "JOIN": {}, "ON": {}, "AS": {}, "AND": {}, "OR": {},
	"IN": {}, "EXISTS": {}, "GROUP": {}, "ORDER": {}, "BY": {}, "HAVING": {}, "LIMIT": {},
	"OFFSET": {}, "UNION": {}, "DISTINCT": {}, "COUNT": {}, "SUM": {}, "AVG": {}, "MAX": {},
	"MIN": {}, "CASE": {}, "WHEN": {}, "THEN": {}, "ELSE": {}, "END": {},
}

var columnStopWords = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "JOIN": {}, "ON": {}, "AS": {},
}

// IsLikelyTableName guesses whether name refers to a table rather than a
// column or keyword. With metadata the answer is a plain lookup; without it
// any name of two or more characters with at most one dot counts as a table.
func IsLikelyTableName(name string, metadata model.TableMetadata) bool {
	if utf8.RuneCountInString(name) < 2 {
		return false
	}

	if _, ok := reservedWords[strings.ToUpper(name)]; ok {
		return false
	}

	if len(metadata) > 0 {
		return metadata.HasTable(name)
	}

	return strings.Count(name, ".") <= 1
}

func cleanColumnName(raw string) string {
	return strings.Trim(raw, "`\"[]")
}

// extractColumns collects column candidates from every name token that is not
// a table. The heuristic is over-inclusive when metadata is supplied (aliases
// and function names pass through) and under-inclusive without it.
func extractColumns(tokens []sqltoken.Token, tables tableExtraction, metadata model.TableMetadata) *utils.OrderedSet {
	columns := utils.NewOrderedSet()

	for i, tok := range tokens {
		if tok.Kind != sqltoken.Name {
			continue
		}
		if _, isTable := tables.captured[i]; isTable {
			continue
		}

		value := cleanColumnName(tok.Text)
		if value == "" || tables.tables.Contains(value) {
			continue
		}
		if IsLikelyTableName(value, metadata) {
			continue
		}
		if _, stop := columnStopWords[strings.ToUpper(value)]; stop {
			continue
		}

		columns.Add(value)
	}

	return columns
}
