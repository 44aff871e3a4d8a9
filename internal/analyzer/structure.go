// internal/analyzer/structure.go
package analyzer

import (
	"strings"

	"github.com/0xsj/sql-analyzer/internal/sqltoken"
	"github.com/0xsj/sql-analyzer/pkg/utils"
)

// knownFunctions is the allow-list of function names that are reported.
var knownFunctions = map[string]struct{}{
	"COUNT": {}, "SUM": {}, "AVG": {}, "MAX": {}, "MIN": {}, "COALESCE": {}, "ISNULL": {},
	"CASE": {}, "CAST": {}, "CONVERT": {}, "SUBSTRING": {}, "CONCAT": {},
	"UPPER": {}, "LOWER": {}, "TRIM": {},
}

var operationKeywords = map[string]struct{}{
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "SELECT": {},
	"CREATE": {}, "DROP": {}, "ALTER": {},
}

var conditionTerminators = map[string]struct{}{
	"GROUP": {}, "ORDER": {}, "HAVING": {}, "LIMIT": {},
}

// countSubqueries counts SELECT keywords that sit inside parentheses. Depth is
// not clamped, so a stray ")" can hide later subqueries.
func countSubqueries(tokens []sqltoken.Token) int {
	depth, count := 0, 0
	for _, tok := range tokens {
		switch {
		case tok.IsPunct("("):
			depth++
		case tok.IsPunct(")"):
			depth--
		case tok.IsKeyword("SELECT") && depth > 0:
			count++
		}
	}
	return count
}

// extractFunctions reports allow-listed function names in upper case.
func extractFunctions(tokens []sqltoken.Token) *utils.OrderedSet {
	found := utils.NewOrderedSet()
	for _, tok := range tokens {
		if tok.Kind != sqltoken.Name {
			continue
		}
		upper := tok.Upper()
		if _, ok := knownFunctions[upper]; ok {
			found.Add(upper)
		}
	}
	return found
}

// extractConditions returns the WHERE clause text, one entry per WHERE
// segment. A segment runs until GROUP, ORDER, HAVING or LIMIT, or the end of
// the stream. A second WHERE extends the open segment.
func extractConditions(tokens []sqltoken.Token) []string {
	conditions := make([]string, 0)
	var current []string
	inWhere := false

	flush := func() {
		if len(current) > 0 {
			conditions = append(conditions, strings.TrimSpace(strings.Join(current, " ")))
			current = nil
		}
	}

	for _, tok := range tokens {
		if tok.IsKeyword("WHERE") {
			inWhere = true
			continue
		}
		if !inWhere {
			continue
		}
		if tok.Kind == sqltoken.Keyword {
			if _, stop := conditionTerminators[tok.Upper()]; stop {
				flush()
				inWhere = false
				continue
			}
		}
		current = append(current, tok.Text)
	}
	flush()

	return conditions
}

// extractOperations lists DML and DDL keywords in first-seen order.
func extractOperations(tokens []sqltoken.Token) *utils.OrderedSet {
	found := utils.NewOrderedSet()
	for _, tok := range tokens {
		if tok.Kind != sqltoken.Keyword {
			continue
		}
		upper := tok.Upper()
		if _, ok := operationKeywords[upper]; ok {
			found.Add(upper)
		}
	}
	return found
}
