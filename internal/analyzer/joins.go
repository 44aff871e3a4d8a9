// internal/analyzer/joins.go
package analyzer

import "strings"

// joinPhrases are matched as substrings of the upper-cased query. Overlapping
// phrases all report, so LEFT OUTER JOIN also yields JOIN.
var joinPhrases = []string{
	"JOIN",
	"INNER JOIN",
	"LEFT JOIN",
	"RIGHT JOIN",
	"FULL JOIN",
	"CROSS JOIN",
	"NATURAL JOIN",
	"LEFT OUTER JOIN",
	"RIGHT OUTER JOIN",
	"FULL OUTER JOIN",
}

// ExtractJoinTypes returns every join phrase present in query, once each, in
// declaration order.
func ExtractJoinTypes(query string) []string {
	upper := strings.ToUpper(query)
	found := make([]string, 0)

	for _, phrase := range joinPhrases {
		if strings.Contains(upper, phrase) {
			found = append(found, phrase)
		}
	}

	return found
}

// HasJoins reports whether query contains any join phrase.
func HasJoins(query string) bool {
	return len(ExtractJoinTypes(query)) > 0
}
