// internal/analyzer/temptables.go
package analyzer

import (
	"regexp"
	"strings"

	"github.com/0xsj/sql-analyzer/pkg/utils"
)

type tempTablePattern struct {
	re *regexp.Regexp
	// direct patterns name the table in capture group 1. The others take the
	// first whitespace-delimited word starting at group 1 (or at the match end
	// when the pattern has no group).
	direct bool
}

var tempTablePatterns = []tempTablePattern{
	{re: regexp.MustCompile(`(?i)CREATE\s+(?:TEMPORARY|TEMP)\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?`)},
	{re: regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(#\w+)`)},
	{re: regexp.MustCompile(`(?i)WITH\s+(\w+)\s+AS\s*\(`), direct: true},
	{re: regexp.MustCompile(`(?i)INTO\s+(#\w+)`)},
}

// ExtractTempTables finds temporary-table and CTE names by scanning the raw
// text. It is independent of the tokenizer.
func ExtractTempTables(query string) []string {
	found := utils.NewOrderedSet()

	for _, p := range tempTablePatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(query, -1) {
			var name string
			if p.direct {
				name = query[m[2]:m[3]]
			} else {
				start := m[1]
				if len(m) >= 4 && m[2] >= 0 {
					start = m[2]
				}
				name = firstWord(query[start:])
			}
			if name != "" {
				found.Add(name)
			}
		}
	}

	return found.Items()
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	word := fields[0]
	if idx := strings.IndexByte(word, '('); idx > 0 {
		word = word[:idx]
	}
	return strings.Trim(word, "();,")
}
