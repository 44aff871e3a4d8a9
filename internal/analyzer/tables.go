// internal/analyzer/tables.go
package analyzer

import (
	"strings"

	"github.com/0xsj/sql-analyzer/internal/sqltoken"
	"github.com/0xsj/sql-analyzer/pkg/utils"
)

// tableEvent is what a token means to the FROM/JOIN table scanner.
type tableEvent int

const (
	tableEventNone tableEvent = iota
	tableEventBoundary
	tableEventFrom
	tableEventJoin
	tableEventOn
	tableEventAs
	tableEventName
)

var tableBoundaryKeywords = map[string]struct{}{
	"WHERE": {}, "GROUP": {}, "ORDER": {}, "HAVING": {}, "LIMIT": {}, "UNION": {}, "SELECT": {},
}

// tableNameStopWords are never captured as tables even in table position.
var tableNameStopWords = map[string]struct{}{
	"AS": {}, "ON": {}, "WHERE": {}, "AND": {}, "OR": {}, "SELECT": {}, "FROM": {}, "JOIN": {},
}

func classifyTableEvent(tok sqltoken.Token) tableEvent {
	switch tok.Kind {
	case sqltoken.Keyword:
		upper := tok.Upper()
		if _, ok := tableBoundaryKeywords[upper]; ok {
			return tableEventBoundary
		}
		switch {
		case upper == "FROM":
			return tableEventFrom
		case strings.Contains(upper, "JOIN"):
			return tableEventJoin
		case upper == "ON":
			return tableEventOn
		case upper == "AS":
			return tableEventAs
		}
	case sqltoken.Name:
		return tableEventName
	}
	return tableEventNone
}

// tableScanner tracks FROM/JOIN context over the token stream. After one table
// is captured, capturing stays off until the next FROM or JOIN, so only the
// first entry of a comma-separated FROM list is recorded.
type tableScanner struct {
	inFrom      bool
	inJoin      bool
	nextIsTable bool
	armedByJoin bool

	tables     utils.OrderedSet
	joinTables utils.OrderedSet
	captured   map[int]struct{}
}

func (s *tableScanner) step(idx int, tok sqltoken.Token) {
	switch classifyTableEvent(tok) {
	case tableEventBoundary:
		s.inFrom, s.inJoin, s.nextIsTable = false, false, false
	case tableEventFrom:
		s.inFrom, s.nextIsTable, s.armedByJoin = true, true, false
	case tableEventJoin:
		s.inJoin, s.nextIsTable, s.armedByJoin = true, true, true
	case tableEventOn, tableEventAs:
		s.nextIsTable = false
	case tableEventName:
		if !(s.inFrom || s.inJoin) || !s.nextIsTable {
			return
		}
		if _, stop := tableNameStopWords[tok.Upper()]; stop {
			return
		}
		name, ok := cleanTableName(tok.Text)
		if !ok {
			return
		}
		s.tables.Add(name)
		if s.armedByJoin {
			s.joinTables.Add(name)
		}
		s.captured[idx] = struct{}{}
		s.nextIsTable = false
	}
}

// cleanTableName strips quoting and keeps the last segment of a qualified name.
func cleanTableName(raw string) (string, bool) {
	name := strings.TrimSpace(strings.Trim(raw, "`\"[](),"))
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = strings.Trim(name[idx+1:], "`\"[]")
	}
	if name == "" || isAllDigits(name) {
		return "", false
	}
	if _, stop := tableNameStopWords[strings.ToUpper(name)]; stop {
		return "", false
	}
	return name, true
}

type tableExtraction struct {
	tables     *utils.OrderedSet
	joinTables *utils.OrderedSet
	// captured holds the token indexes that were taken as table names.
	captured map[int]struct{}
}

// extractTables pulls table names from FROM and JOIN context only.
func extractTables(tokens []sqltoken.Token) tableExtraction {
	s := &tableScanner{captured: make(map[int]struct{})}
	for i, tok := range tokens {
		s.step(i, tok)
	}
	return tableExtraction{
		tables:     &s.tables,
		joinTables: &s.joinTables,
		captured:   s.captured,
	}
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
