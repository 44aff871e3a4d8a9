// internal/analyzer/details.go
package analyzer

import (
	"strings"

	"github.com/0xsj/sql-analyzer/internal/model"
	"github.com/0xsj/sql-analyzer/internal/sqltoken"
)

// joinSegmentStops end an ON condition.
var joinSegmentStops = map[string]struct{}{
	"JOIN": {}, "INNER": {}, "LEFT": {}, "RIGHT": {}, "FULL": {}, "CROSS": {}, "NATURAL": {},
	"WHERE": {}, "GROUP": {}, "ORDER": {}, "HAVING": {}, "LIMIT": {}, "UNION": {},
}

// buildJoinDetails collects ON conditions and flags joins that lack one.
func buildJoinDetails(tokens []sqltoken.Token, f features) *model.JoinDetails {
	conditions := make([]string, 0)
	joinKeywords, constrained := 0, 0
	crossJoin := false

	var segment []string
	inOn := false
	segmentDepth, depth := 0, 0

	flush := func() {
		if inOn && len(segment) > 0 {
			conditions = append(conditions, strings.Join(segment, " "))
		}
		segment = nil
		inOn = false
	}

	var prev sqltoken.Token
	for _, tok := range tokens {
		switch {
		case tok.IsPunct("("):
			depth++
		case tok.IsPunct(")"):
			depth--
		}

		if inOn {
			stop := tok.IsPunct(";") || (tok.IsPunct(")") && depth < segmentDepth) || tok.IsKeyword("ON", "USING")
			if tok.Kind == sqltoken.Keyword {
				if _, ok := joinSegmentStops[tok.Upper()]; ok {
					stop = true
				}
			}
			if stop {
				flush()
			} else {
				segment = append(segment, tok.Text)
			}
		}

		switch {
		case tok.IsKeyword("JOIN"):
			switch {
			case prev.IsKeyword("NATURAL"):
			case prev.IsKeyword("CROSS"):
				crossJoin = true
			default:
				joinKeywords++
			}
		case tok.IsKeyword("ON"):
			flush()
			constrained++
			inOn = true
			segmentDepth = depth
		case tok.IsKeyword("USING"):
			constrained++
		}
		prev = tok
	}
	flush()

	for _, jt := range f.joinTypes {
		if jt == "CROSS JOIN" {
			crossJoin = true
		}
	}

	return &model.JoinDetails{
		JoinCount:            len(f.joinTypes),
		JoinTables:           append([]string{}, f.joinTables...),
		JoinConditions:       conditions,
		CartesianProductRisk: crossJoin || joinKeywords > constrained,
	}
}

// buildColumnUsage summarizes column repetition and metadata coverage.
func buildColumnUsage(tokens []sqltoken.Token, f features, metadata model.TableMetadata) *model.ColumnUsage {
	occurrences := make(map[string]int, len(f.columns))
	for _, tok := range tokens {
		if tok.Kind == sqltoken.Name {
			occurrences[cleanColumnName(tok.Text)]++
		}
	}

	repeated := make([]string, 0)
	for _, col := range f.columns {
		if occurrences[col] > 1 {
			repeated = append(repeated, col)
		}
	}

	matched := 0
	for _, table := range f.tables {
		fields, ok := metadata[table]
		if !ok {
			continue
		}
		for _, col := range f.columns {
			if fieldListHas(fields, col) {
				matched++
			}
		}
	}

	return &model.ColumnUsage{
		TotalColumns:    len(f.columns),
		UniqueColumns:   len(f.columns),
		RepeatedColumns: repeated,
		MetadataMatched: matched,
	}
}

func fieldListHas(fields []model.FieldMetadata, column string) bool {
	suffix := column
	if idx := strings.LastIndex(column, "."); idx >= 0 {
		suffix = column[idx+1:]
	}
	for _, field := range fields {
		if field.Name == column || field.Name == suffix {
			return true
		}
	}
	return false
}
