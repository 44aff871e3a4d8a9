// internal/metadata/infer.go
package metadata

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	unknownType     = "unknown"
	maxVarcharWidth = 255
)

var (
	datetimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}
	dateLayouts     = []string{"2006-01-02", "01/02/2006", "02-Jan-2006"}
)

// InferDataType guesses a column type from its cell values. Blank cells are
// ignored; a column with no values at all is unknown.
func InferDataType(values []string) string {
	present := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return unknownType
	}

	switch {
	case all(present, isNumber):
		switch {
		case anyOf(present, hasLeadingZero):
			return "numeric_string"
		case all(present, isInteger):
			return "integer"
		default:
			return "float"
		}
	case all(present, isBool):
		return "boolean"
	case all(present, layoutMatcher(datetimeLayouts)):
		return "datetime"
	case all(present, layoutMatcher(dateLayouts)):
		return "date_string"
	}

	var total, longest int
	for _, v := range present {
		n := utf8.RuneCountInString(v)
		total += n
		if n > longest {
			longest = n
		}
	}
	if float64(total)/float64(len(present)) > maxVarcharWidth {
		return "text"
	}
	return fmt.Sprintf("varchar(%d)", longest)
}

func all(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

func anyOf(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if pred(v) {
			return true
		}
	}
	return false
}

func isInteger(v string) bool {
	_, err := strconv.ParseInt(v, 10, 64)
	return err == nil
}

func isNumber(v string) bool {
	if strings.ContainsFunc(v, func(r rune) bool { return unicode.IsLetter(r) && r != 'e' && r != 'E' }) {
		return false
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

// hasLeadingZero flags codes such as "007" that parse as numbers but are not.
func hasLeadingZero(v string) bool {
	v = strings.TrimLeft(v, "+-")
	return len(v) > 1 && v[0] == '0' && v[1] != '.'
}

func isBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false":
		return true
	}
	return false
}

func layoutMatcher(layouts []string) func(string) bool {
	return func(v string) bool {
		for _, layout := range layouts {
			if _, err := time.Parse(layout, v); err == nil {
				return true
			}
		}
		return false
	}
}
