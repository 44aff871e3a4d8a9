// internal/sqltoken/token.go
package sqltoken

import "strings"

// Kind classifies a lexical unit of SQL text.
type Kind int

const (
	Whitespace Kind = iota
	Comment
	Keyword
	Name
	Literal
	Punctuation
	Operator
)

func (k Kind) String() string {
	switch k {
	case Whitespace:
		return "whitespace"
	case Comment:
		return "comment"
	case Keyword:
		return "keyword"
	case Name:
		return "name"
	case Literal:
		return "literal"
	case Punctuation:
		return "punctuation"
	case Operator:
		return "operator"
	default:
		return "unknown"
	}
}

// Token is one unit of the flat token stream. Pos is the byte offset of Text
// in the scanned source.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

// Upper returns the token text in upper case.
func (t Token) Upper() string {
	return strings.ToUpper(t.Text)
}

// IsKeyword reports whether t is a keyword token equal to one of words.
// Words must be given in upper case.
func (t Token) IsKeyword(words ...string) bool {
	if t.Kind != Keyword {
		return false
	}
	upper := t.Upper()
	for _, w := range words {
		if upper == w {
			return true
		}
	}
	return false
}

// IsPunct reports whether t is the punctuation token p.
func (t Token) IsPunct(p string) bool {
	return t.Kind == Punctuation && t.Text == p
}

// IsSpace reports whether t carries no SQL meaning (whitespace or comment).
func (t Token) IsSpace() bool {
	return t.Kind == Whitespace || t.Kind == Comment
}

// keywords is the reserved-word table the scanner uses to tell keywords from
// names. Aggregate and scalar function names are deliberately absent so that
// they scan as names.
var keywords = map[string]struct{}{
	"ADD": {}, "ALL": {}, "ALTER": {}, "AND": {}, "ANY": {}, "AS": {}, "ASC": {},
	"BEGIN": {}, "BETWEEN": {}, "BY": {}, "CASCADE": {}, "CASE": {}, "CHECK": {},
	"COLUMN": {}, "COMMIT": {}, "CONSTRAINT": {}, "CREATE": {}, "CROSS": {},
	"DEFAULT": {}, "DELETE": {}, "DESC": {}, "DISTINCT": {}, "DROP": {},
	"ELSE": {}, "END": {}, "EXCEPT": {}, "EXISTS": {}, "EXPLAIN": {},
	"FALSE": {}, "FETCH": {}, "FOREIGN": {}, "FROM": {}, "FULL": {},
	"GRANT": {}, "GROUP": {}, "HAVING": {}, "IF": {}, "ILIKE": {}, "IN": {},
	"INDEX": {}, "INNER": {}, "INSERT": {}, "INTERSECT": {}, "INTO": {}, "IS": {},
	"JOIN": {}, "LATERAL": {}, "LEFT": {}, "LIKE": {}, "LIMIT": {},
	"MATCHED": {}, "MERGE": {}, "NATURAL": {}, "NOT": {}, "NULL": {},
	"OFFSET": {}, "ON": {}, "ONLY": {}, "OR": {}, "ORDER": {}, "OUTER": {},
	"OVER": {}, "PARTITION": {}, "PRIMARY": {}, "RECURSIVE": {}, "REFERENCES": {},
	"REPLACE": {}, "RETURNING": {}, "REVOKE": {}, "RIGHT": {}, "ROLLBACK": {},
	"SELECT": {}, "SET": {}, "SOME": {}, "TABLE": {}, "TEMP": {}, "TEMPORARY": {},
	"THEN": {}, "TOP": {}, "TRUE": {}, "TRUNCATE": {}, "UNION": {}, "UNIQUE": {},
	"UPDATE": {}, "UPSERT": {}, "USING": {}, "VALUES": {}, "VIEW": {}, "WHEN": {},
	"WHERE": {}, "WINDOW": {}, "WITH": {},
}

// structural keywords stay keywords even when directly followed by "(".
var structural = map[string]struct{}{
	"ALL": {}, "AND": {}, "ANY": {}, "AS": {}, "EXISTS": {}, "FROM": {}, "IN": {},
	"INTO": {}, "JOIN": {}, "NOT": {}, "ON": {}, "OR": {}, "OVER": {},
	"SELECT": {}, "TABLE": {}, "USING": {}, "VALUES": {}, "WHERE": {}, "WITH": {},
}

// IsKeywordText reports whether word (any case) is in the reserved-word table.
func IsKeywordText(word string) bool {
	_, ok := keywords[strings.ToUpper(word)]
	return ok
}
