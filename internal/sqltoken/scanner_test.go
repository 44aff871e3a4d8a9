package sqltoken

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kt struct {
	kind Kind
	text string
}

func meaningful(t *testing.T, sql string) []kt {
	t.Helper()
	tokens, err := Scan(sql)
	require.NoError(t, err)
	var out []kt
	for _, tok := range Meaningful(tokens) {
		out = append(out, kt{tok.Kind, tok.Text})
	}
	return out
}

func TestScan_Kinds(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []kt
	}{
		{
			name: "simple select",
			sql:  "SELECT a FROM t",
			expected: []kt{
				{Keyword, "SELECT"}, {Name, "a"}, {Keyword, "FROM"}, {Name, "t"},
			},
		},
		{
			name: "qualified names are one token",
			sql:  "select t1.id, s.t.col, u.* from dbo.users",
			expected: []kt{
				{Keyword, "select"}, {Name, "t1.id"}, {Punctuation, ","}, {Name, "s.t.col"},
				{Punctuation, ","}, {Name, "u.*"}, {Keyword, "from"}, {Name, "dbo.users"},
			},
		},
		{
			name: "function call names",
			sql:  "SELECT COUNT(*), LEFT(name, 2) FROM x WHERE id IN (1)",
			expected: []kt{
				{Keyword, "SELECT"}, {Name, "COUNT"}, {Punctuation, "("}, {Operator, "*"}, {Punctuation, ")"},
				{Punctuation, ","}, {Name, "LEFT"}, {Punctuation, "("}, {Name, "name"}, {Punctuation, ","},
				{Literal, "2"}, {Punctuation, ")"}, {Keyword, "FROM"}, {Name, "x"}, {Keyword, "WHERE"},
				{Name, "id"}, {Keyword, "IN"}, {Punctuation, "("}, {Literal, "1"}, {Punctuation, ")"},
			},
		},
		{
			name: "quoted identifiers and temp names",
			sql:  "SELECT \"Order Id\", `x`, [y z] INTO #tmp FROM @tbl",
			expected: []kt{
				{Keyword, "SELECT"}, {Name, "\"Order Id\""}, {Punctuation, ","}, {Name, "`x`"},
				{Punctuation, ","}, {Name, "[y z]"}, {Keyword, "INTO"}, {Name, "#tmp"},
				{Keyword, "FROM"}, {Name, "@tbl"},
			},
		},
		{
			name: "literals and operators",
			sql:  "WHERE a >= 1.5e3 AND b <> 'it''s' AND c = N'x' AND d = $1",
			expected: []kt{
				{Keyword, "WHERE"}, {Name, "a"}, {Operator, ">="}, {Literal, "1.5e3"}, {Keyword, "AND"},
				{Name, "b"}, {Operator, "<>"}, {Literal, "'it''s'"}, {Keyword, "AND"},
				{Name, "c"}, {Operator, "="}, {Literal, "N'x'"}, {Keyword, "AND"},
				{Name, "d"}, {Operator, "="}, {Literal, "$1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, meaningful(t, tt.sql))
		})
	}
}

func TestScan_Comments(t *testing.T) {
	tokens, err := Scan("SELECT 1 -- trailing\n/* block */ FROM t")
	require.NoError(t, err)

	var comments []string
	for _, tok := range tokens {
		if tok.Kind == Comment {
			comments = append(comments, tok.Text)
		}
	}
	assert.Equal(t, []string{"-- trailing", "/* block */"}, comments)
}

func TestScan_RoundTrip(t *testing.T) {
	inputs := []string{
		"SELECT a, b FROM t1 JOIN t2 ON t1.id=t2.id",
		"WITH x AS (SELECT * FROM y) SELECT * FROM x -- done",
		"insert into [dbo].[t] values (N'é', 0x1F, .5)",
		"SELECT (((1",
		"",
	}
	for _, in := range inputs {
		tokens, err := Scan(in)
		require.NoError(t, err)

		var b strings.Builder
		for _, tok := range tokens {
			assert.Equal(t, in[tok.Pos:tok.Pos+len(tok.Text)], tok.Text)
			b.WriteString(tok.Text)
		}
		assert.Equal(t, in, b.String())
	}
}

func TestScan_Errors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		err  error
	}{
		{"unterminated string", "SELECT 'abc FROM t", ErrUnterminatedString},
		{"unterminated prefixed string", "SELECT N'abc", ErrUnterminatedString},
		{"unterminated identifier", "SELECT \"abc FROM t", ErrUnterminatedIdentifier},
		{"unterminated bracket", "SELECT [abc FROM t", ErrUnterminatedIdentifier},
		{"unterminated comment", "SELECT 1 /* never closed", ErrUnterminatedComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Scan(tt.sql)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "at offset")
			assert.Nil(t, tokens)
		})
	}
}

func TestToken_Helpers(t *testing.T) {
	tok := Token{Kind: Keyword, Text: "select"}
	assert.True(t, tok.IsKeyword("SELECT"))
	assert.False(t, tok.IsKeyword("FROM"))
	assert.Equal(t, "SELECT", tok.Upper())

	assert.True(t, Token{Kind: Punctuation, Text: "("}.IsPunct("("))
	assert.False(t, Token{Kind: Operator, Text: "("}.IsPunct("("))
	assert.True(t, Token{Kind: Comment, Text: "--"}.IsSpace())
	assert.Equal(t, "keyword", Keyword.String())
	assert.True(t, IsKeywordText("where"))
	assert.False(t, IsKeywordText("count"))
}
