// internal/analyzer/query.go
package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xsj/sql-analyzer/internal/model"
	"github.com/0xsj/sql-analyzer/internal/sqltoken"
)

// LoadQueries reads a query file. A .json file holds a list of named queries;
// anything else is treated as a SQL script and split into statements.
func LoadQueries(path string) ([]model.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading queries file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var queries []model.Query
		if err := json.Unmarshal(data, &queries); err != nil {
			return nil, fmt.Errorf("error parsing queries file: %w", err)
		}
		return queries, nil
	}

	statements := SplitStatements(string(data))
	queries := make([]model.Query, 0, len(statements))
	for i, stmt := range statements {
		queries = append(queries, model.Query{
			Name: fmt.Sprintf("Query_%d", i+1),
			SQL:  stmt,
		})
	}
	return queries, nil
}

// SplitStatements splits a script on semicolons that are outside strings,
// quoted identifiers and comments. Comments leading a statement are dropped,
// as are blank statements. When the script cannot be tokenized it falls back
// to a plain split, so the broken statement still reaches the analyzer and is
// reported there.
func SplitStatements(script string) []string {
	var parts []string

	tokens, err := sqltoken.Scan(script)
	if err != nil {
		parts = strings.Split(script, ";")
	} else {
		var current strings.Builder
		for _, tok := range tokens {
			switch {
			case tok.IsPunct(";"):
				parts = append(parts, current.String())
				current.Reset()
			case current.Len() == 0 && tok.IsSpace():
			default:
				current.WriteString(tok.Text)
			}
		}
		parts = append(parts, current.String())
	}

	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		if stmt := strings.TrimSpace(part); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// SelectQueries narrows queries to one statement type. "all" keeps every
// query. A positive limit caps the result.
func SelectQueries(queries []model.Query, queryType string, limit int) ([]model.Query, error) {
	var selected []model.Query

	if queryType == "" || strings.EqualFold(queryType, "all") {
		selected = queries
	} else {
		want := model.QueryType(strings.ToUpper(queryType))
		for _, q := range queries {
			if DetermineQueryType(q.SQL) == want {
				selected = append(selected, q)
			}
		}
		if len(selected) == 0 {
			return nil, fmt.Errorf("no queries found of type: %s", queryType)
		}
	}

	if limit > 0 && limit < len(selected) {
		return selected[:limit], nil
	}
	return selected, nil
}

// SaveQueries writes queries as the JSON list LoadQueries reads.
func SaveQueries(queries []model.Query, outputPath string) error {
	data, err := json.MarshalIndent(queries, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling queries: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("error writing queries file: %w", err)
	}

	return nil
}
