package analyzer

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/0xsj/sql-analyzer/internal/model"
)

func newTestAnalyzer(t *testing.T, metadata model.TableMetadata, opts ...Option) *Analyzer {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return New(model.DefaultAnalysisOptions(), metadata, opts...)
}

func TestAnalyze_Empty(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	for _, in := range []string{"", "   ", "\n\t"} {
		result := a.Analyze(in, "q1")

		assert.Equal(t, "q1", result.QueryID)
		assert.Equal(t, model.QueryTypeEmpty, result.QueryType)
		assert.Equal(t, "", result.OriginalQuery)
		assert.Empty(t, result.Tables)
		assert.Empty(t, result.Columns)
		assert.Empty(t, result.JoinTypes)
		assert.Empty(t, result.TempTables)
		assert.Empty(t, result.Operations)
		assert.Empty(t, result.Functions)
		assert.Empty(t, result.Conditions)
		assert.Equal(t, 0, result.ComplexityScore)
		assert.Equal(t, []string{"Query is empty or invalid"}, result.ChangeAreas)
		assert.Nil(t, result.JoinDetails)
		assert.Nil(t, result.ColumnUsage)
	}
}

func TestAnalyze_DefaultQueryID(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	assert.Equal(t, "unknown", a.Analyze("SELECT 1", "").QueryID)
}

func TestAnalyze_SimpleSelect(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	result := a.Analyze("  SELECT a FROM t  ", "simple")

	assert.Equal(t, model.QueryTypeSelect, result.QueryType)
	assert.Equal(t, "SELECT a FROM t", result.OriginalQuery)
	assert.Equal(t, []string{"t"}, result.Tables)
	assert.Equal(t, []string{"a"}, result.Columns)
	assert.False(t, result.HasJoins)
	assert.Empty(t, result.JoinTypes)
	assert.Equal(t, []string{"SELECT"}, result.Operations)
	assert.Equal(t, 2, result.ComplexityScore)
	assert.Equal(t, []string{model.NoIssuesSentinel}, result.ChangeAreas)
	assert.False(t, result.NeedsReview())
	assert.Nil(t, result.JoinDetails)

	require.NotNil(t, result.ColumnUsage)
	assert.Equal(t, 1, result.ColumnUsage.TotalColumns)
	assert.Equal(t, 1, result.ColumnUsage.UniqueColumns)
	assert.Empty(t, result.ColumnUsage.RepeatedColumns)
	assert.Equal(t, 0, result.ColumnUsage.MetadataMatched)
}

func TestAnalyze_Join(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	result := a.Analyze("SELECT a, b FROM t1 JOIN t2 ON t1.id=t2.id", "join")

	assert.Equal(t, []string{"t1", "t2"}, result.Tables)
	assert.True(t, result.HasJoins)
	assert.Contains(t, result.JoinTypes, "JOIN")
	assert.Equal(t, []string{"a", "b"}, result.Columns)
	// 1 base + 2 tables + 1 for two columns + 2 for one join type
	assert.Equal(t, 6, result.ComplexityScore)

	require.NotNil(t, result.JoinDetails)
	assert.Equal(t, 1, result.JoinDetails.JoinCount)
	assert.Equal(t, []string{"t2"}, result.JoinDetails.JoinTables)
	assert.Equal(t, []string{"t1.id = t2.id"}, result.JoinDetails.JoinConditions)
	assert.False(t, result.JoinDetails.CartesianProductRisk)
}

func TestAnalyze_TempTablesToggle(t *testing.T) {
	query := "CREATE TEMP TABLE tmp AS SELECT * FROM x"

	withTemp := newTestAnalyzer(t, nil).Analyze(query, "temp")
	assert.Equal(t, model.QueryTypeCreate, withTemp.QueryType)
	assert.Equal(t, []string{"tmp"}, withTemp.TempTables)
	assert.Equal(t, []string{"x"}, withTemp.Tables)
	assert.Equal(t, []string{"CREATE", "SELECT"}, withTemp.Operations)
	assert.Equal(t, 7, withTemp.ComplexityScore)
	assert.Equal(t,
		[]string{"Temporary tables used - ensure proper cleanup and consider alternatives"},
		withTemp.ChangeAreas)

	opts := model.DefaultAnalysisOptions()
	opts.IncludeTempTables = false
	withoutTemp := New(opts, nil).Analyze(query, "temp")
	assert.Equal(t, []string{}, withoutTemp.TempTables)
	assert.Equal(t, 4, withoutTemp.ComplexityScore)
	assert.Equal(t, []string{model.NoIssuesSentinel}, withoutTemp.ChangeAreas)
}

func TestAnalyze_Idempotent(t *testing.T) {
	a := newTestAnalyzer(t, model.TableMetadata{"users": {{Name: "id"}}})
	query := `SELECT u.id, COUNT(o.id) FROM users u LEFT JOIN orders o ON u.id = o.user_id
		WHERE u.active = 1 AND o.total IN (SELECT MAX(total) FROM orders) GROUP BY u.id`

	first := a.Analyze(query, "q")
	second := a.Analyze(query, "q")
	assert.Equal(t, first, second)
}

func TestAnalyze_ManyTables(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	query := "SELECT * FROM t1 JOIN t2 ON t1.x = t2.x JOIN t3 ON t2.x = t3.x " +
		"JOIN t4 ON t3.x = t4.x JOIN t5 ON t4.x = t5.x JOIN t6 ON t5.x = t6.x"
	result := a.Analyze(query, "many")

	assert.Len(t, result.Tables, 6)
	assert.Contains(t, result.ChangeAreas, "Query involves many tables - consider breaking into smaller queries")
	assert.True(t, result.NeedsReview())
}

func TestAnalyze_ComplexJoinsAndSubqueries(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	query := `SELECT * FROM a
		LEFT OUTER JOIN b ON a.id = b.id
		RIGHT JOIN c ON b.id = c.id
		WHERE a.x IN (SELECT x FROM d WHERE y IN (SELECT y FROM e WHERE z IN (SELECT z FROM f)))`
	result := a.Analyze(query, "complex")

	assert.Equal(t, []string{"JOIN", "RIGHT JOIN", "LEFT OUTER JOIN"}, result.JoinTypes)
	assert.Equal(t, 3, result.Subqueries)
	assert.Contains(t, result.ChangeAreas, "Multiple subqueries detected - consider using CTEs for better readability")
	assert.Contains(t, result.ChangeAreas, "High complexity score - consider refactoring for maintainability")
	assert.Greater(t, result.ComplexityScore, 20)
	assert.NotContains(t, result.ChangeAreas, "Complex join structure - review for optimization opportunities")
}

func TestAnalyze_MetadataMismatch(t *testing.T) {
	metadata := model.TableMetadata{
		"users": {{Name: "id", DataType: "integer"}, {Name: "name", DataType: "varchar(50)"}},
	}
	a := newTestAnalyzer(t, metadata)

	result := a.Analyze("SELECT u.name FROM users u JOIN orders o ON u.id = o.user_id", "meta")

	assert.Equal(t, []string{"users", "orders"}, result.Tables)
	assert.Contains(t, result.ChangeAreas, "Table 'orders' not found in provided metadata")
	assert.NotContains(t, result.ChangeAreas, "Table 'users' not found in provided metadata")

	require.NotNil(t, result.ColumnUsage)
	assert.Equal(t, 2, result.ColumnUsage.MetadataMatched)
}

func TestAnalyze_NoMetadataNoMismatch(t *testing.T) {
	result := newTestAnalyzer(t, nil).Analyze("SELECT a FROM orders", "q")
	for _, area := range result.ChangeAreas {
		assert.NotContains(t, area, "not found in provided metadata")
	}
}

func TestAnalyze_UnbalancedParenthesesIsBestEffort(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	open := a.Analyze("SELECT * FROM t WHERE id IN (SELECT id FROM s", "open")
	assert.Equal(t, model.QueryTypeSelect, open.QueryType)
	assert.Equal(t, 1, open.Subqueries)
	assert.Empty(t, open.ErrorMessage)

	// A stray ")" drives the depth negative and hides the later subquery.
	stray := a.Analyze("SELECT a) FROM t WHERE x IN (SELECT 1)", "stray")
	assert.Equal(t, model.QueryTypeSelect, stray.QueryType)
	assert.Equal(t, 0, stray.Subqueries)
}

func TestAnalyze_UnterminatedLiteralIsError(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	query := "SELECT 'abc FROM t"

	result := a.Analyze(query, "broken")

	assert.Equal(t, model.QueryTypeError, result.QueryType)
	assert.Equal(t, query, result.OriginalQuery)
	require.Len(t, result.ChangeAreas, 1)
	assert.True(t, strings.HasPrefix(result.ChangeAreas[0], "Parsing error: "))
	assert.Contains(t, result.ErrorMessage, "unterminated string literal")
	assert.Empty(t, result.Tables)
	assert.Equal(t, 0, result.ComplexityScore)
}

func TestAnalyze_ColumnWeightTruncation(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	// 1 base + 1 table + 1.5 for three columns
	assert.Equal(t, 3, a.Analyze("SELECT a, b, c FROM t", "q").ComplexityScore)
	// 1 base + 1 table + 2.0 for four columns
	assert.Equal(t, 4, a.Analyze("SELECT a, b, c, d FROM t", "q").ComplexityScore)
}

func TestAnalyze_ConditionsAndFunctions(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	result := a.Analyze("SELECT COUNT(*), UPPER(name) FROM users WHERE a > 1 AND b = 'x' GROUP BY name", "q")

	assert.Equal(t, []string{"COUNT", "UPPER"}, result.Functions)
	assert.Equal(t, []string{"a > 1 AND b = 'x'"}, result.Conditions)
	assert.Equal(t, []string{"users"}, result.Tables)

	concat := a.Analyze("SELECT CONCAT(a, b) FROM t", "q")
	assert.Equal(t, []string{"CONCAT"}, concat.Functions)

	dates := a.Analyze("SELECT YEAR(d), NOW(), LEN(x), DATEADD(day, 1, d) FROM t", "q")
	assert.Empty(t, dates.Functions)

	nested := a.Analyze("SELECT * FROM t WHERE id IN (SELECT id FROM s WHERE x = 1)", "q")
	require.Len(t, nested.Conditions, 1)
	assert.Equal(t, "id IN ( SELECT id FROM s x = 1 )", nested.Conditions[0])
}

func TestAnalyze_RepeatedColumns(t *testing.T) {
	result := newTestAnalyzer(t, nil).Analyze("SELECT a FROM t WHERE a > 1", "q")

	require.NotNil(t, result.ColumnUsage)
	assert.Equal(t, []string{"a"}, result.ColumnUsage.RepeatedColumns)
	// 1 base + 1 table + 0.5 column + 1 condition
	assert.Equal(t, 3, result.ComplexityScore)
}

func TestAnalyze_OptionalViewsDisabled(t *testing.T) {
	a := New(model.AnalysisOptions{}, nil)

	result := a.Analyze("SELECT a FROM t1 JOIN t2 ON t1.id = t2.id", "q")
	assert.True(t, result.HasJoins)
	assert.Nil(t, result.JoinDetails)
	assert.Nil(t, result.ColumnUsage)
}

func TestAnalyze_CartesianRisk(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	tests := []struct {
		name  string
		query string
		risk  bool
	}{
		{"cross join", "SELECT * FROM a CROSS JOIN b", true},
		{"join without condition", "SELECT * FROM a JOIN b", true},
		{"join with using", "SELECT * FROM a JOIN b USING (id)", false},
		{"natural join", "SELECT * FROM a NATURAL JOIN b", false},
		{"two constrained joins", "SELECT * FROM a JOIN b ON a.id = b.id LEFT JOIN c ON b.id = c.id", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.Analyze(tt.query, "q")
			require.NotNil(t, result.JoinDetails)
			assert.Equal(t, tt.risk, result.JoinDetails.CartesianProductRisk)
		})
	}
}

func TestAnalyzeBatch(t *testing.T) {
	a := newTestAnalyzer(t, nil, WithLabel("nightly"), WithConcurrency(2))

	queries := []model.Query{
		{Name: "first", SQL: "SELECT a FROM t"},
		{SQL: ""},
		{SQL: "SELECT 'x"},
		{SQL: "SELECT a, b FROM t1 JOIN t2 ON t1.id=t2.id"},
	}

	run := a.AnalyzeBatch(context.Background(), queries)

	_, err := uuid.Parse(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, "nightly", run.Label)
	assert.False(t, run.Timestamp.IsZero())
	require.Len(t, run.Results, 4)

	assert.Equal(t, "first", run.Results[0].QueryID)
	assert.Equal(t, "Query_2", run.Results[1].QueryID)
	assert.Equal(t, "Query_3", run.Results[2].QueryID)
	assert.Equal(t, "Query_4", run.Results[3].QueryID)

	assert.Equal(t, model.QueryTypeSelect, run.Results[0].QueryType)
	assert.Equal(t, model.QueryTypeEmpty, run.Results[1].QueryType)
	assert.Equal(t, model.QueryTypeError, run.Results[2].QueryType)
	assert.Equal(t, model.QueryTypeSelect, run.Results[3].QueryType)

	s := run.Summary
	assert.Equal(t, 4, s.TotalQueries)
	assert.Equal(t, 2, s.AnalyzedQueries)
	assert.Equal(t, 1, s.EmptyQueries)
	assert.Equal(t, 1, s.FailedQueries)
	assert.Equal(t, 2, s.QueriesByType[model.QueryTypeSelect])
	assert.Equal(t, 1, s.QueriesWithJoins)
	assert.Equal(t, 0, s.QueriesNeedingReview)
	assert.Equal(t, 2, s.ComplexityStats.Samples)
	assert.Equal(t, 2, s.ComplexityStats.Min)
	assert.Equal(t, 6, s.ComplexityStats.Max)
}

func TestAnalyzeBatch_PreservesOrder(t *testing.T) {
	a := newTestAnalyzer(t, nil, WithConcurrency(3), WithQueryTimeout(time.Minute))

	queries := make([]model.Query, 50)
	for i := range queries {
		queries[i] = model.Query{Name: fmt.Sprintf("q%02d", i), SQL: fmt.Sprintf("SELECT c%d FROM t%d", i, i)}
	}

	run := a.AnalyzeBatch(context.Background(), queries)

	require.Len(t, run.Results, len(queries))
	for i, result := range run.Results {
		assert.Equal(t, queries[i].Name, result.QueryID)
		assert.Equal(t, []string{fmt.Sprintf("t%d", i)}, result.Tables)
	}
}

func TestAnalyzeBatch_CancelledContext(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := a.AnalyzeBatch(ctx, []model.Query{{Name: "q", SQL: "SELECT a FROM t"}})

	require.Len(t, run.Results, 1)
	assert.Equal(t, model.QueryTypeError, run.Results[0].QueryType)
	assert.Contains(t, run.Results[0].ErrorMessage, "analysis cancelled")
	assert.Equal(t, 1, run.Summary.FailedQueries)
}

func TestAnalyzeBatch_CancelledWithFullSemaphore(t *testing.T) {
	a := newTestAnalyzer(t, nil, WithConcurrency(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	queries := make([]model.Query, 20)
	for i := range queries {
		queries[i] = model.Query{SQL: "SELECT a FROM t"}
	}

	done := make(chan model.RunResult, 1)
	go func() { done <- a.AnalyzeBatch(ctx, queries) }()

	select {
	case run := <-done:
		require.Len(t, run.Results, 20)
		for i, r := range run.Results {
			assert.Equal(t, model.QueryTypeError, r.QueryType)
			assert.Equal(t, fmt.Sprintf("Query_%d", i+1), r.QueryID)
			assert.Contains(t, r.ErrorMessage, "analysis cancelled")
		}
		assert.Equal(t, 20, run.Summary.FailedQueries)
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not return after cancellation")
	}
}

func TestAbandoned_Timeout(t *testing.T) {
	a := newTestAnalyzer(t, nil, WithQueryTimeout(2*time.Second))

	result := a.abandoned("q", "SELECT 1", context.DeadlineExceeded)

	assert.Equal(t, model.QueryTypeError, result.QueryType)
	assert.Contains(t, result.ErrorMessage, ErrAnalysisTimeout.Error())
	assert.Contains(t, result.ErrorMessage, "2s")
}
