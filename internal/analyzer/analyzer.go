// internal/analyzer/analyzer.go
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/0xsj/sql-analyzer/internal/model"
	"github.com/0xsj/sql-analyzer/internal/sqltoken"
	"github.com/0xsj/sql-analyzer/pkg/utils"
)

var ErrAnalysisTimeout = errors.New("query analysis timed out")

const (
	defaultConcurrency  = 4
	defaultQueryTimeout = 5 * time.Second
	defaultQueryID      = "unknown"
)

// Analyzer classifies and scores SQL statements. It holds no per-query state,
// so one Analyzer may serve concurrent callers.
type Analyzer struct {
	options     model.AnalysisOptions
	metadata    model.TableMetadata
	logger      *zap.Logger
	concurrency int
	timeout     time.Duration
	label       string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithConcurrency bounds the number of queries analyzed at once by AnalyzeBatch.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithQueryTimeout bounds the time AnalyzeBatch waits for a single query.
func WithQueryTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLabel tags the RunResult produced by AnalyzeBatch.
func WithLabel(label string) Option {
	return func(a *Analyzer) {
		a.label = label
	}
}

// New creates an Analyzer. metadata may be nil.
func New(options model.AnalysisOptions, metadata model.TableMetadata, opts ...Option) *Analyzer {
	a := &Analyzer{
		options:     options,
		metadata:    metadata,
		logger:      zap.NewNop(),
		concurrency: defaultConcurrency,
		timeout:     defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze produces the analysis record for one statement. It never fails:
// blank input yields an EMPTY result, and scanner errors or internal panics
// yield an ERROR result carrying the message.
func (a *Analyzer) Analyze(query, queryID string) (result model.AnalysisResult) {
	if queryID == "" {
		queryID = defaultQueryID
	}

	if strings.TrimSpace(query) == "" {
		return emptyResult(queryID)
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("Recovered from analysis panic",
				zap.String("query_id", queryID),
				zap.Any("panic", r))
			result = errorResult(queryID, query, fmt.Sprint(r))
		}
	}()

	tokens, err := sqltoken.Scan(query)
	if err != nil {
		a.logger.Warn("Failed to tokenize query",
			zap.String("query_id", queryID),
			zap.Error(err))
		return errorResult(queryID, query, err.Error())
	}
	tokens = sqltoken.Meaningful(tokens)

	f := a.extract(query, tokens)
	score := calculateComplexity(f)

	result = model.AnalysisResult{
		QueryID:         queryID,
		OriginalQuery:   strings.TrimSpace(query),
		QueryType:       f.queryType,
		Tables:          f.tables,
		Columns:         f.columns,
		HasJoins:        len(f.joinTypes) > 0,
		JoinTypes:       f.joinTypes,
		TempTables:      f.tempTables,
		Operations:      f.operations,
		ComplexityScore: score,
		ChangeAreas:     identifyChangeAreas(f, score, a.metadata),
		Subqueries:      f.subqueries,
		Functions:       f.functions,
		Conditions:      f.conditions,
	}

	if a.options.DetailedJoinAnalysis && result.HasJoins {
		result.JoinDetails = buildJoinDetails(tokens, f)
	}
	if a.options.ColumnUsageTracking {
		result.ColumnUsage = buildColumnUsage(tokens, f, a.metadata)
	}

	a.logger.Debug("Analyzed query",
		zap.String("query_id", queryID),
		zap.String("query_type", string(result.QueryType)),
		zap.Int("complexity_score", score))

	return result
}

func (a *Analyzer) extract(query string, tokens []sqltoken.Token) features {
	tables := extractTables(tokens)

	tempTables := make([]string, 0)
	if a.options.IncludeTempTables {
		tempTables = ExtractTempTables(query)
	}

	return features{
		queryType:  DetermineQueryType(query),
		tables:     tables.tables.Items(),
		joinTables: tables.joinTables.Items(),
		columns:    extractColumns(tokens, tables, a.metadata).Items(),
		joinTypes:  ExtractJoinTypes(query),
		tempTables: tempTables,
		operations: extractOperations(tokens).Items(),
		subqueries: countSubqueries(tokens),
		functions:  extractFunctions(tokens).Items(),
		conditions: extractConditions(tokens),
	}
}

func emptyResult(queryID string) model.AnalysisResult {
	return model.AnalysisResult{
		QueryID:     queryID,
		QueryType:   model.QueryTypeEmpty,
		Tables:      []string{},
		Columns:     []string{},
		JoinTypes:   []string{},
		TempTables:  []string{},
		Operations:  []string{},
		ChangeAreas: []string{"Query is empty or invalid"},
		Functions:   []string{},
		Conditions:  []string{},
	}
}

func errorResult(queryID, query, message string) model.AnalysisResult {
	return model.AnalysisResult{
		QueryID:       queryID,
		OriginalQuery: query,
		QueryType:     model.QueryTypeError,
		Tables:        []string{},
		Columns:       []string{},
		JoinTypes:     []string{},
		TempTables:    []string{},
		Operations:    []string{},
		ChangeAreas:   []string{"Parsing error: " + message},
		Functions:     []string{},
		Conditions:    []string{},
		ErrorMessage:  message,
	}
}

// AnalyzeBatch analyzes queries concurrently and returns the results in input
// order. Queries without a name are called Query_<n>, counting from 1.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, queries []model.Query) model.RunResult {
	start := time.Now()
	runID := uuid.New().String()

	a.logger.Info("Starting analysis run",
		zap.String("run_id", runID),
		zap.Int("queries", len(queries)),
		zap.Int("concurrency", a.concurrency))

	results := make([]model.AnalysisResult, len(queries))
	semaphore := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup

	for i, query := range queries {
		queryID := query.Name
		if queryID == "" {
			queryID = fmt.Sprintf("Query_%d", i+1)
		}

		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			results[i] = a.abandoned(queryID, query.SQL, ctx.Err())
			continue
		}

		wg.Add(1)

		go func(idx int, queryID, sql string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			results[idx] = a.analyzeWithTimeout(ctx, sql, queryID)
		}(i, queryID, query.SQL)
	}

	wg.Wait()

	duration := time.Since(start)
	a.logger.Info("Analysis run completed",
		zap.String("run_id", runID),
		zap.Int("queries", len(queries)),
		zap.Duration("duration", duration))

	return model.RunResult{
		RunID:     runID,
		Label:     a.label,
		Timestamp: start,
		Duration:  duration,
		Options:   a.options,
		Results:   results,
		Summary:   calculateSummary(results),
	}
}

func (a *Analyzer) analyzeWithTimeout(ctx context.Context, sql, queryID string) model.AnalysisResult {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return a.abandoned(queryID, sql, err)
	}

	done := make(chan model.AnalysisResult, 1)
	go func() {
		done <- a.Analyze(sql, queryID)
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		return a.abandoned(queryID, sql, ctx.Err())
	}
}

func (a *Analyzer) abandoned(queryID, sql string, cause error) model.AnalysisResult {
	err := fmt.Errorf("analysis cancelled: %w", cause)
	if errors.Is(cause, context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s", ErrAnalysisTimeout, a.timeout)
	}
	a.logger.Warn("Query analysis abandoned",
		zap.String("query_id", queryID),
		zap.Error(err))
	return errorResult(queryID, sql, err.Error())
}

func calculateSummary(results []model.AnalysisResult) model.RunSummary {
	summary := model.RunSummary{
		TotalQueries:  len(results),
		QueriesByType: make(map[model.QueryType]int),
	}

	var scores []int
	for _, result := range results {
		summary.QueriesByType[result.QueryType]++

		switch result.QueryType {
		case model.QueryTypeEmpty:
			summary.EmptyQueries++
			continue
		case model.QueryTypeError:
			summary.FailedQueries++
			continue
		}

		summary.AnalyzedQueries++
		scores = append(scores, result.ComplexityScore)

		if result.HasJoins {
			summary.QueriesWithJoins++
		}
		if len(result.TempTables) > 0 {
			summary.QueriesWithTempTables++
		}
		if result.Subqueries > 0 {
			summary.QueriesWithSubqueries++
		}
		if result.NeedsReview() {
			summary.QueriesNeedingReview++
		}
	}

	summary.ComplexityStats = utils.CalculateStats(scores)
	return summary
}
