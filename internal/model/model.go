// internal/model/model.go
package model

import (
	"time"

	"github.com/0xsj/sql-analyzer/pkg/utils"
)

// QueryType is the statement classification of an analyzed query.
type QueryType string

const (
	QueryTypeSelect  QueryType = "SELECT"
	QueryTypeInsert  QueryType = "INSERT"
	QueryTypeUpdate  QueryType = "UPDATE"
	QueryTypeDelete  QueryType = "DELETE"
	QueryTypeCreate  QueryType = "CREATE"
	QueryTypeDrop    QueryType = "DROP"
	QueryTypeAlter   QueryType = "ALTER"
	QueryTypeMerge   QueryType = "MERGE"
	QueryTypeUpsert  QueryType = "UPSERT"
	QueryTypeCTE     QueryType = "CTE"
	QueryTypeUnknown QueryType = "UNKNOWN"
	QueryTypeEmpty   QueryType = "EMPTY"
	QueryTypeError   QueryType = "ERROR"
)

// Query is one input statement. Name doubles as the query ID of its result.
type Query struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SQL         string `json:"sql"`
}

// FieldMetadata describes one column of a known table.
type FieldMetadata struct {
	Name        string `json:"name" yaml:"name"`
	DataType    string `json:"data_type" yaml:"data_type"`
	Description string `json:"description" yaml:"description"`
}

// TableMetadata maps a table name (case-sensitive) to its ordered field list.
// It is read-only once handed to the analyzer.
type TableMetadata map[string][]FieldMetadata

// HasTable reports whether name is a known table.
func (m TableMetadata) HasTable(name string) bool {
	_, ok := m[name]
	return ok
}

// AnalysisOptions toggles the optional parts of an analysis.
type AnalysisOptions struct {
	IncludeTempTables    bool `json:"includeTempTables" yaml:"include_temp_tables" env:"SQLA_INCLUDE_TEMP_TABLES"`
	DetailedJoinAnalysis bool `json:"detailedJoinAnalysis" yaml:"detailed_join_analysis" env:"SQLA_DETAILED_JOIN_ANALYSIS"`
	ColumnUsageTracking  bool `json:"columnUsageTracking" yaml:"column_usage_tracking" env:"SQLA_COLUMN_USAGE_TRACKING"`
}

// DefaultAnalysisOptions enables every optional analysis.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		IncludeTempTables:    true,
		DetailedJoinAnalysis: true,
		ColumnUsageTracking:  true,
	}
}

// JoinDetails is the detailed join view attached to results with joins.
type JoinDetails struct {
	JoinCount            int      `json:"join_count"`
	JoinTables           []string `json:"join_tables"`
	JoinConditions       []string `json:"join_conditions"`
	CartesianProductRisk bool     `json:"cartesian_product_risk"`
}

// ColumnUsage summarizes how the extracted columns are used.
type ColumnUsage struct {
	TotalColumns    int      `json:"total_columns"`
	UniqueColumns   int      `json:"unique_columns"`
	RepeatedColumns []string `json:"repeated_columns"`
	MetadataMatched int      `json:"metadata_matched"`
}

// AnalysisResult is the analysis record produced for one query.
type AnalysisResult struct {
	QueryID         string       `json:"query_id"`
	OriginalQuery   string       `json:"original_query"`
	QueryType       QueryType    `json:"query_type"`
	Tables          []string     `json:"tables"`
	Columns         []string     `json:"columns"`
	HasJoins        bool         `json:"has_joins"`
	JoinTypes       []string     `json:"join_types"`
	TempTables      []string     `json:"temp_tables"`
	Operations      []string     `json:"operations"`
	ComplexityScore int          `json:"complexity_score"`
	ChangeAreas     []string     `json:"change_areas"`
	Subqueries      int          `json:"subqueries"`
	Functions       []string     `json:"functions"`
	Conditions      []string     `json:"conditions"`
	JoinDetails     *JoinDetails `json:"join_details,omitempty"`
	ColumnUsage     *ColumnUsage `json:"column_usage,omitempty"`
	ErrorMessage    string       `json:"error_message,omitempty"`
}

// NoIssuesSentinel is the single change area of a query with no findings.
const NoIssuesSentinel = "No obvious issues detected"

// NeedsReview reports whether the result carries at least one real finding.
func (r AnalysisResult) NeedsReview() bool {
	for _, area := range r.ChangeAreas {
		if area == NoIssuesSentinel {
			return false
		}
	}
	return len(r.ChangeAreas) > 0
}

// RunResult is the outcome of analyzing a batch of queries.
type RunResult struct {
	RunID     string           `json:"run_id"`
	Label     string           `json:"label"`
	Timestamp time.Time        `json:"timestamp"`
	Duration  time.Duration    `json:"duration_ns"`
	Options   AnalysisOptions  `json:"options"`
	Results   []AnalysisResult `json:"results"`
	Summary   RunSummary       `json:"summary"`
}

// RunSummary provides aggregate statistics for a run.
type RunSummary struct {
	TotalQueries          int               `json:"total_queries"`
	AnalyzedQueries       int               `json:"analyzed_queries"`
	EmptyQueries          int               `json:"empty_queries"`
	FailedQueries         int               `json:"failed_queries"`
	QueriesByType         map[QueryType]int `json:"queries_by_type"`
	QueriesWithJoins      int               `json:"queries_with_joins"`
	QueriesWithTempTables int               `json:"queries_with_temp_tables"`
	QueriesWithSubqueries int               `json:"queries_with_subqueries"`
	QueriesNeedingReview  int               `json:"queries_needing_review"`
	ComplexityStats       utils.Stats       `json:"complexity_stats"`
}

// IssueCount is one entry of the most-common-issues ranking.
type IssueCount struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

// ImpactAnalysis is the change-impact view over a whole run.
type ImpactAnalysis struct {
	TotalQueries          int          `json:"total_queries"`
	QueriesNeedingChanges int          `json:"queries_needing_changes"`
	HighComplexityQueries int          `json:"high_complexity_queries"`
	QueriesWithJoins      int          `json:"queries_with_joins"`
	QueriesWithTempTables int          `json:"queries_with_temp_tables"`
	QueriesWithSubqueries int          `json:"queries_with_subqueries"`
	MostCommonIssues      []IssueCount `json:"most_common_issues"`
	TablesAtRisk          []string     `json:"tables_at_risk"`
	RecommendedActions    []string     `json:"recommended_actions"`
}

// TableUsage is one row of the table-usage report.
type TableUsage struct {
	TableName  string `json:"table_name"`
	UsageCount int    `json:"usage_count"`
	InMetadata bool   `json:"in_metadata"`
	RiskLevel  string `json:"risk_level"`
}
