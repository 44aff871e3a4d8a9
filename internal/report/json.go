// internal/report/json.go
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/0xsj/sql-analyzer/internal/analyzer"
	"github.com/0xsj/sql-analyzer/internal/model"
)

const timestampLayout = "20060102-150405"

// reportName builds "<kind>-<label>-<timestamp>.<ext>" from the run.
func reportName(kind string, run model.RunResult, ext string) string {
	ts := run.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	label := strings.TrimSpace(run.Label)
	if label == "" {
		label = "run"
	}
	label = strings.ReplaceAll(label, string(filepath.Separator), "_")
	return fmt.Sprintf("%s-%s-%s.%s", kind, label, ts.Format(timestampLayout), ext)
}

func writeJSON(filename string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling results: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("error writing results file: %w", err)
	}
	return nil
}

// SaveJSON writes the full run and returns the file path.
func SaveJSON(run model.RunResult, outputDir string) (string, error) {
	filename := filepath.Join(outputDir, reportName("analysis", run, "json"))
	if err := writeJSON(filename, run); err != nil {
		return "", err
	}
	return filename, nil
}

type querySummary struct {
	QueryID         string          `json:"query_id"`
	QueryType       model.QueryType `json:"query_type"`
	ComplexityScore int             `json:"complexity_score"`
	Priority        string          `json:"priority"`
	ChangeAreas     int             `json:"change_areas"`
}

// SaveSummaryJSON writes the run summary, the impact view and the five most
// complex queries.
func SaveSummaryJSON(run model.RunResult, impact model.ImpactAnalysis, outputDir string) (string, error) {
	filename := filepath.Join(outputDir, reportName("summary", run, "json"))

	summary := struct {
		RunID      string               `json:"run_id"`
		Timestamp  time.Time            `json:"timestamp"`
		Label      string               `json:"label"`
		Duration   string               `json:"duration"`
		Summary    model.RunSummary     `json:"summary"`
		Impact     model.ImpactAnalysis `json:"impact"`
		TopQueries []querySummary       `json:"top_queries"`
	}{
		RunID:      run.RunID,
		Timestamp:  run.Timestamp,
		Label:      run.Label,
		Duration:   run.Duration.String(),
		Summary:    run.Summary,
		Impact:     impact,
		TopQueries: topQueries(run.Results, 5),
	}

	if err := writeJSON(filename, summary); err != nil {
		return "", err
	}
	return filename, nil
}

func topQueries(results []model.AnalysisResult, n int) []querySummary {
	sorted := make([]model.AnalysisResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ComplexityScore > sorted[j].ComplexityScore
	})

	top := make([]querySummary, 0, n)
	for i, r := range sorted {
		if i >= n {
			break
		}
		top = append(top, querySummary{
			QueryID:         r.QueryID,
			QueryType:       r.QueryType,
			ComplexityScore: r.ComplexityScore,
			Priority:        analyzer.Priority(r.ComplexityScore),
			ChangeAreas:     len(r.ChangeAreas),
		})
	}
	return top
}

// LoadRun reads a run previously written by SaveJSON.
func LoadRun(path string) (model.RunResult, error) {
	var run model.RunResult

	data, err := os.ReadFile(path)
	if err != nil {
		return run, fmt.Errorf("error reading run file: %w", err)
	}
	if err := json.Unmarshal(data, &run); err != nil {
		return run, fmt.Errorf("error parsing run file: %w", err)
	}
	return run, nil
}

// QueryComparison is the score change of one query between two runs.
type QueryComparison struct {
	QueryID           string          `json:"query_id"`
	BeforeType        model.QueryType `json:"before_type"`
	AfterType         model.QueryType `json:"after_type"`
	BeforeScore       int             `json:"before_score"`
	AfterScore        int             `json:"after_score"`
	ScoreDelta        int             `json:"score_delta"`
	BeforeNeedsReview bool            `json:"before_needs_review"`
	AfterNeedsReview  bool            `json:"after_needs_review"`
}

// ComparisonResult compares two runs query by query.
type ComparisonResult struct {
	BeforeLabel    string            `json:"before_label"`
	AfterLabel     string            `json:"after_label"`
	BeforeRunID    string            `json:"before_run_id"`
	AfterRunID     string            `json:"after_run_id"`
	AvgScoreChange float64           `json:"avg_score_change"`
	Improved       int               `json:"improved"`
	Regressed      int               `json:"regressed"`
	Unchanged      int               `json:"unchanged"`
	Queries        []QueryComparison `json:"queries"`
}

// CompareRuns pairs queries by ID. Queries present in only one run are
// skipped. The most improved queries (largest score drop) come first.
func CompareRuns(before, after model.RunResult) ComparisonResult {
	afterByID := make(map[string]model.AnalysisResult, len(after.Results))
	for _, r := range after.Results {
		afterByID[r.QueryID] = r
	}

	comparison := ComparisonResult{
		BeforeLabel: before.Label,
		AfterLabel:  after.Label,
		BeforeRunID: before.RunID,
		AfterRunID:  after.RunID,
		Queries:     []QueryComparison{},
	}

	var totalDelta int
	for _, b := range before.Results {
		a, found := afterByID[b.QueryID]
		if !found {
			continue
		}

		qc := QueryComparison{
			QueryID:           b.QueryID,
			BeforeType:        b.QueryType,
			AfterType:         a.QueryType,
			BeforeScore:       b.ComplexityScore,
			AfterScore:        a.ComplexityScore,
			ScoreDelta:        a.ComplexityScore - b.ComplexityScore,
			BeforeNeedsReview: b.NeedsReview(),
			AfterNeedsReview:  a.NeedsReview(),
		}
		totalDelta += qc.ScoreDelta

		switch {
		case qc.ScoreDelta < 0:
			comparison.Improved++
		case qc.ScoreDelta > 0:
			comparison.Regressed++
		default:
			comparison.Unchanged++
		}

		comparison.Queries = append(comparison.Queries, qc)
	}

	if n := len(comparison.Queries); n > 0 {
		comparison.AvgScoreChange = float64(totalDelta) / float64(n)
	}

	sort.SliceStable(comparison.Queries, func(i, j int) bool {
		return comparison.Queries[i].ScoreDelta < comparison.Queries[j].ScoreDelta
	})

	return comparison
}

// SaveComparisonJSON writes the comparison of two runs.
func SaveComparisonJSON(before, after model.RunResult, outputDir string) (string, error) {
	ts := after.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	filename := filepath.Join(outputDir, fmt.Sprintf("comparison-%s-vs-%s-%s.json",
		before.Label, after.Label, ts.Format(timestampLayout)))

	if err := writeJSON(filename, CompareRuns(before, after)); err != nil {
		return "", err
	}
	return filename, nil
}
