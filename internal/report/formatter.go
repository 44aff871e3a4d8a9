// internal/report/formatter.go
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/0xsj/sql-analyzer/internal/model"
)

// PrintSummary writes a human-readable run summary to w.
func PrintSummary(w io.Writer, run model.RunResult, impact model.ImpactAnalysis) {
	s := run.Summary

	fmt.Fprintln(w, "\n====== SQL ANALYSIS SUMMARY ======")
	fmt.Fprintf(w, "Run: %s (%s)\n", run.Label, run.RunID)
	fmt.Fprintf(w, "Total Duration: %s\n", FormatDuration(run.Duration))
	fmt.Fprintf(w, "Queries: %d total, %d analyzed, %d empty, %d failed\n",
		s.TotalQueries, s.AnalyzedQueries, s.EmptyQueries, s.FailedQueries)
	fmt.Fprintf(w, "Needing Review: %d\n", s.QueriesNeedingReview)
	fmt.Fprintf(w, "Complexity: min %d, max %d, mean %.2f, median %d, p95 %d\n",
		s.ComplexityStats.Min, s.ComplexityStats.Max, s.ComplexityStats.Mean,
		s.ComplexityStats.Median, s.ComplexityStats.P95)

	fmt.Fprintln(w, "\nQuery Type Distribution:")
	types := make([]string, 0, len(s.QueriesByType))
	for qt := range s.QueriesByType {
		types = append(types, string(qt))
	}
	sort.Strings(types)

	for _, qt := range types {
		count := s.QueriesByType[model.QueryType(qt)]
		fmt.Fprintf(w, "  %s: %d queries (%.1f%%)\n",
			qt,
			count,
			float64(count)/float64(s.TotalQueries)*100)
	}

	fmt.Fprintln(w, "\nTop 5 Most Complex Queries:")
	for i, q := range topQueries(run.Results, 5) {
		fmt.Fprintf(w, "  %d. %s: score %d (%s priority), %d change areas\n",
			i+1, q.QueryID, q.ComplexityScore, q.Priority, q.ChangeAreas)
	}

	fmt.Fprintln(w, "\nMost Common Issues:")
	if len(impact.MostCommonIssues) == 0 {
		fmt.Fprintln(w, "  No issues detected")
	}
	for i, issue := range impact.MostCommonIssues {
		fmt.Fprintf(w, "  %d. %s (%d)\n", i+1, issue.Issue, issue.Count)
	}

	fmt.Fprintln(w, "\nFailed Queries:")
	failed := 0
	for _, r := range run.Results {
		if r.QueryType != model.QueryTypeError {
			continue
		}
		failed++
		if failed > 5 {
			break
		}
		fmt.Fprintf(w, "  %d. %s: %s\n", failed, r.QueryID, r.ErrorMessage)
	}
	if failed == 0 {
		fmt.Fprintln(w, "  No queries with errors")
	}

	if len(impact.TablesAtRisk) > 0 {
		fmt.Fprintf(w, "\nTables at Risk: %d\n", len(impact.TablesAtRisk))
	}

	fmt.Fprintln(w, "\nRecommended Actions:")
	for _, action := range impact.RecommendedActions {
		fmt.Fprintf(w, "  - %s\n", action)
	}

	fmt.Fprintln(w, "\nAnalysis Completed At:", run.Timestamp.Add(run.Duration).Format(time.RFC1123))
	fmt.Fprintln(w, "==================================")
}

func FormatDuration(d time.Duration) string {
	if d < time.Microsecond {
		return fmt.Sprintf("%.2f ns", float64(d.Nanoseconds()))
	} else if d < time.Millisecond {
		return fmt.Sprintf("%.2f µs", float64(d.Nanoseconds())/1000)
	} else if d < time.Second {
		return fmt.Sprintf("%.2f ms", float64(d.Nanoseconds())/1000000)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2f s", d.Seconds())
	} else {
		return fmt.Sprintf("%.2f min", d.Minutes())
	}
}
