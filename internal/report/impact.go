// internal/report/impact.go
package report

import (
	"fmt"
	"sort"

	"github.com/0xsj/sql-analyzer/internal/model"
	"github.com/0xsj/sql-analyzer/pkg/utils"
)

const (
	highComplexityThreshold = 15
	tableRiskThreshold      = 10
	mostCommonIssuesLimit   = 5
)

// CalculateImpact aggregates the change areas of a run into an impact view
// with recommended actions.
func CalculateImpact(results []model.AnalysisResult) model.ImpactAnalysis {
	impact := model.ImpactAnalysis{
		TotalQueries:       len(results),
		MostCommonIssues:   []model.IssueCount{},
		TablesAtRisk:       []string{},
		RecommendedActions: []string{},
	}
	if len(results) == 0 {
		return impact
	}

	issueCounts := make(map[string]int)
	var issueOrder []string
	atRisk := utils.NewOrderedSet()

	for _, result := range results {
		if result.NeedsReview() {
			impact.QueriesNeedingChanges++
			for _, area := range result.ChangeAreas {
				if _, seen := issueCounts[area]; !seen {
					issueOrder = append(issueOrder, area)
				}
				issueCounts[area]++
			}
		}

		if result.ComplexityScore > highComplexityThreshold {
			impact.HighComplexityQueries++
		}
		if result.HasJoins {
			impact.QueriesWithJoins++
		}
		if len(result.TempTables) > 0 {
			impact.QueriesWithTempTables++
		}
		if result.Subqueries > 0 {
			impact.QueriesWithSubqueries++
		}
		if result.ComplexityScore > tableRiskThreshold {
			for _, table := range result.Tables {
				atRisk.Add(table)
			}
		}
	}

	for _, issue := range issueOrder {
		impact.MostCommonIssues = append(impact.MostCommonIssues, model.IssueCount{Issue: issue, Count: issueCounts[issue]})
	}
	sort.SliceStable(impact.MostCommonIssues, func(i, j int) bool {
		return impact.MostCommonIssues[i].Count > impact.MostCommonIssues[j].Count
	})
	if len(impact.MostCommonIssues) > mostCommonIssuesLimit {
		impact.MostCommonIssues = impact.MostCommonIssues[:mostCommonIssuesLimit]
	}

	impact.TablesAtRisk = atRisk.Items()
	sort.Strings(impact.TablesAtRisk)

	impact.RecommendedActions = recommendations(impact)
	return impact
}

func recommendations(impact model.ImpactAnalysis) []string {
	var actions []string

	if impact.QueriesNeedingChanges > 0 {
		pct := float64(impact.QueriesNeedingChanges) / float64(impact.TotalQueries) * 100
		actions = append(actions, fmt.Sprintf("%.1f%% of queries need attention - prioritize based on business impact", pct))
	}
	if impact.HighComplexityQueries > 0 {
		actions = append(actions, fmt.Sprintf("Consider refactoring %d high-complexity queries", impact.HighComplexityQueries))
	}
	if impact.QueriesWithTempTables > 0 {
		actions = append(actions, "Review temporary table usage - consider CTEs or materialized views as alternatives")
	}
	if float64(impact.QueriesWithSubqueries) > float64(impact.TotalQueries)*0.3 {
		actions = append(actions, "High subquery usage detected - consider using JOINs or CTEs for better performance")
	}
	if len(impact.TablesAtRisk) > 0 {
		actions = append(actions, fmt.Sprintf("Focus testing efforts on %d high-impact tables", len(impact.TablesAtRisk)))
	}

	if len(actions) == 0 {
		actions = append(actions, "Overall query health looks good - continue monitoring")
	}
	return actions
}

// TableUsage counts how often each table is referenced across a run, in
// first-seen order. Risk grows with the share of queries touching the table.
func TableUsage(results []model.AnalysisResult, metadata model.TableMetadata) []model.TableUsage {
	counts := make(map[string]int)
	var order []string

	for _, result := range results {
		for _, table := range result.Tables {
			if _, seen := counts[table]; !seen {
				order = append(order, table)
			}
			counts[table]++
		}
	}

	usage := make([]model.TableUsage, 0, len(order))
	total := float64(len(results))
	for _, table := range order {
		count := counts[table]

		risk := "Low"
		switch {
		case float64(count) > total*0.5:
			risk = "High"
		case float64(count) > total*0.2:
			risk = "Medium"
		}

		usage = append(usage, model.TableUsage{
			TableName:  table,
			UsageCount: count,
			InMetadata: metadata.HasTable(table),
			RiskLevel:  risk,
		})
	}
	return usage
}
