// internal/report/rows.go
package report

import (
	"strconv"
	"strings"

	"github.com/0xsj/sql-analyzer/internal/analyzer"
	"github.com/0xsj/sql-analyzer/internal/model"
)

var detailedHeader = []string{
	"Query ID", "Type", "Tables Count", "Tables", "Columns Count", "Has Joins", "Join Types",
	"Subqueries", "Temp Tables", "Functions", "Complexity Score", "Change Areas", "Status",
}

var changeAreaHeader = []string{"Query_ID", "Change_Area", "Complexity_Score", "Priority"}

var tableUsageHeader = []string{"Table_Name", "Usage_Count", "In_Metadata", "Risk_Level"}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func status(r model.AnalysisResult) string {
	if r.NeedsReview() {
		return "Needs Review"
	}
	return "OK"
}

// detailedRow is one result in the review layout. Numeric columns stay
// numeric so spreadsheet cells keep their type.
func detailedRow(r model.AnalysisResult) []interface{} {
	return []interface{}{
		r.QueryID,
		string(r.QueryType),
		len(r.Tables),
		strings.Join(r.Tables, ", "),
		len(r.Columns),
		yesNo(r.HasJoins),
		strings.Join(r.JoinTypes, ", "),
		r.Subqueries,
		len(r.TempTables),
		strings.Join(r.Functions, ", "),
		r.ComplexityScore,
		len(r.ChangeAreas),
		status(r),
	}
}

func changeAreaRows(results []model.AnalysisResult) [][]interface{} {
	var rows [][]interface{}
	for _, r := range results {
		for _, area := range r.ChangeAreas {
			rows = append(rows, []interface{}{r.QueryID, area, r.ComplexityScore, analyzer.Priority(r.ComplexityScore)})
		}
	}
	return rows
}

func tableUsageRow(u model.TableUsage) []interface{} {
	return []interface{}{u.TableName, u.UsageCount, yesNo(u.InMetadata), u.RiskLevel}
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case string:
			out[i] = val
		case int:
			out[i] = strconv.Itoa(val)
		}
	}
	return out
}
