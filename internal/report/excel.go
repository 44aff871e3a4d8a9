// internal/report/excel.go
package report

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/0xsj/sql-analyzer/internal/model"
)

const (
	sheetSummary    = "Executive_Summary"
	sheetDetailed   = "Detailed_Analysis"
	sheetChanges    = "Change_Areas"
	sheetTableUsage = "Table_Usage"
	sheetMatrix     = "Complexity_Matrix"
)

// SaveExcel writes the review workbook. Change_Areas and Table_Usage are only
// present when they have rows.
func SaveExcel(run model.RunResult, impact model.ImpactAnalysis, metadata model.TableMetadata, outputDir string) (string, error) {
	filename := filepath.Join(outputDir, reportName("analysis", run, "xlsx"))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return "", fmt.Errorf("error creating summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("error creating header style: %w", err)
	}
	wb := &workbook{file: f, headerStyle: headerStyle}

	wb.write(sheetSummary, []string{"Metric", "Value"}, summaryRows(impact))
	wb.write(sheetDetailed, detailedHeader, detailedRows(run.Results))
	if rows := changeAreaRows(run.Results); len(rows) > 0 {
		wb.write(sheetChanges, changeAreaHeader, rows)
	}
	if usage := TableUsage(run.Results, metadata); len(usage) > 0 {
		rows := make([][]interface{}, 0, len(usage))
		for _, u := range usage {
			rows = append(rows, tableUsageRow(u))
		}
		wb.write(sheetTableUsage, tableUsageHeader, rows)
	}
	header, rows := complexityMatrix(run.Results)
	wb.write(sheetMatrix, header, rows)

	if wb.err != nil {
		return "", wb.err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(filename); err != nil {
		return "", fmt.Errorf("error saving workbook: %w", err)
	}
	return filename, nil
}

// workbook keeps the first error so sheets can be written in sequence.
type workbook struct {
	file        *excelize.File
	headerStyle int
	err         error
}

func (wb *workbook) write(sheet string, header []string, rows [][]interface{}) {
	if wb.err != nil {
		return
	}

	if idx, _ := wb.file.GetSheetIndex(sheet); idx < 0 {
		if _, err := wb.file.NewSheet(sheet); err != nil {
			wb.err = fmt.Errorf("error creating sheet %s: %w", sheet, err)
			return
		}
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := wb.file.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		wb.err = fmt.Errorf("error writing %s header: %w", sheet, err)
		return
	}

	if len(header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := wb.file.SetCellStyle(sheet, "A1", last, wb.headerStyle); err != nil {
			wb.err = fmt.Errorf("error styling %s header: %w", sheet, err)
			return
		}
	}

	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			wb.err = err
			return
		}
		if err := wb.file.SetSheetRow(sheet, cellRef, &row); err != nil {
			wb.err = fmt.Errorf("error writing %s row %d: %w", sheet, i+2, err)
			return
		}
	}
}

func summaryRows(impact model.ImpactAnalysis) [][]interface{} {
	rows := [][]interface{}{
		{"Total Queries Analyzed", impact.TotalQueries},
		{"Queries Needing Changes", impact.QueriesNeedingChanges},
		{"High Complexity Queries", impact.HighComplexityQueries},
		{"Queries with Joins", impact.QueriesWithJoins},
		{"Queries with Temp Tables", impact.QueriesWithTempTables},
		{"Queries with Subqueries", impact.QueriesWithSubqueries},
		{"Tables at Risk", len(impact.TablesAtRisk)},
	}
	for _, action := range impact.RecommendedActions {
		rows = append(rows, []interface{}{"Recommended Action", action})
	}
	return rows
}

func detailedRows(results []model.AnalysisResult) [][]interface{} {
	rows := make([][]interface{}, 0, len(results))
	for _, r := range results {
		rows = append(rows, detailedRow(r))
	}
	return rows
}

// complexityMatrix lays out per-query feature counts with one column per
// query and one row per dimension.
func complexityMatrix(results []model.AnalysisResult) ([]string, [][]interface{}) {
	header := make([]string, 0, len(results)+1)
	header = append(header, "Dimension")
	for _, r := range results {
		header = append(header, r.QueryID)
	}

	dimensions := []struct {
		name  string
		value func(model.AnalysisResult) int
	}{
		{"Tables", func(r model.AnalysisResult) int { return len(r.Tables) }},
		{"Joins", func(r model.AnalysisResult) int { return len(r.JoinTypes) }},
		{"Subqueries", func(r model.AnalysisResult) int { return r.Subqueries }},
		{"Functions", func(r model.AnalysisResult) int { return len(r.Functions) }},
		{"Temp Tables", func(r model.AnalysisResult) int { return len(r.TempTables) }},
	}

	rows := make([][]interface{}, 0, len(dimensions))
	for _, d := range dimensions {
		row := make([]interface{}, 0, len(results)+1)
		row = append(row, d.name)
		for _, r := range results {
			row = append(row, d.value(r))
		}
		rows = append(rows, row)
	}
	return header, rows
}
