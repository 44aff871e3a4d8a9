// internal/report/csv.go
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/0xsj/sql-analyzer/internal/model"
)

// SaveCSV writes one row per analyzed query and returns the file path.
func SaveCSV(run model.RunResult, outputDir string) (string, error) {
	filename := filepath.Join(outputDir, reportName("analysis", run, "csv"))

	rows := make([][]string, 0, len(run.Results))
	for _, r := range run.Results {
		rows = append(rows, toStrings(detailedRow(r)))
	}

	if err := writeCSV(filename, detailedHeader, rows); err != nil {
		return "", err
	}
	return filename, nil
}

// SaveChangeAreasCSV writes one row per change area with its priority.
func SaveChangeAreasCSV(run model.RunResult, outputDir string) (string, error) {
	filename := filepath.Join(outputDir, reportName("change-areas", run, "csv"))

	var rows [][]string
	for _, row := range changeAreaRows(run.Results) {
		rows = append(rows, toStrings(row))
	}

	if err := writeCSV(filename, changeAreaHeader, rows); err != nil {
		return "", err
	}
	return filename, nil
}

// SaveTableUsageCSV writes the table usage ranking of a run.
func SaveTableUsageCSV(run model.RunResult, metadata model.TableMetadata, outputDir string) (string, error) {
	filename := filepath.Join(outputDir, reportName("table-usage", run, "csv"))

	var rows [][]string
	for _, u := range TableUsage(run.Results, metadata) {
		rows = append(rows, toStrings(tableUsageRow(u)))
	}

	if err := writeCSV(filename, tableUsageHeader, rows); err != nil {
		return "", err
	}
	return filename, nil
}

func writeCSV(filename string, header []string, rows [][]string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("error writing CSV rows: %w", err)
	}
	return nil
}
