// internal/metadata/sample.go
package metadata

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sampleSheet = "metadata"

var sampleHeader = []interface{}{"table_name", "field_name", "data_type", "description"}

// SampleRows is the example content of the metadata template.
var SampleRows = [][]string{
	{"users", "user_id", "integer", "Primary key"},
	{"users", "username", "varchar(50)", "User login name"},
	{"orders", "order_id", "integer", "Primary key"},
	{"orders", "user_id", "integer", "Foreign key to users"},
	{"order_items", "item_id", "integer", "Foreign key to items"},
}

// WriteSample writes an xlsx template showing the expected metadata layout.
func WriteSample(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sampleSheet); err != nil {
		return fmt.Errorf("error naming sample sheet: %w", err)
	}

	if err := f.SetSheetRow(sampleSheet, "A1", &sampleHeader); err != nil {
		return fmt.Errorf("error writing sample header: %w", err)
	}

	for i, row := range SampleRows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sampleSheet, cellRef, &values); err != nil {
			return fmt.Errorf("error writing sample row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error saving sample workbook: %w", err)
	}
	return nil
}
