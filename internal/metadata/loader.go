// internal/metadata/loader.go
package metadata

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/0xsj/sql-analyzer/internal/model"
)

var (
	ErrNoMetadata        = errors.New("no valid table metadata found")
	ErrUnsupportedFormat = errors.New("unsupported metadata format")
)

// Load reads table metadata from a spreadsheet (.xlsx, .csv) or a structured
// document (.json, .yaml, .yml). Spreadsheets are read sheet by sheet; later
// sheets overwrite tables of the same name.
func Load(path string) (model.TableMetadata, error) {
	var (
		metadata model.TableMetadata
		err      error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		metadata, err = loadWorkbook(path)
	case ".csv":
		metadata, err = loadCSV(path)
	case ".json":
		metadata, err = loadDocument(path, json.Unmarshal)
	case ".yaml", ".yml":
		metadata, err = loadDocument(path, yaml.Unmarshal)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if len(metadata) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoMetadata, path)
	}
	return metadata, nil
}

func loadWorkbook(path string) (model.TableMetadata, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	metadata := make(model.TableMetadata)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("error reading sheet %q: %w", sheet, err)
		}
		for table, fields := range ParseSheet(sheet, rows) {
			metadata[table] = fields
		}
	}
	return metadata, nil
}

func loadCSV(path string) (model.TableMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening metadata file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing metadata file: %w", err)
	}

	sheet := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseSheet(sheet, rows), nil
}

func loadDocument(path string, unmarshal func([]byte, any) error) (model.TableMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading metadata file: %w", err)
	}

	var metadata model.TableMetadata
	if err := unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("error parsing metadata file: %w", err)
	}

	for table, fields := range metadata {
		for i := range fields {
			if fields[i].DataType == "" {
				fields[i].DataType = unknownType
			}
		}
		metadata[table] = fields
	}
	return metadata, nil
}

// Merge copies overlay onto base and returns base. Tables present in both
// take the overlay's field list.
func Merge(base, overlay model.TableMetadata) model.TableMetadata {
	if base == nil {
		base = make(model.TableMetadata, len(overlay))
	}
	for table, fields := range overlay {
		base[table] = fields
	}
	return base
}
