package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/querydesk/querydesk/internal/models"
	"github.com/querydesk/querydesk/pkg/querybuilder"
)

const maxSheetName = 31

// Export is a spreadsheet holding the rows of one query.
type Export struct {
	FileName string
	Rows     int
	Data     []byte
}

type ExportService struct {
	query *QueryService
}

func NewExportService(query *QueryService) *ExportService {
	return &ExportService{query: query}
}

// Export runs q and writes the result as an xlsx workbook.
func (s *ExportService) Export(ctx context.Context, databaseID string, q querybuilder.Query) (*Export, error) {
	result, err := s.query.Execute(ctx, databaseID, q)
	if err != nil {
		return nil, err
	}

	data, err := Workbook(result, q.Columns)
	if err != nil {
		return nil, err
	}

	return &Export{
		FileName: result.Table + ".xlsx",
		Rows:     result.Count(),
		Data:     data,
	}, nil
}

// Workbook renders result as a single sheet named after the table. The header
// follows the selected columns when there are any, otherwise the sorted keys of
// the rows.
func Workbook(result *models.QueryResult, selected []querybuilder.SelectedColumn) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(result.Table)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet writer: %w", err)
	}

	headers := exportHeaders(result.Rows, selected)
	header := make([]any, 0, len(headers))
	for _, h := range headers {
		header = append(header, excelize.Cell{StyleID: headerStyle, Value: h})
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range result.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := make([]any, 0, len(headers))
		for _, h := range headers {
			values = append(values, cellValue(row[h]))
		}
		if err := sw.SetRow(cell, values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func exportHeaders(rows []models.Row, selected []querybuilder.SelectedColumn) []string {
	if len(selected) > 0 {
		headers := make([]string, 0, len(selected))
		for _, c := range selected {
			if c.Alias != "" {
				headers = append(headers, c.Alias)
			} else {
				headers = append(headers, c.Column)
			}
		}
		return headers
	}

	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	headers := make([]string, 0, len(seen))
	for k := range seen {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return headers
}

func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case string, bool, float64:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// sheetName strips the characters Excel refuses in sheet names.
func sheetName(table string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.Trim(table, "'"))

	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}
