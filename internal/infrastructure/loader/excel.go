package loader

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hhhafather/data-agent/internal/core/domain"
)

func listSheets(data io.Reader) ([]string, error) {
	workbook, err := excelize.OpenReader(data)
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "open workbook", err)
	}
	defer workbook.Close()

	return workbook.GetSheetList(), nil
}

func loadSheet(data io.Reader, sheet string) (*domain.Table, error) {
	workbook, err := excelize.OpenReader(data)
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "open workbook", err)
	}
	defer workbook.Close()

	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, fmt.Sprintf("read sheet %q", sheet), err)
	}
	if len(rows) == 0 {
		return &domain.Table{}, nil
	}

	columns := headerNames(rows[0])
	table := &domain.Table{Columns: columns, Rows: make([][]string, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		// excelize trims trailing empty cells; pad back to the header width.
		padded := make([]string, len(columns))
		copy(padded, row)
		table.Rows = append(table.Rows, padded)
	}
	return table, nil
}

func headerNames(header []string) []string {
	columns := make([]string, len(header))
	for i, name := range header {
		if name == "" {
			columns[i] = fmt.Sprintf("Column %d", i+1)
			continue
		}
		columns[i] = name
	}
	return columns
}
