package loader

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/hhhafather/data-agent/internal/core/domain"
)

func workbookBytes(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()
	workbook := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			if err := workbook.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName() error = %v", err)
			}
			first = false
		} else {
			if _, err := workbook.NewSheet(name); err != nil {
				t.Fatalf("NewSheet() error = %v", err)
			}
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName() error = %v", err)
			}
			if err := workbook.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow() error = %v", err)
			}
		}
	}
	buffer, err := workbook.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buffer.Bytes()
}

func TestListSubSourcesEnumeratesSheets(t *testing.T) {
	raw := workbookBytes(t, map[string][][]any{
		"Revenue": {{"region", "amount"}, {"north", 10}},
	})

	sheets, err := New().ListSubSources(context.Background(), bytes.NewReader(raw), domain.CategoryExcel)
	if err != nil {
		t.Fatalf("ListSubSources() error = %v", err)
	}
	if len(sheets) != 1 || sheets[0] != "Revenue" {
		t.Fatalf("unexpected sheets %v", sheets)
	}
}

func TestIngestExcelSheet(t *testing.T) {
	raw := workbookBytes(t, map[string][][]any{
		"Revenue": {{"region", "amount"}, {"north", 10}, {"south", 20}},
	})

	table, err := New().Ingest(context.Background(), bytes.NewReader(raw), domain.CategoryExcel, "Revenue")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(table.Columns) != 2 || table.Columns[0] != "region" || table.Columns[1] != "amount" {
		t.Fatalf("unexpected columns %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(table.Rows))
	}
	if table.Rows[0][0] != "north" || table.Rows[1][1] != "20" {
		t.Fatalf("unexpected rows %v", table.Rows)
	}
}

func TestIngestExcelCorruptContent(t *testing.T) {
	_, err := New().Ingest(context.Background(), strings.NewReader("not a zip"), domain.CategoryExcel, "Sheet1")
	if !domain.IsKind(err, domain.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}

func TestIngestCSV(t *testing.T) {
	raw := "name,age\nalice,30\nbob,25\n"
	table, err := New().Ingest(context.Background(), strings.NewReader(raw), domain.CategoryCSV, "")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(table.Columns) != 2 || table.Columns[0] != "name" {
		t.Fatalf("unexpected columns %v", table.Columns)
	}
	if len(table.Rows) != 2 || table.Rows[1][0] != "bob" {
		t.Fatalf("unexpected rows %v", table.Rows)
	}
}

func TestIngestCSVRaggedRowsFail(t *testing.T) {
	_, err := New().Ingest(context.Background(), strings.NewReader("a,b\n1\n"), domain.CategoryCSV, "")
	if !domain.IsKind(err, domain.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}

func TestIngestTextUTF8(t *testing.T) {
	table, err := New().Ingest(context.Background(), strings.NewReader("plain notes"), domain.CategoryText, "")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(table.Columns) != 1 || table.Columns[0] != ContentColumn {
		t.Fatalf("unexpected columns %v", table.Columns)
	}
	if len(table.Rows) != 1 || table.Rows[0][0] != "plain notes" {
		t.Fatalf("unexpected rows %v", table.Rows)
	}
}

func TestIngestTextGBKFallback(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("数据分析"))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	table, err := New().Ingest(context.Background(), bytes.NewReader(encoded), domain.CategoryText, "")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if table.Rows[0][0] != "数据分析" {
		t.Fatalf("expected GBK fallback decode, got %q", table.Rows[0][0])
	}
}

func TestIngestTextUndecodableBytes(t *testing.T) {
	_, err := New().Ingest(context.Background(), bytes.NewReader([]byte{0xff, 0xff, 0xff}), domain.CategoryText, "")
	if !domain.IsKind(err, domain.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestIngestMarkdownSharesTextPath(t *testing.T) {
	table, err := New().Ingest(context.Background(), strings.NewReader("# Title\n\nbody"), domain.CategoryMarkdown, "")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if table.Rows[0][0] != "# Title\n\nbody" {
		t.Fatalf("markdown content must pass through untouched, got %q", table.Rows[0][0])
	}
}

func TestIngestPDFCorruptContent(t *testing.T) {
	_, err := New().Ingest(context.Background(), strings.NewReader("%PDF-garbage"), domain.CategoryPDF, "")
	if !domain.IsKind(err, domain.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}

func TestIngestWordCorruptContent(t *testing.T) {
	_, err := New().Ingest(context.Background(), strings.NewReader("not a docx"), domain.CategoryWord, "")
	if !domain.IsKind(err, domain.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}

func TestListSubSourcesRejectsFlatCategories(t *testing.T) {
	_, err := New().ListSubSources(context.Background(), strings.NewReader("a,b"), domain.CategoryCSV)
	if !domain.IsKind(err, domain.ErrUnsupportedCategory) {
		t.Fatalf("expected ErrUnsupportedCategory, got %v", err)
	}
}
