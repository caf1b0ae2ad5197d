package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileCategory is the user-declared kind of an upload. The category is an
// explicit choice made up front, never sniffed from file content.
type FileCategory string

const (
	CategoryExcel    FileCategory = "excel"
	CategoryCSV      FileCategory = "csv"
	CategoryText     FileCategory = "txt"
	CategoryPDF      FileCategory = "pdf"
	CategoryWord     FileCategory = "docx"
	CategoryMarkdown FileCategory = "md"
)

var categoryExtensions = map[FileCategory][]string{
	CategoryExcel:    {".xlsx", ".xls"},
	CategoryCSV:      {".csv"},
	CategoryText:     {".txt"},
	CategoryPDF:      {".pdf"},
	CategoryWord:     {".docx"},
	CategoryMarkdown: {".md"},
}

func ParseFileCategory(raw string) (FileCategory, error) {
	category := FileCategory(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := categoryExtensions[category]; !ok {
		return "", WrapError(ErrUnsupportedCategory, "parse category", fmt.Errorf("unknown category %q", raw))
	}
	return category, nil
}

// Accepts reports whether filename carries one of the category's extensions.
func (c FileCategory) Accepts(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range categoryExtensions[c] {
		if ext == allowed {
			return true
		}
	}
	return false
}

// HasSubSources reports whether the category offers named sub-sources
// (spreadsheet tabs) that must be resolved before a table can be produced.
func (c FileCategory) HasSubSources() bool {
	return c == CategoryExcel
}
