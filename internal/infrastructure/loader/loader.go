// Package loader adapts the supported upload formats into the single tabular
// representation the rest of the system works with. Dispatch follows the
// user-declared category; content is never sniffed.
package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/hhhafather/data-agent/internal/core/domain"
)

// ContentColumn is the fixed column name rich documents collapse into. The
// adapter intentionally flattens document structure into one text cell.
const ContentColumn = "Content"

type Loader struct{}

func New() *Loader {
	return &Loader{}
}

func (l *Loader) ListSubSources(_ context.Context, data io.Reader, category domain.FileCategory) ([]string, error) {
	if !category.HasSubSources() {
		return nil, domain.WrapError(domain.ErrUnsupportedCategory, "list sub-sources", fmt.Errorf("%s uploads have no sub-sources", category))
	}
	return listSheets(data)
}

func (l *Loader) Ingest(_ context.Context, data io.Reader, category domain.FileCategory, subSource string) (table *domain.Table, err error) {
	// Some format parsers panic on corrupt input; a loader fault must
	// surface as a typed error, never escape the adapter.
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = domain.WrapError(domain.ErrLoad, "ingest "+string(category), fmt.Errorf("parser panic: %v", r))
		}
	}()

	switch category {
	case domain.CategoryExcel:
		return loadSheet(data, subSource)
	case domain.CategoryCSV:
		return loadCSV(data)
	case domain.CategoryText, domain.CategoryMarkdown:
		return loadText(data)
	case domain.CategoryPDF:
		return loadPDF(data)
	case domain.CategoryWord:
		return loadWord(data)
	default:
		return nil, domain.WrapError(domain.ErrUnsupportedCategory, "ingest", fmt.Errorf("category %q", category))
	}
}

// contentTable wraps extracted document text in the one-column, one-row shape.
func contentTable(text string) *domain.Table {
	return &domain.Table{
		Columns: []string{ContentColumn},
		Rows:    [][]string{{text}},
	}
}
