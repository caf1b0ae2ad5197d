package loader

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hhhafather/data-agent/internal/core/domain"
)

func loadPDF(data io.Reader) (*domain.Table, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "read pdf", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "open pdf", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "extract pdf text", err)
	}

	var text strings.Builder
	if _, err := io.Copy(&text, plain); err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "extract pdf text", err)
	}
	return contentTable(text.String()), nil
}
