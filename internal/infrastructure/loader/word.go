package loader

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	docx "github.com/fumiama/go-docx"

	"github.com/hhhafather/data-agent/internal/core/domain"
)

func loadWord(data io.Reader) (*domain.Table, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "read docx", err)
	}

	document, err := docx.Parse(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "open docx", err)
	}

	var text strings.Builder
	for _, item := range document.Document.Body.Items {
		block, ok := item.(fmt.Stringer)
		if !ok {
			continue
		}
		if text.Len() > 0 {
			text.WriteByte('\n')
		}
		text.WriteString(block.String())
	}
	return contentTable(text.String()), nil
}
