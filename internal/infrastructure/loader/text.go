package loader

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/hhhafather/data-agent/internal/core/domain"
)

// loadText decodes plain-text and markup uploads. UTF-8 is tried first; on
// invalid UTF-8 the bytes are re-read as GBK. Both failing is a decode error,
// there is deliberately no third guess.
func loadText(data io.Reader) (*domain.Table, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "read text", err)
	}

	if utf8.Valid(raw) {
		return contentTable(string(raw)), nil
	}

	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	// The GBK decoder substitutes U+FFFD instead of failing, so a
	// replacement rune in the output means the fallback failed too.
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
		return nil, domain.WrapError(domain.ErrDecode, "decode text", fmt.Errorf("neither utf-8 nor gbk"))
	}
	return contentTable(string(decoded)), nil
}
