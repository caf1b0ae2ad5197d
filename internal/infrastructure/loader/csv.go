package loader

import (
	"encoding/csv"
	"io"

	"github.com/hhhafather/data-agent/internal/core/domain"
)

func loadCSV(data io.Reader) (*domain.Table, error) {
	records, err := csv.NewReader(data).ReadAll()
	if err != nil {
		return nil, domain.WrapError(domain.ErrLoad, "read csv", err)
	}
	if len(records) == 0 {
		return &domain.Table{}, nil
	}

	return &domain.Table{
		Columns: headerNames(records[0]),
		Rows:    records[1:],
	}, nil
}
