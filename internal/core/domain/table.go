package domain

import "strings"

// Table is in-memory tabular data with ordered named columns and ordered rows.
// Cell values are kept as strings; typing is left to the analysis collaborator.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// TableFingerprint summarizes a table's shape and column names. It is
// comparable and serves as one half of the analysis cache key.
type TableFingerprint struct {
	Rows    int
	Cols    int
	Columns string
}

func (t *Table) Fingerprint() TableFingerprint {
	if t == nil {
		return TableFingerprint{}
	}
	return TableFingerprint{
		Rows:    len(t.Rows),
		Cols:    len(t.Columns),
		Columns: strings.Join(t.Columns, "\x1f"),
	}
}
