package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FallbackAnswer is the fixed safe response substituted whenever the external
// analysis output cannot be validated.
const FallbackAnswer = "The analysis result is temporarily unavailable, please try again later."

type ChartKind string

const (
	ChartNone ChartKind = ""
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
	ChartPie  ChartKind = "pie"
)

func ParseChartKind(raw string) (ChartKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return ChartNone, nil
	case "bar":
		return ChartBar, nil
	case "line":
		return ChartLine, nil
	case "pie":
		return ChartPie, nil
	default:
		return ChartNone, WrapError(ErrInvalidInput, "parse chart kind", fmt.Errorf("unknown chart kind %q", raw))
	}
}

// ResultTable is tabular data produced by the analysis collaborator. Every row
// must align with the column list.
type ResultTable struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// ChartPayload holds one scalar per category label.
type ChartPayload struct {
	Kind    ChartKind `json:"kind"`
	Columns []string  `json:"columns"`
	Data    []float64 `json:"data"`
}

// AnalysisResult is the validated outcome of one analysis call. Answer may
// accompany at most one of Table or Chart.
type AnalysisResult struct {
	Answer string        `json:"answer,omitempty"`
	Table  *ResultTable  `json:"table,omitempty"`
	Chart  *ChartPayload `json:"chart,omitempty"`
}

// Fallback builds the safe substitute result used when analysis output is
// malformed or the call itself failed.
func Fallback() AnalysisResult {
	return AnalysisResult{Answer: FallbackAnswer}
}

func (r AnalysisResult) IsFallback() bool {
	return r.Answer == FallbackAnswer && r.Table == nil && r.Chart == nil
}

// wireResult mirrors the collaborator's response contract: one JSON object
// whose top-level keys come from {answer, table, bar, line, pie}.
type wireResult struct {
	Answer *string      `json:"answer"`
	Table  *ResultTable `json:"table"`
	Bar    *wireSeries  `json:"bar"`
	Line   *wireSeries  `json:"line"`
	Pie    *wireSeries  `json:"pie"`
}

type wireSeries struct {
	Columns []string  `json:"columns"`
	Data    []float64 `json:"data"`
}

// ParseAnalysisResult performs a strict all-or-nothing decode of raw analysis
// output. Any violation yields the fallback result together with the reason;
// the error is informational only and must not be surfaced to the user.
func ParseAnalysisResult(raw string) (AnalysisResult, error) {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()

	var wire wireResult
	if err := decoder.Decode(&wire); err != nil {
		return Fallback(), fmt.Errorf("decode analysis output: %w", err)
	}
	if decoder.More() {
		return Fallback(), fmt.Errorf("decode analysis output: trailing content after JSON object")
	}

	result, err := wire.validate()
	if err != nil {
		return Fallback(), fmt.Errorf("validate analysis output: %w", err)
	}
	return result, nil
}

func (w wireResult) validate() (AnalysisResult, error) {
	kinds := 0
	var chart *ChartPayload
	for _, candidate := range []struct {
		kind   ChartKind
		series *wireSeries
	}{
		{ChartBar, w.Bar},
		{ChartLine, w.Line},
		{ChartPie, w.Pie},
	} {
		if candidate.series == nil {
			continue
		}
		kinds++
		if len(candidate.series.Data) != len(candidate.series.Columns) {
			return AnalysisResult{}, fmt.Errorf("%s series: %d values for %d categories", candidate.kind, len(candidate.series.Data), len(candidate.series.Columns))
		}
		chart = &ChartPayload{
			Kind:    candidate.kind,
			Columns: candidate.series.Columns,
			Data:    candidate.series.Data,
		}
	}
	if w.Table != nil {
		kinds++
		for i, row := range w.Table.Data {
			if len(row) != len(w.Table.Columns) {
				return AnalysisResult{}, fmt.Errorf("table row %d has %d cells for %d columns", i, len(row), len(w.Table.Columns))
			}
		}
	}
	if kinds > 1 {
		return AnalysisResult{}, fmt.Errorf("ambiguous result: %d payload kinds present", kinds)
	}
	if w.Answer == nil && kinds == 0 {
		return AnalysisResult{}, fmt.Errorf("no recognized result shape present")
	}

	result := AnalysisResult{Table: w.Table, Chart: chart}
	if w.Answer != nil {
		result.Answer = *w.Answer
	}
	return result, nil
}
