package domain

import "testing"

func barResult() AnalysisResult {
	return AnalysisResult{
		Chart: &ChartPayload{
			Kind:    ChartBar,
			Columns: []string{"q1", "q2"},
			Data:    []float64{1, 2},
		},
	}
}

func TestProjectChartKindMismatchProducesNothing(t *testing.T) {
	if _, ok := ProjectChart(barResult(), ChartPie); ok {
		t.Fatalf("expected empty selection on kind mismatch")
	}
}

func TestProjectChartNoneRequestedProducesNothing(t *testing.T) {
	if _, ok := ProjectChart(barResult(), ChartNone); ok {
		t.Fatalf("expected empty selection when no chart requested")
	}
}

func TestProjectChartWithoutPayloadProducesNothing(t *testing.T) {
	if _, ok := ProjectChart(AnalysisResult{Answer: "text only"}, ChartBar); ok {
		t.Fatalf("expected empty selection without chart payload")
	}
}

func TestProjectChartMatchingKind(t *testing.T) {
	series, ok := ProjectChart(barResult(), ChartBar)
	if !ok {
		t.Fatalf("expected a series")
	}
	if series.Kind != ChartBar {
		t.Fatalf("expected bar series, got %s", series.Kind)
	}
	if len(series.Labels) != 2 || len(series.Values) != 2 {
		t.Fatalf("unexpected series shape: %+v", series)
	}
}
