package domain

// RenderableSeries is the shape handed to the UI's plotting layer: one label
// and one value per category.
type RenderableSeries struct {
	Kind   ChartKind `json:"kind"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// ProjectChart maps a validated chart payload into a renderable series. It
// produces a series only when the user requested a concrete kind and the
// result carries a chart of that exact kind; every other combination is an
// empty, non-error selection.
func ProjectChart(result AnalysisResult, requested ChartKind) (RenderableSeries, bool) {
	if requested == ChartNone || result.Chart == nil || result.Chart.Kind != requested {
		return RenderableSeries{}, false
	}
	return RenderableSeries{
		Kind:   result.Chart.Kind,
		Labels: result.Chart.Columns,
		Values: result.Chart.Data,
	}, true
}
