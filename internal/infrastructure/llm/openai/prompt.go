package openai

import (
	"fmt"
	"strings"

	"github.com/hhhafather/data-agent/internal/core/domain"
)

// promptTemplate pins the collaborator to the response contract: exactly one
// JSON object from the allowed shapes, double-quoted strings, no stray
// formatting characters. The parser downstream still assumes nothing.
const promptTemplate = `You are a professional data analysis assistant. Analyze the dataset below and respond to the user's request.

Respond with exactly ONE JSON object, using one of these shapes:

- Plain text answer:
  {"answer": "a concise answer"}

- Tabular data:
  {"table": {"columns": ["col1", "col2"], "data": [["v1", "v2"], ["v3", "v4"]]}}

- Bar chart data:
  {"bar": {"columns": ["cat1", "cat2"], "data": [1, 2]}}

- Line chart data:
  {"line": {"columns": ["p1", "p2"], "data": [1, 2]}}

- Pie chart data:
  {"pie": {"columns": ["s1", "s2"], "data": [1, 2]}}

Rules:
- An "answer" may be combined with at most one of the other shapes in the same object.
- All strings, including column names, must use double quotes. Numbers must not be quoted.
- Do not emit newlines, tabs, markdown fences or any other characters outside the JSON object.
- The output must parse directly as JSON.

Dataset (%d rows x %d columns), sampled below:
%s

User request:
%s`

func buildAnalysisPrompt(table *domain.Table, question string, sampleRows int) string {
	return fmt.Sprintf(
		promptTemplate,
		len(table.Rows),
		len(table.Columns),
		renderTable(table, sampleRows),
		question,
	)
}

// renderTable writes a tab-separated sample of the table, header first. Large
// tables are truncated to keep the prompt bounded.
func renderTable(table *domain.Table, sampleRows int) string {
	var b strings.Builder
	b.WriteString(strings.Join(table.Columns, "\t"))

	rows := table.Rows
	truncated := false
	if len(rows) > sampleRows {
		rows = rows[:sampleRows]
		truncated = true
	}
	for _, row := range rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, "\t"))
	}
	if truncated {
		fmt.Fprintf(&b, "\n... (%d more rows)", len(table.Rows)-sampleRows)
	}
	return b.String()
}
