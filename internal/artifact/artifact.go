// Package artifact defines the typed analysis outputs shared by the sandbox
// executor, the offline analyzer, and the renderer. An artifact is exactly one
// of a table or a chart; producing both or neither is a contract violation
// handled by the producer.
package artifact

// Table is a tabular result with a stable column order.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Series is one named sequence of Y values in a chart.
type Series struct {
	Name string
	Y    []float64
}

// Chart is a renderer-agnostic chart description. Kind is one of "bar",
// "line", "scatter", "pie", "heatmap".
type Chart struct {
	Kind   string
	Title  string
	XLabel string
	YLabel string
	X      []string
	Series []Series
}

// Artifact wraps one output with an optional display title.
// Exactly one of Table or Chart is non-nil.
type Artifact struct {
	Title string
	Table *Table
	Chart *Chart
}

// NewTable wraps a table artifact.
func NewTable(title string, t *Table) Artifact {
	return Artifact{Title: title, Table: t}
}

// NewChart wraps a chart artifact.
func NewChart(title string, c *Chart) Artifact {
	return Artifact{Title: title, Chart: c}
}

// Notice returns a table-less, chart-less message artifact used for
// empty-result outcomes (e.g. "no numeric columns"). Rendered as plain text.
func Notice(msg string) Artifact {
	return Artifact{Title: msg}
}

// IsNotice reports whether the artifact carries no table and no chart.
func (a Artifact) IsNotice() bool {
	return a.Table == nil && a.Chart == nil
}
