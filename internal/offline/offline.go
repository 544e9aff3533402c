// Package offline produces deterministic fallback analysis when no model is
// reachable or its reply is unusable. The output is intentionally generic:
// a correlation overview plus monthly trends for whatever time column the
// dataset happens to have.
package offline

import (
	"fmt"

	"github.com/insightlabs/insightstream/internal/artifact"
	"github.com/insightlabs/insightstream/internal/dataframe"
)

// Analyze runs every applicable canned analysis over the frame. The result
// is never empty: datasets with nothing to analyze get a single notice.
func Analyze(frame *dataframe.Frame) []artifact.Artifact {
	var out []artifact.Artifact

	if a, ok := correlation(frame); ok {
		out = append(out, a)
	}
	out = append(out, monthlyTrends(frame)...)

	if len(out) == 0 {
		return []artifact.Artifact{
			artifact.Notice("No numeric columns to analyze; offline analysis needs at least one numeric column."),
		}
	}
	return out
}

// correlation builds a heatmap over the numeric columns. A single numeric
// column still gets its 1x1 matrix; the notice is reserved for datasets with
// no numeric columns at all.
func correlation(frame *dataframe.Frame) (artifact.Artifact, bool) {
	cols, matrix := frame.Correlation()
	if len(cols) == 0 {
		return artifact.Artifact{}, false
	}

	series := make([]artifact.Series, len(cols))
	for i, col := range cols {
		series[i] = artifact.Series{Name: col, Y: matrix[i]}
	}
	chart := &artifact.Chart{
		Kind:   "heatmap",
		Title:  "Correlation matrix",
		X:      cols,
		Series: series,
	}
	return artifact.NewChart(chart.Title, chart), true
}

// monthlyTrends buckets every numeric column by the month of the first
// column with any parsable dates. No time column, no trends.
func monthlyTrends(frame *dataframe.Frame) []artifact.Artifact {
	numeric := make(map[string]bool)
	for _, col := range frame.NumericColumns() {
		numeric[col] = true
	}

	timeCol := ""
	for _, col := range frame.Columns() {
		if numeric[col] {
			continue
		}
		if _, _, any := frame.Times(col); any {
			timeCol = col
			break
		}
	}
	if timeCol == "" {
		return nil
	}

	var out []artifact.Artifact
	for _, col := range frame.NumericColumns() {
		months, means, err := frame.MonthlyMean(timeCol, col)
		if err != nil {
			continue
		}
		title := fmt.Sprintf("Monthly mean of %s", col)
		out = append(out, artifact.NewChart(title, &artifact.Chart{
			Kind:   "line",
			Title:  title,
			XLabel: timeCol,
			YLabel: col,
			X:      months,
			Series: []artifact.Series{{Name: col, Y: means}},
		}))
	}
	return out
}
