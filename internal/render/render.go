// Package render draws artifacts, insights, and verdicts on a terminal.
// Tables go through go-pretty; charts degrade to scaled text bars or a value
// grid, since the terminal is the only display surface.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/insightlabs/insightstream/internal/artifact"
	"github.com/insightlabs/insightstream/internal/dataframe"
)

// maxBarWidth is the cell budget for text bars.
const maxBarWidth = 40

type styles struct {
	title   lipgloss.Style
	insight lipgloss.Style
	notice  lipgloss.Style
	reject  lipgloss.Style
	code    lipgloss.Style
}

// Renderer writes human output. Construct with New; the zero value panics.
type Renderer struct {
	w  io.Writer
	st styles
}

func New(w io.Writer) *Renderer {
	return &Renderer{
		w: w,
		st: styles{
			title:   lipgloss.NewStyle().Bold(true),
			insight: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
			notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
			reject:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
			code:    lipgloss.NewStyle().Faint(true),
		},
	}
}

// Artifact renders one analysis output.
func (r *Renderer) Artifact(a artifact.Artifact) {
	if a.IsNotice() {
		fmt.Fprintln(r.w, r.st.notice.Render(a.Title))
		return
	}
	if a.Title != "" {
		fmt.Fprintln(r.w, r.st.title.Render(a.Title))
	}
	switch {
	case a.Table != nil:
		r.table(a.Table)
	case a.Chart != nil:
		r.chart(a.Chart)
	}
	fmt.Fprintln(r.w)
}

func (r *Renderer) table(tb *artifact.Table) {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(tb.Columns))
	for i, col := range tb.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range tb.Rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}
	t.Render()
	fmt.Fprintf(r.w, "(%d rows)\n", len(tb.Rows))
}

func (r *Renderer) chart(c *artifact.Chart) {
	switch c.Kind {
	case "bar", "pie":
		r.bars(c)
	default:
		// line, scatter, heatmap: a value grid reads better than ASCII art.
		r.grid(c)
	}
}

// bars draws one scaled text bar per label.
func (r *Renderer) bars(c *artifact.Chart) {
	if len(c.Series) == 0 {
		return
	}
	values := c.Series[0].Y

	maxVal := 0.0
	labelWidth := 0
	for i, label := range c.X {
		if i < len(values) && values[i] > maxVal {
			maxVal = values[i]
		}
		if len(label) > labelWidth {
			labelWidth = len(label)
		}
	}

	for i, label := range c.X {
		if i >= len(values) {
			break
		}
		width := 0
		if maxVal > 0 && values[i] > 0 {
			width = int(values[i] / maxVal * maxBarWidth)
			if width == 0 {
				width = 1
			}
		}
		fmt.Fprintf(r.w, "%-*s | %s %s\n",
			labelWidth, label,
			strings.Repeat("█", width),
			dataframe.FormatFloat(values[i]))
	}
}

// grid renders the chart data as a table: one label column plus one column
// per series.
func (r *Renderer) grid(c *artifact.Chart) {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, 0, len(c.Series)+1)
	xLabel := c.XLabel
	if xLabel == "" {
		xLabel = "x"
	}
	header = append(header, xLabel)
	for _, s := range c.Series {
		header = append(header, s.Name)
	}
	t.AppendHeader(header)

	for i, label := range c.X {
		row := make(table.Row, 0, len(c.Series)+1)
		row = append(row, label)
		for _, s := range c.Series {
			if i < len(s.Y) {
				row = append(row, dataframe.FormatFloat(s.Y[i]))
			} else {
				row = append(row, "")
			}
		}
		t.AppendRow(row)
	}
	t.Render()
}

// Insights prints the model's observation bullets.
func (r *Renderer) Insights(insights []string) {
	if len(insights) == 0 {
		return
	}
	fmt.Fprintln(r.w, r.st.title.Render("Insights"))
	for _, ins := range insights {
		fmt.Fprintln(r.w, r.st.insight.Render("  • "+ins))
	}
	fmt.Fprintln(r.w)
}

// Code prints the generated script for user review.
func (r *Renderer) Code(code string) {
	fmt.Fprintln(r.w, r.st.title.Render("Generated analysis code"))
	for _, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
		fmt.Fprintln(r.w, r.st.code.Render("  "+line))
	}
	fmt.Fprintln(r.w)
}

// Rejection prints a screening or validation refusal.
func (r *Renderer) Rejection(reason string) {
	fmt.Fprintln(r.w, r.st.reject.Render("Query rejected: ")+reason)
}

// Notice prints an informational line.
func (r *Renderer) Notice(msg string) {
	fmt.Fprintln(r.w, r.st.notice.Render(msg))
}
