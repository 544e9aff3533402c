package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/insightlabs/insightstream/internal/artifact"
)

func TestArtifact_Table(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	a := artifact.NewTable("Result", &artifact.Table{
		Columns: []string{"region", "revenue"},
		Rows:    [][]string{{"north", "100"}, {"south", "200"}},
	})
	r.Artifact(a)

	out := buf.String()
	for _, want := range []string{"Result", "region", "revenue", "north", "200", "(2 rows)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestArtifact_BarChart(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	a := artifact.NewChart("revenue by region", &artifact.Chart{
		Kind:   "bar",
		Title:  "revenue by region",
		X:      []string{"north", "south"},
		Series: []artifact.Series{{Name: "revenue", Y: []float64{100, 400}}},
	})
	r.Artifact(a)

	out := buf.String()
	if !strings.Contains(out, "north") || !strings.Contains(out, "south") {
		t.Fatalf("labels missing:\n%s", out)
	}
	if !strings.Contains(out, "█") {
		t.Errorf("expected text bars:\n%s", out)
	}
	// south is the max and should be the longest bar.
	northBars := strings.Count(lineContaining(out, "north"), "█")
	southBars := strings.Count(lineContaining(out, "south"), "█")
	if southBars <= northBars {
		t.Errorf("bar scaling wrong: north=%d south=%d", northBars, southBars)
	}
}

func TestArtifact_LineChartGrid(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	a := artifact.NewChart("Monthly mean of revenue", &artifact.Chart{
		Kind:   "line",
		XLabel: "date",
		X:      []string{"2025-01", "2025-02"},
		Series: []artifact.Series{{Name: "revenue", Y: []float64{150, 400}}},
	})
	r.Artifact(a)

	out := buf.String()
	for _, want := range []string{"date", "revenue", "2025-01", "150", "400"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestArtifact_Notice(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Artifact(artifact.Notice("No numeric columns to analyze"))
	if !strings.Contains(buf.String(), "No numeric columns") {
		t.Errorf("notice missing:\n%s", buf.String())
	}
}

func TestInsights(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Insights([]string{"revenue doubled", "north leads"})
	out := buf.String()
	if !strings.Contains(out, "revenue doubled") || !strings.Contains(out, "north leads") {
		t.Errorf("insights missing:\n%s", out)
	}

	buf.Reset()
	r.Insights(nil)
	if buf.Len() != 0 {
		t.Errorf("empty insights should print nothing, got %q", buf.String())
	}
}

func TestCodeAndRejection(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Code("result_df = head(df, 5)")
	if !strings.Contains(buf.String(), "head(df, 5)") {
		t.Errorf("code missing:\n%s", buf.String())
	}

	buf.Reset()
	r.Rejection("instruction override detected")
	if !strings.Contains(buf.String(), "instruction override detected") {
		t.Errorf("rejection missing:\n%s", buf.String())
	}
}

func lineContaining(s, sub string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, sub) {
			return line
		}
	}
	return ""
}
