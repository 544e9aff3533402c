package offline

import (
	"math"
	"strconv"
	"testing"

	"github.com/insightlabs/insightstream/internal/dataframe"
)

func frame(t *testing.T, columns []string, cells map[string][]string) *dataframe.Frame {
	t.Helper()
	f, err := dataframe.New(columns, cells)
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	return f
}

func TestAnalyze_CorrelationAndTrends(t *testing.T) {
	f := frame(t,
		[]string{"date", "revenue", "units"},
		map[string][]string{
			"date":    {"2025-01-05", "2025-01-20", "2025-02-10", "2025-02-25"},
			"revenue": {"100", "200", "300", "500"},
			"units":   {"10", "20", "30", "50"},
		},
	)

	arts := Analyze(f)
	if len(arts) != 3 {
		t.Fatalf("expected 3 artifacts (heatmap + 2 trends), got %d", len(arts))
	}

	heat := arts[0]
	if heat.Chart == nil || heat.Chart.Kind != "heatmap" {
		t.Fatalf("first artifact should be the correlation heatmap, got %+v", heat)
	}
	if len(heat.Chart.X) != 2 {
		t.Errorf("heatmap columns = %v", heat.Chart.X)
	}
	// revenue and units are perfectly correlated here.
	r := heat.Chart.Series[0].Y[1]
	if math.Abs(r-1.0) > 1e-9 {
		t.Errorf("expected correlation 1.0, got %v", r)
	}
	// Diagonal is exactly 1.
	if heat.Chart.Series[0].Y[0] != 1 || heat.Chart.Series[1].Y[1] != 1 {
		t.Error("diagonal of correlation matrix must be 1")
	}

	trend := arts[1]
	if trend.Chart == nil || trend.Chart.Kind != "line" {
		t.Fatalf("expected line trend, got %+v", trend)
	}
	if len(trend.Chart.X) != 2 {
		t.Fatalf("expected 2 month buckets, got %v", trend.Chart.X)
	}
	if trend.Chart.X[0] != "2025-01" || trend.Chart.X[1] != "2025-02" {
		t.Errorf("months = %v", trend.Chart.X)
	}
	// January revenue mean: (100+200)/2.
	if got := trend.Chart.Series[0].Y[0]; got != 150 {
		t.Errorf("january mean = %v, want 150", got)
	}
}

func TestAnalyze_NoTimeColumn(t *testing.T) {
	f := frame(t,
		[]string{"region", "revenue", "units"},
		map[string][]string{
			"region":  {"a", "b", "c"},
			"revenue": {"1", "2", "3"},
			"units":   {"3", "2", "1"},
		},
	)

	arts := Analyze(f)
	if len(arts) != 1 {
		t.Fatalf("expected only the heatmap, got %d artifacts", len(arts))
	}
	if arts[0].Chart == nil || arts[0].Chart.Kind != "heatmap" {
		t.Errorf("expected heatmap, got %+v", arts[0])
	}
}

func TestAnalyze_SingleNumericColumn(t *testing.T) {
	f := frame(t,
		[]string{"when", "value"},
		map[string][]string{
			"when":  {"2025-03-01", "2025-03-15", "2025-04-01"},
			"value": {"5", "15", "20"},
		},
	)

	arts := Analyze(f)
	// One numeric column still gets its 1x1 correlation, then the trend.
	if len(arts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(arts))
	}
	heat := arts[0]
	if heat.Chart == nil || heat.Chart.Kind != "heatmap" {
		t.Fatalf("expected heatmap first, got %+v", heat)
	}
	if len(heat.Chart.X) != 1 || heat.Chart.X[0] != "value" {
		t.Errorf("heatmap columns = %v", heat.Chart.X)
	}
	if heat.Chart.Series[0].Y[0] != 1 {
		t.Errorf("self-correlation = %v, want 1", heat.Chart.Series[0].Y[0])
	}
	if arts[1].Chart == nil || arts[1].Chart.Kind != "line" {
		t.Fatalf("expected line chart, got %+v", arts[1])
	}
	if got := arts[1].Chart.Series[0].Y[0]; got != 10 {
		t.Errorf("march mean = %v, want 10", got)
	}
}

func TestAnalyze_SingleNumericNoTimeColumn(t *testing.T) {
	f := frame(t,
		[]string{"name", "value"},
		map[string][]string{
			"name":  {"a", "b", "c"},
			"value": {"1", "2", "3"},
		},
	)

	arts := Analyze(f)
	if len(arts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(arts))
	}
	a := arts[0]
	if a.IsNotice() {
		t.Fatalf("numeric column present, must not claim there are none: %+v", a)
	}
	if a.Chart == nil || a.Chart.Kind != "heatmap" {
		t.Fatalf("expected 1x1 correlation heatmap, got %+v", a)
	}
	if len(a.Chart.X) != 1 || a.Chart.Series[0].Y[0] != 1 {
		t.Errorf("heatmap = X %v, Y %v", a.Chart.X, a.Chart.Series[0].Y)
	}
}

func TestAnalyze_NoNumericColumns(t *testing.T) {
	f := frame(t,
		[]string{"name", "city"},
		map[string][]string{
			"name": {"ada", "grace"},
			"city": {"london", "nyc"},
		},
	)

	arts := Analyze(f)
	if len(arts) != 1 {
		t.Fatalf("expected 1 notice, got %d artifacts", len(arts))
	}
	if !arts[0].IsNotice() {
		t.Errorf("expected notice artifact, got %+v", arts[0])
	}
}

func TestAnalyze_ManyRowsDeterministic(t *testing.T) {
	n := 120
	dates := make([]string, n)
	vals := make([]string, n)
	for i := 0; i < n; i++ {
		dates[i] = "2025-" + pad(i%12+1) + "-15"
		vals[i] = strconv.Itoa(i)
	}
	f := frame(t, []string{"d", "v"}, map[string][]string{"d": dates, "v": vals})

	a := Analyze(f)
	b := Analyze(f)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic artifact count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Title != b[i].Title {
			t.Errorf("artifact %d title differs: %q vs %q", i, a[i].Title, b[i].Title)
		}
	}
	if len(a[0].Chart.X) != 12 {
		t.Errorf("expected 12 month buckets, got %d", len(a[0].Chart.X))
	}
}

func pad(m int) string {
	if m < 10 {
		return "0" + strconv.Itoa(m)
	}
	return strconv.Itoa(m)
}
