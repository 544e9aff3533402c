package dataframe

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
)

// Correlation computes the Pearson correlation matrix over the frame's
// numeric columns. The returned matrix is indexed [i][j] in the order of the
// returned column names. Pairs with no overlapping rows or zero variance
// yield 0.
func (f *Frame) Correlation() (cols []string, matrix [][]float64) {
	cols = f.NumericColumns()
	if len(cols) == 0 {
		return nil, nil
	}

	// Align each column's values by row position so sparse columns pair up.
	byCol := make(map[string]map[int]float64, len(cols))
	for _, col := range cols {
		values, positions, _ := f.Numeric(col)
		m := make(map[int]float64, len(values))
		for i, pos := range positions {
			m[pos] = values[i]
		}
		byCol[col] = m
	}

	matrix = make([][]float64, len(cols))
	for i := range cols {
		matrix[i] = make([]float64, len(cols))
		for j := range cols {
			if i == j {
				matrix[i][j] = 1
				continue
			}
			var xs, ys []float64
			for pos, x := range byCol[cols[i]] {
				if y, ok := byCol[cols[j]][pos]; ok {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			if len(xs) < 2 {
				continue
			}
			r, err := stats.Pearson(xs, ys)
			if err != nil {
				continue
			}
			matrix[i][j] = r
		}
	}
	return cols, matrix
}

// MonthlyMean buckets the numeric column by the month of the time column and
// returns the sorted month keys (YYYY-MM) with the per-bucket means. Rows
// where either side fails to parse are skipped.
func (f *Frame) MonthlyMean(timeCol, numCol string) (months []string, means []float64, err error) {
	times, mask, any := f.Times(timeCol)
	if !any {
		return nil, nil, fmt.Errorf("dataframe: column %q has no parsable dates", timeCol)
	}
	values, positions, ok := f.Numeric(numCol)
	if !ok {
		return nil, nil, fmt.Errorf("dataframe: column %q is not numeric", numCol)
	}

	valueAt := make(map[int]float64, len(values))
	for i, pos := range positions {
		valueAt[pos] = values[i]
	}

	buckets := make(map[string][]float64)
	for i, t := range times {
		if !mask[i] {
			continue
		}
		v, ok := valueAt[i]
		if !ok {
			continue
		}
		key := t.Format("2006-01")
		buckets[key] = append(buckets[key], v)
	}
	if len(buckets) == 0 {
		return nil, nil, fmt.Errorf("dataframe: no rows with both a date in %q and a value in %q", timeCol, numCol)
	}

	months = make([]string, 0, len(buckets))
	for key := range buckets {
		months = append(months, key)
	}
	sort.Strings(months)

	means = make([]float64, len(months))
	for i, key := range months {
		m, err := stats.Mean(buckets[key])
		if err != nil {
			return nil, nil, err
		}
		means[i] = m
	}
	return months, means, nil
}

// GroupMean averages the numeric value column per distinct key in the group
// column, sorted by key for stable output.
func (f *Frame) GroupMean(byCol, valueCol string) (*Frame, error) {
	keys, ok := f.Column(byCol)
	if !ok {
		return nil, fmt.Errorf("dataframe: unknown column %q", byCol)
	}
	values, positions, okNum := f.Numeric(valueCol)
	if !okNum {
		return nil, fmt.Errorf("dataframe: column %q is not numeric", valueCol)
	}

	valueAt := make(map[int]float64, len(values))
	for i, pos := range positions {
		valueAt[pos] = values[i]
	}

	groups := make(map[string][]float64)
	for i, key := range keys {
		if v, ok := valueAt[i]; ok {
			groups[key] = append(groups[key], v)
		}
	}

	sorted := make([]string, 0, len(groups))
	for key := range groups {
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)

	meanCells := make([]string, len(sorted))
	for i, key := range sorted {
		m, err := stats.Mean(groups[key])
		if err != nil {
			return nil, err
		}
		meanCells[i] = FormatFloat(m)
	}

	return New([]string{byCol, valueCol}, map[string][]string{
		byCol:    sorted,
		valueCol: meanCells,
	})
}

// CountBy counts rows per distinct key in the group column, sorted by key.
func (f *Frame) CountBy(byCol string) (*Frame, error) {
	keys, ok := f.Column(byCol)
	if !ok {
		return nil, fmt.Errorf("dataframe: unknown column %q", byCol)
	}
	counts := make(map[string]int)
	for _, key := range keys {
		counts[key]++
	}
	sorted := make([]string, 0, len(counts))
	for key := range counts {
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)

	countCells := make([]string, len(sorted))
	for i, key := range sorted {
		countCells[i] = strconv.Itoa(counts[key])
	}
	return New([]string{byCol, "count"}, map[string][]string{
		byCol:   sorted,
		"count": countCells,
	})
}

// Summary builds a per-numeric-column statistics table: count, mean, min,
// max, and sample standard deviation.
func (f *Frame) Summary() (*Frame, error) {
	numCols := f.NumericColumns()
	if len(numCols) == 0 {
		return nil, fmt.Errorf("dataframe: no numeric columns to summarize")
	}

	out := map[string][]string{
		"column": numCols,
		"count":  make([]string, len(numCols)),
		"mean":   make([]string, len(numCols)),
		"min":    make([]string, len(numCols)),
		"max":    make([]string, len(numCols)),
		"std":    make([]string, len(numCols)),
	}
	for i, col := range numCols {
		values, _, _ := f.Numeric(col)
		mean, _ := stats.Mean(values)
		min, _ := stats.Min(values)
		max, _ := stats.Max(values)
		std, _ := stats.StandardDeviationSample(values)
		out["count"][i] = strconv.Itoa(len(values))
		out["mean"][i] = FormatFloat(mean)
		out["min"][i] = FormatFloat(min)
		out["max"][i] = FormatFloat(max)
		out["std"][i] = FormatFloat(std)
	}
	return New([]string{"column", "count", "mean", "min", "max", "std"}, out)
}

// SortBy returns a copy sorted by the given column. Numeric columns sort
// numerically, others lexically.
func (f *Frame) SortBy(col string, descending bool) (*Frame, error) {
	vals, ok := f.Column(col)
	if !ok {
		return nil, fmt.Errorf("dataframe: unknown column %q", col)
	}

	indices := make([]int, len(vals))
	for i := range indices {
		indices[i] = i
	}

	_, _, numeric := f.Numeric(col)
	less := func(a, b int) bool { return vals[a] < vals[b] }
	if numeric {
		less = func(a, b int) bool {
			x, _ := strconv.ParseFloat(vals[a], 64)
			y, _ := strconv.ParseFloat(vals[b], 64)
			return x < y
		}
	}
	sort.SliceStable(indices, func(a, b int) bool {
		if descending {
			return less(indices[b], indices[a])
		}
		return less(indices[a], indices[b])
	})
	return f.FilterRows(indices), nil
}

// FormatFloat renders a float for table cells without trailing noise.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
