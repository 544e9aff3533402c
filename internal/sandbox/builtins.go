package sandbox

import (
	"fmt"
	"strconv"
	"strings"

	"go.starlark.net/starlark"

	"github.com/insightlabs/insightstream/internal/artifact"
	"github.com/insightlabs/insightstream/internal/dataframe"
)

// Predeclared builds the capability allowlist for one script run. Whatever
// is absent from this dict does not exist as far as the script is concerned.
func Predeclared(df *FrameValue) starlark.StringDict {
	return starlark.StringDict{
		"df":         df,
		"select":     starlark.NewBuiltin("select", builtinSelect),
		"head":       starlark.NewBuiltin("head", builtinHead),
		"sort_by":    starlark.NewBuiltin("sort_by", builtinSortBy),
		"filter_eq":  starlark.NewBuiltin("filter_eq", builtinFilterEq),
		"group_mean": starlark.NewBuiltin("group_mean", builtinGroupMean),
		"count_by":   starlark.NewBuiltin("count_by", builtinCountBy),
		"summary":    starlark.NewBuiltin("summary", builtinSummary),
		"bar":        chartBuiltin("bar"),
		"line":       chartBuiltin("line"),
		"scatter":    chartBuiltin("scatter"),
		"pie":        chartBuiltin("pie"),
	}
}

func unpackFrame(v starlark.Value) (*dataframe.Frame, error) {
	fv, ok := v.(*FrameValue)
	if !ok {
		return nil, fmt.Errorf("expected a dataframe, got %s", v.Type())
	}
	return fv.frame, nil
}

// columnName accepts either a quoted name or a df["name"] column value.
func columnName(v starlark.Value) (string, error) {
	switch col := v.(type) {
	case starlark.String:
		return string(col), nil
	case *ColumnValue:
		return col.name, nil
	default:
		return "", fmt.Errorf("expected a column name, got %s", v.Type())
	}
}

func builtinSelect(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dfv starlark.Value
	var cols *starlark.List
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "df", &dfv, "cols", &cols); err != nil {
		return nil, err
	}
	frame, err := unpackFrame(dfv)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, cols.Len())
	it := cols.Iterate()
	defer it.Done()
	var item starlark.Value
	for it.Next(&item) {
		name, err := columnName(item)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		names = append(names, name)
	}

	out, err := frame.Select(names...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return NewFrameValue(out), nil
}

func builtinHead(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dfv starlark.Value
	var n int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "df", &dfv, "n", &n); err != nil {
		return nil, err
	}
	frame, err := unpackFrame(dfv)
	if err != nil {
		return nil, err
	}
	return NewFrameValue(frame.Head(n)), nil
}

func builtinSortBy(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dfv, colv starlark.Value
	desc := false
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "df", &dfv, "col", &colv, "desc?", &desc); err != nil {
		return nil, err
	}
	frame, err := unpackFrame(dfv)
	if err != nil {
		return nil, err
	}
	col, err := columnName(colv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	out, err := frame.SortBy(col, desc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return NewFrameValue(out), nil
}

func builtinFilterEq(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dfv, colv, value starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "df", &dfv, "col", &colv, "value", &value); err != nil {
		return nil, err
	}
	frame, err := unpackFrame(dfv)
	if err != nil {
		return nil, err
	}
	col, err := columnName(colv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	cells, ok := frame.Column(col)
	if !ok {
		return nil, fmt.Errorf("%s: unknown column %q", b.Name(), col)
	}

	want := scalarString(value)
	var indices []int
	for i, cell := range cells {
		if cellEquals(cell, want) {
			indices = append(indices, i)
		}
	}
	return NewFrameValue(frame.FilterRows(indices)), nil
}

// cellEquals compares trimmed text, then numerically so filter_eq(df, "n", 5)
// matches a "5.0" cell.
func cellEquals(cell, want string) bool {
	cell = strings.TrimSpace(cell)
	if cell == want {
		return true
	}
	a, errA := strconv.ParseFloat(cell, 64)
	w, errW := strconv.ParseFloat(want, 64)
	return errA == nil && errW == nil && a == w
}

func scalarString(v starlark.Value) string {
	switch val := v.(type) {
	case starlark.String:
		return string(val)
	case starlark.Int:
		return val.String()
	case starlark.Float:
		return dataframe.FormatFloat(float64(val))
	case starlark.Bool:
		if bool(val) {
			return "true"
		}
		return "false"
	default:
		return v.String()
	}
}

func builtinGroupMean(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dfv, byv, valv starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "df", &dfv, "by", &byv, "value", &valv); err != nil {
		return nil, err
	}
	frame, err := unpackFrame(dfv)
	if err != nil {
		return nil, err
	}
	by, err := columnName(byv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	value, err := columnName(valv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	out, err := frame.GroupMean(by, value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return NewFrameValue(out), nil
}

func builtinCountBy(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dfv, colv starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "df", &dfv, "col", &colv); err != nil {
		return nil, err
	}
	frame, err := unpackFrame(dfv)
	if err != nil {
		return nil, err
	}
	col, err := columnName(colv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	out, err := frame.CountBy(col)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return NewFrameValue(out), nil
}

func builtinSummary(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dfv starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "df", &dfv); err != nil {
		return nil, err
	}
	frame, err := unpackFrame(dfv)
	if err != nil {
		return nil, err
	}
	out, err := frame.Summary()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return NewFrameValue(out), nil
}

// chartBuiltin makes a constructor for one chart kind. All four share the
// (x, y, title) shape; pie reads x as labels.
func chartBuiltin(kind string) *starlark.Builtin {
	return starlark.NewBuiltin(kind, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var xv, yv starlark.Value
		title := ""
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "x", &xv, "y", &yv, "title?", &title); err != nil {
			return nil, err
		}

		labels, err := asLabels(xv)
		if err != nil {
			return nil, fmt.Errorf("%s: x: %w", b.Name(), err)
		}
		yName, values, err := asFloats(yv)
		if err != nil {
			return nil, fmt.Errorf("%s: y: %w", b.Name(), err)
		}
		if len(labels) != len(values) {
			return nil, fmt.Errorf("%s: x has %d values, y has %d", b.Name(), len(labels), len(values))
		}

		return &ChartValue{chart: &artifact.Chart{
			Kind:   kind,
			Title:  title,
			X:      labels,
			Series: []artifact.Series{{Name: yName, Y: values}},
		}}, nil
	})
}

func asLabels(v starlark.Value) ([]string, error) {
	switch val := v.(type) {
	case *ColumnValue:
		cells, _ := val.frame.Column(val.name)
		return cells, nil
	case *starlark.List:
		out := make([]string, 0, val.Len())
		it := val.Iterate()
		defer it.Done()
		var item starlark.Value
		for it.Next(&item) {
			s, ok := starlark.AsString(item)
			if !ok {
				s = item.String()
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a column or list, got %s", v.Type())
	}
}

func asFloats(v starlark.Value) (name string, values []float64, err error) {
	switch val := v.(type) {
	case *ColumnValue:
		nums, _, ok := val.frame.Numeric(val.name)
		if !ok {
			return "", nil, fmt.Errorf("column %q is not numeric", val.name)
		}
		return val.name, nums, nil
	case *starlark.List:
		out := make([]float64, 0, val.Len())
		it := val.Iterate()
		defer it.Done()
		var item starlark.Value
		for it.Next(&item) {
			f, ok := starlark.AsFloat(item)
			if !ok {
				return "", nil, fmt.Errorf("expected a number, got %s", item.Type())
			}
			out = append(out, f)
		}
		return "values", out, nil
	default:
		return "", nil, fmt.Errorf("expected a column or list, got %s", v.Type())
	}
}
