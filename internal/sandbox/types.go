// Package sandbox executes generated analysis scripts in a Starlark
// interpreter whose predeclared environment is the complete capability
// surface: a dataset value, a handful of table helpers, and chart
// constructors. There is no filesystem, network, process, or import
// machinery to escape to.
package sandbox

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/insightlabs/insightstream/internal/artifact"
	"github.com/insightlabs/insightstream/internal/dataframe"
)

// FrameValue exposes a dataframe to scripts. Subscripting by column name
// yields a ColumnValue; everything else goes through the table builtins.
type FrameValue struct {
	frame *dataframe.Frame
}

var (
	_ starlark.Value   = (*FrameValue)(nil)
	_ starlark.Mapping = (*FrameValue)(nil)
)

func NewFrameValue(f *dataframe.Frame) *FrameValue {
	return &FrameValue{frame: f}
}

func (f *FrameValue) String() string {
	return fmt.Sprintf("<dataframe %d cols x %d rows>", len(f.frame.Columns()), f.frame.Rows())
}

func (f *FrameValue) Type() string          { return "dataframe" }
func (f *FrameValue) Freeze()               {}
func (f *FrameValue) Truth() starlark.Bool  { return f.frame.Rows() > 0 }
func (f *FrameValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: dataframe") }

// Get implements df["column"].
func (f *FrameValue) Get(k starlark.Value) (starlark.Value, bool, error) {
	name, ok := starlark.AsString(k)
	if !ok {
		return nil, false, fmt.Errorf("dataframe index must be a column name string, got %s", k.Type())
	}
	if !f.frame.HasColumn(name) {
		return nil, false, fmt.Errorf("unknown column %q (have %v)", name, f.frame.Columns())
	}
	return &ColumnValue{frame: f.frame, name: name}, true, nil
}

// ColumnValue is one named column of a dataframe. Scripts mostly pass these
// to chart constructors, but indexing and iteration work too.
type ColumnValue struct {
	frame *dataframe.Frame
	name  string
}

var (
	_ starlark.Value     = (*ColumnValue)(nil)
	_ starlark.Indexable = (*ColumnValue)(nil)
	_ starlark.Iterable  = (*ColumnValue)(nil)
)

func (c *ColumnValue) String() string        { return fmt.Sprintf("<column %q>", c.name) }
func (c *ColumnValue) Type() string          { return "column" }
func (c *ColumnValue) Freeze()               {}
func (c *ColumnValue) Truth() starlark.Bool  { return c.frame.Rows() > 0 }
func (c *ColumnValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: column") }
func (c *ColumnValue) Len() int              { return c.frame.Rows() }

func (c *ColumnValue) Index(i int) starlark.Value {
	cell, _ := c.frame.Cell(c.name, i)
	return starlark.String(cell)
}

func (c *ColumnValue) Iterate() starlark.Iterator {
	return &columnIterator{col: c}
}

type columnIterator struct {
	col *ColumnValue
	i   int
}

func (it *columnIterator) Next(p *starlark.Value) bool {
	if it.i >= it.col.Len() {
		return false
	}
	*p = it.col.Index(it.i)
	it.i++
	return true
}

func (it *columnIterator) Done() {}

// ChartValue wraps a chart description produced by a chart constructor.
// Scripts only ever assign it to fig.
type ChartValue struct {
	chart *artifact.Chart
}

var _ starlark.Value = (*ChartValue)(nil)

func (c *ChartValue) String() string        { return fmt.Sprintf("<chart %s %q>", c.chart.Kind, c.chart.Title) }
func (c *ChartValue) Type() string          { return "chart" }
func (c *ChartValue) Freeze()               {}
func (c *ChartValue) Truth() starlark.Bool  { return true }
func (c *ChartValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: chart") }
