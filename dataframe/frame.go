// Package dataframe provides a minimal in-memory column-typed frame.
//
// A Frame is an ordered collection of named, typed columns with equal length.
// It covers exactly what the preprocessing pipeline needs from a tabular
// dataset: column enumeration with dtypes, dtype-based filtering, unique
// value extraction for categorical columns, row selection for splitting,
// and a dense numeric view for transform execution.
package dataframe

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/nikronic/niklib/pkg/errors"
)

// Dtype identifies the storage type of a column.
type Dtype int

const (
	// Float64 is a continuous numeric column.
	Float64 Dtype = iota
	// Int64 is an integer numeric column. Values are stored as float64
	// for the benefit of the numeric transforms.
	Int64
	// Bool is a boolean column.
	Bool
	// String is a free-form text column.
	String
	// Category is a string column with a small set of distinct values.
	Category
)

// String returns the canonical name of the dtype.
func (d Dtype) String() string {
	switch d {
	case Float64:
		return "float64"
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Category:
		return "category"
	default:
		return fmt.Sprintf("Dtype(%d)", int(d))
	}
}

// IsNumeric reports whether columns of this dtype have a float64 view.
func (d Dtype) IsNumeric() bool {
	return d == Float64 || d == Int64
}

// ParseDtype maps a dtype literal from a configuration file to a Dtype.
// Both plain Go-ish names ("float64", "int", "bool", "string", "category")
// and the numpy-style spellings used by the original config files
// ("np.float32", "np.int64", "np.object_") are accepted.
func ParseDtype(s string) (Dtype, error) {
	switch s {
	case "float", "float32", "float64", "np.float32", "np.float64":
		return Float64, nil
	case "int", "int32", "int64", "np.int32", "np.int64":
		return Int64, nil
	case "bool", "np.bool_":
		return Bool, nil
	case "str", "string", "object", "np.object_":
		return String, nil
	case "category":
		return Category, nil
	default:
		return 0, errors.NewValidationError("dtype", "unknown dtype literal", s)
	}
}

// Series is a single named, typed column.
type Series struct {
	name  string
	dtype Dtype

	floats []float64
	strs   []string
	bools  []bool
}

// NewFloatSeries creates a Float64 column.
func NewFloatSeries(name string, values []float64) *Series {
	return &Series{name: name, dtype: Float64, floats: values}
}

// NewIntSeries creates an Int64 column. Values keep a float64 backing so
// numeric transforms can consume them without conversion.
func NewIntSeries(name string, values []int64) *Series {
	floats := make([]float64, len(values))
	for i, v := range values {
		floats[i] = float64(v)
	}
	return &Series{name: name, dtype: Int64, floats: floats}
}

// NewStringSeries creates a String column.
func NewStringSeries(name string, values []string) *Series {
	return &Series{name: name, dtype: String, strs: values}
}

// NewCategorySeries creates a Category column.
func NewCategorySeries(name string, values []string) *Series {
	return &Series{name: name, dtype: Category, strs: values}
}

// NewBoolSeries creates a Bool column.
func NewBoolSeries(name string, values []bool) *Series {
	return &Series{name: name, dtype: Bool, bools: values}
}

// Name returns the column name.
func (s *Series) Name() string { return s.name }

// Dtype returns the column dtype.
func (s *Series) Dtype() Dtype { return s.dtype }

// Len returns the number of rows.
func (s *Series) Len() int {
	switch s.dtype {
	case Float64, Int64:
		return len(s.floats)
	case Bool:
		return len(s.bools)
	default:
		return len(s.strs)
	}
}

// Floats returns the float64 view of a numeric column.
func (s *Series) Floats() ([]float64, error) {
	if !s.dtype.IsNumeric() {
		return nil, errors.NewValidationError(
			"column", "no numeric view for dtype "+s.dtype.String(), s.name)
	}
	return s.floats, nil
}

// Strings returns the string view of a String or Category column.
func (s *Series) Strings() ([]string, error) {
	if s.dtype != String && s.dtype != Category {
		return nil, errors.NewValidationError(
			"column", "no string view for dtype "+s.dtype.String(), s.name)
	}
	return s.strs, nil
}

// Bools returns the bool view of a Bool column.
func (s *Series) Bools() ([]bool, error) {
	if s.dtype != Bool {
		return nil, errors.NewValidationError(
			"column", "no bool view for dtype "+s.dtype.String(), s.name)
	}
	return s.bools, nil
}

// Uniques returns the distinct values of a String or Category column in
// first-seen order.
func (s *Series) Uniques() ([]string, error) {
	values, err := s.Strings()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(values))
	uniques := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		uniques = append(uniques, v)
	}
	return uniques, nil
}

// take returns a copy of the series restricted to the given row positions.
func (s *Series) take(rows []int) *Series {
	out := &Series{name: s.name, dtype: s.dtype}
	switch s.dtype {
	case Float64, Int64:
		out.floats = make([]float64, len(rows))
		for i, r := range rows {
			out.floats[i] = s.floats[r]
		}
	case Bool:
		out.bools = make([]bool, len(rows))
		for i, r := range rows {
			out.bools[i] = s.bools[r]
		}
	default:
		out.strs = make([]string, len(rows))
		for i, r := range rows {
			out.strs[i] = s.strs[r]
		}
	}
	return out
}

// Frame is an ordered collection of equally sized columns with unique names.
type Frame struct {
	cols  []*Series
	index map[string]int
}

// New creates a Frame from the given columns. Column order is preserved.
func New(cols ...*Series) (*Frame, error) {
	index := make(map[string]int, len(cols))
	rows := -1
	for i, col := range cols {
		if _, ok := index[col.Name()]; ok {
			return nil, errors.NewValidationError(
				"columns", "duplicate column name", col.Name())
		}
		if rows >= 0 && col.Len() != rows {
			return nil, errors.NewDimensionError(
				"dataframe.New", rows, col.Len(), 0)
		}
		rows = col.Len()
		index[col.Name()] = i
	}
	return &Frame{cols: cols, index: index}, nil
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.cols) }

// Columns returns the column names in frame order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.cols))
	for i, col := range f.cols {
		names[i] = col.Name()
	}
	return names
}

// Has reports whether the frame contains a column with the given name.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the column with the given name.
func (f *Frame) Column(name string) (*Series, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, errors.NewValidationError("column", "no such column", name)
	}
	return f.cols[i], nil
}

// ColumnAt returns the column at the given zero-based position.
func (f *Frame) ColumnAt(i int) (*Series, error) {
	if i < 0 || i >= len(f.cols) {
		return nil, errors.NewValidationError(
			"column", "column position out of range", i)
	}
	return f.cols[i], nil
}

// ColumnIndex returns the zero-based position of a column.
func (f *Frame) ColumnIndex(name string) (int, error) {
	i, ok := f.index[name]
	if !ok {
		return 0, errors.NewValidationError("column", "no such column", name)
	}
	return i, nil
}

// Select returns a new frame holding only the named columns, in the
// requested order. Columns are shared, not copied.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]*Series, 0, len(names))
	for _, name := range names {
		col, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return New(cols...)
}

// Drop returns a new frame without the named columns.
func (f *Frame) Drop(names ...string) (*Frame, error) {
	dropped := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !f.Has(name) {
			return nil, errors.NewValidationError("column", "no such column", name)
		}
		dropped[name] = struct{}{}
	}
	cols := make([]*Series, 0, len(f.cols))
	for _, col := range f.cols {
		if _, ok := dropped[col.Name()]; !ok {
			cols = append(cols, col)
		}
	}
	return New(cols...)
}

// Take returns a new frame restricted to the given row positions, in the
// given order. Useful for shuffling and splitting.
func (f *Frame) Take(rows []int) (*Frame, error) {
	n := f.NumRows()
	for _, r := range rows {
		if r < 0 || r >= n {
			return nil, errors.NewValidationError(
				"rows", "row position out of range", r)
		}
	}
	cols := make([]*Series, len(f.cols))
	for i, col := range f.cols {
		cols[i] = col.take(rows)
	}
	return New(cols...)
}

// Slice returns the rows in the half-open interval [start, end).
func (f *Frame) Slice(start, end int) (*Frame, error) {
	if start < 0 || end < start || end > f.NumRows() {
		return nil, errors.NewValidationError(
			"rows", fmt.Sprintf("invalid slice [%d:%d)", start, end), f.NumRows())
	}
	rows := make([]int, 0, end-start)
	for r := start; r < end; r++ {
		rows = append(rows, r)
	}
	return f.Take(rows)
}

// SelectDtypes returns the names of columns whose dtype is in include and
// not in exclude, preserving frame order. An empty include list matches
// every dtype.
func (f *Frame) SelectDtypes(include, exclude []Dtype) []string {
	included := func(d Dtype) bool {
		if len(include) == 0 {
			return true
		}
		for _, want := range include {
			if d == want {
				return true
			}
		}
		return false
	}
	excluded := func(d Dtype) bool {
		for _, skip := range exclude {
			if d == skip {
				return true
			}
		}
		return false
	}
	names := make([]string, 0, len(f.cols))
	for _, col := range f.cols {
		if included(col.Dtype()) && !excluded(col.Dtype()) {
			names = append(names, col.Name())
		}
	}
	return names
}

// Matrix returns a dense numeric view of the frame. Every column must be
// numeric.
func (f *Frame) Matrix() (*mat.Dense, error) {
	r, c := f.NumRows(), f.NumCols()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataframe.Matrix")
	}
	out := mat.NewDense(r, c, nil)
	for j, col := range f.cols {
		values, err := col.Floats()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			out.Set(i, j, v)
		}
	}
	return out, nil
}
