// Package compose builds multi-column transform pipelines from declarative
// configuration, mirroring sklearn.compose: a ColumnSelector picks columns
// by dtype and regex, ColumnTransformerConfig resolves configuration
// directives into (name, transformer, columns) triples, and a
// ColumnTransformer executes them over column subsets of a frame.
package compose

import (
	"fmt"
	"regexp"

	"github.com/nikronic/niklib/dataframe"
	"github.com/nikronic/niklib/pkg/errors"
)

// ColumnsType selects how resolved columns are identified.
type ColumnsType int

const (
	// ColumnsByName identifies columns by their names. Useful when the
	// downstream consumer works on named frames.
	ColumnsByName ColumnsType = iota
	// ColumnsByIndex identifies columns by zero-based positions. Useful
	// when the downstream consumer works on bare matrices; generated
	// output feature names then use opaque "x<pos>" tokens.
	ColumnsByIndex
)

// String returns the configuration spelling of the columns type.
func (t ColumnsType) String() string {
	if t == ColumnsByIndex {
		return "numeric"
	}
	return "string"
}

// ParseColumnsType maps the configuration spelling ("string" or "numeric",
// following the original pandas/numpy distinction) to a ColumnsType.
func ParseColumnsType(s string) (ColumnsType, error) {
	switch s {
	case "string":
		return ColumnsByName, nil
	case "numeric":
		return ColumnsByIndex, nil
	default:
		return 0, errors.NewValidationError(
			"columns_type", `must be "string" or "numeric"`, s)
	}
}

// Columns is an ordered, duplicate-free set of resolved frame columns.
// Names and positions are both carried; Type records which identification
// the configuration asked for.
type Columns struct {
	Type    ColumnsType
	Names   []string
	Indices []int
}

// Len returns the number of resolved columns.
func (c Columns) Len() int { return len(c.Indices) }

// Label returns the identifier of the i-th column in the requested
// representation: the column name, or "x<pos>" for index-typed columns.
func (c Columns) Label(i int) string {
	if c.Type == ColumnsByIndex {
		return fmt.Sprintf("x%d", c.Indices[i])
	}
	return c.Names[i]
}

// Labels returns all column identifiers in the requested representation.
func (c Columns) Labels() []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.Label(i)
	}
	return out
}

// ColumnSelector selects frame columns by dtype and regex pattern.
//
// The inclusion set is every column whose dtype is in DtypeInclude (empty
// means any) and whose name matches PatternInclude (empty means any). The
// exclusion set is built the same way from DtypeExclude and PatternExclude,
// except that an empty PatternExclude excludes nothing — the original
// implementation substitutes a pattern that can match no column, so a
// selector without an exclude pattern never loses columns by accident.
// The result is the inclusion set minus the exclusion set, in frame order.
type ColumnSelector struct {
	// ColumnsType selects names or positional indices in the result.
	ColumnsType ColumnsType

	// DtypeInclude lists the dtypes to select. Empty selects all dtypes.
	DtypeInclude []dataframe.Dtype

	// DtypeExclude lists the dtypes to drop from the dtype filter.
	DtypeExclude []dataframe.Dtype

	// PatternInclude is a regex on column names; "" matches all columns.
	PatternInclude string

	// PatternExclude is a regex on column names; "" excludes no column.
	PatternExclude string
}

// Select resolves the selector against a frame. The result is
// deduplicated, in frame column order, independent of any internal
// iteration order, and stable across repeated calls on an unchanged frame.
func (s ColumnSelector) Select(df *dataframe.Frame) (Columns, error) {
	if df == nil {
		return Columns{}, errors.NewValidationError(
			"df", "must be a *dataframe.Frame, not nil", nil)
	}

	var includeRe, excludeRe *regexp.Regexp
	var err error
	if s.PatternInclude != "" {
		includeRe, err = regexp.Compile(s.PatternInclude)
		if err != nil {
			return Columns{}, errors.Wrap(err, "compiling pattern_include")
		}
	}
	if s.PatternExclude != "" {
		excludeRe, err = regexp.Compile(s.PatternExclude)
		if err != nil {
			return Columns{}, errors.Wrap(err, "compiling pattern_exclude")
		}
	}

	// Dtype filtering is shared by the inclusion and exclusion sets; the
	// two sets differ only in the name pattern applied on top.
	dtypeMatched := make(map[string]struct{})
	for _, name := range df.SelectDtypes(s.DtypeInclude, s.DtypeExclude) {
		dtypeMatched[name] = struct{}{}
	}

	out := Columns{Type: s.ColumnsType}
	seen := make(map[string]struct{})
	for i, name := range df.Columns() {
		if _, ok := dtypeMatched[name]; !ok {
			continue
		}
		if includeRe != nil && !includeRe.MatchString(name) {
			continue
		}
		if excludeRe != nil && excludeRe.MatchString(name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out.Names = append(out.Names, name)
		out.Indices = append(out.Indices, i)
	}
	return out, nil
}
