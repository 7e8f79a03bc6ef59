package preprocessing

import (
	"fmt"
	"sort"

	"github.com/nikronic/niklib/core/model"
	"github.com/nikronic/niklib/dataframe"
	"github.com/nikronic/niklib/pkg/errors"
)

// Unknown-category handling policies for the encoders.
const (
	// HandleUnknownError fails Transform on a category unseen during fit.
	HandleUnknownError = "error"
	// HandleUnknownIgnore encodes unseen categories as all zeros
	// (OneHotEncoder) or skips them (OrdinalEncoder maps to -1).
	HandleUnknownIgnore = "ignore"
)

// stringColumns extracts the string views and names of every column in X.
// Fails if X is empty or any column is not string-typed.
func stringColumns(op string, X *dataframe.Frame) ([][]string, []string, error) {
	if X == nil || X.NumRows() == 0 || X.NumCols() == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	names := X.Columns()
	values := make([][]string, len(names))
	for j, name := range names {
		col, err := X.Column(name)
		if err != nil {
			return nil, nil, err
		}
		strs, err := col.Strings()
		if err != nil {
			return nil, nil, err
		}
		values[j] = strs
	}
	return values, names, nil
}

// OneHotEncoder encodes categorical columns as one binary column per
// category, matching sklearn.preprocessing.OneHotEncoder.
//
// Categories may be provided up front (one list per input column, e.g. the
// shared category union computed by the pipeline resolver for grouped
// transforms) or learned from the data during Fit, in which case they are
// the sorted distinct values per column.
type OneHotEncoder struct {
	state *model.StateManager

	// Categories holds the active category list per column. Provided
	// lists are kept verbatim; learned lists are sorted.
	Categories [][]string

	// HandleUnknown selects the policy for categories unseen during fit.
	HandleUnknown string

	// Columns holds the fitted column names, in input order.
	Columns []string

	categoriesGiven bool
}

// NewOneHotEncoder creates a OneHotEncoder. Pass nil categories to learn
// them from the data during Fit.
func NewOneHotEncoder(categories [][]string, handleUnknown string) *OneHotEncoder {
	return &OneHotEncoder{
		state:           model.NewStateManager(),
		Categories:      categories,
		HandleUnknown:   handleUnknown,
		categoriesGiven: categories != nil,
	}
}

// NewOneHotEncoderDefault creates a OneHotEncoder that learns categories
// and fails on unknown ones.
func NewOneHotEncoderDefault() *OneHotEncoder {
	return NewOneHotEncoder(nil, HandleUnknownError)
}

// Fit learns (or validates) the per-column category lists.
func (e *OneHotEncoder) Fit(X *dataframe.Frame) error {
	cols, names, err := stringColumns("OneHotEncoder.Fit", X)
	if err != nil {
		return err
	}

	if e.categoriesGiven {
		if len(e.Categories) != len(cols) {
			return errors.NewDimensionError(
				"OneHotEncoder.Fit", len(cols), len(e.Categories), 1)
		}
	} else {
		e.Categories = make([][]string, len(cols))
		for j, values := range cols {
			seen := make(map[string]struct{}, len(values))
			uniques := make([]string, 0, len(values))
			for _, v := range values {
				if _, ok := seen[v]; ok {
					continue
				}
				seen[v] = struct{}{}
				uniques = append(uniques, v)
			}
			sort.Strings(uniques)
			e.Categories[j] = uniques
		}
	}

	e.Columns = names
	e.state.SetDimensions(len(cols), X.NumRows())
	e.state.SetFitted()
	return nil
}

// Transform expands each categorical column into its binary indicator
// columns, named "<column>_<category>".
func (e *OneHotEncoder) Transform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if !e.state.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	cols, names, err := stringColumns("OneHotEncoder.Transform", X)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(e.Columns) {
		return nil, errors.NewDimensionError(
			"OneHotEncoder.Transform", len(e.Columns), len(cols), 1)
	}

	var series []*dataframe.Series
	for j, values := range cols {
		index := make(map[string]int, len(e.Categories[j]))
		for k, cat := range e.Categories[j] {
			index[cat] = k
		}

		indicators := make([][]float64, len(e.Categories[j]))
		for k := range indicators {
			indicators[k] = make([]float64, len(values))
		}
		for i, v := range values {
			k, ok := index[v]
			if !ok {
				if e.HandleUnknown == HandleUnknownIgnore {
					continue
				}
				return nil, errors.NewValidationError(
					names[j], fmt.Sprintf("found unknown category %q during transform", v), v)
			}
			indicators[k][i] = 1.0
		}
		for k, cat := range e.Categories[j] {
			series = append(series,
				dataframe.NewFloatSeries(names[j]+"_"+cat, indicators[k]))
		}
	}
	return dataframe.New(series...)
}

// FitTransform fits on X and transforms it.
func (e *OneHotEncoder) FitTransform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if err := e.Fit(X); err != nil {
		return nil, err
	}
	return e.Transform(X)
}

// FeatureNamesOut expands each input name into one name per category,
// "<input>_<category>".
func (e *OneHotEncoder) FeatureNamesOut(input []string) ([]string, error) {
	if !e.state.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "FeatureNamesOut")
	}
	if len(input) != len(e.Columns) {
		return nil, errors.NewDimensionError(
			"OneHotEncoder.FeatureNamesOut", len(e.Columns), len(input), 1)
	}
	var out []string
	for j, name := range input {
		for _, cat := range e.Categories[j] {
			out = append(out, name+"_"+cat)
		}
	}
	return out, nil
}

// GetParams returns the encoder parameters.
func (e *OneHotEncoder) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"categories":     e.Categories,
		"handle_unknown": e.HandleUnknown,
	}
}

// String returns a readable representation of the encoder.
func (e *OneHotEncoder) String() string {
	if !e.state.IsFitted() {
		return fmt.Sprintf("OneHotEncoder(handle_unknown=%q)", e.HandleUnknown)
	}
	return fmt.Sprintf("OneHotEncoder(handle_unknown=%q, n_features=%d)",
		e.HandleUnknown, len(e.Columns))
}

// OrdinalEncoder encodes categorical columns as integer codes, matching
// sklearn.preprocessing.OrdinalEncoder. Output width equals input width.
type OrdinalEncoder struct {
	state *model.StateManager

	// Categories holds the active category list per column; the code of a
	// value is its position in the list.
	Categories [][]string

	// HandleUnknown selects the policy for categories unseen during fit.
	// HandleUnknownIgnore maps them to -1.
	HandleUnknown string

	// Columns holds the fitted column names, in input order.
	Columns []string

	categoriesGiven bool
}

// NewOrdinalEncoder creates an OrdinalEncoder. Pass nil categories to learn
// them from the data during Fit.
func NewOrdinalEncoder(categories [][]string, handleUnknown string) *OrdinalEncoder {
	return &OrdinalEncoder{
		state:           model.NewStateManager(),
		Categories:      categories,
		HandleUnknown:   handleUnknown,
		categoriesGiven: categories != nil,
	}
}

// NewOrdinalEncoderDefault creates an OrdinalEncoder that learns categories
// and fails on unknown ones.
func NewOrdinalEncoderDefault() *OrdinalEncoder {
	return NewOrdinalEncoder(nil, HandleUnknownError)
}

// Fit learns (or validates) the per-column category lists.
func (e *OrdinalEncoder) Fit(X *dataframe.Frame) error {
	cols, names, err := stringColumns("OrdinalEncoder.Fit", X)
	if err != nil {
		return err
	}

	if e.categoriesGiven {
		if len(e.Categories) != len(cols) {
			return errors.NewDimensionError(
				"OrdinalEncoder.Fit", len(cols), len(e.Categories), 1)
		}
	} else {
		e.Categories = make([][]string, len(cols))
		for j, values := range cols {
			seen := make(map[string]struct{}, len(values))
			uniques := make([]string, 0, len(values))
			for _, v := range values {
				if _, ok := seen[v]; ok {
					continue
				}
				seen[v] = struct{}{}
				uniques = append(uniques, v)
			}
			sort.Strings(uniques)
			e.Categories[j] = uniques
		}
	}

	e.Columns = names
	e.state.SetDimensions(len(cols), X.NumRows())
	e.state.SetFitted()
	return nil
}

// Transform replaces each value by its category code.
func (e *OrdinalEncoder) Transform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if !e.state.IsFitted() {
		return nil, errors.NewNotFittedError("OrdinalEncoder", "Transform")
	}
	cols, names, err := stringColumns("OrdinalEncoder.Transform", X)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(e.Columns) {
		return nil, errors.NewDimensionError(
			"OrdinalEncoder.Transform", len(e.Columns), len(cols), 1)
	}

	series := make([]*dataframe.Series, len(cols))
	for j, values := range cols {
		index := make(map[string]int, len(e.Categories[j]))
		for k, cat := range e.Categories[j] {
			index[cat] = k
		}
		codes := make([]float64, len(values))
		for i, v := range values {
			k, ok := index[v]
			if !ok {
				if e.HandleUnknown == HandleUnknownIgnore {
					codes[i] = -1.0
					continue
				}
				return nil, errors.NewValidationError(
					names[j], fmt.Sprintf("found unknown category %q during transform", v), v)
			}
			codes[i] = float64(k)
		}
		series[j] = dataframe.NewFloatSeries(names[j], codes)
	}
	return dataframe.New(series...)
}

// FitTransform fits on X and transforms it.
func (e *OrdinalEncoder) FitTransform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if err := e.Fit(X); err != nil {
		return nil, err
	}
	return e.Transform(X)
}

// FeatureNamesOut returns the input names unchanged.
func (e *OrdinalEncoder) FeatureNamesOut(input []string) ([]string, error) {
	if !e.state.IsFitted() {
		return nil, errors.NewNotFittedError("OrdinalEncoder", "FeatureNamesOut")
	}
	return identityNamesOut("OrdinalEncoder.FeatureNamesOut", e.Columns, input)
}

// GetParams returns the encoder parameters.
func (e *OrdinalEncoder) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"categories":     e.Categories,
		"handle_unknown": e.HandleUnknown,
	}
}
