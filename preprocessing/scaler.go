// Package preprocessing provides scikit-learn compatible transformers over
// column-typed frames: scalers for numeric columns and encoders for
// categorical columns. Every transformer satisfies model.Transformer and is
// registered with the compose package's transform registry by name.
package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/nikronic/niklib/core/model"
	"github.com/nikronic/niklib/dataframe"
	"github.com/nikronic/niklib/pkg/errors"
)

// numericColumns extracts the float views and names of every column in X.
// Fails if X is empty or any column is non-numeric.
func numericColumns(op string, X *dataframe.Frame) ([][]float64, []string, error) {
	if X == nil || X.NumRows() == 0 || X.NumCols() == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	names := X.Columns()
	values := make([][]float64, len(names))
	for j, name := range names {
		col, err := X.Column(name)
		if err != nil {
			return nil, nil, err
		}
		floats, err := col.Floats()
		if err != nil {
			return nil, nil, err
		}
		values[j] = floats
	}
	return values, names, nil
}

// floatFrame assembles a frame of Float64 columns.
func floatFrame(names []string, cols [][]float64) (*dataframe.Frame, error) {
	series := make([]*dataframe.Series, len(names))
	for j, name := range names {
		series[j] = dataframe.NewFloatSeries(name, cols[j])
	}
	return dataframe.New(series...)
}

// identityNamesOut validates the input name count against the fitted width
// and returns the names unchanged. Scalers keep a 1:1 column mapping.
func identityNamesOut(op string, fitted []string, input []string) ([]string, error) {
	if len(input) != len(fitted) {
		return nil, errors.NewDimensionError(op, len(fitted), len(input), 1)
	}
	out := make([]string, len(input))
	copy(out, input)
	return out, nil
}

// StandardScaler standardizes numeric columns to zero mean and unit
// variance, matching sklearn.preprocessing.StandardScaler.
type StandardScaler struct {
	state *model.StateManager

	// Mean holds the per-column mean.
	Mean []float64

	// Scale holds the per-column standard deviation.
	Scale []float64

	// Columns holds the fitted column names, in input order.
	Columns []string

	// WithMean controls whether the mean is subtracted (default: true).
	WithMean bool

	// WithStd controls whether values are divided by the standard
	// deviation (default: true).
	WithStd bool
}

// NewStandardScaler creates a StandardScaler with explicit centering and
// scaling switches.
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault creates a StandardScaler with default settings.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit computes the per-column mean and standard deviation.
func (s *StandardScaler) Fit(X *dataframe.Frame) error {
	cols, names, err := numericColumns("StandardScaler.Fit", X)
	if err != nil {
		return err
	}

	s.Columns = names
	s.Mean = make([]float64, len(cols))
	s.Scale = make([]float64, len(cols))

	for j, values := range cols {
		if s.WithMean {
			s.Mean[j] = stat.Mean(values, nil)
		}
		if s.WithStd {
			sumSquares := 0.0
			for _, v := range values {
				diff := v - s.Mean[j]
				sumSquares += diff * diff
			}
			s.Scale[j] = math.Sqrt(sumSquares / float64(len(values)))
			// A near-zero deviation would blow up Transform; constant
			// columns pass through unscaled.
			if math.Abs(s.Scale[j]) < 1e-8 {
				s.Scale[j] = 1.0
			}
		} else {
			s.Scale[j] = 1.0
		}
	}

	s.state.SetDimensions(len(cols), X.NumRows())
	s.state.SetFitted()
	return nil
}

// Transform standardizes X using the fitted statistics.
func (s *StandardScaler) Transform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	cols, names, err := numericColumns("StandardScaler.Transform", X)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(s.Columns) {
		return nil, errors.NewDimensionError(
			"StandardScaler.Transform", len(s.Columns), len(cols), 1)
	}

	out := make([][]float64, len(cols))
	for j, values := range cols {
		scaled := make([]float64, len(values))
		for i, v := range values {
			scaled[i] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[j] = scaled
	}
	return floatFrame(names, out)
}

// FitTransform fits on X and transforms it.
func (s *StandardScaler) FitTransform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original scale.
func (s *StandardScaler) InverseTransform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}
	cols, names, err := numericColumns("StandardScaler.InverseTransform", X)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(s.Columns) {
		return nil, errors.NewDimensionError(
			"StandardScaler.InverseTransform", len(s.Columns), len(cols), 1)
	}

	out := make([][]float64, len(cols))
	for j, values := range cols {
		original := make([]float64, len(values))
		for i, v := range values {
			original[i] = v*s.Scale[j] + s.Mean[j]
		}
		out[j] = original
	}
	return floatFrame(names, out)
}

// FeatureNamesOut returns the input names unchanged.
func (s *StandardScaler) FeatureNamesOut(input []string) ([]string, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "FeatureNamesOut")
	}
	return identityNamesOut("StandardScaler.FeatureNamesOut", s.Columns, input)
}

// GetParams returns the scaler parameters.
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// String returns a readable representation of the scaler.
func (s *StandardScaler) String() string {
	if !s.state.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, len(s.Columns))
}

// MinMaxScaler scales numeric columns into a fixed range (default [0, 1]),
// matching sklearn.preprocessing.MinMaxScaler.
type MinMaxScaler struct {
	state *model.StateManager

	// DataMin holds the per-column minimum seen during fit.
	DataMin []float64

	// DataMax holds the per-column maximum seen during fit.
	DataMax []float64

	// Scale holds the per-column data range (max - min).
	Scale []float64

	// Columns holds the fitted column names, in input order.
	Columns []string

	// FeatureRange is the target range [min, max] after scaling.
	FeatureRange [2]float64
}

// NewMinMaxScaler creates a MinMaxScaler with the given target range.
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{
		state:        model.NewStateManager(),
		FeatureRange: featureRange,
	}
}

// NewMinMaxScalerDefault creates a MinMaxScaler targeting [0, 1].
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0.0, 1.0})
}

// Fit computes the per-column minimum and maximum.
func (m *MinMaxScaler) Fit(X *dataframe.Frame) error {
	cols, names, err := numericColumns("MinMaxScaler.Fit", X)
	if err != nil {
		return err
	}

	m.Columns = names
	m.DataMin = make([]float64, len(cols))
	m.DataMax = make([]float64, len(cols))
	m.Scale = make([]float64, len(cols))

	for j, values := range cols {
		minVal, maxVal := values[0], values[0]
		for _, v := range values[1:] {
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
		m.DataMin[j] = minVal
		m.DataMax[j] = maxVal

		dataRange := maxVal - minVal
		if math.Abs(dataRange) < 1e-8 {
			// Constant column: keep scale 1 to avoid division by zero.
			m.Scale[j] = 1.0
		} else {
			m.Scale[j] = dataRange
		}
	}

	m.state.SetDimensions(len(cols), X.NumRows())
	m.state.SetFitted()
	return nil
}

// Transform scales X into the target range using the fitted statistics.
func (m *MinMaxScaler) Transform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "Transform")
	}
	cols, names, err := numericColumns("MinMaxScaler.Transform", X)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(m.Columns) {
		return nil, errors.NewDimensionError(
			"MinMaxScaler.Transform", len(m.Columns), len(cols), 1)
	}

	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	out := make([][]float64, len(cols))
	for j, values := range cols {
		scaled := make([]float64, len(values))
		for i, v := range values {
			// X_scaled = (X - data_min) / (data_max - data_min) * range + min
			scaled[i] = (v-m.DataMin[j])/m.Scale[j]*featureRange + m.FeatureRange[0]
		}
		out[j] = scaled
	}
	return floatFrame(names, out)
}

// FitTransform fits on X and transforms it.
func (m *MinMaxScaler) FitTransform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform maps scaled data back to the original range.
func (m *MinMaxScaler) InverseTransform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "InverseTransform")
	}
	cols, names, err := numericColumns("MinMaxScaler.InverseTransform", X)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(m.Columns) {
		return nil, errors.NewDimensionError(
			"MinMaxScaler.InverseTransform", len(m.Columns), len(cols), 1)
	}

	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	out := make([][]float64, len(cols))
	for j, values := range cols {
		original := make([]float64, len(values))
		for i, v := range values {
			original[i] = (v-m.FeatureRange[0])/featureRange*m.Scale[j] + m.DataMin[j]
		}
		out[j] = original
	}
	return floatFrame(names, out)
}

// FeatureNamesOut returns the input names unchanged.
func (m *MinMaxScaler) FeatureNamesOut(input []string) ([]string, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "FeatureNamesOut")
	}
	return identityNamesOut("MinMaxScaler.FeatureNamesOut", m.Columns, input)
}

// GetParams returns the scaler parameters.
func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"feature_range": m.FeatureRange,
	}
}

// String returns a readable representation of the scaler.
func (m *MinMaxScaler) String() string {
	if !m.state.IsFitted() {
		return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f])",
			m.FeatureRange[0], m.FeatureRange[1])
	}
	return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f], n_features=%d)",
		m.FeatureRange[0], m.FeatureRange[1], len(m.Columns))
}

// MaxAbsScaler scales numeric columns by their maximum absolute value,
// matching sklearn.preprocessing.MaxAbsScaler. Sparsity-friendly: zero
// stays zero.
type MaxAbsScaler struct {
	state *model.StateManager

	// MaxAbs holds the per-column maximum absolute value.
	MaxAbs []float64

	// Columns holds the fitted column names, in input order.
	Columns []string
}

// NewMaxAbsScaler creates a MaxAbsScaler.
func NewMaxAbsScaler() *MaxAbsScaler {
	return &MaxAbsScaler{state: model.NewStateManager()}
}

// Fit computes the per-column maximum absolute value.
func (m *MaxAbsScaler) Fit(X *dataframe.Frame) error {
	cols, names, err := numericColumns("MaxAbsScaler.Fit", X)
	if err != nil {
		return err
	}

	m.Columns = names
	m.MaxAbs = make([]float64, len(cols))
	for j, values := range cols {
		maxAbs := 0.0
		for _, v := range values {
			if abs := math.Abs(v); abs > maxAbs {
				maxAbs = abs
			}
		}
		if maxAbs < 1e-8 {
			maxAbs = 1.0
		}
		m.MaxAbs[j] = maxAbs
	}

	m.state.SetDimensions(len(cols), X.NumRows())
	m.state.SetFitted()
	return nil
}

// Transform scales X by the fitted maximum absolute values.
func (m *MaxAbsScaler) Transform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("MaxAbsScaler", "Transform")
	}
	cols, names, err := numericColumns("MaxAbsScaler.Transform", X)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(m.Columns) {
		return nil, errors.NewDimensionError(
			"MaxAbsScaler.Transform", len(m.Columns), len(cols), 1)
	}

	out := make([][]float64, len(cols))
	for j, values := range cols {
		scaled := make([]float64, len(values))
		for i, v := range values {
			scaled[i] = v / m.MaxAbs[j]
		}
		out[j] = scaled
	}
	return floatFrame(names, out)
}

// FitTransform fits on X and transforms it.
func (m *MaxAbsScaler) FitTransform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// FeatureNamesOut returns the input names unchanged.
func (m *MaxAbsScaler) FeatureNamesOut(input []string) ([]string, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("MaxAbsScaler", "FeatureNamesOut")
	}
	return identityNamesOut("MaxAbsScaler.FeatureNamesOut", m.Columns, input)
}

// GetParams returns the scaler parameters.
func (m *MaxAbsScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{}
}

// RobustScaler centers by the median and scales by the interquartile range,
// matching sklearn.preprocessing.RobustScaler. Robust to outliers.
type RobustScaler struct {
	state *model.StateManager

	// Center holds the per-column median.
	Center []float64

	// Scale holds the per-column quantile range.
	Scale []float64

	// Columns holds the fitted column names, in input order.
	Columns []string

	// WithCentering controls whether the median is subtracted.
	WithCentering bool

	// WithScaling controls division by the quantile range.
	WithScaling bool

	// QuantileRange is the (low, high) quantile pair in percent,
	// default (25, 75).
	QuantileRange [2]float64
}

// NewRobustScaler creates a RobustScaler with explicit switches and
// quantile range.
func NewRobustScaler(withCentering, withScaling bool, quantileRange [2]float64) *RobustScaler {
	return &RobustScaler{
		state:         model.NewStateManager(),
		WithCentering: withCentering,
		WithScaling:   withScaling,
		QuantileRange: quantileRange,
	}
}

// NewRobustScalerDefault creates a RobustScaler with the IQR (25, 75).
func NewRobustScalerDefault() *RobustScaler {
	return NewRobustScaler(true, true, [2]float64{25.0, 75.0})
}

// Fit computes the per-column median and quantile range.
func (r *RobustScaler) Fit(X *dataframe.Frame) error {
	cols, names, err := numericColumns("RobustScaler.Fit", X)
	if err != nil {
		return err
	}
	if r.QuantileRange[0] < 0 || r.QuantileRange[1] > 100 ||
		r.QuantileRange[0] >= r.QuantileRange[1] {
		return errors.NewValidationError(
			"quantile_range", "must satisfy 0 <= low < high <= 100", r.QuantileRange)
	}

	r.Columns = names
	r.Center = make([]float64, len(cols))
	r.Scale = make([]float64, len(cols))

	for j, values := range cols {
		sorted := make([]float64, len(values))
		copy(sorted, values)
		sort.Float64s(sorted)

		if r.WithCentering {
			r.Center[j] = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		}
		if r.WithScaling {
			low := stat.Quantile(r.QuantileRange[0]/100.0, stat.Empirical, sorted, nil)
			high := stat.Quantile(r.QuantileRange[1]/100.0, stat.Empirical, sorted, nil)
			r.Scale[j] = high - low
			if math.Abs(r.Scale[j]) < 1e-8 {
				r.Scale[j] = 1.0
			}
		} else {
			r.Scale[j] = 1.0
		}
	}

	r.state.SetDimensions(len(cols), X.NumRows())
	r.state.SetFitted()
	return nil
}

// Transform centers and scales X using the fitted statistics.
func (r *RobustScaler) Transform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if !r.state.IsFitted() {
		return nil, errors.NewNotFittedError("RobustScaler", "Transform")
	}
	cols, names, err := numericColumns("RobustScaler.Transform", X)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(r.Columns) {
		return nil, errors.NewDimensionError(
			"RobustScaler.Transform", len(r.Columns), len(cols), 1)
	}

	out := make([][]float64, len(cols))
	for j, values := range cols {
		scaled := make([]float64, len(values))
		for i, v := range values {
			scaled[i] = (v - r.Center[j]) / r.Scale[j]
		}
		out[j] = scaled
	}
	return floatFrame(names, out)
}

// FitTransform fits on X and transforms it.
func (r *RobustScaler) FitTransform(X *dataframe.Frame) (*dataframe.Frame, error) {
	if err := r.Fit(X); err != nil {
		return nil, err
	}
	return r.Transform(X)
}

// FeatureNamesOut returns the input names unchanged.
func (r *RobustScaler) FeatureNamesOut(input []string) ([]string, error) {
	if !r.state.IsFitted() {
		return nil, errors.NewNotFittedError("RobustScaler", "FeatureNamesOut")
	}
	return identityNamesOut("RobustScaler.FeatureNamesOut", r.Columns, input)
}

// GetParams returns the scaler parameters.
func (r *RobustScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_centering": r.WithCentering,
		"with_scaling":   r.WithScaling,
		"quantile_range": r.QuantileRange,
	}
}
