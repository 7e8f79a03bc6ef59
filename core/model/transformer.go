package model

import (
	"github.com/nikronic/niklib/dataframe"
)

// Transformer is the fit/transform contract every preprocessing capability
// satisfies. Transformers consume a column subset as a frame and emit a
// frame of numeric columns; width may change (e.g. one-hot expansion).
type Transformer interface {
	// Fit learns the parameters needed for the transformation.
	Fit(X *dataframe.Frame) error

	// Transform applies the learned transformation.
	Transform(X *dataframe.Frame) (*dataframe.Frame, error)

	// FitTransform fits on X and transforms it in one call.
	FitTransform(X *dataframe.Frame) (*dataframe.Frame, error)

	// FeatureNamesOut derives output feature names from the given input
	// feature names. Input length must match the number of fitted columns.
	FeatureNamesOut(input []string) ([]string, error)
}

// ParamsGetter exposes the constructor parameters of a transformer.
type ParamsGetter interface {
	GetParams() map[string]interface{}
}
