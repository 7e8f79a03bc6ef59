package compose

import (
	"github.com/nikronic/niklib/core/model"
	"github.com/nikronic/niklib/pkg/errors"
	"github.com/nikronic/niklib/preprocessing"
)

// Params carries constructor parameters computed by the pipeline resolver,
// e.g. the shared category union for a grouped one-hot directive under the
// "categories" key.
type Params map[string]interface{}

// Constructor builds a transformer instance from computed parameters.
type Constructor func(params Params) (model.Transformer, error)

type registryEntry struct {
	build    Constructor
	accepted map[string]struct{}
}

// Registry maps transformer names to constructors and their accepted
// parameters. It is passed into ColumnTransformerConfig explicitly so tests
// can register fakes; DefaultRegistry wires the preprocessing package.
//
// Every configuration directive key must end with a name present in the
// registry, e.g. "age_StandardScaler" requires "StandardScaler".
type Registry struct {
	names   []string
	entries map[string]registryEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register adds a transformer under name. accepted lists the parameter
// names its constructor understands; injecting any other parameter fails
// Construct. Registering an existing name replaces it.
func (r *Registry) Register(name string, accepted []string, build Constructor) {
	if _, ok := r.entries[name]; !ok {
		r.names = append(r.names, name)
	}
	set := make(map[string]struct{}, len(accepted))
	for _, p := range accepted {
		set[p] = struct{}{}
	}
	r.entries[name] = registryEntry{build: build, accepted: set}
}

// Names returns the registered transformer names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Has reports whether a transformer name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// HasParam reports whether the named transformer's constructor accepts the
// given parameter. False for unknown transformers.
func (r *Registry) HasParam(name, param string) bool {
	entry, ok := r.entries[name]
	if !ok {
		return false
	}
	_, ok = entry.accepted[param]
	return ok
}

// Construct builds a transformer instance with the given parameters. Fails
// with a ConfigurationError on an unknown name or an unaccepted parameter.
func (r *Registry) Construct(name string, params Params) (model.Transformer, error) {
	entry, ok := r.entries[name]
	if !ok {
		return nil, errors.NewConfigurationError(
			"Registry.Construct", name, "unknown transformer name")
	}
	for param := range params {
		if _, ok := entry.accepted[param]; !ok {
			return nil, errors.NewConfigurationError(
				"Registry.Construct", name,
				"parameter "+param+" does not exist in the constructor signature")
		}
	}
	return entry.build(params)
}

// categoriesFromParams decodes the "categories" parameter computed by
// ColumnTransformerConfig.CalculateParams. Absent means nil (the encoder
// learns categories itself).
func categoriesFromParams(params Params) ([][]string, error) {
	raw, ok := params["categories"]
	if !ok {
		return nil, nil
	}
	categories, ok := raw.([][]string)
	if !ok {
		return nil, errors.NewValidationError(
			"categories", "must be a [][]string", raw)
	}
	return categories, nil
}

// handleUnknownFromParams decodes the optional "handle_unknown" parameter.
func handleUnknownFromParams(params Params, fallback string) (string, error) {
	raw, ok := params["handle_unknown"]
	if !ok {
		return fallback, nil
	}
	policy, ok := raw.(string)
	if !ok {
		return "", errors.NewValidationError(
			"handle_unknown", "must be a string", raw)
	}
	return policy, nil
}

// DefaultRegistry returns a registry wired with every transformer the
// preprocessing package provides, under the names the original TRANSFORMS
// table used.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("OneHotEncoder", []string{"categories", "handle_unknown"},
		func(params Params) (model.Transformer, error) {
			categories, err := categoriesFromParams(params)
			if err != nil {
				return nil, err
			}
			policy, err := handleUnknownFromParams(params, preprocessing.HandleUnknownError)
			if err != nil {
				return nil, err
			}
			return preprocessing.NewOneHotEncoder(categories, policy), nil
		})

	r.Register("OrdinalEncoder", []string{"categories", "handle_unknown"},
		func(params Params) (model.Transformer, error) {
			categories, err := categoriesFromParams(params)
			if err != nil {
				return nil, err
			}
			policy, err := handleUnknownFromParams(params, preprocessing.HandleUnknownError)
			if err != nil {
				return nil, err
			}
			return preprocessing.NewOrdinalEncoder(categories, policy), nil
		})

	r.Register("StandardScaler", []string{"with_mean", "with_std"},
		func(params Params) (model.Transformer, error) {
			withMean, err := boolFromParams(params, "with_mean", true)
			if err != nil {
				return nil, err
			}
			withStd, err := boolFromParams(params, "with_std", true)
			if err != nil {
				return nil, err
			}
			return preprocessing.NewStandardScaler(withMean, withStd), nil
		})

	r.Register("MinMaxScaler", []string{"feature_range"},
		func(params Params) (model.Transformer, error) {
			raw, ok := params["feature_range"]
			if !ok {
				return preprocessing.NewMinMaxScalerDefault(), nil
			}
			featureRange, ok := raw.([2]float64)
			if !ok {
				return nil, errors.NewValidationError(
					"feature_range", "must be a [2]float64", raw)
			}
			return preprocessing.NewMinMaxScaler(featureRange), nil
		})

	r.Register("MaxAbsScaler", nil,
		func(params Params) (model.Transformer, error) {
			return preprocessing.NewMaxAbsScaler(), nil
		})

	r.Register("RobustScaler", []string{"with_centering", "with_scaling", "quantile_range"},
		func(params Params) (model.Transformer, error) {
			withCentering, err := boolFromParams(params, "with_centering", true)
			if err != nil {
				return nil, err
			}
			withScaling, err := boolFromParams(params, "with_scaling", true)
			if err != nil {
				return nil, err
			}
			quantileRange := [2]float64{25.0, 75.0}
			if raw, ok := params["quantile_range"]; ok {
				qr, ok := raw.([2]float64)
				if !ok {
					return nil, errors.NewValidationError(
						"quantile_range", "must be a [2]float64", raw)
				}
				quantileRange = qr
			}
			return preprocessing.NewRobustScaler(withCentering, withScaling, quantileRange), nil
		})

	return r
}

func boolFromParams(params Params, key string, fallback bool) (bool, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	value, ok := raw.(bool)
	if !ok {
		return false, errors.NewValidationError(key, "must be a bool", raw)
	}
	return value, nil
}
