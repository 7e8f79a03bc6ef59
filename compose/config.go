package compose

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikronic/niklib/core/model"
	"github.com/nikronic/niklib/dataframe"
	"github.com/nikronic/niklib/pkg/errors"
	"github.com/nikronic/niklib/pkg/log"
)

// Directive is one resolved configuration entry: a unique key whose final
// underscore-delimited token names the transformer, a column selector built
// from the entry's fields, and the two reserved flags.
type Directive struct {
	// Key is the configuration key, e.g. "age_StandardScaler". Keys are
	// unique per file and become the transform names in the pipeline.
	Key string

	// Transform is the registry name extracted from the key suffix.
	Transform string

	// Selector resolves the columns this directive applies to.
	Selector ColumnSelector

	// Group shares one parameter set across all selected columns, e.g. the
	// category union for a grouped one-hot encoding.
	Group bool

	// UseGlobal computes parameters on the full dataset rather than the
	// frame being transformed, so e.g. categories absent from a split are
	// still encoded consistently.
	UseGlobal bool
}

// ResolvedTransform is one executable step of a generated pipeline.
type ResolvedTransform struct {
	// Name is the configuration key of the directive that produced it.
	Name string

	// Transformer is the constructed instance, ready to fit.
	Transformer model.Transformer

	// Columns are the resolved input columns of the step.
	Columns Columns
}

// ColumnTransformerConfig turns a JSON configuration file into a list of
// ResolvedTransform steps. Each top-level key of the file is a directive;
// the order of keys is the order of the resulting steps, so the file is
// decoded with an order-preserving reader rather than into a map.
//
// Configuration files look like:
//
//	{
//	  "sex_OneHotEncoder": {
//	    "columns_type": "'string'",
//	    "dtype_include": "category",
//	    "pattern_include": "'sex'",
//	    "dtype_exclude": "None",
//	    "pattern_exclude": "None",
//	    "group": "False",
//	    "use_global": "True"
//	  },
//	  ...
//	}
//
// Every field value is a primitive literal string; see parseLiteral.
type ColumnTransformerConfig struct {
	logger   log.Logger
	registry *Registry

	directives []Directive
	confPath   string
}

// Directive fields understood by SetConfigs, beside the two reserved flags.
var directiveFields = map[string]struct{}{
	"columns_type":    {},
	"dtype_include":   {},
	"dtype_exclude":   {},
	"pattern_include": {},
	"pattern_exclude": {},
}

// NewColumnTransformerConfig creates a resolver over the given registry.
// A nil registry falls back to DefaultRegistry; a nil provider logs through
// a default zerolog provider.
func NewColumnTransformerConfig(registry *Registry, provider log.LoggerProvider) *ColumnTransformerConfig {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if provider == nil {
		provider = log.NewZerologProvider(log.LevelInfo)
	}
	return &ColumnTransformerConfig{
		logger:   provider.GetLoggerWithName("ColumnTransformerConfig"),
		registry: registry,
	}
}

// SetConfigs loads and validates a configuration file, replacing any
// previously loaded directives. The parsed directives are returned in file
// order.
func (c *ColumnTransformerConfig) SetConfigs(path string) ([]Directive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening configuration file %s", path)
	}
	defer f.Close()

	// json.Unmarshal into a map would lose the key order, which decides
	// the order of the pipeline steps. Walk the tokens instead.
	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrapf(err, "decoding configuration file %s", path)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.NewConfigurationError(
			"SetConfigs", path, "top-level value must be a JSON object")
	}

	var directives []Directive
	seen := make(map[string]struct{})
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrapf(err, "decoding configuration file %s", path)
		}
		key := keyTok.(string)
		if _, dup := seen[key]; dup {
			return nil, errors.NewConfigurationError(
				"SetConfigs", key, "duplicate directive key")
		}
		seen[key] = struct{}{}

		var fields map[string]string
		if err := dec.Decode(&fields); err != nil {
			return nil, errors.Wrapf(err, "decoding directive %s", key)
		}
		d, err := parseDirective(key, fields)
		if err != nil {
			return nil, err
		}
		directives = append(directives, d)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrapf(err, "decoding configuration file %s", path)
	}

	c.directives = directives
	c.confPath = path
	c.logger.Info("configuration file loaded",
		log.ConfigPathKey, path,
		log.TransformersKey, len(directives))
	return directives, nil
}

// Directives returns the loaded directives in file order.
func (c *ColumnTransformerConfig) Directives() []Directive {
	out := make([]Directive, len(c.directives))
	copy(out, c.directives)
	return out
}

// ConfPath returns the path of the loaded configuration file, or "".
func (c *ColumnTransformerConfig) ConfPath() string { return c.confPath }

// parseDirective validates one configuration entry and builds its Directive.
func parseDirective(key string, fields map[string]string) (Directive, error) {
	name := transformNameOf(key)
	d := Directive{Key: key, Transform: name}

	for field, raw := range fields {
		value, err := parseLiteral(raw)
		if err != nil {
			return Directive{}, errors.Wrapf(err, "directive %s, field %s", key, field)
		}

		switch field {
		case "group":
			if d.Group, err = boolFromLiteral(field, value); err != nil {
				return Directive{}, errors.Wrapf(err, "directive %s", key)
			}
		case "use_global":
			if d.UseGlobal, err = boolFromLiteral(field, value); err != nil {
				return Directive{}, errors.Wrapf(err, "directive %s", key)
			}
		case "columns_type":
			s, err := stringFromLiteral(field, value)
			if err != nil {
				return Directive{}, errors.Wrapf(err, "directive %s", key)
			}
			if d.Selector.ColumnsType, err = ParseColumnsType(s); err != nil {
				return Directive{}, errors.Wrapf(err, "directive %s", key)
			}
		case "dtype_include":
			if d.Selector.DtypeInclude, err = dtypesFromLiteral(field, value); err != nil {
				return Directive{}, errors.Wrapf(err, "directive %s", key)
			}
		case "dtype_exclude":
			if d.Selector.DtypeExclude, err = dtypesFromLiteral(field, value); err != nil {
				return Directive{}, errors.Wrapf(err, "directive %s", key)
			}
		case "pattern_include":
			if d.Selector.PatternInclude, err = stringFromLiteral(field, value); err != nil {
				return Directive{}, errors.Wrapf(err, "directive %s", key)
			}
		case "pattern_exclude":
			if d.Selector.PatternExclude, err = stringFromLiteral(field, value); err != nil {
				return Directive{}, errors.Wrapf(err, "directive %s", key)
			}
		default:
			return Directive{}, errors.NewConfigurationError(
				"SetConfigs", key, "unknown directive field "+field)
		}
	}
	return d, nil
}

// transformNameOf extracts the transformer name from a directive key: the
// final underscore-delimited token, so "age_bins_StandardScaler" maps to
// "StandardScaler".
func transformNameOf(key string) string {
	parts := strings.Split(key, "_")
	return parts[len(parts)-1]
}

// CalculateParams computes data-dependent constructor parameters for one
// directive.
//
// Only one-hot encoding has a grouped parameterization: the union of the
// distinct values of every selected column (in first-seen order) becomes the
// shared category list of each column, so every column is encoded over the
// same vocabulary. Without group, a single selected column gets its own
// distinct values; multiple ungrouped columns get no precomputed parameters
// and the encoder learns per-column categories at fit time. Grouping any
// other transformer is not implemented.
func (c *ColumnTransformerConfig) CalculateParams(df *dataframe.Frame, columns Columns, group bool, transformName string) (Params, error) {
	if df == nil {
		return nil, errors.NewValidationError(
			"df", "must be a *dataframe.Frame, not nil", nil)
	}

	if transformName != "OneHotEncoder" {
		if group {
			return nil, errors.Wrapf(errors.ErrNotImplemented,
				"grouped parameter calculation for %s", transformName)
		}
		return Params{}, nil
	}

	if !group && columns.Len() != 1 {
		return Params{}, nil
	}

	var uniques []string
	if group {
		seen := make(map[string]struct{})
		for i := 0; i < columns.Len(); i++ {
			values, err := columnUniques(df, columns.Indices[i])
			if err != nil {
				return nil, err
			}
			for _, v := range values {
				if _, ok := seen[v]; ok {
					continue
				}
				seen[v] = struct{}{}
				uniques = append(uniques, v)
			}
		}
	} else {
		var err error
		if uniques, err = columnUniques(df, columns.Indices[0]); err != nil {
			return nil, err
		}
	}

	if !c.registry.HasParam(transformName, "categories") {
		return nil, errors.NewConfigurationError(
			"CalculateParams", transformName,
			"parameter categories does not exist in the constructor signature")
	}

	categories := make([][]string, columns.Len())
	for i := range categories {
		shared := make([]string, len(uniques))
		copy(shared, uniques)
		categories[i] = shared
	}
	return Params{"categories": categories}, nil
}

func columnUniques(df *dataframe.Frame, index int) ([]string, error) {
	col, err := df.ColumnAt(index)
	if err != nil {
		return nil, err
	}
	return col.Uniques()
}

// GeneratePipeline resolves every directive against df, in file order, into
// executable transform steps. dfAll is the full dataset used for directives
// flagged use_global; pass nil when no directive needs it.
//
// Overlapping column sets between steps are legal and reported through the
// warning hook and the logger rather than failing, since downstream
// consumers may intend e.g. scaling a column that was also binned.
func (c *ColumnTransformerConfig) GeneratePipeline(df, dfAll *dataframe.Frame) ([]ResolvedTransform, error) {
	if c.directives == nil {
		return nil, errors.NewConfigurationError(
			"GeneratePipeline", "",
			"configs have not been set yet, use SetConfigs to set them")
	}
	if df == nil {
		return nil, errors.NewValidationError(
			"df", "must be a *dataframe.Frame, not nil", nil)
	}

	transformers := make([]ResolvedTransform, 0, len(c.directives))
	for _, d := range c.directives {
		if !c.registry.Has(d.Transform) {
			return nil, errors.NewConfigurationError(
				"GeneratePipeline", d.Key,
				"key suffix "+d.Transform+" is not a registered transformer")
		}

		columns, err := d.Selector.Select(df)
		if err != nil {
			return nil, errors.Wrapf(err, "directive %s", d.Key)
		}

		scope := df
		if d.UseGlobal {
			if dfAll == nil {
				return nil, errors.NewValidationError(
					"df_all", "required when a directive sets use_global", nil)
			}
			scope = dfAll
		}

		params, err := c.CalculateParams(scope, columns, d.Group, d.Transform)
		if err != nil {
			return nil, errors.Wrapf(err, "directive %s", d.Key)
		}
		transformer, err := c.registry.Construct(d.Transform, params)
		if err != nil {
			return nil, errors.Wrapf(err, "directive %s", d.Key)
		}

		c.logger.Debug("directive resolved",
			log.DirectiveKey, d.Key,
			log.TransformerNameKey, d.Transform,
			log.ColumnsKey, columns.Labels())
		transformers = append(transformers, ResolvedTransform{
			Name:        d.Key,
			Transformer: transformer,
			Columns:     columns,
		})
	}

	for _, report := range AuditOverlaps(transformers) {
		errors.Warn(errors.NewOverlapWarning(report.NameA, report.NameB, report.Columns))
		c.logger.Info("transformers operate on overlapping columns",
			log.DirectiveKey, report.NameA+","+report.NameB,
			log.ColumnsKey, report.Columns)
	}

	c.logger.Info("pipeline generated",
		log.OperationKey, log.OperationGeneratePipeline,
		log.TransformersKey, len(transformers))
	return transformers, nil
}

// AsArtifact copies the loaded configuration file into targetDir byte for
// byte, so the exact configuration of a run can be archived alongside its
// outputs. Returns the path of the copy.
func (c *ColumnTransformerConfig) AsArtifact(targetDir string) (string, error) {
	if c.confPath == "" {
		return "", errors.NewConfigurationError(
			"AsArtifact", "",
			"configs have not been set yet, use SetConfigs to set them")
	}
	data, err := os.ReadFile(c.confPath)
	if err != nil {
		return "", errors.Wrapf(err, "reading configuration file %s", c.confPath)
	}
	target := filepath.Join(targetDir, filepath.Base(c.confPath))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing configuration artifact %s", target)
	}
	c.logger.Info("configuration archived as artifact", log.ConfigPathKey, target)
	return target, nil
}
