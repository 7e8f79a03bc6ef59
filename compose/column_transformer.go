package compose

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/nikronic/niklib/core/model"
	"github.com/nikronic/niklib/dataframe"
	"github.com/nikronic/niklib/pkg/errors"
	"github.com/nikronic/niklib/pkg/log"
)

// Range is a half-open [Start, End) span of output matrix columns.
type Range struct {
	Start int
	End   int
}

// ColumnTransformer executes resolved pipeline steps over column subsets of
// a frame and concatenates their outputs into one dense matrix, mirroring
// sklearn.compose.ColumnTransformer. Steps run in pipeline order and each
// sees only its own resolved columns; output columns appear in the same
// order.
type ColumnTransformer struct {
	state  *model.StateManager
	logger log.Logger

	steps []ResolvedTransform

	// featureNames caches the per-step output names computed during Fit;
	// widths derive from them.
	featureNames [][]string
}

// NewColumnTransformer creates an executor over the given steps, typically
// the result of ColumnTransformerConfig.GeneratePipeline. A nil provider
// logs through a default zerolog provider.
func NewColumnTransformer(steps []ResolvedTransform, provider log.LoggerProvider) *ColumnTransformer {
	if provider == nil {
		provider = log.NewZerologProvider(log.LevelInfo)
	}
	return &ColumnTransformer{
		state:  model.NewStateManager(),
		logger: provider.GetLoggerWithName("ColumnTransformer"),
		steps:  steps,
	}
}

// Transformers returns the executed steps in pipeline order.
func (ct *ColumnTransformer) Transformers() []ResolvedTransform {
	out := make([]ResolvedTransform, len(ct.steps))
	copy(out, ct.steps)
	return out
}

// stepInput selects the columns of one step out of df.
func stepInput(df *dataframe.Frame, step ResolvedTransform) (*dataframe.Frame, error) {
	sub, err := df.Select(step.Columns.Names...)
	if err != nil {
		return nil, errors.Wrapf(err, "step %s", step.Name)
	}
	return sub, nil
}

// Fit fits every step on its resolved columns of df.
func (ct *ColumnTransformer) Fit(df *dataframe.Frame) error {
	if df == nil {
		return errors.NewValidationError(
			"df", "must be a *dataframe.Frame, not nil", nil)
	}
	if len(ct.steps) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "ColumnTransformer.Fit: no steps")
	}

	ct.featureNames = make([][]string, len(ct.steps))
	for i, step := range ct.steps {
		sub, err := stepInput(df, step)
		if err != nil {
			return err
		}
		if err := step.Transformer.Fit(sub); err != nil {
			return errors.Wrapf(err, "fitting step %s", step.Name)
		}
		names, err := step.Transformer.FeatureNamesOut(step.Columns.Labels())
		if err != nil {
			return errors.Wrapf(err, "step %s", step.Name)
		}
		ct.featureNames[i] = names
	}

	ct.state.SetDimensions(df.NumCols(), df.NumRows())
	ct.state.SetFitted()
	ct.logger.Info("column transformer fitted",
		log.OperationKey, log.OperationFit,
		log.TransformersKey, len(ct.steps),
		log.SamplesKey, df.NumRows())
	return nil
}

// Transform runs every fitted step on df and concatenates the outputs
// column-wise into one dense matrix. Every step output must be numeric;
// encoders guarantee that by construction.
func (ct *ColumnTransformer) Transform(df *dataframe.Frame) (*mat.Dense, error) {
	if !ct.state.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "Transform")
	}
	if df == nil {
		return nil, errors.NewValidationError(
			"df", "must be a *dataframe.Frame, not nil", nil)
	}

	rows := df.NumRows()
	blocks := make([]*mat.Dense, len(ct.steps))
	totalCols := 0
	for i, step := range ct.steps {
		sub, err := stepInput(df, step)
		if err != nil {
			return nil, err
		}
		out, err := step.Transformer.Transform(sub)
		if err != nil {
			return nil, errors.Wrapf(err, "transforming step %s", step.Name)
		}
		block, err := out.Matrix()
		if err != nil {
			return nil, errors.Wrapf(err, "step %s", step.Name)
		}
		r, c := block.Dims()
		if r != rows {
			return nil, errors.NewDimensionError(
				fmt.Sprintf("ColumnTransformer.Transform: step %s", step.Name),
				rows, r, 0)
		}
		blocks[i] = block
		totalCols += c
	}

	result := mat.NewDense(rows, totalCols, nil)
	offset := 0
	for _, block := range blocks {
		_, c := block.Dims()
		for j := 0; j < c; j++ {
			result.SetCol(offset+j, mat.Col(nil, j, block))
		}
		offset += c
	}

	ct.logger.Info("column transformer applied",
		log.OperationKey, log.OperationTransform,
		log.SamplesKey, rows,
		log.OutputFeaturesKey, totalCols)
	return result, nil
}

// FitTransform fits every step on df and transforms it.
func (ct *ColumnTransformer) FitTransform(df *dataframe.Frame) (*mat.Dense, error) {
	if err := ct.Fit(df); err != nil {
		return nil, err
	}
	return ct.Transform(df)
}

// FeatureNamesOut returns the output feature names of the fitted pipeline,
// concatenated in step order. Names derive from each step's input labels,
// so index-typed steps produce opaque "x<pos>"-based names.
func (ct *ColumnTransformer) FeatureNamesOut() ([]string, error) {
	if !ct.state.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "FeatureNamesOut")
	}
	var out []string
	for _, names := range ct.featureNames {
		out = append(out, names...)
	}
	return out, nil
}

// OutputIndices returns, per step name, the span of output matrix columns
// the step produced.
func (ct *ColumnTransformer) OutputIndices() (map[string]Range, error) {
	if !ct.state.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "OutputIndices")
	}
	spans := make(map[string]Range, len(ct.steps))
	offset := 0
	for i, step := range ct.steps {
		width := len(ct.featureNames[i])
		spans[step.Name] = Range{Start: offset, End: offset + width}
		offset += width
	}
	return spans, nil
}
