// Package log defines standard attribute keys for preprocessing operations.
//
// Using these keys consistently keeps log records analyzable across the
// selector, resolver, executor and splitter components.

package log

// Component and operation context.
const (
	// ComponentKey identifies the component emitting the record.
	// Examples: "ColumnTransformerConfig", "ColumnTransformer", "FrameTrainTestSplit"
	ComponentKey = "ml.component"

	// OperationKey names the operation being performed.
	// Standard values: "fit", "transform", "fit_transform", "generate_pipeline", "split"
	OperationKey = "ml.operation"
)

// Configuration context.
const (
	// ConfigPathKey is the path of the configuration file in use.
	ConfigPathKey = "config.path"

	// DirectiveKey is the name of a single configuration directive.
	DirectiveKey = "config.directive"

	// TransformerNameKey is the registry name of a transformer.
	TransformerNameKey = "transformer.name"

	// TransformersKey is the number of resolved transformers.
	TransformersKey = "transformer.count"
)

// Data shape context.
const (
	// SamplesKey is the number of rows processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of input columns processed.
	FeaturesKey = "data.features"

	// ColumnsKey is a list of column names or positions.
	ColumnsKey = "data.columns"

	// OutputFeaturesKey is the number of generated output columns.
	OutputFeaturesKey = "data.output_features"

	// CategoriesKey is the number of distinct categories observed.
	CategoriesKey = "data.categories"
)

// Standard operation values.
const (
	OperationFit              = "fit"
	OperationTransform        = "transform"
	OperationFitTransform     = "fit_transform"
	OperationGeneratePipeline = "generate_pipeline"
	OperationSplit            = "split"
)
