// Package split partitions datasets into train/test/eval subsets driven by
// JSON configuration files, so split ratios and seeds live next to the
// transform configuration and can be archived with a run.
package split

import (
	"encoding/json"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/nikronic/niklib/dataframe"
	"github.com/nikronic/niklib/pkg/errors"
	"github.com/nikronic/niklib/pkg/log"
)

// MoveTargetToEnd reorders df so the target column comes last, the layout
// the splitters expect when separating features from labels.
func MoveTargetToEnd(df *dataframe.Frame, target string) (*dataframe.Frame, error) {
	if df == nil {
		return nil, errors.NewValidationError(
			"df", "must be a *dataframe.Frame, not nil", nil)
	}
	if !df.Has(target) {
		return nil, errors.NewValidationError(
			"target", "column not present in frame", target)
	}
	names := make([]string, 0, df.NumCols())
	for _, name := range df.Columns() {
		if name != target {
			names = append(names, name)
		}
	}
	names = append(names, target)
	return df.Select(names...)
}

// splitRows produces the row order to draw subsets from: a seeded shuffle,
// or the identity order when shuffle is off.
func splitRows(n int, shuffle bool, randomState int64) []int {
	if shuffle {
		return rand.New(rand.NewSource(randomState)).Perm(n)
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// loadConfig unmarshals a JSON configuration file into dst.
func loadConfig(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading configuration file %s", path)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Wrapf(err, "decoding configuration file %s", path)
	}
	return nil
}

// copyArtifact copies a loaded configuration file into targetDir byte for
// byte and returns the path of the copy.
func copyArtifact(confPath, targetDir string) (string, error) {
	if confPath == "" {
		return "", errors.NewConfigurationError(
			"AsArtifact", "",
			"configs have not been set yet, use SetConfigs to set them")
	}
	data, err := os.ReadFile(confPath)
	if err != nil {
		return "", errors.Wrapf(err, "reading configuration file %s", confPath)
	}
	target := filepath.Join(targetDir, filepath.Base(confPath))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing configuration artifact %s", target)
	}
	return target, nil
}

// TrainTestEvalConfig drives TrainTestEvalSplit. Ratios are fractions of
// the full dataset; EvalRatio zero disables the eval subset. Stratified
// splitting is declared in the schema but not implemented; a non-null
// stratify column fails Split.
type TrainTestEvalConfig struct {
	TestRatio   float64     `json:"test_ratio"`
	EvalRatio   float64     `json:"eval_ratio"`
	Shuffle     bool        `json:"shuffle"`
	Stratify    interface{} `json:"stratify"`
	RandomState int64       `json:"random_state"`
}

// TrainTestEvalResult holds matrix feature subsets and label vectors. XEval
// and YEval are nil when the configuration's eval ratio is zero.
type TrainTestEvalResult struct {
	XTrain, XTest, XEval *mat.Dense
	YTrain, YTest, YEval []float64
}

// TrainTestEvalSplit splits a frame into train/test/eval feature matrices
// and label vectors, separating the target column from the features. The
// configuration comes from a JSON file so it can be archived via
// AsArtifact.
type TrainTestEvalSplit struct {
	logger   log.Logger
	config   TrainTestEvalConfig
	confPath string
}

// NewTrainTestEvalSplit creates a splitter. A nil provider logs through a
// default zerolog provider.
func NewTrainTestEvalSplit(provider log.LoggerProvider) *TrainTestEvalSplit {
	if provider == nil {
		provider = log.NewZerologProvider(log.LevelInfo)
	}
	return &TrainTestEvalSplit{
		logger: provider.GetLoggerWithName("TrainTestEvalSplit"),
	}
}

// SetConfigs loads the split configuration from a JSON file.
func (s *TrainTestEvalSplit) SetConfigs(path string) error {
	var config TrainTestEvalConfig
	if err := loadConfig(path, &config); err != nil {
		return err
	}
	if config.TestRatio < 0 || config.EvalRatio < 0 || config.TestRatio+config.EvalRatio >= 1 {
		return errors.NewConfigurationError(
			"SetConfigs", path, "test_ratio and eval_ratio must be non-negative and sum below 1")
	}
	s.config = config
	s.confPath = path
	s.logger.Info("configuration file loaded", log.ConfigPathKey, path)
	return nil
}

// Config returns the loaded configuration.
func (s *TrainTestEvalSplit) Config() TrainTestEvalConfig { return s.config }

// AsArtifact copies the loaded configuration file into targetDir.
func (s *TrainTestEvalSplit) AsArtifact(targetDir string) (string, error) {
	return copyArtifact(s.confPath, targetDir)
}

// Split partitions df into feature matrices and label vectors. The target
// column becomes y; every other column must be numeric. Subset sizes follow
// the ratios, test and eval rounded up.
func (s *TrainTestEvalSplit) Split(df *dataframe.Frame, target string) (*TrainTestEvalResult, error) {
	if s.confPath == "" {
		return nil, errors.NewConfigurationError(
			"Split", "", "configs have not been set yet, use SetConfigs to set them")
	}
	if s.config.Stratify != nil {
		return nil, errors.Wrap(errors.ErrNotImplemented, "stratified splitting")
	}

	ordered, err := MoveTargetToEnd(df, target)
	if err != nil {
		return nil, err
	}
	features, err := ordered.Drop(target)
	if err != nil {
		return nil, err
	}
	X, err := features.Matrix()
	if err != nil {
		return nil, err
	}
	targetCol, err := ordered.Column(target)
	if err != nil {
		return nil, err
	}
	y, err := targetCol.Floats()
	if err != nil {
		return nil, err
	}

	n := df.NumRows()
	nTest := int(math.Ceil(s.config.TestRatio * float64(n)))
	nEval := int(math.Ceil(s.config.EvalRatio * float64(n)))
	nTrain := n - nTest - nEval
	if nTrain <= 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "TrainTestEvalSplit.Split: empty train subset")
	}

	rows := splitRows(n, s.config.Shuffle, s.config.RandomState)
	result := &TrainTestEvalResult{
		XTrain: takeMatrixRows(X, rows[:nTrain]),
		YTrain: takeVectorRows(y, rows[:nTrain]),
		XTest:  takeMatrixRows(X, rows[nTrain:nTrain+nTest]),
		YTest:  takeVectorRows(y, rows[nTrain:nTrain+nTest]),
	}
	if nEval > 0 {
		result.XEval = takeMatrixRows(X, rows[nTrain+nTest:])
		result.YEval = takeVectorRows(y, rows[nTrain+nTest:])
	}

	s.logger.Info("dataset split",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, n,
		"split.train", nTrain,
		"split.test", nTest,
		"split.eval", nEval)
	return result, nil
}

func takeMatrixRows(X *mat.Dense, rows []int) *mat.Dense {
	_, cols := X.Dims()
	out := mat.NewDense(len(rows), cols, nil)
	for i, r := range rows {
		out.SetRow(i, X.RawRowView(r))
	}
	return out
}

func takeVectorRows(y []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = y[r]
	}
	return out
}

// FrameTrainTestConfig drives FrameTrainTestSplit. TrainRatio is the
// fraction of rows kept for training, rounded down.
type FrameTrainTestConfig struct {
	TrainRatio  float64     `json:"train_ratio"`
	Shuffle     bool        `json:"shuffle"`
	Stratify    interface{} `json:"stratify"`
	RandomState int64       `json:"random_state"`
}

// FrameTrainTestSplit splits a frame into train and test frames, keeping
// the target column inside each frame (moved to the last position). Used
// when downstream steps, e.g. the transform pipeline, still need named
// columns rather than matrices.
type FrameTrainTestSplit struct {
	logger   log.Logger
	config   FrameTrainTestConfig
	confPath string
}

// NewFrameTrainTestSplit creates a splitter. A nil provider logs through a
// default zerolog provider.
func NewFrameTrainTestSplit(provider log.LoggerProvider) *FrameTrainTestSplit {
	if provider == nil {
		provider = log.NewZerologProvider(log.LevelInfo)
	}
	return &FrameTrainTestSplit{
		logger: provider.GetLoggerWithName("FrameTrainTestSplit"),
	}
}

// SetConfigs loads the split configuration from a JSON file.
func (s *FrameTrainTestSplit) SetConfigs(path string) error {
	var config FrameTrainTestConfig
	if err := loadConfig(path, &config); err != nil {
		return err
	}
	if config.TrainRatio <= 0 || config.TrainRatio >= 1 {
		return errors.NewConfigurationError(
			"SetConfigs", path, "train_ratio must be in (0, 1)")
	}
	s.config = config
	s.confPath = path
	s.logger.Info("configuration file loaded", log.ConfigPathKey, path)
	return nil
}

// Config returns the loaded configuration.
func (s *FrameTrainTestSplit) Config() FrameTrainTestConfig { return s.config }

// AsArtifact copies the loaded configuration file into targetDir.
func (s *FrameTrainTestSplit) AsArtifact(targetDir string) (string, error) {
	return copyArtifact(s.confPath, targetDir)
}

// Split partitions df into train and test frames with the target column
// moved to the end of each.
func (s *FrameTrainTestSplit) Split(df *dataframe.Frame, target string) (train, test *dataframe.Frame, err error) {
	if s.confPath == "" {
		return nil, nil, errors.NewConfigurationError(
			"Split", "", "configs have not been set yet, use SetConfigs to set them")
	}
	if s.config.Stratify != nil {
		return nil, nil, errors.Wrap(errors.ErrNotImplemented, "stratified splitting")
	}

	ordered, err := MoveTargetToEnd(df, target)
	if err != nil {
		return nil, nil, err
	}

	n := df.NumRows()
	nTrain := int(s.config.TrainRatio * float64(n))
	if nTrain == 0 || nTrain == n {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "FrameTrainTestSplit.Split: empty subset")
	}

	rows := splitRows(n, s.config.Shuffle, s.config.RandomState)
	train, err = ordered.Take(rows[:nTrain])
	if err != nil {
		return nil, nil, err
	}
	test, err = ordered.Take(rows[nTrain:])
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("dataset split",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, n,
		"split.train", nTrain,
		"split.test", n-nTrain)
	return train, test, nil
}
