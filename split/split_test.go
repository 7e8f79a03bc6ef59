package split

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nikronic/niklib/dataframe"
	"github.com/nikronic/niklib/pkg/errors"
	"github.com/nikronic/niklib/pkg/log"
)

func splitFrame(t *testing.T) *dataframe.Frame {
	t.Helper()
	n := 10
	ids := make([]float64, n)
	labels := make([]float64, n)
	for i := range ids {
		ids[i] = float64(i)
		labels[i] = float64(i % 2)
	}
	f, err := dataframe.New(
		dataframe.NewFloatSeries("label", labels),
		dataframe.NewFloatSeries("id", ids),
	)
	if err != nil {
		t.Fatalf("building frame: %v", err)
	}
	return f
}

func writeSplitConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "split.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestMoveTargetToEnd(t *testing.T) {
	df := splitFrame(t)
	moved, err := MoveTargetToEnd(df, "label")
	if err != nil {
		t.Fatalf("MoveTargetToEnd failed: %v", err)
	}
	if got := moved.Columns(); !reflect.DeepEqual(got, []string{"id", "label"}) {
		t.Errorf("columns = %v, want target last", got)
	}

	if _, err := MoveTargetToEnd(df, "missing"); err == nil {
		t.Error("expected error for missing target")
	}
	if _, err := MoveTargetToEnd(nil, "label"); err == nil {
		t.Error("expected error for nil frame")
	}
}

func TestFrameTrainTestSplit(t *testing.T) {
	path := writeSplitConfig(t, `{"train_ratio": 0.7, "shuffle": true, "stratify": null, "random_state": 7}`)
	provider, _ := log.NewTestProvider(log.LevelDebug)

	s := NewFrameTrainTestSplit(provider)
	if err := s.SetConfigs(path); err != nil {
		t.Fatalf("SetConfigs failed: %v", err)
	}

	df := splitFrame(t)
	train, test, err := s.Split(df, "label")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if train.NumRows() != 7 || test.NumRows() != 3 {
		t.Errorf("split sizes = %d/%d, want 7/3", train.NumRows(), test.NumRows())
	}
	if got := train.Columns(); !reflect.DeepEqual(got, []string{"id", "label"}) {
		t.Errorf("train columns = %v, want target last", got)
	}

	// Same seed, same partition.
	again, _, err := s.Split(df, "label")
	if err != nil {
		t.Fatalf("second Split failed: %v", err)
	}
	id1, _ := train.Column("id")
	id2, _ := again.Column("id")
	v1, _ := id1.Floats()
	v2, _ := id2.Floats()
	if !reflect.DeepEqual(v1, v2) {
		t.Error("shuffled split must be deterministic for a fixed random_state")
	}

	// No row lost or duplicated.
	seen := make(map[float64]int)
	for _, sub := range []*dataframe.Frame{train, test} {
		col, _ := sub.Column("id")
		values, _ := col.Floats()
		for _, v := range values {
			seen[v]++
		}
	}
	if len(seen) != df.NumRows() {
		t.Errorf("partition covers %d distinct rows, want %d", len(seen), df.NumRows())
	}
	for v, count := range seen {
		if count != 1 {
			t.Errorf("row %v appears %d times", v, count)
		}
	}
}

func TestFrameTrainTestSplitNoShuffle(t *testing.T) {
	path := writeSplitConfig(t, `{"train_ratio": 0.5, "shuffle": false, "stratify": null, "random_state": 0}`)
	s := NewFrameTrainTestSplit(nil)
	if err := s.SetConfigs(path); err != nil {
		t.Fatalf("SetConfigs failed: %v", err)
	}

	train, _, err := s.Split(splitFrame(t), "label")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	col, _ := train.Column("id")
	values, _ := col.Floats()
	if !reflect.DeepEqual(values, []float64{0, 1, 2, 3, 4}) {
		t.Errorf("unshuffled train ids = %v, want leading rows", values)
	}
}

func TestFrameTrainTestSplitErrors(t *testing.T) {
	t.Run("configs not set", func(t *testing.T) {
		s := NewFrameTrainTestSplit(nil)
		_, _, err := s.Split(splitFrame(t), "label")
		var confErr *errors.ConfigurationError
		if !errors.As(err, &confErr) {
			t.Fatalf("expected ConfigurationError, got %v", err)
		}
	})

	t.Run("bad ratio", func(t *testing.T) {
		s := NewFrameTrainTestSplit(nil)
		path := writeSplitConfig(t, `{"train_ratio": 1.5, "shuffle": false, "stratify": null, "random_state": 0}`)
		if err := s.SetConfigs(path); err == nil {
			t.Fatal("expected error for train_ratio outside (0, 1)")
		}
	})

	t.Run("stratify not implemented", func(t *testing.T) {
		s := NewFrameTrainTestSplit(nil)
		path := writeSplitConfig(t, `{"train_ratio": 0.7, "shuffle": true, "stratify": "label", "random_state": 0}`)
		if err := s.SetConfigs(path); err != nil {
			t.Fatalf("SetConfigs failed: %v", err)
		}
		_, _, err := s.Split(splitFrame(t), "label")
		if !errors.Is(err, errors.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})
}

func TestTrainTestEvalSplit(t *testing.T) {
	path := writeSplitConfig(t, `{"test_ratio": 0.2, "eval_ratio": 0.1, "shuffle": true, "stratify": null, "random_state": 42}`)
	provider, _ := log.NewTestProvider(log.LevelDebug)

	s := NewTrainTestEvalSplit(provider)
	if err := s.SetConfigs(path); err != nil {
		t.Fatalf("SetConfigs failed: %v", err)
	}

	result, err := s.Split(splitFrame(t), "label")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	trainRows, trainCols := result.XTrain.Dims()
	testRows, _ := result.XTest.Dims()
	evalRows, _ := result.XEval.Dims()
	if trainRows != 7 || testRows != 2 || evalRows != 1 {
		t.Errorf("split sizes = %d/%d/%d, want 7/2/1", trainRows, testRows, evalRows)
	}
	if trainCols != 1 {
		t.Errorf("feature columns = %d, want target separated out", trainCols)
	}
	if len(result.YTrain) != trainRows || len(result.YTest) != testRows || len(result.YEval) != evalRows {
		t.Error("label vector lengths must match their feature matrices")
	}
	for _, y := range result.YTrain {
		if y != 0 && y != 1 {
			t.Errorf("label value %v leaked from a feature column", y)
		}
	}
}

func TestTrainTestEvalSplitNoEval(t *testing.T) {
	path := writeSplitConfig(t, `{"test_ratio": 0.3, "eval_ratio": 0, "shuffle": false, "stratify": null, "random_state": 0}`)
	s := NewTrainTestEvalSplit(nil)
	if err := s.SetConfigs(path); err != nil {
		t.Fatalf("SetConfigs failed: %v", err)
	}

	result, err := s.Split(splitFrame(t), "label")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if result.XEval != nil || result.YEval != nil {
		t.Error("eval subset must be nil when eval_ratio is 0")
	}
	trainRows, _ := result.XTrain.Dims()
	testRows, _ := result.XTest.Dims()
	if trainRows != 7 || testRows != 3 {
		t.Errorf("split sizes = %d/%d, want 7/3", trainRows, testRows)
	}
}

func TestTrainTestEvalSplitBadRatios(t *testing.T) {
	s := NewTrainTestEvalSplit(nil)
	path := writeSplitConfig(t, `{"test_ratio": 0.6, "eval_ratio": 0.5, "shuffle": false, "stratify": null, "random_state": 0}`)
	if err := s.SetConfigs(path); err == nil {
		t.Fatal("expected error for ratios summing above 1")
	}
}

func TestSplitAsArtifact(t *testing.T) {
	s := NewFrameTrainTestSplit(nil)
	if _, err := s.AsArtifact(t.TempDir()); err == nil {
		t.Fatal("expected error before SetConfigs")
	}

	content := `{"train_ratio": 0.7, "shuffle": true, "stratify": null, "random_state": 7}`
	path := writeSplitConfig(t, content)
	if err := s.SetConfigs(path); err != nil {
		t.Fatalf("SetConfigs failed: %v", err)
	}

	target, err := s.AsArtifact(t.TempDir())
	if err != nil {
		t.Fatalf("AsArtifact failed: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(got) != content {
		t.Error("artifact must be a byte-for-byte copy of the configuration file")
	}
}
