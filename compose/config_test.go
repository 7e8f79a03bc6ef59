package compose

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nikronic/niklib/dataframe"
	"github.com/nikronic/niklib/pkg/errors"
	"github.com/nikronic/niklib/pkg/log"
	"github.com/nikronic/niklib/preprocessing"
)

func configFrame(t *testing.T) *dataframe.Frame {
	t.Helper()
	f, err := dataframe.New(
		dataframe.NewCategorySeries("sex", []string{"male", "female", "female", "male"}),
		dataframe.NewFloatSeries("age", []float64{34, 28, 45, 52}),
		dataframe.NewFloatSeries("income", []float64{48e3, 52e3, 71e3, 66e3}),
		dataframe.NewFloatSeries("label", []float64{0, 1, 1, 0}),
	)
	if err != nil {
		t.Fatalf("building frame: %v", err)
	}
	return f
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func newTestConfig(t *testing.T) *ColumnTransformerConfig {
	t.Helper()
	provider, _ := log.NewTestProvider(log.LevelDebug)
	return NewColumnTransformerConfig(nil, provider)
}

func TestSetConfigs(t *testing.T) {
	c := newTestConfig(t)
	directives, err := c.SetConfigs("testdata/example_column_transformer_config_1.json")
	if err != nil {
		t.Fatalf("SetConfigs failed: %v", err)
	}
	if len(directives) != 2 {
		t.Fatalf("got %d directives, want 2", len(directives))
	}

	first := directives[0]
	if first.Key != "sex_OneHotEncoder" || first.Transform != "OneHotEncoder" {
		t.Errorf("first directive = %s/%s", first.Key, first.Transform)
	}
	if !first.UseGlobal || first.Group {
		t.Errorf("first directive flags = group:%t use_global:%t", first.Group, first.UseGlobal)
	}
	if !reflect.DeepEqual(first.Selector.DtypeInclude, []dataframe.Dtype{dataframe.Category}) {
		t.Errorf("first dtype_include = %v", first.Selector.DtypeInclude)
	}
	if first.Selector.PatternInclude != "sex" {
		t.Errorf("first pattern_include = %q", first.Selector.PatternInclude)
	}

	second := directives[1]
	if second.Transform != "StandardScaler" {
		t.Errorf("second transform = %s", second.Transform)
	}
	if second.Selector.PatternExclude != "label" {
		t.Errorf("second pattern_exclude = %q", second.Selector.PatternExclude)
	}

	// Directive order follows the file, not map iteration.
	if got := c.Directives(); got[0].Key != "sex_OneHotEncoder" || got[1].Key != "numeric_StandardScaler" {
		t.Errorf("directive order = %s, %s", got[0].Key, got[1].Key)
	}
}

func TestSetConfigsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown field",
			content: `{"age_StandardScaler": {"columns_type": "'string'", "surprise": "True"}}`,
		},
		{
			name:    "top-level array",
			content: `[]`,
		},
		{
			name:    "bad literal",
			content: `{"age_StandardScaler": {"group": "eval('x')"}}`,
		},
		{
			name:    "duplicate key",
			content: `{"a_MaxAbsScaler": {}, "a_MaxAbsScaler": {}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConfig(t)
			if _, err := c.SetConfigs(writeConfig(t, tt.content)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		c := newTestConfig(t)
		if _, err := c.SetConfigs(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestCalculateParams(t *testing.T) {
	c := newTestConfig(t)

	t.Run("grouped union", func(t *testing.T) {
		df, err := dataframe.New(
			dataframe.NewCategorySeries("a", []string{"x", "y", "x"}),
			dataframe.NewCategorySeries("b", []string{"y", "z", "z"}),
		)
		if err != nil {
			t.Fatalf("building frame: %v", err)
		}
		columns := Columns{Names: []string{"a", "b"}, Indices: []int{0, 1}}

		params, err := c.CalculateParams(df, columns, true, "OneHotEncoder")
		if err != nil {
			t.Fatalf("CalculateParams failed: %v", err)
		}
		categories := params["categories"].([][]string)
		want := [][]string{{"x", "y", "z"}, {"x", "y", "z"}}
		if !reflect.DeepEqual(categories, want) {
			t.Errorf("categories = %v, want shared union %v", categories, want)
		}
	})

	t.Run("single column without group", func(t *testing.T) {
		df, err := dataframe.New(
			dataframe.NewCategorySeries("grade", []string{"q", "p", "q"}),
		)
		if err != nil {
			t.Fatalf("building frame: %v", err)
		}
		columns := Columns{Names: []string{"grade"}, Indices: []int{0}}

		params, err := c.CalculateParams(df, columns, false, "OneHotEncoder")
		if err != nil {
			t.Fatalf("CalculateParams failed: %v", err)
		}
		categories := params["categories"].([][]string)
		if !reflect.DeepEqual(categories, [][]string{{"q", "p"}}) {
			t.Errorf("categories = %v, want first-seen order of the column", categories)
		}
	})

	t.Run("multiple columns without group", func(t *testing.T) {
		df := configFrame(t)
		columns := Columns{Names: []string{"age", "income"}, Indices: []int{1, 2}}

		params, err := c.CalculateParams(df, columns, false, "OneHotEncoder")
		if err != nil {
			t.Fatalf("CalculateParams failed: %v", err)
		}
		if len(params) != 0 {
			t.Errorf("params = %v, want empty so the encoder learns per column", params)
		}
	})

	t.Run("grouping a scaler", func(t *testing.T) {
		df := configFrame(t)
		columns := Columns{Names: []string{"age"}, Indices: []int{1}}

		_, err := c.CalculateParams(df, columns, true, "StandardScaler")
		if !errors.Is(err, errors.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})

	t.Run("nil frame", func(t *testing.T) {
		if _, err := c.CalculateParams(nil, Columns{}, false, "OneHotEncoder"); err == nil {
			t.Fatal("expected error for nil frame")
		}
	})
}

func TestGeneratePipeline(t *testing.T) {
	full := configFrame(t)
	// Training split without any "female" row; use_global pulls the
	// vocabulary from the full dataset anyway.
	train, err := full.Take([]int{0, 3})
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	c := newTestConfig(t)
	if _, err := c.SetConfigs("testdata/example_column_transformer_config_1.json"); err != nil {
		t.Fatalf("SetConfigs failed: %v", err)
	}
	steps, err := c.GeneratePipeline(train, full)
	if err != nil {
		t.Fatalf("GeneratePipeline failed: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(steps))
	}

	enc, ok := steps[0].Transformer.(*preprocessing.OneHotEncoder)
	if !ok {
		t.Fatalf("first step is %T", steps[0].Transformer)
	}
	if !reflect.DeepEqual(enc.Categories, [][]string{{"male", "female"}}) {
		t.Errorf("encoder categories = %v, want full-dataset vocabulary", enc.Categories)
	}

	if !reflect.DeepEqual(steps[1].Columns.Names, []string{"age", "income"}) {
		t.Errorf("scaler columns = %v, want label excluded", steps[1].Columns.Names)
	}
}

func TestGeneratePipelineErrors(t *testing.T) {
	df := configFrame(t)

	t.Run("configs not set", func(t *testing.T) {
		c := newTestConfig(t)
		_, err := c.GeneratePipeline(df, nil)
		var confErr *errors.ConfigurationError
		if !errors.As(err, &confErr) {
			t.Fatalf("expected ConfigurationError, got %v", err)
		}
	})

	t.Run("unknown transformer suffix", func(t *testing.T) {
		c := newTestConfig(t)
		path := writeConfig(t, `{"age_UnknownScaler": {"columns_type": "'string'"}}`)
		if _, err := c.SetConfigs(path); err != nil {
			t.Fatalf("SetConfigs failed: %v", err)
		}
		steps, err := c.GeneratePipeline(df, nil)
		if err == nil {
			t.Fatal("expected error for unknown transformer suffix")
		}
		if steps != nil {
			t.Errorf("steps = %v, want nil on failure", steps)
		}
	})

	t.Run("use_global without df_all", func(t *testing.T) {
		c := newTestConfig(t)
		if _, err := c.SetConfigs("testdata/example_column_transformer_config_1.json"); err != nil {
			t.Fatalf("SetConfigs failed: %v", err)
		}
		if _, err := c.GeneratePipeline(df, nil); err == nil {
			t.Fatal("expected error when use_global has no full dataset")
		}
	})

	t.Run("nil frame", func(t *testing.T) {
		c := newTestConfig(t)
		if _, err := c.SetConfigs("testdata/example_column_transformer_config_1.json"); err != nil {
			t.Fatalf("SetConfigs failed: %v", err)
		}
		if _, err := c.GeneratePipeline(nil, df); err == nil {
			t.Fatal("expected error for nil frame")
		}
	})
}

func TestGeneratePipelineOverlapWarning(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(nil)

	path := writeConfig(t, `{
	  "age_StandardScaler": {"columns_type": "'string'", "pattern_include": "'age'"},
	  "age2_MinMaxScaler": {"columns_type": "'string'", "pattern_include": "'age'"}
	}`)

	c := newTestConfig(t)
	if _, err := c.SetConfigs(path); err != nil {
		t.Fatalf("SetConfigs failed: %v", err)
	}
	if _, err := c.GeneratePipeline(configFrame(t), nil); err != nil {
		t.Fatalf("GeneratePipeline failed: %v", err)
	}

	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	var overlap *errors.OverlapWarning
	if !errors.As(warnings[0], &overlap) {
		t.Fatalf("warning is %T", warnings[0])
	}
	if !reflect.DeepEqual(overlap.Columns, []string{"age"}) {
		t.Errorf("overlap columns = %v", overlap.Columns)
	}
}

func TestAsArtifact(t *testing.T) {
	c := newTestConfig(t)

	if _, err := c.AsArtifact(t.TempDir()); err == nil {
		t.Fatal("expected error before SetConfigs")
	}

	source := "testdata/example_column_transformer_config_1.json"
	if _, err := c.SetConfigs(source); err != nil {
		t.Fatalf("SetConfigs failed: %v", err)
	}
	dir := t.TempDir()
	target, err := c.AsArtifact(dir)
	if err != nil {
		t.Fatalf("AsArtifact failed: %v", err)
	}

	want, err := os.ReadFile(source)
	if err != nil {
		t.Fatalf("reading source: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(got) != string(want) {
		t.Error("artifact must be a byte-for-byte copy of the configuration file")
	}
}
