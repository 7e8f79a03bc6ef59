package compose

import (
	"reflect"
	"testing"

	"github.com/nikronic/niklib/pkg/errors"
	"github.com/nikronic/niklib/preprocessing"
)

func TestTransformedFeatureNames(t *testing.T) {
	df := configFrame(t)
	steps := []ResolvedTransform{
		{
			Name:        "sex_OneHotEncoder",
			Transformer: preprocessing.NewOneHotEncoderDefault(),
			Columns:     Columns{Type: ColumnsByIndex, Names: []string{"sex"}, Indices: []int{0}},
		},
		{
			Name:        "numeric_StandardScaler",
			Transformer: preprocessing.NewStandardScalerDefault(),
			Columns:     Columns{Type: ColumnsByIndex, Names: []string{"age", "income"}, Indices: []int{1, 2}},
		},
	}
	ct := newTestTransformer(t, steps)
	if err := ct.Fit(df); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	// Opaque names before reconstruction.
	opaque, err := ct.FeatureNamesOut()
	if err != nil {
		t.Fatalf("FeatureNamesOut failed: %v", err)
	}
	if !reflect.DeepEqual(opaque, []string{"x0_female", "x0_male", "x1", "x2"}) {
		t.Fatalf("opaque names = %v", opaque)
	}

	got, err := TransformedFeatureNames(ct, df.Columns())
	if err != nil {
		t.Fatalf("TransformedFeatureNames failed: %v", err)
	}
	want := []string{"sex_female", "sex_male", "age", "income"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TransformedFeatureNames = %v, want %v", got, want)
	}
}

func TestTransformedFeatureNamesMixedSteps(t *testing.T) {
	df := configFrame(t)
	steps := []ResolvedTransform{
		{
			Name:        "sex_OneHotEncoder",
			Transformer: preprocessing.NewOneHotEncoderDefault(),
			Columns:     Columns{Type: ColumnsByName, Names: []string{"sex"}, Indices: []int{0}},
		},
		{
			Name:        "age_StandardScaler",
			Transformer: preprocessing.NewStandardScalerDefault(),
			Columns:     Columns{Type: ColumnsByIndex, Names: []string{"age"}, Indices: []int{1}},
		},
	}
	ct := newTestTransformer(t, steps)
	if err := ct.Fit(df); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	got, err := TransformedFeatureNames(ct, df.Columns())
	if err != nil {
		t.Fatalf("TransformedFeatureNames failed: %v", err)
	}
	// Name-typed output passes through, index-typed output resolves.
	want := []string{"sex_female", "sex_male", "age"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TransformedFeatureNames = %v, want %v", got, want)
	}
}

func TestTransformedFeatureNamesOutOfRange(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(nil)

	df := configFrame(t)
	// Index 10 has no counterpart in the original names; the opaque name
	// must survive untouched instead of resolving through position 1.
	steps := []ResolvedTransform{
		{
			Name:        "sex_OneHotEncoder",
			Transformer: preprocessing.NewOneHotEncoderDefault(),
			Columns:     Columns{Type: ColumnsByIndex, Names: []string{"sex"}, Indices: []int{10}},
		},
	}
	ct := newTestTransformer(t, steps)
	if err := ct.Fit(df); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	got, err := TransformedFeatureNames(ct, df.Columns())
	if err != nil {
		t.Fatalf("TransformedFeatureNames failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"x10_female", "x10_male"}) {
		t.Errorf("names = %v, want opaque names kept", got)
	}
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want one per unresolved name", len(warnings))
	}
	var nameWarning *errors.FeatureNameWarning
	if !errors.As(warnings[0], &nameWarning) {
		t.Errorf("warning is %T", warnings[0])
	}
}

func TestTransformedFeatureNamesNotFitted(t *testing.T) {
	ct := newTestTransformer(t, demoSteps())
	if _, err := TransformedFeatureNames(ct, []string{"a"}); err == nil {
		t.Fatal("expected not-fitted error")
	}
}
