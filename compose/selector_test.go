package compose

import (
	"reflect"
	"testing"

	"github.com/nikronic/niklib/dataframe"
)

func selectorFrame(t *testing.T) *dataframe.Frame {
	t.Helper()
	f, err := dataframe.New(
		dataframe.NewCategorySeries("sex", []string{"male", "female"}),
		dataframe.NewFloatSeries("age", []float64{34, 28}),
		dataframe.NewFloatSeries("income", []float64{48e3, 52e3}),
		dataframe.NewStringSeries("note", []string{"a", "b"}),
	)
	if err != nil {
		t.Fatalf("building frame: %v", err)
	}
	return f
}

func TestColumnSelectorSelect(t *testing.T) {
	df := selectorFrame(t)

	tests := []struct {
		name        string
		selector    ColumnSelector
		wantNames   []string
		wantIndices []int
	}{
		{
			name:        "by dtype",
			selector:    ColumnSelector{DtypeInclude: []dataframe.Dtype{dataframe.Float64}},
			wantNames:   []string{"age", "income"},
			wantIndices: []int{1, 2},
		},
		{
			name:        "by pattern",
			selector:    ColumnSelector{PatternInclude: "^(sex|note)$"},
			wantNames:   []string{"sex", "note"},
			wantIndices: []int{0, 3},
		},
		{
			name: "dtype and exclude pattern",
			selector: ColumnSelector{
				DtypeInclude:   []dataframe.Dtype{dataframe.Float64},
				PatternExclude: "income",
			},
			wantNames:   []string{"age"},
			wantIndices: []int{1},
		},
		{
			name:        "empty exclude pattern excludes nothing",
			selector:    ColumnSelector{PatternExclude: ""},
			wantNames:   []string{"sex", "age", "income", "note"},
			wantIndices: []int{0, 1, 2, 3},
		},
		{
			name:        "dtype exclude",
			selector:    ColumnSelector{DtypeExclude: []dataframe.Dtype{dataframe.Float64}},
			wantNames:   []string{"sex", "note"},
			wantIndices: []int{0, 3},
		},
		{
			name:      "no match",
			selector:  ColumnSelector{PatternInclude: "^missing$"},
			wantNames: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.selector.Select(df)
			if err != nil {
				t.Fatalf("Select failed: %v", err)
			}
			if !reflect.DeepEqual(got.Names, tt.wantNames) {
				t.Errorf("Names = %v, want %v", got.Names, tt.wantNames)
			}
			if tt.wantIndices != nil && !reflect.DeepEqual(got.Indices, tt.wantIndices) {
				t.Errorf("Indices = %v, want %v", got.Indices, tt.wantIndices)
			}

			// Repeated resolution on an unchanged frame is stable.
			again, err := tt.selector.Select(df)
			if err != nil {
				t.Fatalf("second Select failed: %v", err)
			}
			if !reflect.DeepEqual(got, again) {
				t.Errorf("Select not stable: %v vs %v", got, again)
			}
		})
	}
}

func TestColumnSelectorNilFrame(t *testing.T) {
	if _, err := (ColumnSelector{}).Select(nil); err == nil {
		t.Fatal("expected error for nil frame")
	}
}

func TestColumnSelectorBadPattern(t *testing.T) {
	s := ColumnSelector{PatternInclude: "("}
	if _, err := s.Select(selectorFrame(t)); err == nil {
		t.Fatal("expected error for invalid regex")
	}
}

func TestColumnsLabels(t *testing.T) {
	byName := Columns{Type: ColumnsByName, Names: []string{"sex", "age"}, Indices: []int{0, 1}}
	if got := byName.Labels(); !reflect.DeepEqual(got, []string{"sex", "age"}) {
		t.Errorf("name labels = %v", got)
	}

	byIndex := Columns{Type: ColumnsByIndex, Names: []string{"sex", "age"}, Indices: []int{0, 1}}
	if got := byIndex.Labels(); !reflect.DeepEqual(got, []string{"x0", "x1"}) {
		t.Errorf("index labels = %v", got)
	}
}

func TestParseColumnsType(t *testing.T) {
	if got, err := ParseColumnsType("string"); err != nil || got != ColumnsByName {
		t.Errorf("ParseColumnsType(string) = %v, %v", got, err)
	}
	if got, err := ParseColumnsType("numeric"); err != nil || got != ColumnsByIndex {
		t.Errorf("ParseColumnsType(numeric) = %v, %v", got, err)
	}
	if _, err := ParseColumnsType("positional"); err == nil {
		t.Error("expected error for unknown columns type")
	}
}
