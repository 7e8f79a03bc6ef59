package compose

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/nikronic/niklib/dataframe"
	"github.com/nikronic/niklib/pkg/errors"
	"github.com/nikronic/niklib/pkg/log"
	"github.com/nikronic/niklib/preprocessing"
)

// PreviewColumnTransformer logs a random sample of rows before and after
// each fitted step, so a configured pipeline can be eyeballed on real data
// before a full run. For one-hot steps the learned vocabulary size per
// column is logged as well, since the indicator columns themselves are hard
// to read.
//
// n caps the sampled rows; values outside (0, rows] fall back to 5.
func PreviewColumnTransformer(ct *ColumnTransformer, df *dataframe.Frame, n int, provider log.LoggerProvider) error {
	if provider == nil {
		provider = log.NewZerologProvider(log.LevelInfo)
	}
	logger := provider.GetLoggerWithName("PreviewColumnTransformer")
	if df == nil {
		return errors.NewValidationError(
			"df", "must be a *dataframe.Frame, not nil", nil)
	}
	if n <= 0 || n > df.NumRows() {
		n = 5
		if df.NumRows() < n {
			n = df.NumRows()
		}
	}

	sample, err := df.Take(rand.Perm(df.NumRows())[:n])
	if err != nil {
		return err
	}

	for _, step := range ct.Transformers() {
		in, err := stepInput(sample, step)
		if err != nil {
			return err
		}
		out, err := step.Transformer.Transform(in)
		if err != nil {
			return errors.Wrapf(err, "previewing step %s", step.Name)
		}

		if enc, ok := step.Transformer.(*preprocessing.OneHotEncoder); ok {
			for j, categories := range enc.Categories {
				logger.Info("one-hot vocabulary",
					log.TransformerNameKey, step.Name,
					log.ColumnsKey, step.Columns.Label(j),
					log.CategoriesKey, len(categories))
			}
		}

		before, err := renderRows(in)
		if err != nil {
			return errors.Wrapf(err, "previewing step %s", step.Name)
		}
		after, err := renderRows(out)
		if err != nil {
			return errors.Wrapf(err, "previewing step %s", step.Name)
		}
		for i := range before {
			logger.Info("sample row",
				log.TransformerNameKey, step.Name,
				"row.original", before[i],
				"row.transformed", after[i])
		}
	}
	return nil
}

// renderRows formats every row of a frame as "a, b, c" strings.
func renderRows(df *dataframe.Frame) ([]string, error) {
	cells := make([][]string, df.NumCols())
	for j := 0; j < df.NumCols(); j++ {
		col, err := df.ColumnAt(j)
		if err != nil {
			return nil, err
		}
		rendered, err := renderSeries(col)
		if err != nil {
			return nil, err
		}
		cells[j] = rendered
	}

	rows := make([]string, df.NumRows())
	for i := range rows {
		parts := make([]string, len(cells))
		for j := range cells {
			parts[j] = cells[j][i]
		}
		rows[i] = strings.Join(parts, ", ")
	}
	return rows, nil
}

func renderSeries(s *dataframe.Series) ([]string, error) {
	out := make([]string, s.Len())
	switch s.Dtype() {
	case dataframe.String, dataframe.Category:
		values, err := s.Strings()
		if err != nil {
			return nil, err
		}
		copy(out, values)
	case dataframe.Bool:
		values, err := s.Bools()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			out[i] = strconv.FormatBool(v)
		}
	default:
		values, err := s.Floats()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			out[i] = fmt.Sprintf("%g", v)
		}
	}
	return out, nil
}
