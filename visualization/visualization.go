// Package visualization renders dataset diagnostics as image files, e.g.
// the category distribution of a column before configuring its encoder.
package visualization

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/nikronic/niklib/dataframe"
	"github.com/nikronic/niklib/pkg/errors"
)

// CategoryCounts tallies the occurrences of each distinct value of a
// string-typed series, in first-seen order.
func CategoryCounts(s *dataframe.Series) ([]string, []int, error) {
	values, err := s.Strings()
	if err != nil {
		return nil, nil, err
	}
	labels, err := s.Uniques()
	if err != nil {
		return nil, nil, err
	}
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}
	counts := make([]int, len(labels))
	for _, v := range values {
		counts[index[v]]++
	}
	return labels, counts, nil
}

// SaveCategoryBars writes a bar chart of the category distribution of a
// string-typed series to filename (format chosen by extension, e.g. .png).
// Each bar is annotated with its share of the rows as a percentage.
func SaveCategoryBars(s *dataframe.Series, title, filename string) error {
	labels, counts, err := CategoryCounts(s)
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "SaveCategoryBars")
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	values := make(plotter.Values, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = s.Name()
	p.Y.Label.Text = "count"

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return errors.Wrap(err, "building bar chart")
	}
	p.Add(bars)
	p.NominalX(labels...)

	shares := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(counts)),
		Labels: make([]string, len(counts)),
	}
	for i, c := range counts {
		shares.XYs[i] = plotter.XY{X: float64(i), Y: float64(c)}
		shares.Labels[i] = fmt.Sprintf("%.1f%%", 100*float64(c)/float64(total))
	}
	annotations, err := plotter.NewLabels(shares)
	if err != nil {
		return errors.Wrap(err, "building bar labels")
	}
	p.Add(annotations)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return errors.Wrapf(err, "saving plot %s", filename)
	}
	return nil
}
