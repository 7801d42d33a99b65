package report

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultBins is the histogram bin count used when none is given.
const DefaultBins = 20

// WriteHistogramPNG plots a histogram of values and saves it to path. The image
// format follows the file extension.
func WriteHistogramPNG(path, param string, values []float64, bins int) error {
	if len(values) == 0 {
		return fmt.Errorf("no numeric values for %q", param)
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (n=%d)", param, len(values))
	p.X.Label.Text = param
	p.Y.Label.Text = "Trials"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	p.Add(h)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save histogram: %w", err)
	}
	return nil
}

// Histogram bins values into bins equal-width buckets between their minimum
// and maximum. It returns the bucket labels and counts.
func Histogram(values []float64, bins int) ([]string, []float64) {
	if len(values) == 0 {
		return nil, nil
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []string{fmt.Sprintf("%.4g", lo)}, []float64{float64(len(sorted))}
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram excludes the last divider.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.4g", dividers[i])
	}
	return labels, counts
}

// WriteChartHTML renders one bar chart per evaluated parameter to w: a
// histogram for numeric parameters and level counts for the others.
func WriteChartHTML(w io.Writer, title string, sums []ParamSummary, numeric map[string][]float64, bins int) error {
	page := components.NewPage()

	for _, s := range sums {
		var labels []string
		var data []opts.BarData
		subtitle := fmt.Sprintf("n=%d", s.Count)

		if s.Numeric {
			var counts []float64
			labels, counts = Histogram(numeric[s.Name], bins)
			for _, c := range counts {
				data = append(data, opts.BarData{Value: c})
			}
			subtitle += fmt.Sprintf(" mean=%.4g sd=%.4g", s.Mean, s.StdDev)
		} else {
			for k := range s.Levels {
				labels = append(labels, k)
			}
			slices.Sort(labels)
			for _, k := range labels {
				data = append(data, opts.BarData{Value: s.Levels[k]})
			}
		}

		bar := charts.NewBar()
		bar.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "400px"}),
			charts.WithTitleOpts(opts.Title{Title: s.Name, Subtitle: subtitle}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		)
		bar.SetXAxis(labels).AddSeries(s.Name, data)
		page.AddCharts(bar)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
