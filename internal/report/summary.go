package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/variantgen/internal/search"
	"github.com/banshee-data/variantgen/internal/space"
)

// ParamSummary describes the values one evaluated parameter took across trials.
// Numeric parameters carry Mean, StdDev, Min and Max; the others carry Levels.
type ParamSummary struct {
	Name    string
	Count   int
	Numeric bool
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
	Levels  map[string]int
}

// NumericValues returns the values of the evaluated parameter name across
// trials, skipping trials where it is absent or not a number.
func NumericValues(trials []*search.Trial, name string) []float64 {
	var out []float64
	for _, t := range trials {
		v, ok := t.EvaluatedParams[name]
		if !ok {
			continue
		}
		if f, ok := space.Number(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// Summarize returns one summary per evaluated parameter, sorted by name.
func Summarize(trials []*search.Trial) []ParamSummary {
	values := make(map[string][]any)
	for _, t := range trials {
		for k, v := range t.EvaluatedParams {
			values[k] = append(values[k], v)
		}
	}

	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	slices.Sort(names)

	out := make([]ParamSummary, 0, len(names))
	for _, name := range names {
		out = append(out, summarize(name, values[name]))
	}
	return out
}

func summarize(name string, vals []any) ParamSummary {
	s := ParamSummary{Name: name, Count: len(vals)}

	nums := make([]float64, 0, len(vals))
	for _, v := range vals {
		f, ok := space.Number(v)
		if !ok {
			break
		}
		nums = append(nums, f)
	}
	if len(nums) == len(vals) && len(nums) > 0 {
		s.Numeric = true
		s.Mean, s.StdDev = stat.MeanStdDev(nums, nil)
		if len(nums) < 2 {
			s.StdDev = 0
		}
		s.Min = floats.Min(nums)
		s.Max = floats.Max(nums)
		return s
	}

	s.Levels = make(map[string]int)
	for _, v := range vals {
		s.Levels[FormatValue(v)]++
	}
	return s
}

// WriteSummary writes summaries as CSV. Levels are rendered as value=count
// pairs separated by ";".
func WriteSummary(w io.Writer, sums []ParamSummary) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"param", "count", "mean", "stddev", "min", "max", "levels"})
	for _, s := range sums {
		row := []string{s.Name, fmt.Sprintf("%d", s.Count)}
		if s.Numeric {
			row = append(row,
				fmt.Sprintf("%.6f", s.Mean),
				fmt.Sprintf("%.6f", s.StdDev),
				fmt.Sprintf("%.6f", s.Min),
				fmt.Sprintf("%.6f", s.Max),
				"",
			)
		} else {
			row = append(row, "", "", "", "", formatLevels(s.Levels))
		}
		cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

func formatLevels(levels map[string]int) string {
	keys := make([]string, 0, len(levels))
	for k := range levels {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, levels[k])
	}
	return strings.Join(parts, ";")
}
