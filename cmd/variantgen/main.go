// Command variantgen expands an experiment file into trial configurations.
//
//	variantgen -experiment exp.yaml -format csv -limit 100
//
// Trials are written to stdout (or -output) as JSON lines or CSV. Optional
// reports summarise the sampled values.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/variantgen/internal/config"
	"github.com/banshee-data/variantgen/internal/monitoring"
	"github.com/banshee-data/variantgen/internal/report"
	"github.com/banshee-data/variantgen/internal/rng"
	"github.com/banshee-data/variantgen/internal/search"
	"github.com/banshee-data/variantgen/internal/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("variantgen: %v", err)
	}
}

type options struct {
	experiment  string
	format      string
	output      string
	limit       int
	seed        int64
	seedSet     bool
	rngMode     string
	summary     string
	histParam   string
	histOut     string
	bins        int
	chart       string
	quiet       bool
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("variantgen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.experiment, "experiment", "", "Experiment file (.json, .yaml or .yml)")
	fs.StringVar(&o.format, "format", "jsonl", "Trial output format: jsonl or csv")
	fs.StringVar(&o.output, "output", "", "Trial output file (defaults to stdout)")
	fs.IntVar(&o.limit, "limit", 0, "Stop after this many trials (0 = all)")
	fs.Int64Var(&o.seed, "seed", 0, "Override the experiment seed")
	fs.StringVar(&o.rngMode, "rng", "", "Override the generator family: modern or legacy")
	fs.StringVar(&o.summary, "summary", "", "Write a per-parameter summary CSV to this file")
	fs.StringVar(&o.histParam, "hist", "", "Evaluated parameter to plot as a histogram")
	fs.StringVar(&o.histOut, "hist-out", "histogram.png", "Histogram image file")
	fs.IntVar(&o.bins, "bins", report.DefaultBins, "Histogram bin count")
	fs.StringVar(&o.chart, "chart", "", "Write an HTML chart of every evaluated parameter to this file")
	fs.BoolVar(&o.quiet, "quiet", false, "Suppress warnings")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			o.seedSet = true
		}
	})

	if o.showVersion {
		return o, nil
	}
	if o.experiment == "" {
		fs.Usage()
		return nil, fmt.Errorf("-experiment is required")
	}
	if o.limit < 0 {
		return nil, fmt.Errorf("-limit must be non-negative, got %d", o.limit)
	}
	if o.rngMode != "" {
		if _, ok := rng.ParseMode(o.rngMode); !ok {
			return nil, fmt.Errorf("invalid -rng %q: expected modern or legacy", o.rngMode)
		}
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.showVersion {
		fmt.Fprintln(stdout, version.String())
		return nil
	}

	logf := log.New(stderr, "", log.LstdFlags).Printf
	if o.quiet {
		logf = func(string, ...interface{}) {}
	}
	monitoring.SetLogger(logf)

	cfg, err := config.LoadExperimentConfig(o.experiment)
	if err != nil {
		return err
	}
	if o.seedSet {
		cfg.Seed = &o.seed
	}
	if o.rngMode != "" {
		cfg.RNGMode = o.rngMode
	}

	opts, err := cfg.SearchOptions(logf)
	if err != nil {
		return err
	}
	exp, err := cfg.Experiment()
	if err != nil {
		return err
	}

	s := search.New(opts)
	if err := s.AddConfigurations(exp); err != nil {
		return err
	}
	logf("Experiment %q: %d trials expected", exp.Name, s.TotalSamples())

	out := stdout
	if o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w, err := report.NewTrialWriter(o.format, out, logf)
	if err != nil {
		return err
	}

	keep := o.summary != "" || o.histParam != "" || o.chart != ""
	trials, err := emit(s, w, o.limit, keep)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if o.limit > 0 && !s.IsFinished() {
		logf("Stopped after %d of %d trials (-limit)", o.limit, s.TotalSamples())
	}

	return writeReports(o, exp.Name, trials, logf)
}

// emit pulls trials from s into w. Every trial is completed as soon as it is
// written. The written trials are returned when keep is set.
func emit(s *search.Searcher, w report.TrialWriter, limit int, keep bool) ([]*search.Trial, error) {
	var kept []*search.Trial
	n := 0
	for !s.IsFinished() && (limit == 0 || n < limit) {
		trial, err := s.NextTrial()
		if err != nil {
			return nil, err
		}
		if trial == nil {
			break
		}
		if err := w.WriteTrial(trial); err != nil {
			return nil, err
		}
		s.OnTrialComplete(trial.ID)
		if keep {
			kept = append(kept, trial)
		}
		n++
	}
	return kept, nil
}

func writeReports(o *options, name string, trials []*search.Trial, logf monitoring.LogFunc) error {
	if o.summary == "" && o.histParam == "" && o.chart == "" {
		return nil
	}
	sums := report.Summarize(trials)

	if o.summary != "" {
		f, err := os.Create(o.summary)
		if err != nil {
			return fmt.Errorf("failed to create summary file: %w", err)
		}
		defer f.Close()
		if err := report.WriteSummary(f, sums); err != nil {
			return err
		}
		logf("Wrote summary of %d parameters to %s", len(sums), o.summary)
	}

	if o.histParam != "" {
		values := report.NumericValues(trials, o.histParam)
		if err := report.WriteHistogramPNG(o.histOut, o.histParam, values, o.bins); err != nil {
			return err
		}
		logf("Wrote histogram of %s to %s", o.histParam, o.histOut)
	}

	if o.chart != "" {
		numeric := make(map[string][]float64)
		for _, s := range sums {
			if s.Numeric {
				numeric[s.Name] = report.NumericValues(trials, s.Name)
			}
		}
		f, err := os.Create(o.chart)
		if err != nil {
			return fmt.Errorf("failed to create chart file: %w", err)
		}
		defer f.Close()
		if err := report.WriteChartHTML(f, name, sums, numeric, o.bins); err != nil {
			return err
		}
		logf("Wrote chart to %s", o.chart)
	}
	return nil
}
