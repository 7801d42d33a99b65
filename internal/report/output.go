// Package report writes generated trials and summaries of the sampled values.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/variantgen/internal/monitoring"
	"github.com/banshee-data/variantgen/internal/search"
	"github.com/banshee-data/variantgen/internal/variant"
)

// TrialWriter streams trials to an output format.
type TrialWriter interface {
	WriteTrial(t *search.Trial) error
	Flush() error
}

// CSVWriter writes one row per trial with a column per configuration leaf. The
// columns are fixed by the first trial; leaves missing from a later trial are
// left empty and new ones are dropped with a warning.
type CSVWriter struct {
	w       *csv.Writer
	columns []string
	index   map[string]int
	warned  bool
	logf    monitoring.LogFunc
}

// NewCSVWriter returns a CSVWriter writing to w. A nil logf uses monitoring.Logf.
func NewCSVWriter(w io.Writer, logf monitoring.LogFunc) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), logf: logf}
}

var baseColumns = []string{"trial_id", "experiment", "experiment_tag"}

func (c *CSVWriter) writeHeader(leaves []variant.Leaf) error {
	c.columns = make([]string, len(leaves))
	c.index = make(map[string]int, len(leaves))
	for i, l := range leaves {
		name := l.Path.String()
		c.columns[i] = name
		c.index[name] = i
	}
	return c.w.Write(append(append([]string(nil), baseColumns...), c.columns...))
}

// WriteTrial writes t as a CSV row, writing the header first if needed.
func (c *CSVWriter) WriteTrial(t *search.Trial) error {
	leaves := variant.ParseSpecVars(t.Config).Resolved
	if c.columns == nil {
		if err := c.writeHeader(leaves); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	cells := make([]string, len(c.columns))
	for _, l := range leaves {
		i, ok := c.index[l.Path.String()]
		if !ok {
			if !c.warned {
				monitoring.Warnf(c.logf, "Trial %s has column %q not present in the header, dropping", t.ID, l.Path)
				c.warned = true
			}
			continue
		}
		cells[i] = FormatValue(l.Value)
	}

	row := append([]string{t.ID, t.ExperimentName, t.ExperimentTag}, cells...)
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	return nil
}

// Flush flushes buffered rows.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// FormatValue renders a configuration value for a CSV cell.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}

// JSONLWriter writes one JSON object per trial.
type JSONLWriter struct {
	enc *json.Encoder
}

// NewJSONLWriter returns a JSONLWriter writing to w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{enc: json.NewEncoder(w)}
}

// WriteTrial encodes t followed by a newline.
func (j *JSONLWriter) WriteTrial(t *search.Trial) error {
	if err := j.enc.Encode(t); err != nil {
		return fmt.Errorf("failed to encode trial %s: %w", t.ID, err)
	}
	return nil
}

// Flush is a no-op; every trial is written as it is encoded.
func (j *JSONLWriter) Flush() error { return nil }

// NewTrialWriter returns the writer for format, "csv" or "jsonl".
func NewTrialWriter(format string, w io.Writer, logf monitoring.LogFunc) (TrialWriter, error) {
	switch format {
	case "csv":
		return NewCSVWriter(w, logf), nil
	case "jsonl", "":
		return NewJSONLWriter(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q: expected csv or jsonl", format)
}
