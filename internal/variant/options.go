package variant

import (
	"github.com/banshee-data/variantgen/internal/monitoring"
	"github.com/banshee-data/variantgen/internal/rng"
)

type options struct {
	constantGrid bool
	src          rng.Source
	logf         monitoring.LogFunc
}

// Option configures a Stream or Preset.
type Option func(*options)

// WithConstantGridSearch resolves sampled values once per outer sample and reuses
// them for every grid combination of that sample.
func WithConstantGridSearch(on bool) Option {
	return func(o *options) { o.constantGrid = on }
}

// WithSource sets the random source. The default is rng.Global.
func WithSource(src rng.Source) Option {
	return func(o *options) { o.src = src }
}

// WithLogger sets the logger used for warnings. The default is monitoring.Logf.
func WithLogger(logf monitoring.LogFunc) Option {
	return func(o *options) { o.logf = logf }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.src == nil {
		o.src = rng.Default.Source(rng.Unset())
	}
	return o
}

func (o options) warnf(format string, v ...interface{}) {
	monitoring.Warnf(o.logf, format, v...)
}
