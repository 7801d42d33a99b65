// Package space describes hyperparameter search spaces.
//
// A Domain describes how a single parameter may be drawn: a continuous range, an
// integer range, a categorical set, an explicit grid, or a function of the other
// parameters. Domains are immutable; every modifier returns a new Domain. A bad
// construction chain does not panic. The resulting Domain carries an
// *InvalidDomainError which Err, Validate and Sample all report.
package space

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies the variant of a Domain.
type Kind int

const (
	KindFloat Kind = iota
	KindInteger
	KindCategorical
	KindGrid
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInteger:
		return "integer"
	case KindCategorical:
		return "categorical"
	case KindGrid:
		return "grid"
	case KindFunction:
		return "function"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sampler is the sampling strategy assigned to a Domain.
type Sampler int

const (
	SamplerNone Sampler = iota
	SamplerUniform
	SamplerLogUniform
	SamplerNormal
)

func (s Sampler) String() string {
	switch s {
	case SamplerUniform:
		return "uniform"
	case SamplerLogUniform:
		return "loguniform"
	case SamplerNormal:
		return "normal"
	}
	return "none"
}

// quantTolerance is how far a bound may sit from a multiple of q.
const quantTolerance = 1e-9

// Domain is a tagged variant over the supported parameter descriptors.
type Domain struct {
	kind    Kind
	low     float64
	high    float64
	ilow    int64
	ihigh   int64
	values  []any
	fn      DependentFunc
	sampler Sampler
	mean    float64
	sd      float64
	q       float64
	err     error
}

// Float returns a continuous domain over [low, high). Either bound may be infinite,
// in which case only the Normal sampler can draw from it.
func Float(low, high float64) *Domain {
	d := &Domain{kind: KindFloat, low: low, high: high}
	switch {
	case math.IsNaN(low) || math.IsNaN(high):
		d.err = invalid(KindFloat, "bounds must not be NaN")
	case low >= high:
		d.err = invalid(KindFloat, "lower bound %v must be below upper bound %v", low, high)
	}
	return d
}

// Integer returns a discrete domain over [low, high). Plain uniform draws are
// exact over the whole int64 range; log-uniform, normal and quantized draws go
// through float64 and are exact only while both bounds stay within ±2^53.
func Integer(low, high int64) *Domain {
	d := &Domain{kind: KindInteger, low: float64(low), high: float64(high), ilow: low, ihigh: high}
	switch {
	case low >= high:
		d.err = invalid(KindInteger, "empty range [%d, %d)", low, high)
	case high-low <= 0:
		d.err = invalid(KindInteger, "range [%d, %d) is wider than int64", low, high)
	}
	return d
}

// Categorical returns a domain choosing uniformly among values. Values may be
// literals, Domains, maps or lists; the selected value is resolved recursively.
func Categorical(values ...any) *Domain {
	d := &Domain{kind: KindCategorical, values: append([]any(nil), values...)}
	if len(values) == 0 {
		d.err = invalid(KindCategorical, "at least one value is required")
	}
	return d
}

// Grid returns a domain that is enumerated exhaustively and never sampled.
func Grid(values ...any) *Domain {
	d := &Domain{kind: KindGrid, values: append([]any(nil), values...)}
	if len(values) == 0 {
		d.err = invalid(KindGrid, "at least one value is required")
	}
	return d
}

// Function returns a dependent domain computed from the partially resolved config.
func Function(fn DependentFunc) *Domain {
	d := &Domain{kind: KindFunction, fn: fn}
	if fn == nil {
		d.err = invalid(KindFunction, "nil function")
	}
	return d
}

func (d *Domain) clone() *Domain {
	c := *d
	return &c
}

// with applies check to a copy of d unless d already carries an error.
func (d *Domain) with(check func(c *Domain) error) *Domain {
	c := d.clone()
	if c.err != nil {
		return c
	}
	if err := check(c); err != nil {
		c.err = err
	}
	return c
}

func (d *Domain) assign(s Sampler) error {
	if d.sampler != SamplerNone {
		return invalid(d.kind, "sampler already assigned (%s)", d.sampler)
	}
	d.sampler = s
	return nil
}

// Uniform assigns the uniform sampler.
func (d *Domain) Uniform() *Domain {
	return d.with(func(c *Domain) error {
		switch c.kind {
		case KindFloat:
			if c.unbounded() {
				return invalid(c.kind, "uniform sampling requires finite bounds, got %s", c)
			}
		case KindInteger, KindCategorical:
		default:
			return invalid(c.kind, "uniform sampling is not supported")
		}
		return c.assign(SamplerUniform)
	})
}

// LogUniform assigns the log-uniform sampler. Both bounds must be finite and the
// lower bound strictly positive.
func (d *Domain) LogUniform() *Domain {
	return d.with(func(c *Domain) error {
		if c.kind != KindFloat && c.kind != KindInteger {
			return invalid(c.kind, "loguniform sampling is not supported")
		}
		if c.unbounded() {
			return invalid(c.kind, "loguniform sampling requires finite bounds, got %s", c)
		}
		if c.low <= 0 {
			return invalid(c.kind, "loguniform lower bound must be positive, got %v", c.low)
		}
		return c.assign(SamplerLogUniform)
	})
}

// Normal assigns the normal sampler. Bounds are optional; samples of a bounded
// domain are clamped into it, and the mean must lie within the bounds.
func (d *Domain) Normal(mean, sd float64) *Domain {
	return d.with(func(c *Domain) error {
		if c.kind != KindFloat {
			return invalid(c.kind, "normal sampling is only supported on float domains")
		}
		if !(sd > 0) || math.IsInf(sd, 0) {
			return invalid(c.kind, "normal standard deviation must be positive and finite, got %v", sd)
		}
		if math.IsNaN(mean) || math.IsInf(mean, 0) {
			return invalid(c.kind, "normal mean must be finite, got %v", mean)
		}
		if mean < c.low || mean > c.high {
			return invalid(c.kind, "normal mean %v lies outside bounds %s", mean, c)
		}
		if err := c.assign(SamplerNormal); err != nil {
			return err
		}
		c.mean, c.sd = mean, sd
		return nil
	})
}

// Quantized rounds samples to the nearest multiple of q. For float domains
// finite bounds must themselves be multiples of q. An unbounded domain can only
// be quantized once a Normal sampler has been assigned.
func (d *Domain) Quantized(q float64) *Domain {
	return d.with(func(c *Domain) error {
		if c.kind != KindFloat && c.kind != KindInteger {
			return invalid(c.kind, "quantization is not supported")
		}
		if !(q > 0) || math.IsInf(q, 0) {
			return invalid(c.kind, "quantization step must be positive, got %v", q)
		}
		if c.kind == KindInteger && q != math.Trunc(q) {
			return invalid(c.kind, "quantization step must be integral, got %v", q)
		}
		if c.unbounded() {
			if c.sampler != SamplerNormal {
				return invalid(c.kind, "cannot quantize unbounded domain %s without a normal sampler", c)
			}
		} else if q > c.high-c.low {
			return invalid(c.kind, "quantization step %v exceeds domain width %v", q, c.high-c.low)
		}
		if c.kind == KindFloat {
			for _, b := range []float64{c.low, c.high} {
				if math.IsInf(b, 0) {
					continue
				}
				if r := b / q; math.Abs(r-math.Round(r)) > quantTolerance {
					return invalid(c.kind, "bound %v is not a multiple of quantization step %v", b, q)
				}
			}
		}
		c.q = q
		return nil
	})
}

func (d *Domain) unbounded() bool {
	return math.IsInf(d.low, 0) || math.IsInf(d.high, 0)
}

// Kind returns the domain variant.
func (d *Domain) Kind() Kind { return d.kind }

// Sampler returns the assigned sampler, or SamplerNone.
func (d *Domain) Sampler() Sampler { return d.sampler }

// Bounds returns the numeric bounds of a float or integer domain.
func (d *Domain) Bounds() (low, high float64) { return d.low, d.high }

// Step returns the quantization step, or 0 if the domain is not quantized.
func (d *Domain) Step() float64 { return d.q }

// Values returns a copy of the categorical or grid values.
func (d *Domain) Values() []any { return append([]any(nil), d.values...) }

// Err returns the construction error carried by d, if any.
func (d *Domain) Err() error { return d.err }

// Validate reports whether d can be sampled or enumerated.
func (d *Domain) Validate() error {
	if d.err != nil {
		return d.err
	}
	if d.kind == KindFloat && d.unbounded() && d.sampler != SamplerNormal {
		return invalid(d.kind, "unbounded domain %s requires a normal sampler", d)
	}
	return nil
}

// Contains reports whether v is a value d could produce. Function domains accept
// anything.
func (d *Domain) Contains(v any) bool {
	switch d.kind {
	case KindFloat:
		f, ok := Number(v)
		return ok && f >= d.low && f <= d.high
	case KindInteger:
		switch n := v.(type) {
		case int:
			return int64(n) >= d.ilow && int64(n) < d.ihigh
		case int64:
			return n >= d.ilow && n < d.ihigh
		}
		f, ok := Number(v)
		return ok && f == math.Trunc(f) && f >= d.low && f < d.high
	case KindCategorical, KindGrid:
		for _, c := range d.values {
			if EqualValues(c, v) {
				return true
			}
		}
		return false
	}
	return true
}

func (d *Domain) String() string {
	switch d.kind {
	case KindFloat, KindInteger:
		return fmt.Sprintf("(%s, %s)", formatBound(d.low), formatBound(d.high))
	case KindCategorical, KindGrid:
		parts := make([]string, len(d.values))
		for i, v := range d.values {
			parts[i] = fmt.Sprintf("%v", v)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "<function>"
}

func formatBound(b float64) string {
	switch {
	case math.IsInf(b, -1):
		return "-inf"
	case math.IsInf(b, 1):
		return "inf"
	}
	return fmt.Sprintf("%v", b)
}
