package space

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/variantgen/internal/rng"
)

// Sample draws one value from d. Float domains produce float64; integer domains
// produce int. Categorical selections that are themselves Domains, maps or lists
// are resolved recursively with cfg visible to nested dependent functions. A
// function domain's result is returned as is.
func (d *Domain) Sample(src rng.Source, cfg Config) (any, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	switch d.kind {
	case KindFloat:
		return d.sampleFloat(src), nil
	case KindInteger:
		return d.sampleInteger(src), nil
	case KindCategorical:
		return Resolve(d.values[src.IntN(len(d.values))], src, cfg)
	case KindGrid:
		return nil, invalid(d.kind, "grid search values are enumerated, not sampled")
	case KindFunction:
		return d.fn(cfg)
	}
	return nil, invalid(d.kind, "unknown domain kind")
}

// SampleN draws n independent values from d with an empty config.
func (d *Domain) SampleN(src rng.Source, n int) ([]any, error) {
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := d.Sample(src, Config{})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Resolve replaces every Domain inside v with a sampled value. Maps are walked in
// sorted key order and lists by index, so draws are deterministic for a given
// source. A grid found while resolving is an error.
func Resolve(v any, src rng.Source, cfg Config) (any, error) {
	switch val := v.(type) {
	case *Domain:
		if val.kind == KindGrid {
			return nil, invalid(val.kind, "grid search %s cannot be resolved inside a sampled value", val)
		}
		return val.Sample(src, cfg)
	case map[string]any:
		if IsGridSearch(val) {
			return nil, invalid(KindGrid, "grid search cannot be resolved inside a sampled value")
		}
		out := make(map[string]any, len(val))
		for _, k := range SortedKeys(val) {
			r, err := Resolve(val[k], src, cfg)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			r, err := Resolve(e, src, cfg)
			if err != nil {
				return nil, fmt.Errorf("%d: %w", i, err)
			}
			out[i] = r
		}
		return out, nil
	}
	return v, nil
}

// bounds returns the sampling range, snapped inward to multiples of q when the
// domain is quantized.
func (d *Domain) bounds() (low, high float64) {
	low, high = d.low, d.high
	if d.q == 0 {
		return low, high
	}
	if !math.IsInf(low, 0) {
		low = math.Ceil(steps(low, d.q)) * d.q
	}
	if !math.IsInf(high, 0) {
		high = math.Floor(steps(high, d.q)) * d.q
	}
	if d.sampler == SamplerLogUniform && low <= 0 {
		low = d.low
	}
	return low, high
}

// steps returns x/q, snapped to the nearest integer when within tolerance so
// that bounds such as 3.2 with q=0.2 are not pushed a full step inward.
func steps(x, q float64) float64 {
	r := x / q
	if n := math.Round(r); math.Abs(r-n) <= quantTolerance {
		return n
	}
	return r
}

func (d *Domain) draw(src rng.Source) float64 {
	low, high := d.bounds()
	switch d.sampler {
	case SamplerLogUniform:
		u := distuv.Uniform{Min: math.Log(low), Max: math.Log(high), Src: src}
		return math.Exp(u.Rand())
	case SamplerNormal:
		n := distuv.Normal{Mu: d.mean, Sigma: d.sd, Src: src}
		return n.Rand()
	}
	if d.kind == KindInteger {
		if high <= low {
			return low
		}
		return low + float64(src.Int64N(int64(high-low)))
	}
	u := distuv.Uniform{Min: low, Max: high, Src: src}
	return u.Rand()
}

// quantize rounds x half-to-even onto the q grid and clamps it into the
// original bounds, both ends inclusive.
func (d *Domain) quantize(x float64) float64 {
	if d.q != 0 {
		x = math.RoundToEven(x/d.q) * d.q
	}
	return math.Min(math.Max(x, d.low), d.high)
}

func (d *Domain) sampleFloat(src rng.Source) float64 {
	x := d.draw(src)
	if d.q == 0 && d.sampler != SamplerNormal {
		return x
	}
	return d.quantize(x)
}

func (d *Domain) sampleInteger(src rng.Source) int {
	if d.q == 0 && (d.sampler == SamplerNone || d.sampler == SamplerUniform) {
		return int(d.ilow + src.Int64N(d.ihigh-d.ilow))
	}
	x := d.draw(src)
	if d.sampler == SamplerLogUniform {
		x = math.Floor(x)
	}
	if d.q != 0 {
		x = d.quantize(x)
	}
	return int(x)
}
