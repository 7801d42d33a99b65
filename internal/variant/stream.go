// Package variant expands a search space into concrete configurations.
//
// A spec is a nested map whose leaves are literals, *space.Domain values or the
// declarative {"grid_search": [...]} form. For every outer sample the generator
// enumerates all grid combinations (the last grid dimension in walk order varies
// fastest) and resolves the sampled dimensions for each of them. Dependent
// values are resolved after plain ones and see them through a space.Config.
package variant

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/banshee-data/variantgen/internal/space"
)

const (
	// maxResolutionPasses bounds the fixed-point iteration over dependent values.
	maxResolutionPasses = 20

	// maxGridCombinations caps one outer sample's grid expansion.
	maxGridCombinations = 1_000_000
)

// Variant is one resolved configuration together with the values chosen for
// every grid and sampled dimension.
type Variant struct {
	Vars   []Leaf
	Config map[string]any
}

// EvaluatedParams returns the chosen values keyed by their "/"-joined path.
func (v Variant) EvaluatedParams() map[string]any {
	out := make(map[string]any, len(v.Vars))
	for _, l := range v.Vars {
		out[l.Path.String()] = l.Value
	}
	return out
}

// Stream produces the variants of a spec lazily. Each Next resolves a single
// grid combination; at most one variant is held back by HasNext.
// A Stream is not safe for concurrent use.
type Stream struct {
	spec    map[string]any
	samples int
	started int
	cur     *cursor
	peek    *Variant
	err     error
	o       options
}

// cursor walks the grid combinations of one expansion in odometer order. sub
// expands the current combination further when its grid or sampled values
// carry domains of their own.
type cursor struct {
	spec      map[string]any
	grids     []GridVar
	stride    []int
	total     int
	next      int
	trivial   bool
	fixed     []Leaf
	toResolve []DomainVar
	perCombo  bool
	resolved  []Leaf
	sub       *cursor
}

// NewStream validates spec and returns a stream of samples outer samples.
func NewStream(spec map[string]any, samples int, opts ...Option) (*Stream, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}
	if samples < 0 {
		return nil, fmt.Errorf("number of samples must not be negative, got %d", samples)
	}
	if _, err := gridSize(ParseSpecVars(spec).Grids); err != nil {
		return nil, err
	}
	return &Stream{
		spec:    space.DeepCopy(spec).(map[string]any),
		samples: samples,
		o:       newOptions(opts),
	}, nil
}

// Generate returns a stream of a single outer sample.
func Generate(spec map[string]any, opts ...Option) (*Stream, error) {
	return NewStream(spec, 1, opts...)
}

// Count returns the number of variants the stream produces in total, counting
// only the top-level grid dimensions.
func (s *Stream) Count() int {
	return CountVariants(s.spec, s.samples)
}

// CountVariants returns samples times the number of top-level grid combinations.
func CountVariants(spec map[string]any, samples int) int {
	n, err := gridSize(ParseSpecVars(spec).Grids)
	if err != nil {
		return 0
	}
	return samples * n
}

// HasNext reports whether Next will return a variant or an error.
func (s *Stream) HasNext() bool {
	if s.peek == nil && s.err == nil {
		v, ok, err := s.pull()
		switch {
		case err != nil:
			s.err = err
		case ok:
			s.peek = &v
		}
	}
	return s.peek != nil || s.err != nil
}

// Next returns the next variant. A resolution error ends the stream. After the
// last variant Next returns ErrExhausted.
func (s *Stream) Next() (Variant, error) {
	if !s.HasNext() {
		return Variant{}, ErrExhausted
	}
	if s.err != nil {
		err := s.err
		s.err = nil
		s.cur = nil
		s.started = s.samples
		return Variant{}, err
	}
	v := *s.peek
	s.peek = nil
	return v, nil
}

// All iterates the remaining variants. Iteration stops after the first error.
func (s *Stream) All() iter.Seq2[Variant, error] {
	return func(yield func(Variant, error) bool) {
		for s.HasNext() {
			v, err := s.Next()
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// pull resolves the next variant, starting a new outer sample when the
// current one is used up.
func (s *Stream) pull() (Variant, bool, error) {
	for {
		if s.cur == nil {
			if s.started >= s.samples {
				return Variant{}, false, nil
			}
			s.started++
			c, err := s.newCursor(space.DeepCopy(s.spec).(map[string]any))
			if err != nil {
				return Variant{}, false, err
			}
			s.cur = c
		}
		v, ok, err := s.advance(s.cur)
		if err != nil || ok {
			return v, ok, err
		}
		s.cur = nil
	}
}

// newCursor prepares the expansion of spec, which it takes ownership of. Under
// constant grid search the non-grid domains are sampled here, once for every
// combination; values that depend on a grid dimension fail and are left to be
// resolved per combination.
func (s *Stream) newCursor(spec map[string]any) (*cursor, error) {
	vars := ParseSpecVars(spec)
	if len(vars.Domains) == 0 && len(vars.Grids) == 0 {
		return &cursor{spec: spec, total: 1, trivial: true}, nil
	}

	c := &cursor{spec: spec, grids: vars.Grids, toResolve: vars.Domains, perCombo: true}
	if s.o.constantGrid {
		resolved, pending, err := s.resolveDomains(spec, vars.Domains, true)
		if err != nil {
			return nil, err
		}
		c.fixed, c.toResolve = resolved, pending
		c.perCombo = len(pending) > 0
	}

	total, err := gridSize(vars.Grids)
	if err != nil {
		return nil, err
	}
	c.total = total
	c.stride = make([]int, len(vars.Grids))
	repeat := 1
	for dim := len(vars.Grids) - 1; dim >= 0; dim-- {
		c.stride[dim] = repeat
		repeat *= len(vars.Grids[dim].Values)
	}
	return c, nil
}

// advance returns the next variant of c, or false once every combination has
// been produced.
func (s *Stream) advance(c *cursor) (Variant, bool, error) {
	for {
		if c.sub != nil {
			sub, ok, err := s.advance(c.sub)
			if err != nil {
				return Variant{}, false, err
			}
			if ok {
				return c.variant(sub)
			}
			c.sub = nil
		}
		if c.next >= c.total {
			return Variant{}, false, nil
		}
		i := c.next
		c.next++
		if c.trivial {
			return Variant{Config: c.spec}, true, nil
		}

		combo := space.DeepCopy(c.spec).(map[string]any)
		for dim, g := range c.grids {
			idx := (i / c.stride[dim]) % len(g.Values)
			if err := assignValue(combo, g.Path, space.DeepCopy(g.Values[idx])); err != nil {
				return Variant{}, false, err
			}
		}

		c.resolved = c.fixed
		if c.perCombo {
			r, _, err := s.resolveDomains(combo, c.toResolve, false)
			if err != nil {
				return Variant{}, false, err
			}
			c.resolved = append(slices.Clip(c.fixed), r...)
		}

		sub, err := s.newCursor(combo)
		if err != nil {
			return Variant{}, false, err
		}
		c.sub = sub
	}
}

// variant combines the grid and sampled values of the current combination with
// one variant of its sub-expansion. Sampled values are copied so that no two
// variants share a map or list.
func (c *cursor) variant(sub Variant) (Variant, bool, error) {
	leaves := make([]Leaf, 0, len(c.grids)+len(c.resolved)+len(sub.Vars))
	for _, g := range c.grids {
		v, err := getValue(sub.Config, g.Path)
		if err != nil {
			return Variant{}, false, err
		}
		leaves = append(leaves, Leaf{Path: g.Path, Value: v})
	}
	for _, l := range c.resolved {
		leaves = append(leaves, Leaf{Path: l.Path, Value: space.DeepCopy(l.Value)})
	}
	leaves = append(leaves, sub.Vars...)
	return Variant{Vars: sortLeaves(leaves), Config: sub.Config}, true, nil
}

// resolveDomains samples domains into spec in place. Plain domains go first and
// dependent functions after them; values that hit an unresolved dependency are
// retried on the next pass. With allowFail, domains that cannot be resolved are
// returned as pending instead of failing.
func (s *Stream) resolveDomains(spec map[string]any, domains []DomainVar, allowFail bool) ([]Leaf, []DomainVar, error) {
	pending := make([]DomainVar, 0, len(domains))
	for _, dv := range domains {
		if dv.Domain.Kind() != space.KindFunction {
			pending = append(pending, dv)
		}
	}
	for _, dv := range domains {
		if dv.Domain.Kind() == space.KindFunction {
			pending = append(pending, dv)
		}
	}

	cfg := space.NewConfig(spec)
	var resolved []Leaf
	var failed []DomainVar
	var lastErr error
	for pass := 0; len(pending) > 0 && pass < maxResolutionPasses; pass++ {
		var retry []DomainVar
		for _, dv := range pending {
			v, err := dv.Domain.Sample(s.o.src, cfg)
			switch {
			case err == nil:
				if err := assignValue(spec, dv.Path, v); err != nil {
					return nil, nil, err
				}
				resolved = append(resolved, Leaf{Path: dv.Path, Value: v})
			case errors.Is(err, space.ErrUnresolved):
				retry = append(retry, dv)
				lastErr = err
			case allowFail:
				failed = append(failed, dv)
			default:
				return nil, nil, fmt.Errorf("failed to evaluate %s: %w", dv.Path, err)
			}
		}
		stuck := len(retry) == len(pending)
		pending = retry
		if stuck {
			break
		}
	}

	if len(pending) > 0 {
		if allowFail {
			return resolved, append(failed, pending...), nil
		}
		paths := make([]string, len(pending))
		for i, dv := range pending {
			paths[i] = dv.Path.String()
		}
		return nil, nil, &RecursiveDependencyError{Paths: paths, Err: lastErr}
	}
	return resolved, failed, nil
}
