// Package rng normalises the three ways a caller can supply randomness (no seed, an
// integer seed, or a pre-built generator) into a single Source.
//
// Two interchangeable strategies exist. ModeLegacy wraps math/rand and is what the
// process-wide Shared state uses. ModeModern wraps a math/rand/v2 PCG generator. The mode
// is chosen once, on the Provider, and never consulted again while sampling.
package rng

import (
	mathrand "math/rand"
	"math/rand/v2"
	"sync"
	"time"
)

// pcgStream is the fixed second PCG word used for every modern generator so that a seed
// alone identifies the sequence.
const pcgStream = 0x9e3779b97f4a7c15

// Source is the sampling interface used by every domain sampler.
// Uint64 makes any Source usable as a math/rand/v2 Source (and so as a gonum Src).
type Source interface {
	Float64() float64
	Int64N(n int64) int64
	IntN(n int) int
	NormFloat64() float64
	Uint64() uint64
}

// Mode selects the generator built for integer seeds.
type Mode int

const (
	ModeModern Mode = iota
	ModeLegacy
)

func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "legacy"
	default:
		return "modern"
	}
}

// ParseMode maps "legacy"/"modern" (or "") to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "modern":
		return ModeModern, true
	case "legacy":
		return ModeLegacy, true
	}
	return ModeModern, false
}

// legacySource adapts a math/rand generator to Source.
type legacySource struct {
	r *mathrand.Rand
}

func (s *legacySource) Float64() float64 { return s.r.Float64() }
func (s *legacySource) Int64N(n int64) int64 { return s.r.Int63n(n) }
func (s *legacySource) IntN(n int) int { return s.r.Intn(n) }
func (s *legacySource) NormFloat64() float64 { return s.r.NormFloat64() }
func (s *legacySource) Uint64() uint64 { return s.r.Uint64() }
func (s *legacySource) seed(seed int64) { s.r.Seed(seed) }

func newLegacySource(seed int64) *legacySource {
	return &legacySource{r: mathrand.New(mathrand.NewSource(seed))}
}

// NewLegacy returns the generator that Seed(seed) resolves to under ModeLegacy.
func NewLegacy(seed int64) Source {
	return newLegacySource(seed)
}

// WrapLegacy adapts a caller-owned math/rand generator.
func WrapLegacy(r *mathrand.Rand) Source {
	return &legacySource{r: r}
}

// NewModern returns the generator that Seed(seed) resolves to under ModeModern.
// *rand.Rand from math/rand/v2 satisfies Source directly.
func NewModern(seed int64) Source {
	return rand.New(rand.NewPCG(uint64(seed), pcgStream))
}

// Shared is process-scoped legacy random state. It is seeded by the caller before
// generation starts and only advanced by draws afterwards. After Seed(n) it produces the
// same sequence as NewLegacy(n).
type Shared struct {
	mu  sync.Mutex
	src *legacySource
}

// NewShared returns shared state seeded with seed.
func NewShared(seed int64) *Shared {
	return &Shared{src: newLegacySource(seed)}
}

// Global is the default shared state used by callers that supply no seed.
var Global = NewShared(time.Now().UnixNano())

// Seed resets the shared state.
func (s *Shared) Seed(seed int64) {
	s.mu.Lock()
	s.src.seed(seed)
	s.mu.Unlock()
}

func (s *Shared) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Float64()
}

func (s *Shared) Int64N(n int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int64N(n)
}

func (s *Shared) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.IntN(n)
}

func (s *Shared) NormFloat64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.NormFloat64()
}

func (s *Shared) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

type stateKind int

const (
	stateUnset stateKind = iota
	stateSeed
	stateGenerator
)

// State is the caller's randomness input: unset, an integer seed, or a generator.
// The zero value is Unset.
type State struct {
	kind stateKind
	seed int64
	gen  Source
}

// Unset draws from the provider's shared state.
func Unset() State { return State{} }

// Seed builds a private generator from n.
func Seed(n int64) State { return State{kind: stateSeed, seed: n} }

// Generator uses src directly. A nil src is treated as Unset.
func Generator(src Source) State {
	if src == nil {
		return State{}
	}
	return State{kind: stateGenerator, gen: src}
}

// IsSet reports whether the state carries a seed or a generator.
func (s State) IsSet() bool { return s.kind != stateUnset }

// Provider resolves States to Sources for one mode.
type Provider struct {
	Mode Mode
	// Shared backs Unset states. Nil means Global.
	Shared *Shared
}

// Default is the modern-mode provider backed by Global.
var Default = Provider{Mode: ModeModern}

// Source resolves st.
func (p Provider) Source(st State) Source {
	switch st.kind {
	case stateSeed:
		if p.Mode == ModeLegacy {
			return NewLegacy(st.seed)
		}
		return NewModern(st.seed)
	case stateGenerator:
		return st.gen
	}
	if p.Shared != nil {
		return p.Shared
	}
	return Global
}
