// Package search turns experiments into a pull-based queue of trials.
//
// A Searcher first emits the trials of every point to evaluate (each one a
// partial configuration pinned into the search space) and then the generic
// variants of the remaining samples, experiment by experiment in the order they
// were added. It holds no locks; callers that pull from several goroutines must
// serialise access themselves.
package search

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/banshee-data/variantgen/internal/monitoring"
	"github.com/banshee-data/variantgen/internal/rng"
	"github.com/banshee-data/variantgen/internal/space"
	"github.com/banshee-data/variantgen/internal/variant"
)

// ErrExhausted is returned by AddConfigurations once the searcher has emitted
// every trial.
var ErrExhausted = errors.New("searcher is exhausted")

// State is the lifecycle stage of a Searcher.
type State int

const (
	StatePending State = iota
	StateGenerating
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateGenerating:
		return "generating"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Experiment is a search space plus the number of outer samples to draw from it.
type Experiment struct {
	Name       string
	Config     map[string]any
	NumSamples int
}

// Trial is one configuration handed to the execution layer.
type Trial struct {
	ID              string         `json:"trial_id"`
	ExperimentName  string         `json:"experiment,omitempty"`
	ExperimentTag   string         `json:"experiment_tag"`
	Config          map[string]any `json:"config"`
	EvaluatedParams map[string]any `json:"evaluated_params,omitempty"`
}

// Options configures a Searcher.
type Options struct {
	// PointsToEvaluate are partial configurations emitted before any generic
	// sample, for every experiment added.
	PointsToEvaluate []map[string]any

	ConstantGridSearch bool

	// MaxConcurrent limits the number of trials that have been handed out and
	// not completed. Zero means no limit.
	MaxConcurrent int

	// Random selects the random input; the zero value draws from the shared
	// state of RNG.
	Random rng.State
	RNG    rng.Provider

	// TrialIDPrefix replaces the random five character prefix of trial ids.
	TrialIDPrefix string

	Logf monitoring.LogFunc
}

// Searcher is the trial queue.
type Searcher struct {
	opts    Options
	src     rng.Source
	prefix  string
	queue   []*trialIterator
	total   int
	counter int
	live    map[string]struct{}
	state   State
}

// New returns a Searcher. The random source is resolved once here and shared by
// every experiment added later.
func New(opts Options) *Searcher {
	prefix := opts.TrialIDPrefix
	if prefix == "" {
		prefix = uuid.New().String()[:5]
	}
	return &Searcher{
		opts:   opts,
		src:    opts.RNG.Source(opts.Random),
		prefix: prefix + "_",
		live:   make(map[string]struct{}),
	}
}

// trialIterator emits the trials of one experiment: one stream per point to
// evaluate, then the generic stream.
type trialIterator struct {
	exp     Experiment
	pending []*variant.Stream
	current *variant.Stream
}

func (it *trialIterator) stream() *variant.Stream {
	for it.current == nil || !it.current.HasNext() {
		if len(it.pending) == 0 {
			it.current = nil
			return nil
		}
		it.current, it.pending = it.pending[0], it.pending[1:]
	}
	return it.current
}

func (s *Searcher) streamOptions() []variant.Option {
	return []variant.Option{
		variant.WithSource(s.src),
		variant.WithConstantGridSearch(s.opts.ConstantGridSearch),
		variant.WithLogger(s.opts.Logf),
	}
}

// AddConfigurations registers experiments. Every spec and every point to
// evaluate is checked before anything is added, so a malformed experiment fails
// here rather than while trials are being pulled.
func (s *Searcher) AddConfigurations(exps ...Experiment) error {
	if s.refresh() == StateExhausted {
		return ErrExhausted
	}

	iters := make([]*trialIterator, 0, len(exps))
	added := 0
	for _, exp := range exps {
		if exp.NumSamples < 0 {
			return fmt.Errorf("experiment %q: num_samples must not be negative, got %d", exp.Name, exp.NumSamples)
		}
		spec := exp.Config
		if spec == nil {
			spec = map[string]any{}
		}

		it := &trialIterator{exp: exp}
		for i, point := range s.opts.PointsToEvaluate {
			st, err := variant.Preset(spec, space.DeepCopy(point).(map[string]any), s.streamOptions()...)
			if err != nil {
				return fmt.Errorf("experiment %q: point %d: %w", exp.Name, i, err)
			}
			it.pending = append(it.pending, st)
			added += st.Count()
		}

		remaining := max(exp.NumSamples-len(s.opts.PointsToEvaluate), 0)
		st, err := variant.NewStream(spec, remaining, s.streamOptions()...)
		if err != nil {
			return fmt.Errorf("experiment %q: %w", exp.Name, err)
		}
		it.pending = append(it.pending, st)
		added += st.Count()

		iters = append(iters, it)
	}

	s.queue = append(s.queue, iters...)
	s.total += added
	s.state = StateGenerating
	return nil
}

// TotalSamples returns the number of trials expected from every experiment added
// so far.
func (s *Searcher) TotalSamples() int { return s.total }

// refresh drops drained experiments and moves to StateExhausted once none remain.
func (s *Searcher) refresh() State {
	for len(s.queue) > 0 && s.queue[0].stream() == nil {
		s.queue = s.queue[1:]
	}
	if len(s.queue) == 0 && s.state == StateGenerating {
		s.state = StateExhausted
	}
	return s.state
}

// NextTrial returns the next trial, or nil when the searcher is exhausted or
// MaxConcurrent trials are live. Pulling from an exhausted searcher is not an
// error.
func (s *Searcher) NextTrial() (*Trial, error) {
	if s.opts.MaxConcurrent > 0 && len(s.live) >= s.opts.MaxConcurrent {
		return nil, nil
	}
	if s.refresh() != StateGenerating {
		return nil, nil
	}

	it := s.queue[0]
	v, err := it.stream().Next()
	if err != nil {
		return nil, fmt.Errorf("experiment %q: %w", it.exp.Name, err)
	}

	trial := s.newTrial(it.exp, v)
	s.live[trial.ID] = struct{}{}
	return trial, nil
}

func (s *Searcher) newTrial(exp Experiment, v variant.Variant) *Trial {
	n := s.counter
	s.counter++

	tag := strconv.Itoa(n)
	if len(v.Vars) > 0 {
		tag += "_" + variant.FormatVars(v.Vars)
	}
	return &Trial{
		ID:              fmt.Sprintf("%s%05d", s.prefix, n),
		ExperimentName:  exp.Name,
		ExperimentTag:   tag,
		Config:          v.Config,
		EvaluatedParams: v.EvaluatedParams(),
	}
}

// IsFinished reports whether every added experiment has been fully emitted. A
// searcher with no experiments is not finished.
func (s *Searcher) IsFinished() bool {
	return s.refresh() == StateExhausted
}

// State returns the current lifecycle stage.
func (s *Searcher) State() State {
	return s.refresh()
}

// OnTrialComplete frees the concurrency slot held by the trial with id.
func (s *Searcher) OnTrialComplete(id string) {
	delete(s.live, id)
}

// LiveTrials returns the number of trials handed out and not yet completed.
func (s *Searcher) LiveTrials() int { return len(s.live) }
