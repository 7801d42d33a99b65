package search

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/variantgen/internal/rng"
	"github.com/banshee-data/variantgen/internal/space"
)

type logCapture struct {
	lines []string
}

func (l *logCapture) logf(format string, v ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func advancedSpace() map[string]any {
	return map[string]any{
		"grid_1": space.GridSearch("a", "b", "c", "d"),
		"grid_2": space.GridSearch("x", "y", "z"),
		"nested": map[string]any{
			"random": space.Uniform(2.0, 10.0),
			"dependent": space.SampleFrom(func(c space.Config) (any, error) {
				r, err := c.Float("nested", "random")
				return -1.0 * r, err
			}),
		},
	}
}

// drain pulls every trial, completing each one immediately.
func drain(t *testing.T, s *Searcher) []*Trial {
	t.Helper()
	var out []*Trial
	for !s.IsFinished() {
		trial, err := s.NextTrial()
		require.NoError(t, err)
		require.NotNil(t, trial)
		s.OnTrialComplete(trial.ID)
		out = append(out, trial)
	}
	return out
}

func TestPointsToEvaluateTotals(t *testing.T) {
	testCases := []struct {
		name   string
		points []map[string]any
		want   int
	}{
		{"pin first grid", []map[string]any{{"grid_1": "b"}}, 1*3 + 5*12},
		{"pin second grid", []map[string]any{{"grid_2": "z"}}, 1*4 + 5*12},
		{"pin both grids", []map[string]any{{"grid_1": "a", "grid_2": "y"}}, 1 + 5*12},
		{
			name: "all points",
			points: []map[string]any{
				{"grid_1": "b"},
				{"grid_2": "z"},
				{"grid_1": "a", "grid_2": "y"},
				{"nested": map[string]any{"random": 8.0}},
			},
			want: 1*3 + 1*4 + 1 + 3*12,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(Options{PointsToEvaluate: tc.points, Random: rng.Seed(0)})
			require.NoError(t, s.AddConfigurations(Experiment{Name: "exp", Config: advancedSpace(), NumSamples: 6}))
			assert.Equal(t, tc.want, s.TotalSamples())

			trials := drain(t, s)
			assert.Len(t, trials, tc.want)
		})
	}
}

func TestPointsToEvaluateOrder(t *testing.T) {
	s := New(Options{
		PointsToEvaluate: []map[string]any{
			{"grid_1": "b"},
			{"grid_2": "z"},
			{"grid_1": "a", "grid_2": "y"},
			{"nested": map[string]any{"random": 8.0}},
		},
		Random: rng.Seed(0),
	})
	require.NoError(t, s.AddConfigurations(Experiment{Config: advancedSpace(), NumSamples: 6}))

	trials := drain(t, s)
	require.Len(t, trials, 44)

	for _, trial := range trials[0:3] {
		assert.Equal(t, "b", trial.Config["grid_1"])
	}
	for _, trial := range trials[3:7] {
		assert.Equal(t, "z", trial.Config["grid_2"])
	}
	assert.Equal(t, "a", trials[7].Config["grid_1"])
	assert.Equal(t, "y", trials[7].Config["grid_2"])

	nested := trials[8].Config["nested"].(map[string]any)
	assert.Equal(t, 8.0, nested["random"])
	assert.Equal(t, -8.0, nested["dependent"])
}

func TestPointsDoNotAlias(t *testing.T) {
	point := map[string]any{"nested": map[string]any{"random": 8.0}}
	s := New(Options{PointsToEvaluate: []map[string]any{point}, Random: rng.Seed(0)})
	require.NoError(t, s.AddConfigurations(
		Experiment{Name: "one", Config: advancedSpace(), NumSamples: 1},
		Experiment{Name: "two", Config: advancedSpace(), NumSamples: 1},
	))

	trials := drain(t, s)
	require.Len(t, trials, 24)
	trials[0].Config["nested"].(map[string]any)["random"] = 1.0
	assert.Equal(t, 8.0, point["nested"].(map[string]any)["random"])
	assert.Equal(t, 8.0, trials[12].Config["nested"].(map[string]any)["random"])
}

func TestFixedParamWarning(t *testing.T) {
	var log logCapture
	s := New(Options{
		PointsToEvaluate: []map[string]any{{"a": 2, "b": 2}},
		Logf:             log.logf,
	})
	require.NoError(t, s.AddConfigurations(Experiment{
		Config:     map[string]any{"a": 1, "b": space.RandInt(0, 3)},
		NumSamples: 1,
	}))

	require.Equal(t, []string{
		"WARNING: Pre-set value `2` is not equal to the value of parameter `a`: 1",
	}, log.lines)

	trials := drain(t, s)
	require.Len(t, trials, 1)
	assert.Equal(t, 2, trials[0].Config["a"])
	assert.Equal(t, 2, trials[0].Config["b"])
}

func TestUnknownPointKeyFailsFast(t *testing.T) {
	s := New(Options{PointsToEvaluate: []map[string]any{{"missing": 1}}})
	err := s.AddConfigurations(Experiment{Name: "exp", Config: advancedSpace(), NumSamples: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
	assert.Equal(t, StatePending, s.State())
	assert.Zero(t, s.TotalSamples())
}

func TestGridOrderAndTags(t *testing.T) {
	s := New(Options{TrialIDPrefix: "test"})
	require.NoError(t, s.AddConfigurations(Experiment{
		Name:       "grid",
		Config:     map[string]any{"x": space.GridSearch(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)},
		NumSamples: 1,
	}))
	assert.Equal(t, 10, s.TotalSamples())

	trials := drain(t, s)
	require.Len(t, trials, 10)
	for i, trial := range trials {
		assert.Equal(t, i, trial.Config["x"])
		assert.Equal(t, fmt.Sprintf("test_%05d", i), trial.ID)
		assert.Equal(t, fmt.Sprintf("%d_x=%d", i, i), trial.ExperimentTag)
		assert.Equal(t, "grid", trial.ExperimentName)
		assert.Equal(t, map[string]any{"x": i}, trial.EvaluatedParams)
	}
}

func TestTagWithoutVars(t *testing.T) {
	s := New(Options{TrialIDPrefix: "test"})
	require.NoError(t, s.AddConfigurations(Experiment{Config: map[string]any{"a": 1}, NumSamples: 2}))

	trials := drain(t, s)
	require.Len(t, trials, 2)
	assert.Equal(t, "0", trials[0].ExperimentTag)
	assert.Equal(t, "1", trials[1].ExperimentTag)
	assert.Empty(t, trials[0].EvaluatedParams)
}

func TestDefaultPrefix(t *testing.T) {
	s := New(Options{})
	require.NoError(t, s.AddConfigurations(Experiment{Config: map[string]any{}, NumSamples: 1}))

	trial, err := s.NextTrial()
	require.NoError(t, err)
	require.NotNil(t, trial)
	prefix, counter, ok := strings.Cut(trial.ID, "_")
	require.True(t, ok)
	assert.Len(t, prefix, 5)
	assert.Equal(t, "00000", counter)
}

func TestCounterContinuesAcrossCalls(t *testing.T) {
	s := New(Options{TrialIDPrefix: "t"})
	require.NoError(t, s.AddConfigurations(Experiment{Config: map[string]any{"x": space.GridSearch(1, 2)}, NumSamples: 1}))
	first, err := s.NextTrial()
	require.NoError(t, err)
	assert.Equal(t, "t_00000", first.ID)

	require.NoError(t, s.AddConfigurations(Experiment{Config: map[string]any{"y": space.GridSearch(1, 2, 3)}, NumSamples: 1}))
	assert.Equal(t, 5, s.TotalSamples())

	rest := drain(t, s)
	require.Len(t, rest, 4)
	assert.Equal(t, "t_00004", rest[3].ID)
	assert.Equal(t, 3, rest[3].Config["y"])
}

func TestConstantGridSearch(t *testing.T) {
	s := New(Options{ConstantGridSearch: true, Random: rng.Seed(7)})
	require.NoError(t, s.AddConfigurations(Experiment{
		Config: map[string]any{
			"grid":   space.GridSearch(1, 2, 3),
			"random": space.Uniform(0, 1),
		},
		NumSamples: 2,
	}))

	trials := drain(t, s)
	require.Len(t, trials, 6)
	for i := 0; i < 6; i += 3 {
		r := trials[i].Config["random"]
		assert.Equal(t, r, trials[i+1].Config["random"])
		assert.Equal(t, r, trials[i+2].Config["random"])
	}
	assert.NotEqual(t, trials[0].Config["random"], trials[3].Config["random"])
}

func TestMaxConcurrent(t *testing.T) {
	s := New(Options{MaxConcurrent: 2})
	require.NoError(t, s.AddConfigurations(Experiment{Config: map[string]any{"x": space.GridSearch(1, 2, 3)}, NumSamples: 1}))

	a, err := s.NextTrial()
	require.NoError(t, err)
	require.NotNil(t, a)
	b, err := s.NextTrial()
	require.NoError(t, err)
	require.NotNil(t, b)

	blocked, err := s.NextTrial()
	require.NoError(t, err)
	assert.Nil(t, blocked)
	assert.False(t, s.IsFinished())
	assert.Equal(t, 2, s.LiveTrials())

	s.OnTrialComplete(a.ID)
	c, err := s.NextTrial()
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 3, c.Config["x"])
	assert.True(t, s.IsFinished())
}

func TestSeedReproducibility(t *testing.T) {
	run := func(mode rng.Mode) []any {
		s := New(Options{Random: rng.Seed(1234), RNG: rng.Provider{Mode: mode}})
		require.NoError(t, s.AddConfigurations(Experiment{
			Config: map[string]any{
				"a": space.Uniform(0, 1),
				"b": space.Choice("x", "y", "z"),
				"c": space.RandN(0, 1),
			},
			NumSamples: 5,
		}))
		var out []any
		for _, trial := range drain(t, s) {
			out = append(out, trial.Config["a"], trial.Config["b"], trial.Config["c"])
		}
		return out
	}

	for _, mode := range []rng.Mode{rng.ModeModern, rng.ModeLegacy} {
		t.Run(mode.String(), func(t *testing.T) {
			assert.Equal(t, run(mode), run(mode))
		})
	}
	assert.NotEqual(t, run(rng.ModeModern), run(rng.ModeLegacy))
}

func TestLifecycle(t *testing.T) {
	s := New(Options{})
	assert.Equal(t, StatePending, s.State())
	assert.False(t, s.IsFinished())

	trial, err := s.NextTrial()
	require.NoError(t, err)
	assert.Nil(t, trial)

	require.NoError(t, s.AddConfigurations(Experiment{Config: map[string]any{"x": space.GridSearch(1, 2)}, NumSamples: 1}))
	assert.Equal(t, StateGenerating, s.State())

	drain(t, s)
	assert.Equal(t, StateExhausted, s.State())

	trial, err = s.NextTrial()
	require.NoError(t, err)
	assert.Nil(t, trial)

	err = s.AddConfigurations(Experiment{Config: map[string]any{}, NumSamples: 1})
	assert.True(t, errors.Is(err, ErrExhausted))
}

func TestZeroSamplesExhaustsImmediately(t *testing.T) {
	s := New(Options{})
	require.NoError(t, s.AddConfigurations(Experiment{Config: advancedSpace(), NumSamples: 0}))
	assert.Zero(t, s.TotalSamples())
	assert.True(t, s.IsFinished())
}

func TestNegativeSamplesRejected(t *testing.T) {
	s := New(Options{})
	require.Error(t, s.AddConfigurations(Experiment{Config: advancedSpace(), NumSamples: -1}))
}

func TestResolutionErrorSurfaces(t *testing.T) {
	boom := errors.New("boom")
	s := New(Options{})
	require.NoError(t, s.AddConfigurations(Experiment{
		Name: "bad",
		Config: map[string]any{
			"f": space.SampleFrom(func(space.Config) (any, error) { return nil, boom }),
		},
		NumSamples: 2,
	}))

	_, err := s.NextTrial()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `experiment "bad"`)
	assert.True(t, s.IsFinished())
}
