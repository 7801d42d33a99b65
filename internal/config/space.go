package config

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/variantgen/internal/space"
)

// domainBuilder turns the arguments of a declarative domain into a Domain.
type domainBuilder func(args any) (*space.Domain, error)

// domainKeywords maps the single key of a declarative domain to its builder.
// {"uniform": [0, 1]} becomes space.Uniform(0, 1).
var domainKeywords = map[string]domainBuilder{
	"uniform":     floats(2, func(a []float64) *space.Domain { return space.Uniform(a[0], a[1]) }),
	"quniform":    floats(3, func(a []float64) *space.Domain { return space.QUniform(a[0], a[1], a[2]) }),
	"loguniform":  floats(2, func(a []float64) *space.Domain { return space.LogUniform(a[0], a[1]) }),
	"qloguniform": floats(3, func(a []float64) *space.Domain { return space.QLogUniform(a[0], a[1], a[2]) }),
	"randn":       floats(2, func(a []float64) *space.Domain { return space.RandN(a[0], a[1]) }),
	"qrandn":      floats(3, func(a []float64) *space.Domain { return space.QRandN(a[0], a[1], a[2]) }),
	"randint":     ints(2, func(a []int64) *space.Domain { return space.RandInt(a[0], a[1]) }),
	"qrandint":    ints(3, func(a []int64) *space.Domain { return space.QRandInt(a[0], a[1], a[2]) }),
	"lograndint":  ints(2, func(a []int64) *space.Domain { return space.LogRandInt(a[0], a[1]) }),
	"qlograndint": ints(3, func(a []int64) *space.Domain { return space.QLogRandInt(a[0], a[1], a[2]) }),
	"choice":      valueList(space.Choice),
	"grid_search": valueList(space.GridSearch),
	"grid_range": func(args any) (*space.Domain, error) {
		s, ok := args.(string)
		if !ok {
			return nil, fmt.Errorf("expected a min:max:step string, got %T", args)
		}
		rs, err := ParseRangeSpec(s)
		if err != nil {
			return nil, err
		}
		vals, err := rs.Values()
		if err != nil {
			return nil, err
		}
		out := make([]any, len(vals))
		for i, v := range vals {
			out[i] = v
		}
		return space.GridSearch(out...), nil
	},
	"grid_int_range": func(args any) (*space.Domain, error) {
		s, ok := args.(string)
		if !ok {
			return nil, fmt.Errorf("expected a min:max:step string, got %T", args)
		}
		rs, err := ParseIntRangeSpec(s)
		if err != nil {
			return nil, err
		}
		vals, err := rs.Values()
		if err != nil {
			return nil, err
		}
		out := make([]any, len(vals))
		for i, v := range vals {
			out[i] = v
		}
		return space.GridSearch(out...), nil
	},
}

func list(args any, n int) ([]any, error) {
	l, ok := args.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of %d numbers, got %T", n, args)
	}
	if len(l) != n {
		return nil, fmt.Errorf("expected %d arguments, got %d", n, len(l))
	}
	return l, nil
}

func floats(n int, build func([]float64) *space.Domain) domainBuilder {
	return func(args any) (*space.Domain, error) {
		l, err := list(args, n)
		if err != nil {
			return nil, err
		}
		a := make([]float64, n)
		for i, v := range l {
			f, ok := space.Number(v)
			if !ok {
				return nil, fmt.Errorf("argument %d: expected a number, got %T", i, v)
			}
			a[i] = f
		}
		return build(a), nil
	}
}

func ints(n int, build func([]int64) *space.Domain) domainBuilder {
	return func(args any) (*space.Domain, error) {
		l, err := list(args, n)
		if err != nil {
			return nil, err
		}
		a := make([]int64, n)
		for i, v := range l {
			f, ok := space.Number(v)
			if !ok || f != math.Trunc(f) {
				return nil, fmt.Errorf("argument %d: expected an integer, got %v", i, v)
			}
			a[i] = int64(f)
		}
		return build(a), nil
	}
}

func valueList(build func(...any) *space.Domain) domainBuilder {
	return func(args any) (*space.Domain, error) {
		l, ok := args.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a list of values, got %T", args)
		}
		if len(l) == 0 {
			return nil, fmt.Errorf("expected at least one value")
		}
		return build(l...), nil
	}
}

// BuildSpace converts a decoded configuration tree into a search space. Maps
// with a single domain keyword become domains; everything else is kept as a
// literal. Values inside choice and grid lists are converted too, so nested
// spaces are allowed.
func BuildSpace(raw map[string]any) (map[string]any, error) {
	out, err := build(raw, nil)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func build(v any, path []string) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 1 {
			for k, args := range t {
				if fn, ok := domainKeywords[k]; ok {
					return buildDomain(k, fn, args, path)
				}
			}
		}
		out := make(map[string]any, len(t))
		for _, k := range space.SortedKeys(t) {
			child, err := build(t[k], append(path[:len(path):len(path)], k))
			if err != nil {
				return nil, err
			}
			out[k] = child
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			child, err := build(e, append(path[:len(path):len(path)], strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = child
		}
		return out, nil
	default:
		return v, nil
	}
}

func buildDomain(keyword string, fn domainBuilder, args any, path []string) (*space.Domain, error) {
	where := strings.Join(path, "/")
	if l, ok := args.([]any); ok && (keyword == "choice" || keyword == "grid_search") {
		built, err := build(l, path)
		if err != nil {
			return nil, err
		}
		args = built
	}
	d, err := fn(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", where, keyword, err)
	}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", where, err)
	}
	return d, nil
}

// normalize converts json.Number leaves produced by a decoder with UseNumber
// into int when they are integral literals and float64 otherwise.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := strconv.Atoi(s); err == nil {
				return i, nil
			}
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", s, err)
		}
		return f, nil
	case map[string]any:
		for k, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case []any:
		for i, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	default:
		return v, nil
	}
}
