package space

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Config is a read-only view over a partially resolved configuration. Dependent
// functions receive one so they can read sibling values that have already been
// resolved.
type Config struct {
	root map[string]any
}

// NewConfig wraps root. The map is not copied.
func NewConfig(root map[string]any) Config {
	return Config{root: root}
}

// Map returns the underlying map.
func (c Config) Map() map[string]any { return c.root }

// Get returns the value at path. List elements are addressed by decimal index.
// Lookups that reach a Domain or a grid_search map fail with ErrUnresolved.
func (c Config) Get(path ...string) (any, error) {
	var cur any = c.root
	for i, key := range path {
		if isPending(cur) {
			return nil, fmt.Errorf("%s: %w", strings.Join(path[:i], "/"), ErrUnresolved)
		}
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[key]
			if !ok {
				return nil, fmt.Errorf("%s: %w", strings.Join(path[:i+1], "/"), ErrKeyNotFound)
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("%s: %w", strings.Join(path[:i+1], "/"), ErrKeyNotFound)
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("%s: %w", strings.Join(path[:i+1], "/"), ErrKeyNotFound)
		}
	}
	if isPending(cur) {
		return nil, fmt.Errorf("%s: %w", strings.Join(path, "/"), ErrUnresolved)
	}
	return cur, nil
}

func isPending(v any) bool {
	if _, ok := v.(*Domain); ok {
		return true
	}
	return IsGridSearch(v)
}

// Float returns the numeric value at path.
func (c Config) Float(path ...string) (float64, error) {
	v, err := c.Get(path...)
	if err != nil {
		return 0, err
	}
	f, ok := Number(v)
	if !ok {
		return 0, fmt.Errorf("%s: expected number, got %T", strings.Join(path, "/"), v)
	}
	return f, nil
}

// Int returns the integral value at path.
func (c Config) Int(path ...string) (int, error) {
	f, err := c.Float(path...)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%s: expected integer, got %v", strings.Join(path, "/"), f)
	}
	return int(f), nil
}

// String returns the string value at path.
func (c Config) String(path ...string) (string, error) {
	v, err := c.Get(path...)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", strings.Join(path, "/"), v)
	}
	return s, nil
}
