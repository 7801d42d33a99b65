package variant

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Path addresses a value inside a spec. List elements are addressed by their
// decimal index.
type Path []string

func (p Path) String() string { return strings.Join(p, "/") }

// Last returns the final key of p, or "" for the root.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (p Path) child(key string) Path {
	c := make(Path, len(p), len(p)+1)
	copy(c, p)
	return append(c, key)
}

// ComparePaths orders paths element by element. Elements that are both list
// indices compare numerically.
func ComparePaths(a, b Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			continue
		}
		ai, errA := strconv.Atoi(a[i])
		bi, errB := strconv.Atoi(b[i])
		if errA == nil && errB == nil {
			if ai < bi {
				return -1
			}
			return 1
		}
		return strings.Compare(a[i], b[i])
	}
	return len(a) - len(b)
}

func sortLeaves(leaves []Leaf) []Leaf {
	byPath := make(map[string]int, len(leaves))
	out := make([]Leaf, 0, len(leaves))
	for _, l := range leaves {
		if i, ok := byPath[l.Path.String()]; ok {
			out[i] = l
			continue
		}
		byPath[l.Path.String()] = len(out)
		out = append(out, l)
	}
	slices.SortStableFunc(out, func(a, b Leaf) int { return ComparePaths(a.Path, b.Path) })
	return out
}

// getValue walks root along p through nested maps and lists.
func getValue(root any, p Path) (any, error) {
	cur := root
	for i, key := range p {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[key]
			if !ok {
				return nil, fmt.Errorf("key %q not found at %s", key, p[:i+1])
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("index %q out of range at %s", key, p[:i+1])
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("cannot descend into %T at %s", cur, p[:i])
		}
	}
	return cur, nil
}

// assignValue replaces the value at p, which must already exist.
func assignValue(root map[string]any, p Path, v any) error {
	if len(p) == 0 {
		return fmt.Errorf("cannot assign to the root")
	}
	parent, err := getValue(root, p[:len(p)-1])
	if err != nil {
		return err
	}
	key := p.Last()
	switch node := parent.(type) {
	case map[string]any:
		node[key] = v
		return nil
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(node) {
			return fmt.Errorf("index %q out of range at %s", key, p)
		}
		node[idx] = v
		return nil
	}
	return fmt.Errorf("cannot assign into %T at %s", parent, p)
}
