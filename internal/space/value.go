package space

import (
	"encoding/json"
	"reflect"
	"sort"
)

// GridSearchKey is the map key of the declarative grid form {"grid_search": [...]}.
const GridSearchKey = "grid_search"

// IsGridSearch reports whether v is the map form {"grid_search": [...]}.
func IsGridSearch(v any) bool {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return false
	}
	_, ok = m[GridSearchKey]
	return ok
}

// GridValues returns the values of a Grid domain or a grid_search map.
func GridValues(v any) ([]any, bool) {
	switch val := v.(type) {
	case *Domain:
		if val.kind == KindGrid {
			return val.Values(), true
		}
	case map[string]any:
		if !IsGridSearch(val) {
			return nil, false
		}
		switch list := val[GridSearchKey].(type) {
		case []any:
			return append([]any(nil), list...), true
		case []string:
			out := make([]any, len(list))
			for i, s := range list {
				out[i] = s
			}
			return out, true
		case []float64:
			out := make([]any, len(list))
			for i, f := range list {
				out[i] = f
			}
			return out, true
		case []int:
			out := make([]any, len(list))
			for i, n := range list {
				out[i] = n
			}
			return out, true
		}
	}
	return nil, false
}

// Number converts numeric literals to float64.
func Number(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	}
	return 0, false
}

// EqualValues compares two resolved values. Numbers compare by value regardless of
// their Go type; everything else uses reflect.DeepEqual.
func EqualValues(a, b any) bool {
	fa, okA := Number(a)
	fb, okB := Number(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// SortedKeys returns the keys of m in the order the search space is walked.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DeepCopy copies nested maps and lists. Domains and other leaves are shared.
func DeepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = DeepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = DeepCopy(e)
		}
		return out
	}
	return v
}

// HasUnresolved reports whether v still contains a Domain or a grid_search map.
func HasUnresolved(v any) bool {
	switch val := v.(type) {
	case *Domain:
		return true
	case map[string]any:
		if IsGridSearch(val) {
			return true
		}
		for _, e := range val {
			if HasUnresolved(e) {
				return true
			}
		}
	case []any:
		for _, e := range val {
			if HasUnresolved(e) {
				return true
			}
		}
	}
	return false
}
