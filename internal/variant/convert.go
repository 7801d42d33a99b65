package variant

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/banshee-data/variantgen/internal/space"
)

// Convert flattens the sampled domains of spec into a map keyed by "/"-joined
// paths, the shape optimizer adapters consume. Grid dimensions cannot be
// represented by such backends and yield an *UnsupportedSpaceError, as do keys
// that already contain "/".
func Convert(spec map[string]any, backend string) (map[string]*space.Domain, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}
	vars := ParseSpecVars(spec)
	if len(vars.Grids) > 0 {
		return nil, &UnsupportedSpaceError{
			Backend: backend,
			Path:    vars.Grids[0].Path.String(),
			Reason:  "grid search parameters cannot be automatically converted",
		}
	}

	flat := make(map[string]*space.Domain, len(vars.Domains))
	for _, dv := range vars.Domains {
		for _, key := range dv.Path {
			if strings.Contains(key, "/") {
				return nil, &UnsupportedSpaceError{
					Backend: backend,
					Path:    dv.Path.String(),
					Reason:  fmt.Sprintf("key %q contains \"/\"", key),
				}
			}
		}
		flat[dv.Path.String()] = dv.Domain
	}
	return flat, nil
}

// Unflatten turns "/"-joined keys back into nested maps.
func Unflatten(flat map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range flat {
		parts := strings.Split(k, "/")
		node := out
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = v
	}
	return out
}

var unsafeTagChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// FormatVars renders chosen values as "key=value" pairs for experiment tags.
// Only the last path element names a value; floats use four decimals.
func FormatVars(vars []Leaf) string {
	parts := make([]string, 0, len(vars))
	for _, l := range sortLeaves(vars) {
		parts = append(parts, cleanValue(l.Path.Last())+"="+cleanValue(l.Value))
	}
	return strings.Join(parts, ",")
}

func cleanValue(v any) string {
	if f, ok := v.(float64); ok && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return fmt.Sprintf("%.4f", f)
	}
	return strings.Trim(unsafeTagChars.ReplaceAllString(fmt.Sprintf("%v", v), "_"), "_")
}
