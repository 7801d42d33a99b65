package variant

import (
	"fmt"

	"github.com/banshee-data/variantgen/internal/space"
)

// Preset pins the literal values of point into a copy of spec and returns a
// single-sample stream over what remains. A pinned grid dimension is removed from
// enumeration; a pinned domain is not sampled. Every path in point must exist in
// spec. Values outside the declared domain, or different from a declared literal,
// are logged as warnings and still win.
func Preset(spec map[string]any, point map[string]any, opts ...Option) (*Stream, error) {
	o := newOptions(opts)
	pinned := space.DeepCopy(spec).(map[string]any)

	for _, leaf := range ParseSpecVars(point).Resolved {
		current, err := getValue(pinned, leaf.Path)
		if err != nil {
			return nil, fmt.Errorf("pre-set config key `%s` does not correspond to a valid key in the search space definition: %w", leaf.Path, err)
		}

		switch cur := current.(type) {
		case *space.Domain:
			if !cur.Contains(leaf.Value) {
				o.warnf("Pre-set value `%v` is not within valid values of parameter `%s`: %s", leaf.Value, leaf.Path, cur)
			}
		case map[string]any:
			// A whole sub-map may be overwritten; only grids are checked.
			if values, ok := space.GridValues(cur); ok {
				if grid := space.Grid(values...); !grid.Contains(leaf.Value) {
					o.warnf("Pre-set value `%v` is not within valid values of parameter `%s`: %s", leaf.Value, leaf.Path, grid)
				}
			}
		case []any:
		default:
			if !space.EqualValues(cur, leaf.Value) {
				o.warnf("Pre-set value `%v` is not equal to the value of parameter `%s`: %v", leaf.Value, leaf.Path, cur)
			}
		}

		if err := assignValue(pinned, leaf.Path, leaf.Value); err != nil {
			return nil, err
		}
	}

	return NewStream(pinned, 1, opts...)
}
