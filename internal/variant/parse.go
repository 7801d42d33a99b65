package variant

import (
	"fmt"
	"strconv"

	"github.com/banshee-data/variantgen/internal/space"
)

// Leaf is a value found at a path.
type Leaf struct {
	Path  Path
	Value any
}

// DomainVar is a sampled (non-grid) domain found at a path.
type DomainVar struct {
	Path   Path
	Domain *space.Domain
}

// GridVar is a grid dimension found at a path.
type GridVar struct {
	Path   Path
	Values []any
}

// Vars partitions the leaves of a spec. Each slice is in walk order: map keys
// sorted, list elements by index.
type Vars struct {
	Resolved []Leaf
	Domains  []DomainVar
	Grids    []GridVar
}

// ParseSpecVars walks spec and separates literal leaves, sampled domains and grid
// dimensions. Values inside a domain (categorical choices, grid values) are not
// walked.
func ParseSpecVars(spec map[string]any) Vars {
	var vars Vars
	walk(spec, nil, &vars)
	return vars
}

func walk(v any, p Path, vars *Vars) {
	switch val := v.(type) {
	case *space.Domain:
		if val.Kind() == space.KindGrid {
			vars.Grids = append(vars.Grids, GridVar{Path: p, Values: val.Values()})
			return
		}
		vars.Domains = append(vars.Domains, DomainVar{Path: p, Domain: val})
	case map[string]any:
		if values, ok := space.GridValues(val); ok {
			vars.Grids = append(vars.Grids, GridVar{Path: p, Values: values})
			return
		}
		for _, k := range space.SortedKeys(val) {
			walk(val[k], p.child(k), vars)
		}
	case []any:
		for i, e := range val {
			walk(e, p.child(strconv.Itoa(i)), vars)
		}
	default:
		vars.Resolved = append(vars.Resolved, Leaf{Path: p, Value: v})
	}
}

// Validate checks every domain in spec, including domains nested inside
// categorical choices and grid values.
func Validate(spec map[string]any) error {
	return validateValue(spec, nil)
}

func validateValue(v any, p Path) error {
	switch val := v.(type) {
	case *space.Domain:
		if err := val.Validate(); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		for i, c := range val.Values() {
			if err := validateValue(c, p.child(strconv.Itoa(i))); err != nil {
				return err
			}
		}
	case map[string]any:
		if values, ok := space.GridValues(val); ok {
			if len(values) == 0 {
				return fmt.Errorf("%s: %w", p, space.Grid().Err())
			}
			return validateValue(values, p)
		}
		if _, ok := val[space.GridSearchKey]; ok && len(val) == 1 {
			return fmt.Errorf("%s: grid_search must hold a list, got %T", p, val[space.GridSearchKey])
		}
		for _, k := range space.SortedKeys(val) {
			if err := validateValue(val[k], p.child(k)); err != nil {
				return err
			}
		}
	case []any:
		for i, e := range val {
			if err := validateValue(e, p.child(strconv.Itoa(i))); err != nil {
				return err
			}
		}
	}
	return nil
}

// gridSize returns the number of grid combinations, 1 when there are no grids.
func gridSize(grids []GridVar) (int, error) {
	total := int64(1)
	for _, g := range grids {
		total *= int64(len(g.Values))
		if total > maxGridCombinations {
			return 0, fmt.Errorf("grid search would produce more than %d combinations", maxGridCombinations)
		}
	}
	return int(total), nil
}
