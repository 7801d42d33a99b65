package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxRangeValues limits a single grid range to prevent excessive allocation.
const maxRangeValues = 10000

// RangeSpec defines a floating-point grid range.
type RangeSpec struct {
	Min  float64
	Max  float64
	Step float64
}

// IntRangeSpec defines an integer grid range.
type IntRangeSpec struct {
	Min  int
	Max  int
	Step int
}

func splitRange(s string) ([]string, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid range format %q: expected min:max:step", s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

// ParseRangeSpec parses a "min:max:step" string into a RangeSpec.
func ParseRangeSpec(s string) (RangeSpec, error) {
	parts, err := splitRange(s)
	if err != nil {
		return RangeSpec{}, err
	}

	var vals [3]float64
	for i, name := range []string{"min", "max", "step"} {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return RangeSpec{}, fmt.Errorf("invalid %s value %q: %w", name, parts[i], err)
		}
		vals[i] = v
	}

	rs := RangeSpec{Min: vals[0], Max: vals[1], Step: vals[2]}
	if rs.Step <= 0 {
		return RangeSpec{}, fmt.Errorf("step must be positive, got %g", rs.Step)
	}
	if rs.Min > rs.Max {
		return RangeSpec{}, fmt.Errorf("min %g exceeds max %g", rs.Min, rs.Max)
	}
	return rs, nil
}

// ParseIntRangeSpec parses a "min:max:step" string into an IntRangeSpec.
func ParseIntRangeSpec(s string) (IntRangeSpec, error) {
	parts, err := splitRange(s)
	if err != nil {
		return IntRangeSpec{}, err
	}

	var vals [3]int
	for i, name := range []string{"min", "max", "step"} {
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return IntRangeSpec{}, fmt.Errorf("invalid %s value %q: %w", name, parts[i], err)
		}
		vals[i] = v
	}

	rs := IntRangeSpec{Min: vals[0], Max: vals[1], Step: vals[2]}
	if rs.Step <= 0 {
		return IntRangeSpec{}, fmt.Errorf("step must be positive, got %d", rs.Step)
	}
	if rs.Min > rs.Max {
		return IntRangeSpec{}, fmt.Errorf("min %d exceeds max %d", rs.Min, rs.Max)
	}
	return rs, nil
}

// Values returns the range from Min to Max inclusive. Each value is computed
// from Min directly so steps do not accumulate rounding error.
func (rs RangeSpec) Values() ([]float64, error) {
	count := int(math.Floor((rs.Max-rs.Min)/rs.Step+1e-9)) + 1
	if count > maxRangeValues || count < 1 {
		return nil, fmt.Errorf("range %g:%g:%g produces %d values (max %d)", rs.Min, rs.Max, rs.Step, count, maxRangeValues)
	}

	out := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		v := rs.Min + float64(i)*rs.Step
		out = append(out, math.Round(v*1e9)/1e9)
	}
	return out, nil
}

// Values returns the range from Min to Max inclusive. The span is measured
// unsigned so ranges reaching math.MinInt or math.MaxInt do not overflow.
func (rs IntRangeSpec) Values() ([]int, error) {
	if rs.Step <= 0 || rs.Min > rs.Max {
		return nil, fmt.Errorf("invalid range %d:%d:%d", rs.Min, rs.Max, rs.Step)
	}
	span := uint64(rs.Max) - uint64(rs.Min)
	steps := span / uint64(rs.Step)
	if steps >= maxRangeValues {
		return nil, fmt.Errorf("range %d:%d:%d produces more than %d values", rs.Min, rs.Max, rs.Step, maxRangeValues)
	}

	count := int(steps) + 1
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, rs.Min+i*rs.Step)
	}
	return out, nil
}
