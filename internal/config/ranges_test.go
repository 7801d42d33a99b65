package config

import (
	"math"
	"reflect"
	"testing"
)

func TestParseRangeSpec(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  RangeSpec
		expectErr bool
	}{
		{"valid_range", "1.0:5.0:0.5", RangeSpec{Min: 1.0, Max: 5.0, Step: 0.5}, false},
		{"integer_range", "0:10:1", RangeSpec{Min: 0, Max: 10, Step: 1}, false},
		{"with_spaces", " 1.0 : 5.0 : 0.5 ", RangeSpec{Min: 1.0, Max: 5.0, Step: 0.5}, false},
		{"negative_values", "-5.0:5.0:1.0", RangeSpec{Min: -5.0, Max: 5.0, Step: 1.0}, false},
		{"missing_parts", "1.0:5.0", RangeSpec{}, true},
		{"too_many_parts", "1.0:5.0:0.5:2.0", RangeSpec{}, true},
		{"invalid_min", "abc:5.0:0.5", RangeSpec{}, true},
		{"invalid_step", "1.0:5.0:abc", RangeSpec{}, true},
		{"zero_step", "1.0:5.0:0", RangeSpec{}, true},
		{"negative_step", "1.0:5.0:-0.5", RangeSpec{}, true},
		{"min_above_max", "5.0:1.0:0.5", RangeSpec{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseRangeSpec(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Errorf("Expected error for input %q, got nil", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tc.expected {
				t.Errorf("Expected %+v, got %+v", tc.expected, result)
			}
		})
	}
}

func TestParseIntRangeSpec(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  IntRangeSpec
		expectErr bool
	}{
		{"valid_range", "1:10:2", IntRangeSpec{Min: 1, Max: 10, Step: 2}, false},
		{"with_spaces", " 1 : 10 : 2 ", IntRangeSpec{Min: 1, Max: 10, Step: 2}, false},
		{"negative_values", "-10:10:5", IntRangeSpec{Min: -10, Max: 10, Step: 5}, false},
		{"missing_parts", "1:10", IntRangeSpec{}, true},
		{"float_value", "1.5:10:2", IntRangeSpec{}, true},
		{"zero_step", "1:10:0", IntRangeSpec{}, true},
		{"min_above_max", "10:1:1", IntRangeSpec{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseIntRangeSpec(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Errorf("Expected error for input %q, got nil", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tc.expected {
				t.Errorf("Expected %+v, got %+v", tc.expected, result)
			}
		})
	}
}

func TestRangeValues(t *testing.T) {
	testCases := []struct {
		name     string
		spec     RangeSpec
		expected []float64
	}{
		{"whole_steps", RangeSpec{Min: 1, Max: 3, Step: 1}, []float64{1, 2, 3}},
		{"tenths", RangeSpec{Min: 0.1, Max: 0.3, Step: 0.1}, []float64{0.1, 0.2, 0.3}},
		{"max_not_on_step", RangeSpec{Min: 0, Max: 1, Step: 0.4}, []float64{0, 0.4, 0.8}},
		{"single_value", RangeSpec{Min: 2, Max: 2, Step: 1}, []float64{2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := tc.spec.Values()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(result, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}

	if _, err := (RangeSpec{Min: 0, Max: 1e6, Step: 1}).Values(); err == nil {
		t.Error("Expected error for oversized range")
	}
}

func TestIntRangeValues(t *testing.T) {
	result, err := IntRangeSpec{Min: 1, Max: 10, Step: 3}.Values()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if expected := []int{1, 4, 7, 10}; !reflect.DeepEqual(result, expected) {
		t.Errorf("Expected %v, got %v", expected, result)
	}

	if _, err := (IntRangeSpec{Min: 0, Max: 100000, Step: 1}).Values(); err == nil {
		t.Error("Expected error for oversized range")
	}
}

func TestIntRangeValuesAtLimits(t *testing.T) {
	testCases := []struct {
		name      string
		spec      IntRangeSpec
		expected  []int
		expectErr bool
	}{
		{"max_int", IntRangeSpec{Min: math.MaxInt - 3, Max: math.MaxInt, Step: 1},
			[]int{math.MaxInt - 3, math.MaxInt - 2, math.MaxInt - 1, math.MaxInt}, false},
		{"max_int_wide_step", IntRangeSpec{Min: math.MaxInt - 10, Max: math.MaxInt, Step: 4},
			[]int{math.MaxInt - 10, math.MaxInt - 6, math.MaxInt - 2}, false},
		{"min_int", IntRangeSpec{Min: math.MinInt, Max: math.MinInt + 2, Step: 1},
			[]int{math.MinInt, math.MinInt + 1, math.MinInt + 2}, false},
		{"full_span", IntRangeSpec{Min: math.MinInt, Max: math.MaxInt, Step: 1}, nil, true},
		{"full_span_max_step", IntRangeSpec{Min: math.MinInt, Max: math.MaxInt, Step: math.MaxInt}, []int{math.MinInt, -1, math.MaxInt - 1}, false},
		{"zero_step", IntRangeSpec{Min: 0, Max: 1, Step: 0}, nil, true},
		{"min_above_max", IntRangeSpec{Min: 2, Max: 1, Step: 1}, nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := tc.spec.Values()
			if tc.expectErr {
				if err == nil {
					t.Errorf("Expected error for %+v, got %v", tc.spec, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(result, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}
