package space

import "fmt"

// DependentFunc computes a parameter from the partially resolved config.
type DependentFunc func(Config) (any, error)

// SampleFromFunc returns a Function domain for fn.
func SampleFromFunc(fn DependentFunc) *Domain {
	return Function(fn)
}

// SampleFrom adapts a function of one of the supported shapes to a Function
// domain:
//
//	func() any
//	func() (any, error)
//	func() float64
//	func(Config) any
//	func(Config) (any, error)
//	func(Config) float64
//	func(Config) int
//
// Any other value yields a domain whose invocation fails with an
// *InvalidDomainError.
func SampleFrom(fn any) *Domain {
	return Function(adapt(fn))
}

func adapt(fn any) DependentFunc {
	switch f := fn.(type) {
	case DependentFunc:
		return f
	case func(Config) (any, error):
		return f
	case func(Config) any:
		return func(c Config) (any, error) { return f(c), nil }
	case func(Config) float64:
		return func(c Config) (any, error) { return f(c), nil }
	case func(Config) int:
		return func(c Config) (any, error) { return f(c), nil }
	case func() any:
		return func(Config) (any, error) { return f(), nil }
	case func() (any, error):
		return func(Config) (any, error) { return f() }
	case func() float64:
		return func(Config) (any, error) { return f(), nil }
	}
	return func(Config) (any, error) {
		return nil, invalid(KindFunction, "unsupported function signature %s", describe(fn))
	}
}

func describe(fn any) string {
	if fn == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", fn)
}
