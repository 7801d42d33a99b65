package variant

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExhausted is returned by Stream.Next once every variant has been produced.
var ErrExhausted = errors.New("variant stream exhausted")

// RecursiveDependencyError reports dependent values that could not be resolved,
// either because they depend on each other or because resolution ran out of
// passes.
type RecursiveDependencyError struct {
	Paths []string
	Err   error
}

func (e *RecursiveDependencyError) Error() string {
	return fmt.Sprintf("could not resolve %s: recursive dependency: %v", strings.Join(e.Paths, ", "), e.Err)
}

func (e *RecursiveDependencyError) Unwrap() error { return e.Err }

// UnsupportedSpaceError is returned when a search space uses a feature the
// target backend cannot represent, such as grid search.
type UnsupportedSpaceError struct {
	Backend string
	Path    string
	Reason  string
}

func (e *UnsupportedSpaceError) Error() string {
	return fmt.Sprintf("%s: parameter %s cannot be converted: %s", e.Backend, e.Path, e.Reason)
}
