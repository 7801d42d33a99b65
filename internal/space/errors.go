package space

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolved is returned when a Config lookup reaches a value that has not
	// been resolved yet (a Domain or a grid_search map).
	ErrUnresolved = errors.New("value not yet resolved")

	// ErrKeyNotFound is returned when a Config path does not exist.
	ErrKeyNotFound = errors.New("key not found")
)

// InvalidDomainError reports misuse of a Domain: a bad construction chain, a
// sampler that cannot run on the domain, or a dependent function that cannot be
// invoked.
type InvalidDomainError struct {
	Domain string
	Reason string
}

func (e *InvalidDomainError) Error() string {
	return fmt.Sprintf("invalid %s domain: %s", e.Domain, e.Reason)
}

func invalid(k Kind, format string, args ...interface{}) *InvalidDomainError {
	return &InvalidDomainError{Domain: k.String(), Reason: fmt.Sprintf(format, args...)}
}
