// Package monitoring holds the diagnostic logger shared by the generator, the
// searcher and the command line tool.
package monitoring

import "log"

// LogFunc is the printf-style logger signature accepted across the module.
type LogFunc func(format string, v ...interface{})

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf LogFunc = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f LogFunc) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Or returns f, or the package logger when f is nil. The package logger is looked
// up on every call, so a later SetLogger still applies.
func Or(f LogFunc) LogFunc {
	if f != nil {
		return f
	}
	return func(format string, v ...interface{}) { Logf(format, v...) }
}

// Warnf logs a warning through f, falling back to the package logger.
func Warnf(f LogFunc, format string, v ...interface{}) {
	Or(f)("WARNING: "+format, v...)
}
