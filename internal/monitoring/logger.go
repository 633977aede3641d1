// Package monitoring carries the process-wide operational logger. Components
// that emit operator-facing warnings (database lock contention, dropped
// work) log through Logf so a host application or test can redirect or mute
// them in one place.
package monitoring

import "log"

// Logf emits an operational log line. It defaults to log.Printf; replace it
// with SetLogger to redirect or silence the stream.
var Logf func(format string, v ...any) = log.Printf

// SetLogger replaces the package logger. A nil argument installs a no-op.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}
