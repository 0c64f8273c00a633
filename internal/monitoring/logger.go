// Package monitoring carries the engine's diagnostic logging and the
// accounting of input records that were skipped during ingestion.
package monitoring

import "log"

// Logf is the diagnostic logger used by the engine. It defaults to log.Printf;
// callers embedding the engine may redirect or mute it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
