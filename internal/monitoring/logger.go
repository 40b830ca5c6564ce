package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and can
// be swapped with SetLogger; tests usually mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf is only emitted when debug output is switched on with SetDebug.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebug routes Debugf through Logf when on is true and mutes it otherwise.
func SetDebug(on bool) {
	if !on {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = func(format string, v ...interface{}) {
		Logf("[debug] "+format, v...)
	}
}
