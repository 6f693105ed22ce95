// Package xlog is a minimal leveled logger in the spirit of go-amqp's
// internal/debug package: no external logging dependency, just a
// package-level verbosity gate and a couple of Printf-shaped helpers.
package xlog

import (
	"log"
	"os"
)

// Level controls which calls actually print. It mirrors debug.Log's
// level parameter: callers pass the level they were written at, and
// it's compared against this package variable at call time.
var Level = 0

var std = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)

// Debugf logs at the given level if Level >= level.
func Debugf(level int, format string, args ...any) {
	if Level < level {
		return
	}
	std.Printf("[DEBUG] "+format, args...)
}

// Errorf always logs, regardless of Level.
func Errorf(format string, args ...any) {
	std.Printf("[ERROR] "+format, args...)
}
