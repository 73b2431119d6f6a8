// Package monitoring holds the process-wide diagnostic logger.
package monitoring

import (
	"fmt"
	"log"
	"sync"
)

// Logf is the diagnostic logger used across the viewer. It defaults to
// log.Printf; SetLogger redirects or mutes it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// For returns a logger that prefixes every line with "[component] ". The
// returned function looks Logf up on each call, so a later SetLogger still
// takes effect.
func For(component string) func(format string, v ...interface{}) {
	prefix := "[" + component + "] "
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}

// Recorder collects formatted log lines, for tests.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Lines returns a copy of everything recorded so far.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *Recorder) logf(format string, v ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

// Capture routes Logf into a new Recorder until restore is called.
func Capture() (rec *Recorder, restore func()) {
	prev := Logf
	rec = &Recorder{}
	Logf = rec.logf
	return rec, func() { Logf = prev }
}
