// Package observabletest provides helpers for testing code that subscribes
// to observables.
package observabletest

import (
	"sync"

	"github.com/vango-dev/rxstate/pkg/observable"
)

// Recorder is an Observer that records every signal it receives.
type Recorder struct {
	mu        sync.Mutex
	values    []any
	completed int
}

var _ observable.Observer = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Next implements observable.Observer.
func (r *Recorder) Next(value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, value)
}

// Complete implements observable.Observer.
func (r *Recorder) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

// Values returns a copy of the recorded values.
func (r *Recorder) Values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of recorded values.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Last returns the most recent value and whether there was one.
func (r *Recorder) Last() (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return nil, false
	}
	return r.values[len(r.values)-1], true
}

// Completions returns how many times Complete was called.
func (r *Recorder) Completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Reset clears recorded values and completions.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = nil
	r.completed = 0
}
