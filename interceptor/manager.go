// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package interceptor

import (
	"sync"
)

// An Interceptor is a pair of hooks run as one stage of a client's
// request pipeline.
//
// Fulfilled runs when the previous stage succeeded, receiving its
// value. Rejected, if non-nil, runs when the previous stage failed,
// receiving its error; it may recover by returning a value and a nil
// error, or propagate by returning an error. If Rejected is nil, a
// failure passes through the stage untouched.
//
// An error returned by Fulfilled is not seen by the same stage's
// Rejected; it is handed to the next stage.
type Interceptor[T any] struct {
	Fulfilled func(T) (T, error)
	Rejected  func(error) (T, error)
}

// Run applies the interceptor to the outcome of the previous stage.
func (i Interceptor[T]) Run(v T, err error) (T, error) {
	if err == nil {
		return i.Fulfilled(v)
	}
	if i.Rejected != nil {
		return i.Rejected(err)
	}
	return v, err
}

// A Manager is an ordered registry of interceptors.
//
// Each interceptor is identified by the index it was registered at.
// Ejecting an interceptor leaves an empty slot behind rather than
// shifting later entries, so every id handed out by Use stays valid for
// the life of the Manager.
//
// The zero value is an empty Manager ready to use. A Manager is safe
// for concurrent use by multiple goroutines.
type Manager[T any] struct {
	mu    sync.RWMutex
	slots []*Interceptor[T]
}

// Use appends an interceptor and returns its id. Ids increase
// monotonically and are never reused.
//
// Use panics if fulfilled is nil. Parameter rejected may be nil.
func (m *Manager[T]) Use(fulfilled func(T) (T, error), rejected func(error) (T, error)) int {
	if fulfilled == nil {
		panic("reqflow/interceptor: nil fulfilled handler")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots = append(m.slots, &Interceptor[T]{
		Fulfilled: fulfilled,
		Rejected:  rejected,
	})
	return len(m.slots) - 1
}

// Eject removes the interceptor with the given id. Ejecting an unknown
// or already ejected id does nothing.
func (m *Manager[T]) Eject(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id >= 0 && id < len(m.slots) {
		m.slots[id] = nil
	}
}

// ForEach calls visit once for each registered interceptor, in
// registration order, skipping ejected slots.
//
// ForEach visits a snapshot taken when it is called, so visit may call
// Use or Eject on the same Manager.
func (m *Manager[T]) ForEach(visit func(Interceptor[T])) {
	for _, i := range m.Snapshot() {
		visit(i)
	}
}

// Snapshot returns the registered interceptors in registration order,
// skipping ejected slots.
func (m *Manager[T]) Snapshot() []Interceptor[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	live := make([]Interceptor[T], 0, len(m.slots))
	for _, i := range m.slots {
		if i != nil {
			live = append(live, *i)
		}
	}
	return live
}

// Len returns the number of registered, non-ejected interceptors.
func (m *Manager[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, i := range m.slots {
		if i != nil {
			n++
		}
	}
	return n
}
