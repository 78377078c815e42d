// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cancel

import (
	"context"
	"errors"
	"sync"
)

// A Cancel is the reason a Token was cancelled. It carries no
// behavior beyond describing the cancellation.
//
// Cancel implements error so that it can be returned along the normal
// Go failure path. Use IsCancel to tell a cancellation apart from all
// other failures.
type Cancel struct {
	// Message is the message passed to the token's controller
	// function. It may be empty.
	Message string
}

// Error returns the cancellation message, or a generic description if
// the message is empty.
func (c *Cancel) Error() string {
	if c.Message == "" {
		return "reqflow/cancel: request cancelled"
	}
	return c.Message
}

// Is reports whether target is context.Canceled, so that code written
// against the context package recognizes a token cancellation.
func (c *Cancel) Is(target error) bool {
	return target == context.Canceled
}

// IsCancel reports whether err is, or wraps, a *Cancel.
func IsCancel(err error) bool {
	var c *Cancel
	return errors.As(err, &c)
}

// A Func cancels the Token it was created with. The first call records
// the message as the token's reason; every later call does nothing.
//
// A Func is safe to call from multiple goroutines.
type Func func(message string)

// A Token is a one-shot cancellation signal. Tokens are created by
// Source and are safe for concurrent use by multiple goroutines.
//
// The zero value is not a usable Token.
type Token struct {
	once   sync.Once
	mu     sync.RWMutex
	reason *Cancel
	done   chan struct{}
}

// Source returns a new active Token together with the Func that
// cancels it.
func Source() (*Token, Func) {
	t := &Token{done: make(chan struct{})}
	return t, t.cancel
}

func (t *Token) cancel(message string) {
	t.once.Do(func() {
		t.mu.Lock()
		t.reason = &Cancel{Message: message}
		t.mu.Unlock()
		close(t.done)
	})
}

// Done returns a channel which is closed when the token is cancelled.
// Operations running concurrently with the cancellation may select on
// it to abort early.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// Reason returns the Cancel recorded by the first cancellation, or nil
// if the token is still active. Once non-nil, the returned value never
// changes.
func (t *Token) Reason() *Cancel {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.reason
}

// Requested reports whether the token has been cancelled.
func (t *Token) Requested() bool {
	return t.Reason() != nil
}

// Err returns the token's Cancel reason if cancellation has been
// requested, and nil otherwise. It is a cheap guard to call before
// starting expensive work.
func (t *Token) Err() error {
	if r := t.Reason(); r != nil {
		return r
	}
	return nil
}

// Bind returns a copy of parent which is cancelled as soon as either
// parent is done or the token is cancelled. The returned CancelFunc
// must be called to release resources once the bound operation ends.
func (t *Token) Bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancelCtx := context.WithCancel(parent)
	if t.Requested() {
		cancelCtx()
		return ctx, cancelCtx
	}
	go func() {
		select {
		case <-t.done:
			cancelCtx()
		case <-ctx.Done():
		}
	}()
	return ctx, cancelCtx
}
