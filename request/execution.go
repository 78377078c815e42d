// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/reqflow/cancel"
	"github.com/gogama/reqflow/transient"
)

// An Execution represents the state of a single request dispatch: the
// step between the request interceptors and the response interceptors
// which hands a resolved Config to the transport.
//
// The client creates an Execution when dispatch begins, updates it as
// dispatch progresses, and passes it to event handlers. Handlers may
// store their own values in it using SetValue and read them back with
// Value. Apart from changing the Config before it is sent, handlers
// should treat the exported fields as read-only.
type Execution struct {
	// Config is the config being dispatched. It is never nil. Before
	// the BeforeSend event it still contains the unprocessed URL, data
	// and bucketed header; from BeforeSend onward it is the exact config
	// handed to the transport.
	Config *Config
	// Start is the time dispatch started.
	Start time.Time
	// End is the time dispatch ended. It is zero until then.
	End time.Time
	// Response is the response from the transport. It is nil until the
	// transport returns, and nil if the transport failed without a
	// response.
	Response *Response
	// Err is the error dispatch failed with, if any.
	Err error

	data context.Context
}

// StatusCode returns the response status code, or 0 if there is no
// response.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.Status
}

// Header returns the response header, or nil if there is no response.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		return nil
	}
	return e.Response.Header
}

// Duration returns the time elapsed since dispatch started: zero
// before it starts, End minus Start once it has ended.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return 0
	} else if !e.Ended() {
		return time.Since(e.Start)
	}
	return e.End.Sub(e.Start)
}

// Started indicates whether dispatch has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether dispatch has ended.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout indicates whether Err is a timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// Cancelled indicates whether Err is a cancellation by the config's
// cancel token.
func (e *Execution) Cancelled() bool {
	return cancel.IsCancel(e.Err)
}

// SetValue stores an arbitrary value in the execution. The key follows
// the rules of context.WithValue: it must be non-nil and comparable,
// and should be of an unexported type to avoid collisions between
// handlers.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}
	e.data = context.WithValue(ctx, key, value)
}

// Value returns the value stored for key, or nil.
func (e *Execution) Value(key interface{}) interface{} {
	if e.data == nil {
		return nil
	}
	return e.data.Value(key)
}
