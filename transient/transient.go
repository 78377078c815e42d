// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"syscall"
)

// A Category is the transience category of an error, as reported by
// Categorize. Every category other than Not describes a condition
// which may clear up if the request is sent again.
type Category int

const (
	// Not indicates a nil error or an error which is not transient.
	Not Category = iota
	// Timeout indicates a client-side timeout: the error, or an error
	// it wraps, has a Timeout method reporting true. This includes
	// context.DeadlineExceeded.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (syscall.ECONNREFUSED). Services which are starting up or
	// restarting briefly refuse connections.
	ConnRefused
	// ConnReset indicates the remote host reset an established
	// connection (syscall.ECONNRESET), as happens when a service or
	// load balancer goes down mid-response.
	ConnReset
)

var categoryNames = []string{
	"not",
	"timeout",
	"conn_refused",
	"conn_reset",
}

// String returns a short lower-case name for the category, suitable
// for use as a metric label.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Categorize returns the transience category of err, looking through
// wrapped errors. Timeout takes precedence over the connection
// categories. Categorize never consults a Temporary method.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var t timeouter
	if errors.As(err, &t) && t.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		}
	}

	return Not
}

type timeouter interface {
	Timeout() bool
}
