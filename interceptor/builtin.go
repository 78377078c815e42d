// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package interceptor

import (
	"github.com/gogama/reqflow/request"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RequestID returns a request interceptor which sets the top-level
// header field name to a new random UUID, unless the config already
// sets it at the top level.
func RequestID(name string) func(*request.Config) (*request.Config, error) {
	return func(c *request.Config) (*request.Config, error) {
		if c.Header == nil {
			c.Header = request.NewHeader()
		}
		if c.Header.Get(name) == "" {
			c.Header.Set(name, uuid.NewString())
		}
		return c, nil
	}
}

// RateLimit returns a request interceptor which waits for l to allow
// an event before letting the request proceed. The wait is bounded by
// the config's context; if the context ends first, its error is
// returned.
func RateLimit(l *rate.Limiter) func(*request.Config) (*request.Config, error) {
	if l == nil {
		panic("reqflow/interceptor: nil limiter")
	}
	return func(c *request.Config) (*request.Config, error) {
		if err := l.Wait(c.Context()); err != nil {
			return nil, err
		}
		return c, nil
	}
}
