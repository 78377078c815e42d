// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package interceptor contains the registry of request and response
interceptors used by a client, and a few ready-made request
interceptors.

A client holds two Managers: one whose interceptors see the request
Config before it is dispatched, and one whose interceptors see the
Response afterward.

	id := client.Interceptors.Request.Use(func(c *request.Config) (*request.Config, error) {
		c.Header.Set("X-Trace", "1")
		return c, nil
	}, nil)
	...
	client.Interceptors.Request.Eject(id)

Request interceptors run newest first; response interceptors run
oldest first.

RequestID and RateLimit return request interceptors which may be
installed directly:

	client.Interceptors.Request.Use(interceptor.RequestID("X-Request-Id"), nil)
	client.Interceptors.Request.Use(interceptor.RateLimit(rate.NewLimiter(10, 1)), nil)
*/
package interceptor
