// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Config (describes a request),
Response (describes the result of a completed exchange) and Execution
(describes the state of a request dispatch).

A Config describes a logical HTTP request: where to send it, with
which method, headers, body and query parameters, and how to transform
the body on the way out and on the way back in. Every field is
optional; a client merges each per-request Config over its default
Config using Merge before dispatching it:

	cfg := &request.Config{
		URL:    "/users",
		Method: request.Post,
		Data:   map[string]interface{}{"name": "ham"},
	}
	resolved := request.Merge(defaults, cfg)

Merge never modifies either of its arguments, so a single default
Config may be shared by any number of concurrent requests.

Headers are described by Header, which holds top-level fields plus a
common bucket and per-method buckets. When a request is dispatched the
header is flattened (see Header.Flatten) into a single http.Header
containing the common fields, the fields for the request's method, and
the top-level fields, in increasing order of precedence.

The Execution type represents the state of one request dispatch. It is
handed to event handlers installed in the client, and is not usually
allocated by user code.
*/
package request
