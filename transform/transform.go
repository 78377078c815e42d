// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transform applies ordered chains of request and response
// body transformers.
package transform

import (
	"net/http"
)

// A Func transforms a request or response body.
//
// Parameter data is the body produced by the previous transformer in
// the chain (or the original body for the first transformer). Parameter
// header is the header map of the request or response being
// transformed; a Func may modify it, for example to set a content type
// matching the body it produces.
//
// A non-nil error aborts the chain and the request dispatch.
type Func func(data interface{}, header http.Header) (interface{}, error)

// Apply runs fns over data in order, feeding each transformer the
// output of the previous one, and returns the final result. Every
// transformer receives the same header map.
//
// If fns is empty, data is returned unchanged. A nil element of fns
// is skipped. If a transformer fails, Apply stops and returns its error.
func Apply(data interface{}, header http.Header, fns ...Func) (interface{}, error) {
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		var err error
		data, err = fn(data, header)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}
