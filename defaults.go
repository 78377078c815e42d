// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqflow

import (
	"net/http"

	"github.com/gogama/reqflow/request"
	"github.com/gogama/reqflow/transform"
)

const formContentType = "application/x-www-form-urlencoded"

// DefaultConfig returns a new copy of the package default config, used
// by a Client whose Defaults field is nil and as the base of New.
//
// The default config uses method get and no timeout. Its header sends
// "Accept: application/json, text/plain, */*" with every method and a
// form Content-Type with post, put and patch. It reads the XSRF token
// from the XSRF-TOKEN cookie into the X-XSRF-TOKEN header, sends maps
// and structs as JSON, parses JSON response bodies, and accepts only
// 2xx statuses.
func DefaultConfig() *request.Config {
	h := &request.Header{}
	h.SetCommon("Accept", "application/json, text/plain, */*")
	h.Methods = make(map[request.Method]http.Header)
	for _, m := range []request.Method{request.Delete, request.Get, request.Head, request.Options} {
		h.Methods[m] = make(http.Header)
	}
	for _, m := range []request.Method{request.Post, request.Put, request.Patch} {
		h.SetFor(m, "Content-Type", formContentType)
	}
	return &request.Config{
		Method:            request.Get,
		Header:            h,
		TransformRequest:  []transform.Func{transform.JSONRequest},
		TransformResponse: []transform.Func{transform.JSONResponse},
		ValidateStatus:    DefaultValidateStatus,
		XSRFCookieName:    "XSRF-TOKEN",
		XSRFHeaderName:    "X-XSRF-TOKEN",
	}
}

// DefaultValidateStatus accepts 2xx statuses.
func DefaultValidateStatus(status int) bool {
	return status >= 200 && status < 300
}
