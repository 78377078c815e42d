// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"strings"
	"time"

	"github.com/gogama/reqflow/cancel"
	"github.com/gogama/reqflow/transform"
	"golang.org/x/net/http/httpguts"
)

const nilCtxMsg = "reqflow/request: nil context"

// A Method is an HTTP request method. Methods are compared
// case-insensitively; the constants are spelled in lower case.
type Method string

// Request methods with dedicated header buckets.
const (
	Get     Method = "get"
	Delete  Method = "delete"
	Head    Method = "head"
	Options Method = "options"
	Post    Method = "post"
	Put     Method = "put"
	Patch   Method = "patch"
)

// Methods returns every method with a dedicated header bucket.
func Methods() []Method {
	return []Method{Get, Delete, Head, Options, Post, Put, Patch}
}

// Normalize returns m in lower case. The empty method normalizes to
// Get.
func (m Method) Normalize() Method {
	if m == "" {
		return Get
	}
	return Method(strings.ToLower(string(m)))
}

// Valid reports whether m is a syntactically valid HTTP method token.
// The empty method is valid and means Get.
func (m Method) Valid() bool {
	return m == "" || httpguts.ValidHeaderFieldName(string(m))
}

// Wire returns the method as sent on the wire, in upper case.
func (m Method) Wire() string {
	return strings.ToUpper(string(m.Normalize()))
}

// A ResponseType tells the transport how to present the response body
// in Response.Data.
type ResponseType string

const (
	// ResponseText presents the body as a string. The empty
	// ResponseType means the same.
	ResponseText ResponseType = "text"
	// ResponseJSON decodes the body as JSON into an interface{}.
	ResponseJSON ResponseType = "json"
	// ResponseBytes presents the body as a []byte.
	ResponseBytes ResponseType = "bytes"
)

// BasicAuth holds HTTP Basic Authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// A ProgressEvent reports upload or download progress.
type ProgressEvent struct {
	// Loaded is the number of body bytes transferred so far.
	Loaded int64
	// Total is the total body size, or -1 if it is unknown.
	Total int64
}

// A ProgressFunc receives progress events while a body is transferred.
type ProgressFunc func(ProgressEvent)

// A ParamsSerializer converts Config.Params into a query string,
// without a leading '?'.
type ParamsSerializer func(params interface{}) (string, error)

// A Config describes a request. The zero value is valid, and every
// field is optional until the request is dispatched, at which point
// URL (or BaseURL) must produce a usable address.
//
// Configs are combined with Merge. How each field merges is documented
// on Merge.
type Config struct {
	// URL is the request URL. If it is not absolute and BaseURL is set,
	// it is resolved against BaseURL.
	URL string
	// Method is the request method. The empty method means Get.
	Method Method
	// BaseURL is prepended to URL unless URL is absolute.
	BaseURL string
	// Header holds the request header fields, optionally bucketed by
	// method.
	Header *Header
	// Data is the request body. With the default transformers, maps and
	// structs are sent as JSON. Other values must be acceptable to
	// BodyBytes once the request transformers have run.
	Data interface{}
	// Params are serialized into the URL query string. Supported types
	// are url.Values and maps with string keys, unless ParamsSerializer
	// is set.
	Params interface{}
	// ParamsSerializer overrides the default params serialization.
	ParamsSerializer ParamsSerializer
	// Timeout bounds the transport exchange. Zero means no timeout.
	Timeout time.Duration
	// ResponseType selects how the response body is presented.
	ResponseType ResponseType
	// TransformRequest is applied to Data before it is sent.
	TransformRequest []transform.Func
	// TransformResponse is applied to the response body before the
	// response is returned, including the partial response carried by
	// an *Error.
	TransformResponse []transform.Func
	// CancelToken allows the request to be cancelled.
	CancelToken *cancel.Token
	// ValidateStatus decides whether a status code is a success. If
	// nil, every status code is a success.
	ValidateStatus func(status int) bool
	// WithCredentials allows credentials (cookies, XSRF header) to be
	// sent to cross-origin targets.
	WithCredentials bool
	// Auth, if set, is sent as an HTTP Basic Authorization header.
	Auth *BasicAuth
	// XSRFCookieName names the cookie holding the XSRF token.
	XSRFCookieName string
	// XSRFHeaderName names the header the XSRF token is sent in.
	XSRFHeaderName string
	// OnUploadProgress receives request body progress events.
	OnUploadProgress ProgressFunc
	// OnDownloadProgress receives response body progress events.
	OnDownloadProgress ProgressFunc

	ctx context.Context
}

// Context returns the config's context. The returned context is always
// non-nil; it defaults to the background context.
func (c *Config) Context() context.Context {
	if c.ctx != nil {
		return c.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of c with its context changed to
// ctx, which must be non-nil.
func (c *Config) WithContext(ctx context.Context) *Config {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	c2 := new(Config)
	*c2 = *c
	c2.ctx = ctx
	return c2
}

// Clone returns a copy of c. The header and auth are deep-copied; all
// other reference-typed fields are shared.
func (c *Config) Clone() *Config {
	c2 := new(Config)
	*c2 = *c
	c2.Header = c.Header.Clone()
	if c.Auth != nil {
		a := *c.Auth
		c2.Auth = &a
	}
	return c2
}
