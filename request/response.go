// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
)

// A Response is the result of a completed request exchange.
//
// A Response is created once by the transport and should be treated as
// immutable, except for Data, which the client rewrites with the
// output of the response transformers.
type Response struct {
	// Data is the response body, as presented by the transport
	// according to Config.ResponseType and then transformed by
	// Config.TransformResponse.
	Data interface{}
	// Status is the HTTP status code, e.g. 200.
	Status int
	// StatusText is the HTTP status line text, e.g. "200 OK".
	StatusText string
	// Header holds the response header fields.
	Header http.Header
	// Config is the fully resolved config the request was sent with.
	Config *Config
	// Request is an opaque handle to the underlying transport exchange.
	// The default transport sets it to the *http.Request it sent.
	Request interface{}
}

// Error codes set by the default transport.
const (
	// CodeTimeout indicates the exchange did not complete within
	// Config.Timeout.
	CodeTimeout = "ECONNABORTED"
	// CodeConnRefused indicates the remote host refused the connection.
	CodeConnRefused = "ECONNREFUSED"
	// CodeConnReset indicates the remote host reset the connection.
	CodeConnReset = "ECONNRESET"
)

// An Error describes a failed request exchange: a network failure, a
// timeout, or a response whose status was rejected by
// Config.ValidateStatus.
type Error struct {
	// Message describes the failure.
	Message string
	// Config is the config the request was sent with.
	Config *Config
	// Code is a stable error code, such as CodeTimeout. It is empty
	// if the failure has no specific code.
	Code string
	// Request is the transport's handle to the exchange, if any.
	Request interface{}
	// Response is the response received, if any. It is set when the
	// status was rejected by Config.ValidateStatus.
	Response *Response
	// Err is the underlying cause, if any.
	Err error
}

// NewError returns an *Error with the given fields.
func NewError(message string, c *Config, code string, req interface{}, resp *Response) *Error {
	return &Error{
		Message:  message,
		Config:   c,
		Code:     code,
		Request:  req,
		Response: resp,
	}
}

// Error returns the error message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the error is a timeout.
func (e *Error) Timeout() bool {
	return e.Code == CodeTimeout
}
