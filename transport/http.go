// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gogama/reqflow/request"
	"github.com/gogama/reqflow/transient"
	"golang.org/x/net/http/httpguts"
)

// An HTTPDoer implements a Do method in the same manner as the
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	Do(r *http.Request) (*http.Response, error)
}

// HTTP is a transport which sends requests with an HTTPDoer. Its zero
// value is a valid transport which uses http.DefaultClient.
//
// HTTP is safe for concurrent use if its HTTPDoer and Cookies are.
type HTTP struct {
	// Doer sends the HTTP request. If nil, http.DefaultClient is used.
	//
	// Redirects, connection reuse and retries are the Doer's concern.
	Doer HTTPDoer
	// Cookies is read for the XSRF token. If nil, no XSRF header is
	// ever sent.
	Cookies Cookies
	// Origin is the origin requests are considered to come from. A
	// relative request URL is resolved against it, and a request to
	// the same scheme and host is same-origin for XSRF purposes. If
	// nil, no request is same-origin.
	Origin *url.URL
}

// Send sends the request described by c and returns the response.
//
// c is expected to be fully resolved: its URL complete with query
// string, its Data already transformed into a body acceptable to
// request.BodyBytes. The header is flattened for c's method. If there
// is no body, any Content-Type header is dropped.
//
// The request is bound to c's context, which the caller may cancel to
// abort the exchange, and to c.Timeout if it is positive.
//
// Send fails with a *request.Error if the request cannot be built or
// sent, the response body cannot be read, or c.ValidateStatus rejects
// the response status. In the last case the error carries the
// response.
func (t *HTTP) Send(c *request.Config) (*request.Response, error) {
	u, err := t.resolve(c.URL)
	if err != nil {
		return nil, configError(c, err)
	}
	if !c.Method.Valid() {
		return nil, configError(c, fmt.Errorf("invalid method %q", c.Method))
	}

	body, err := request.BodyBytes(c.Data)
	if err != nil {
		return nil, configError(c, err)
	}

	header := c.Header.Flatten(c.Method)
	if body == nil {
		header.Del("Content-Type")
	}
	t.setXSRF(c, u, header)
	if err = validateHeader(header); err != nil {
		return nil, configError(c, err)
	}

	ctx := c.Context()
	if c.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, c.Timeout)
		defer cancelTimeout()
	}

	r, err := http.NewRequestWithContext(ctx, c.Method.Wire(), u.String(), nil)
	if err != nil {
		return nil, configError(c, err)
	}
	r.Header = header
	if body != nil {
		r.Body = io.NopCloser(withProgress(bytes.NewReader(body), int64(len(body)), c.OnUploadProgress))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		r.ContentLength = int64(len(body))
	}
	if c.Auth != nil {
		r.SetBasicAuth(c.Auth.Username, c.Auth.Password)
	}

	resp, err := t.doer().Do(r)
	if err != nil {
		return nil, sendError(c, r, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(withProgress(resp.Body, resp.ContentLength, c.OnDownloadProgress))
	if err != nil {
		return nil, sendError(c, r, err)
	}

	response := &request.Response{
		Data:       responseData(raw, c.ResponseType),
		Status:     resp.StatusCode,
		StatusText: resp.Status,
		Header:     resp.Header,
		Config:     c,
		Request:    r,
	}
	if c.ValidateStatus != nil && !c.ValidateStatus(resp.StatusCode) {
		return nil, request.NewError(
			fmt.Sprintf("Request failed with status code %d", resp.StatusCode),
			c, "", r, response)
	}
	return response, nil
}

func (t *HTTP) doer() HTTPDoer {
	if t.Doer == nil {
		return http.DefaultClient
	}
	return t.Doer
}

func (t *HTTP) resolve(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() && t.Origin != nil {
		u = t.Origin.ResolveReference(u)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url %q is not absolute", rawURL)
	}
	return u, nil
}

func (t *HTTP) sameOrigin(u *url.URL) bool {
	return t.Origin != nil && u.Scheme == t.Origin.Scheme && u.Host == t.Origin.Host
}

func (t *HTTP) setXSRF(c *request.Config, u *url.URL, header http.Header) {
	if t.Cookies == nil || c.XSRFCookieName == "" || c.XSRFHeaderName == "" {
		return
	}
	if !c.WithCredentials && !t.sameOrigin(u) {
		return
	}
	if v, ok := t.Cookies.Read(c.XSRFCookieName); ok && v != "" {
		header.Set(c.XSRFHeaderName, v)
	}
}

func validateHeader(header http.Header) error {
	for k, vs := range header {
		if !httpguts.ValidHeaderFieldName(k) {
			return fmt.Errorf("invalid header field name %q", k)
		}
		for _, v := range vs {
			if !httpguts.ValidHeaderFieldValue(v) {
				return fmt.Errorf("invalid header field value for %q", k)
			}
		}
	}
	return nil
}

func responseData(raw []byte, rt request.ResponseType) interface{} {
	switch rt {
	case request.ResponseBytes:
		return raw
	case request.ResponseJSON:
		var v interface{}
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return string(raw)
}

func configError(c *request.Config, err error) *request.Error {
	return &request.Error{
		Message: "reqflow/transport: " + err.Error(),
		Config:  c,
		Err:     err,
	}
}

func sendError(c *request.Config, r *http.Request, err error) *request.Error {
	e := &request.Error{
		Message: "Network Error",
		Config:  c,
		Request: r,
		Err:     err,
	}
	switch transient.Categorize(err) {
	case transient.Timeout:
		e.Code = request.CodeTimeout
		e.Message = fmt.Sprintf("Timeout of %d ms exceeded", c.Timeout.Milliseconds())
	case transient.ConnRefused:
		e.Code = request.CodeConnRefused
	case transient.ConnReset:
		e.Code = request.CodeConnReset
	default:
		if errors.Is(err, context.Canceled) {
			e.Message = "Request aborted"
		}
	}
	return e
}
