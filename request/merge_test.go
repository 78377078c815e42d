// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gogama/reqflow/cancel"
	"github.com/gogama/reqflow/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBase() *Config {
	return &Config{
		URL:     "/base",
		Method:  Get,
		BaseURL: "https://example.com",
		Header: &Header{
			Common: http.Header{"Accept": {"application/json"}},
			Methods: map[Method]http.Header{
				Get:  {},
				Post: {"Content-Type": {"application/x-www-form-urlencoded"}},
			},
		},
		Params:           map[string]string{"p": "1"},
		Data:             "base data",
		Timeout:          time.Second,
		TransformRequest: []transform.Func{transform.JSONRequest},
		ValidateStatus:   func(s int) bool { return s < 300 },
		Auth:             &BasicAuth{Username: "u", Password: "p"},
		XSRFCookieName:   "XSRF-TOKEN",
		XSRFHeaderName:   "X-XSRF-TOKEN",
	}
}

func TestMerge(t *testing.T) {
	t.Run("empty override", func(t *testing.T) {
		base := testBase()
		for _, override := range []*Config{nil, {}} {
			c := Merge(base, override)
			assert.Empty(t, c.URL)
			assert.Nil(t, c.Params)
			assert.Nil(t, c.Data)
			assert.Equal(t, base.Method, c.Method)
			assert.Equal(t, base.BaseURL, c.BaseURL)
			assert.Equal(t, base.Header, c.Header)
			assert.NotSame(t, base.Header, c.Header)
			assert.Equal(t, base.Auth, c.Auth)
			assert.NotSame(t, base.Auth, c.Auth)
			assert.Equal(t, base.Timeout, c.Timeout)
			assert.Len(t, c.TransformRequest, 1)
			assert.NotNil(t, c.ValidateStatus)
			assert.Equal(t, base.XSRFCookieName, c.XSRFCookieName)
		}
	})
	t.Run("empty base", func(t *testing.T) {
		c := Merge(nil, &Config{URL: "x", Method: Put})
		assert.Equal(t, "x", c.URL)
		assert.Equal(t, Put, c.Method)
		assert.Nil(t, c.Header)
		assert.Nil(t, c.Auth)
	})
	t.Run("override only", func(t *testing.T) {
		base := testBase()
		c := Merge(base, &Config{URL: "x", Params: "q", Data: 1})
		assert.Equal(t, "x", c.URL)
		assert.Equal(t, "q", c.Params)
		assert.Equal(t, 1, c.Data)
	})
	t.Run("override or base", func(t *testing.T) {
		base := testBase()
		token, _ := cancel.Source()
		ctx := context.WithValue(context.Background(), funKey{}, "v")
		override := &Config{
			Method:            Post,
			Timeout:           time.Minute,
			ResponseType:      ResponseBytes,
			CancelToken:       token,
			WithCredentials:   true,
			TransformRequest:  []transform.Func{},
			TransformResponse: []transform.Func{transform.JSONResponse},
		}
		override = override.WithContext(ctx)
		c := Merge(base, override)
		assert.Equal(t, Post, c.Method)
		assert.Equal(t, base.BaseURL, c.BaseURL)
		assert.Equal(t, time.Minute, c.Timeout)
		assert.Equal(t, ResponseBytes, c.ResponseType)
		assert.Same(t, token, c.CancelToken)
		assert.True(t, c.WithCredentials)
		assert.NotNil(t, c.TransformRequest)
		assert.Empty(t, c.TransformRequest)
		assert.Len(t, c.TransformResponse, 1)
		assert.Equal(t, "v", c.Context().Value(funKey{}))
	})
	t.Run("deep merge header", func(t *testing.T) {
		base := &Config{Header: &Header{Common: http.Header{"A": {"1"}}}}
		override := &Config{Header: &Header{Common: http.Header{"B": {"2"}}}}
		c := Merge(base, override)
		assert.Equal(t, http.Header{"A": {"1"}, "B": {"2"}}, c.Header.Common)
		assert.Equal(t, http.Header{"A": {"1"}}, base.Header.Common)
		assert.Equal(t, http.Header{"B": {"2"}}, override.Header.Common)
	})
	t.Run("deep merge header buckets", func(t *testing.T) {
		base := testBase()
		override := &Config{Header: &Header{
			Fields:  http.Header{"X-Req": {"1"}},
			Common:  http.Header{"Accept": {"text/plain"}},
			Methods: map[Method]http.Header{"POST": {"X-Post": {"y"}}, Patch: {"X-Patch": {"z"}}},
		}}
		c := Merge(base, override)
		require.NotNil(t, c.Header)
		assert.Equal(t, http.Header{"X-Req": {"1"}}, c.Header.Fields)
		assert.Equal(t, http.Header{"Accept": {"text/plain"}}, c.Header.Common)
		assert.Equal(t, http.Header{
			"Content-Type": {"application/x-www-form-urlencoded"},
			"X-Post":       {"y"},
		}, c.Header.Methods[Post])
		assert.Equal(t, http.Header{"X-Patch": {"z"}}, c.Header.Methods[Patch])
		assert.Equal(t, http.Header{}, c.Header.Methods[Get])
		assert.Equal(t, testBase().Header, base.Header)
	})
	t.Run("deep merge auth", func(t *testing.T) {
		base := testBase()
		c := Merge(base, &Config{Auth: &BasicAuth{Password: "secret"}})
		assert.Equal(t, &BasicAuth{Username: "u", Password: "secret"}, c.Auth)
		assert.Equal(t, &BasicAuth{Username: "u", Password: "p"}, base.Auth)

		c = Merge(nil, &Config{Auth: &BasicAuth{Username: "x"}})
		assert.Equal(t, &BasicAuth{Username: "x"}, c.Auth)
	})
	t.Run("result does not alias base", func(t *testing.T) {
		base := testBase()
		c := Merge(base, nil)
		c.Header.Common.Set("Accept", "changed")
		c.Header.Methods[Post].Set("X-New", "1")
		c.Header.Set("X-Top", "1")
		c.Auth.Username = "changed"
		assert.Equal(t, testBase().Header, base.Header)
		assert.Equal(t, "u", base.Auth.Username)
	})
	t.Run("idempotent", func(t *testing.T) {
		base := testBase()
		override := &Config{URL: "/x", Header: &Header{Fields: http.Header{"K": {"v"}}}}
		c1 := Merge(base, override)
		c2 := Merge(base, override)
		assert.Equal(t, c1.URL, c2.URL)
		assert.Equal(t, c1.Header, c2.Header)
		assert.Equal(t, c1.Auth, c2.Auth)
		assert.NotSame(t, c1.Header, c2.Header)
	})
}
