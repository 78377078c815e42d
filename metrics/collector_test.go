// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"context"
	"errors"
	"net/url"
	"syscall"
	"testing"

	"github.com/gogama/reqflow"
	"github.com/gogama/reqflow/cancel"
	"github.com/gogama/reqflow/request"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transportFunc func(c *request.Config) (*request.Response, error)

func (f transportFunc) Send(c *request.Config) (*request.Response, error) {
	return f(c)
}

func newClient(tr transportFunc) (*reqflow.Client, *Collector) {
	handlers := &reqflow.HandlerGroup{}
	c := NewCollector(prometheus.NewRegistry())
	c.Install(handlers)
	return &reqflow.Client{Transport: tr, Handlers: handlers}, c
}

func TestNewCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	require.NotNil(t, c)
	assert.Panics(t, func() { NewCollector(reg) })
}

func TestCollector(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var inFlight float64
		var c *Collector
		cl, c := newClient(func(cfg *request.Config) (*request.Response, error) {
			inFlight = testutil.ToFloat64(c.requestsInFlight.WithLabelValues("POST"))
			return &request.Response{Status: 201}, nil
		})
		_, err := cl.Post("http://x", "body", nil)
		require.NoError(t, err)
		assert.Equal(t, float64(1), inFlight)
		assert.Equal(t, float64(0), testutil.ToFloat64(c.requestsInFlight.WithLabelValues("POST")))
		assert.Equal(t, float64(1), testutil.ToFloat64(c.requestsTotal.WithLabelValues("POST", "201")))
		assert.Equal(t, 1, testutil.CollectAndCount(c.requestDuration))
		assert.Equal(t, 0, testutil.CollectAndCount(c.errorsTotal))
	})
	t.Run("status failure", func(t *testing.T) {
		cl, c := newClient(func(cfg *request.Config) (*request.Response, error) {
			resp := &request.Response{Status: 404}
			return nil, request.NewError("Request failed with status code 404", cfg, "", nil, resp)
		})
		_, err := cl.Get("http://x", nil)
		require.Error(t, err)
		assert.Equal(t, float64(1), testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "404")))
		assert.Equal(t, float64(1), testutil.ToFloat64(c.errorsTotal.WithLabelValues("GET", KindStatus)))
	})
	t.Run("pre-flight cancel", func(t *testing.T) {
		cl, c := newClient(func(*request.Config) (*request.Response, error) {
			t.Error("transport must not be called")
			return nil, nil
		})
		token, cancelFunc := cancel.Source()
		cancelFunc("")
		_, err := cl.Delete("http://x", &request.Config{CancelToken: token})
		require.Error(t, err)
		assert.Equal(t, float64(1), testutil.ToFloat64(c.errorsTotal.WithLabelValues("DELETE", KindCancelled)))
		assert.Equal(t, float64(1), testutil.ToFloat64(c.requestsTotal.WithLabelValues("DELETE", "0")))
		assert.Equal(t, 0, testutil.CollectAndCount(c.requestsInFlight))
	})
}

func TestKind(t *testing.T) {
	refused := &url.Error{Op: "Get", URL: "http://x", Err: syscall.ECONNREFUSED}
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{"cancel", &cancel.Cancel{}, KindCancelled},
		{"status", &request.Error{Response: &request.Response{Status: 500}}, KindStatus},
		{"timeout", &request.Error{Code: request.CodeTimeout, Err: context.DeadlineExceeded}, "timeout"},
		{"refused", &request.Error{Err: refused}, "conn_refused"},
		{"other", errors.New("wat"), KindOther},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Kind(testCase.err))
		})
	}
}
