// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqflow

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gogama/reqflow/cancel"
	"github.com/gogama/reqflow/request"
	"github.com/gogama/reqflow/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	t.Run("request shapes", testClientRequestShapes)
	t.Run("interceptor order", testClientInterceptorOrder)
	t.Run("interceptor recovery", testClientInterceptorRecovery)
	t.Run("interceptor ejection", testClientInterceptorEjection)
	t.Run("pre-flight cancel", testClientPreflightCancel)
	t.Run("in-flight cancel", testClientInFlightCancel)
	t.Run("json post", testClientJSONPost)
	t.Run("error response transformed", testClientErrorResponseTransformed)
	t.Run("transform failure", testClientTransformFailure)
	t.Run("defaults", testClientDefaults)
	t.Run("handlers", testClientHandlers)
	t.Run("logger", testClientLogger)
	t.Run("servers", testClientServers)
}

func testClientRequestShapes(t *testing.T) {
	t.Run("url", func(t *testing.T) {
		m := newMockTransport(t)
		m.On("Send", mock.MatchedBy(func(c *request.Config) bool {
			return c.Method == request.Get && c.URL == "/foo" &&
				c.Header.Fields.Get("Accept") == "application/json, text/plain, */*"
		})).Return(okResponse("ok"), nil).Once()
		cl := &Client{Transport: m}
		r, err := cl.Request("/foo")
		require.NoError(t, err)
		assert.Equal(t, "ok", r.Data)
		m.AssertExpectations(t)
	})
	t.Run("url and config", func(t *testing.T) {
		cfg := &request.Config{URL: "/ignored", Method: request.Delete}
		m := newMockTransport(t)
		m.On("Send", mock.MatchedBy(func(c *request.Config) bool {
			return c.Method == request.Delete && c.URL == "/bar"
		})).Return(okResponse(nil), nil).Once()
		_, err := (&Client{Transport: m}).Request("/bar", cfg)
		require.NoError(t, err)
		assert.Equal(t, "/ignored", cfg.URL)
		m.AssertExpectations(t)
	})
	t.Run("config", func(t *testing.T) {
		m := newMockTransport(t)
		m.On("Send", mock.MatchedBy(func(c *request.Config) bool {
			return c.Method == request.Put && c.URL == "/baz"
		})).Return(okResponse(nil), nil).Once()
		_, err := (&Client{Transport: m}).Request(&request.Config{URL: "/baz", Method: "PUT"})
		require.NoError(t, err)
		m.AssertExpectations(t)
	})
	t.Run("bad argument", func(t *testing.T) {
		m := newMockTransport(t)
		r, err := (&Client{Transport: m}).Request(123)
		assert.Nil(t, r)
		assert.EqualError(t, err, "reqflow: request argument must be a string or *request.Config, not int")
		m.AssertNotCalled(t, "Send", mock.Anything)
	})
}

func testClientInterceptorOrder(t *testing.T) {
	var order []string
	cl := &Client{
		Transport: transportFunc(func(c *request.Config) (*request.Response, error) {
			order = append(order, "send")
			return okResponse(nil), nil
		}),
	}
	for _, name := range []string{"R1", "R2"} {
		name := name
		cl.Interceptors.Request.Use(func(c *request.Config) (*request.Config, error) {
			order = append(order, name)
			return c, nil
		}, nil)
	}
	for _, name := range []string{"S1", "S2"} {
		name := name
		cl.Interceptors.Response.Use(func(r *request.Response) (*request.Response, error) {
			order = append(order, name)
			return r, nil
		}, nil)
	}
	_, err := cl.Get("/foo", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"R2", "R1", "send", "S1", "S2"}, order)
}

func testClientInterceptorRecovery(t *testing.T) {
	expectedErr := errors.New("stage failed")
	t.Run("request side", func(t *testing.T) {
		m := newMockTransport(t)
		m.On("Send", mock.MatchedBy(func(c *request.Config) bool {
			return c.URL == "/recovered"
		})).Return(okResponse(nil), nil).Once()
		cl := &Client{Transport: m}
		cl.Interceptors.Request.Use(func(c *request.Config) (*request.Config, error) {
			return c, nil
		}, func(err error) (*request.Config, error) {
			assert.Same(t, expectedErr, err)
			return &request.Config{URL: "/recovered"}, nil
		})
		cl.Interceptors.Request.Use(func(c *request.Config) (*request.Config, error) {
			return nil, expectedErr
		}, nil)
		_, err := cl.Get("/foo", nil)
		require.NoError(t, err)
		m.AssertExpectations(t)
	})
	t.Run("request side failure skips dispatch", func(t *testing.T) {
		m := newMockTransport(t)
		cl := &Client{Transport: m}
		var seen error
		cl.Interceptors.Request.Use(func(c *request.Config) (*request.Config, error) {
			return nil, expectedErr
		}, nil)
		cl.Interceptors.Response.Use(func(r *request.Response) (*request.Response, error) {
			t.Error("fulfilled handler must not run")
			return r, nil
		}, func(err error) (*request.Response, error) {
			seen = err
			return nil, err
		})
		r, err := cl.Get("/foo", nil)
		assert.Nil(t, r)
		assert.Same(t, expectedErr, err)
		assert.Same(t, expectedErr, seen)
		m.AssertNotCalled(t, "Send", mock.Anything)
	})
	t.Run("response side", func(t *testing.T) {
		m := newMockTransport(t)
		m.On("Send", mock.Anything).Return(nil, expectedErr).Once()
		cl := &Client{Transport: m}
		recovered := okResponse("cached")
		cl.Interceptors.Response.Use(func(r *request.Response) (*request.Response, error) {
			t.Error("fulfilled handler must not run")
			return r, nil
		}, func(err error) (*request.Response, error) {
			return recovered, nil
		})
		cl.Interceptors.Response.Use(func(r *request.Response) (*request.Response, error) {
			r.StatusText = "seen"
			return r, nil
		}, nil)
		r, err := cl.Get("/foo", nil)
		require.NoError(t, err)
		assert.Same(t, recovered, r)
		assert.Equal(t, "seen", r.StatusText)
	})
	t.Run("nil config", func(t *testing.T) {
		m := newMockTransport(t)
		cl := &Client{Transport: m}
		cl.Interceptors.Request.Use(func(c *request.Config) (*request.Config, error) {
			return nil, nil
		}, nil)
		_, err := cl.Get("/foo", nil)
		assert.Same(t, errNilConfig, err)
		m.AssertNotCalled(t, "Send", mock.Anything)
	})
}

func testClientInterceptorEjection(t *testing.T) {
	m := newMockTransport(t)
	m.On("Send", mock.Anything).Return(okResponse(nil), nil).Twice()
	cl := &Client{Transport: m}
	var n int
	id := cl.Interceptors.Request.Use(func(c *request.Config) (*request.Config, error) {
		n++
		return c, nil
	}, nil)
	_, err := cl.Get("/foo", nil)
	require.NoError(t, err)
	cl.Interceptors.Request.Eject(id)
	cl.Interceptors.Request.Eject(id)
	_, err = cl.Get("/foo", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	m.AssertExpectations(t)
}

func testClientPreflightCancel(t *testing.T) {
	m := newMockTransport(t)
	var events []Event
	handlers := &HandlerGroup{}
	for _, evt := range Events() {
		handlers.PushBack(evt, HandlerFunc(func(evt Event, _ *request.Execution) {
			events = append(events, evt)
		}))
	}
	cl := &Client{Transport: m, Handlers: handlers}
	token, cancelFunc := cancel.Source()
	cancelFunc("too late")
	cancelFunc("ignored")

	r, err := cl.Get("/foo", &request.Config{CancelToken: token})
	assert.Nil(t, r)
	require.True(t, cancel.IsCancel(err))
	assert.Same(t, token.Reason(), err)
	assert.EqualError(t, err, "too late")
	assert.Equal(t, []Event{BeforeDispatch, AfterCancel, AfterDispatch}, events)
	m.AssertNotCalled(t, "Send", mock.Anything)
}

func testClientInFlightCancel(t *testing.T) {
	aborted := make(chan struct{})
	started := make(chan struct{})
	cl := &Client{
		Transport: transportFunc(func(c *request.Config) (*request.Response, error) {
			close(started)
			<-c.Context().Done()
			close(aborted)
			return nil, c.Context().Err()
		}),
	}
	token, cancelFunc := cancel.Source()
	go func() {
		<-started
		cancelFunc("user went away")
	}()

	r, err := cl.Get("/foo", &request.Config{CancelToken: token})
	assert.Nil(t, r)
	require.True(t, cancel.IsCancel(err))
	assert.EqualError(t, err, "user went away")
	assert.ErrorIs(t, err, context.Canceled)
	select {
	case <-aborted:
	case <-time.After(5 * time.Second):
		t.Fatal("transport was not aborted")
	}
}

func testClientJSONPost(t *testing.T) {
	var sent *request.Config
	cl := &Client{
		Transport: transportFunc(func(c *request.Config) (*request.Response, error) {
			sent = c
			return okResponse(`{"ok":true}`), nil
		}),
	}
	data := map[string]interface{}{"a": 1}
	r, err := cl.Post("/foo", data, nil)
	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, request.Post, sent.Method)
	assert.Equal(t, "/foo", sent.URL)
	assert.Equal(t, `{"a":1}`, sent.Data)
	assert.Equal(t, transform.JSONContentType, sent.Header.Fields.Get("Content-Type"))
	assert.Equal(t, "application/json, text/plain, */*", sent.Header.Fields.Get("Accept"))
	assert.Nil(t, sent.Header.Common)
	assert.Nil(t, sent.Header.Methods)
	assert.Equal(t, map[string]interface{}{"a": 1}, data)
	assert.Equal(t, map[string]interface{}{"ok": true}, r.Data)
}

func testClientErrorResponseTransformed(t *testing.T) {
	cl := &Client{
		Transport: transportFunc(func(c *request.Config) (*request.Response, error) {
			resp := &request.Response{Status: 500, Data: `{"e":1}`, Config: c}
			return nil, request.NewError("Request failed with status code 500", c, "", nil, resp)
		}),
	}
	var seen *request.Response
	cl.Interceptors.Response.Use(func(r *request.Response) (*request.Response, error) {
		return r, nil
	}, func(err error) (*request.Response, error) {
		var rerr *request.Error
		if errors.As(err, &rerr) {
			seen = rerr.Response
		}
		return nil, err
	})
	r, err := cl.Get("/foo", nil)
	assert.Nil(t, r)
	var rerr *request.Error
	require.ErrorAs(t, err, &rerr)
	require.NotNil(t, rerr.Response)
	assert.Equal(t, map[string]interface{}{"e": float64(1)}, rerr.Response.Data)
	assert.Same(t, rerr.Response, seen)
}

func testClientTransformFailure(t *testing.T) {
	expectedErr := errors.New("cannot transform")
	failing := func(interface{}, http.Header) (interface{}, error) {
		return nil, expectedErr
	}
	t.Run("request", func(t *testing.T) {
		m := newMockTransport(t)
		_, err := (&Client{Transport: m}).Post("/foo", "x", &request.Config{
			TransformRequest: []transform.Func{failing},
		})
		assert.Same(t, expectedErr, err)
		m.AssertNotCalled(t, "Send", mock.Anything)
	})
	t.Run("response", func(t *testing.T) {
		m := newMockTransport(t)
		m.On("Send", mock.Anything).Return(okResponse("x"), nil).Once()
		_, err := (&Client{Transport: m}).Get("/foo", &request.Config{
			TransformResponse: []transform.Func{failing},
		})
		assert.Same(t, expectedErr, err)
	})
}

func testClientDefaults(t *testing.T) {
	t.Run("not modified", func(t *testing.T) {
		defaults := DefaultConfig()
		before := defaults.Clone()
		m := newMockTransport(t)
		m.On("Send", mock.Anything).Return(okResponse(nil), nil).Once()
		cl := &Client{Defaults: defaults, Transport: m}
		cl.Interceptors.Request.Use(func(c *request.Config) (*request.Config, error) {
			c.Header.Set("X-Mutated", "yes")
			c.Header.SetCommon("X-Mutated", "yes")
			return c, nil
		}, nil)
		_, err := cl.Post("/foo", map[string]string{"a": "b"}, nil)
		require.NoError(t, err)
		assert.Equal(t, before.Header, defaults.Header)
		assert.Equal(t, before.URL, defaults.URL)
	})
	t.Run("New", func(t *testing.T) {
		h := request.NewHeader()
		h.SetCommon("X-Api-Key", "secret")
		cl := New(&request.Config{BaseURL: "https://api.example.com/v1/", Header: h})
		assert.Equal(t, request.Get, cl.Defaults.Method)
		assert.Equal(t, "secret", cl.Defaults.Header.Common.Get("X-Api-Key"))
		assert.Equal(t, "application/json, text/plain, */*", cl.Defaults.Header.Common.Get("Accept"))
		assert.Equal(t, "XSRF-TOKEN", cl.Defaults.XSRFCookieName)
	})
	t.Run("GetURI", func(t *testing.T) {
		cl := New(&request.Config{BaseURL: "https://api.example.com/v1/"})
		u, err := cl.GetURI(&request.Config{URL: "/users", Params: url.Values{"id": {"1"}}})
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/v1/users?id=1", u)
		u, err = cl.GetURI(&request.Config{URL: "http://other.example/x"})
		require.NoError(t, err)
		assert.Equal(t, "http://other.example/x", u)
	})
	t.Run("DefaultValidateStatus", func(t *testing.T) {
		assert.False(t, DefaultValidateStatus(199))
		assert.True(t, DefaultValidateStatus(200))
		assert.True(t, DefaultValidateStatus(299))
		assert.False(t, DefaultValidateStatus(300))
	})
}

func testClientHandlers(t *testing.T) {
	m := newMockTransport(t)
	m.On("Send", mock.Anything).Return(okResponse(nil), nil).Once()
	var events []Event
	var exec *request.Execution
	handlers := &HandlerGroup{}
	for _, evt := range Events() {
		handlers.PushBack(evt, HandlerFunc(func(evt Event, e *request.Execution) {
			events = append(events, evt)
			exec = e
			switch evt {
			case BeforeDispatch:
				assert.True(t, e.Started())
				assert.Equal(t, "/users", e.Config.URL)
			case BeforeSend:
				assert.Equal(t, "https://api.example.com/users?page=2", e.Config.URL)
				assert.Equal(t, "text/plain", e.Config.Header.Fields.Get("Accept"))
				e.Config.Header.Fields.Set("X-Send", "1")
			case AfterSend:
				assert.NotNil(t, e.Response)
				assert.False(t, e.Ended())
			case AfterDispatch:
				assert.True(t, e.Ended())
			}
		}))
	}
	h := request.NewHeader()
	h.SetFor(request.Get, "Accept", "text/plain")
	cl := &Client{Transport: m, Handlers: handlers}
	_, err := cl.Get("/users", &request.Config{
		BaseURL: "https://api.example.com",
		Params:  map[string]interface{}{"page": 2},
		Header:  h,
	})
	require.NoError(t, err)
	assert.Equal(t, []Event{BeforeDispatch, BeforeSend, AfterSend, AfterDispatch}, events)
	assert.Equal(t, 200, exec.StatusCode())
	assert.Equal(t, "1", m.Calls[0].Arguments.Get(0).(*request.Config).Header.Fields.Get("X-Send"))
}

func testClientLogger(t *testing.T) {
	var buf bytes.Buffer
	m := newMockTransport(t)
	m.On("Send", mock.Anything).Return(okResponse(nil), nil).Once()
	m.On("Send", mock.Anything).Return(nil, errors.New("boom")).Once()
	cl := &Client{
		Transport: m,
		Logger:    slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
	_, err := cl.Get("/ok", nil)
	require.NoError(t, err)
	_, err = cl.Get("/fail", nil)
	require.Error(t, err)
	out := buf.String()
	assert.Contains(t, out, "msg=\"sending request\" method=GET url=/ok")
	assert.Contains(t, out, "msg=\"request complete\" method=GET url=/ok status=200")
	assert.Contains(t, out, "msg=\"request failed\" method=GET url=/fail status=0 err=boom")
}

func testClientServers(t *testing.T) {
	for _, server := range servers {
		server := server
		t.Run(serverName(server), func(t *testing.T) {
			t.Parallel()
			cl := serverClient(server)
			t.Run("get", func(t *testing.T) {
				r, err := cl.Get(server.URL+"/foo", &request.Config{Params: url.Values{"a": {"1"}}})
				require.NoError(t, err)
				m, ok := r.Data.(map[string]interface{})
				require.True(t, ok)
				assert.Equal(t, "GET", m["Method"])
				assert.Equal(t, "/foo", m["Path"])
				assert.Equal(t, "a=1", m["Query"])
			})
			t.Run("post json", func(t *testing.T) {
				r, err := cl.Post(server.URL, struct{ Name string }{"ham"}, nil)
				require.NoError(t, err)
				m := r.Data.(map[string]interface{})
				assert.Equal(t, `{"Name":"ham"}`, m["Body"])
				header := m["Header"].(map[string]interface{})
				assert.Equal(t, []interface{}{transform.JSONContentType}, header["Content-Type"])
			})
			t.Run("status rejected", func(t *testing.T) {
				r, err := cl.Get(server.URL+"?status=503", nil)
				assert.Nil(t, r)
				var rerr *request.Error
				require.ErrorAs(t, err, &rerr)
				assert.Equal(t, "Request failed with status code 503", rerr.Message)
				assert.Equal(t, "GET", rerr.Response.Data.(map[string]interface{})["Method"])
			})
			t.Run("timeout", func(t *testing.T) {
				_, err := cl.Get(server.URL+"?pause=5s", &request.Config{Timeout: 50 * time.Millisecond})
				var rerr *request.Error
				require.ErrorAs(t, err, &rerr)
				assert.True(t, rerr.Timeout())
			})
			t.Run("cancel", func(t *testing.T) {
				token, cancelFunc := cancel.Source()
				time.AfterFunc(50*time.Millisecond, func() { cancelFunc("") })
				_, err := cl.Get(server.URL+"?pause=5s", &request.Config{CancelToken: token})
				assert.True(t, cancel.IsCancel(err))
			})
			t.Run("concurrent", func(t *testing.T) {
				var wg sync.WaitGroup
				for i := 0; i < 10; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						_, err := cl.Delete(server.URL, nil)
						assert.NoError(t, err)
					}()
				}
				wg.Wait()
			})
		})
	}
}

func okResponse(data interface{}) *request.Response {
	return &request.Response{Status: 200, StatusText: "200 OK", Data: data}
}

type transportFunc func(c *request.Config) (*request.Response, error)

func (f transportFunc) Send(c *request.Config) (*request.Response, error) {
	return f(c)
}

type mockTransport struct {
	mock.Mock
}

func newMockTransport(t *testing.T) *mockTransport {
	m := &mockTransport{}
	m.Test(t)
	return m
}

func (m *mockTransport) Send(c *request.Config) (*request.Response, error) {
	args := m.Called(c)
	r, _ := args.Get(0).(*request.Response)
	return r, args.Error(1)
}
