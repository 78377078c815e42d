// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqflow

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gogama/reqflow/cancel"
	"github.com/gogama/reqflow/interceptor"
	"github.com/gogama/reqflow/request"
	"github.com/gogama/reqflow/transform"
	"github.com/gogama/reqflow/transport"
)

// A Transport sends a fully resolved request and returns the response.
//
// The config's context is the abort capability: when the request is
// cancelled while Send is in flight, the context is cancelled, and
// Send should return promptly. Send should fail with a *request.Error
// on network failure, timeout, or a status rejected by the config's
// ValidateStatus.
//
// transport.HTTP is the default Transport.
type Transport interface {
	Send(c *request.Config) (*request.Response, error)
}

// Interceptors holds a client's request and response interceptors.
//
// Request interceptors run newest first, before dispatch. Response
// interceptors run oldest first, after dispatch.
type Interceptors struct {
	Request  interceptor.Manager[*request.Config]
	Response interceptor.Manager[*request.Response]
}

// Client is an HTTP client which merges each request's config over its
// defaults, passes it through its interceptors, and dispatches it to a
// Transport.
//
// The zero value is a valid client with the package default config,
// the default HTTP transport, no handlers and no logging. A Client is
// safe for concurrent use, but must not be copied after first use.
type Client struct {
	// Defaults is the config every request config is merged over. If
	// nil, DefaultConfig() is used. Defaults is never modified by the
	// client.
	Defaults *request.Config

	// Transport sends requests. If nil, a zero transport.HTTP is used,
	// which sends requests with http.DefaultClient.
	Transport Transport

	// Handlers allows custom handler chains to be invoked when
	// designated events occur during dispatch. If nil, no handlers
	// are run.
	Handlers *HandlerGroup

	// Logger receives debug logs for each dispatch. If nil, nothing is
	// logged.
	Logger *slog.Logger

	// Interceptors holds the client's interceptors. The zero value has
	// no interceptors.
	Interceptors Interceptors
}

// New returns a client whose defaults are cfg merged over
// DefaultConfig(). cfg may be nil.
func New(cfg *request.Config) *Client {
	return &Client{
		Defaults: request.Merge(DefaultConfig(), cfg),
	}
}

// Request sends a request and returns the final response.
//
// urlOrConfig is either a URL string, which is folded into a copy of
// the optional config, or a *request.Config describing the whole
// request, in which case config is ignored. Any other type of
// urlOrConfig is an error.
func (c *Client) Request(urlOrConfig interface{}, config ...*request.Config) (*request.Response, error) {
	switch x := urlOrConfig.(type) {
	case string:
		cfg := &request.Config{}
		if len(config) > 0 && config[0] != nil {
			*cfg = *config[0]
		}
		cfg.URL = x
		return c.Do(cfg)
	case *request.Config:
		return c.Do(x)
	default:
		return nil, fmt.Errorf("reqflow: request argument must be a string or *request.Config, not %T", urlOrConfig)
	}
}

// Do sends the request described by cfg and returns the final
// response. cfg may be nil, meaning the client defaults alone.
//
// Do merges cfg over the client defaults, runs the request
// interceptors newest first, dispatches, and runs the response
// interceptors oldest first. Each interceptor sees the outcome of the
// one before it: its fulfilled handler runs if that outcome succeeded,
// its rejected handler, if any, if it failed. A rejected handler can
// recover, resuming the success path, or fail again.
//
// Dispatch is skipped if the request side ends in failure. Otherwise
// it fails immediately with a *cancel.Cancel if the config's
// CancelToken was already cancelled; resolves the URL against BaseURL
// and Params; transforms Data with TransformRequest; flattens the
// header for the method; and sends the result with the Transport,
// failing with the token's *cancel.Cancel if the token is cancelled
// before the Transport returns. The response body is transformed with
// TransformResponse, including the body of the response carried by a
// *request.Error.
//
// Exactly one of the returned response and error is non-nil, unless a
// response interceptor recovers with a nil response.
func (c *Client) Do(cfg *request.Config) (*request.Response, error) {
	merged := request.Merge(c.defaults(), cfg)
	f := &flow{config: merged}
	for _, s := range c.pipeline() {
		s(f)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

// GetURI returns the URL a request with config cfg would be sent to,
// without sending it. Request interceptors are not run.
func (c *Client) GetURI(cfg *request.Config) (string, error) {
	return request.ResolveURL(request.Merge(c.defaults(), cfg))
}

// Get issues a GET to the specified URL. cfg may be nil.
func (c *Client) Get(url string, cfg *request.Config) (*request.Response, error) {
	return Get(c, url, cfg)
}

// Delete issues a DELETE to the specified URL. cfg may be nil.
func (c *Client) Delete(url string, cfg *request.Config) (*request.Response, error) {
	return Delete(c, url, cfg)
}

// Head issues a HEAD to the specified URL. cfg may be nil.
func (c *Client) Head(url string, cfg *request.Config) (*request.Response, error) {
	return Head(c, url, cfg)
}

// Options issues an OPTIONS to the specified URL. cfg may be nil.
func (c *Client) Options(url string, cfg *request.Config) (*request.Response, error) {
	return Options(c, url, cfg)
}

// Post issues a POST to the specified URL with data as the request
// data. cfg may be nil.
func (c *Client) Post(url string, data interface{}, cfg *request.Config) (*request.Response, error) {
	return Post(c, url, data, cfg)
}

// Put issues a PUT to the specified URL with data as the request data.
// cfg may be nil.
func (c *Client) Put(url string, data interface{}, cfg *request.Config) (*request.Response, error) {
	return Put(c, url, data, cfg)
}

// Patch issues a PATCH to the specified URL with data as the request
// data. cfg may be nil.
func (c *Client) Patch(url string, data interface{}, cfg *request.Config) (*request.Response, error) {
	return Patch(c, url, data, cfg)
}

// flow is the value carried through the pipeline stages of one call.
type flow struct {
	config   *request.Config
	response *request.Response
	err      error
}

// A stage is one step of the pipeline built for a single call.
type stage func(f *flow)

// pipeline assembles the stages for one call from snapshots of the
// interceptors, so registration changes made while the call is in
// progress do not affect it.
func (c *Client) pipeline() []stage {
	req := c.Interceptors.Request.Snapshot()
	resp := c.Interceptors.Response.Snapshot()
	stages := make([]stage, 0, len(req)+1+len(resp))
	for n := len(req) - 1; n >= 0; n-- {
		i := req[n]
		stages = append(stages, func(f *flow) {
			f.config, f.err = i.Run(f.config, f.err)
		})
	}
	stages = append(stages, func(f *flow) {
		if f.err == nil {
			f.response, f.err = c.dispatch(f.config)
		}
	})
	for _, i := range resp {
		i := i
		stages = append(stages, func(f *flow) {
			f.response, f.err = i.Run(f.response, f.err)
		})
	}
	return stages
}

var errNilConfig = errors.New("reqflow: request interceptor returned nil config")

func (c *Client) dispatch(cfg *request.Config) (*request.Response, error) {
	if cfg == nil {
		return nil, errNilConfig
	}

	h := c.handlers()
	e := &request.Execution{
		Config: cfg,
		Start:  time.Now(),
	}
	h.run(BeforeDispatch, e)

	c.send(e, h)

	e.End = time.Now()
	h.run(AfterDispatch, e)
	c.logResult(e)

	if e.Err != nil {
		return nil, e.Err
	}
	return e.Response, nil
}

func (c *Client) send(e *request.Execution, h *HandlerGroup) {
	if token := e.Config.CancelToken; token != nil {
		if err := token.Err(); err != nil {
			e.Err = err
			h.run(AfterCancel, e)
			return
		}
	}

	prepared, err := prepare(e.Config)
	if err != nil {
		e.Err = err
		return
	}
	e.Config = prepared
	h.run(BeforeSend, e)

	c.logger().Debug("sending request",
		"method", e.Config.Method.Wire(),
		"url", e.Config.URL)
	e.Response, e.Err = c.roundTrip(e.Config)
	var rerr *request.Error
	if e.Err != nil && errors.As(e.Err, &rerr) && rerr.Response != nil {
		e.Response = rerr.Response
	}
	h.run(AfterSend, e)

	if cancel.IsCancel(e.Err) {
		h.run(AfterCancel, e)
		return
	}

	if e.Response != nil {
		data, err := transform.Apply(e.Response.Data, e.Response.Header, e.Config.TransformResponse...)
		if err != nil {
			e.Err = err
			return
		}
		e.Response.Data = data
	}
}

// prepare returns a copy of c ready for the transport: the URL resolved
// with BaseURL and Params, the data transformed, and the header
// flattened for the method. c itself is not modified.
func prepare(c *request.Config) (*request.Config, error) {
	p := c.Clone()
	p.Method = p.Method.Normalize()

	u, err := request.ResolveURL(p)
	if err != nil {
		return nil, err
	}
	p.URL = u
	p.BaseURL = ""
	p.Params = nil

	if p.Header == nil {
		p.Header = request.NewHeader()
	} else if p.Header.Fields == nil {
		p.Header.Fields = make(http.Header)
	}
	p.Data, err = transform.Apply(p.Data, p.Header.Fields, p.TransformRequest...)
	if err != nil {
		return nil, err
	}

	p.Header = &request.Header{Fields: p.Header.Flatten(p.Method)}
	return p, nil
}

// roundTrip sends c with the transport, racing the send against c's
// cancellation token. If the token wins, the transport's context is
// cancelled and the token's reason is returned without waiting for the
// transport.
func (c *Client) roundTrip(cfg *request.Config) (*request.Response, error) {
	t := c.transport()
	token := cfg.CancelToken
	if token == nil {
		return t.Send(cfg)
	}

	ctx, abort := token.Bind(cfg.Context())
	defer abort()
	bound := cfg.WithContext(ctx)

	type result struct {
		resp *request.Response
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := t.Send(bound)
		ch <- result{resp, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && token.Requested() {
			return nil, token.Reason()
		}
		return r.resp, r.err
	case <-token.Done():
		return nil, token.Reason()
	}
}

func (c *Client) logResult(e *request.Execution) {
	l := c.logger()
	switch {
	case e.Cancelled():
		l.Debug("request cancelled",
			"url", e.Config.URL,
			"err", e.Err)
	case e.Err != nil:
		l.Debug("request failed",
			"method", e.Config.Method.Wire(),
			"url", e.Config.URL,
			"status", e.StatusCode(),
			"err", e.Err)
	default:
		l.Debug("request complete",
			"method", e.Config.Method.Wire(),
			"url", e.Config.URL,
			"status", e.StatusCode(),
			"duration", e.Duration())
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return discardLogger
	}
	return c.Logger
}

func (c *Client) defaults() *request.Config {
	if c.Defaults == nil {
		return DefaultConfig()
	}
	return c.Defaults
}

var defaultTransport = &transport.HTTP{}

func (c *Client) transport() Transport {
	if c.Transport == nil {
		return defaultTransport
	}
	return c.Transport
}

var emptyHandlers = &HandlerGroup{}

func (c *Client) handlers() *HandlerGroup {
	if c.Handlers == nil {
		return emptyHandlers
	}
	return c.Handlers
}
