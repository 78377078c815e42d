// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqflow

import (
	"github.com/gogama/reqflow/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do sends the request described by a config and returns the final
// response (or error). Client implements the Doer interface, and any
// other Doer implementation must behave substantially the same as
// Client.Do.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Doer interface {
	Do(cfg *request.Config) (*request.Response, error)
}

// Getter is the interface that wraps the basic Get method.
//
// Any Doer can be used to emulate a Getter via the Get function.
type Getter interface {
	Get(url string, cfg *request.Config) (*request.Response, error)
}

// Deleter is the interface that wraps the basic Delete method.
//
// Any Doer can be used to emulate a Deleter via the Delete function.
type Deleter interface {
	Delete(url string, cfg *request.Config) (*request.Response, error)
}

// Header is the interface that wraps the basic Head method.
//
// Any Doer can be used to emulate a Header via the Head function.
type Header interface {
	Head(url string, cfg *request.Config) (*request.Response, error)
}

// Optioner is the interface that wraps the basic Options method.
//
// Any Doer can be used to emulate an Optioner via the Options function.
type Optioner interface {
	Options(url string, cfg *request.Config) (*request.Response, error)
}

// Poster is the interface that wraps the basic Post method.
//
// Any Doer can be used to emulate a Poster via the Post function.
type Poster interface {
	Post(url string, data interface{}, cfg *request.Config) (*request.Response, error)
}

// Putter is the interface that wraps the basic Put method.
//
// Any Doer can be used to emulate a Putter via the Put function.
type Putter interface {
	Put(url string, data interface{}, cfg *request.Config) (*request.Response, error)
}

// Patcher is the interface that wraps the basic Patch method.
//
// Any Doer can be used to emulate a Patcher via the Patch function.
type Patcher interface {
	Patch(url string, data interface{}, cfg *request.Config) (*request.Response, error)
}

// Executor is the interface that groups the basic Do, Get, Delete,
// Head, Options, Post, Put and Patch methods.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Executor interface {
	Doer
	Getter
	Deleter
	Header
	Optioner
	Poster
	Putter
	Patcher
}

// Get uses the specified Doer to issue a GET to the specified URL.
//
// cfg may be nil. If it is not nil, it is copied and the copy's method
// and URL are replaced. cfg itself is never modified.
func Get(d Doer, url string, cfg *request.Config) (*request.Response, error) {
	return d.Do(withMethod(cfg, request.Get, url))
}

// Delete uses the specified Doer to issue a DELETE to the specified
// URL. cfg is treated as by Get.
func Delete(d Doer, url string, cfg *request.Config) (*request.Response, error) {
	return d.Do(withMethod(cfg, request.Delete, url))
}

// Head uses the specified Doer to issue a HEAD to the specified URL.
// cfg is treated as by Get.
func Head(d Doer, url string, cfg *request.Config) (*request.Response, error) {
	return d.Do(withMethod(cfg, request.Head, url))
}

// Options uses the specified Doer to issue an OPTIONS to the specified
// URL. cfg is treated as by Get.
func Options(d Doer, url string, cfg *request.Config) (*request.Response, error) {
	return d.Do(withMethod(cfg, request.Options, url))
}

// Post uses the specified Doer to issue a POST to the specified URL.
//
// cfg may be nil. If it is not nil, it is copied and the copy's method,
// URL and data are replaced, so data replaces cfg.Data even when nil.
// cfg itself is never modified.
func Post(d Doer, url string, data interface{}, cfg *request.Config) (*request.Response, error) {
	return d.Do(withData(cfg, request.Post, url, data))
}

// Put uses the specified Doer to issue a PUT to the specified URL. cfg
// is treated as by Post.
func Put(d Doer, url string, data interface{}, cfg *request.Config) (*request.Response, error) {
	return d.Do(withData(cfg, request.Put, url, data))
}

// Patch uses the specified Doer to issue a PATCH to the specified URL.
// cfg is treated as by Post.
func Patch(d Doer, url string, data interface{}, cfg *request.Config) (*request.Response, error) {
	return d.Do(withData(cfg, request.Patch, url, data))
}

func withMethod(cfg *request.Config, m request.Method, url string) *request.Config {
	c := &request.Config{}
	if cfg != nil {
		*c = *cfg
	}
	c.Method = m
	c.URL = url
	return c
}

func withData(cfg *request.Config, m request.Method, url string, data interface{}) *request.Config {
	c := withMethod(cfg, m, url)
	c.Data = data
	return c
}

// Inflate converts any non-nil Doer into an Executor. This may be
// helpful for interop across library boundaries, i.e. if code that only
// has access to a Doer needs to call a function that requires an
// Executor.
func Inflate(d Doer) Executor {
	if d == nil {
		panic("reqflow: nil doer")
	}

	if e, ok := d.(Executor); ok {
		return e
	}

	return inflated{d}
}

type inflated struct {
	doer Doer
}

func (i inflated) Do(cfg *request.Config) (*request.Response, error) {
	return i.doer.Do(cfg)
}

func (i inflated) Get(url string, cfg *request.Config) (*request.Response, error) {
	return Get(i.doer, url, cfg)
}

func (i inflated) Delete(url string, cfg *request.Config) (*request.Response, error) {
	return Delete(i.doer, url, cfg)
}

func (i inflated) Head(url string, cfg *request.Config) (*request.Response, error) {
	return Head(i.doer, url, cfg)
}

func (i inflated) Options(url string, cfg *request.Config) (*request.Response, error) {
	return Options(i.doer, url, cfg)
}

func (i inflated) Post(url string, data interface{}, cfg *request.Config) (*request.Response, error) {
	return Post(i.doer, url, data, cfg)
}

func (i inflated) Put(url string, data interface{}, cfg *request.Config) (*request.Response, error) {
	return Put(i.doer, url, data, cfg)
}

func (i inflated) Patch(url string, data interface{}, cfg *request.Config) (*request.Response, error) {
	return Patch(i.doer, url, data, cfg)
}
