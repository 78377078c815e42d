// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cliconfig loads the reqflow command's defaults file.
package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gogama/reqflow/request"
	"gopkg.in/yaml.v3"
)

// File is the YAML defaults file of the reqflow command.
type File struct {
	BaseURL         string                       `yaml:"base_url"`
	Timeout         string                       `yaml:"timeout"`
	Headers         map[string]string            `yaml:"headers"`
	MethodHeaders   map[string]map[string]string `yaml:"method_headers"`
	Auth            *Auth                        `yaml:"auth"`
	ResponseType    string                       `yaml:"response_type"`
	WithCredentials bool                         `yaml:"with_credentials"`
	XSRFCookieName  string                       `yaml:"xsrf_cookie_name"`
	XSRFHeaderName  string                       `yaml:"xsrf_header_name"`
	// Rate limits requests per second. Zero means unlimited.
	Rate float64 `yaml:"rate"`
	// RequestIDHeader, if set, names a header given a fresh UUID on
	// every request.
	RequestIDHeader string `yaml:"request_id_header"`
	// History is the path of the SQLite request history database.
	History string `yaml:"history"`
}

// Auth holds basic auth credentials.
type Auth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Load reads the defaults file at path and applies environment
// overrides. An empty path yields an empty File with only the
// environment overrides applied.
func Load(path string) (*File, error) {
	f := &File{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cliconfig: read %s: %w", path, err)
		}
		if err = yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("cliconfig: parse %s: %w", path, err)
		}
	}
	if err := f.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) applyEnvOverrides() error {
	if v := os.Getenv("REQFLOW_BASE_URL"); v != "" {
		f.BaseURL = v
	}
	if v := os.Getenv("REQFLOW_TIMEOUT"); v != "" {
		f.Timeout = v
	}
	if v := os.Getenv("REQFLOW_RATE"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("cliconfig: REQFLOW_RATE: %w", err)
		}
		f.Rate = r
	}
	if v := os.Getenv("REQFLOW_HISTORY"); v != "" {
		f.History = v
	}
	return nil
}

// Config converts f into a request config suitable as client defaults.
func (f *File) Config() (*request.Config, error) {
	c := &request.Config{
		BaseURL:         f.BaseURL,
		ResponseType:    request.ResponseType(f.ResponseType),
		WithCredentials: f.WithCredentials,
		XSRFCookieName:  f.XSRFCookieName,
		XSRFHeaderName:  f.XSRFHeaderName,
	}
	switch c.ResponseType {
	case "", request.ResponseText, request.ResponseJSON, request.ResponseBytes:
	default:
		return nil, fmt.Errorf("cliconfig: unknown response_type %q", f.ResponseType)
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return nil, fmt.Errorf("cliconfig: timeout: %w", err)
		}
		c.Timeout = d
	}
	if len(f.Headers) > 0 || len(f.MethodHeaders) > 0 {
		h := &request.Header{}
		for k, v := range f.Headers {
			h.SetCommon(k, v)
		}
		for m, fields := range f.MethodHeaders {
			for k, v := range fields {
				h.SetFor(request.Method(m), k, v)
			}
		}
		c.Header = h
	}
	if f.Auth != nil {
		c.Auth = &request.BasicAuth{Username: f.Auth.Username, Password: f.Auth.Password}
	}
	return c, nil
}
