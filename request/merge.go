// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// Merge resolves a per-request override Config against a base Config
// (typically a client's defaults) and returns the result as a new
// Config. Neither argument is modified, and no part of the result
// aliases the base's header or auth, so the result may be changed
// freely without affecting the base. A nil argument is treated as an
// empty Config.
//
// Fields are resolved by one of three policies, listed per field in
// FieldPolicies:
//
// • URL, Params and Data are per-request: the override's value is used
// even if it is unset, because a default value is meaningless for them.
//
// • Header and Auth are deep-merged: if the override sets them, its
// fields are layered over a copy of the base's fields (for Header,
// bucket by bucket); otherwise a copy of the base is used.
//
// • Every other field takes the override's value if it is set
// (non-zero, or non-nil for slices and functions) and the base's
// value otherwise. Because false is the zero value, a true
// WithCredentials in the base cannot be switched off by an override.
func Merge(base, override *Config) *Config {
	if base == nil {
		base = &Config{}
	}
	if override == nil {
		override = &Config{}
	}

	c := &Config{
		URL:    override.URL,
		Params: override.Params,
		Data:   override.Data,

		Header: mergeHeader(base.Header, override.Header),
		Auth:   mergeAuth(base.Auth, override.Auth),

		Method:          pick(base.Method, override.Method),
		BaseURL:         pick(base.BaseURL, override.BaseURL),
		Timeout:         pick(base.Timeout, override.Timeout),
		ResponseType:    pick(base.ResponseType, override.ResponseType),
		CancelToken:     pick(base.CancelToken, override.CancelToken),
		WithCredentials: pick(base.WithCredentials, override.WithCredentials),
		XSRFCookieName:  pick(base.XSRFCookieName, override.XSRFCookieName),
		XSRFHeaderName:  pick(base.XSRFHeaderName, override.XSRFHeaderName),

		ParamsSerializer:   base.ParamsSerializer,
		TransformRequest:   base.TransformRequest,
		TransformResponse:  base.TransformResponse,
		ValidateStatus:     base.ValidateStatus,
		OnUploadProgress:   base.OnUploadProgress,
		OnDownloadProgress: base.OnDownloadProgress,
		ctx:                base.ctx,
	}

	if override.ParamsSerializer != nil {
		c.ParamsSerializer = override.ParamsSerializer
	}
	if override.TransformRequest != nil {
		c.TransformRequest = override.TransformRequest
	}
	if override.TransformResponse != nil {
		c.TransformResponse = override.TransformResponse
	}
	if override.ValidateStatus != nil {
		c.ValidateStatus = override.ValidateStatus
	}
	if override.OnUploadProgress != nil {
		c.OnUploadProgress = override.OnUploadProgress
	}
	if override.OnDownloadProgress != nil {
		c.OnDownloadProgress = override.OnDownloadProgress
	}
	if override.ctx != nil {
		c.ctx = override.ctx
	}

	return c
}

func pick[T comparable](base, override T) T {
	var zero T
	if override != zero {
		return override
	}
	return base
}

func mergeAuth(base, override *BasicAuth) *BasicAuth {
	if base == nil && override == nil {
		return nil
	}
	a := &BasicAuth{}
	if base != nil {
		*a = *base
	}
	if override != nil {
		a.Username = pick(a.Username, override.Username)
		a.Password = pick(a.Password, override.Password)
	}
	return a
}
