// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"net/textproto"
)

// A Header holds request header fields in three layers: fields common
// to every request, fields for one request method, and top-level
// fields for this request. Flatten collapses the layers into a single
// http.Header.
type Header struct {
	// Fields holds the top-level fields. They take precedence over the
	// bucketed fields when the header is flattened. Request
	// transformers receive this map.
	Fields http.Header
	// Common holds fields sent with every request method.
	Common http.Header
	// Methods holds fields sent only with a specific method. Keys are
	// matched case-insensitively.
	Methods map[Method]http.Header
}

// NewHeader returns an empty Header whose top-level field map is
// allocated.
func NewHeader() *Header {
	return &Header{Fields: make(http.Header)}
}

// Set sets a top-level header field, allocating Fields if necessary.
func (h *Header) Set(key, value string) {
	if h.Fields == nil {
		h.Fields = make(http.Header)
	}
	h.Fields.Set(key, value)
}

// Get returns the first value of a top-level header field.
func (h *Header) Get(key string) string {
	if h == nil {
		return ""
	}
	return h.Fields.Get(key)
}

// SetCommon sets a field in the common bucket.
func (h *Header) SetCommon(key, value string) {
	if h.Common == nil {
		h.Common = make(http.Header)
	}
	h.Common.Set(key, value)
}

// SetFor sets a field in the bucket for method m.
func (h *Header) SetFor(m Method, key, value string) {
	m = m.Normalize()
	if h.Methods == nil {
		h.Methods = make(map[Method]http.Header)
	}
	if h.Methods[m] == nil {
		h.Methods[m] = make(http.Header)
	}
	h.Methods[m].Set(key, value)
}

// Clone returns a deep copy of h. The clone of a nil Header is nil.
func (h *Header) Clone() *Header {
	if h == nil {
		return nil
	}
	h2 := &Header{
		Fields: h.Fields.Clone(),
		Common: h.Common.Clone(),
	}
	if h.Methods != nil {
		h2.Methods = make(map[Method]http.Header, len(h.Methods))
		for m, b := range h.Methods {
			h2.Methods[m] = b.Clone()
		}
	}
	return h2
}

// Flatten returns a new http.Header holding the common fields, then
// the fields for method m, then the top-level fields, each layer
// replacing same-named fields of the layers before it. The buckets
// themselves do not appear in the result. Field names are
// canonicalized.
//
// Flatten does not modify h. The flattened header of a nil Header is
// an empty, non-nil http.Header.
func (h *Header) Flatten(m Method) http.Header {
	flat := make(http.Header)
	if h == nil {
		return flat
	}
	overlay(flat, h.Common)
	m = m.Normalize()
	for bm, b := range h.Methods {
		if bm.Normalize() == m {
			overlay(flat, b)
		}
	}
	overlay(flat, h.Fields)
	return flat
}

func overlay(dst, src http.Header) {
	for k, v := range src {
		dst[textproto.CanonicalMIMEHeaderKey(k)] = append([]string(nil), v...)
	}
}

func mergeFields(base, override http.Header) http.Header {
	if base == nil && override == nil {
		return nil
	}
	merged := make(http.Header, len(base)+len(override))
	overlay(merged, base)
	overlay(merged, override)
	return merged
}

func mergeHeader(base, override *Header) *Header {
	if override == nil {
		return base.Clone()
	}
	if base == nil {
		base = &Header{}
	}
	h := &Header{
		Fields: mergeFields(base.Fields, override.Fields),
		Common: mergeFields(base.Common, override.Common),
	}
	if base.Methods != nil || override.Methods != nil {
		h.Methods = make(map[Method]http.Header)
		for m, b := range base.Methods {
			h.Methods[m.Normalize()] = mergeFields(h.Methods[m.Normalize()], b)
		}
		for m, b := range override.Methods {
			h.Methods[m.Normalize()] = mergeFields(h.Methods[m.Normalize()], b)
		}
	}
	return h
}
