// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transform

import (
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"
)

// JSONContentType is the content type JSONRequest sets on requests
// whose body it serializes.
const JSONContentType = "application/json;charset=utf-8"

// JSONRequest is the default request transformer.
//
// It normalizes the spelling of any Content-Type header key to its
// canonical form. If data is a structured value (a map other than
// url.Values, a struct, or a pointer to either) it sets Content-Type
// to JSONContentType unless a content type is already present, and
// returns the JSON encoding of data as a string. Any other data is
// returned unchanged.
func JSONRequest(data interface{}, header http.Header) (interface{}, error) {
	NormalizeHeaderName(header, "Content-Type")
	if !IsStructured(data) {
		return data, nil
	}
	if header != nil && header.Get("Content-Type") == "" {
		header.Set("Content-Type", JSONContentType)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// JSONResponse is the default response transformer. If data is a
// string containing valid JSON, the decoded value is returned.
// Otherwise data is returned unchanged.
func JSONResponse(data interface{}, _ http.Header) (interface{}, error) {
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return data, nil
	}
	return v, nil
}

// NormalizeHeaderName renames every key of header which matches name
// case-insensitively, but is spelled differently, to name.
func NormalizeHeaderName(header http.Header, name string) {
	for k, v := range header {
		if k != name && strings.EqualFold(k, name) {
			header[name] = append(header[name], v...)
			delete(header, k)
		}
	}
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	valuesType = reflect.TypeOf(url.Values{})
)

// IsStructured reports whether v is a plain structured value: a map, a
// struct, or a non-nil pointer to one of these. Times and url.Values
// are not considered structured.
func IsStructured(v interface{}) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		if reflect.ValueOf(v).IsNil() {
			return false
		}
		t = t.Elem()
	}
	if t == timeType || t == valuesType {
		return false
	}
	return t.Kind() == reflect.Map || t.Kind() == reflect.Struct
}
