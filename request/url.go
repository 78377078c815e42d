// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gogama/reqflow/transform"
)

var absoluteURL = regexp.MustCompile(`(?i)^([a-z][a-z\d+\-.]*:)?//`)

// IsAbsoluteURL reports whether u starts with a scheme followed by
// "//", or is protocol-relative ("//host/path").
func IsAbsoluteURL(u string) bool {
	return absoluteURL.MatchString(u)
}

// CombineURL joins baseURL and relative with exactly one slash between
// them. If relative is empty, baseURL is returned unchanged.
func CombineURL(baseURL, relative string) string {
	if relative == "" {
		return baseURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(relative, "/")
}

// ResolveURL returns the URL c would be sent to: URL resolved against
// BaseURL (unless URL is absolute), with Params serialized into the
// query string.
func ResolveURL(c *Config) (string, error) {
	u := c.URL
	if c.BaseURL != "" && !IsAbsoluteURL(u) {
		u = CombineURL(c.BaseURL, u)
	}
	return BuildURL(u, c.Params, c.ParamsSerializer)
}

// BuildURL appends the serialized params to rawURL.
//
// If serializer is nil, params must be nil, url.Values, or a map with
// string keys. Map entries are serialized in key order. A nil entry is
// skipped; a slice or array entry produces one "key[]=value" pair per
// element; a time.Time is written in RFC 3339 form with millisecond
// precision in UTC; a map or struct is written as JSON; anything else
// is formatted with fmt.Sprint.
//
// Any fragment in rawURL is dropped when params are appended, and the
// separator is '&' if rawURL already has a query and '?' otherwise.
func BuildURL(rawURL string, params interface{}, serializer ParamsSerializer) (string, error) {
	if params == nil {
		return rawURL, nil
	}

	if serializer == nil {
		serializer = serializeParams
	}
	query, err := serializer(params)
	if err != nil {
		return "", err
	}

	if query == "" {
		return rawURL, nil
	}
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL = rawURL[:i]
	}
	sep := "?"
	if strings.IndexByte(rawURL, '?') >= 0 {
		sep = "&"
	}
	return rawURL + sep + query, nil
}

func serializeParams(params interface{}) (string, error) {
	if v, ok := params.(url.Values); ok {
		return v.Encode(), nil
	}

	rv := reflect.ValueOf(params)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "", nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return "", fmt.Errorf("reqflow/request: unsupported params type %T", params)
	}

	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if isNilValue(val) {
			continue
		}
		if val.Kind() == reflect.Interface {
			val = val.Elem()
		}
		name := key
		var vals []reflect.Value
		if (val.Kind() == reflect.Slice || val.Kind() == reflect.Array) && val.Type().Elem().Kind() != reflect.Uint8 {
			name += "[]"
			for i := 0; i < val.Len(); i++ {
				vals = append(vals, val.Index(i))
			}
		} else {
			vals = []reflect.Value{val}
		}
		for _, v := range vals {
			if isNilValue(v) {
				continue
			}
			s, err := paramString(v.Interface())
			if err != nil {
				return "", err
			}
			parts = append(parts, encode(name)+"="+encode(s))
		}
	}
	return strings.Join(parts, "&"), nil
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

func paramString(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case time.Time:
		return x.UTC().Format("2006-01-02T15:04:05.000Z07:00"), nil
	case *time.Time:
		return x.UTC().Format("2006-01-02T15:04:05.000Z07:00"), nil
	case []byte:
		return string(x), nil
	}
	if transform.IsStructured(v) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return fmt.Sprint(v), nil
}

var unescaper = strings.NewReplacer(
	"%40", "@",
	"%3A", ":",
	"%24", "$",
	"%2C", ",",
	"%5B", "[",
	"%5D", "]",
)

func encode(s string) string {
	return unescaper.Replace(url.QueryEscape(s))
}
