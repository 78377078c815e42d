// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"golang.org/x/net/publicsuffix"
)

// Cookies is a source of cookie values visible to the request origin.
type Cookies interface {
	// Read returns the value of the named cookie and true, or false
	// if there is no such cookie.
	Read(name string) (string, bool)
}

// CookiesFunc adapts an ordinary function to the Cookies interface.
type CookiesFunc func(name string) (string, bool)

// Read calls f(name).
func (f CookiesFunc) Read(name string) (string, bool) {
	return f(name)
}

// JarCookies returns a Cookies which reads the cookies jar holds for
// origin.
func JarCookies(jar http.CookieJar, origin *url.URL) Cookies {
	return CookiesFunc(func(name string) (string, bool) {
		for _, c := range jar.Cookies(origin) {
			if c.Name == name {
				return c.Value, true
			}
		}
		return "", false
	})
}

// NewJar returns a cookie jar which uses the public suffix list to
// decide which domains may set cookies for each other.
func NewJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}
