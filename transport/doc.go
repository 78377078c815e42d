// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport contains HTTP, the default transport used by a
reqflow client to send a fully resolved request.Config over the wire
with an HTTPDoer such as the standard library's http.Client.

HTTP honors the config's method, URL, flattened header, body, timeout,
response type, credentials, basic auth, progress callbacks and status
validation. It fails with a *request.Error whose Code identifies
timeouts (request.CodeTimeout) and connection failures.

To send an XSRF token read from a cookie, give HTTP a Cookies source
and, for same-origin detection, the origin requests are made from:

	jar, _ := transport.NewJar()
	origin, _ := url.Parse("https://app.example.com")
	t := &transport.HTTP{
		Doer:    &http.Client{Jar: jar},
		Cookies: transport.JarCookies(jar, origin),
		Origin:  origin,
	}
*/
package transport
