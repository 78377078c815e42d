// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package cancel provides cancellation tokens for in-flight requests.

A Token is a one-shot signal shared between the code that issues a
request and the request dispatch logic. Create a token together with
its controller function using Source:

	token, cancelFunc := cancel.Source()
	cfg := &request.Config{CancelToken: token}
	go func() {
		resp, err := client.Get("https://example.com", cfg)
		if cancel.IsCancel(err) {
			...
		}
	}()
	...
	cancelFunc("operation cancelled by the user")

The controller function may be called any number of times from any
goroutine. Only the first call has an effect: it records the Cancel
reason and releases anything waiting on the token. Every later call is
a no-op.

If a token is already cancelled when a request is issued, the request
is never handed to the transport. If the token is cancelled while the
request is in flight, the transport call is aborted and the request
fails with the token's Cancel reason.
*/
package cancel
