// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package reqflow provides an HTTP client which builds each request from
layered configuration, runs it through user-supplied interceptors and
transformers, and supports cooperative cancellation.

Create a Client to begin making requests. The zero value uses the
package default config and the standard library HTTP client.

	client := &reqflow.Client{}
	resp, err := client.Get("https://www.example.com/users", nil)
	...
	resp, err := client.Post("https://www.example.com/users",
		map[string]string{"name": "ham"}, nil)

With the default config, maps and structs are sent as JSON and JSON
response bodies are decoded into resp.Data.

To give every request the same base URL, headers or timeout, create a
client with New. Each request config is merged over the client's
defaults; see request.Merge for the rules.

	h := request.NewHeader()
	h.SetCommon("Authorization", "Bearer "+token)
	client := reqflow.New(&request.Config{
		BaseURL: "https://api.example.com/v1",
		Header:  h,
		Timeout: 10 * time.Second,
	})

To observe or rewrite every request config before it is sent, or every
response before it is returned, register interceptors. Request
interceptors run newest first; response interceptors run oldest first.

	client.Interceptors.Request.Use(interceptor.RequestID("X-Request-Id"), nil)
	client.Interceptors.Response.Use(func(r *request.Response) (*request.Response, error) {
		log.Printf("%s -> %d", r.Config.URL, r.Status)
		return r, nil
	}, nil)

To cancel a request, give it a token from package cancel:

	token, cancelFunc := cancel.Source()
	go func() {
		<-userGaveUp
		cancelFunc("user gave up")
	}()
	_, err := client.Get(url, &request.Config{CancelToken: token})
	if cancel.IsCancel(err) {
		...
	}

To hook into the fine-grained details of dispatch, install a handler
into the appropriate handler chain:

	handlers := &reqflow.HandlerGroup{}
	handlers.PushBack(reqflow.BeforeSend, reqflow.HandlerFunc(
		func(_ reqflow.Event, e *request.Execution) {
			log.Printf("Sending %s", e.Config.URL)
		}),
	)
	client := &reqflow.Client{
		Handlers: handlers,
	}

Package reqflow provides basic interfaces for each method of the client
(Doer, Getter, Deleter, Header, Optioner, Poster, Putter and Patcher);
a combined interface that composes all the basic methods (Executor);
and utility functions for working with a Doer (Inflate, Get, Delete,
Head, Options, Post, Put and Patch).
*/
package reqflow
