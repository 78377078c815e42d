// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package metrics exports Prometheus metrics about requests dispatched by
a reqflow.Client.

Create a Collector and install it into the client's handler group:

	handlers := &reqflow.HandlerGroup{}
	metrics.NewCollector(prometheus.DefaultRegisterer).Install(handlers)
	client := &reqflow.Client{Handlers: handlers}

The Collector observes dispatch only: requests which fail or are
recovered inside interceptors without being dispatched are not counted.
*/
package metrics
