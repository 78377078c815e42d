// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"errors"
	"strconv"

	"github.com/gogama/reqflow"
	"github.com/gogama/reqflow/cancel"
	"github.com/gogama/reqflow/request"
	"github.com/gogama/reqflow/transient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Error kinds used as the kind label of the errors counter.
const (
	KindCancelled = "cancelled"
	KindStatus    = "status"
	KindOther     = "other"
)

// A Collector is a reqflow.Handler which records dispatch metrics.
type Collector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
	errorsTotal      *prometheus.CounterVec
}

// NewCollector creates a Collector whose metrics are registered with
// reg. It panics if the metrics cannot be registered, for example
// because a Collector was already created with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	return &Collector{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqflow_requests_total",
				Help: "Total number of requests dispatched",
			},
			[]string{"method", "status_code"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reqflow_request_duration_seconds",
				Help:    "Duration of request dispatch in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		requestsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "reqflow_requests_in_flight",
				Help: "Number of requests currently handed to the transport",
			},
			[]string{"method"},
		),
		errorsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqflow_errors_total",
				Help: "Total number of failed dispatches by kind",
			},
			[]string{"method", "kind"},
		),
	}
}

// Install adds c to the handler chains of g for every event it
// records.
func (c *Collector) Install(g *reqflow.HandlerGroup) {
	g.PushBack(reqflow.BeforeSend, c)
	g.PushBack(reqflow.AfterSend, c)
	g.PushBack(reqflow.AfterDispatch, c)
}

// Handle records the event.
func (c *Collector) Handle(evt reqflow.Event, e *request.Execution) {
	method := e.Config.Method.Wire()
	switch evt {
	case reqflow.BeforeSend:
		c.requestsInFlight.WithLabelValues(method).Inc()
	case reqflow.AfterSend:
		c.requestsInFlight.WithLabelValues(method).Dec()
	case reqflow.AfterDispatch:
		c.requestsTotal.WithLabelValues(method, strconv.Itoa(e.StatusCode())).Inc()
		c.requestDuration.WithLabelValues(method).Observe(e.Duration().Seconds())
		if e.Err != nil {
			c.errorsTotal.WithLabelValues(method, Kind(e.Err)).Inc()
		}
	}
}

// Kind classifies a dispatch error for the errors counter: KindCancelled
// for a cancellation, KindStatus for a rejected response status, the
// transient category name for timeouts and connection failures, and
// KindOther for everything else.
func Kind(err error) string {
	if cancel.IsCancel(err) {
		return KindCancelled
	}
	var rerr *request.Error
	if errors.As(err, &rerr) && rerr.Response != nil {
		return KindStatus
	}
	if cat := transient.Categorize(err); cat != transient.Not {
		return cat.String()
	}
	return KindOther
}
