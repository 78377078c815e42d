// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqflow

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to observe or adjust the
// dispatch step, which sits between the request interceptors and the
// response interceptors.
type Event int

const (
	// BeforeDispatch identifies the event that occurs after the request
	// interceptors have run, before the config is checked for
	// cancellation and prepared for the transport.
	//
	// When Client fires BeforeDispatch, the execution's config is the
	// merged and intercepted config, and its start time is set.
	BeforeDispatch Event = iota
	// BeforeSend identifies the event that occurs after the config has
	// been prepared, immediately before it is handed to the transport.
	//
	// When Client fires BeforeSend, the execution's config holds the
	// fully resolved URL, the transformed request data, and the header
	// flattened for the request method. Handlers may change the config,
	// thus changing the request that will be sent.
	BeforeSend
	// AfterSend identifies the event that occurs after the transport
	// has returned, or been abandoned because the request was
	// cancelled while in flight.
	//
	// When Client fires AfterSend, the execution's response or its
	// error field or both may be set. The response is set together with
	// the error if the response status was rejected.
	AfterSend
	// AfterCancel identifies the event that occurs when dispatch ends
	// because the request was cancelled, whether before sending or
	// while in flight.
	//
	// When Client fires AfterCancel, the execution's error field is
	// the *cancel.Cancel reason.
	AfterCancel
	// AfterDispatch identifies the event that occurs after dispatch
	// ends, successfully or not.
	//
	// When Client fires AfterDispatch, the execution is in its final
	// state and its end time is set. The response transformers have
	// already run.
	AfterDispatch
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeDispatch",
	"BeforeSend",
	"AfterSend",
	"AfterCancel",
	"AfterDispatch",
}

// Events returns a slice containing all events which can occur during
// dispatch by Client, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeDispatch,
		BeforeSend,
		AfterSend,
		AfterCancel,
		AfterDispatch,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
