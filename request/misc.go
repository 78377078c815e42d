// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"io"
	"net/url"
)

const badBodyTypeMsg = "reqflow/request: invalid body type %T (use nil, " +
	"string, []byte, url.Values, io.Reader or io.ReadCloser, or a map or " +
	"struct with a JSON request transformer)"

// BodyBytes converts a transformed request body to the bytes sent on
// the wire.
//
// • nil produces a nil byte slice.
//
// • A string or []byte is converted directly.
//
// • url.Values is form-encoded.
//
// • An io.Reader is read to the end and, if it is an io.Closer, closed.
// An error while reading or closing is returned.
//
// Any other type produces an error.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case url.Values:
		return []byte(x.Encode()), nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, err
		}
		if err = x.Close(); err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return BodyBytes(io.NopCloser(x))
	default:
		return nil, fmt.Errorf(badBodyTypeMsg, body)
	}
}
