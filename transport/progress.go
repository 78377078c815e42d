// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"io"

	"github.com/gogama/reqflow/request"
)

type progressReader struct {
	r      io.Reader
	loaded int64
	total  int64
	fn     request.ProgressFunc
}

// withProgress wraps r so that fn is told about every chunk read. It
// returns r unchanged if fn is nil.
func withProgress(r io.Reader, total int64, fn request.ProgressFunc) io.Reader {
	if fn == nil {
		return r
	}
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.fn(request.ProgressEvent{Loaded: p.loaded, Total: p.total})
	}
	return n, err
}
