// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient sorts transport errors into a small number of
// categories: timeouts, refused connections, reset connections, and
// everything else. The default transport uses the category to pick a
// stable error code, and the metrics package uses it as a label.
//
// The package depends only on the standard library.
package transient
