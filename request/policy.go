// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// A Policy describes how Merge resolves one Config field.
type Policy int

const (
	// OverrideOrBase uses the override's value if it is set, and the
	// base's value otherwise.
	OverrideOrBase Policy = iota
	// OverrideOnly always uses the override's value, even if unset.
	OverrideOnly
	// DeepMerge layers the override's sub-fields over a copy of the
	// base's.
	DeepMerge
)

var policyNames = []string{
	OverrideOrBase: "override-or-base",
	OverrideOnly:   "override-only",
	DeepMerge:      "deep-merge",
}

func (p Policy) String() string {
	if p >= 0 && int(p) < len(policyNames) {
		return policyNames[p]
	}
	return "unknown"
}

// FieldPolicies maps each exported Config field name to the Policy
// Merge applies to it. It documents Merge and must not be modified.
var FieldPolicies = map[string]Policy{
	"URL":    OverrideOnly,
	"Params": OverrideOnly,
	"Data":   OverrideOnly,

	"Header": DeepMerge,
	"Auth":   DeepMerge,

	"Method":             OverrideOrBase,
	"BaseURL":            OverrideOrBase,
	"ParamsSerializer":   OverrideOrBase,
	"Timeout":            OverrideOrBase,
	"ResponseType":       OverrideOrBase,
	"TransformRequest":   OverrideOrBase,
	"TransformResponse":  OverrideOrBase,
	"CancelToken":        OverrideOrBase,
	"ValidateStatus":     OverrideOrBase,
	"WithCredentials":    OverrideOrBase,
	"XSRFCookieName":     OverrideOrBase,
	"XSRFHeaderName":     OverrideOrBase,
	"OnUploadProgress":   OverrideOrBase,
	"OnDownloadProgress": OverrideOrBase,
}
