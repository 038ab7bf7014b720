// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import "errors"

// Sentinel errors returned by the extraction functions. They are wrapped
// with the package, member or entry name and matched with [errors.Is].
var (
	// ErrMemberNotFound indicates the outer ar archive holds no member
	// with an accepted name, e.g. a package without a control.tar.gz.
	ErrMemberNotFound = errors.New("archive member not found")

	// ErrEntryNotFound indicates the inner tar archive was scanned to the
	// end without the requested entry showing up.
	ErrEntryNotFound = errors.New("archive entry not found")

	// ErrUnsupportedFilter indicates the archive member starts with magic
	// bytes of no known compression format and is not a plain tar either.
	ErrUnsupportedFilter = errors.New("unsupported compression filter")

	// ErrMaxInputSizeExceeded indicates the package file is larger than
	// the configured maximum input size.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")
)
