// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ipk

import "io"

// noopReaderCloser is a struct that implements the io.ReadCloser interface with a no-op Close
// method. It wraps decompression streams that have no Close of their own.
type noopReaderCloser struct {
	io.Reader
}

// Close is a no-op method that satisfies the io.Closer interface.
func (n *noopReaderCloser) Close() error {
	return nil
}
