// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"fmt"
	"io"
)

// copyToStream drains the data of the current archive entry from src into w
// using a buffer of cfg.BufferSize() bytes. A read of zero bytes with a nil
// error counts as transient and is retried in place. The copy ends
// successfully on io.EOF. Returns the number of bytes written to w.
func copyToStream(w io.Writer, src io.Reader, cfg *Config) (int64, error) {
	buf := make([]byte, cfg.BufferSize())
	var written int64

	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr == nil && m < n {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return written, fmt.Errorf("cannot write entry data: %w", werr)
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("cannot read entry data: %w", rerr)
		}
	}
}
