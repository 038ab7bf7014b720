// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"io"
	"os"
)

// memberBridge presents the data of the current outer archive member as the
// input of the inner archive reader. It owns the package file handle; no
// other reader of the outer archive stays valid once the bridge exists.
type memberBridge struct {
	r         io.Reader // member data of the outer archive
	f         *os.File  // package file, closed with the bridge
	chunkSize int
	closed    bool
}

func newMemberBridge(r io.Reader, f *os.File, chunkSize int) *memberBridge {
	return &memberBridge{r: r, f: f, chunkSize: chunkSize}
}

// Read reads up to min(len(p), chunkSize) bytes of member data into p, so a
// single pull from the outer archive never exceeds the configured buffer
// size. Returns io.EOF at the end of the member.
func (b *memberBridge) Read(p []byte) (int, error) {
	if len(p) > b.chunkSize {
		p = p[:b.chunkSize]
	}
	return b.r.Read(p)
}

// Close closes the package file. Only the first call has an effect, further
// calls return nil.
func (b *memberBridge) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.f.Close()
}
