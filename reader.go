// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
)

// reader iterates the entries of one inner archive of a package. It owns
// the decompression filter and, through the bridge, the package file; Close
// releases both and is safe to call more than once.
type reader struct {
	walker     archiveWalker
	filter     io.ReadCloser
	bridge     *memberBridge
	input      *limitErrorReader
	member     string
	filterType string
	closed     bool
}

// newReader sniffs the decompression filter of the member data coming out
// of bridge and layers the tar reader on top. input counts the bytes read
// from the package file and is kept for telemetry.
func newReader(bridge *memberBridge, input *limitErrorReader, member string, cfg *Config) (*reader, error) {
	head, err := newHeaderReader(bridge, maxHeaderLength)
	if err != nil {
		return nil, fmt.Errorf("cannot read member header: %w", err)
	}

	header := head.PeekHeader()
	for _, f := range availableFilters {
		if !f.HeaderCheck(header) {
			continue
		}

		stream, err := f.NewStream(head)
		if err != nil {
			return nil, fmt.Errorf("cannot open %s stream: %w", f.FileExtension, err)
		}

		cfg.Logger().Debug("opened archive member", "member", member, "filter", f.FileExtension)
		return &reader{
			walker:     &tarWalker{tr: tar.NewReader(stream)},
			filter:     stream,
			bridge:     bridge,
			input:      input,
			member:     member,
			filterType: f.FileExtension,
		}, nil
	}

	return nil, fmt.Errorf("%s: %w", member, ErrUnsupportedFilter)
}

// Next returns the next entry of the inner archive, io.EOF after the last
// one. The returned entry stays valid until the next call.
func (r *reader) Next() (archiveEntry, error) {
	return r.walker.Next()
}

// Close closes the decompression filter, then the package file through the
// bridge. Only the first call has an effect.
func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return errors.Join(r.filter.Close(), r.bridge.Close())
}
