// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"bytes"
	"io"
)

// init calculates the maximum header length
func init() {
	for _, f := range availableFilters {
		needs := f.Offset
		for _, mb := range f.MagicBytes {
			if len(mb)+f.Offset > needs {
				needs = len(mb) + f.Offset
			}
		}
		if needs > maxHeaderLength {
			maxHeaderLength = needs
		}
	}
}

// filterFunc layers a decompression stream over raw member data.
type filterFunc func(io.Reader) (io.ReadCloser, error)

// headerCheck is a function that checks if the given header matches the expected magic bytes.
type headerCheck func([]byte) bool

type availableFilter struct {
	NewStream     filterFunc
	HeaderCheck   headerCheck
	MagicBytes    [][]byte
	Offset        int
	FileExtension string
}

// availableFilters is the collection of decompression filters accepted on an
// archive member, with the required magic bytes and potential offset. The
// filters are checked in order, plain tar last since its magic bytes sit at
// an offset inside the header.
var availableFilters = []availableFilter{
	{
		FileExtension: fileExtensionGZip,
		NewStream:     decompressGZipStream,
		HeaderCheck:   isGZip,
		MagicBytes:    magicBytesGZip,
	},
	{
		FileExtension: fileExtensionXz,
		NewStream:     decompressXzStream,
		HeaderCheck:   isXz,
		MagicBytes:    magicBytesXz,
	},
	{
		FileExtension: fileExtensionZstd,
		NewStream:     decompressZstdStream,
		HeaderCheck:   isZstd,
		MagicBytes:    magicBytesZstd,
	},
	{
		FileExtension: fileExtensionBzip2,
		NewStream:     decompressBz2Stream,
		HeaderCheck:   isBzip2,
		MagicBytes:    magicBytesBzip2,
	},
	{
		FileExtension: fileExtensionTar,
		NewStream:     passthroughStream,
		HeaderCheck:   isTar,
		MagicBytes:    magicBytesTar,
		Offset:        offsetTar,
	},
}

// maxHeaderLength is the maximum header length of all filters
var maxHeaderLength int

// passthroughStream returns src unchanged for members that are not compressed.
func passthroughStream(src io.Reader) (io.ReadCloser, error) {
	return &noopReaderCloser{src}, nil
}

func matchesMagicBytes(data []byte, offset int, magicBytes [][]byte) bool {
	// check all possible magic bytes until match is found
	for _, mb := range magicBytes {
		// check if header is long enough
		if offset+len(mb) > len(data) {
			continue
		}

		// check for byte match
		if bytes.Equal(mb, data[offset:offset+len(mb)]) {
			return true
		}
	}

	// no match found
	return false
}
