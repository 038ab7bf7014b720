// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"compress/gzip"
	"io"
)

// fileExtensionGZip is the file extension for gzip compressed members.
const fileExtensionGZip = "gz"

// magicBytesGZip are the magic bytes for gzip compressed files.
//
// https://socketloop.com/tutorials/golang-gunzip-file
var magicBytesGZip = [][]byte{
	{0x1f, 0x8b},
}

// isGZip checks if the header matches the magic bytes for gzip compressed files.
func isGZip(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesGZip)
}

// decompressGZipStream returns an io.ReadCloser that decompresses src with gzip algorithm.
func decompressGZipStream(src io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(src)
}
