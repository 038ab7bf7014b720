// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

// extractFlags select which attributes of an archive entry are applied to
// the filesystem and whether a pre-existing path is removed first.
type extractFlags uint8

const (
	// extractOwner applies uid/gid from the entry. Silently skipped when
	// the process lacks the privilege to chown.
	extractOwner extractFlags = 1 << iota

	// extractPerm applies the permission bits from the entry.
	extractPerm

	// extractTime applies the modification time from the entry.
	extractTime

	// extractUnlink removes a pre-existing path before the entry is
	// written, so e.g. a stale directory does not block a file.
	extractUnlink
)

// Metadata members keep ownership, permissions and timestamps; payload
// members additionally replace whatever is in the way.
const (
	controlExtractFlags = extractOwner | extractPerm | extractTime
	dataExtractFlags    = controlExtractFlags | extractUnlink
)

func (f extractFlags) has(flag extractFlags) bool {
	return f&flag != 0
}
