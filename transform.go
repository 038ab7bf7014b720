// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import "strings"

// transformPath rewrites an archive entry pathname for extraction under
// root. Leading "./" sequences are stripped first, leading "/" sequences
// after that. A bare "." yields ok == false, the entry has no installable
// path. An empty remainder resolves to root itself, the archive root entry
// is committed at the destination. Anything else, ".." components included,
// is appended to root without inserting a separator, so a root that does
// not end in "/" acts as a file name prefix.
func transformPath(root, name string) (path string, ok bool) {
	for strings.HasPrefix(name, "./") {
		name = name[2:]
	}
	for strings.HasPrefix(name, "/") {
		name = name[1:]
	}

	if name == "." {
		return "", false
	}

	if root == "" {
		return name, true
	}
	return root + name, true
}
