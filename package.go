// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import "path/filepath"

// Package identifies a package file on the local filesystem. The extraction
// functions only ever read it.
type Package struct {
	// Name is the package identifier used in log messages and wrapped
	// errors. It defaults to the base of Path.
	Name string

	// Path is the location of the package file.
	Path string
}

// NewPackage returns a [Package] for the file at path, deriving the name
// from the file name.
func NewPackage(path string) *Package {
	return &Package{Name: filepath.Base(path), Path: path}
}

// String returns the package name, falling back to the file path.
func (p *Package) String() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Path
}
