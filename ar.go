// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/blakesmith/ar"
)

// Member stems looked up in the outer archive. The canonical member name
// carries the gzip suffix.
const (
	memberControl = "control.tar"
	memberData    = "data.tar"
)

// acceptedMemberNames returns the names under which a member stem may
// appear in the outer archive: the canonical gzip name, the other accepted
// compression suffixes, and the bare stem for uncompressed members.
func acceptedMemberNames(stem string) []string {
	return []string{
		stem + "." + fileExtensionGZip,
		stem + "." + fileExtensionXz,
		stem + "." + fileExtensionZstd,
		stem + "." + fileExtensionBzip2,
		stem,
	}
}

// openMember opens the package file and scans the outer ar archive in
// member order for the stem. On a match the member data is bridged into a
// [reader], which takes over the file handle. Without a match the file is
// closed and a wrapped [ErrMemberNotFound] is returned.
func openMember(p *Package, stem string, cfg *Config) (*reader, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot open package file: %w", err)
	}

	// the package file size is known up front, oversized input fails
	// before the member scan
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot stat package file: %w", err)
	}
	if err := cfg.CheckInputSize(fi.Size()); err != nil {
		f.Close()
		return nil, fmt.Errorf("package file of %s: %w", p, err)
	}

	input := newLimitErrorReader(f, cfg.MaxInputSize())
	outer := ar.NewReader(input)
	accepted := acceptedMemberNames(stem)

	for {
		hdr, err := outer.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("cannot read outer archive of %s: %w", p, err)
		}
		if hdr == nil {
			continue
		}

		// GNU ar terminates member names with a slash
		name := strings.TrimSuffix(hdr.Name, "/")
		if !slices.Contains(accepted, name) {
			continue
		}

		bridge := newMemberBridge(outer, f, cfg.BufferSize())
		r, err := newReader(bridge, input, name, cfg)
		if err != nil {
			bridge.Close()
			return nil, fmt.Errorf("cannot open member %s of %s: %w", name, p, err)
		}
		return r, nil
	}

	f.Close()
	return nil, fmt.Errorf("%s in %s: %w", stem, p, ErrMemberNotFound)
}
