// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"context"
	"io"
)

// controlEntryName is the name under which the package metadata is stored
// inside the control member.
const controlEntryName = "control"

// ExtractControlFile locates the control member of p, decompresses it and
// writes the content of its control entry to dst. The entry is matched by
// its installable path, so both `control` and `./control` are found. If
// ctx is nil, context.Background() is used. If cfg is nil, the default
// configuration is used.
func ExtractControlFile(ctx context.Context, p *Package, dst io.Writer, cfg *Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		cfg = NewConfig()
	}

	// prepare telemetry capturing
	td := &TelemetryData{PackageName: p.String(), ExtractedType: memberControl}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	rd, err := openMember(p, memberControl, cfg)
	if err != nil {
		cfg.Logger().Error("failed to extract control member", "package", p.String(), "error", err)
		return handleError(cfg, td, "cannot extract control member", err)
	}
	defer rd.Close()
	defer captureInputSize(td, rd.input)
	td.ExtractedType = rd.member

	if err := extractFileToStream(ctx, rd, controlEntryName, dst, cfg, td); err != nil {
		cfg.Logger().Error("failed to extract control file", "package", p.String(), "error", err)
		return err
	}

	return nil
}

// ExtractControlFiles extracts all entries of the control member of p to t,
// placing them directly below dir. Equivalent to
// ExtractControlFilesWithPrefix with an empty prefix.
func ExtractControlFiles(ctx context.Context, t Target, p *Package, dir string, cfg *Config) error {
	return ExtractControlFilesWithPrefix(ctx, t, p, dir, "", cfg)
}

// ExtractControlFilesWithPrefix extracts all entries of the control member
// of p to t. Entry names are reduced to their installable path and appended
// to dir joined with prefix, so every created entry carries the prefix as
// the leading part of its base name. Ownership, permissions and timestamps
// are restored on the created entries. If ctx is nil, context.Background()
// is used. If cfg is nil, the default configuration is used.
func ExtractControlFilesWithPrefix(ctx context.Context, t Target, p *Package, dir, prefix string, cfg *Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		cfg = NewConfig()
	}

	// prepare telemetry capturing
	td := &TelemetryData{PackageName: p.String(), ExtractedType: memberControl}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	rd, err := openMember(p, memberControl, cfg)
	if err != nil {
		cfg.Logger().Error("failed to extract control member", "package", p.String(), "error", err)
		return handleError(cfg, td, "cannot extract control member", err)
	}
	defer rd.Close()
	defer captureInputSize(td, rd.input)
	td.ExtractedType = rd.member

	// dir and prefix are joined with a single separator; the result acts
	// as a raw name prefix for every entry, not as a directory to descend
	// into.
	root := dir + "/" + prefix

	if err := extractAll(ctx, t, rd, root, controlExtractFlags, cfg, td); err != nil {
		cfg.Logger().Error("failed to extract control files", "package", p.String(), "error", err)
		return err
	}

	return nil
}

// ExtractDataFiles extracts all entries of the data member of p to t. dir
// is used verbatim as the name prefix for every entry: a dir ending in a
// separator places entries below that directory, while a dir without one
// acts as a base name prefix. Ownership, permissions and timestamps are
// restored, and a stale path is removed before an entry is created over
// it. If ctx is nil, context.Background() is used. If cfg is nil, the
// default configuration is used.
func ExtractDataFiles(ctx context.Context, t Target, p *Package, dir string, cfg *Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		cfg = NewConfig()
	}

	// prepare telemetry capturing
	td := &TelemetryData{PackageName: p.String(), ExtractedType: memberData}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	rd, err := openMember(p, memberData, cfg)
	if err != nil {
		cfg.Logger().Error("failed to extract data member", "package", p.String(), "error", err)
		return handleError(cfg, td, "cannot extract data member", err)
	}
	defer rd.Close()
	defer captureInputSize(td, rd.input)
	td.ExtractedType = rd.member

	if err := extractAll(ctx, t, rd, dir, dataExtractFlags, cfg, td); err != nil {
		cfg.Logger().Error("failed to extract data files", "package", p.String(), "error", err)
		return err
	}

	return nil
}

// ExtractDataFileNames writes the entry names of the data member of p to
// dst, one name per line. Names are written as stored in the archive,
// without path transformation. If ctx is nil, context.Background() is
// used. If cfg is nil, the default configuration is used.
func ExtractDataFileNames(ctx context.Context, p *Package, dst io.Writer, cfg *Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		cfg = NewConfig()
	}

	// prepare telemetry capturing
	td := &TelemetryData{PackageName: p.String(), ExtractedType: memberData}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	rd, err := openMember(p, memberData, cfg)
	if err != nil {
		cfg.Logger().Error("failed to extract data member", "package", p.String(), "error", err)
		return handleError(cfg, td, "cannot extract data member", err)
	}
	defer rd.Close()
	defer captureInputSize(td, rd.input)
	td.ExtractedType = rd.member

	if err := extractPathsToStream(ctx, rd, dst, cfg, td); err != nil {
		cfg.Logger().Error("failed to list data files", "package", p.String(), "error", err)
		return err
	}

	return nil
}
