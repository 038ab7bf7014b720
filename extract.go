// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"
)

var now = time.Now

// captureExtractionDuration sets the duration since start on td.
func captureExtractionDuration(td *TelemetryData, start time.Time) {
	stop := now()
	td.ExtractionDuration = stop.Sub(start)
}

// captureInputSize captures how many bytes were read from the package file.
func captureInputSize(td *TelemetryData, ler *limitErrorReader) {
	td.InputSize = int64(ler.ReadBytes())
}

// handleError increases the error counter and sets the latest error.
func handleError(c *Config, td *TelemetryData, msg string, err error) error {
	td.ExtractionErrors++
	td.LastExtractionError = fmt.Errorf("%s: %w", msg, err)
	return td.LastExtractionError
}

// extractFileToStream scans the inner archive for the entry named name and
// copies its data to w. Entry names are compared after stripping leading
// "./" and "/", so "control" matches "./control". Entries before the match
// are skipped without materializing their data, entries after it are never
// read. Without a match, w stays untouched and a wrapped [ErrEntryNotFound]
// is returned.
func extractFileToStream(ctx context.Context, rd *reader, name string, w io.Writer, cfg *Config, td *TelemetryData) error {
	wanted, ok := transformPath("", name)
	if !ok {
		return handleError(cfg, td, "cannot scan archive", fmt.Errorf("%s: %w", name, ErrEntryNotFound))
	}

	for {
		// check if context is canceled
		if ctx.Err() != nil {
			return handleError(cfg, td, "context error", ctx.Err())
		}

		// get next entry
		ae, err := rd.Next()

		switch {
		case err == io.EOF:
			return handleError(cfg, td, "cannot find entry", fmt.Errorf("%s: %w", name, ErrEntryNotFound))
		case err != nil:
			return handleError(cfg, td, "error reading", err)
		case ae == nil:
			continue
		}

		got, ok := transformPath("", ae.Name())
		if !ok || got != wanted {
			continue
		}

		// found, copy the entry data
		cfg.Logger().Debug("extract", "name", ae.Name())
		src, err := ae.Open()
		if err != nil {
			return handleError(cfg, td, "failed to open entry", err)
		}
		n, err := copyToStream(w, src, cfg)
		td.ExtractionSize += n
		if err != nil {
			src.Close()
			return handleError(cfg, td, "failed to copy entry data", err)
		}
		td.ExtractedFiles++
		return src.Close()
	}
}

// extractPathsToStream writes the raw pathname of every entry of the inner
// archive plus a newline to w, in archive order. Entry data is never read.
func extractPathsToStream(ctx context.Context, rd *reader, w io.Writer, cfg *Config, td *TelemetryData) error {
	for {
		// check if context is canceled
		if ctx.Err() != nil {
			return handleError(cfg, td, "context error", ctx.Err())
		}

		// get next entry
		ae, err := rd.Next()

		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return handleError(cfg, td, "error reading", err)
		case ae == nil:
			continue
		}

		if _, err := fmt.Fprintf(w, "%s\n", ae.Name()); err != nil {
			return handleError(cfg, td, "failed to write entry name", err)
		}
		td.ExtractedFiles++
	}
}

// extractAll commits every entry of the inner archive to t below dst,
// honoring flags. The first failed entry aborts the operation; entries
// already committed stay in place.
func extractAll(ctx context.Context, t Target, rd *reader, dst string, flags extractFlags, cfg *Config, td *TelemetryData) error {
	for {
		// check if context is canceled
		if ctx.Err() != nil {
			return handleError(cfg, td, "context error", ctx.Err())
		}

		// get next entry
		ae, err := rd.Next()

		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return handleError(cfg, td, "error reading", err)
		case ae == nil:
			continue
		}

		if err := extractEntry(t, ae, dst, flags, cfg, td); err != nil {
			return err
		}
	}
}

// extractEntry commits a single entry to t. The entry pathname and a
// hardlink target are rewritten below dst through the path transform; a
// symlink target is written verbatim.
func extractEntry(t Target, ae archiveEntry, dst string, flags extractFlags, cfg *Config, td *TelemetryData) error {
	path, ok := transformPath(dst, ae.Name())
	if !ok {
		cfg.Logger().Debug("skip entry without installable path", "name", ae.Name())
		td.SkippedEntries++
		return nil
	}

	cfg.Logger().Debug("extract", "name", ae.Name(), "path", path)

	// clear a stale path before the commit
	if flags.has(extractUnlink) {
		if err := unlinkEntryPath(t, ae, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return handleError(cfg, td, fmt.Sprintf("failed to unlink %s", path), err)
		}
	}

	switch {

	// if its a dir and it doesn't exist create it
	case ae.IsDir():
		if err := t.CreateDir(path, ae.Mode()); err != nil {
			return handleError(cfg, td, fmt.Sprintf("failed to create directory %s", path), err)
		}
		td.ExtractedDirs++

	// if it's a file create it
	case ae.IsRegular():
		if err := ensureParentDir(t, path, cfg); err != nil {
			return handleError(cfg, td, fmt.Sprintf("failed to create parent directory of %s", path), err)
		}
		fin, err := ae.Open()
		if err != nil {
			return handleError(cfg, td, "failed to open entry", err)
		}
		n, err := t.CreateFile(path, fin, ae.Mode(), true, -1)
		td.ExtractionSize += n
		if err != nil {
			fin.Close()
			return handleError(cfg, td, fmt.Sprintf("failed to create file %s", path), err)
		}
		if err := fin.Close(); err != nil {
			return handleError(cfg, td, "failed to close entry", err)
		}
		td.ExtractedFiles++

	// its a symlink, the target is not rewritten
	case ae.IsSymlink():
		cfg.Logger().Debug("symlink", "name", ae.Name(), "target", ae.Linkname())
		if err := ensureParentDir(t, path, cfg); err != nil {
			return handleError(cfg, td, fmt.Sprintf("failed to create parent directory of %s", path), err)
		}
		if err := t.CreateSymlink(ae.Linkname(), path, true); err != nil {
			return handleError(cfg, td, fmt.Sprintf("failed to create symlink %s", path), err)
		}
		td.ExtractedSymlinks++

	// a hardlink points at the rewritten target below dst
	case ae.IsHardlink():
		target, ok := transformPath(dst, ae.Linkname())
		if !ok {
			return handleError(cfg, td, "failed to create hardlink", fmt.Errorf("%s: link target %q has no installable path", ae.Name(), ae.Linkname()))
		}
		cfg.Logger().Debug("hardlink", "name", ae.Name(), "target", target)
		if err := ensureParentDir(t, path, cfg); err != nil {
			return handleError(cfg, td, fmt.Sprintf("failed to create parent directory of %s", path), err)
		}
		if err := t.CreateHardlink(target, path, true); err != nil {
			return handleError(cfg, td, fmt.Sprintf("failed to create hardlink %s", path), err)
		}
		td.ExtractedHardlinks++

		// a hardlink shares the attributes of its target
		return nil

	default:
		// tar specific: check for git comment file `pax_global_header` from type `67` and skip
		if ae.Name() == "pax_global_header" {
			return nil
		}

		cfg.Logger().Warn("skip unsupported entry type", "name", ae.Name(), "mode", ae.Mode())
		td.SkippedEntries++
		return nil
	}

	return applyEntryAttributes(t, ae, path, flags, cfg, td)
}

// unlinkEntryPath removes whatever sits at path before ae is committed.
// A directory entry keeps an existing directory in place and merges into
// it; a stale entry of any other type is removed. Removing a non-empty
// directory to make room for a file fails.
func unlinkEntryPath(t Target, ae archiveEntry, path string) error {
	if ae.IsDir() {
		fi, err := t.Lstat(path)
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
	}
	return t.Remove(path)
}

// ensureParentDir creates the directory path is committed into. Archives
// usually carry an entry for every directory before its content, repacked
// or hand-built ones not always.
func ensureParentDir(t Target, path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "/" {
		return nil
	}
	return t.CreateDir(dir, cfg.CreateDirMode())
}

// applyEntryAttributes applies the flagged attributes of ae to path, owner
// first, then permissions, then times. Symlinks keep the mode they were
// created with and get their times set without following the link.
func applyEntryAttributes(t Target, ae archiveEntry, path string, flags extractFlags, cfg *Config, td *TelemetryData) error {
	if flags.has(extractOwner) {
		if err := t.Chown(path, ae.Uid(), ae.Gid()); err != nil {
			return handleError(cfg, td, fmt.Sprintf("failed to change owner of %s", path), err)
		}
	}

	if flags.has(extractPerm) && !ae.IsSymlink() {
		if err := t.Chmod(path, ae.Mode()); err != nil {
			return handleError(cfg, td, fmt.Sprintf("failed to change mode of %s", path), err)
		}
	}

	if flags.has(extractTime) {
		atime := ae.AccessTime()
		if atime.IsZero() {
			atime = ae.ModTime()
		}

		chtimes := t.Chtimes
		if ae.IsSymlink() {
			chtimes = t.Lchtimes
		}
		if err := chtimes(path, atime, ae.ModTime()); err != nil {
			return handleError(cfg, td, fmt.Sprintf("failed to change times of %s", path), err)
		}
	}

	return nil
}
