// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"io"
	"io/fs"
	"time"
)

// Target specifies all functions that are needed to be implemented to extract
// package contents to a filesystem. Paths are handed over exactly as produced
// by the path transform; a Target may reject paths it cannot represent.
type Target interface {
	// CreateFile creates a file at the specified path with src as content. The mode parameter is the file
	// mode that should be set on the file. If the file already exists and overwrite is false, an error should
	// be returned. The size of the file should not exceed maxSize; if maxSize < 0, the file size is not
	// limited. The number of bytes written is returned along with any error.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates a directory at the specified path with the specified mode, missing parents
	// included. If the directory already exists, nothing is done.
	CreateDir(path string, mode fs.FileMode) error

	// CreateSymlink creates a symbolic link from newname to oldname. If newname already exists and
	// overwrite is false, the function returns an error.
	CreateSymlink(oldname string, newname string, overwrite bool) error

	// CreateHardlink creates a hard link from newname to oldname. The target oldname must already
	// exist. If newname already exists and overwrite is false, the function returns an error.
	CreateHardlink(oldname string, newname string, overwrite bool) error

	// Lstat see docs for os.Lstat. If the path is a symlink, the info of the symlink is returned.
	Lstat(path string) (fs.FileInfo, error)

	// Stat see docs for os.Stat. If the path is a symlink, the info of its target is returned.
	Stat(path string) (fs.FileInfo, error)

	// Remove removes the named file or empty directory, see docs for os.Remove.
	Remove(path string) error

	// Chmod see docs for os.Chmod. Main purpose is to set the file mode of a file or directory.
	Chmod(name string, mode fs.FileMode) error

	// Chtimes see docs for os.Chtimes. Main purpose is to set the file times of a file or directory.
	Chtimes(name string, atime, mtime time.Time) error

	// Lchtimes changes the times of a path without following symlinks. Platforms that cannot
	// maintain symlink timestamps treat this as a no-op.
	Lchtimes(name string, atime, mtime time.Time) error

	// Chown see docs for os.Lchown. Main purpose is to set the file owner and group of a file,
	// directory or symlink.
	Chown(name string, uid, gid int) error
}
