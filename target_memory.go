// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// TargetMemory is an in-memory filesystem implementation. It is a map of
// paths to [MemoryEntry], which holds the file information and the file
// data. Permissions on entries (owner, group, others) are not enforced on
// access. Entries can be read back through the [fs.FS] style methods.
type TargetMemory struct {
	files sync.Map // map[string]*MemoryEntry
}

// NewTargetMemory creates a new in-memory filesystem.
func NewTargetMemory() *TargetMemory {
	return &TargetMemory{
		files: sync.Map{},
	}
}

// memoryPath normalizes a path for use as a key in the in-memory
// filesystem. Directory entries of file archives carry a trailing
// separator that the flat map does not.
func memoryPath(path string) string {
	return strings.TrimRight(path, "/")
}

// CreateFile creates a new file in the in-memory filesystem. The file is created with the given mode.
// If the overwrite flag is set to false and the file already exists, an error is returned. If the overwrite
// flag is set to true, the file is overwritten. The maxSize parameter can be used to limit the size of the file.
// If the file exceeds maxSize, an error is returned. If the file is created successfully, the number of bytes
// written is returned.
func (m *TargetMemory) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	path = memoryPath(path)
	if !fs.ValidPath(path) {
		return 0, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	if !overwrite {
		if _, ok := m.files.Load(path); ok {
			return 0, fmt.Errorf("%w: %s", fs.ErrExist, path)
		}
	}

	// create byte buffered writer
	var buf bytes.Buffer
	w := limitWriter(&buf, maxSize)

	// write to buffer
	n, err := io.Copy(w, src)
	if err != nil {
		return n, err
	}

	// create entry
	fName := filepath.Base(path)
	m.files.Store(path, &MemoryEntry{
		FileInfo: &MemoryFileInfo{name: fName, size: n, mode: mode.Perm(), modTime: time.Now()},
		Data:     buf.Bytes(),
	})

	// return number of bytes written
	return n, nil
}

// CreateDir creates a new directory in the in-memory filesystem.
// If the directory already exists, nothing is done. If the directory does not exist, it is created.
// The directory is created with the given mode.
func (m *TargetMemory) CreateDir(path string, mode fs.FileMode) error {
	path = memoryPath(path)
	if !fs.ValidPath(path) {
		return fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}

	// check if an entry already exists
	if _, ok := m.files.Load(path); ok {
		return nil
	}

	// create entry
	dName := filepath.Base(path)
	m.files.Store(path, &MemoryEntry{
		FileInfo: &MemoryFileInfo{name: dName, mode: mode.Perm() | fs.ModeDir, modTime: time.Now()},
	})

	return nil
}

// CreateSymlink creates a new symlink in the in-memory filesystem.
// If the overwrite flag is set to false and the symlink already exists, an error is returned.
// If the overwrite flag is set to true, the symlink is overwritten.
func (m *TargetMemory) CreateSymlink(oldName string, newName string, overwrite bool) error {
	newName = memoryPath(newName)
	if !fs.ValidPath(newName) {
		return fmt.Errorf("%w: %s", fs.ErrInvalid, newName)
	}
	if !overwrite {
		if _, ok := m.files.Load(newName); ok {
			return fmt.Errorf("%w: %s", fs.ErrExist, newName)
		}
	}

	lName := filepath.Base(newName)
	m.files.Store(newName, &MemoryEntry{
		FileInfo: &MemoryFileInfo{name: lName, mode: 0777 | fs.ModeSymlink, modTime: time.Now()},
		Data:     []byte(oldName),
	})

	return nil
}

// CreateHardlink creates a new hard link in the in-memory filesystem. The
// target oldName must exist and not be a directory; the new entry shares
// its data. If the overwrite flag is set to false and newName already
// exists, an error is returned.
func (m *TargetMemory) CreateHardlink(oldName string, newName string, overwrite bool) error {
	oldName = memoryPath(oldName)
	newName = memoryPath(newName)
	if !fs.ValidPath(newName) {
		return fmt.Errorf("%w: %s", fs.ErrInvalid, newName)
	}
	if !overwrite {
		if _, ok := m.files.Load(newName); ok {
			return fmt.Errorf("%w: %s", fs.ErrExist, newName)
		}
	}

	e, ok := m.files.Load(oldName)
	if !ok {
		return fmt.Errorf("%w: %s", fs.ErrNotExist, oldName)
	}
	me := e.(*MemoryEntry)
	if me.FileInfo.Mode()&fs.ModeDir != 0 {
		return fmt.Errorf("%w: hardlink to directory: %s", fs.ErrInvalid, oldName)
	}

	fi := me.FileInfo.(*MemoryFileInfo)
	m.files.Store(newName, &MemoryEntry{
		FileInfo: &MemoryFileInfo{name: filepath.Base(newName), size: fi.size, mode: fi.mode, modTime: fi.modTime, uid: fi.uid, gid: fi.gid},
		Data:     me.Data,
	})

	return nil
}

// Open opens the named file for reading. If successful, the file is returned
// as an [fs.File] which can be used to read the file contents. If the
// file is a symlink, the target of the symlink is opened. If the file does not
// exist, or is a directory, an error is returned.
func (m *TargetMemory) Open(path string) (fs.File, error) {
	path = memoryPath(path)
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}

	// get entry
	e, ok := m.files.Load(path)

	// file does not exist
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	}

	// handle directory
	me := e.(*MemoryEntry)
	if me.FileInfo.Mode()&fs.ModeDir != 0 {
		return nil, fmt.Errorf("cannot open directory")
	}

	// handle symlink
	if me.FileInfo.Mode()&fs.ModeSymlink != 0 {
		linkTarget := string(me.Data)
		linkTarget = filepath.Join(filepath.Dir(path), linkTarget)
		return m.Open(linkTarget)
	}

	// create copy of entry
	me = &MemoryEntry{
		FileInfo: me.FileInfo,
		Data:     me.Data,
	}

	// return file data
	return me, nil
}

// Lstat returns the FileInfo for the given path. If the path is a symlink, the FileInfo for the symlink is returned.
// If the path does not exist, an error is returned.
func (m *TargetMemory) Lstat(path string) (fs.FileInfo, error) {
	path = memoryPath(path)
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	if e, ok := m.files.Load(path); ok {
		me := e.(*MemoryEntry)
		return me.FileInfo, nil
	}
	return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
}

// Stat returns the FileInfo for the given path. If the path is a symlink, the FileInfo for the target of the symlink
// is returned. If the path does not exist, an error is returned.
func (m *TargetMemory) Stat(path string) (fs.FileInfo, error) {
	path = memoryPath(path)
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	if e, ok := m.files.Load(path); ok {
		me := e.(*MemoryEntry)
		if me.FileInfo.Mode()&fs.ModeSymlink != 0 {
			linkTarget := string(me.Data)
			linkTarget = filepath.Join(filepath.Dir(path), linkTarget)
			return m.Stat(linkTarget)
		}
		return me.FileInfo, nil
	}
	return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
}

// Readlink returns the target of the symlink at the given path. If the path is not a symlink, an error is returned.
func (m *TargetMemory) Readlink(path string) (string, error) {
	path = memoryPath(path)
	if !fs.ValidPath(path) {
		return "", fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	if e, ok := m.files.Load(path); ok {
		me := e.(*MemoryEntry)
		if me.FileInfo.Mode()&fs.ModeSymlink != 0 {
			return string(me.Data), nil
		}
		return "", fmt.Errorf("not a symlink: %w: %s", fs.ErrInvalid, path)
	}
	return "", fmt.Errorf("%w: %s", fs.ErrNotExist, path)
}

// Remove removes the entry at the given path. Removing a path that does not
// exist is not an error.
func (m *TargetMemory) Remove(path string) error {
	path = memoryPath(path)
	if !fs.ValidPath(path) {
		return fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	m.files.Delete(path)
	return nil
}

// Chmod changes the mode of the entry at the given path, setuid, setgid
// and sticky bits included.
func (m *TargetMemory) Chmod(path string, mode fs.FileMode) error {
	fi, err := m.fileInfo(path)
	if err != nil {
		return err
	}
	fi.mode = fi.mode&fs.ModeType | mode&^fs.ModeType
	return nil
}

// Chtimes changes the modification time of the entry at the given path. The
// access time is not tracked.
func (m *TargetMemory) Chtimes(path string, _, mtime time.Time) error {
	fi, err := m.fileInfo(path)
	if err != nil {
		return err
	}
	fi.modTime = mtime
	return nil
}

// Lchtimes changes the modification time of the entry at the given path
// without following symlinks. The in-memory filesystem never follows
// symlinks for metadata updates, so this matches Chtimes.
func (m *TargetMemory) Lchtimes(path string, atime, mtime time.Time) error {
	return m.Chtimes(path, atime, mtime)
}

// Chown changes the numeric uid and gid of the entry at the given path.
func (m *TargetMemory) Chown(path string, uid, gid int) error {
	fi, err := m.fileInfo(path)
	if err != nil {
		return err
	}
	fi.uid = uid
	fi.gid = gid
	return nil
}

func (m *TargetMemory) fileInfo(path string) (*MemoryFileInfo, error) {
	path = memoryPath(path)
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	e, ok := m.files.Load(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	}
	return e.(*MemoryEntry).FileInfo.(*MemoryFileInfo), nil
}

// ReadDir returns the directory entries directly below path, sorted by name.
func (m *TargetMemory) ReadDir(path string) ([]fs.DirEntry, error) {
	path = memoryPath(path)
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}

	// get all entries in the directory
	var entries []fs.DirEntry
	m.files.Range(func(entryPath, me any) bool {
		if filepath.Dir(entryPath.(string)) == path {
			entries = append(entries, me.(*MemoryEntry))
		}
		return true
	})

	// sort slice of entries based on name
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	return entries, nil
}

// ReadFile returns the data of the file at path.
func (m *TargetMemory) ReadFile(path string) ([]byte, error) {
	path = memoryPath(path)
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	if e, ok := m.files.Load(path); ok {
		me := e.(*MemoryEntry)
		if me.FileInfo.Mode()&fs.ModeDir != 0 {
			return nil, fmt.Errorf("cannot read directory")
		}
		return me.Data, nil
	}
	return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
}

// Sub returns an FS corresponding to the subtree rooted at dir.
func (m *TargetMemory) Sub(dir string) (fs.FS, error) {
	dir = memoryPath(dir)
	if !fs.ValidPath(dir) {
		return nil, fmt.Errorf("%w: %s", fs.ErrInvalid, dir)
	}

	// create a new in-memory filesystem for the subdirectory
	dir = filepath.Clean(dir) + "/"
	subFS := NewTargetMemory()
	m.files.Range(func(path, entry any) bool {
		if strings.HasPrefix(path.(string), dir) {
			subFS.files.Store(path.(string)[len(dir):], entry)
		}
		return true
	})

	return subFS, nil
}

// Glob returns the names of all files matching pattern or nil if there is no matching file.
func (m *TargetMemory) Glob(pattern string) ([]string, error) {
	if !fs.ValidPath(pattern) {
		return nil, fmt.Errorf("%w: %s", fs.ErrInvalid, pattern)
	}

	var matches []string
	m.files.Range(func(path, entry any) bool {
		match, err := filepath.Match(pattern, path.(string))
		if err != nil {
			return false
		}
		if match {
			matches = append(matches, path.(string))
		}
		return true
	})

	return matches, nil
}

// MemoryEntry is an entry in the in-memory filesystem
type MemoryEntry struct {
	FileInfo fs.FileInfo
	Data     []byte
}

func (me *MemoryEntry) Name() string {
	return me.FileInfo.Name()
}

func (me *MemoryEntry) Stat() (fs.FileInfo, error) {
	return me.FileInfo, nil
}

func (me *MemoryEntry) Read(p []byte) (int, error) {
	n := copy(p, me.Data)
	if n == 0 {
		return 0, io.EOF
	}
	me.Data = me.Data[n:]
	return n, nil
}

func (me *MemoryEntry) Close() error {
	return nil
}

func (me *MemoryEntry) IsDir() bool {
	return me.FileInfo.IsDir()
}

func (me *MemoryEntry) Type() fs.FileMode {
	return me.FileInfo.Mode().Type()
}

func (me *MemoryEntry) Info() (fs.FileInfo, error) {
	return me.FileInfo, nil
}

// MemoryFileInfo is a FileInfo implementation for the in-memory filesystem
type MemoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	uid     int
	gid     int
}

// Name returns the name of the file
func (fi *MemoryFileInfo) Name() string {
	return fi.name
}

// Size returns the size of the file
func (fi *MemoryFileInfo) Size() int64 {
	return fi.size
}

// Mode returns the mode of the file
func (fi *MemoryFileInfo) Mode() fs.FileMode {
	return fi.mode
}

// ModTime returns the modification time of the file
func (fi *MemoryFileInfo) ModTime() time.Time {
	return fi.modTime
}

// IsDir returns true if the file is a directory
func (fi *MemoryFileInfo) IsDir() bool {
	return fi.mode.IsDir()
}

// Sys returns the underlying data source (nil for in-memory filesystem)
func (fi *MemoryFileInfo) Sys() any {
	return nil
}
