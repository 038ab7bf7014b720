// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk_test

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"testing"
	"time"

	ipk "github.com/hashicorp/go-ipk"
)

func TestMemoryOpen(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// test data
	testPath := "test"
	testContent := "test"
	testPerm := 0644
	testNotExist := "notexist"
	testDir := "dir"
	testLink := "link"

	// create a file
	if _, err := tm.CreateFile(testPath, bytes.NewReader([]byte(testContent)), 0644, false, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}

	// open the file
	f, err := tm.Open(testPath)
	if err != nil {
		t.Fatalf("Open() failed: %s", err)
	}
	defer f.Close()

	// check the file permissions
	stat, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat() failed: %s", err)
	}
	if int(stat.Mode()&fs.ModePerm) != testPerm {
		t.Fatalf("Open() failed: expected %d, got %d", testPerm, stat.Mode().Perm())
	}

	// read the file
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll() failed: %s", err)
	}
	if !bytes.Equal(data, []byte(testContent)) {
		t.Fatalf("ReadAll() failed: expected %s, got %s", testContent, data)
	}

	// open a file that does not exist
	if _, err := tm.Open(testNotExist); err == nil {
		t.Fatalf("Open() failed: expected error, got nil")
	}

	// create a directory
	if err := tm.CreateDir(testDir, 0755); err != nil {
		t.Fatalf("failed to perform CreateDir(): %s", err)
	}

	// the flat store does not hand out directory handles
	if _, err := tm.Open(testDir); err == nil {
		t.Fatalf("Open() on a directory: expected error, got nil")
	}

	// create a symlink
	if err := tm.CreateSymlink(testPath, testLink, false); err != nil {
		t.Fatalf("CreateSymlink() failed: %s", err)
	}

	// open the symlink
	f, err = tm.Open(testLink)
	if err != nil {
		t.Fatalf("Open() failed: %s", err)
	}
	defer f.Close()

	// read content of the symlink
	data, err = io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll() on symlink failed: %s", err)
	}
	if !bytes.Equal(data, []byte(testContent)) {
		t.Fatalf("ReadAll() on symlink failed: expected %s, got %s", testContent, data)
	}
}

func TestMemoryReadlink(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// test data
	testPath := "test"
	testLink := "link"
	testPathNotExist := "notexist"

	// create a symlink
	if err := tm.CreateSymlink(testPath, testLink, false); err != nil {
		t.Fatalf("CreateSymlink() failed: %s", err)
	}

	// read the symlink
	link, err := tm.Readlink(testLink)
	if err != nil {
		t.Fatalf("Readlink() failed: %s", err)
	}
	if link != testPath {
		t.Fatalf("Readlink() failed: expected %s, got %s", testPath, link)
	}

	// read a symlink that does not exist
	if _, err := tm.Readlink(testPathNotExist); err == nil {
		t.Fatalf("Readlink() failed: expected error, got nil")
	}

	// create a file
	if _, err := tm.CreateFile(testPath, bytes.NewReader([]byte("test")), 0644, false, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}

	// readlink a file
	if _, err := tm.Readlink(testPath); err == nil {
		t.Fatalf("Readlink() failed: expected error, got nil")
	}
}

func TestMemoryLstat(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// create a file and a symlink pointing at it
	if _, err := tm.CreateFile("test", bytes.NewReader([]byte("test data")), 0644, false, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}
	if err := tm.CreateSymlink("test", "link", false); err != nil {
		t.Fatalf("CreateSymlink() failed: %s", err)
	}

	// lstat the file
	stat, err := tm.Lstat("test")
	if err != nil {
		t.Fatalf("Lstat() failed: %s", err)
	}
	if stat.Name() != "test" {
		t.Fatalf("Lstat() failed: expected %s, got %s", "test", stat.Name())
	}
	if stat.Size() != int64(len("test data")) {
		t.Fatalf("Lstat() failed: expected %d, got %d", len("test data"), stat.Size())
	}

	// lstat the symlink, the link itself is described
	stat, err = tm.Lstat("link")
	if err != nil {
		t.Fatalf("Lstat() failed: %s", err)
	}
	if stat.Mode()&fs.ModeSymlink == 0 {
		t.Fatalf("Lstat() failed: expected symlink mode, got %s", stat.Mode())
	}

	// lstat a file that does not exist
	if _, err := tm.Lstat("notexist"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Lstat() failed: expected %s, got %s", fs.ErrNotExist, err)
	}
}

func TestMemoryStat(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// create a file and a symlink pointing at it
	if _, err := tm.CreateFile("test", bytes.NewReader([]byte("test data")), 0644, false, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}
	if err := tm.CreateSymlink("test", "link", false); err != nil {
		t.Fatalf("CreateSymlink() failed: %s", err)
	}

	// stat the symlink, the target is described
	stat, err := tm.Stat("link")
	if err != nil {
		t.Fatalf("Stat() failed: %s", err)
	}
	if stat.Mode()&fs.ModeSymlink != 0 {
		t.Fatalf("Stat() failed: symlink not followed")
	}
	if stat.Size() != int64(len("test data")) {
		t.Fatalf("Stat() failed: expected %d, got %d", len("test data"), stat.Size())
	}
}

func TestMemoryRemove(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// create a file
	if _, err := tm.CreateFile("test", bytes.NewReader([]byte("test")), 0644, false, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}

	// remove the file
	if err := tm.Remove("test"); err != nil {
		t.Fatalf("Remove() failed: %s", err)
	}
	if _, err := tm.Lstat("test"); err == nil {
		t.Fatalf("Lstat() after Remove(): expected error, got nil")
	}

	// removing a path that does not exist is not an error
	if err := tm.Remove("notexist"); err != nil {
		t.Fatalf("Remove() failed: %s", err)
	}
}

func TestMemoryReadDir(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// create a directory with entries and one file below a subdirectory
	if err := tm.CreateDir("dir", 0755); err != nil {
		t.Fatalf("CreateDir() failed: %s", err)
	}
	for _, name := range []string{"dir/b", "dir/a"} {
		if _, err := tm.CreateFile(name, bytes.NewReader([]byte("data")), 0644, false, -1); err != nil {
			t.Fatalf("CreateFile() failed: %s", err)
		}
	}
	if _, err := tm.CreateFile("dir/sub/deep", bytes.NewReader([]byte("data")), 0644, false, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}

	// list the directory
	entries, err := tm.ReadDir("dir")
	if err != nil {
		t.Fatalf("ReadDir() failed: %s", err)
	}

	// direct children only, sorted by name
	if len(entries) != 2 {
		t.Fatalf("ReadDir() failed: expected %d entries, got %d", 2, len(entries))
	}
	if entries[0].Name() != "a" || entries[1].Name() != "b" {
		t.Fatalf("ReadDir() failed: expected [a b], got [%s %s]", entries[0].Name(), entries[1].Name())
	}
}

func TestMemoryReadFile(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// create a file
	if _, err := tm.CreateFile("test", bytes.NewReader([]byte("test data")), 0644, false, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}

	// read the file
	data, err := tm.ReadFile("test")
	if err != nil {
		t.Fatalf("ReadFile() failed: %s", err)
	}
	if !bytes.Equal(data, []byte("test data")) {
		t.Fatalf("ReadFile() failed: expected %s, got %s", "test data", data)
	}

	// read a file that does not exist
	if _, err := tm.ReadFile("notexist"); err == nil {
		t.Fatalf("ReadFile() failed: expected error, got nil")
	}

	// read a directory
	if err := tm.CreateDir("dir", 0755); err != nil {
		t.Fatalf("CreateDir() failed: %s", err)
	}
	if _, err := tm.ReadFile("dir"); err == nil {
		t.Fatalf("ReadFile() failed: expected error, got nil")
	}
}

func TestMemorySub(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// create files above and below the subtree
	if _, err := tm.CreateFile("meta/control", bytes.NewReader([]byte("control data")), 0644, false, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}
	if _, err := tm.CreateFile("other", bytes.NewReader([]byte("other data")), 0644, false, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}

	// take the subtree
	sub, err := tm.Sub("meta")
	if err != nil {
		t.Fatalf("Sub() failed: %s", err)
	}

	// the subtree sees its file under the shortened path
	f, err := sub.Open("control")
	if err != nil {
		t.Fatalf("Open() failed: %s", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll() failed: %s", err)
	}
	if !bytes.Equal(data, []byte("control data")) {
		t.Fatalf("ReadAll() failed: expected %s, got %s", "control data", data)
	}

	// the file outside the subtree is not visible
	if _, err := sub.Open("other"); err == nil {
		t.Fatalf("Open() failed: expected error, got nil")
	}
}

func TestMemoryGlob(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// create files
	for _, name := range []string{"a.txt", "b.txt", "c.bin"} {
		if _, err := tm.CreateFile(name, bytes.NewReader([]byte("data")), 0644, false, -1); err != nil {
			t.Fatalf("CreateFile() failed: %s", err)
		}
	}

	// glob for the text files
	matches, err := tm.Glob("*.txt")
	if err != nil {
		t.Fatalf("Glob() failed: %s", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Glob() failed: expected %d matches, got %d", 2, len(matches))
	}
}

func TestMemoryHardlink(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// create a file
	if _, err := tm.CreateFile("test", bytes.NewReader([]byte("test data")), 0644, false, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}

	// hardlink it
	if err := tm.CreateHardlink("test", "hard", false); err != nil {
		t.Fatalf("CreateHardlink() failed: %s", err)
	}

	// the data is shared
	data, err := tm.ReadFile("hard")
	if err != nil {
		t.Fatalf("ReadFile() failed: %s", err)
	}
	if !bytes.Equal(data, []byte("test data")) {
		t.Fatalf("ReadFile() failed: expected %s, got %s", "test data", data)
	}

	// hardlink to a target that does not exist
	if err := tm.CreateHardlink("notexist", "dangling", false); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("CreateHardlink() failed: expected %s, got %s", fs.ErrNotExist, err)
	}

	// hardlink to a directory
	if err := tm.CreateDir("dir", 0755); err != nil {
		t.Fatalf("CreateDir() failed: %s", err)
	}
	if err := tm.CreateHardlink("dir", "dirlink", false); err == nil {
		t.Fatalf("CreateHardlink() failed: expected error, got nil")
	}
}

func TestMemoryTrailingSeparator(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// directory entries of file archives carry a trailing separator
	if err := tm.CreateDir("usr/", 0755); err != nil {
		t.Fatalf("CreateDir() failed: %s", err)
	}

	// metadata updates with and without the separator hit the same entry
	mtime := time.Unix(1650000000, 0)
	if err := tm.Chtimes("usr/", time.Time{}, mtime); err != nil {
		t.Fatalf("Chtimes() failed: %s", err)
	}
	if err := tm.Chmod("usr", 0750); err != nil {
		t.Fatalf("Chmod() failed: %s", err)
	}

	stat, err := tm.Lstat("usr")
	if err != nil {
		t.Fatalf("Lstat() failed: %s", err)
	}
	if !stat.IsDir() {
		t.Fatalf("Lstat() failed: expected directory, got %s", stat.Mode())
	}
	if !stat.ModTime().Equal(mtime) {
		t.Fatalf("Lstat() failed: expected %s, got %s", mtime, stat.ModTime())
	}
	if stat.Mode().Perm() != 0750 {
		t.Fatalf("Lstat() failed: expected %s, got %s", fs.FileMode(0750), stat.Mode().Perm())
	}
}

func TestMemoryInvalidPath(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// paths that do not satisfy fs.ValidPath are rejected
	if _, err := tm.CreateFile("../escape", bytes.NewReader([]byte("data")), 0644, false, -1); !errors.Is(err, fs.ErrInvalid) {
		t.Fatalf("CreateFile() failed: expected %s, got %s", fs.ErrInvalid, err)
	}
	if err := tm.CreateDir("/rooted", 0755); !errors.Is(err, fs.ErrInvalid) {
		t.Fatalf("CreateDir() failed: expected %s, got %s", fs.ErrInvalid, err)
	}
	if _, err := tm.Lstat("../escape"); !errors.Is(err, fs.ErrInvalid) {
		t.Fatalf("Lstat() failed: expected %s, got %s", fs.ErrInvalid, err)
	}
	if err := tm.Remove("../escape"); !errors.Is(err, fs.ErrInvalid) {
		t.Fatalf("Remove() failed: expected %s, got %s", fs.ErrInvalid, err)
	}
}

func TestMemoryCreateFileOverwrite(t *testing.T) {
	// instantiate a new memory target
	tm := ipk.NewTargetMemory()

	// create a file
	if _, err := tm.CreateFile("test", bytes.NewReader([]byte("first")), 0644, false, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}

	// overwrite disabled
	if _, err := tm.CreateFile("test", bytes.NewReader([]byte("second")), 0644, false, -1); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("CreateFile() failed: expected %s, got %s", fs.ErrExist, err)
	}

	// overwrite enabled
	if _, err := tm.CreateFile("test", bytes.NewReader([]byte("second")), 0644, true, -1); err != nil {
		t.Fatalf("CreateFile() failed: %s", err)
	}
	data, err := tm.ReadFile("test")
	if err != nil {
		t.Fatalf("ReadFile() failed: %s", err)
	}
	if !bytes.Equal(data, []byte("second")) {
		t.Fatalf("ReadFile() failed: expected %s, got %s", "second", data)
	}

	// maximum size exceeded
	if _, err := tm.CreateFile("big", bytes.NewReader([]byte("too much data")), 0644, false, 4); err == nil {
		t.Fatalf("CreateFile() failed: expected error, got nil")
	}
}
