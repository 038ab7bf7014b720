package ipk

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"testing"
	"time"
)

func TestTarWalker(t *testing.T) {
	mtime := time.Unix(1650000000, 0)
	atime := time.Unix(1650000100, 0)

	buf := &bytes.Buffer{}
	tw := tar.NewWriter(buf)
	entries := []*tar.Header{
		{
			Name:     "./etc/",
			Typeflag: tar.TypeDir,
			Mode:     0755,
			ModTime:  mtime,
		},
		{
			Name:       "./etc/motd",
			Typeflag:   tar.TypeReg,
			Mode:       0640,
			Size:       int64(len("welcome\n")),
			Uid:        1000,
			Gid:        100,
			ModTime:    mtime,
			AccessTime: atime,
			Format:     tar.FormatPAX,
		},
		{
			Name:     "./etc/issue",
			Typeflag: tar.TypeSymlink,
			Linkname: "motd",
			Mode:     0777,
			ModTime:  mtime,
		},
		{
			Name:     "./etc/motd.bak",
			Typeflag: tar.TypeLink,
			Linkname: "./etc/motd",
			ModTime:  mtime,
		},
	}
	for _, hdr := range entries {
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("error writing tar header: %v", err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte("welcome\n")); err != nil {
				t.Fatalf("error writing tar data: %v", err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("error closing tar writer: %v", err)
	}

	w := &tarWalker{tr: tar.NewReader(buf)}
	if w.Type() != fileExtensionTar {
		t.Errorf("Type() = %q, want %q", w.Type(), fileExtensionTar)
	}

	// directory entry
	ae, err := w.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if !ae.IsDir() || ae.IsRegular() || ae.IsSymlink() || ae.IsHardlink() {
		t.Errorf("entry %q not reported as directory", ae.Name())
	}
	if ae.Name() != "./etc/" {
		t.Errorf("Name() = %q, want %q", ae.Name(), "./etc/")
	}

	// regular file entry
	ae, err = w.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if !ae.IsRegular() {
		t.Errorf("entry %q not reported as regular file", ae.Name())
	}
	if ae.Mode().Perm() != 0640 {
		t.Errorf("Mode() = %o, want %o", ae.Mode().Perm(), 0640)
	}
	if ae.Uid() != 1000 || ae.Gid() != 100 {
		t.Errorf("owner = %d:%d, want 1000:100", ae.Uid(), ae.Gid())
	}
	if !ae.ModTime().Equal(mtime) {
		t.Errorf("ModTime() = %v, want %v", ae.ModTime(), mtime)
	}
	if !ae.AccessTime().Equal(atime) {
		t.Errorf("AccessTime() = %v, want %v", ae.AccessTime(), atime)
	}
	if ae.Size() != int64(len("welcome\n")) {
		t.Errorf("Size() = %d, want %d", ae.Size(), len("welcome\n"))
	}
	rc, err := ae.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "welcome\n" {
		t.Errorf("entry data = %q, want %q", string(data), "welcome\n")
	}
	if err := rc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// symlink entry
	ae, err = w.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if !ae.IsSymlink() {
		t.Errorf("entry %q not reported as symlink", ae.Name())
	}
	if ae.Linkname() != "motd" {
		t.Errorf("Linkname() = %q, want %q", ae.Linkname(), "motd")
	}

	// hardlink entry
	ae, err = w.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if !ae.IsHardlink() {
		t.Errorf("entry %q not reported as hardlink", ae.Name())
	}
	if ae.Linkname() != "./etc/motd" {
		t.Errorf("Linkname() = %q, want %q", ae.Linkname(), "./etc/motd")
	}

	// end of archive
	if _, err := w.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("Next() error = %v, want %v", err, io.EOF)
	}
}
