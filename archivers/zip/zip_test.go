package zip

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"govfs/internal/vfs"
)

func writeFixtureZip(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("dir/hello.txt")
	if err != nil {
		t.Fatalf("zip Create: %v", err)
	}
	if _, err := w.Write([]byte("hello from zip")); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close: %v", err)
	}
}

func TestZipArchiverOpenAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.zip")
	writeFixtureZip(t, path)

	a := archiver{}
	state, claimed, err := a.OpenArchive(nil, path, false)
	if !claimed || err != nil {
		t.Fatalf("OpenArchive: claimed=%v err=%v", claimed, err)
	}
	defer a.CloseArchive(state)

	st, err := a.Stat(state, "dir/hello.txt")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st.Type != vfs.FileRegular || st.Size != int64(len("hello from zip")) {
		t.Fatalf("unexpected stat: %+v", st)
	}

	stream, err := a.OpenRead(state, "dir/hello.txt")
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	buf := make([]byte, 32)
	n, _ := stream.Read(buf)
	if string(buf[:n]) != "hello from zip" {
		t.Fatalf("got %q", buf[:n])
	}

	dirStat, err := a.Stat(state, "dir")
	if err != nil || dirStat.Type != vfs.FileDirectory {
		t.Fatalf("expected 'dir' to stat as a directory: %+v, err=%v", dirStat, err)
	}
}

func TestZipArchiverRejectsWrites(t *testing.T) {
	a := archiver{}
	if _, err := a.OpenWrite(nil, "x"); vfs.Code(err) != vfs.ErrReadOnly {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := a.Mkdir(nil, "x"); vfs.Code(err) != vfs.ErrReadOnly {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestZipArchiverDoesNotClaimNonZip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-zip.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	a := archiver{}
	if _, claimed, _ := a.OpenArchive(nil, path, false); claimed {
		t.Fatalf("expected non-zip file not to be claimed")
	}
}
