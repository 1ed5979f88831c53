package vfs_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	_ "govfs/archivers/zip" // registers the zip archiver via init()
	"govfs/internal/vfs"
)

func writeTestZipArchive(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "pack.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, contents := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip Create(%q): %v", name, err)
		}
		if _, err := w.Write([]byte(contents)); err != nil {
			t.Fatalf("zip Write(%q): %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close: %v", err)
	}
	return path
}

// Scenario (spec §8 scenario 2): mount a real directory at root, then
// mount a zip archive (containing data/x) at root with append=true.
// EnumerateFiles("data") returns ["x"]. Writing data/x into the real
// directory and re-enumerating still returns ["x"] once (dedup).
// GetRealDir("data/x") reports the earlier (directory) mount, since
// search order, not mount kind, decides precedence.
func TestEndToEndDirAndZipDedupAndPrecedence(t *testing.T) {
	const dv = 5 // distinct from every other test file's instance indices
	if err := vfs.Init(dv); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer vfs.Deinit(dv)

	dirSrc := t.TempDir()
	if err := vfs.SetWriteDir(dv, dirSrc); err != nil {
		t.Fatalf("SetWriteDir: %v", err)
	}
	if err := vfs.Mount(dv, dirSrc, "", true); err != nil {
		t.Fatalf("Mount dir: %v", err)
	}

	zipPath := writeTestZipArchive(t, t.TempDir(), map[string]string{"data/x": "from zip"})
	if err := vfs.Mount(dv, zipPath, "", true); err != nil {
		t.Fatalf("Mount zip: %v", err)
	}

	entries, err := vfs.EnumerateFiles(dv, "data")
	if err != nil {
		t.Fatalf("EnumerateFiles: %v", err)
	}
	if len(entries) != 1 || entries[0] != "x" {
		t.Fatalf("expected [\"x\"] from the zip mount, got %v", entries)
	}

	if err := vfs.Mkdir(dv, "data"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	id, err := vfs.OpenWrite(dv, "data/x")
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	if _, err := vfs.Write(dv, id, []byte("from dir")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := vfs.Close(dv, id); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, err = vfs.EnumerateFiles(dv, "data")
	if err != nil {
		t.Fatalf("EnumerateFiles after write: %v", err)
	}
	if len(entries) != 1 || entries[0] != "x" {
		t.Fatalf("expected dedup to still yield [\"x\"] once, got %v", entries)
	}

	real, err := vfs.GetRealDir(dv, "data/x")
	if err != nil {
		t.Fatalf("GetRealDir: %v", err)
	}
	if real != dirSrc {
		t.Fatalf("expected the earlier (directory) mount %q to win, got %q", dirSrc, real)
	}
}
