package vfs

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func withInstance(t *testing.T) int {
	t.Helper()
	const dv = 0
	if err := Init(dv); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = Deinit(dv) })
	return dv
}

func mustWriteFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// Scenario: mount a read-only source dir at root, open and read a file.
func TestEndToEndMountOpenRead(t *testing.T) {
	dv := withInstance(t)

	src := t.TempDir()
	mustWriteFile(t, src, "hello.txt", "hello, world")

	if err := Mount(dv, src, "", true); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	ok, err := Exists(dv, "hello.txt")
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}

	id, err := OpenRead(dv, "hello.txt")
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer Close(dv, id)

	buf := make([]byte, 64)
	n, _ := Read(dv, id, buf)
	if string(buf[:n]) != "hello, world" {
		t.Fatalf("got %q", buf[:n])
	}
}

// Scenario: mount-order precedence — the first mount in search order wins.
func TestEndToEndMountOrderPrecedence(t *testing.T) {
	dv := withInstance(t)

	first := t.TempDir()
	second := t.TempDir()
	mustWriteFile(t, first, "f.txt", "first")
	mustWriteFile(t, second, "f.txt", "second")

	if err := Mount(dv, first, "", true); err != nil {
		t.Fatalf("Mount first: %v", err)
	}
	if err := Mount(dv, second, "", true); err != nil {
		t.Fatalf("Mount second: %v", err)
	}

	id, err := OpenRead(dv, "f.txt")
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer Close(dv, id)
	buf := make([]byte, 32)
	n, _ := Read(dv, id, buf)
	if string(buf[:n]) != "first" {
		t.Fatalf("expected first mount to win, got %q", buf[:n])
	}
}

// Scenario: mounting under a non-root mount point, nested virtual dirs.
func TestEndToEndNestedMountPoint(t *testing.T) {
	dv := withInstance(t)

	src := t.TempDir()
	mustWriteFile(t, src, "leaf.txt", "data")

	if err := Mount(dv, src, "a/b", true); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	isDir, err := IsDirectory(dv, "a")
	if err != nil || !isDir {
		t.Fatalf("expected synthesized interior dir 'a': isDir=%v err=%v", isDir, err)
	}
	isDir, err = IsDirectory(dv, "a/b")
	if err != nil || !isDir {
		t.Fatalf("expected 'a/b' to be a directory: isDir=%v err=%v", isDir, err)
	}

	ok, err := Exists(dv, "a/b/leaf.txt")
	if err != nil || !ok {
		t.Fatalf("Exists(a/b/leaf.txt): ok=%v err=%v", ok, err)
	}

	entries, err := EnumerateFiles(dv, "a")
	if err != nil {
		t.Fatalf("EnumerateFiles: %v", err)
	}
	if len(entries) != 1 || entries[0] != "b" {
		t.Fatalf("expected ['b'], got %v", entries)
	}
}

// Scenario: write directory round trip plus mkdir/delete.
func TestEndToEndWriteDirRoundTrip(t *testing.T) {
	dv := withInstance(t)

	writeDir := t.TempDir()
	if err := SetWriteDir(dv, writeDir); err != nil {
		t.Fatalf("SetWriteDir: %v", err)
	}
	// The write directory is a separate handle from the search path (the
	// original library never auto-mounts it either): mount it too so
	// OpenRead/Exists below can see what's written.
	if err := Mount(dv, writeDir, "", true); err != nil {
		t.Fatalf("Mount writeDir: %v", err)
	}

	if err := Mkdir(dv, "sub"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	id, err := OpenWrite(dv, "sub/out.txt")
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	if _, err := Write(dv, id, []byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Close(dv, id); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rid, err := OpenRead(dv, "sub/out.txt")
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	buf := make([]byte, 32)
	n, _ := Read(dv, rid, buf)
	_ = Close(dv, rid)
	if string(buf[:n]) != "payload" {
		t.Fatalf("got %q", buf[:n])
	}

	if err := Delete(dv, "sub/out.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ok, err := Exists(dv, "sub/out.txt")
	if err != nil {
		t.Fatalf("Exists after delete: %v", err)
	}
	if ok {
		t.Fatalf("expected file to be gone after Delete")
	}
}

// Scenario: unmount refuses while a handle from that mount is still open.
func TestEndToEndUnmountBlockedByOpenHandle(t *testing.T) {
	dv := withInstance(t)

	src := t.TempDir()
	mustWriteFile(t, src, "f.txt", "x")
	if err := Mount(dv, src, "", true); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	id, err := OpenRead(dv, "f.txt")
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}

	if err := Unmount(dv, src); Code(err) != ErrFilesStillOpen {
		t.Fatalf("expected ErrFilesStillOpen, got %v", err)
	}

	_ = Close(dv, id)
	if err := Unmount(dv, src); err != nil {
		t.Fatalf("Unmount after close: %v", err)
	}
}

// Scenario: mounting the same dir-name twice is a silent success, not
// an additive operation — the search path must not grow, and no error
// is reported.
func TestEndToEndIdempotentMount(t *testing.T) {
	dv := withInstance(t)

	src := t.TempDir()
	mustWriteFile(t, src, "f.txt", "x")

	if err := Mount(dv, src, "", true); err != nil {
		t.Fatalf("first Mount: %v", err)
	}
	if err := Mount(dv, src, "", true); err != nil {
		t.Fatalf("re-mounting the same dir-name must succeed silently, got: %v", err)
	}

	path, err := GetSearchPath(dv)
	if err != nil {
		t.Fatalf("GetSearchPath: %v", err)
	}
	if len(path) != 1 {
		t.Fatalf("expected exactly one entry in the search path, got %v", path)
	}
}

// Scenario: Enumerate's callback can halt iteration early (STOP,
// reported as success) or abort it with an application error (ERROR,
// reported as ErrAppCallback).
func TestEnumerateCallbackStopAndError(t *testing.T) {
	dv := withInstance(t)

	src := t.TempDir()
	mustWriteFile(t, src, "a.txt", "a")
	mustWriteFile(t, src, "b.txt", "b")
	mustWriteFile(t, src, "c.txt", "c")
	if err := Mount(dv, src, "", true); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	var seen []string
	err := Enumerate(dv, "", func(data any, origDir, childName string) EnumerateResult {
		seen = append(seen, childName)
		return EnumerateStop
	}, nil)
	if err != nil {
		t.Fatalf("expected STOP to report success, got %v", err)
	}
	if len(seen) != 1 {
		t.Fatalf("expected enumeration to halt after one entry, got %v", seen)
	}

	err = Enumerate(dv, "", func(data any, origDir, childName string) EnumerateResult {
		return EnumerateError
	}, nil)
	if Code(err) != ErrAppCallback {
		t.Fatalf("expected ErrAppCallback, got %v", err)
	}
}

// Scenario: one goroutine repeatedly opens and reads a file while
// another repeatedly mounts and unmounts an unrelated directory. Both
// run against the same instance; neither should crash, deadlock, or
// observe the other goroutine's last-error slot (§5's per-goroutine
// error state).
func TestEndToEndConcurrentReadersAndMountChurn(t *testing.T) {
	dv := withInstance(t)

	readable := t.TempDir()
	mustWriteFile(t, readable, "f.txt", "stable content")
	if err := Mount(dv, readable, "", true); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	churn := t.TempDir()

	const iterations = 200
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			id, err := OpenRead(dv, "f.txt")
			if err != nil {
				t.Errorf("reader: OpenRead: %v", err)
				return
			}
			buf := make([]byte, 32)
			if _, rerr := Read(dv, id, buf); rerr != nil && rerr != io.EOF {
				t.Errorf("reader: Read: %v", rerr)
				return
			}
			if err := Close(dv, id); err != nil {
				t.Errorf("reader: Close: %v", err)
				return
			}
			// A read-path failure must never leave the *churn* goroutine's
			// last error visible here, and vice versa: each goroutine's
			// slot is keyed by its own goroutine id.
			if code := GetLastErrorCode(dv); code != ErrOK {
				t.Errorf("reader: unexpected stale error code %v", code)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if err := Mount(dv, churn, "churn", true); err != nil {
				t.Errorf("churn: Mount: %v", err)
				return
			}
			if err := Unmount(dv, churn); err != nil {
				t.Errorf("churn: Unmount: %v", err)
				return
			}
		}
	}()

	wg.Wait()

	ok, err := Exists(dv, "f.txt")
	if err != nil || !ok {
		t.Fatalf("expected f.txt to still be reachable after churn: ok=%v err=%v", ok, err)
	}
}
