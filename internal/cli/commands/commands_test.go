package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// run executes rootCmd with args against a fresh search-path file so
// invocations in one test don't see another test's mounts, and returns
// what the command printed. Verbs write with fmt.Println straight to
// os.Stdout rather than through cobra's OutOrStdout, so stdout itself
// has to be redirected to capture it.
func run(t *testing.T, searchPath string, args ...string) (string, error) {
	t.Helper()

	r, w, perr := os.Pipe()
	if perr != nil {
		t.Fatalf("Pipe: %v", perr)
	}
	origStdout := os.Stdout
	os.Stdout = w

	rootCmd.SetArgs(append([]string{"--search-path", searchPath}, args...))
	err := rootCmd.Execute()

	os.Stdout = origStdout
	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)
	r.Close()

	return buf.String(), err
}

func TestMountLsStatRoundTrip(t *testing.T) {
	root := t.TempDir()
	searchPath := filepath.Join(root, "search-path.yaml")

	src := filepath.Join(root, "src")
	if err := os.Mkdir(src, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "hello.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := run(t, searchPath, "mount", src); err != nil {
		t.Fatalf("mount: %v", err)
	}

	out, err := run(t, searchPath, "ls", "-l")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("hello.txt")) {
		t.Fatalf("ls -l output missing entry: %q", out)
	}

	out, err = run(t, searchPath, "stat", "hello.txt")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("size:      2")) {
		t.Fatalf("stat output missing size: %q", out)
	}
}

func TestMkdirRmRoundTrip(t *testing.T) {
	root := t.TempDir()
	searchPath := filepath.Join(root, "search-path.yaml")

	writeDir := filepath.Join(root, "write")
	if err := os.Mkdir(writeDir, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	if _, err := run(t, searchPath, "mount", writeDir); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, err := run(t, searchPath, "mkdir", "sub", "--write-dir", writeDir); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	out, err := run(t, searchPath, "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("sub")) {
		t.Fatalf("ls missing sub: %q", out)
	}

	if _, err := run(t, searchPath, "rm", "sub", "--write-dir", writeDir); err != nil {
		t.Fatalf("rm: %v", err)
	}
	out, err = run(t, searchPath, "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if bytes.Contains([]byte(out), []byte("sub")) {
		t.Fatalf("ls still shows removed sub: %q", out)
	}
}
