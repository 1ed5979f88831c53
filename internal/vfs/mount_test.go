package vfs

import "testing"

func TestNormalizeMountPoint(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{"", ""},
		{"/", ""},
		{"a", "a/"},
		{"/a/b/", "a/b/"},
	}
	for _, c := range cases {
		got, err := normalizeMountPoint(c.in)
		if err != nil {
			t.Fatalf("normalizeMountPoint(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("normalizeMountPoint(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestUnderMount(t *testing.T) {
	t.Parallel()
	root := &DirHandle{mountPt: ""}
	if suffix, ok := underMount(root, "a/b"); !ok || suffix != "a/b" {
		t.Fatalf("root mount should match everything unchanged, got %q %v", suffix, ok)
	}

	nested := &DirHandle{mountPt: "a/b/"}
	suffix, ok := underMount(nested, "a/b/c.txt")
	if !ok || suffix != "c.txt" {
		t.Fatalf("expected suffix c.txt, got %q %v", suffix, ok)
	}
	if _, ok := underMount(nested, "a/other.txt"); ok {
		t.Fatalf("expected no match outside mount point")
	}
}

func TestIsInteriorOfAndNextSegment(t *testing.T) {
	t.Parallel()
	if !isInteriorOf("a", "a/b/c/") {
		t.Fatalf("'a' should be interior of 'a/b/c/'")
	}
	if !isInteriorOf("a/b", "a/b/c/") {
		t.Fatalf("'a/b' should be interior of 'a/b/c/'")
	}
	if isInteriorOf("a/b/c", "a/b/c/") {
		t.Fatalf("the mount point itself is not a proper interior")
	}
	if isInteriorOf("x", "a/b/c/") {
		t.Fatalf("unrelated path must not be interior")
	}

	if got := nextMountSegment("a", "a/b/c/"); got != "b" {
		t.Fatalf("nextMountSegment = %q, want b", got)
	}
	if got := nextMountSegment("a/b", "a/b/c/"); got != "c" {
		t.Fatalf("nextMountSegment = %q, want c", got)
	}
}
