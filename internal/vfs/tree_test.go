package vfs

import (
	"sort"
	"testing"
)

func TestDirTreeAddFind(t *testing.T) {
	t.Parallel()
	tree := NewDirTree(0)

	e := tree.Add("a/b/c", false)
	if e == nil || e.IsDir() {
		t.Fatalf("expected non-dir leaf entry")
	}

	if tree.Find("a") == nil || !tree.Find("a").IsDir() {
		t.Fatalf("expected synthesized ancestor directory 'a'")
	}
	if tree.Find("a/b") == nil || !tree.Find("a/b").IsDir() {
		t.Fatalf("expected synthesized ancestor directory 'a/b'")
	}
	if tree.Find("a/b/c") != e {
		t.Fatalf("Find did not return the same entry as Add")
	}
	if tree.Find("nope") != nil {
		t.Fatalf("expected nil for missing path")
	}
}

func TestDirTreeAddIsNoOp(t *testing.T) {
	t.Parallel()
	tree := NewDirTree(0)
	first := tree.Add("x/y", false)
	second := tree.Add("x/y", true) // isdir ignored on re-add
	if first != second {
		t.Fatalf("re-adding an existing path should return the same entry")
	}
	if second.IsDir() {
		t.Fatalf("re-add must not change the existing entry's isDir")
	}
}

func TestDirTreeEnumerate(t *testing.T) {
	t.Parallel()
	tree := NewDirTree(0)
	tree.Add("dir/one.txt", false)
	tree.Add("dir/two.txt", false)
	tree.Add("dir/sub", true)

	var names []string
	tree.Enumerate("dir", func(name string) { names = append(names, name) })
	sort.Strings(names)

	want := []string{"one.txt", "sub", "two.txt"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestDirTreeRootEnumerate(t *testing.T) {
	t.Parallel()
	tree := NewDirTree(0)
	tree.Add("top.txt", false)

	var names []string
	tree.Enumerate("", func(name string) { names = append(names, name) })
	if len(names) != 1 || names[0] != "top.txt" {
		t.Fatalf("got %v", names)
	}
}

func TestDirTreePayload(t *testing.T) {
	t.Parallel()
	tree := NewDirTree(4)
	e := tree.Add("f", false)
	e.SetPayload(42)
	if tree.Find("f").Payload() != 42 {
		t.Fatalf("payload not preserved across Find")
	}
}
