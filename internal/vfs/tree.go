package vfs

import (
	"hash/fnv"

	"govfs/internal/common"
)

// treeEntry is one node in a DirTree (component F): a directory or file
// known to an archive's index. Entries live in the tree's arena and are
// never individually freed; the whole tree is dropped at once.
type treeEntry struct {
	name       string // full path within the archive, e.g. "a/b/c"
	isDir      bool
	firstChild *treeEntry
	nextSib    *treeEntry
	nextHash   *treeEntry
	payload    any // archiver-specific extra data (entrylen-style extension)
}

// DirTree is a hashed path->entry index. Archive back-ends that need to
// parse a whole container up front (zip, tgz) build one of these from
// the container's listing and then answer Find/Enumerate against it
// instead of re-walking the container per call.
type DirTree struct {
	root    *treeEntry
	buckets []*treeEntry
}

// NewDirTree constructs an empty tree. bucketCount follows the original's
// fixed default of 64 when 0 is passed.
func NewDirTree(bucketCount int) *DirTree {
	if bucketCount <= 0 {
		bucketCount = 64
	}
	return &DirTree{
		root:    &treeEntry{name: "", isDir: true},
		buckets: make([]*treeEntry, bucketCount),
	}
}

func (t *DirTree) hashBucket(path string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	return int(h.Sum32()) % len(t.buckets)
}

// Add inserts path (and, transparently, every missing ancestor directory)
// into the tree. Re-adding an existing path is a no-op that returns the
// existing entry. isdir marks only the leaf; ancestors are always
// directories.
func (t *DirTree) Add(path string, isdir bool) *treeEntry {
	path = common.NormalizePath(path)
	if path == "" {
		return t.root
	}
	if existing := t.find(path); existing != nil {
		return existing
	}

	parentPath := common.ParentPath(path)
	var parent *treeEntry
	if parentPath == "" {
		parent = t.root
	} else {
		parent = t.Add(parentPath, true)
	}

	entry := &treeEntry{name: path, isDir: isdir}
	bucket := t.hashBucket(path)
	entry.nextHash = t.buckets[bucket]
	t.buckets[bucket] = entry

	entry.nextSib = parent.firstChild
	parent.firstChild = entry

	return entry
}

// find is the internal lookup that does not splay the bucket, used by
// Add so inserting an ancestor doesn't reorder already-settled entries.
func (t *DirTree) find(path string) *treeEntry {
	if path == "" {
		return t.root
	}
	bucket := t.hashBucket(path)
	for e := t.buckets[bucket]; e != nil; e = e.nextHash {
		if e.name == path {
			return e
		}
	}
	return nil
}

// Find locates path and moves it to the front of its hash bucket
// ("splaying") so repeated lookups of hot paths stay cheap.
func (t *DirTree) Find(path string) *treeEntry {
	path = common.NormalizePath(path)
	if path == "" {
		return t.root
	}
	bucket := t.hashBucket(path)
	var prev *treeEntry
	for e := t.buckets[bucket]; e != nil; e = e.nextHash {
		if e.name == path {
			if prev != nil {
				prev.nextHash = e.nextHash
				e.nextHash = t.buckets[bucket]
				t.buckets[bucket] = e
			}
			return e
		}
		prev = e
	}
	return nil
}

// Enumerate invokes cb once per immediate child of dir, passing the
// trailing path segment (not the full path) for each.
func (t *DirTree) Enumerate(dir string, cb func(name string)) {
	entry := t.Find(dir)
	if entry == nil || !entry.isDir {
		return
	}
	for c := entry.firstChild; c != nil; c = c.nextSib {
		cb(common.BaseName(c.name))
	}
}

// IsDir reports whether entry e (as returned by Find/Add) is a directory.
func (e *treeEntry) IsDir() bool { return e.isDir }

// Payload returns the archiver-specific extra data attached to e.
func (e *treeEntry) Payload() any { return e.payload }

// SetPayload attaches archiver-specific extra data to e.
func (e *treeEntry) SetPayload(p any) { e.payload = p }
