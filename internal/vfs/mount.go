package vfs

import (
	"strings"

	"govfs/internal/common"
)

// DirHandle represents one entry in the mount table (component H): one
// mounted archive, its virtual mount point, and the back-end that knows
// how to read it.
type DirHandle struct {
	archiver Archiver
	state    any // opaque archive state, owned by archiver
	dirName  string // external path/identifier passed to mount(); used for de-dup
	mountPt  string // sanitized, always "" (root) or ending in "/"

	openCount int // live FileHandles referencing this mount; blocks unmount
}

// MountPoint returns the handle's virtual mount point ("" means root).
func (h *DirHandle) MountPoint() string { return h.mountPt }

// DirName returns the identifier the caller originally passed to mount().
func (h *DirHandle) DirName() string { return h.dirName }

// ArchiverName returns the back-end name serving this mount.
func (h *DirHandle) ArchiverName() string { return h.archiver.Name() }

func normalizeMountPoint(mountPoint string) (string, error) {
	if mountPoint == "" || mountPoint == "/" {
		return "", nil
	}
	clean, err := sanitizePath(mountPoint)
	if err != nil {
		return "", err
	}
	if clean == "" {
		return "", nil
	}
	return clean + "/", nil
}

// underMount implements the §4.2 mount-point prefix test: does fname
// (already sanitized) lie under h's mount point, and if so what is the
// archive-relative suffix?
func underMount(h *DirHandle, fname string) (suffix string, ok bool) {
	if h.mountPt == "" {
		return fname, true
	}
	if fname == h.mountPt[:len(h.mountPt)-1] {
		return "", true
	}
	if strings.HasPrefix(fname, h.mountPt) {
		return fname[len(h.mountPt):], true
	}
	return "", false
}

// isInteriorOf answers "is fname a proper interior segment of mountPoint?"
// — a strict prefix of mountPoint ending on a segment boundary. The empty
// path (the root) counts as interior of every non-root mount point; the
// mount point itself (without its trailing slash) does not.
// Used to synthesize virtual directory entries for nested mount points
// during enumeration (§4.2, §4.6).
func isInteriorOf(fname, mountPoint string) bool {
	if mountPoint == "" || fname == mountPoint[:len(mountPoint)-1] {
		return false
	}
	prefix := fname
	if prefix != "" {
		prefix += "/"
	}
	return strings.HasPrefix(mountPoint, prefix)
}

// nextMountSegment returns the path segment of mountPoint that comes
// right after fname (used to synthesize one virtual directory entry per
// call to enumerate when fname is an interior of mountPoint).
func nextMountSegment(fname, mountPoint string) string {
	rest := strings.TrimPrefix(mountPoint, fname)
	rest = strings.TrimPrefix(rest, "/")
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		return rest[:idx]
	}
	return strings.TrimSuffix(rest, "/")
}

// verifyPath implements §4.3: walk the archive-relative path segment by
// segment, refusing any component that is a symlink when the instance
// forbids them. allowMissing lets mkdir's final, not-yet-existing
// segment through.
func verifyPath(h *DirHandle, suffix string, allowSymlinks bool, allowMissing bool) error {
	if allowSymlinks || !h.archiver.SupportsSymlinks() {
		return nil
	}
	if suffix == "" {
		return nil
	}

	parts := common.SplitPath(suffix)
	for i := range parts {
		prefix := common.JoinPath(parts[:i+1]...)

		st, err := h.archiver.Stat(h.state, prefix)
		if err != nil {
			if Code(err) == ErrNotFound {
				if i == len(parts)-1 && allowMissing {
					return nil
				}
				return nil // doesn't exist here; not a security failure
			}
			return err
		}
		if st.Type == FileSymlink {
			return newErr(ErrSymlinkForbidden)
		}
	}
	return nil
}

// openDirectory resolves a mount source to an Archiver + opaque state,
// per §4.4's opener-resolution algorithm.
func openDirectory(source string, io Stream, forWriting bool) (Archiver, any, error) {
	if io == nil {
		// Real-filesystem mount: try the DIR back-end first.
		state, claimed, err := DirArchiver.OpenArchive(nil, source, forWriting)
		if claimed {
			if err != nil {
				return nil, nil, err
			}
			return DirArchiver, state, nil
		}
		// Not a directory: open a native stream and fall through to the
		// same registered-archiver probing as mountIo.
		f, ferr := osOpenStream(source)
		if ferr != nil {
			return nil, nil, newErr(ErrNotFound)
		}
		return probeArchivers(f, source, forWriting)
	}
	return probeArchivers(io, source, forWriting)
}

func probeArchivers(io Stream, name string, forWriting bool) (Archiver, any, error) {
	for _, a := range registeredArchivers {
		state, claimed, err := a.OpenArchive(io, name, forWriting)
		if claimed {
			if err != nil {
				return nil, nil, err
			}
			return a, state, nil
		}
		_, _ = io.Seek(0, 0) // next back-end gets a fresh read from the start
	}
	return nil, nil, newErr(ErrUnsupported)
}
