package vfs

import (
	"os"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// dirArchiver is the built-in native-directory back-end (component G's
// mandatory implementation). Its opaque archive state is a billy.Filesystem
// rooted at the mounted directory — the spec's invariant that "the DIR
// back-end's opaque is a real-filesystem path ending in the platform
// separator" is satisfied here by osfs.New, which already roots every
// operation at that path and translates '/' to the platform separator.
type dirArchiver struct{}

// DirArchiver is the singleton built-in DIR back-end, consulted first by
// openDirectory for mounts of a native path, before any registered
// third-party archiver; stream mounts (MountIo) skip it.
var DirArchiver Archiver = dirArchiver{}

func (dirArchiver) Name() string             { return "dir" }
func (dirArchiver) SupportsSymlinks() bool   { return true }

func (dirArchiver) OpenArchive(io Stream, name string, forWriting bool) (any, bool, error) {
	// The DIR back-end never consumes a Stream: it claims based on the
	// name alone being a real directory (§4.4 opener resolution).
	info, err := os.Stat(name)
	if err != nil {
		return nil, false, nil
	}
	if !info.IsDir() {
		return nil, false, nil
	}
	return osfs.New(name, osfs.WithBoundOS()), true, nil
}

func (dirArchiver) fs(state any) billy.Filesystem { return state.(billy.Filesystem) }

func (a dirArchiver) Enumerate(state any, path string, cb func(string) EnumerateResult) EnumerateResult {
	entries, err := a.fs(state).ReadDir(path)
	if err != nil {
		return EnumerateError
	}
	for _, e := range entries {
		switch cb(e.Name()) {
		case EnumerateStop:
			return EnumerateStop
		case EnumerateError:
			return EnumerateError
		}
	}
	return EnumerateOK
}

func (a dirArchiver) OpenRead(state any, path string) (Stream, error) {
	fs := a.fs(state)
	f, err := fs.Open(path)
	if err != nil {
		return nil, newErr(ErrNotFound)
	}
	return newBillyStream(fs, path, f), nil
}

func (a dirArchiver) OpenWrite(state any, path string) (Stream, error) {
	fs := a.fs(state)
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, newErr(ErrIO)
	}
	return newBillyStream(fs, path, f), nil
}

func (a dirArchiver) OpenAppend(state any, path string) (Stream, error) {
	fs := a.fs(state)
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, newErr(ErrIO)
	}
	return newBillyStream(fs, path, f), nil
}

func (a dirArchiver) Remove(state any, path string) error {
	if err := a.fs(state).Remove(path); err != nil {
		if os.IsNotExist(err) {
			return newErr(ErrNotFound)
		}
		return newErr(ErrIO)
	}
	return nil
}

func (a dirArchiver) Mkdir(state any, path string) error {
	if err := a.fs(state).MkdirAll(path, 0o755); err != nil {
		return newErr(ErrIO)
	}
	return nil
}

func (a dirArchiver) Stat(state any, path string) (Stat, error) {
	info, err := a.fs(state).Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Stat{}, newErr(ErrNotFound)
		}
		return Stat{}, newErr(ErrIO)
	}

	st := Stat{
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		st.Type = FileSymlink
	case info.IsDir():
		st.Type = FileDirectory
	default:
		st.Type = FileRegular
	}
	return st, nil
}

func (dirArchiver) CloseArchive(state any) error { return nil }
