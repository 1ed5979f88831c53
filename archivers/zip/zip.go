// Package zip implements a read-only Archiver (govfs/internal/vfs) over
// stdlib archive/zip, registered at init() so any host program that
// imports this package for its side effect gets zip mounting for free
// via the opener-resolution fallback chain.
package zip

import (
	"archive/zip"
	"io"

	"govfs/internal/vfs"
)

func init() {
	vfs.RegisterArchiver(archiver{})
}

type archiveState struct {
	zr   *zip.ReadCloser
	tree *vfs.DirTree
}

type archiver struct{}

func (archiver) Name() string           { return "zip" }
func (archiver) SupportsSymlinks() bool { return false }

// OpenArchive opens the archive by name from the native filesystem; the
// stream argument is not read, so an archive supplied only as a Stream
// (MountIo with a name that is not a real zip file path) is not claimed.
func (archiver) OpenArchive(stream vfs.Stream, name string, forWriting bool) (any, bool, error) {
	if forWriting {
		return nil, false, nil
	}

	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, false, nil
	}

	tree := vfs.NewDirTree(0)
	for _, f := range zr.File {
		entry := tree.Add(f.Name, f.FileInfo().IsDir())
		entry.SetPayload(f)
	}

	return &archiveState{zr: zr, tree: tree}, true, nil
}

func (archiver) Enumerate(state any, path string, cb func(string) vfs.EnumerateResult) vfs.EnumerateResult {
	st := state.(*archiveState)
	result := vfs.EnumerateOK
	st.tree.Enumerate(path, func(name string) {
		if result != vfs.EnumerateOK {
			return
		}
		result = cb(name)
	})
	return result
}

func (archiver) OpenRead(state any, path string) (vfs.Stream, error) {
	st := state.(*archiveState)
	entry := st.tree.Find(path)
	if entry == nil || entry.Payload() == nil {
		return nil, vfs.NewError(vfs.ErrNotFound)
	}
	f := entry.Payload().(*zip.File)

	rc, err := f.Open()
	if err != nil {
		return nil, vfs.NewError(vfs.ErrCorrupt)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, vfs.NewError(vfs.ErrCorrupt)
	}
	return vfs.NewByteStream(data), nil
}

func (archiver) OpenWrite(any, string) (vfs.Stream, error) {
	return nil, vfs.NewError(vfs.ErrReadOnly)
}

func (archiver) OpenAppend(any, string) (vfs.Stream, error) {
	return nil, vfs.NewError(vfs.ErrReadOnly)
}

func (archiver) Remove(any, string) error { return vfs.NewError(vfs.ErrReadOnly) }
func (archiver) Mkdir(any, string) error  { return vfs.NewError(vfs.ErrReadOnly) }

func (archiver) Stat(state any, path string) (vfs.Stat, error) {
	st := state.(*archiveState)
	if path == "" {
		return vfs.Stat{Type: vfs.FileDirectory}, nil
	}
	entry := st.tree.Find(path)
	if entry == nil {
		return vfs.Stat{}, vfs.NewError(vfs.ErrNotFound)
	}
	if entry.IsDir() {
		return vfs.Stat{Type: vfs.FileDirectory}, nil
	}
	f := entry.Payload().(*zip.File)
	return vfs.Stat{
		Size:    int64(f.UncompressedSize64),
		ModTime: f.Modified,
		Type:    vfs.FileRegular,
	}, nil
}

func (archiver) CloseArchive(state any) error {
	st := state.(*archiveState)
	return st.zr.Close()
}
