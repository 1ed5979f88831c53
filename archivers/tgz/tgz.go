// Package tgz implements a read-only Archiver (govfs/internal/vfs) over
// gzip-compressed tar archives, using klauspost/compress's gzip decoder
// instead of stdlib compress/gzip for its faster decompression path.
package tgz

import (
	"archive/tar"
	"io"

	"github.com/klauspost/compress/gzip"

	"govfs/internal/vfs"
)

func init() {
	vfs.RegisterArchiver(archiver{})
}

type entryInfo struct {
	size    int64
	modTime int64
	isDir   bool
}

type archiveState struct {
	tree *vfs.DirTree
	data map[string][]byte
}

type archiver struct{}

func (archiver) Name() string           { return "tgz" }
func (archiver) SupportsSymlinks() bool { return false }

// OpenArchive decodes the entire stream up front: tar.gz is not
// seekable the way a zip central directory is, so the only way to
// support random-access Stat/OpenRead afterward is to materialize every
// entry's bytes into memory once at mount time.
func (archiver) OpenArchive(stream vfs.Stream, name string, forWriting bool) (any, bool, error) {
	if forWriting || stream == nil {
		return nil, false, nil
	}

	gz, err := gzip.NewReader(rewound(stream))
	if err != nil {
		return nil, false, nil
	}
	defer gz.Close()

	tree := vfs.NewDirTree(0)
	data := make(map[string][]byte)

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, true, vfs.NewError(vfs.ErrCorrupt)
		}

		isDir := hdr.Typeflag == tar.TypeDir
		entry := tree.Add(hdr.Name, isDir)
		entry.SetPayload(entryInfo{size: hdr.Size, modTime: hdr.ModTime.Unix(), isDir: isDir})

		if !isDir {
			buf, err := io.ReadAll(tr)
			if err != nil {
				return nil, true, vfs.NewError(vfs.ErrCorrupt)
			}
			data[hdr.Name] = buf
		}
	}

	return &archiveState{tree: tree, data: data}, true, nil
}

type readSeeker interface {
	io.Reader
	Seek(offset int64, whence int) (int64, error)
}

// rewound adapts a vfs.Stream (which already implements io.Reader and
// Seek) to plain io.Reader for gzip.NewReader, rewinding to the start
// first since callers may have already probed it via earlier archivers
// in the opener-resolution chain.
func rewound(s vfs.Stream) io.Reader {
	if rs, ok := s.(readSeeker); ok {
		_, _ = rs.Seek(0, io.SeekStart)
	}
	return s
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
	if entry == nil || entry.IsDir() {
		return nil, vfs.NewError(vfs.ErrNotFound)
	}
	buf, ok := st.data[path]
	if !ok {
		return nil, vfs.NewError(vfs.ErrNotFound)
	}
	return vfs.NewByteStream(buf), nil
}

func (archiver) OpenWrite(any, string) (vfs.Stream, error)  { return nil, vfs.NewError(vfs.ErrReadOnly) }
func (archiver) OpenAppend(any, string) (vfs.Stream, error) { return nil, vfs.NewError(vfs.ErrReadOnly) }
func (archiver) Remove(any, string) error                   { return vfs.NewError(vfs.ErrReadOnly) }
func (archiver) Mkdir(any, string) error                    { return vfs.NewError(vfs.ErrReadOnly) }

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
	info := entry.Payload().(entryInfo)
	return vfs.Stat{Size: info.size, Type: vfs.FileRegular}, nil
}

func (archiver) CloseArchive(any) error { return nil }
