package vfs

import (
	"io"
	"os"

	billy "github.com/go-git/go-billy/v5"
)

// Stream is the polymorphic I/O object described by component E: every
// open file, in every archive back-end, is handed around as a Stream.
// Three implementations ship with this package: billyStream (a thin
// adapter over a billy.File, used by the built-in DIR back-end and any
// archiver that stores its own content in a billy.Filesystem),
// byteStream (an in-memory stream, used by archivers like zip/tgz that
// extract an entry's bytes up front rather than seeking a compressed
// container) and osFileStream (over a native *os.File).
type Stream interface {
	io.Reader
	io.Writer

	Seek(offset int64, whence int) (int64, error)
	Tell() (int64, error)
	Length() (int64, error)

	// Duplicate returns an independent stream over the same underlying
	// file, with its own seek position.
	Duplicate() (Stream, error)

	Flush() error
	Close() error
}

// billyStream adapts a billy.File (and the billy.Filesystem it came
// from, needed to reopen the same name for Duplicate) to the Stream
// contract.
type billyStream struct {
	fs   billy.Filesystem
	name string
	f    billy.File
}

func newBillyStream(fs billy.Filesystem, name string, f billy.File) *billyStream {
	return &billyStream{fs: fs, name: name, f: f}
}

func (s *billyStream) Read(p []byte) (int, error)  { return s.f.Read(p) }
func (s *billyStream) Write(p []byte) (int, error) { return s.f.Write(p) }

func (s *billyStream) Seek(offset int64, whence int) (int64, error) {
	return s.f.Seek(offset, whence)
}

func (s *billyStream) Tell() (int64, error) {
	return s.f.Seek(0, io.SeekCurrent)
}

func (s *billyStream) Length() (int64, error) {
	info, err := s.fs.Stat(s.name)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *billyStream) Duplicate() (Stream, error) {
	dup, err := s.fs.Open(s.name)
	if err != nil {
		return nil, err
	}
	return newBillyStream(s.fs, s.name, dup), nil
}

func (s *billyStream) Flush() error {
	if syncer, ok := s.f.(interface{ Sync() error }); ok {
		return syncer.Sync()
	}
	return nil
}

func (s *billyStream) Close() error { return s.f.Close() }

// byteStream is a read-only Stream over an in-memory byte slice, used by
// archivers that decode their entire entry before exposing a Stream
// (the usual approach for compressed, non-seekable container formats).
type byteStream struct {
	data []byte
	pos  int64
}

func newByteStream(data []byte) *byteStream {
	return &byteStream{data: data}
}

// NewByteStream exposes byteStream to Archiver implementations outside
// this package (e.g. archivers/zip, archivers/tgz) that extract an
// entry's full contents up front rather than exposing a seekable
// container.
func NewByteStream(data []byte) Stream {
	return newByteStream(data)
}

func (s *byteStream) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *byteStream) Write(p []byte) (int, error) {
	return 0, newErr(ErrReadOnly)
}

func (s *byteStream) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = s.pos + offset
	case io.SeekEnd:
		newPos = int64(len(s.data)) + offset
	default:
		return 0, newErr(ErrInvalidArgument)
	}
	if newPos < 0 {
		return 0, newErr(ErrInvalidArgument)
	}
	s.pos = newPos
	return s.pos, nil
}

func (s *byteStream) Tell() (int64, error)   { return s.pos, nil }
func (s *byteStream) Length() (int64, error) { return int64(len(s.data)), nil }

func (s *byteStream) Duplicate() (Stream, error) {
	return &byteStream{data: s.data}, nil
}

func (s *byteStream) Flush() error { return nil }
func (s *byteStream) Close() error { return nil }

// osFileStream adapts a raw *os.File to the Stream contract. Used when
// openDirectory needs to hand a freestanding native file to the
// registered-archiver probe chain (§4.4) — the source isn't a directory,
// so the DIR back-end doesn't apply, but it isn't yet known to belong to
// any archiver's billy.Filesystem either.
type osFileStream struct {
	path string
	f    *os.File
}

func osOpenStream(path string) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &osFileStream{path: path, f: f}, nil
}

func (s *osFileStream) Read(p []byte) (int, error)  { return s.f.Read(p) }
func (s *osFileStream) Write(p []byte) (int, error) { return s.f.Write(p) }

func (s *osFileStream) Seek(offset int64, whence int) (int64, error) {
	return s.f.Seek(offset, whence)
}

func (s *osFileStream) Tell() (int64, error) { return s.f.Seek(0, io.SeekCurrent) }

func (s *osFileStream) Length() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *osFileStream) Duplicate() (Stream, error) {
	return osOpenStream(s.path)
}

func (s *osFileStream) Flush() error { return s.f.Sync() }
func (s *osFileStream) Close() error { return s.f.Close() }
