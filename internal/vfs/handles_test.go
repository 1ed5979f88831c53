package vfs

import (
	"strconv"
	"testing"
)

// memStream is a minimal in-memory Stream used to exercise FileHandle's
// buffering logic in isolation from any real archiver.
type memStream struct {
	data []byte
	pos  int64
}

func (m *memStream) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.data)) {
		return 0, errEOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memStream) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memStream) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		m.pos = offset
	case 1:
		m.pos += offset
	case 2:
		m.pos = int64(len(m.data)) + offset
	}
	return m.pos, nil
}

func (m *memStream) Tell() (int64, error)   { return m.pos, nil }
func (m *memStream) Length() (int64, error) { return int64(len(m.data)), nil }
func (m *memStream) Duplicate() (Stream, error) {
	return &memStream{data: m.data, pos: m.pos}, nil
}
func (m *memStream) Flush() error { return nil }
func (m *memStream) Close() error { return nil }

var errEOF = newErr(ErrPastEOF)

func TestFileHandleBufferedWriteFlushesOnOverflow(t *testing.T) {
	t.Parallel()
	ms := &memStream{}
	fh := &FileHandle{stream: ms, forReading: false, owner: &DirHandle{}}
	if err := fh.setBuffer(4); err != nil {
		t.Fatalf("setBuffer: %v", err)
	}

	if _, err := fh.write([]byte("ab")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(ms.data) != 0 {
		t.Fatalf("expected nothing flushed yet, underlying has %q", ms.data)
	}

	if _, err := fh.write([]byte("cde")); err != nil {
		t.Fatalf("write: %v", err)
	}
	// "ab" (2) + "cde" (3) = 5 > bufSize(4): flush triggers, "ab" lands in
	// the underlying stream, then "cde" overflows straight through.
	if string(ms.data) != "abcde" {
		t.Fatalf("got %q, want abcde", ms.data)
	}
}

// seekCountingStream wraps memStream, counting calls to Seek so a test
// can prove a buffered-window seek never reaches the underlying stream.
type seekCountingStream struct {
	memStream
	seekCalls int
}

func (s *seekCountingStream) Seek(offset int64, whence int) (int64, error) {
	s.seekCalls++
	return s.memStream.Seek(offset, whence)
}

func TestFileHandleSeekWithinBufferedWindow(t *testing.T) {
	t.Parallel()
	ms := &seekCountingStream{memStream: memStream{data: []byte("0123456789")}}
	fh := &FileHandle{stream: ms, forReading: true, owner: &DirHandle{}}
	if err := fh.setBuffer(4); err != nil {
		t.Fatalf("setBuffer: %v", err)
	}

	buf := make([]byte, 4)
	n, err := fh.read(buf)
	if err != nil || n != 4 || string(buf) != "0123" {
		t.Fatalf("read: n=%d err=%v buf=%q", n, err, buf)
	}

	// Seeking back to position 1 stays within the already-buffered window
	// [0,4) and must not touch the underlying stream's position.
	if err := fh.seek(1); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if ms.seekCalls != 0 {
		t.Fatalf("in-window seek must not call the underlying stream's Seek, got %d calls", ms.seekCalls)
	}
	pos, _ := fh.tell()
	if pos != 1 {
		t.Fatalf("tell() = %d, want 1", pos)
	}

	n, err = fh.read(buf)
	if err != nil || string(buf[:n]) != "1234" {
		t.Fatalf("unexpected read after seek: n=%d err=%v buf=%q", n, err, buf[:n])
	}

	// Seeking outside the buffered window must fall back to repositioning
	// the underlying stream.
	if err := fh.seek(9); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if ms.seekCalls != 1 {
		t.Fatalf("out-of-window seek must call the underlying stream's Seek exactly once, got %d calls", ms.seekCalls)
	}
}

// Scenario: a write-then-read round trip of an arbitrary byte string
// survives every buffer size in {0, 1, 7, len(B), 2*len(B)} when read
// back in 3-byte chunks.
func TestFileHandleBufferedRoundTrip(t *testing.T) {
	t.Parallel()
	payload := []byte("the quick brown fox jumps over the lazy dog, 42 times")

	sizes := []int{0, 1, 7, len(payload), 2 * len(payload)}
	for _, bufSize := range sizes {
		bufSize := bufSize
		t.Run(strconv.Itoa(bufSize), func(t *testing.T) {
			t.Parallel()

			writeStream := &memStream{}
			wfh := &FileHandle{stream: writeStream, forReading: false, owner: &DirHandle{}}
			if _, err := wfh.write(payload); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := wfh.closeStream(); err != nil {
				t.Fatalf("closeStream: %v", err)
			}

			readStream := &memStream{data: writeStream.data}
			rfh := &FileHandle{stream: readStream, forReading: true, owner: &DirHandle{}}
			if err := rfh.setBuffer(bufSize); err != nil {
				t.Fatalf("setBuffer(%d): %v", bufSize, err)
			}

			var got []byte
			chunk := make([]byte, 3)
			for len(got) < len(payload) {
				n, err := rfh.read(chunk)
				got = append(got, chunk[:n]...)
				if err != nil {
					if Code(err) == ErrPastEOF {
						break
					}
					t.Fatalf("bufSize=%d: unexpected read error: %v", bufSize, err)
				}
			}

			if string(got) != string(payload) {
				t.Fatalf("bufSize=%d: got %q, want %q", bufSize, got, payload)
			}
		})
	}
}

func TestFileHandleFlushOnClose(t *testing.T) {
	t.Parallel()
	ms := &memStream{}
	fh := &FileHandle{stream: ms, forReading: false, owner: &DirHandle{}}
	if err := fh.setBuffer(16); err != nil {
		t.Fatalf("setBuffer: %v", err)
	}
	if _, err := fh.write([]byte("pending")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(ms.data) != 0 {
		t.Fatalf("expected write still buffered before close")
	}
	if err := fh.closeStream(); err != nil {
		t.Fatalf("closeStream: %v", err)
	}
	if string(ms.data) != "pending" {
		t.Fatalf("expected flush-on-close, got %q", ms.data)
	}
}
