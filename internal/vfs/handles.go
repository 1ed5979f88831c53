package vfs

import (
	"io"
	"sync"
)

// HandleID identifies one open FileHandle within an Instance.
type HandleID uint64

// FileHandle represents one open stream (component I). Buffering is
// optional and user-tunable via SetBuffer; when buf is nil every Read or
// Write goes straight to the underlying Stream.
type FileHandle struct {
	mu sync.Mutex

	stream     Stream
	forReading bool
	owner      *DirHandle

	buf      []byte
	bufSize  int
	bufFill  int // valid bytes currently in buf (read mode)
	bufPos   int // next unread byte in buf (read mode)
}

// handleRegistry holds an Instance's open-read and open-write lists.
// Both lists, plus the mount table, are protected by the Instance's
// state lock during structural changes (link/unlink); operations on a
// single already-owned handle (read/write/seek/...) hold the state lock's
// read side and the registry mutex only to look the handle up, then do
// their I/O under that handle's own mutex alone.
type handleRegistry struct {
	mu      sync.Mutex // guards reads/writes maps alongside the Instance state lock
	nextID  HandleID
	reads   map[HandleID]*FileHandle
	writes  map[HandleID]*FileHandle
}

func newHandleRegistry() *handleRegistry {
	return &handleRegistry{
		nextID: 1,
		reads:  make(map[HandleID]*FileHandle),
		writes: make(map[HandleID]*FileHandle),
	}
}

func (r *handleRegistry) linkRead(fh *FileHandle) HandleID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.reads[id] = fh
	fh.owner.openCount++
	return id
}

func (r *handleRegistry) linkWrite(fh *FileHandle) HandleID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.writes[id] = fh
	fh.owner.openCount++
	return id
}

func (r *handleRegistry) get(id HandleID) (*FileHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fh, ok := r.reads[id]; ok {
		return fh, true
	}
	if fh, ok := r.writes[id]; ok {
		return fh, true
	}
	return nil, false
}

// unlink removes id from whichever list holds it; it does not close the
// underlying stream, that's the caller's (close operation's) job once it
// has decided the flush succeeded.
func (r *handleRegistry) unlink(id HandleID) (*FileHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fh, ok := r.reads[id]; ok {
		delete(r.reads, id)
		fh.owner.openCount--
		return fh, true
	}
	if fh, ok := r.writes[id]; ok {
		delete(r.writes, id)
		fh.owner.openCount--
		return fh, true
	}
	return nil, false
}

// relink restores fh under id after a failed close attempt (§4.7 close
// recovery): the handle is put back in the same list it was unlinked
// from, as if unlink had never run.
func (r *handleRegistry) relink(id HandleID, fh *FileHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fh.forReading {
		r.reads[id] = fh
	} else {
		r.writes[id] = fh
	}
	fh.owner.openCount++
}

// countForMount returns how many open handles (read + write) still
// reference owner, used by unmount's files-still-open check.
func (r *handleRegistry) countForMount(owner *DirHandle) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return owner.openCount
}

// --- Buffered I/O (§4.7) ---

// read implements the buffered-read loop: drain the buffer, then refill
// from the underlying stream, repeating until the caller's slice is
// full, the stream is exhausted, or a read error occurs before any bytes
// were copied.
func (fh *FileHandle) read(p []byte) (int, error) {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	if fh.buf == nil {
		return fh.stream.Read(p)
	}

	total := 0
	for total < len(p) {
		if fh.bufPos < fh.bufFill {
			n := copy(p[total:], fh.buf[fh.bufPos:fh.bufFill])
			fh.bufPos += n
			total += n
			continue
		}

		n, err := fh.stream.Read(fh.buf[:fh.bufSize])
		fh.bufFill = n
		fh.bufPos = 0
		if n == 0 {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
		if err != nil && err != io.EOF {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
	}
	return total, nil
}

// write implements the buffered-write rule: if the new bytes fit in the
// remaining buffer, append and return; otherwise flush, then write the
// new payload directly (the overflow itself is never buffered).
func (fh *FileHandle) write(p []byte) (int, error) {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	if fh.buf == nil {
		return fh.stream.Write(p)
	}

	if fh.bufFill+len(p) <= fh.bufSize {
		copy(fh.buf[fh.bufFill:], p)
		fh.bufFill += len(p)
		return len(p), nil
	}

	if err := fh.flushLocked(); err != nil {
		return 0, err
	}
	return fh.stream.Write(p)
}

func (fh *FileHandle) flushLocked() error {
	if fh.forReading || fh.buf == nil || fh.bufFill == 0 {
		return nil
	}
	n, err := fh.stream.Write(fh.buf[:fh.bufFill])
	if err != nil {
		// leave the buffer intact so the caller can retry.
		if n > 0 {
			copy(fh.buf, fh.buf[n:fh.bufFill])
			fh.bufFill -= n
		}
		return err
	}
	fh.bufFill = 0
	return nil
}

// flush is the public Flush: no-op for reads and empty write buffers,
// otherwise writes the buffered tail out.
func (fh *FileHandle) flush() error {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if err := fh.flushLocked(); err != nil {
		return err
	}
	return fh.stream.Flush()
}

// seek implements §4.7's seek rule: writes always flush first; reads
// with a buffer try to stay within the buffered window before falling
// back to repositioning the underlying stream.
func (fh *FileHandle) seek(pos int64) error {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	if !fh.forReading {
		if err := fh.flushLocked(); err != nil {
			return err
		}
		_, err := fh.stream.Seek(pos, io.SeekStart)
		return err
	}

	if fh.buf == nil {
		_, err := fh.stream.Seek(pos, io.SeekStart)
		return err
	}

	cur, err := fh.tellLocked()
	if err != nil {
		return err
	}
	offset := pos - cur
	newBufPos := int64(fh.bufPos) + offset
	if newBufPos >= 0 && newBufPos <= int64(fh.bufFill) {
		fh.bufPos = int(newBufPos)
		return nil
	}

	fh.bufPos, fh.bufFill = 0, 0
	_, err = fh.stream.Seek(pos, io.SeekStart)
	return err
}

func (fh *FileHandle) tellLocked() (int64, error) {
	if fh.forReading {
		under, err := fh.stream.Tell()
		if err != nil {
			return 0, err
		}
		return under - int64(fh.bufFill) + int64(fh.bufPos), nil
	}
	under, err := fh.stream.Tell()
	if err != nil {
		return 0, err
	}
	return under + int64(fh.bufFill), nil
}

func (fh *FileHandle) tell() (int64, error) {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	return fh.tellLocked()
}

func (fh *FileHandle) length() (int64, error) {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	return fh.stream.Length()
}

func (fh *FileHandle) eof() (bool, error) {
	pos, err := fh.tell()
	if err != nil {
		return false, err
	}
	length, err := fh.length()
	if err != nil {
		return false, err
	}
	return pos >= length, nil
}

// setBuffer implements §4.7's setBuffer: flush first; for reads with
// buffered data, rewind the underlying stream to the logical position
// before discarding the old buffer so no bytes are lost or repeated.
func (fh *FileHandle) setBuffer(size int) error {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	if err := fh.flushLocked(); err != nil {
		return err
	}

	if fh.forReading && fh.bufFill > fh.bufPos {
		logicalPos, err := fh.tellLocked()
		if err != nil {
			return err
		}
		if _, err := fh.stream.Seek(logicalPos, io.SeekStart); err != nil {
			return err
		}
	}

	if size <= 0 {
		fh.buf, fh.bufSize, fh.bufFill, fh.bufPos = nil, 0, 0, 0
		return nil
	}
	fh.buf = make([]byte, size)
	fh.bufSize = size
	fh.bufFill = 0
	fh.bufPos = 0
	return nil
}

// closeStream flushes (if writable) and releases the underlying stream.
// Called only once the caller has been unlinked from the registry.
func (fh *FileHandle) closeStream() error {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if !fh.forReading {
		if err := fh.flushLocked(); err != nil {
			return err
		}
		if err := fh.stream.Flush(); err != nil {
			return err
		}
	}
	return fh.stream.Close()
}
