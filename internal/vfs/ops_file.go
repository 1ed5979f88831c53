package vfs

import "io"

// OpenRead opens fname for reading, searching the mount table in order
// (§4.6, §4.8).
func OpenRead(dv int, fname string) (HandleID, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return 0, err
	}
	clean, serr := sanitizePath(fname)
	if serr != nil {
		return 0, inst.errs.fail(Code(serr))
	}

	inst.stateMu.Lock()
	defer inst.stateMu.Unlock()

	m, suffix, st, rerr := resolve(inst, clean)
	if rerr != nil {
		return 0, inst.errs.fail(Code(rerr))
	}
	if st.Type == FileDirectory {
		return 0, inst.errs.fail(ErrNotAFile)
	}
	if err := verifyPath(m, suffix, inst.allowSymlinks, false); err != nil {
		return 0, inst.errs.fail(Code(err))
	}

	stream, oerr := m.archiver.OpenRead(m.state, suffix)
	if oerr != nil {
		return 0, inst.errs.fail(Code(oerr))
	}

	fh := &FileHandle{stream: stream, forReading: true, owner: m}
	id := inst.handles.linkRead(fh)
	return id, nil
}

// OpenWrite opens fname for writing in the instance's write directory,
// creating or truncating it. Reports ErrNoWriteDir if none is set.
func OpenWrite(dv int, fname string) (HandleID, error) {
	return openForWriting(dv, fname, false)
}

// OpenAppend is OpenWrite's append-mode sibling: existing content is
// preserved and the stream starts positioned at its end.
func OpenAppend(dv int, fname string) (HandleID, error) {
	return openForWriting(dv, fname, true)
}

func openForWriting(dv int, fname string, appendMode bool) (HandleID, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return 0, err
	}
	clean, serr := sanitizePath(fname)
	if serr != nil {
		return 0, inst.errs.fail(Code(serr))
	}

	inst.stateMu.Lock()
	defer inst.stateMu.Unlock()

	if inst.writeMu == nil {
		return 0, inst.errs.fail(ErrNoWriteDir)
	}
	m := inst.writeMu

	if err := verifyPath(m, clean, inst.allowSymlinks, true); err != nil {
		return 0, inst.errs.fail(Code(err))
	}

	var stream Stream
	var oerr error
	if appendMode {
		stream, oerr = m.archiver.OpenAppend(m.state, clean)
	} else {
		stream, oerr = m.archiver.OpenWrite(m.state, clean)
	}
	if oerr != nil {
		return 0, inst.errs.fail(Code(oerr))
	}

	fh := &FileHandle{stream: stream, forReading: false, owner: m}
	id := inst.handles.linkWrite(fh)
	return id, nil
}

func getHandle(inst *Instance, id HandleID) (*FileHandle, error) {
	fh, ok := inst.handles.get(id)
	if !ok {
		return nil, inst.errs.fail(ErrInvalidArgument)
	}
	return fh, nil
}

// Close flushes (if writable) and releases handle id. A failure aborts
// the close: the handle is restored to the registry exactly as if
// Close had never been called, so the caller may retry and unmount's
// files-still-open check still sees it. Only once Close returns nil is
// id no longer valid.
func Close(dv int, id HandleID) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}

	inst.stateMu.Lock()
	fh, ok := inst.handles.unlink(id)
	inst.stateMu.Unlock()
	if !ok {
		return inst.errs.fail(ErrInvalidArgument)
	}

	if cerr := fh.closeStream(); cerr != nil {
		inst.stateMu.Lock()
		inst.handles.relink(id, fh)
		inst.stateMu.Unlock()
		return inst.errs.fail(ErrIO)
	}
	return nil
}

// Read fills p from handle id, returning the number of bytes actually
// read. A short read with a nil error can mean the end of the file was
// reached; a Read at the end returns 0 together with the stream's
// end-of-file error (io.EOF for the bundled streams).
func Read(dv int, id HandleID, p []byte) (int, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return 0, err
	}
	inst.stateMu.RLock()
	fh, herr := getHandle(inst, id)
	inst.stateMu.RUnlock()
	if herr != nil {
		return 0, herr
	}
	if !fh.forReading {
		return 0, inst.errs.fail(ErrOpenForWriting)
	}
	n, rerr := fh.read(p)
	if rerr != nil && rerr != io.EOF {
		inst.errs.set(ErrIO)
	}
	return n, rerr
}

// Write appends p to handle id's current position.
func Write(dv int, id HandleID, p []byte) (int, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return 0, err
	}
	inst.stateMu.RLock()
	fh, herr := getHandle(inst, id)
	inst.stateMu.RUnlock()
	if herr != nil {
		return 0, herr
	}
	if fh.forReading {
		return 0, inst.errs.fail(ErrOpenForReading)
	}
	n, werr := fh.write(p)
	if werr != nil {
		return n, inst.errs.fail(ErrIO)
	}
	return n, nil
}

// Seek repositions handle id to absolute offset pos.
func Seek(dv int, id HandleID, pos int64) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}
	inst.stateMu.RLock()
	fh, herr := getHandle(inst, id)
	inst.stateMu.RUnlock()
	if herr != nil {
		return herr
	}
	if pos < 0 {
		return inst.errs.fail(ErrInvalidArgument)
	}
	if err := fh.seek(pos); err != nil {
		return inst.errs.fail(ErrIO)
	}
	return nil
}

// Tell reports handle id's current logical position.
func Tell(dv int, id HandleID) (int64, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return 0, err
	}
	inst.stateMu.RLock()
	fh, herr := getHandle(inst, id)
	inst.stateMu.RUnlock()
	if herr != nil {
		return 0, herr
	}
	pos, terr := fh.tell()
	if terr != nil {
		return 0, inst.errs.fail(ErrIO)
	}
	return pos, nil
}

// FileLength reports handle id's total size.
func FileLength(dv int, id HandleID) (int64, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return 0, err
	}
	inst.stateMu.RLock()
	fh, herr := getHandle(inst, id)
	inst.stateMu.RUnlock()
	if herr != nil {
		return 0, herr
	}
	n, lerr := fh.length()
	if lerr != nil {
		return 0, inst.errs.fail(ErrIO)
	}
	return n, nil
}

// Eof reports whether handle id's position has reached its length.
func Eof(dv int, id HandleID) (bool, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return false, err
	}
	inst.stateMu.RLock()
	fh, herr := getHandle(inst, id)
	inst.stateMu.RUnlock()
	if herr != nil {
		return false, herr
	}
	eof, eerr := fh.eof()
	if eerr != nil {
		return false, inst.errs.fail(ErrIO)
	}
	return eof, nil
}

// SetBuffer resizes (or, with size 0, disables) handle id's I/O buffer.
func SetBuffer(dv int, id HandleID, size int) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}
	inst.stateMu.RLock()
	fh, herr := getHandle(inst, id)
	inst.stateMu.RUnlock()
	if herr != nil {
		return herr
	}
	if err := fh.setBuffer(size); err != nil {
		return inst.errs.fail(ErrIO)
	}
	return nil
}

// Flush writes out any buffered data on handle id without closing it.
func Flush(dv int, id HandleID) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}
	inst.stateMu.RLock()
	fh, herr := getHandle(inst, id)
	inst.stateMu.RUnlock()
	if herr != nil {
		return herr
	}
	if err := fh.flush(); err != nil {
		return inst.errs.fail(ErrIO)
	}
	return nil
}
