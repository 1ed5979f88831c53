package vfs

import "govfs/internal/common"

// Exists reports whether fname resolves to anything in the search path,
// including synthesized interior mount-point directories.
func Exists(dv int, fname string) (bool, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return false, err
	}
	clean, serr := sanitizePath(fname)
	if serr != nil {
		return false, inst.errs.fail(Code(serr))
	}

	inst.stateMu.RLock()
	defer inst.stateMu.RUnlock()

	if clean == "" || isVirtualDir(inst, clean) {
		return true, nil
	}
	_, _, _, rerr := resolve(inst, clean)
	return rerr == nil, nil
}

// StatPath reports the attributes of fname, as seen through the search
// path (§4.6): the first mount (in search order) that has the entry
// wins, except a synthesized interior mount-point directory always
// reports as a directory regardless of what any individual archive
// contains at that path.
func StatPath(dv int, fname string) (Stat, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return Stat{}, err
	}
	clean, serr := sanitizePath(fname)
	if serr != nil {
		return Stat{}, inst.errs.fail(Code(serr))
	}

	inst.stateMu.RLock()
	defer inst.stateMu.RUnlock()

	if clean == "" {
		return Stat{Type: FileDirectory}, nil
	}
	if isVirtualDir(inst, clean) {
		return Stat{Type: FileDirectory}, nil
	}

	_, _, st, rerr := resolve(inst, clean)
	if rerr != nil {
		return Stat{}, inst.errs.fail(Code(rerr))
	}
	return st, nil
}

// IsDirectory reports whether fname is a directory (real or
// synthesized).
func IsDirectory(dv int, fname string) (bool, error) {
	st, err := StatPath(dv, fname)
	if err != nil {
		return false, err
	}
	return st.Type == FileDirectory, nil
}

// IsSymbolicLink reports whether fname, without following it, is a
// symbolic link.
func IsSymbolicLink(dv int, fname string) (bool, error) {
	st, err := StatPath(dv, fname)
	if err != nil {
		return false, err
	}
	return st.Type == FileSymlink, nil
}

// EnumerateCallback is the shape of the caller-supplied function passed
// to Enumerate: invoked once per immediate child of the directory being
// enumerated, with origDir the directory as originally passed to
// Enumerate and data the opaque value threaded through from the call.
// Returning EnumerateOK continues; EnumerateStop halts enumeration and
// reports success; EnumerateError halts enumeration and reports
// ErrAppCallback to the original caller.
type EnumerateCallback func(data any, origDir, childName string) EnumerateResult

// Enumerate walks the immediate children of dir, merging every mount
// that contributes entries there (real archive children plus any
// synthesized interior mount-point segments), de-duplicated and in no
// particular order, invoking cb once per distinct child (§4.6).
func Enumerate(dv int, dir string, cb EnumerateCallback, data any) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}
	clean, serr := sanitizePath(dir)
	if serr != nil {
		return inst.errs.fail(Code(serr))
	}

	inst.stateMu.RLock()
	defer inst.stateMu.RUnlock()

	seen := make(map[string]bool)
	halted := false
	appErr := false
	emit := func(name string) EnumerateResult {
		if name == "" || seen[name] {
			return EnumerateOK
		}
		seen[name] = true
		switch cb(data, dir, name) {
		case EnumerateStop:
			halted = true
			return EnumerateStop
		case EnumerateError:
			halted = true
			appErr = true
			return EnumerateError
		default:
			return EnumerateOK
		}
	}

	foundOne := false
	for _, m := range inst.mounts {
		if halted {
			break
		}
		suffix, ok := underMount(m, clean)
		if ok {
			res := m.archiver.Enumerate(m.state, suffix, emit)
			if res != EnumerateError {
				foundOne = true
			}
			if res == EnumerateStop || appErr {
				halted = true
			}
		}
		if !halted && isInteriorOf(clean, m.mountPt) {
			if emit(nextMountSegment(clean, m.mountPt)) != EnumerateOK {
				halted = true
			}
			foundOne = true
		}
	}
	if appErr {
		return inst.errs.fail(ErrAppCallback)
	}
	if !foundOne && clean != "" {
		return inst.errs.fail(ErrNotFound)
	}
	return nil
}

// EnumerateFiles is enumerate's eager, fully-materialized convenience
// form (§4.6): it builds a plain slice atop the callback-driven
// Enumerate rather than requiring every caller to write a collecting
// callback.
func EnumerateFiles(dv int, dir string) ([]string, error) {
	var out []string
	err := Enumerate(dv, dir, func(data any, origDir, childName string) EnumerateResult {
		out = append(out, childName)
		return EnumerateOK
	}, nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Mkdir creates dir (and any missing ancestor directories) in the
// instance's write directory.
func Mkdir(dv int, dir string) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}
	clean, serr := sanitizePath(dir)
	if serr != nil {
		return inst.errs.fail(Code(serr))
	}
	if clean == "" {
		return inst.errs.fail(ErrInvalidArgument)
	}

	inst.stateMu.Lock()
	defer inst.stateMu.Unlock()

	if inst.writeMu == nil {
		return inst.errs.fail(ErrNoWriteDir)
	}
	m := inst.writeMu

	if err := verifyPath(m, clean, inst.allowSymlinks, true); err != nil {
		return inst.errs.fail(Code(err))
	}
	if err := m.archiver.Mkdir(m.state, clean); err != nil {
		return inst.errs.fail(Code(err))
	}
	return nil
}

// Delete removes fname from the instance's write directory. The entry
// must exist there; deleting something that only exists on a different,
// lower-priority mount is not possible (the original library has the
// same restriction: delete only ever targets the write directory).
func Delete(dv int, fname string) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}
	clean, serr := sanitizePath(fname)
	if serr != nil {
		return inst.errs.fail(Code(serr))
	}

	inst.stateMu.Lock()
	defer inst.stateMu.Unlock()

	if inst.writeMu == nil {
		return inst.errs.fail(ErrNoWriteDir)
	}
	m := inst.writeMu

	if err := verifyPath(m, common.ParentPath(clean), inst.allowSymlinks, false); err != nil {
		return inst.errs.fail(Code(err))
	}
	if err := m.archiver.Remove(m.state, clean); err != nil {
		return inst.errs.fail(Code(err))
	}
	return nil
}
