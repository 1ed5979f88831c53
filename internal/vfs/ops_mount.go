package vfs

import (
	"context"

	"govfs/internal/util"
)

// Mount adds newDir (a real directory or archive file on the native
// filesystem) to the search path at mountPoint, appended or prepended
// per appendToPath (§4.2). Mounting a dirName that is already mounted
// is a silent success: the search path is left unchanged.
func Mount(dv int, newDir, mountPoint string, appendToPath bool) error {
	return mountCommon(dv, newDir, nil, mountPoint, appendToPath)
}

// MountIo is Mount's variant for an already-open Stream (an archive
// whose bytes don't come from a native path at all, e.g. one fetched
// over the network into memory first).
func MountIo(dv int, io Stream, fakeName, mountPoint string, appendToPath bool) error {
	return mountCommon(dv, fakeName, io, mountPoint, appendToPath)
}

func mountCommon(dv int, dirName string, io Stream, mountPoint string, appendToPath bool) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}

	mp, err := normalizeMountPoint(mountPoint)
	if err != nil {
		return inst.errs.fail(Code(err))
	}

	inst.stateMu.Lock()
	defer inst.stateMu.Unlock()

	for _, m := range inst.mounts {
		if m.dirName == dirName {
			// already mounted: re-mounting the same dir-name is a silent
			// success, not an additive operation.
			return nil
		}
	}

	var archiver Archiver
	var state any
	oerr := util.Retry(context.Background(), func() error {
		a, s, err := openDirectory(dirName, io, false)
		if err != nil {
			return err
		}
		archiver, state = a, s
		return nil
	}, util.TransientIORetryOptions(context.Background())...)
	if oerr != nil {
		return inst.errs.fail(Code(oerr))
	}

	h := &DirHandle{archiver: archiver, state: state, dirName: dirName, mountPt: mp}
	if appendToPath {
		inst.mounts = append(inst.mounts, h)
	} else {
		inst.mounts = append([]*DirHandle{h}, inst.mounts...)
	}
	return nil
}

// MountHandle mounts a caller-constructed Archiver directly, bypassing
// openDirectory's opener resolution entirely. Used by callers that have
// already decided exactly which back-end applies (e.g. a daemon handing
// off an already-opened archive across a connection).
func MountHandle(dv int, archiver Archiver, state any, dirName, mountPoint string, appendToPath bool) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}
	mp, err := normalizeMountPoint(mountPoint)
	if err != nil {
		return inst.errs.fail(Code(err))
	}

	inst.stateMu.Lock()
	defer inst.stateMu.Unlock()

	for _, m := range inst.mounts {
		if m.dirName == dirName {
			// already mounted: re-mounting the same dir-name is a silent
			// success, not an additive operation.
			return nil
		}
	}

	h := &DirHandle{archiver: archiver, state: state, dirName: dirName, mountPt: mp}
	if appendToPath {
		inst.mounts = append(inst.mounts, h)
	} else {
		inst.mounts = append([]*DirHandle{h}, inst.mounts...)
	}
	return nil
}

// Unmount removes the mount identified by dirName from the search path.
// It fails with ErrFilesStillOpen if any handle opened through it is
// still live, and ErrNotMounted if dirName isn't currently mounted.
func Unmount(dv int, dirName string) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}

	inst.stateMu.Lock()
	defer inst.stateMu.Unlock()

	idx := -1
	for i, m := range inst.mounts {
		if m.dirName == dirName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return inst.errs.fail(ErrNotMounted)
	}

	h := inst.mounts[idx]
	if inst.handles.countForMount(h) > 0 {
		return inst.errs.fail(ErrFilesStillOpen)
	}

	if err := h.archiver.CloseArchive(h.state); err != nil {
		return inst.errs.fail(ErrIO)
	}

	inst.mounts = append(inst.mounts[:idx], inst.mounts[idx+1:]...)
	if inst.writeMu == h {
		inst.writeMu = nil
	}
	return nil
}

// GetSearchPath returns the external identifiers of every mounted
// archive, in search order (index 0 is searched first).
func GetSearchPath(dv int) ([]string, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return nil, err
	}
	inst.stateMu.RLock()
	defer inst.stateMu.RUnlock()
	out := make([]string, len(inst.mounts))
	for i, m := range inst.mounts {
		out[i] = m.dirName
	}
	return out, nil
}

// GetMountPoint returns the virtual mount point ("/" for the root) that
// dirName was mounted at.
func GetMountPoint(dv int, dirName string) (string, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return "", err
	}
	inst.stateMu.RLock()
	defer inst.stateMu.RUnlock()
	for _, m := range inst.mounts {
		if m.dirName == dirName {
			if m.mountPt == "" {
				return "/", nil
			}
			return "/" + m.mountPt, nil
		}
	}
	return "", inst.errs.fail(ErrNotMounted)
}

// GetRealDir returns the external identifier of the mount that would
// answer fname (the first match in search order), or "" if fname
// resolves nowhere.
func GetRealDir(dv int, fname string) (string, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return "", err
	}
	clean, serr := sanitizePath(fname)
	if serr != nil {
		return "", inst.errs.fail(Code(serr))
	}

	inst.stateMu.RLock()
	defer inst.stateMu.RUnlock()
	for _, m := range inst.mounts {
		suffix, ok := underMount(m, clean)
		if !ok {
			continue
		}
		if _, serr := m.archiver.Stat(m.state, suffix); serr == nil {
			return m.dirName, nil
		}
	}
	return "", nil
}

// resolve finds the first mount (in search order) that actually has
// fname, returning the mount and the archive-relative suffix. Shared by
// every namespace/file operation.
func resolve(inst *Instance, fname string) (*DirHandle, string, Stat, error) {
	for _, m := range inst.mounts {
		suffix, ok := underMount(m, fname)
		if !ok {
			continue
		}
		st, err := m.archiver.Stat(m.state, suffix)
		if err == nil {
			return m, suffix, st, nil
		}
		if Code(err) != ErrNotFound {
			return nil, "", Stat{}, err
		}
	}
	return nil, "", Stat{}, newErr(ErrNotFound)
}

// isVirtualDir reports whether fname (already sanitized) names a
// synthesized interior mount-point directory rather than a real entry
// in any single archive (§4.2, §4.6) — e.g. "a" when something is
// mounted at "a/b".
func isVirtualDir(inst *Instance, fname string) bool {
	for _, m := range inst.mounts {
		if isInteriorOf(fname, m.mountPt) {
			return true
		}
	}
	return false
}
