package vfs

import (
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"govfs/internal/platform"
)

// NumDrives bounds the small, fixed set of independent instances the
// library supports (§2 "Instance multiplicity"). Every public operation
// takes an instance index in [0, NumDrives).
const NumDrives = 8

// Instance is one independent VFS universe ("drive"): its own mount
// table, handle lists, write directory, allowed-symlinks flag, and error
// registry. All fields below are guarded by stateMu unless noted.
type Instance struct {
	id   uuid.UUID // log-correlation only; never part of equality/hash
	errs *errorRegistry

	stateMu sync.RWMutex
	mounts  []*DirHandle // search path, index 0 searched first
	writeMu *DirHandle

	handles *handleRegistry

	baseDir string
	userDir string
	prefDir string

	allowSymlinks bool
	initialized   bool

	writeLock *flock.Flock // advisory lock on the write directory, if any
}

var (
	instancesMu sync.Mutex
	instances   = make(map[int]*Instance)
)

// Init brings up instance dv (§6 lifecycle: init). Calling Init twice on
// the same dv without an intervening Deinit reports ErrIsInitialized.
func Init(dv int) error {
	instancesMu.Lock()
	defer instancesMu.Unlock()

	if dv < 0 || dv >= NumDrives {
		return newErr(ErrInvalidArgument)
	}
	if _, ok := instances[dv]; ok {
		return newErr(ErrIsInitialized)
	}

	inst := &Instance{
		id:      uuid.New(),
		errs:    newErrorRegistry(),
		handles: newHandleRegistry(),
	}
	if base, err := platform.CalcBaseDir(); err == nil {
		inst.baseDir = base
	}
	if user, err := platform.CalcUserDir(); err == nil {
		inst.userDir = user
	}
	inst.initialized = true
	instances[dv] = inst
	return nil
}

// Deinit tears down instance dv: every open handle is closed (writes
// flushed best-effort), every mount is unmounted, and the write lock (if
// held) is released.
func Deinit(dv int) error {
	instancesMu.Lock()
	defer instancesMu.Unlock()

	inst, ok := instances[dv]
	if !ok {
		return newErr(ErrNotInitialized)
	}

	inst.stateMu.Lock()
	for _, fh := range inst.handles.writes {
		_ = fh.closeStream()
	}
	for _, fh := range inst.handles.reads {
		_ = fh.closeStream()
	}
	inst.handles = newHandleRegistry()

	for _, m := range inst.mounts {
		_ = m.archiver.CloseArchive(m.state)
	}
	inst.mounts = nil
	inst.writeMu = nil
	inst.stateMu.Unlock()

	if inst.writeLock != nil {
		_ = inst.writeLock.Unlock()
	}

	delete(instances, dv)
	return nil
}

// IsInit reports whether dv is currently initialized.
func IsInit(dv int) bool {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	_, ok := instances[dv]
	return ok
}

func getInstance(dv int) (*Instance, error) {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	inst, ok := instances[dv]
	if !ok {
		return nil, newErr(ErrNotInitialized)
	}
	return inst, nil
}

// GetBaseDir returns the directory containing the host executable.
func GetBaseDir(dv int) (string, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return "", err
	}
	return inst.baseDir, nil
}

// GetUserDir returns the calling user's home directory.
func GetUserDir(dv int) (string, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return "", err
	}
	return inst.userDir, nil
}

// GetPrefDir computes (and caches) the preference directory for
// (org, app), creating it if necessary.
func GetPrefDir(dv int, org, app string) (string, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return "", err
	}
	dir, perr := platform.CalcPrefDir(org, app)
	if perr != nil {
		return "", inst.errs.fail(ErrIO)
	}
	inst.stateMu.Lock()
	inst.prefDir = dir
	inst.stateMu.Unlock()
	return dir, nil
}

// GetWriteDir returns the current write directory's external
// identifier, or "" if none is set.
func GetWriteDir(dv int) (string, error) {
	inst, err := getInstance(dv)
	if err != nil {
		return "", err
	}
	inst.stateMu.RLock()
	defer inst.stateMu.RUnlock()
	if inst.writeMu == nil {
		return "", nil
	}
	return inst.writeMu.dirName, nil
}

// SetWriteDir designates dir (a real directory) as the single target of
// all write/mkdir/delete operations, replacing any previous write
// directory. An empty dir clears it. The directory is advisory-locked
// via gofrs/flock for as long as it stays the write directory (the lock
// is released when it is replaced or cleared) to discourage two
// processes from treating the same directory as their write-mount at
// once — a safety net the single-process original didn't need, since it
// never shared a write directory across OS processes by design.
func SetWriteDir(dv int, dir string) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}

	inst.stateMu.Lock()
	defer inst.stateMu.Unlock()

	if inst.writeLock != nil {
		_ = inst.writeLock.Unlock()
		inst.writeLock = nil
	}
	if dir == "" {
		inst.writeMu = nil
		return nil
	}

	archiver, state, oerr := openDirectory(dir, nil, true)
	if oerr != nil {
		return inst.errs.fail(Code(oerr))
	}

	lock := flock.New(dir + "/.govfs.lock")
	_, _ = lock.TryLock() // advisory only; failure to acquire is not fatal

	inst.writeMu = &DirHandle{archiver: archiver, state: state, dirName: dir}
	inst.writeLock = lock
	return nil
}

// PermitSymbolicLinks toggles whether the symlink verifier (§4.3) is
// bypassed.
func PermitSymbolicLinks(dv int, allow bool) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}
	inst.stateMu.Lock()
	inst.allowSymlinks = allow
	inst.stateMu.Unlock()
	return nil
}

// SymbolicLinksPermitted reports the current setting.
func SymbolicLinksPermitted(dv int) bool {
	inst, err := getInstance(dv)
	if err != nil {
		return false
	}
	inst.stateMu.RLock()
	defer inst.stateMu.RUnlock()
	return inst.allowSymlinks
}

// GetLastErrorCode reads and clears the calling goroutine's last-error
// slot for instance dv.
func GetLastErrorCode(dv int) ErrorCode {
	inst, err := getInstance(dv)
	if err != nil {
		return ErrNotInitialized
	}
	return inst.errs.getAndClear()
}

// SetErrorCode explicitly sets the calling goroutine's last-error slot,
// for callers (e.g. a custom archiver) that want to surface a code
// without going through a public operation's own return path.
func SetErrorCode(dv int, code ErrorCode) {
	inst, err := getInstance(dv)
	if err != nil {
		return
	}
	inst.errs.set(code)
}
