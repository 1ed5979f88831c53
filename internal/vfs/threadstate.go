package vfs

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// errorRegistry is the per-instance error registry (component C): a
// thread/goroutine-identity-keyed table of "last error code", matching the
// original library's per-thread error list. Every public operation sets
// (or, per the errpass convention, leaves untouched) the calling
// goroutine's slot in addition to returning a normal Go error — the slot
// exists so GetLastErrorCode/SetErrorCode from the external interface
// behave exactly as specified, even though idiomatic Go code should just
// use the returned error.
type errorRegistry struct {
	mu    sync.Mutex
	codes map[uint64]ErrorCode
}

func newErrorRegistry() *errorRegistry {
	return &errorRegistry{codes: make(map[uint64]ErrorCode)}
}

// set stores code in the calling goroutine's slot.
func (r *errorRegistry) set(code ErrorCode) {
	id := goroutineID()
	r.mu.Lock()
	r.codes[id] = code
	r.mu.Unlock()
}

// getAndClear reads the calling goroutine's slot and resets it to ErrOK,
// per the "read-and-clear" contract of GetLastErrorCode.
func (r *errorRegistry) getAndClear() ErrorCode {
	id := goroutineID()
	r.mu.Lock()
	defer r.mu.Unlock()
	code := r.codes[id]
	delete(r.codes, id)
	return code
}

// fail sets the registry slot and returns the matching error in one
// call, for failure returns that report a new error code.
func (r *errorRegistry) fail(code ErrorCode) error {
	r.set(code)
	return newErr(code)
}

// goroutineID recovers a per-goroutine identity the only way the stdlib
// exposes one: parsing the "goroutine N [...]" header that runtime.Stack
// always writes first. This stands in for the platform layer's
// GetThreadID() (component A) — Go has no public, stable OS-thread
// identity for a goroutine, and the per-goroutine number is the closest
// analogue with the same lifetime properties the original relies on
// (stable for the life of the calling goroutine, used only as a map key).
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	line := buf[:n]
	const prefix = "goroutine "
	if !bytes.HasPrefix(line, []byte(prefix)) {
		return 0
	}
	line = line[len(prefix):]
	if sp := bytes.IndexByte(line, ' '); sp >= 0 {
		line = line[:sp]
	}
	id, err := strconv.ParseUint(string(line), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
