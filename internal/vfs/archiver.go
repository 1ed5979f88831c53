package vfs

import (
	"sync/atomic"
	"time"
)

// EnumerateResult is returned by an Archiver's Enumerate callback to
// control iteration, and by Enumerate itself to report how it ended.
type EnumerateResult int

const (
	EnumerateOK EnumerateResult = iota
	EnumerateStop
	EnumerateError
)

// FileType classifies a Stat result.
type FileType int

const (
	FileRegular FileType = iota
	FileDirectory
	FileSymlink
)

// Stat is the attribute record returned by Archiver.Stat and the public
// Stat operation. Time fields are left as the zero time.Time when the
// back-end cannot report them.
type Stat struct {
	Size     int64
	ModTime  time.Time
	CTime    time.Time
	ATime    time.Time
	Type     FileType
	ReadOnly bool
}

// HasModTime, HasCTime, HasATime report whether the corresponding time
// field was actually populated by the back-end.
func (s Stat) HasModTime() bool { return !s.ModTime.IsZero() }
func (s Stat) HasCTime() bool   { return !s.CTime.IsZero() }
func (s Stat) HasATime() bool   { return !s.ATime.IsZero() }

// Archiver is the contract every archive back-end must honor (component
// G / spec §4.5). All operations take the archive's own opaque state
// (whatever OpenArchive returned) as their first argument.
type Archiver interface {
	// Name identifies the back-end for diagnostics (e.g. "dir", "zip").
	Name() string

	// SupportsSymlinks reports whether this format can represent
	// symbolic links at all; if false, the symlink verifier (§4.3)
	// skips its per-segment stat scan entirely.
	SupportsSymlinks() bool

	// OpenArchive inspects io (nil for the DIR back-end, which instead
	// inspects name directly) to decide whether it recognizes the
	// content. Returns (state, claimed=true, nil) on success, (nil,
	// false, nil) if the format is unrecognized, or (nil, true, err) if
	// the back-end recognizes the format but the archive is broken.
	OpenArchive(io Stream, name string, forWriting bool) (state any, claimed bool, err error)

	Enumerate(state any, path string, cb func(child string) EnumerateResult) EnumerateResult

	OpenRead(state any, path string) (Stream, error)
	OpenWrite(state any, path string) (Stream, error)
	OpenAppend(state any, path string) (Stream, error)

	Remove(state any, path string) error
	Mkdir(state any, path string) error
	Stat(state any, path string) (Stat, error)

	CloseArchive(state any) error
}

// archiverRegistry holds every Archiver available to openDirectory's
// opener-resolution fallback chain (§4.4), plus the atomic count the
// spec calls out as the one piece of instance-independent shared state
// (every other field lives behind an Instance's state lock).
var (
	registeredArchivers []Archiver
	archiverCount       atomic.Int32
)

// RegisterArchiver adds back-end to the set every Instance's mount/mountIo
// opener-resolution considers, in registration order. Intended to be
// called from an archiver package's init(), or explicitly by a host
// program wiring in a third-party format.
func RegisterArchiver(a Archiver) {
	registeredArchivers = append(registeredArchivers, a)
	archiverCount.Add(1)
}

// RegisteredArchiverCount reports how many back-ends are registered.
func RegisteredArchiverCount() int {
	return int(archiverCount.Load())
}
