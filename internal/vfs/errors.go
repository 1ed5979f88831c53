// Copyright 2024 LatentFS Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vfs implements the mount-ordered virtual file system: the
// search path, the archiver dispatch contract, the built-in directory
// back-end, and the open-handle registry described by the project spec.
package vfs

import "syscall"

// ErrorCode is one of the stable, enumerated failure reasons a public
// operation can report. The code is the contract; string text is not.
type ErrorCode int

const (
	ErrOK ErrorCode = iota
	ErrOther
	ErrOutOfMemory
	ErrNotInitialized
	ErrIsInitialized
	ErrArgv0IsNull
	ErrUnsupported
	ErrPastEOF
	ErrFilesStillOpen
	ErrInvalidArgument
	ErrNotMounted
	ErrNotFound
	ErrSymlinkForbidden
	ErrNoWriteDir
	ErrOpenForReading
	ErrOpenForWriting
	ErrNotAFile
	ErrReadOnly
	ErrCorrupt
	ErrSymlinkLoop
	ErrIO
	ErrPermission
	ErrNoSpace
	ErrBadFilename
	ErrBusy
	ErrDirNotEmpty
	ErrOSError
	ErrDuplicate
	ErrBadPassword
	ErrAppCallback
)

var errorText = map[ErrorCode]string{
	ErrOK:               "no error",
	ErrOther:            "other unspecified error",
	ErrOutOfMemory:      "out of memory",
	ErrNotInitialized:   "library not initialized",
	ErrIsInitialized:    "library already initialized",
	ErrArgv0IsNull:      "argv0 is null",
	ErrUnsupported:      "operation unsupported",
	ErrPastEOF:          "past end of file",
	ErrFilesStillOpen:   "files still open on mount",
	ErrInvalidArgument:  "invalid argument",
	ErrNotMounted:       "not mounted",
	ErrNotFound:         "not found",
	ErrSymlinkForbidden: "symbolic links forbidden",
	ErrNoWriteDir:       "no write directory set",
	ErrOpenForReading:   "file open for reading",
	ErrOpenForWriting:   "file open for writing",
	ErrNotAFile:         "not a file",
	ErrReadOnly:         "read-only archive",
	ErrCorrupt:          "corrupt archive",
	ErrSymlinkLoop:      "symbolic link loop",
	ErrIO:               "I/O error",
	ErrPermission:       "permission denied",
	ErrNoSpace:          "no space left on device",
	ErrBadFilename:      "illegal filename",
	ErrBusy:             "resource busy",
	ErrDirNotEmpty:      "directory not empty",
	ErrOSError:          "operating system error",
	ErrDuplicate:        "duplicate resource",
	ErrBadPassword:      "incorrect password",
	ErrAppCallback:      "application callback error",
}

// GetErrorByCode returns the stable, human-readable English string for a
// code. The code, not this string, is the stable part of the contract.
func GetErrorByCode(code ErrorCode) string {
	if s, ok := errorText[code]; ok {
		return s
	}
	return errorText[ErrOther]
}

// ToErrno maps an ErrorCode onto the nearest POSIX errno, the way the
// teacher's own vfs/errors.go maps its error kinds onto syscall values.
// Used by the FUSE projection and anywhere a caller wants a conventional
// Unix error instead of the library's own enum.
func (c ErrorCode) ToErrno() syscall.Errno {
	switch c {
	case ErrOK:
		return 0
	case ErrOutOfMemory:
		return syscall.ENOMEM
	case ErrUnsupported:
		return syscall.ENOTSUP
	case ErrNotFound, ErrNotMounted:
		return syscall.ENOENT
	case ErrSymlinkForbidden, ErrPermission:
		return syscall.EACCES
	case ErrOpenForReading, ErrOpenForWriting, ErrBusy, ErrFilesStillOpen:
		return syscall.EBUSY
	case ErrNotAFile:
		return syscall.EISDIR
	case ErrReadOnly, ErrNoWriteDir:
		return syscall.EROFS
	case ErrSymlinkLoop:
		return syscall.ELOOP
	case ErrIO, ErrCorrupt:
		return syscall.EIO
	case ErrNoSpace:
		return syscall.ENOSPC
	case ErrBadFilename, ErrInvalidArgument:
		return syscall.EINVAL
	case ErrDirNotEmpty:
		return syscall.ENOTEMPTY
	case ErrDuplicate:
		return syscall.EEXIST
	default:
		return syscall.EIO
	}
}

// vfsError is the concrete error type returned by public operations; it
// carries an ErrorCode, which callers read back with Code(err), while
// fmt/%v prints the code's text.
type vfsError struct {
	code ErrorCode
}

func (e *vfsError) Error() string { return GetErrorByCode(e.code) }

// Code extracts the ErrorCode from an error produced by this package, or
// ErrOther if err was not produced here.
func Code(err error) ErrorCode {
	if err == nil {
		return ErrOK
	}
	if ve, ok := err.(*vfsError); ok {
		return ve.code
	}
	return ErrOther
}

// newErr builds the sentinel error for a code; every public operation
// that fails constructs its return error this way.
func newErr(code ErrorCode) error {
	return &vfsError{code: code}
}

// NewError builds the package's sentinel error for code, for use by
// third-party Archiver implementations outside this package that need
// to report one of the enumerated failure reasons.
func NewError(code ErrorCode) error { return newErr(code) }
