// Package platform implements the native-I/O porting layer the core
// engine consumes but does not own (component A of the spec): base,
// user, and preference directory discovery, and the directory
// separator. Native file I/O itself is delegated straight to
// github.com/go-git/go-billy/v5's osfs implementation by the vfs
// package's DIR back-end; this package only covers the handful of
// directory-discovery helpers that sit above any one Filesystem.
package platform

import (
	"os"
	"path/filepath"
)

// DirSeparator is the platform's native path separator, exposed for
// back-ends that must translate '/' in a virtual path to the host
// convention. The built-in DIR archiver does not use it; osfs does that
// translation.
const DirSeparator = string(os.PathSeparator)

// CalcBaseDir returns the directory containing the running executable,
// the closest Go analogue of the original's argv0-relative base
// directory (argv0 parsing itself is explicitly out of scope; this
// assumes a resolvable os.Executable instead).
func CalcBaseDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		resolved = exe
	}
	return filepath.Dir(resolved), nil
}

// CalcUserDir returns the calling user's home directory.
func CalcUserDir() (string, error) {
	return os.UserHomeDir()
}

// CalcPrefDir returns a writable, per-application preferences directory
// for (org, app), creating it if necessary. This mirrors
// PHYSFS_getPrefDir's contract of "XDG-ish config home, namespaced by
// org/app" using stdlib's os.UserConfigDir rather than a bespoke
// per-OS implementation, since no example in the corpus does directory
// discovery better than the standard library already does here.
func CalcPrefDir(org, app string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, org, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
