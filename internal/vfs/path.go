package vfs

import "strings"

// sanitizePath normalizes a caller-supplied virtual path to its canonical
// interior form (component D). It is the only layer that enforces path
// safety; archive back-ends trust everything handed to them afterward.
//
// Rules, applied in one left-to-right pass over "/"-separated segments:
//  1. Leading "/" characters are stripped entirely.
//  2. The whole input is rejected if it is exactly "." or "..".
//  3. Any ':' or '\' anywhere is rejected (bad filename).
//  4. Runs of "/" collapse to a single boundary.
//  5. The literal segments "." and ".." are rejected wherever they occur.
//  6. A trailing "/" is dropped.
//  7. The empty string is preserved as-is (it denotes the root).
func sanitizePath(in string) (string, error) {
	if in == "." || in == ".." {
		return "", newErr(ErrBadFilename)
	}
	for i := 0; i < len(in); i++ {
		if in[i] == ':' || in[i] == '\\' {
			return "", newErr(ErrBadFilename)
		}
	}

	var segs []string
	start := 0
	in = strings.TrimLeft(in, "/")
	for i := 0; i <= len(in); i++ {
		if i == len(in) || in[i] == '/' {
			if i > start {
				seg := in[start:i]
				if seg == "." || seg == ".." {
					return "", newErr(ErrBadFilename)
				}
				segs = append(segs, seg)
			}
			start = i + 1
		}
	}

	return strings.Join(segs, "/"), nil
}
