package vfs

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// SaneConfigOptions controls SetSaneConfig's archive-scan behavior.
type SaneConfigOptions struct {
	Org             string
	App             string
	ArchiveExt      string // extension (without '.') to scan for, e.g. "zip"; "" disables the scan
	IncludeCdRoms   bool   // retained for parity with the original contract; no-op on this platform
	ArchivesFirst   bool   // discovered archives are prepended ahead of the base directory mount
}

// SetSaneConfig establishes a conventional default search path in one
// call: mount the base directory, then scan it (non-recursively) for
// files whose extension case-insensitively matches opts.ArchiveExt,
// mounting every match at the root, in directory order. A failure to
// mount any one candidate archive during the scan is logged and
// skipped rather than aborting the whole call, matching the original's
// policy of tolerating unreadable/corrupt archives turning up in a
// directory scan.
func SetSaneConfig(dv int, opts SaneConfigOptions) error {
	inst, err := getInstance(dv)
	if err != nil {
		return err
	}

	log := logrus.WithField("instance", inst.id.String())

	if opts.Org != "" && opts.App != "" {
		if _, perr := GetPrefDir(dv, opts.Org, opts.App); perr != nil {
			log.WithError(perr).Warn("sane config: could not compute pref dir")
		}
	}

	base := inst.baseDir
	if base == "" {
		base, _ = GetBaseDir(dv)
	}
	if base != "" {
		if merr := Mount(dv, base, "", true); merr != nil {
			log.WithError(merr).Warn("sane config: could not mount base directory")
		}
	}

	if opts.ArchiveExt == "" {
		return nil
	}

	archiver, state, oerr := openDirectory(base, nil, false)
	if oerr != nil {
		return nil
	}
	defer archiver.CloseArchive(state)

	var candidates []string
	archiver.Enumerate(state, "", func(child string) EnumerateResult {
		if strings.EqualFold(extOf(child), opts.ArchiveExt) {
			candidates = append(candidates, child)
		}
		return EnumerateOK
	})
	sort.Strings(candidates)

	for _, name := range candidates {
		full := base + "/" + name
		if merr := Mount(dv, full, "", !opts.ArchivesFirst); merr != nil {
			log.WithError(merr).WithField("archive", full).Warn("sane config: skipping unmountable archive")
			continue
		}
	}
	return nil
}

func extOf(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}
