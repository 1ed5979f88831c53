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

package commands

import (
	"time"

	"govfs/internal/cache"
	"govfs/internal/vfs"
)

// statCache sits in front of vfs.StatPath for the lifetime of a single
// CLI invocation, sparing repeated archiver round trips when a command
// stats the same path more than once (e.g. ls printing a long listing).
// It is deliberately wired at this layer, not inside internal/vfs
// itself, since internal/cache already imports internal/vfs for
// vfs.Stat and importing it back would cycle.
var statCache = cache.NewAttrCache(2*time.Second, 4096)

func cachedStat(dv int, path string) (vfs.Stat, error) {
	if st, ok := statCache.Get(path); ok {
		return st, nil
	}
	st, err := vfs.StatPath(dv, path)
	if err != nil {
		return st, err
	}
	statCache.Set(path, st)
	return st, nil
}

// invalidateNamespace drops every cached Stat after an operation that
// can change what a path resolves to (mount, unmount, mkdir, rm).
func invalidateNamespace() {
	statCache.Invalidate()
}
