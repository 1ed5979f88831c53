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

//go:build linux

// Package fuseproj projects an Instance's public namespace (StatPath,
// OpenRead, Read, Enumerate) onto a real mountpoint as a read-only
// kernel filesystem, via go-fuse.
package fuseproj

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/sirupsen/logrus"

	"govfs/internal/vfs"
)

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the real directory the namespace is projected onto.
	Mountpoint string

	// Drive selects which instance's namespace to project.
	Drive int

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Logger receives diagnostic messages. If nil, a package default
	// is used.
	Logger *logrus.Logger
}

// Mount mounts a read-only projection of the instance's namespace at
// options.Mountpoint. The caller must call server.Unmount when done.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.Logger == nil {
		options.Logger = logrus.New()
		options.Logger.SetLevel(logrus.WarnLevel)
	}
	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	root := &vfsNode{drive: options.Drive, virtualPath: "", logger: options.Logger}

	entryTimeout := 1 * time.Second
	attrTimeout := 1 * time.Second
	negativeTimeout := 100 * time.Millisecond

	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &entryTimeout,
		AttrTimeout:     &attrTimeout,
		NegativeTimeout: &negativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "govfs",
			Name:       "govfs",
			AllowOther: options.AllowOther,
			Debug:      false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	options.Logger.WithField("mountpoint", options.Mountpoint).Info("namespace projected read-only")
	return server, nil
}

// vfsNode is a single node in the projected tree, lazily resolved
// against the virtual namespace on every operation; it caches nothing
// of its own beyond the path that identifies it.
type vfsNode struct {
	gofuse.Inode

	drive       int
	virtualPath string
	logger      *logrus.Logger
}

var _ gofuse.InodeEmbedder = (*vfsNode)(nil)
var _ gofuse.NodeLookuper = (*vfsNode)(nil)
var _ gofuse.NodeReaddirer = (*vfsNode)(nil)
var _ gofuse.NodeGetattrer = (*vfsNode)(nil)
var _ gofuse.NodeOpener = (*vfsNode)(nil)

func (n *vfsNode) child(name string) string {
	return path.Join(n.virtualPath, name)
}

func (n *vfsNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	childPath := n.child(name)
	st, err := vfs.StatPath(n.drive, childPath)
	if err != nil {
		return nil, vfs.Code(err).ToErrno()
	}
	fillAttr(&out.Attr, st)

	mode := uint32(syscall.S_IFREG)
	if st.Type == vfs.FileDirectory {
		mode = syscall.S_IFDIR
	} else if st.Type == vfs.FileSymlink {
		mode = syscall.S_IFLNK
	}

	child := &vfsNode{drive: n.drive, virtualPath: childPath, logger: n.logger}
	inode := n.NewInode(ctx, child, gofuse.StableAttr{Mode: mode})
	return inode, 0
}

func (n *vfsNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	names, err := vfs.EnumerateFiles(n.drive, n.virtualPath)
	if err != nil {
		return nil, vfs.Code(err).ToErrno()
	}

	entries := make([]fuse.DirEntry, 0, len(names))
	for _, name := range names {
		st, serr := vfs.StatPath(n.drive, n.child(name))
		mode := uint32(syscall.S_IFREG)
		if serr == nil && st.Type == vfs.FileDirectory {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: name, Mode: mode})
	}
	return gofuse.NewListDirStream(entries), 0
}

func (n *vfsNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	st, err := vfs.StatPath(n.drive, n.virtualPath)
	if err != nil {
		return vfs.Code(err).ToErrno()
	}
	fillAttr(&out.Attr, st)
	return 0
}

func fillAttr(attr *fuse.Attr, st vfs.Stat) {
	attr.Size = uint64(st.Size)
	attr.Mode = 0o444
	switch st.Type {
	case vfs.FileDirectory:
		attr.Mode |= syscall.S_IFDIR | 0o111
	case vfs.FileSymlink:
		attr.Mode |= syscall.S_IFLNK
	default:
		attr.Mode |= syscall.S_IFREG
	}
	if st.HasModTime() {
		attr.SetTimes(nil, &st.ModTime, nil)
	}
}

// Open rejects anything but a read; the projection never exposes the
// write directory.
func (n *vfsNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	id, err := vfs.OpenRead(n.drive, n.virtualPath)
	if err != nil {
		return nil, 0, vfs.Code(err).ToErrno()
	}
	return &vfsFileHandle{drive: n.drive, id: id}, fuse.FOPEN_KEEP_CACHE, 0
}

// vfsFileHandle adapts an open govfs handle to go-fuse's FileHandle
// surface. Reads are served by seeking to the requested offset and
// reading into the caller's buffer. The handle is opened without a
// read buffer, so each read goes straight to the underlying stream.
type vfsFileHandle struct {
	drive int
	id    vfs.HandleID
}

var _ gofuse.FileReader = (*vfsFileHandle)(nil)
var _ gofuse.FileReleaser = (*vfsFileHandle)(nil)

func (h *vfsFileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if err := vfs.Seek(h.drive, h.id, off); err != nil {
		return nil, vfs.Code(err).ToErrno()
	}
	n, rerr := vfs.Read(h.drive, h.id, dest)
	if rerr != nil && rerr != io.EOF {
		return nil, vfs.Code(rerr).ToErrno()
	}
	return fuse.ReadResultData(dest[:n]), 0
}

func (h *vfsFileHandle) Release(ctx context.Context) syscall.Errno {
	if err := vfs.Close(h.drive, h.id); err != nil {
		return vfs.Code(err).ToErrno()
	}
	return 0
}
