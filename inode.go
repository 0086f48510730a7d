// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import (
	"fmt"
	"sync/atomic"

	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"
)

// Mode bit layout, matching the POSIX S_IFMT family (spec §4.3).
const (
	modeTypeMask = 0o170000

	modeSocket    = 0o140000
	modeSymlink   = 0o120000
	modeRegular   = 0o100000
	modeBlockDev  = 0o060000
	modeDirectory = 0o040000
	modeCharDev   = 0o020000
	modeFifo      = 0o010000

	modePermMask = 0o7777
	umaskDefault = 0o022
)

var (
	gNextDev = new(uint64)
	gNextIno = new(uint64)
)

func allocDev() uint64 { return atomic.AddUint64(gNextDev, 1) }
func allocIno() uint64 { return atomic.AddUint64(gNextIno, 1) }

// inode is the tagged variant backing every file, directory, and symlink
// in the graph (spec §3). Like samples/memfs/inode.go, all three kinds
// share one struct and diverge by which tail fields are meaningful; which
// fields are authoritative is driven by mode's type bits.
type inode struct {
	clock timeutil.Clock
	mu    syncutil.InvariantMutex

	// Shared header. GUARDED_BY(mu) except dev/ino, which are immutable
	// after mknod.
	dev  uint64
	ino  uint64
	mode uint32 // permission bits (low 12) | type bits (modeTypeMask)

	nlink uint32 // GUARDED_BY(mu)

	atimeMs     int64 // GUARDED_BY(mu)
	mtimeMs     int64 // GUARDED_BY(mu)
	ctimeMs     int64 // GUARDED_BY(mu)
	birthtimeMs int64 // GUARDED_BY(mu)

	// Optional opaque metadata, lazily allocated and seeded with a copy of
	// metaProto's entries (spec §3: "meta").
	meta      map[string]interface{} // GUARDED_BY(mu)
	metaProto *inode

	// shadowRoot, when non-nil, names the inode in shadowFS (a read-only,
	// separate *FS) this inode was materialized from. Never ownership.
	shadowRoot *inode
	shadowFS   *FS

	// Directory: lazily-built children, or a pending mount to expand.
	links        *nameMap // GUARDED_BY(mu); nil until materialized
	mountSource  string
	mountResolve FileSystemResolver // GUARDED_BY(mu); cleared after one-shot expansion

	// File: exactly one of {buffer present}, {size + source/resolver}, or
	// {shadowRoot} is authoritative at a given time (spec §3).
	buffer     []byte // GUARDED_BY(mu); nil until materialized
	lazySize   int64  // GUARDED_BY(mu); valid when buffer == nil
	fileSource string
	fileResolve FileSystemResolver // GUARDED_BY(mu); cleared once buffer is loaded

	// Symlink: stored link text, validated at creation, immutable.
	target string
}

func (in *inode) modeType() uint32 { return in.mode & modeTypeMask }

func (in *inode) isDir() bool     { return in.modeType() == modeDirectory }
func (in *inode) isFile() bool    { return in.modeType() == modeRegular }
func (in *inode) isSymlink() bool { return in.modeType() == modeSymlink }

// mknod allocates a new inode of the given type, applying the umask and
// stamping all four timestamps from clock (spec §4.3).
func mknod(dev uint64, clock timeutil.Clock, typ uint32, mode uint32) *inode {
	now := clock.Now()
	ms := timeToMillis(now)

	in := &inode{
		clock:       clock,
		dev:         dev,
		ino:         allocIno(),
		mode:        (mode & modePermMask &^ umaskDefault) | typ,
		atimeMs:     ms,
		mtimeMs:     ms,
		ctimeMs:     ms,
		birthtimeMs: ms,
	}
	in.mu = syncutil.NewInvariantMutex(in.checkInvariants)

	if typ == modeDirectory {
		// links stays nil (lazy) unless/until populated or mounted.
	}

	return in
}

// LOCKS_REQUIRED(in.mu)
func (in *inode) checkInvariants() {
	if in.isDir() && in.isSymlink() {
		panic(fmt.Sprintf("inode %d: mode is both dir and symlink: %o", in.ino, in.mode))
	}
	if !in.isFile() && len(in.buffer) != 0 {
		panic(fmt.Sprintf("inode %d: non-file has a buffer", in.ino))
	}
	if !in.isSymlink() && in.target != "" {
		panic(fmt.Sprintf("inode %d: non-symlink has a target", in.ino))
	}
	if !in.isDir() && in.links != nil {
		panic(fmt.Sprintf("inode %d: non-dir has links", in.ino))
	}
}

// size returns the current logical size without materializing a buffer.
// LOCKS_REQUIRED(in.mu)
func (in *inode) size() int64 {
	switch {
	case in.buffer != nil:
		return int64(len(in.buffer))
	case in.fileResolve != nil || in.shadowRoot != nil:
		return in.lazySize
	default:
		return int64(len(in.buffer))
	}
}

// touch stamps ctime (and, if mutate is true, mtime) from the clock.
// LOCKS_REQUIRED(in.mu)
func (in *inode) touch(mutate bool) {
	ms := timeToMillis(in.clock.Now())
	in.ctimeMs = ms
	if mutate {
		in.mtimeMs = ms
	}
}

// metaMap lazily allocates in.meta, copying metaProto's entries into it
// on that first allocation (spec §3). The copy is taken once: keys the
// shadow ancestor gains or changes afterwards are not seen through it.
// LOCKS_REQUIRED(in.mu)
func (in *inode) metaMap() map[string]interface{} {
	if in.meta == nil {
		in.meta = make(map[string]interface{})
		if in.metaProto != nil {
			in.metaProto.mu.RLock()
			for k, v := range in.metaProto.metaMap() {
				in.meta[k] = v
			}
			in.metaProto.mu.RUnlock()
		}
	}
	return in.meta
}

func modeTypeString(t uint32) string {
	switch t {
	case modeRegular:
		return "file"
	case modeDirectory:
		return "directory"
	case modeSymlink:
		return "symlink"
	case modeBlockDev:
		return "block device"
	case modeCharDev:
		return "character device"
	case modeFifo:
		return "fifo"
	case modeSocket:
		return "socket"
	default:
		return "unknown"
	}
}
