// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import "time"

// Stats is a read-only snapshot of an inode's attributes (spec §6).
type Stats struct {
	Dev     uint64
	Ino     uint64
	Mode    uint32
	Nlink   uint32
	Uid     uint32
	Gid     uint32
	Rdev    uint32
	Size    int64
	Blksize int64
	Blocks  int64

	AtimeMs     int64
	MtimeMs     int64
	CtimeMs     int64
	BirthtimeMs int64
}

const defaultBlksize = 4096

// LOCKS_REQUIRED(in.mu)
func statFromInode(in *inode) Stats {
	return Stats{
		Dev:         in.dev,
		Ino:         in.ino,
		Mode:        in.mode,
		Nlink:       in.nlink,
		Size:        in.size(),
		Blksize:     defaultBlksize,
		Blocks:      0,
		AtimeMs:     in.atimeMs,
		MtimeMs:     in.mtimeMs,
		CtimeMs:     in.ctimeMs,
		BirthtimeMs: in.birthtimeMs,
	}
}

func (s Stats) Atime() time.Time     { return millisToTime(s.AtimeMs) }
func (s Stats) Mtime() time.Time     { return millisToTime(s.MtimeMs) }
func (s Stats) Ctime() time.Time     { return millisToTime(s.CtimeMs) }
func (s Stats) Birthtime() time.Time { return millisToTime(s.BirthtimeMs) }

func (s Stats) IsFile() bool      { return s.Mode&modeTypeMask == modeRegular }
func (s Stats) IsDir() bool       { return s.Mode&modeTypeMask == modeDirectory }
func (s Stats) IsSymlink() bool   { return s.Mode&modeTypeMask == modeSymlink }
func (s Stats) IsBlockDev() bool  { return s.Mode&modeTypeMask == modeBlockDev }
func (s Stats) IsCharDev() bool   { return s.Mode&modeTypeMask == modeCharDev }
func (s Stats) IsFifo() bool      { return s.Mode&modeTypeMask == modeFifo }
func (s Stats) IsSocket() bool    { return s.Mode&modeTypeMask == modeSocket }
