// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import (
	"io/ioutil"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// FileSystemResolver is the external source a mounted directory lazily
// expands from (spec §4.4, §6). Implementations plug in a real disk, a
// remote store, or another VFS instance.
type FileSystemResolver interface {
	StatSync(path string) (ResolverStat, error)
	ReaddirSync(path string) ([]string, error)
	ReadFileSync(path string) ([]byte, error)
}

// ResolverStat is the minimal stat shape a resolver must produce: enough
// to decide the child's type and, for files, its lazily-readable size.
type ResolverStat struct {
	Mode uint32 // includes the S_IFDIR/S_IFREG type bits
	Size int64
}

// DiskResolver is a concrete FileSystemResolver backed by the host
// filesystem, exercising the "implementations reading from the host
// disk... plug in here" line of spec §6. It never writes; mountSync only
// ever reads through a resolver.
type DiskResolver struct {
	// Root is prefixed onto every path the resolver is asked about, so
	// callers can mount a subtree rather than the whole host filesystem.
	Root string
}

func (d *DiskResolver) resolve(p string) string {
	if d.Root == "" {
		return p
	}
	return filepath.Join(d.Root, p)
}

func (d *DiskResolver) StatSync(p string) (ResolverStat, error) {
	var st unix.Stat_t
	if err := unix.Stat(d.resolve(p), &st); err != nil {
		return ResolverStat{}, err
	}

	var mode uint32
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		mode = modeDirectory
	case unix.S_IFLNK:
		mode = modeSymlink
	default:
		mode = modeRegular
	}
	mode |= uint32(st.Mode) & modePermMask

	return ResolverStat{Mode: mode, Size: st.Size}, nil
}

func (d *DiskResolver) ReaddirSync(p string) ([]string, error) {
	entries, err := ioutil.ReadDir(d.resolve(p))
	if err != nil {
		return nil, err
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (d *DiskResolver) ReadFileSync(p string) ([]byte, error) {
	return ioutil.ReadFile(d.resolve(p))
}
