// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import "github.com/jacobsa/syncutil"

// Shadow & mount materialization (spec §4.4): lazily producing a
// directory's children, either by mirroring a shadowed FS's directory or
// by expanding an external resolver, and lazily loading a file's buffer
// from whichever of the three authoritative sources it has.
//
// Grounded on samples/memfs/fs.go's allocateInode/deallocateInode
// free-list pattern, adapted: instead of reusing numeric IDs we memoize
// freshly-minted shadow inodes in a per-FS table keyed by source ino, so
// asking for the same source twice returns the same shadow inode (spec
// §4.4's dedup requirement).

// getLinks returns dirInode's child name map, materializing it on first
// access from a mount resolver or a shadowed directory.
//
// LOCKS_EXCLUDED(dirInode.mu)
func (fs *FS) getLinks(dirInode *inode) *nameMap {
	dirInode.mu.Lock()
	defer dirInode.mu.Unlock()

	if dirInode.links != nil {
		return dirInode.links
	}

	dirInode.links = newNameMap(fs.cmp)

	switch {
	case dirInode.mountResolve != nil:
		fs.expandMount(dirInode)
	case dirInode.shadowRoot != nil:
		fs.shadowLinkDir(dirInode)
	}

	return dirInode.links
}

// shadowLinkDir mirrors every name in the shadowed directory into
// dirInode.links as a fresh (or memoized) shadow inode.
//
// LOCKS_REQUIRED(dirInode.mu)
func (fs *FS) shadowLinkDir(dirInode *inode) {
	src := dirInode.shadowRoot
	srcLinks := fs.shadowFS.getLinks(src)

	for _, e := range srcLinks.Entries() {
		child := fs.shadowInodeFor(e.Ino)
		// Open question (DESIGN.md): the child FS's comparator is
		// authoritative; later insertions (in the shadow source's
		// iteration order) win on a collision.
		dirInode.links.Set(e.Name, child)
	}
}

// shadowInodeFor returns the memoized shadow inode for src, minting one on
// first request (spec §4.4: "a per-FS table keyed by ino deduplicates").
//
// LOCKS_EXCLUDED(src.mu)
func (fs *FS) shadowInodeFor(src *inode) *inode {
	if existing, ok := fs.shadowTable[src.ino]; ok {
		return existing
	}

	src.mu.RLock()
	shadow := &inode{
		clock:       fs.clock,
		dev:         src.dev,
		ino:         src.ino,
		mode:        src.mode,
		nlink:       src.nlink,
		atimeMs:     src.atimeMs,
		mtimeMs:     src.mtimeMs,
		ctimeMs:     src.ctimeMs,
		birthtimeMs: src.birthtimeMs, // Open question (DESIGN.md): copied verbatim.
		shadowRoot:  src,
		shadowFS:    fs.shadowFS,
		metaProto:   src,
	}
	if src.isSymlink() {
		// Symlink targets are copied eagerly (spec §4.4).
		shadow.target = src.target
	}
	if !src.isFile() {
		shadow.lazySize = 0
	} else {
		shadow.lazySize = src.size()
	}
	src.mu.RUnlock()

	shadow.mu = syncutil.NewInvariantMutex(shadow.checkInvariants)
	fs.shadowTable[src.ino] = shadow

	return shadow
}

// expandMount performs the one-shot expansion of dirInode's pending mount,
// materializing each child as either a new directory (itself carrying a
// deferred mount for its own children) or a new file (size known, buffer
// loaded lazily).
//
// LOCKS_REQUIRED(dirInode.mu)
func (fs *FS) expandMount(dirInode *inode) {
	resolver := dirInode.mountResolve
	source := dirInode.mountSource

	names, err := resolver.ReaddirSync(source)
	if err != nil {
		// A resolver failure yields an empty directory; the walker never
		// sees more than ENOENT for unresolvable mount children.
		getLogger().Printf("mount %s: readdir failed, yielding empty dir: %v", source, err)
		dirInode.mountSource = ""
		dirInode.mountResolve = nil
		return
	}

	for _, name := range names {
		childPath := Combine(source, name)
		st, err := resolver.StatSync(childPath)
		if err != nil {
			getLogger().Printf("mount %s: stat failed, skipping: %v", childPath, err)
			continue
		}

		var child *inode
		switch st.Mode & modeTypeMask {
		case modeDirectory:
			child = mknod(dirInode.dev, fs.clock, modeDirectory, st.Mode)
			child.nlink = 1
			child.mountSource = childPath
			child.mountResolve = resolver
		default:
			child = mknod(dirInode.dev, fs.clock, modeRegular, st.Mode)
			child.nlink = 1
			child.lazySize = st.Size
			child.fileSource = childPath
			child.fileResolve = resolver
		}

		dirInode.links.Set(name, child)
	}

	// One-shot: the parent's mount fields are cleared after expansion
	// (spec §4.4).
	dirInode.mountSource = ""
	dirInode.mountResolve = nil
}

// getBuffer returns in's current contents, materializing them from
// whichever authoritative source is available (spec §4.4's lazy buffer).
// The returned slice is a private copy; callers may not retain a slice
// aliasing inode storage (spec §5's buffer copy discipline).
//
// LOCKS_EXCLUDED(in.mu)
func (fs *FS) getBuffer(in *inode) []byte {
	in.mu.Lock()
	defer in.mu.Unlock()
	return fs.getBufferLocked(in)
}

// LOCKS_REQUIRED(in.mu)
func (fs *FS) getBufferLocked(in *inode) []byte {
	if in.buffer != nil {
		return copyBytes(in.buffer)
	}

	switch {
	case in.fileResolve != nil:
		data, err := in.fileResolve.ReadFileSync(in.fileSource)
		if err != nil {
			data = nil
		}
		in.buffer = data
		in.lazySize = int64(len(data))
		in.fileSource = ""
		in.fileResolve = nil
		return copyBytes(in.buffer)

	case in.shadowRoot != nil:
		srcBuf := fs.shadowFS.getBuffer(in.shadowRoot)
		in.buffer = srcBuf
		in.lazySize = int64(len(srcBuf))
		return copyBytes(in.buffer)

	default:
		return []byte{}
	}
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
