// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import (
	"context"
	"fmt"
	"time"

	"github.com/jacobsa/reqtrace"
	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"
)

const defaultRoot = "/"

// FS is an in-memory, POSIX-ish file system (spec §3). Mutating methods
// return an *IOError on failure; Filemeta/stat-family methods do too.
//
// Grounded on samples/memfs/fs.go's memFS: an InvariantMutex-guarded
// struct whose methods resolve a path, walk it, and mutate the inode
// graph — just not bound to a kernel FUSE connection.
type FS struct {
	mu syncutil.InvariantMutex

	caseSensitive bool
	cmp           Comparator

	roots *nameMap // GUARDED_BY(mu): root token -> root directory inode

	cwd      string   // GUARDED_BY(mu); always absolute
	dirStack []string // GUARDED_BY(mu)

	clock timeutil.Clock

	shadowFS    *FS // read-only parent this FS layers over, or nil
	shadowTable map[uint64]*inode

	readOnly bool // GUARDED_BY(mu)

	meta map[string]interface{} // GUARDED_BY(mu)

	ctxValue context.Context
}

// Option configures a new FS.
type Option func(*FS)

// WithClock sets the FS's time source (spec §9: fixed ms, Clock, or
// zero-arg callable all accepted via AsClock).
func WithClock(src ClockSource) Option {
	return func(fs *FS) { fs.clock = AsClock(src) }
}

// WithCaseInsensitive switches the FS's comparator to
// CaseInsensitiveComparator.
func WithCaseInsensitive() Option {
	return func(fs *FS) {
		fs.caseSensitive = false
		fs.cmp = CaseInsensitiveComparator
	}
}

// WithContext attaches a context used only for reqtrace spans.
func WithContext(ctx context.Context) Option {
	return func(fs *FS) { fs.ctxValue = ctx }
}

// NewFS constructs a fresh, mutable, empty FS with a single root ("/").
func NewFS(opts ...Option) *FS {
	fs := &FS{
		caseSensitive: true,
		cmp:           CaseSensitiveComparator,
		clock:         timeutil.RealClock(),
		cwd:           defaultRoot,
		shadowTable:   make(map[uint64]*inode),
		ctxValue:      context.Background(),
	}
	for _, o := range opts {
		o(fs)
	}

	fs.roots = newNameMap(fs.cmp)
	fs.mu = syncutil.NewInvariantMutex(fs.checkInvariants)

	root := mknod(allocDev(), fs.clock, modeDirectory, 0o777)
	root.nlink = 1
	root.links = newNameMap(fs.cmp)
	fs.roots.Set(defaultRoot, root)

	return fs
}

func (fs *FS) ctx() context.Context {
	if fs.ctxValue == nil {
		return context.Background()
	}
	return fs.ctxValue
}

// LOCKS_REQUIRED(fs.mu)
func (fs *FS) checkInvariants() {
	if fs.cwd != "" && !IsAbsolutePath(fs.cwd) {
		panic(fmt.Sprintf("fs: non-absolute cwd: %q", fs.cwd))
	}
	if fs.roots == nil {
		panic("fs: nil roots map")
	}
}

// IsReadOnly reports whether this FS rejects mutation (spec §3 invariant
// 6).
func (fs *FS) IsReadOnly() bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.readOnly
}

// MakeReadonly freezes fs irreversibly.
func (fs *FS) MakeReadonly() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.readOnly = true
}

// LOCKS_REQUIRED(fs.mu)
func (fs *FS) checkMutable(op, path string) error {
	if fs.readOnly {
		return newIOError(op, path, EROFS)
	}
	return nil
}

// Shadow produces a fresh mutable FS layering copy-on-read over fs, which
// must already be read-only (spec §3 invariant 6, §9 glossary: "Shadow
// FS"). The child mirrors every root as a lazily-materialized shadow
// inode (spec §4.4), so unshadowed reads fall through to fs byte-for-byte
// (testable property 7).
func (fs *FS) Shadow(opts ...Option) (*FS, error) {
	if !fs.IsReadOnly() {
		return nil, newIOError("shadow", "", EINVAL)
	}

	child := &FS{
		caseSensitive: fs.caseSensitive,
		cmp:           fs.cmp,
		clock:         fs.clock,
		cwd:           defaultRoot,
		shadowFS:      fs,
		shadowTable:   make(map[uint64]*inode),
		ctxValue:      context.Background(),
	}
	for _, o := range opts {
		o(child)
	}

	// Invariant 7: a shadow may only be case-insensitive if its parent is.
	if fs.caseSensitive && !child.caseSensitive {
		return nil, newIOError("shadow", "", EINVAL)
	}

	child.roots = newNameMap(child.cmp)
	child.mu = syncutil.NewInvariantMutex(child.checkInvariants)

	for _, e := range fs.roots.Entries() {
		child.roots.Set(e.Name, child.shadowInodeFor(e.Ino))
	}

	return child, nil
}

// resolve joins p onto cwd, validating it's relative-or-absolute.
// LOCKS_REQUIRED(fs.mu)
func (fs *FS) resolve(p string) (string, error) {
	if err := Validate(p, PathRelativeOrAbsolute); err != nil {
		return "", err
	}
	return Resolve(fs.cwd, p), nil
}

////////////////////////////////////////////////////////////////////////
// Link lifecycle (spec §3 "Lifecycle")
////////////////////////////////////////////////////////////////////////

// addLink attaches child under name in links, incrementing nlink and
// updating ctime (child) / mtime (parent) — spec §3.
func (fs *FS) addLink(links *nameMap, parent *inode, name string, child *inode) {
	links.Set(name, child)

	child.mu.Lock()
	child.nlink++
	child.touch(false)
	child.mu.Unlock()

	if parent != nil {
		parent.mu.Lock()
		parent.touch(true)
		parent.mu.Unlock()
	}
}

// removeLink detaches name from links, decrementing nlink.
func (fs *FS) removeLink(links *nameMap, parent *inode, name string, child *inode) {
	links.Delete(name)

	child.mu.Lock()
	child.nlink--
	child.touch(false)
	child.mu.Unlock()

	if parent != nil {
		parent.mu.Lock()
		parent.touch(true)
		parent.mu.Unlock()
	}
}

////////////////////////////////////////////////////////////////////////
// C6 operations
////////////////////////////////////////////////////////////////////////

func (fs *FS) traced(name string) (context.Context, reqtrace.ReportFunc) {
	return reqtrace.StartSpan(fs.ctx(), name)
}

// StatSync returns a snapshot of the inode named by p, following a final
// symlink.
func (fs *FS) StatSync(p string) (st Stats, err error) {
	_, report := fs.traced("StatSync")
	defer func() { report(err) }()

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rp, err := fs.resolve(p)
	if err != nil {
		return Stats{}, err
	}

	res, err := fs.walk(rp, false)
	if err != nil {
		return Stats{}, err
	}
	if res.Node == nil {
		return Stats{}, newIOError("stat", p, ENOENT)
	}

	res.Node.mu.RLock()
	defer res.Node.mu.RUnlock()
	return statFromInode(res.Node), nil
}

// LstatSync is StatSync but does not follow a final symlink.
func (fs *FS) LstatSync(p string) (st Stats, err error) {
	_, report := fs.traced("LstatSync")
	defer func() { report(err) }()

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rp, err := fs.resolve(p)
	if err != nil {
		return Stats{}, err
	}

	res, err := fs.walk(rp, true)
	if err != nil {
		return Stats{}, err
	}
	if res.Node == nil {
		return Stats{}, newIOError("lstat", p, ENOENT)
	}

	res.Node.mu.RLock()
	defer res.Node.mu.RUnlock()
	return statFromInode(res.Node), nil
}

// ReaddirSync returns the names of p's children in comparator order.
func (fs *FS) ReaddirSync(p string) (names []string, err error) {
	_, report := fs.traced("ReaddirSync")
	defer func() { report(err) }()

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rp, err := fs.resolve(p)
	if err != nil {
		return nil, err
	}

	res, err := fs.walk(rp, false)
	if err != nil {
		return nil, err
	}
	if res.Node == nil {
		return nil, newIOError("readdir", p, ENOENT)
	}
	if !res.Node.isDir() {
		return nil, newIOError("readdir", p, ENOTDIR)
	}

	return fs.getLinks(res.Node).Keys(), nil
}

// MkdirSync creates a new, empty directory at p.
func (fs *FS) MkdirSync(p string) (err error) {
	_, report := fs.traced("MkdirSync")
	defer func() { report(err) }()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err = fs.checkMutable("mkdir", p); err != nil {
		return err
	}

	rp, err := fs.resolve(p)
	if err != nil {
		return err
	}

	res, err := fs.walk(rp, true)
	if err != nil {
		return err
	}
	if res.Node != nil {
		return newIOError("mkdir", p, EEXIST)
	}

	child := mknod(res.Parent.dev, fs.clock, modeDirectory, 0o777)
	child.links = newNameMap(fs.cmp)
	fs.addLink(res.Links, res.Parent, res.Basename, child)

	return nil
}

// RmdirSync removes the empty directory at p.
func (fs *FS) RmdirSync(p string) (err error) {
	_, report := fs.traced("RmdirSync")
	defer func() { report(err) }()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err = fs.checkMutable("rmdir", p); err != nil {
		return err
	}

	rp, err := fs.resolve(p)
	if err != nil {
		return err
	}

	res, err := fs.walk(rp, true)
	if err != nil {
		return err
	}
	if res.Parent == nil {
		return newIOError("rmdir", p, EPERM)
	}
	if res.Node == nil {
		return newIOError("rmdir", p, ENOENT)
	}
	if !res.Node.isDir() {
		return newIOError("rmdir", p, ENOTDIR)
	}
	if fs.getLinks(res.Node).Len() != 0 {
		return newIOError("rmdir", p, ENOTEMPTY)
	}

	fs.removeLink(res.Links, res.Parent, res.Basename, res.Node)
	return nil
}

// LinkSync creates a new hard link at newp pointing to the same inode as
// oldp.
func (fs *FS) LinkSync(oldp, newp string) (err error) {
	_, report := fs.traced("LinkSync")
	defer func() { report(err) }()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err = fs.checkMutable("link", newp); err != nil {
		return err
	}

	rOld, err := fs.resolve(oldp)
	if err != nil {
		return err
	}
	rNew, err := fs.resolve(newp)
	if err != nil {
		return err
	}

	oldRes, err := fs.walk(rOld, false)
	if err != nil {
		return err
	}
	if oldRes.Node == nil {
		return newIOError("link", oldp, ENOENT)
	}
	if oldRes.Node.isDir() {
		return newIOError("link", oldp, EPERM)
	}

	newRes, err := fs.walk(rNew, true)
	if err != nil {
		return err
	}
	if newRes.Node != nil {
		return newIOError("link", newp, EEXIST)
	}

	fs.addLink(newRes.Links, newRes.Parent, newRes.Basename, oldRes.Node)
	return nil
}

// UnlinkSync removes the directory entry at p.
func (fs *FS) UnlinkSync(p string) (err error) {
	_, report := fs.traced("UnlinkSync")
	defer func() { report(err) }()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err = fs.checkMutable("unlink", p); err != nil {
		return err
	}

	rp, err := fs.resolve(p)
	if err != nil {
		return err
	}

	res, err := fs.walk(rp, true)
	if err != nil {
		return err
	}
	if res.Parent == nil {
		return newIOError("unlink", p, EPERM)
	}
	if res.Node == nil {
		return newIOError("unlink", p, ENOENT)
	}
	if res.Node.isDir() {
		return newIOError("unlink", p, EISDIR)
	}

	fs.removeLink(res.Links, res.Parent, res.Basename, res.Node)
	return nil
}

// RenameSync moves the entry at oldp to newp.
func (fs *FS) RenameSync(oldp, newp string) (err error) {
	_, report := fs.traced("RenameSync")
	defer func() { report(err) }()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err = fs.checkMutable("rename", oldp); err != nil {
		return err
	}

	rOld, err := fs.resolve(oldp)
	if err != nil {
		return err
	}
	rNew, err := fs.resolve(newp)
	if err != nil {
		return err
	}

	oldRes, err := fs.walk(rOld, true)
	if err != nil {
		return err
	}
	if oldRes.Parent == nil {
		return newIOError("rename", oldp, EPERM)
	}
	if oldRes.Node == nil {
		return newIOError("rename", oldp, ENOENT)
	}

	newRes, err := fs.walk(rNew, true)
	if err != nil {
		return err
	}
	if newRes.Parent == nil {
		return newIOError("rename", newp, EPERM)
	}

	if newRes.Node != nil {
		oldIsDir := oldRes.Node.isDir()
		newIsDir := newRes.Node.isDir()
		if oldIsDir && !newIsDir {
			return newIOError("rename", newp, ENOTDIR)
		}
		if !oldIsDir && newIsDir {
			return newIOError("rename", newp, EISDIR)
		}
		if newIsDir && fs.getLinks(newRes.Node).Len() != 0 {
			return newIOError("rename", newp, ENOTEMPTY)
		}

		fs.removeLink(newRes.Links, newRes.Parent, newRes.Basename, newRes.Node)
	}

	if oldRes.Parent == newRes.Parent {
		oldRes.Links.Delete(oldRes.Basename)
		oldRes.Links.Set(newRes.Basename, oldRes.Node)

		oldRes.Parent.mu.Lock()
		oldRes.Parent.touch(true)
		oldRes.Parent.mu.Unlock()

		oldRes.Node.mu.Lock()
		oldRes.Node.touch(false)
		oldRes.Node.mu.Unlock()
	} else {
		fs.removeLink(oldRes.Links, oldRes.Parent, oldRes.Basename, oldRes.Node)
		fs.addLink(newRes.Links, newRes.Parent, newRes.Basename, oldRes.Node)
	}

	return nil
}

// SymlinkSync creates a new symlink at linkp whose stored text is target.
func (fs *FS) SymlinkSync(target, linkp string) (err error) {
	_, report := fs.traced("SymlinkSync")
	defer func() { report(err) }()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err = fs.checkMutable("symlink", linkp); err != nil {
		return err
	}
	if target == "" {
		return newIOError("symlink", linkp, EINVAL)
	}

	rLink, err := fs.resolve(linkp)
	if err != nil {
		return err
	}

	res, err := fs.walk(rLink, true)
	if err != nil {
		return err
	}
	if res.Node != nil {
		return newIOError("symlink", linkp, EEXIST)
	}

	child := mknod(res.Parent.dev, fs.clock, modeSymlink, 0o777)
	child.target = target
	fs.addLink(res.Links, res.Parent, res.Basename, child)

	return nil
}

// ReadlinkSync returns the stored text of the symlink at p, unmodified.
func (fs *FS) ReadlinkSync(p string) (target string, err error) {
	_, report := fs.traced("ReadlinkSync")
	defer func() { report(err) }()

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rp, err := fs.resolve(p)
	if err != nil {
		return "", err
	}

	res, err := fs.walk(rp, true)
	if err != nil {
		return "", err
	}
	if res.Node == nil {
		return "", newIOError("readlink", p, ENOENT)
	}
	if !res.Node.isSymlink() {
		return "", newIOError("readlink", p, EINVAL)
	}

	res.Node.mu.RLock()
	defer res.Node.mu.RUnlock()
	return res.Node.target, nil
}

// RealpathSync returns p with all symlinks resolved.
func (fs *FS) RealpathSync(p string) (real string, err error) {
	_, report := fs.traced("RealpathSync")
	defer func() { report(err) }()

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rp, err := fs.resolve(p)
	if err != nil {
		return "", err
	}

	res, err := fs.walk(rp, false)
	if err != nil {
		return "", err
	}
	return res.Realpath, nil
}

// ReadFileSync returns a copy of the regular file's contents at p.
func (fs *FS) ReadFileSync(p string) (data []byte, err error) {
	_, report := fs.traced("ReadFileSync")
	defer func() { report(err) }()

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rp, err := fs.resolve(p)
	if err != nil {
		return nil, err
	}

	res, err := fs.walk(rp, false)
	if err != nil {
		return nil, err
	}
	if res.Node == nil {
		return nil, newIOError("read", p, ENOENT)
	}
	if res.Node.isDir() {
		return nil, newIOError("read", p, EISDIR)
	}
	if !res.Node.isFile() {
		return nil, newIOError("read", p, EBADF)
	}

	return fs.getBuffer(res.Node), nil
}

// ReadFileString is ReadFileSync decoded as UTF-8.
func (fs *FS) ReadFileString(p string) (string, error) {
	data, err := fs.ReadFileSync(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFileSync replaces (or creates) the regular file at p with a fresh
// copy of data.
func (fs *FS) WriteFileSync(p string, data []byte) (err error) {
	_, report := fs.traced("WriteFileSync")
	defer func() { report(err) }()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err = fs.checkMutable("write", p); err != nil {
		return err
	}

	rp, err := fs.resolve(p)
	if err != nil {
		return err
	}

	res, err := fs.walk(rp, false)
	if err != nil {
		return err
	}

	if res.Node == nil {
		child := mknod(res.Parent.dev, fs.clock, modeRegular, 0o666)
		child.buffer = copyBytes(data)
		child.lazySize = int64(len(child.buffer))
		fs.addLink(res.Links, res.Parent, res.Basename, child)
		return nil
	}

	if res.Node.isDir() {
		return newIOError("write", p, EISDIR)
	}
	if !res.Node.isFile() {
		return newIOError("write", p, EBADF)
	}

	res.Node.mu.Lock()
	defer res.Node.mu.Unlock()

	res.Node.buffer = copyBytes(data)
	res.Node.lazySize = int64(len(res.Node.buffer))
	res.Node.fileSource = ""
	res.Node.fileResolve = nil
	res.Node.touch(true)

	return nil
}

// WriteFileString is WriteFileSync over a UTF-8 encoded string.
func (fs *FS) WriteFileString(p string, s string) error {
	return fs.WriteFileSync(p, []byte(s))
}

// MountSync attaches a directory at tgt whose children are produced
// lazily by resolver, rooted at src.
func (fs *FS) MountSync(src, tgt string, resolver FileSystemResolver) (err error) {
	_, report := fs.traced("MountSync")
	defer func() { report(err) }()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err = fs.checkMutable("mount", tgt); err != nil {
		return err
	}

	rTgt, err := fs.resolve(tgt)
	if err != nil {
		return err
	}

	res, err := fs.walk(rTgt, true)
	if err != nil {
		return err
	}
	if res.Node != nil {
		return newIOError("mount", tgt, EEXIST)
	}

	child := mknod(res.Parent.dev, fs.clock, modeDirectory, 0o777)
	child.mountSource = src
	child.mountResolve = resolver
	fs.addLink(res.Links, res.Parent, res.Basename, child)

	return nil
}

// Filemeta returns p's metadata map, lazily allocated and seeded with a
// one-time copy of its shadow parent's metadata (spec §4.6).
func (fs *FS) Filemeta(p string) (meta map[string]interface{}, err error) {
	_, report := fs.traced("Filemeta")
	defer func() { report(err) }()

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rp, err := fs.resolve(p)
	if err != nil {
		return nil, err
	}

	res, err := fs.walk(rp, false)
	if err != nil {
		return nil, err
	}
	if res.Node == nil {
		return nil, newIOError("filemeta", p, ENOENT)
	}

	res.Node.mu.Lock()
	defer res.Node.mu.Unlock()
	return res.Node.metaMap(), nil
}

// Time returns the FS's current clock reading.
func (fs *FS) Time() time.Time {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.clock.Now()
}

// SetClock installs a new clock source. Fails EPERM on a read-only FS
// (spec §3 invariant 6: "EPERM for clock mutation").
func (fs *FS) SetClock(src ClockSource) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.readOnly {
		return newIOError("time", "", EPERM)
	}
	fs.clock = AsClock(src)
	return nil
}
