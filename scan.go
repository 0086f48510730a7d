// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

// Axis selects which part of the tree around a path scan visits (spec
// §4.7).
type Axis int

const (
	AxisAncestors Axis = iota
	AxisAncestorsOrSelf
	AxisSelf
	AxisDescendantsOrSelf
	AxisDescendants
)

// Traversal holds the caller-supplied predicates that shape a scan.
// Either may be nil, meaning "accept/traverse everything".
type Traversal struct {
	// Accept, if non-nil, filters which visited paths are emitted.
	Accept func(path string, st Stats) bool

	// Traverse, if non-nil, gates whether a directory's children are
	// visited at all.
	Traverse func(path string, st Stats) bool
}

func (t Traversal) accept(path string, st Stats) bool {
	if t.Accept == nil {
		return true
	}
	return t.Accept(path, st)
}

func (t Traversal) traverse(path string, st Stats) bool {
	if t.Traverse == nil {
		return true
	}
	return t.Traverse(path, st)
}

// Scan produces an ordered list of paths around p along axis, following a
// final symlink in the initial resolution of p (spec §4.7).
func (fs *FS) Scan(p string, axis Axis, tr Traversal) ([]string, error) {
	return fs.scanImpl(p, axis, tr, false)
}

// Lscan is Scan but passes noFollow to every walk it performs, so a
// symlink is stat'd and potentially emitted but never traversed through.
func (fs *FS) Lscan(p string, axis Axis, tr Traversal) ([]string, error) {
	return fs.scanImpl(p, axis, tr, true)
}

func (fs *FS) scanImpl(p string, axis Axis, tr Traversal, noFollow bool) (paths []string, err error) {
	_, report := fs.traced("Scan")
	defer func() { report(err) }()

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rp, err := fs.resolve(p)
	if err != nil {
		return nil, err
	}

	res, err := fs.walk(rp, noFollow)
	if err != nil {
		return nil, err
	}
	if res.Node == nil {
		return nil, newIOError("scan", p, ENOENT)
	}

	var out []string
	switch axis {
	case AxisSelf:
		fs.scanEmit(&out, rp, res.Node, tr)
	case AxisAncestorsOrSelf:
		fs.scanEmit(&out, rp, res.Node, tr)
		fs.scanAncestors(&out, rp, tr, noFollow)
	case AxisAncestors:
		fs.scanAncestors(&out, rp, tr, noFollow)
	case AxisDescendantsOrSelf:
		fs.scanEmit(&out, rp, res.Node, tr)
		fs.scanDescendants(&out, rp, res.Node, tr, noFollow)
	case AxisDescendants:
		fs.scanDescendants(&out, rp, res.Node, tr, noFollow)
	}

	return out, nil
}

// scanEmit appends p to out if it passes the accept predicate.
// LOCKS_EXCLUDED(in.mu)
func (fs *FS) scanEmit(out *[]string, p string, in *inode, tr Traversal) {
	in.mu.RLock()
	st := statFromInode(in)
	in.mu.RUnlock()

	if tr.accept(p, st) {
		*out = append(*out, p)
	}
}

// scanAncestors walks upward from p, stopping when dirname(p) == p (root
// reached), per spec §4.7.
func (fs *FS) scanAncestors(out *[]string, p string, tr Traversal, noFollow bool) {
	for {
		parent := Dirname(p)
		if parent == p {
			return
		}
		p = parent

		res, err := fs.walk(p, noFollow)
		if err != nil || res.Node == nil {
			return
		}
		fs.scanEmit(out, p, res.Node, tr)
	}
}

// scanDescendants recurses into dirInode's children in name order,
// swallowing any error encountered visiting a given child (spec §4.7,
// §5 error propagation).
func (fs *FS) scanDescendants(out *[]string, p string, dirInode *inode, tr Traversal, noFollow bool) {
	dirInode.mu.RLock()
	isDir := dirInode.isDir()
	dirInode.mu.RUnlock()
	if !isDir {
		return
	}

	dirInode.mu.RLock()
	st := statFromInode(dirInode)
	dirInode.mu.RUnlock()
	if !tr.traverse(p, st) {
		return
	}

	for _, name := range fs.getLinks(dirInode).Keys() {
		child, ok := fs.getLinks(dirInode).Get(name)
		if !ok {
			continue
		}
		childPath := Combine(p, name)

		fs.scanEmit(out, childPath, child, tr)
		fs.scanDescendants(out, childPath, child, tr, noFollow)
	}
}
