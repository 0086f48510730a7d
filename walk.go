// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import "github.com/jacobsa/reqtrace"

// maxSymlinkDepth bounds the number of symlink splices a single walk may
// perform before failing ELOOP (spec §4.5).
const maxSymlinkDepth = 40

// WalkResult is the outcome of resolving a path (spec §4.5). Node may be
// nil even on success: this is the partial result mutating callers like
// mkdirSync/writeFileSync/renameSync rely on to tell "parent exists, target
// doesn't" apart from "parent missing" (which fails instead).
type WalkResult struct {
	Realpath string
	Basename string
	Parent   *inode
	Links    *nameMap
	Node     *inode
}

// walk resolves an already-absolute path against fs's root, following
// symlinks unless noFollow is set. It follows the component-by-component
// protocol of spec §4.5 literally: the root token is itself the first
// "component", looked up in fs.roots exactly like any other name is
// looked up in a parent's links, which is what lets a root-only path
// ("/") and a deep path share one loop.
func (fs *FS) walk(path string, noFollow bool) (res WalkResult, err error) {
	_, report := reqtrace.StartSpan(fs.ctx(), "walk")
	defer func() { report(err) }()

	c := parsePath(path)
	if !c.isAbsolute() {
		return WalkResult{}, newIOError("walk", path, EINVAL)
	}

	rootTok := c.Root
	names := c.Names

	links := fs.roots
	var parent *inode
	step := 0
	depth := 0

	total := func() int { return len(names) + 1 }
	at := func(i int) string {
		if i == 0 {
			return rootTok
		}
		return names[i-1]
	}
	prefixUpTo := func(i int) string {
		// Path formed by components [0, i), i.e. not including index i.
		if i <= 1 {
			return rootTok
		}
		return formatPath(components{Root: rootTok, Names: names[:i-1]})
	}

	for {
		if depth >= maxSymlinkDepth {
			return WalkResult{}, newIOError("walk", path, ELOOP)
		}

		basename := at(step)
		node, _ := links.Get(basename)
		lastStep := step == total()-1

		if lastStep && (noFollow || node == nil || !node.isSymlink()) {
			return WalkResult{
				Realpath: prefixUpTo(step + 1),
				Basename: basename,
				Parent:   parent,
				Links:    links,
				Node:     node,
			}, nil
		}

		if node == nil {
			return WalkResult{}, newIOError("walk", path, ENOENT)
		}

		if node.isSymlink() {
			node.mu.RLock()
			target := node.target
			node.mu.RUnlock()

			prefix := prefixUpTo(step)
			spliced := Resolve(prefix, target)
			sc := parsePath(spliced)

			remaining := append([]string{}, names[step:]...)
			names = append(append([]string{}, sc.Names...), remaining...)
			rootTok = sc.Root

			links = fs.roots
			parent = nil
			step = 0
			depth++
			continue
		}

		if node.isDir() {
			parent = node
			links = fs.getLinks(node)
			step++
			continue
		}

		return WalkResult{}, newIOError("walk", path, ENOTDIR)
	}
}
