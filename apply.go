// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import (
	"errors"
	"sort"
)

// FileSet is a declarative tree literal (spec §4.8): keys are names of
// children of the directory it is applied to (cwd for Apply, basePath for
// ApplyAt), values are the same kinds of entry a Directory holds. Nested
// Directory values describe the subtree the same way, recursively.
type FileSet map[string]interface{}

// Directory is a nested FileSet entry: a map from child name to a
// Directory, file content, or one of File/Link/Symlink/Mount/nil.
type Directory = map[string]interface{}

// File wraps regular-file content plus optional metadata for a FileSet
// entry, when a bare string or []byte isn't enough.
type File struct {
	Data     []byte
	Text     string // used when Data is nil
	Encoding string // decorative; only UTF-8 text is actually supported
	Meta     map[string]interface{}
}

// Link requests a hard link to Path be created at this entry's position.
type Link struct {
	Path string
}

// Symlink requests a symlink whose stored text is Target.
type Symlink struct {
	Target string
	Meta   map[string]interface{}
}

// Mount requests a lazily-expanded mount, as MountSync.
type Mount struct {
	Source   string
	Resolver FileSystemResolver
	Meta     map[string]interface{}
}

type deleteOp struct{}

type deferredEntry struct {
	path string
	op   interface{} // deleteOp, *Link, *Symlink, or *Mount
}

// Apply populates fs, relative to its current working directory, from
// fileSet in two phases (spec §4.8): first every directory and file's
// content is created, then every deferred link/symlink/mount/delete is
// resolved in discovery order, so that a link's source or a symlink's
// lexical target is guaranteed to already exist.
func (fs *FS) Apply(fileSet FileSet) error {
	return fs.ApplyAt(".", fileSet)
}

// ApplyAt is Apply with an explicit base directory in place of cwd (spec
// §4.8: "relative to the enclosing directory or, at the top level, to
// the FS's cwd"). basePath must already exist and be a directory; since
// Apply never replaces the directory at basePath itself, only writes
// children into it, an FS root can never be handed a non-directory value
// through Apply ("roots may not be symlinks, hard links, files, or
// deletions") — that restriction holds by construction.
func (fs *FS) ApplyAt(basePath string, fileSet FileSet) error {
	if fs.IsReadOnly() {
		return newIOError("apply", basePath, EROFS)
	}

	fs.mu.RLock()
	rp, err := fs.resolve(basePath)
	fs.mu.RUnlock()
	if err != nil {
		return err
	}

	st, err := fs.StatSync(rp)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return newIOError("apply", rp, ENOTDIR)
	}

	var deferred []deferredEntry
	if err := fs.applyDirectory(rp, fileSet, &deferred); err != nil {
		return err
	}

	for _, d := range deferred {
		if err := fs.applyDeferred(d); err != nil {
			return err
		}
	}

	return nil
}

// applyDirectory is phase one: create basePath's children, recursing into
// nested directories and writing file content immediately. Anything that
// must wait for phase two is appended to deferred.
func (fs *FS) applyDirectory(basePath string, dir Directory, deferred *[]deferredEntry) error {
	names := make([]string, 0, len(dir))
	for name := range dir {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		childPath := Combine(basePath, name)

		switch v := dir[name].(type) {
		case Directory:
			if err := fs.MkdirSync(childPath); err != nil && !errors.Is(err, EEXIST) {
				return err
			}
			if err := fs.applyDirectory(childPath, v, deferred); err != nil {
				return err
			}

		case string:
			if err := fs.WriteFileString(childPath, v); err != nil {
				return err
			}

		case []byte:
			if err := fs.WriteFileSync(childPath, v); err != nil {
				return err
			}

		case *File:
			data := v.Data
			if data == nil {
				data = []byte(v.Text)
			}
			if err := fs.WriteFileSync(childPath, data); err != nil {
				return err
			}
			if v.Meta != nil {
				if err := fs.mergeMeta(childPath, v.Meta); err != nil {
					return err
				}
			}

		case nil:
			*deferred = append(*deferred, deferredEntry{path: childPath, op: deleteOp{}})

		case *Link:
			*deferred = append(*deferred, deferredEntry{path: childPath, op: v})

		case *Symlink:
			*deferred = append(*deferred, deferredEntry{path: childPath, op: v})

		case *Mount:
			*deferred = append(*deferred, deferredEntry{path: childPath, op: v})

		default:
			return newTypeError("apply: %s: unsupported value type %T", childPath, dir[name])
		}
	}

	return nil
}

func (fs *FS) applyDeferred(d deferredEntry) error {
	switch op := d.op.(type) {
	case deleteOp:
		return fs.applyDelete(d.path)

	case *Link:
		return fs.LinkSync(op.Path, d.path)

	case *Symlink:
		if err := fs.SymlinkSync(op.Target, d.path); err != nil {
			return err
		}
		if op.Meta != nil {
			return fs.mergeMeta(d.path, op.Meta)
		}
		return nil

	case *Mount:
		if err := fs.MountSync(op.Source, d.path, op.Resolver); err != nil {
			return err
		}
		if op.Meta != nil {
			return fs.mergeMeta(d.path, op.Meta)
		}
		return nil
	}

	return nil
}

func (fs *FS) applyDelete(path string) error {
	return fs.RimrafSync(path)
}

func (fs *FS) mergeMeta(path string, meta map[string]interface{}) error {
	m, err := fs.Filemeta(path)
	if err != nil {
		return err
	}
	for k, v := range meta {
		m[k] = v
	}
	return nil
}
