// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import "errors"

// MkdirpSync creates p and any missing ancestor directories, tolerating
// directories that already exist (spec §1: "recursive mkdir").
func (fs *FS) MkdirpSync(p string) (err error) {
	_, report := fs.traced("MkdirpSync")
	defer func() { report(err) }()

	fs.mu.RLock()
	rp, err := fs.resolve(p)
	fs.mu.RUnlock()
	if err != nil {
		return err
	}

	c := parsePath(rp)
	cur := c.Root
	for _, name := range c.Names {
		cur = Combine(cur, name)

		mkErr := fs.MkdirSync(cur)
		if mkErr == nil {
			continue
		}
		if !errors.Is(mkErr, EEXIST) {
			return mkErr
		}

		st, statErr := fs.StatSync(cur)
		if statErr != nil {
			return statErr
		}
		if !st.IsDir() {
			return newIOError("mkdirp", cur, ENOTDIR)
		}
	}

	return nil
}

// RimrafSync recursively removes whatever is at p. A missing p is not an
// error (spec scenario S7: "rimrafSync on a missing path completes
// without error").
func (fs *FS) RimrafSync(p string) (err error) {
	_, report := fs.traced("RimrafSync")
	defer func() { report(err) }()

	fs.mu.RLock()
	rp, err := fs.resolve(p)
	fs.mu.RUnlock()
	if err != nil {
		return err
	}

	st, err := fs.LstatSync(rp)
	if err != nil {
		if errors.Is(err, ENOENT) {
			return nil
		}
		return err
	}

	if st.IsDir() {
		names, err := fs.ReaddirSync(rp)
		if err != nil {
			return err
		}
		for _, name := range names {
			if err := fs.RimrafSync(Combine(rp, name)); err != nil {
				return err
			}
		}
		return fs.RmdirSync(rp)
	}

	return fs.UnlinkSync(rp)
}
