// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

// Directory-stack helpers (spec §1, §4): a thin convenience layer over
// cwd, grounded on the same read-only freeze rule as every other mutator
// ("including chdir, pushd, popd" — spec §4.9).

// Getwd returns the FS's current working directory.
func (fs *FS) Getwd() string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.cwd
}

// Chdir changes the current working directory to p, which must resolve
// to an existing directory.
func (fs *FS) Chdir(p string) (err error) {
	_, report := fs.traced("Chdir")
	defer func() { report(err) }()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err = fs.checkMutable("chdir", p); err != nil {
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
		return newIOError("chdir", p, ENOENT)
	}
	if !res.Node.isDir() {
		return newIOError("chdir", p, ENOTDIR)
	}

	fs.cwd = res.Realpath
	return nil
}

// Pushd pushes the current directory onto fs's directory stack, then
// changes to p.
func (fs *FS) Pushd(p string) error {
	fs.mu.Lock()
	if err := fs.checkMutable("pushd", p); err != nil {
		fs.mu.Unlock()
		return err
	}
	prev := fs.cwd
	fs.mu.Unlock()

	if err := fs.Chdir(p); err != nil {
		return err
	}

	fs.mu.Lock()
	fs.dirStack = append(fs.dirStack, prev)
	fs.mu.Unlock()
	return nil
}

// Popd pops the top of fs's directory stack and changes back to it.
// EINVAL if the stack is empty.
func (fs *FS) Popd() error {
	fs.mu.Lock()
	if err := fs.checkMutable("popd", ""); err != nil {
		fs.mu.Unlock()
		return err
	}
	if len(fs.dirStack) == 0 {
		fs.mu.Unlock()
		return newIOError("popd", "", EINVAL)
	}
	top := fs.dirStack[len(fs.dirStack)-1]
	fs.dirStack = fs.dirStack[:len(fs.dirStack)-1]
	fs.mu.Unlock()

	return fs.Chdir(top)
}
