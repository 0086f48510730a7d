// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// Errno values corresponding to the fixed set of POSIX-style codes an
// IOError may carry. These alias golang.org/x/sys/unix rather than a
// hand-rolled enum so that callers who already pattern-match on
// syscall.Errno (as they would against a real os.PathError) keep working
// against this harness.
const (
	EACCES    = syscall.Errno(unix.EACCES)
	EIO       = syscall.Errno(unix.EIO)
	ENOENT    = syscall.Errno(unix.ENOENT)
	EEXIST    = syscall.Errno(unix.EEXIST)
	ELOOP     = syscall.Errno(unix.ELOOP)
	ENOTDIR   = syscall.Errno(unix.ENOTDIR)
	EISDIR    = syscall.Errno(unix.EISDIR)
	EBADF     = syscall.Errno(unix.EBADF)
	EINVAL    = syscall.Errno(unix.EINVAL)
	ENOTEMPTY = syscall.Errno(unix.ENOTEMPTY)
	EPERM     = syscall.Errno(unix.EPERM)
	EROFS     = syscall.Errno(unix.EROFS)
)

// IOError is returned by every mutating or resolving operation in this
// package that fails for a POSIX-like reason. Callers must pattern-match on
// Code, never on Error()'s text.
type IOError struct {
	Code syscall.Errno

	// Op and Path identify what was being attempted, for the human-readable
	// message only.
	Op   string
	Path string
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Code.Error())
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code.Error())
}

// Is allows errors.Is(err, vfs.ENOENT) style matching.
func (e *IOError) Is(target error) bool {
	errno, ok := target.(syscall.Errno)
	return ok && e.Code == errno
}

func newIOError(op, path string, code syscall.Errno) *IOError {
	return &IOError{Op: op, Path: path, Code: code}
}

// typeError signals a malformed FileSet literal in Apply (spec §7: a
// programming error, never an IOError).
type typeError struct {
	msg string
}

func (e *typeError) Error() string { return e.msg }

func newTypeError(format string, args ...interface{}) error {
	return &typeError{msg: fmt.Sprintf(format, args...)}
}
