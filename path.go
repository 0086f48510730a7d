// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import "strings"

// PathFlags selects what Validate accepts.
type PathFlags int

const (
	PathAbsolute PathFlags = 1 << iota
	PathRelative
	PathRelativeOrAbsolute = PathAbsolute | PathRelative
)

const pathSeparator = "/"

// components is the parsed form of a path: Root is "/" for an absolute
// path or "" for a relative one; Names holds the path segments left after
// normalization: "." segments are dropped and ".." entries are applied
// against earlier names, and a relative path keeps any leading ".." it
// cannot cancel.
type components struct {
	Root  string
	Names []string
}

func (c components) isAbsolute() bool { return c.Root != "" }

// parsePath splits p into a root (if absolute) and a sequence of names,
// collapsing "." segments and resolving ".." against what's already been
// collected. ".." past the root clamps at the root (spec §4.1 edge case).
func parsePath(p string) components {
	root := ""
	rest := p
	if strings.HasPrefix(p, pathSeparator) {
		root = pathSeparator
		rest = strings.TrimPrefix(p, pathSeparator)
	}

	var names []string
	for _, seg := range strings.Split(rest, pathSeparator) {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(names) > 0 {
				names = names[:len(names)-1]
			} else if root == "" {
				// Relative path climbing above its starting point: keep the ".."
				// since there is no root to clamp against.
				names = append(names, "..")
			}
			// Absolute: clamp at root by dropping the "..".
		default:
			names = append(names, seg)
		}
	}

	return components{Root: root, Names: names}
}

// formatPath renders components back into a path string.
func formatPath(c components) string {
	if len(c.Names) == 0 {
		if c.isAbsolute() {
			return c.Root
		}
		return "."
	}

	joined := strings.Join(c.Names, pathSeparator)
	if c.isAbsolute() {
		return c.Root + joined
	}
	return joined
}

// Dirname returns everything before the final component of p.
func Dirname(p string) string {
	c := parsePath(p)
	if len(c.Names) == 0 {
		return formatPath(c)
	}
	c.Names = c.Names[:len(c.Names)-1]
	return formatPath(c)
}

// Basename returns the final component of p, or "" for a root.
func Basename(p string) string {
	c := parsePath(p)
	if len(c.Names) == 0 {
		return ""
	}
	return c.Names[len(c.Names)-1]
}

// Combine joins b onto a the way filepath.Join does, without collapsing
// "." / ".." (use Resolve for that).
func Combine(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if strings.HasSuffix(a, pathSeparator) {
		return a + b
	}
	return a + pathSeparator + b
}

// Resolve joins p onto base (if p is relative) and collapses "." and ".."
// components, clamping ".." at the root.
func Resolve(base, p string) string {
	if IsAbsolutePath(p) {
		return formatPath(parsePath(p))
	}
	return formatPath(parsePath(Combine(base, p)))
}

// IsAbsolutePath reports whether p begins with a root separator.
func IsAbsolutePath(p string) bool {
	return strings.HasPrefix(p, pathSeparator)
}

// IsRoot reports whether p names the file system root.
func IsRoot(p string) bool {
	c := parsePath(p)
	return c.isAbsolute() && len(c.Names) == 0
}

// AddTrailingSeparator appends "/" to p if it doesn't already end with one.
func AddTrailingSeparator(p string) string {
	if strings.HasSuffix(p, pathSeparator) {
		return p
	}
	return p + pathSeparator
}

// Validate checks p against the given flags, returning EINVAL if it
// doesn't match.
func Validate(p string, flags PathFlags) error {
	abs := IsAbsolutePath(p)
	if abs && flags&PathAbsolute == 0 {
		return newIOError("validate", p, EINVAL)
	}
	if !abs && flags&PathRelative == 0 {
		return newIOError("validate", p, EINVAL)
	}
	return nil
}

// Comparator orders two names. It must be a total order.
type Comparator func(a, b string) int

// CaseSensitiveComparator orders names by raw byte value.
func CaseSensitiveComparator(a, b string) int {
	return strings.Compare(a, b)
}

// CaseInsensitiveComparator orders (and equates) names by
// locale-independent ASCII fold: two names differing only in case compare
// equal, matching a case-insensitive POSIX volume where such names name
// the same directory entry.
func CaseInsensitiveComparator(a, b string) int {
	return strings.Compare(asciiFold(a), asciiFold(b))
}

func asciiFold(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}
