// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import "sort"

// nameMap is a sorted associative container from child name to inode,
// ordered by an FS-wide Comparator. Deterministic iteration via Keys is
// what makes readdirSync output reproducible (spec §4.2).
type nameMap struct {
	cmp     Comparator
	names   []string
	inodes  []*inode
}

func newNameMap(cmp Comparator) *nameMap {
	return &nameMap{cmp: cmp}
}

// search returns the index at which name is or would be inserted, and
// whether it is present.
func (m *nameMap) search(name string) (int, bool) {
	i := sort.Search(len(m.names), func(i int) bool {
		return m.cmp(m.names[i], name) >= 0
	})
	if i < len(m.names) && m.cmp(m.names[i], name) == 0 {
		return i, true
	}
	return i, false
}

func (m *nameMap) Get(name string) (*inode, bool) {
	i, ok := m.search(name)
	if !ok {
		return nil, false
	}
	return m.inodes[i], true
}

// Set inserts or overwrites the entry for name.
func (m *nameMap) Set(name string, in *inode) {
	i, ok := m.search(name)
	if ok {
		m.names[i] = name
		m.inodes[i] = in
		return
	}
	m.names = append(m.names, "")
	copy(m.names[i+1:], m.names[i:])
	m.names[i] = name

	m.inodes = append(m.inodes, nil)
	copy(m.inodes[i+1:], m.inodes[i:])
	m.inodes[i] = in
}

// Delete removes the entry for name, if any.
func (m *nameMap) Delete(name string) {
	i, ok := m.search(name)
	if !ok {
		return
	}
	m.names = append(m.names[:i], m.names[i+1:]...)
	m.inodes = append(m.inodes[:i], m.inodes[i+1:]...)
}

func (m *nameMap) Len() int { return len(m.names) }

// Keys returns the child names in comparator order.
func (m *nameMap) Keys() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Entries returns (name, inode) pairs in comparator order.
func (m *nameMap) Entries() []struct {
	Name string
	Ino  *inode
} {
	out := make([]struct {
		Name string
		Ino  *inode
	}, len(m.names))
	for i := range m.names {
		out[i].Name = m.names[i]
		out[i].Ino = m.inodes[i]
	}
	return out
}
