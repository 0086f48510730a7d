// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import (
	"errors"
	"testing"

	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"
)

func TestPath(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type PathTest struct {
}

func init() { RegisterTestSuite(&PathTest{}) }

////////////////////////////////////////////////////////////////////////
// Tests
////////////////////////////////////////////////////////////////////////

func (t *PathTest) ParsesAbsolutePaths() {
	c := parsePath("/a/b/c")
	ExpectTrue(c.isAbsolute())
	ExpectThat(c.Names, ElementsAre("a", "b", "c"))
}

func (t *PathTest) CollapsesDotSegments() {
	c := parsePath("/a/./b/./c")
	ExpectThat(c.Names, ElementsAre("a", "b", "c"))
}

func (t *PathTest) ResolvesDotDotAgainstCollectedNames() {
	c := parsePath("/a/b/../c")
	ExpectThat(c.Names, ElementsAre("a", "c"))
}

func (t *PathTest) ClampsDotDotAtRoot() {
	c := parsePath("/../../a")
	ExpectThat(c.Names, ElementsAre("a"))
}

func (t *PathTest) KeepsLeadingDotDotOnRelativePaths() {
	c := parsePath("../a")
	ExpectThat(c.Names, ElementsAre("..", "a"))
}

func (t *PathTest) FormatsRoundTrip() {
	for _, p := range []string{"/", "/a", "/a/b/c"} {
		ExpectEq(p, formatPath(parsePath(p)))
	}
}

func (t *PathTest) DirnameAndBasename() {
	ExpectEq("/a/b", Dirname("/a/b/c"))
	ExpectEq("c", Basename("/a/b/c"))
	ExpectEq("/", Dirname("/a"))
	ExpectEq("", Basename("/"))
}

func (t *PathTest) DirnameOfRootIsRoot() {
	ExpectEq("/", Dirname("/"))
}

func (t *PathTest) Combine() {
	ExpectEq("/a/b", Combine("/a", "b"))
	ExpectEq("/a/b", Combine("/a/", "b"))
}

func (t *PathTest) ResolveAbsoluteIgnoresBase() {
	ExpectEq("/x/y", Resolve("/a/b", "/x/y"))
}

func (t *PathTest) ResolveRelativeJoinsOntoBase() {
	ExpectEq("/a/x", Resolve("/a/b", "../x"))
}

func (t *PathTest) ValidateRejectsWrongKind() {
	err := Validate("/a", PathRelative)
	AssertNe(nil, err)
	ExpectTrue(errors.Is(err, EINVAL))

	err = Validate("a", PathAbsolute)
	AssertNe(nil, err)
	ExpectTrue(errors.Is(err, EINVAL))
}

func (t *PathTest) CaseSensitiveComparatorDistinguishesCase() {
	ExpectNe(0, CaseSensitiveComparator("Foo", "foo"))
}

func (t *PathTest) CaseInsensitiveComparatorEquatesFoldedNames() {
	ExpectEq(0, CaseInsensitiveComparator("Foo", "foo"))
	ExpectEq(0, CaseInsensitiveComparator("FOO", "foo"))
	ExpectNe(0, CaseInsensitiveComparator("foo", "bar"))
}
