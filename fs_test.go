// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import (
	"errors"
	"testing"

	"github.com/jacobsa/oglemock"
	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"
)

func TestFS(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type FSTest struct {
	fs   *FS
	ctrl oglemock.Controller
}

func init() { RegisterTestSuite(&FSTest{}) }

func (t *FSTest) SetUp(ti *TestInfo) {
	t.fs = NewFS()
	t.ctrl = ti.MockController
}

////////////////////////////////////////////////////////////////////////
// S1 — basic write/stat/read
////////////////////////////////////////////////////////////////////////

func (t *FSTest) BasicWriteStatRead() {
	AssertEq(nil, t.fs.MkdirSync("/a"))
	AssertEq(nil, t.fs.WriteFileString("/a/b.txt", "hi"))

	st, err := t.fs.StatSync("/a/b.txt")
	AssertEq(nil, err)
	ExpectEq(2, st.Size)

	data, err := t.fs.ReadFileString("/a/b.txt")
	AssertEq(nil, err)
	ExpectEq("hi", data)

	names, err := t.fs.ReaddirSync("/a")
	AssertEq(nil, err)
	ExpectThat(names, ElementsAre("b.txt"))
}

////////////////////////////////////////////////////////////////////////
// S2 — rename across directories
////////////////////////////////////////////////////////////////////////

func (t *FSTest) RenameAcrossDirectories() {
	AssertEq(nil, t.fs.MkdirSync("/a"))
	AssertEq(nil, t.fs.WriteFileString("/a/b.txt", "hi"))

	before, err := t.fs.StatSync("/a/b.txt")
	AssertEq(nil, err)

	AssertEq(nil, t.fs.MkdirSync("/c"))
	AssertEq(nil, t.fs.RenameSync("/a/b.txt", "/c/b.txt"))

	names, err := t.fs.ReaddirSync("/a")
	AssertEq(nil, err)
	ExpectThat(names, ElementsAre())

	data, err := t.fs.ReadFileString("/c/b.txt")
	AssertEq(nil, err)
	ExpectEq("hi", data)

	after, err := t.fs.StatSync("/c/b.txt")
	AssertEq(nil, err)
	ExpectEq(before.Ino, after.Ino)
}

////////////////////////////////////////////////////////////////////////
// S3 — symlink follow
////////////////////////////////////////////////////////////////////////

func (t *FSTest) SymlinkFollow() {
	AssertEq(nil, t.fs.MkdirSync("/c"))
	AssertEq(nil, t.fs.WriteFileString("/c/b.txt", "hi"))
	AssertEq(nil, t.fs.SymlinkSync("/c/b.txt", "/link"))

	st, err := t.fs.StatSync("/link")
	AssertEq(nil, err)
	ExpectTrue(st.IsFile())

	lst, err := t.fs.LstatSync("/link")
	AssertEq(nil, err)
	ExpectTrue(lst.IsSymlink())

	real, err := t.fs.RealpathSync("/link")
	AssertEq(nil, err)
	ExpectEq("/c/b.txt", real)
}

////////////////////////////////////////////////////////////////////////
// S4 — ELOOP
////////////////////////////////////////////////////////////////////////

func (t *FSTest) SymlinkCycleFailsELOOP() {
	AssertEq(nil, t.fs.SymlinkSync("/x", "/y"))
	AssertEq(nil, t.fs.SymlinkSync("/y", "/x"))

	_, err := t.fs.StatSync("/x")
	AssertNe(nil, err)
	ExpectTrue(errors.Is(err, ELOOP))
}

func (t *FSTest) SymlinkChainOfDepth39Resolves() {
	// A chain a38 -> a37 -> ... -> a0 -> "/target" is 39 hops (not a cycle);
	// depth counts splices, so this must resolve (spec testable property 6).
	AssertEq(nil, t.fs.WriteFileString("/target", "hi"))

	prev := "/target"
	for i := 0; i < 39; i++ {
		name := "/a" + itoa(i)
		AssertEq(nil, t.fs.SymlinkSync(prev, name))
		prev = name
	}

	_, err := t.fs.StatSync(prev)
	ExpectEq(nil, err)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}

////////////////////////////////////////////////////////////////////////
// S5 — shadow isolation
////////////////////////////////////////////////////////////////////////

func (t *FSTest) ShadowIsolation() {
	a := NewFS()
	AssertEq(nil, a.MkdirSync("/a"))
	AssertEq(nil, a.WriteFileString("/a/b.txt", "original"))
	a.MakeReadonly()

	b, err := a.Shadow()
	AssertEq(nil, err)

	AssertEq(nil, b.WriteFileString("/a/b.txt", "bye"))

	bData, err := b.ReadFileString("/a/b.txt")
	AssertEq(nil, err)
	ExpectEq("bye", bData)

	aData, err := a.ReadFileString("/a/b.txt")
	AssertEq(nil, err)
	ExpectEq("original", aData)
}

func (t *FSTest) ShadowFallsThroughForUnshadowedNames() {
	a := NewFS()
	AssertEq(nil, a.MkdirSync("/a"))
	AssertEq(nil, a.WriteFileString("/a/untouched.txt", "same"))
	a.MakeReadonly()

	b, err := a.Shadow()
	AssertEq(nil, err)

	data, err := b.ReadFileString("/a/untouched.txt")
	AssertEq(nil, err)
	ExpectEq("same", data)
}

func (t *FSTest) ShadowRequiresReadOnlySource() {
	a := NewFS()
	_, err := a.Shadow()
	AssertNe(nil, err)
	ExpectTrue(errors.Is(err, EINVAL))
}

////////////////////////////////////////////////////////////////////////
// S6 — mount laziness
////////////////////////////////////////////////////////////////////////

type countingResolver struct {
	readFileCalls int
}

func (r *countingResolver) StatSync(p string) (ResolverStat, error) {
	if p == "/src/f" {
		return ResolverStat{Mode: modeRegular | 0o644, Size: 3}, nil
	}
	return ResolverStat{}, errors.New("not found")
}

func (r *countingResolver) ReaddirSync(p string) ([]string, error) {
	if p == "/src" {
		return []string{"f"}, nil
	}
	return nil, errors.New("not found")
}

func (r *countingResolver) ReadFileSync(p string) ([]byte, error) {
	r.readFileCalls++
	return []byte("abc"), nil
}

func (t *FSTest) MountLaziness_OglemockResolver() {
	resolver := NewMockFileSystemResolver(t.ctrl, "resolver")

	ExpectCall(resolver, "ReaddirSync")(Any()).
		WillOnce(oglemock.Return([]string{"f"}, nil))
	ExpectCall(resolver, "StatSync")(Any()).
		WillOnce(oglemock.Return(ResolverStat{Mode: modeRegular | 0o644, Size: 3}, nil))

	AssertEq(nil, t.fs.MountSync("/src", "/m", resolver))

	ExpectCall(resolver, "ReadFileSync")(Any()).
		WillOnce(oglemock.Return([]byte("abc"), nil))

	data, err := t.fs.ReadFileString("/m/f")
	AssertEq(nil, err)
	ExpectEq("abc", data)
}

func (t *FSTest) MountLaziness() {
	resolver := &countingResolver{}
	AssertEq(nil, t.fs.MountSync("/src", "/m", resolver))
	ExpectEq(0, resolver.readFileCalls)

	data, err := t.fs.ReadFileString("/m/f")
	AssertEq(nil, err)
	ExpectEq("abc", data)
	ExpectEq(1, resolver.readFileCalls)

	_, err = t.fs.ReadFileString("/m/f")
	AssertEq(nil, err)
	ExpectEq(1, resolver.readFileCalls)
}

////////////////////////////////////////////////////////////////////////
// S7 — rimraf on missing
////////////////////////////////////////////////////////////////////////

func (t *FSTest) RimrafOnMissingCompletesWithoutError() {
	ExpectEq(nil, t.fs.RimrafSync("/does/not/exist"))
}

////////////////////////////////////////////////////////////////////////
// Read-only guard (testable property 8)
////////////////////////////////////////////////////////////////////////

func (t *FSTest) ReadOnlyGuardRejectsMutation() {
	t.fs.MakeReadonly()

	ExpectTrue(errors.Is(t.fs.MkdirSync("/a"), EROFS))
	ExpectTrue(errors.Is(t.fs.WriteFileString("/a", "x"), EROFS))
	ExpectTrue(errors.Is(t.fs.SetClock(NowMillis), EPERM))
}

////////////////////////////////////////////////////////////////////////
// Other operation edge cases
////////////////////////////////////////////////////////////////////////

func (t *FSTest) MkdirExistingFailsEEXIST() {
	AssertEq(nil, t.fs.MkdirSync("/a"))
	err := t.fs.MkdirSync("/a")
	ExpectTrue(errors.Is(err, EEXIST))
}

func (t *FSTest) RmdirNonEmptyFailsENOTEMPTY() {
	AssertEq(nil, t.fs.MkdirSync("/a"))
	AssertEq(nil, t.fs.WriteFileString("/a/b.txt", "x"))
	ExpectTrue(errors.Is(t.fs.RmdirSync("/a"), ENOTEMPTY))
}

func (t *FSTest) RmdirRootFailsEPERM() {
	ExpectTrue(errors.Is(t.fs.RmdirSync("/"), EPERM))
}

func (t *FSTest) LinkIncrementsNlink() {
	AssertEq(nil, t.fs.WriteFileString("/a.txt", "x"))
	AssertEq(nil, t.fs.LinkSync("/a.txt", "/b.txt"))

	st, err := t.fs.StatSync("/a.txt")
	AssertEq(nil, err)
	ExpectEq(2, st.Nlink)

	data, err := t.fs.ReadFileString("/b.txt")
	AssertEq(nil, err)
	ExpectEq("x", data)
}

func (t *FSTest) LinkDirectoryFailsEPERM() {
	AssertEq(nil, t.fs.MkdirSync("/a"))
	ExpectTrue(errors.Is(t.fs.LinkSync("/a", "/b"), EPERM))
}

func (t *FSTest) UnlinkDirectoryFailsEISDIR() {
	AssertEq(nil, t.fs.MkdirSync("/a"))
	ExpectTrue(errors.Is(t.fs.UnlinkSync("/a"), EISDIR))
}

func (t *FSTest) ReadFileRoundTripIsIsolatedCopy() {
	data := []byte("hello")
	AssertEq(nil, t.fs.WriteFileSync("/a.txt", data))

	got, err := t.fs.ReadFileSync("/a.txt")
	AssertEq(nil, err)
	AssertEq("hello", string(got))

	got[0] = 'X'
	again, err := t.fs.ReadFileSync("/a.txt")
	AssertEq(nil, err)
	ExpectEq("hello", string(again))
}

func (t *FSTest) FilemetaIsPersistentPerPath() {
	AssertEq(nil, t.fs.WriteFileString("/a.txt", "x"))

	m, err := t.fs.Filemeta("/a.txt")
	AssertEq(nil, err)
	m["owner"] = "alice"

	m2, err := t.fs.Filemeta("/a.txt")
	AssertEq(nil, err)
	ExpectEq("alice", m2["owner"])
}

func (t *FSTest) PushdPopdRoundTrip() {
	AssertEq(nil, t.fs.MkdirSync("/a"))
	ExpectEq("/", t.fs.Getwd())

	AssertEq(nil, t.fs.Pushd("/a"))
	ExpectEq("/a", t.fs.Getwd())

	AssertEq(nil, t.fs.Popd())
	ExpectEq("/", t.fs.Getwd())

	ExpectNe(nil, t.fs.Popd())
}

func (t *FSTest) MkdirpCreatesMissingAncestors() {
	AssertEq(nil, t.fs.MkdirpSync("/a/b/c"))

	st, err := t.fs.StatSync("/a/b/c")
	AssertEq(nil, err)
	ExpectTrue(st.IsDir())
}

func (t *FSTest) RimrafRemovesWholeSubtree() {
	AssertEq(nil, t.fs.MkdirpSync("/a/b"))
	AssertEq(nil, t.fs.WriteFileString("/a/b/f.txt", "x"))

	AssertEq(nil, t.fs.RimrafSync("/a"))

	_, err := t.fs.StatSync("/a")
	ExpectTrue(errors.Is(err, ENOENT))
}
