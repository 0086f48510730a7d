// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

// A hand-written oglemock mock for FileSystemResolver, in the shape
// createmock would produce (see github.com/jacobsa/oglemock).

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/jacobsa/oglemock"
)

type MockFileSystemResolver interface {
	FileSystemResolver
	oglemock.MockObject
}

type mockFileSystemResolver struct {
	controller  oglemock.Controller
	description string
}

func NewMockFileSystemResolver(
	c oglemock.Controller,
	desc string) MockFileSystemResolver {
	return &mockFileSystemResolver{
		controller:  c,
		description: desc,
	}
}

func (m *mockFileSystemResolver) Oglemock_Id() uintptr {
	return uintptr(unsafe.Pointer(m))
}

func (m *mockFileSystemResolver) Oglemock_Description() string {
	return m.description
}

func (m *mockFileSystemResolver) StatSync(p0 string) (o0 ResolverStat, o1 error) {
	_, file, line, _ := runtime.Caller(1)

	retVals := m.controller.HandleMethodCall(
		m,
		"StatSync",
		file,
		line,
		[]interface{}{p0})

	if len(retVals) != 2 {
		panic(fmt.Sprintf("mockFileSystemResolver.StatSync: invalid return values: %v", retVals))
	}

	if retVals[0] != nil {
		o0 = retVals[0].(ResolverStat)
	}
	if retVals[1] != nil {
		o1 = retVals[1].(error)
	}

	return
}

func (m *mockFileSystemResolver) ReaddirSync(p0 string) (o0 []string, o1 error) {
	_, file, line, _ := runtime.Caller(1)

	retVals := m.controller.HandleMethodCall(
		m,
		"ReaddirSync",
		file,
		line,
		[]interface{}{p0})

	if len(retVals) != 2 {
		panic(fmt.Sprintf("mockFileSystemResolver.ReaddirSync: invalid return values: %v", retVals))
	}

	if retVals[0] != nil {
		o0 = retVals[0].([]string)
	}
	if retVals[1] != nil {
		o1 = retVals[1].(error)
	}

	return
}

func (m *mockFileSystemResolver) ReadFileSync(p0 string) (o0 []byte, o1 error) {
	_, file, line, _ := runtime.Caller(1)

	retVals := m.controller.HandleMethodCall(
		m,
		"ReadFileSync",
		file,
		line,
		[]interface{}{p0})

	if len(retVals) != 2 {
		panic(fmt.Sprintf("mockFileSystemResolver.ReadFileSync: invalid return values: %v", retVals))
	}

	if retVals[0] != nil {
		o0 = retVals[0].([]byte)
	}
	if retVals[1] != nil {
		o1 = retVals[1].(error)
	}

	return
}
