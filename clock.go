// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package vfs

import (
	"time"

	"github.com/jacobsa/timeutil"
)

// NowMillis is the sentinel clock value meaning "use wall-clock now"
// (spec §9).
const NowMillis int64 = -1

// Clock is the time source an FS consults for every timestamp it stamps.
// It is deliberately just timeutil.Clock: the teacher's own
// dependency-injected clock, shared with every test in this module via
// timeutil.SimulatedClock.
type Clock = timeutil.Clock

// ClockSource is anything the spec allows as a clock: a fixed millisecond
// value, a timeutil.Clock, or a zero-argument callable returning
// milliseconds. AsClock normalizes all three to a timeutil.Clock.
type ClockSource interface{}

// AsClock converts a ClockSource into a timeutil.Clock. NowMillis (-1)
// stands for wall-clock time, matching the spec's sentinel.
func AsClock(src ClockSource) timeutil.Clock {
	switch v := src.(type) {
	case nil:
		return timeutil.RealClock()
	case timeutil.Clock:
		return v
	case int64:
		return fixedClock(v)
	case func() int64:
		return callableClock(v)
	default:
		panic("vfs: unsupported clock source")
	}
}

type fixedClock int64

func (f fixedClock) Now() time.Time {
	if int64(f) == NowMillis {
		return time.Now()
	}
	return millisToTime(int64(f))
}

type callableClock func() int64

func (f callableClock) Now() time.Time {
	v := f()
	if v == NowMillis {
		return time.Now()
	}
	return millisToTime(v)
}

func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

func timeToMillis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}
