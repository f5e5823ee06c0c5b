// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksync

import (
	"time"
)

type timeoutKind uint8

const (
	kindNoWait timeoutKind = iota
	kindForever
	kindAfter
)

// Timeout selects how long a blocking operation may wait.
//
// The zero value is [NoWait]. Timeouts are immutable values; construct
// bounded ones with [After].
type Timeout struct {
	kind timeoutKind
	d    time.Duration
}

var (
	// NoWait never blocks; the operation fails with [ErrWouldBlock]
	// when it cannot complete immediately.
	NoWait = Timeout{}

	// Forever waits until the operation completes or is cancelled.
	Forever = Timeout{kind: kindForever}
)

// After returns a Timeout that expires d after the operation starts
// waiting. A non-positive d is the same as [NoWait].
func After(d time.Duration) Timeout {
	if d <= 0 {
		return NoWait
	}
	return Timeout{kind: kindAfter, d: d}
}

// IsNoWait reports whether t never blocks.
func (t Timeout) IsNoWait() bool { return t.kind == kindNoWait }

// IsForever reports whether t never expires.
func (t Timeout) IsForever() bool { return t.kind == kindForever }

// Duration returns the bound of an [After] timeout. ok is false for
// [Forever] and [NoWait].
func (t Timeout) Duration() (d time.Duration, ok bool) {
	if t.kind != kindAfter {
		return 0, false
	}
	return t.d, true
}

// deadline derives the absolute expiry from now. bounded is false for
// Forever.
func (t Timeout) deadline(now time.Time) (at time.Time, bounded bool) {
	switch t.kind {
	case kindForever:
		return time.Time{}, false
	case kindAfter:
		return now.Add(t.d), true
	}
	return now, true
}

func (t Timeout) String() string {
	switch t.kind {
	case kindForever:
		return "Forever"
	case kindAfter:
		return "After(" + t.d.String() + ")"
	}
	return "NoWait"
}
