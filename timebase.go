// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksync

import (
	"sync"
	"time"

	"code.hybscloud.com/ksync/internal/timeq"
)

// Timebase supplies current time and expires bounded waits.
//
// Objects built without an explicit Timebase share [DefaultTimebase].
// Tests use [NewManualTimebase] to make expiry deterministic:
//
//	tb := ksync.NewManualTimebase(time.Unix(0, 0))
//	q, _ := ksync.BuildMessageQueue(ksync.Configure().Timebase(tb), make([]int, 4))
//	go q.Get(nil, ksync.After(time.Second))
//	// once the Get is blocked:
//	tb.Advance(time.Second) // the Get returns ErrTimedOut
type Timebase struct {
	q      *timeq.Queue
	shared bool
}

// NewTimebase creates a wall-clock Timebase. One goroutine fires its
// deadlines; it starts on the first bounded wait and exits on Stop.
func NewTimebase() *Timebase {
	return &Timebase{q: timeq.New()}
}

// NewManualTimebase creates a Timebase whose clock reads start and only
// moves through Advance.
func NewManualTimebase(start time.Time) *Timebase {
	return &Timebase{q: timeq.NewManual(start)}
}

var defaultTimebase = sync.OnceValue(func() *Timebase {
	return &Timebase{q: timeq.New(), shared: true}
})

// DefaultTimebase returns the shared wall-clock Timebase. Stop on it is a
// no-op.
func DefaultTimebase() *Timebase {
	return defaultTimebase()
}

// Now returns the current time.
func (tb *Timebase) Now() time.Time { return tb.q.Now() }

// Advance moves a manual clock forward by d and expires every wait whose
// deadline has passed, on the calling goroutine. It panics on a
// wall-clock Timebase.
func (tb *Timebase) Advance(d time.Duration) { tb.q.Advance(d) }

// Pending returns the number of armed deadlines.
func (tb *Timebase) Pending() int { return tb.q.Len() }

// Stop releases the timer goroutine and expires every armed wait at once
// with ErrTimedOut. A bounded wait that starts after Stop times out
// immediately. Forever waits are unaffected. Stop is a no-op on
// DefaultTimebase.
func (tb *Timebase) Stop() {
	if tb.shared {
		return
	}
	tb.q.Stop()
}

// arm schedules fn at the deadline of t. It returns nil for Forever.
func (tb *Timebase) arm(t Timeout, fn func()) *timeq.Entry {
	at, bounded := t.deadline(tb.q.Now())
	if !bounded {
		return nil
	}
	return tb.q.Schedule(at, fn)
}

func (tb *Timebase) disarm(e *timeq.Entry) {
	if e != nil {
		tb.q.Cancel(e)
	}
}
