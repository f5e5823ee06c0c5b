// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package timeq implements the deadline queue behind bounded waits.
//
// A Queue keeps armed deadlines in a min-heap. In wall-clock mode a single
// goroutine sleeps until the earliest deadline and runs its callback; in
// manual mode time only moves when Advance is called, and due callbacks run
// on the caller's goroutine. Callbacks always run without the queue lock
// held, so they may take locks of their own and may call Cancel or Schedule.
package timeq

import (
	"container/heap"
	"sync"
	"time"
)

// Queue is a deadline queue. All methods are safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	h       entryHeap
	seq     uint64
	manual  bool
	now     time.Time // manual mode only
	started bool
	stopped bool

	notify chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a wall-clock Queue. The timer goroutine starts on the first
// Schedule call.
func New() *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// NewManual creates a Queue whose clock starts at start and only moves
// forward through Advance.
func NewManual(start time.Time) *Queue {
	q := New()
	q.manual = true
	q.now = start
	return q
}

// Manual reports whether q runs on a manual clock.
func (q *Queue) Manual() bool { return q.manual }

// Now returns the current time of q's clock.
func (q *Queue) Now() time.Time {
	if !q.manual {
		return time.Now()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.now
}

// Schedule arms fn to run once at or after at.
func (q *Queue) Schedule(at time.Time, fn func()) *Entry {
	q.mu.Lock()
	q.seq++
	e := &Entry{at: at, seq: q.seq, fn: fn, idx: -1}
	if q.stopped {
		q.mu.Unlock()
		go fn()
		return e
	}
	heap.Push(&q.h, e)
	if !q.manual && !q.started {
		q.started = true
		q.wg.Add(1)
		go q.run()
	}
	q.mu.Unlock()

	if !q.manual {
		select {
		case q.notify <- struct{}{}:
		default:
		}
	}
	return e
}

// Cancel disarms e. It reports false when e already fired or was cancelled.
func (q *Queue) Cancel(e *Entry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e == nil || e.idx < 0 {
		return false
	}
	heap.Remove(&q.h, e.idx)
	return true
}

// Len returns the number of armed deadlines.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}

// Advance moves a manual clock forward by d and runs every callback whose
// deadline is now due, in deadline order. It panics on a wall-clock Queue.
func (q *Queue) Advance(d time.Duration) {
	if !q.manual {
		panic("timeq: Advance on wall-clock queue")
	}
	q.mu.Lock()
	q.now = q.now.Add(d)
	now := q.now
	q.mu.Unlock()
	for {
		e := q.popDue(now)
		if e == nil {
			return
		}
		e.fn()
	}
}

// Stop shuts down the timer goroutine and runs every callback still armed,
// in deadline order, on the calling goroutine. Later Schedule calls run
// their callback at once. Stop is idempotent.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.done)
	pending := make([]*Entry, 0, len(q.h))
	for len(q.h) > 0 {
		pending = append(pending, heap.Pop(&q.h).(*Entry))
	}
	q.mu.Unlock()
	q.wg.Wait()

	for _, e := range pending {
		e.fn()
	}
}

// Stopped reports whether Stop has been called.
func (q *Queue) Stopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}

// popDue removes and returns the earliest entry if it is due at now.
func (q *Queue) popDue(now time.Time) *Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 || q.h[0].at.After(now) {
		return nil
	}
	return heap.Pop(&q.h).(*Entry)
}

// next returns the earliest deadline, ok is false when nothing is armed.
func (q *Queue) next() (at time.Time, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 {
		return time.Time{}, false
	}
	return q.h[0].at, true
}

func (q *Queue) run() {
	defer q.wg.Done()

	var t *time.Timer
	defer func() {
		if t != nil {
			t.Stop()
		}
	}()

	for {
		at, ok := q.next()
		if !ok {
			select {
			case <-q.done:
				return
			case <-q.notify:
			}
			continue
		}

		delay := time.Until(at)
		if delay <= 0 {
			if e := q.popDue(time.Now()); e != nil {
				e.fn()
			}
			continue
		}

		if t == nil {
			t = time.NewTimer(delay)
		} else {
			t.Reset(delay)
		}

		select {
		case <-q.done:
			return
		case <-q.notify:
			// Go 1.23 timers: no stale value survives Stop and Reset.
			t.Stop()
		case <-t.C:
		}
	}
}
