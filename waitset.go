// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksync

import (
	"container/heap"
	"sync"

	"code.hybscloud.com/ksync/internal/timeq"
)

// Waiter dispositions. A waiter leaves dispPending exactly once.
const (
	dispPending uint64 = iota
	dispGranted
	dispTimedOut
	dispPurged
	dispReset
)

// waiter is one blocked caller. item carries the message a blocked
// producer offers, or receives the message handed to a blocked consumer.
type waiter[T any] struct {
	prio  int
	seq   uint64
	idx   int // heap position, -1 once removed
	state uint64 // guarded by the owning object's lock until ready closes
	ready chan struct{}
	timer *timeq.Entry
	item  T
}

// finish records the terminal disposition and resumes the waiter. The
// caller holds the owning object's lock. It reports false if a disposition
// was already recorded.
func (w *waiter[T]) finish(disp uint64) bool {
	if w.state != dispPending {
		return false
	}
	w.state = disp
	close(w.ready)
	return true
}

// wait parks until finish and maps the disposition to an error.
func (w *waiter[T]) wait() error {
	<-w.ready
	switch w.state {
	case dispGranted:
		return nil
	case dispTimedOut:
		return ErrTimedOut
	case dispPurged:
		return ErrPurged
	default:
		return ErrReset
	}
}

type waiterHeap[T any] []*waiter[T]

func (h waiterHeap[T]) Len() int { return len(h) }

// Less puts higher priority first, then earlier arrival.
func (h waiterHeap[T]) Less(i, j int) bool {
	if h[i].prio != h[j].prio {
		return h[i].prio > h[j].prio
	}
	return h[i].seq < h[j].seq
}

func (h waiterHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].idx = i
	h[j].idx = j
}

func (h *waiterHeap[T]) Push(x any) {
	w := x.(*waiter[T])
	w.idx = len(*h)
	*h = append(*h, w)
}

func (h *waiterHeap[T]) Pop() any {
	old := *h
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	w.idx = -1
	*h = old[:n-1]
	return w
}

// waitSet is the ordered set of callers blocked on one side of an object.
// Every method requires the owning object's lock.
type waitSet[T any] struct {
	tb  *Timebase
	h   waiterHeap[T]
	seq uint64
}

func (s *waitSet[T]) Len() int { return len(s.h) }

// add publishes a waiter for c. A bounded timeout arms a deadline whose
// callback takes mu, the lock guarding s, and expires the waiter if it is
// still queued. Registration and the caller's failed fast-path check
// happen under the same hold of mu.
func (s *waitSet[T]) add(mu sync.Locker, c Caller, item T, t Timeout) *waiter[T] {
	s.seq++
	w := &waiter[T]{
		prio:  priorityOf(c),
		seq:   s.seq,
		ready: make(chan struct{}),
		item:  item,
	}
	heap.Push(&s.h, w)
	w.timer = s.tb.arm(t, func() {
		mu.Lock()
		if w.idx >= 0 {
			heap.Remove(&s.h, w.idx)
			w.finish(dispTimedOut)
		}
		mu.Unlock()
	})
	return w
}

// pop removes the first waiter and disarms its deadline. The caller
// completes the hand-off and then calls finish. It returns nil when empty.
func (s *waitSet[T]) pop() *waiter[T] {
	if len(s.h) == 0 {
		return nil
	}
	w := heap.Pop(&s.h).(*waiter[T])
	s.tb.disarm(w.timer)
	return w
}

// wakeAll releases every waiter, in wake order, with disp.
func (s *waitSet[T]) wakeAll(disp uint64) int {
	n := 0
	for w := s.pop(); w != nil; w = s.pop() {
		if w.finish(disp) {
			n++
		}
	}
	return n
}
