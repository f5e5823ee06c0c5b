// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksync

import (
	"fmt"
	"sync"

	"code.hybscloud.com/spin"
)

// Semaphore is a counting semaphore with an upper limit.
//
// Give hands its unit directly to the best blocked taker when there is
// one, so the count only grows while nobody waits, and never beyond the
// limit. Reset zeroes the count and releases every blocked taker with
// ErrReset.
//
// The zero value is not ready for use; call Init or use NewSemaphore.
// All methods are safe for concurrent use.
type Semaphore struct {
	mu sync.Mutex

	count       uint32
	limit       uint32
	takers      waitSet[struct{}]
	spinRetries int
}

var errSemaphoreNotReady = fmt.Errorf("%w: semaphore not initialized", ErrInvalidArgument)

// NewSemaphore creates a Semaphore using default options.
// Returns ErrInvalidArgument if limit is 0 or initial exceeds limit.
func NewSemaphore(initial, limit uint32) (*Semaphore, error) {
	return Configure().BuildSemaphore(initial, limit)
}

// Init prepares a statically declared semaphore.
// Init must not be called while the semaphore is in use.
func (s *Semaphore) Init(initial, limit uint32) error {
	return s.init(initial, limit, Options{})
}

func (s *Semaphore) init(initial, limit uint32, opts Options) error {
	if limit == 0 || initial > limit {
		return fmt.Errorf("%w: semaphore initial %d, limit %d", ErrInvalidArgument, initial, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = initial
	s.limit = limit
	s.takers = waitSet[struct{}]{tb: opts.resolvedTimebase()}
	s.spinRetries = opts.spin
	return nil
}

// Take acquires one unit.
//
// With a zero count it returns ErrWouldBlock for NoWait, and otherwise
// blocks on behalf of c until a Give hands it a unit (nil), the timeout
// expires (ErrTimedOut), or the semaphore is reset (ErrReset). An
// uninitialized semaphore returns ErrInvalidArgument.
func (s *Semaphore) Take(c Caller, timeout Timeout) error {
	if s.spinRetries > 0 && !timeout.IsNoWait() {
		sw := spin.Wait{}
		for range s.spinRetries {
			if s.TryTake() {
				return nil
			}
			sw.Once()
		}
	}

	s.mu.Lock()
	if s.limit == 0 {
		s.mu.Unlock()
		return errSemaphoreNotReady
	}
	if s.count > 0 {
		s.count--
		s.mu.Unlock()
		return nil
	}
	if timeout.IsNoWait() {
		s.mu.Unlock()
		return ErrWouldBlock
	}
	w := s.takers.add(&s.mu, c, struct{}{}, timeout)
	s.mu.Unlock()

	return w.wait()
}

// TryTake acquires one unit if available and reports whether it did.
func (s *Semaphore) TryTake() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		return false
	}
	s.count--
	return true
}

// Give releases one unit. A blocked taker receives it directly; otherwise
// the count grows by one unless it is already at the limit.
func (s *Semaphore) Give() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w := s.takers.pop(); w != nil {
		w.finish(dispGranted)
		return
	}
	if s.count < s.limit {
		s.count++
	}
}

// Reset sets the count to zero and releases every blocked taker with
// ErrReset.
func (s *Semaphore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = 0
	s.takers.wakeAll(dispReset)
}

// Count returns the current count.
func (s *Semaphore) Count() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Limit returns the maximum count.
func (s *Semaphore) Limit() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit
}

// Waiters returns the number of blocked takers.
func (s *Semaphore) Waiters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.takers.Len()
}

// Kind returns KindSemaphore.
func (s *Semaphore) Kind() Kind { return KindSemaphore }
