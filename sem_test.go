// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksync_test

import (
	"errors"
	"testing"
	"time"

	"code.hybscloud.com/ksync"
)

func TestSemaphoreConstruction(t *testing.T) {
	tests := []struct {
		initial, limit uint32
		ok             bool
	}{
		{0, 1, true},
		{1, 1, true},
		{3, 10, true},
		{2, 1, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		_, err := ksync.NewSemaphore(tt.initial, tt.limit)
		if tt.ok && err != nil {
			t.Fatalf("NewSemaphore(%d, %d): %v", tt.initial, tt.limit, err)
		}
		if !tt.ok && !errors.Is(err, ksync.ErrInvalidArgument) {
			t.Fatalf("NewSemaphore(%d, %d): got %v, want ErrInvalidArgument", tt.initial, tt.limit, err)
		}
	}

	var s ksync.Semaphore
	if err := s.Init(2, 4); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.Count() != 2 || s.Limit() != 4 || s.Kind() != ksync.KindSemaphore {
		t.Fatalf("Count/Limit/Kind: got %d/%d/%v", s.Count(), s.Limit(), s.Kind())
	}
}

func TestSemaphoreZeroValueRejectsTake(t *testing.T) {
	var s ksync.Semaphore
	for _, timeout := range []ksync.Timeout{ksync.NoWait, ksync.After(time.Millisecond), ksync.Forever} {
		if err := s.Take(nil, timeout); !errors.Is(err, ksync.ErrInvalidArgument) {
			t.Fatalf("Take(%v) on zero value: got %v, want ErrInvalidArgument", timeout, err)
		}
	}
	s.Give()
	if s.Count() != 0 || s.TryTake() {
		t.Fatalf("zero value: Give must not create units")
	}
}

func TestSemaphoreTakeGive(t *testing.T) {
	s, _ := ksync.NewSemaphore(2, 5)

	for range 2 {
		if err := s.Take(nil, ksync.NoWait); err != nil {
			t.Fatalf("Take: %v", err)
		}
	}
	if err := s.Take(nil, ksync.NoWait); !errors.Is(err, ksync.ErrWouldBlock) {
		t.Fatalf("Take at zero: got %v, want ErrWouldBlock", err)
	}
	if s.TryTake() {
		t.Fatalf("TryTake at zero: got true, want false")
	}
	s.Give()
	if !s.TryTake() {
		t.Fatalf("TryTake after Give: got false, want true")
	}
	if s.Count() != 0 {
		t.Fatalf("Count: got %d, want 0", s.Count())
	}
}

func TestSemaphoreGiveSaturates(t *testing.T) {
	const limit = 3
	s, _ := ksync.NewSemaphore(0, limit)

	for i := range 10 {
		s.Give()
		if c := s.Count(); c > limit {
			t.Fatalf("Give %d: Count %d exceeds limit", i, c)
		}
	}
	if s.Count() != limit {
		t.Fatalf("Count: got %d, want %d", s.Count(), limit)
	}
}

// TestSemaphoreDirectHandoff covers take-blocks-then-give with limit 1.
func TestSemaphoreDirectHandoff(t *testing.T) {
	s, _ := ksync.NewSemaphore(0, 1)

	done := make(chan error, 1)
	go func() { done <- s.Take(nil, ksync.Forever) }()
	waitUntil(t, "blocked taker", func() bool { return s.Waiters() == 1 })

	s.Give()
	if err := recvWithin(t, done, "Take"); err != nil {
		t.Fatalf("Take: %v", err)
	}
	if s.Count() != 0 {
		t.Fatalf("Count after hand-off: got %d, want 0", s.Count())
	}
}

func TestSemaphoreGiveAtLimitStillWakes(t *testing.T) {
	// A Give at the limit is dropped; a Give with a waiter goes to the waiter.
	s, _ := ksync.NewSemaphore(1, 1)
	s.Give()
	if s.Count() != 1 {
		t.Fatalf("Count: got %d, want 1", s.Count())
	}
	_ = s.Take(nil, ksync.NoWait)

	done := make(chan error, 1)
	go func() { done <- s.Take(nil, ksync.Forever) }()
	waitUntil(t, "blocked taker", func() bool { return s.Waiters() == 1 })
	s.Give()
	s.Give()
	if err := recvWithin(t, done, "Take"); err != nil {
		t.Fatalf("Take: %v", err)
	}
	if s.Count() != 1 {
		t.Fatalf("Count: got %d, want 1", s.Count())
	}
}

func TestSemaphoreReset(t *testing.T) {
	s, _ := ksync.NewSemaphore(0, 4)

	const takers = 3
	done := make(chan error, takers)
	for i := range takers {
		go func(p int) { done <- s.Take(ksync.Prio(p), ksync.Forever) }(i)
	}
	waitUntil(t, "blocked takers", func() bool { return s.Waiters() == takers })

	s.Reset()
	for range takers {
		err := recvWithin(t, done, "Take")
		if !errors.Is(err, ksync.ErrReset) {
			t.Fatalf("Take: got %v, want ErrReset", err)
		}
		if errors.Is(err, ksync.ErrTimedOut) || !ksync.IsCancelled(err) {
			t.Fatalf("Take: %v must be distinguishable from a timeout", err)
		}
	}
	if s.Count() != 0 || s.Waiters() != 0 {
		t.Fatalf("after Reset: Count %d Waiters %d, want 0 0", s.Count(), s.Waiters())
	}

	s.Give()
	s.Give()
	s.Reset()
	if s.Count() != 0 {
		t.Fatalf("Count after Reset: got %d, want 0", s.Count())
	}
}

func TestSemaphorePriorityOrder(t *testing.T) {
	s, _ := ksync.NewSemaphore(0, 1)

	task := ksync.NewTask("worker", 1)
	low := make(chan error, 1)
	high := make(chan error, 1)
	go func() { low <- s.Take(task, ksync.Forever) }()
	waitUntil(t, "low taker", func() bool { return s.Waiters() == 1 })

	// Raising the priority after registration does not reorder the wait.
	task.SetPriority(100)
	go func() { high <- s.Take(ksync.Prio(10), ksync.Forever) }()
	waitUntil(t, "high taker", func() bool { return s.Waiters() == 2 })

	s.Give()
	if err := recvWithin(t, high, "high Take"); err != nil {
		t.Fatalf("high Take: %v", err)
	}
	assertPending(t, low, "low Take")
	s.Give()
	if err := recvWithin(t, low, "low Take"); err != nil {
		t.Fatalf("low Take: %v", err)
	}
}

func TestSemaphoreTimeout(t *testing.T) {
	tb := ksync.NewManualTimebase(epoch)
	s, _ := ksync.Configure().Timebase(tb).BuildSemaphore(0, 1)

	done := make(chan error, 1)
	go func() { done <- s.Take(nil, ksync.After(50*time.Millisecond)) }()
	waitUntil(t, "blocked taker", func() bool { return s.Waiters() == 1 })

	tb.Advance(50 * time.Millisecond)
	if err := recvWithin(t, done, "Take"); !errors.Is(err, ksync.ErrTimedOut) {
		t.Fatalf("Take: got %v, want ErrTimedOut", err)
	}

	// The unit from a later Give is kept, not lost to the expired waiter.
	s.Give()
	if s.Count() != 1 {
		t.Fatalf("Count: got %d, want 1", s.Count())
	}
}

func TestSemaphoreAfterZeroIsNoWait(t *testing.T) {
	s, _ := ksync.NewSemaphore(0, 1)
	if err := s.Take(nil, ksync.After(0)); !errors.Is(err, ksync.ErrWouldBlock) {
		t.Fatalf("Take(After(0)): got %v, want ErrWouldBlock", err)
	}
}

func TestSemaphoreSpin(t *testing.T) {
	s, _ := ksync.Configure().Spin(8).BuildSemaphore(1, 1)
	if err := s.Take(nil, ksync.Forever); err != nil {
		t.Fatalf("Take: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Take(nil, ksync.Forever) }()
	waitUntil(t, "blocked taker", func() bool { return s.Waiters() == 1 })
	s.Give()
	if err := recvWithin(t, done, "Take"); err != nil {
		t.Fatalf("Take: %v", err)
	}
}
