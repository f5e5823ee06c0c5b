// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ksync provides the blocking primitives of a small real-time
// kernel: a bounded message queue and a counting semaphore.
//
//   - MessageQueue[T]: fixed-capacity FIFO over caller-supplied storage
//   - Semaphore: counter bounded by a limit
//
// Both support three waiting modes selected by a [Timeout]:
//
//	ksync.NoWait          // fail with ErrWouldBlock instead of blocking
//	ksync.Forever         // block until satisfied or cancelled
//	ksync.After(5*time.Millisecond)
//
// # Quick Start
//
//	q, err := ksync.NewMessageQueue(make([]Event, 64))
//	sem, err := ksync.NewSemaphore(0, 1)
//
//	// Producer
//	ev := Event{ID: 1}
//	if err := q.Put(ksync.Prio(3), &ev, ksync.Forever); err != nil {
//	    // ErrPurged
//	}
//
//	// Consumer
//	ev, err := q.Get(ksync.Prio(7), ksync.After(time.Second))
//	if errors.Is(err, ksync.ErrTimedOut) {
//	    // nothing arrived
//	}
//
//	// Signaling
//	go func() { sem.Give() }()
//	err = sem.Take(nil, ksync.Forever)
//
// # Wake Order
//
// Every blocking call names its [Caller], which supplies the scheduling
// priority. Among callers blocked on the same side of an object, the
// highest priority is served first; equal priorities are served in
// arrival order. [Prio] is a fixed priority, [Task] a priority that may
// change between calls, and a nil Caller has priority 0.
//
// # Direct Hand-off
//
// A Put that finds a blocked consumer copies the message straight into
// that consumer's wait record. A Get that frees a slot while producers are
// blocked moves the best producer's message into the ring and completes
// its Put. Give with blocked takers passes its unit to the best taker
// without touching the count. Consequently a message or unit is never
// left available while a caller that could use it is parked.
//
// # Cancellation
//
// A blocked call ends in exactly one way:
//
//	nil          // satisfied
//	ErrTimedOut  // deadline passed
//	ErrPurged    // MessageQueue.Purge released a blocked Put
//	ErrReset     // Semaphore.Reset released a blocked Take
//
// Purge releases producers only; blocked consumers keep waiting for the
// next message.
//
// # Non-blocking Operations
//
// Peek, PeekAt, Purge, NumFree, NumUsed, Give, Reset, Count and TryTake
// never park the calling goroutine and complete in bounded time.
//
// # Timebase
//
// Bounded waits are expired by a [Timebase]. Objects default to the
// shared wall-clock [DefaultTimebase]. [NewManualTimebase] gives tests a
// clock that only moves through Advance:
//
//	tb := ksync.NewManualTimebase(time.Unix(0, 0))
//	sem, _ := ksync.Configure().Timebase(tb).BuildSemaphore(0, 1)
//
// Stopping a Timebase expires every armed wait with [ErrTimedOut], and
// bounded waits started afterwards time out at once.
//
// # Static Declaration
//
// Storage is supplied by the embedding application and may be declared
// statically:
//
//	var (
//	    rxBuf   [16]Packet
//	    rxQueue ksync.MessageQueue[Packet]
//	    rxReady ksync.Semaphore
//	)
//
//	func init() {
//	    _ = rxQueue.Init(rxBuf[:])
//	    _ = rxReady.Init(0, 1)
//	}
//
// # Error Handling
//
// [ErrWouldBlock] is sourced from [code.hybscloud.com/iox] for ecosystem
// consistency:
//
//	ksync.IsWouldBlock(err)  // true if NoWait could not complete
//	ksync.IsSemantic(err)    // true if control flow signal
//	ksync.IsNonFailure(err)  // true if nil or ErrWouldBlock
//	ksync.IsCancelled(err)   // true for ErrPurged or ErrReset
//
// The package never logs, retries or panics on run-time conditions.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for task priorities, and
// [code.hybscloud.com/spin] for CPU pause instructions while spinning.
package ksync
