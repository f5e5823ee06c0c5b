// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksync

import (
	"fmt"
	"sync"
	"unsafe"

	"code.hybscloud.com/spin"
)

// MessageQueue is a bounded FIFO of fixed-size messages with blocking,
// non-blocking and timed Put and Get.
//
// The queue stores messages in a ring over storage supplied at
// construction and owned by the queue from then on. Put copies the
// caller's message in and Get copies it out; no reference into the ring
// is ever returned.
//
// When a consumer is blocked, Put hands the message straight to it. When
// a producer is blocked on a full queue, the Get that frees a slot moves
// that producer's message into the ring and completes its Put. Blocked
// callers are served highest priority first, then in arrival order.
//
// The zero value is not ready for use; declare it and call Init, or use
// NewMessageQueue. All methods are safe for concurrent use.
type MessageQueue[T any] struct {
	mu sync.Mutex

	buf         []T
	head, tail  int
	count       int
	allocated   bool
	producers   waitSet[T]
	consumers   waitSet[T]
	spinRetries int
}

var errQueueNotReady = fmt.Errorf("%w: message queue not initialized", ErrInvalidArgument)

// MsgqAttrs describes a queue's geometry and occupancy.
type MsgqAttrs struct {
	MsgSize  uintptr // bytes per message
	MaxMsgs  int     // capacity
	UsedMsgs int     // messages currently queued
}

// NewMessageQueue creates a MessageQueue over storage using default options.
// Returns ErrInvalidArgument if storage is empty.
func NewMessageQueue[T any](storage []T) (*MessageQueue[T], error) {
	return BuildMessageQueue(Configure(), storage)
}

// AllocMessageQueue creates a MessageQueue with queue-owned storage for
// capacity messages.
func AllocMessageQueue[T any](capacity int) (*MessageQueue[T], error) {
	return BuildAllocMessageQueue[T](Configure(), capacity)
}

// Init prepares a statically declared queue to use storage:
//
//	var (
//	    frames     [32]Frame
//	    frameQueue ksync.MessageQueue[Frame]
//	)
//
//	func init() {
//	    if err := frameQueue.Init(frames[:]); err != nil {
//	        panic(err)
//	    }
//	}
//
// Init must not be called while the queue is in use.
func (q *MessageQueue[T]) Init(storage []T) error {
	return q.init(storage, Options{})
}

func (q *MessageQueue[T]) init(storage []T, opts Options) error {
	if len(storage) == 0 {
		return fmt.Errorf("%w: message queue capacity 0", ErrInvalidArgument)
	}
	tb := opts.resolvedTimebase()
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buf = storage
	q.head, q.tail, q.count = 0, 0, 0
	q.allocated = false
	q.producers = waitSet[T]{tb: tb}
	q.consumers = waitSet[T]{tb: tb}
	q.spinRetries = opts.spin
	return nil
}

// Cleanup releases queue-owned storage. It returns ErrBusy while callers
// are blocked on the queue. The queue must be re-initialized before reuse.
func (q *MessageQueue[T]) Cleanup() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.producers.Len() > 0 || q.consumers.Len() > 0 {
		return ErrBusy
	}
	if q.allocated {
		q.buf = nil
		q.head, q.tail, q.count = 0, 0, 0
		q.allocated = false
	}
	return nil
}

// Put copies *elem into the queue.
//
// Put returns nil once the message is queued or handed to a consumer. With
// a full queue it returns ErrWouldBlock for NoWait, and otherwise blocks on
// behalf of c until a slot frees (nil), the timeout expires (ErrTimedOut),
// or the queue is purged (ErrPurged). A failed Put leaves no message behind.
// An uninitialized or cleaned-up queue returns ErrInvalidArgument.
func (q *MessageQueue[T]) Put(c Caller, elem *T, timeout Timeout) error {
	if q.spinRetries > 0 && !timeout.IsNoWait() {
		if q.spinOn(func() bool { return q.tryPut(elem) }) {
			return nil
		}
	}

	q.mu.Lock()
	if q.buf == nil {
		q.mu.Unlock()
		return errQueueNotReady
	}
	if q.putLocked(elem) {
		q.mu.Unlock()
		return nil
	}
	if timeout.IsNoWait() {
		q.mu.Unlock()
		return ErrWouldBlock
	}
	w := q.producers.add(&q.mu, c, *elem, timeout)
	q.mu.Unlock()

	return w.wait()
}

// Get removes and returns the message at the head of the queue.
//
// With an empty queue it returns ErrWouldBlock for NoWait, and otherwise
// blocks on behalf of c until a message arrives or the timeout expires
// (ErrTimedOut). Purge does not release blocked consumers. An
// uninitialized or cleaned-up queue returns ErrInvalidArgument.
func (q *MessageQueue[T]) Get(c Caller, timeout Timeout) (T, error) {
	var elem T
	if q.spinRetries > 0 && !timeout.IsNoWait() {
		var ok bool
		if q.spinOn(func() bool { elem, ok = q.tryGet(); return ok }) {
			return elem, nil
		}
	}

	q.mu.Lock()
	if q.buf == nil {
		q.mu.Unlock()
		return elem, errQueueNotReady
	}
	if elem, ok := q.getLocked(); ok {
		q.mu.Unlock()
		return elem, nil
	}
	if timeout.IsNoWait() {
		q.mu.Unlock()
		return elem, ErrWouldBlock
	}
	w := q.consumers.add(&q.mu, c, elem, timeout)
	q.mu.Unlock()

	if err := w.wait(); err != nil {
		return elem, err
	}
	return w.item, nil
}

func (q *MessageQueue[T]) tryPut(elem *T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.putLocked(elem)
}

func (q *MessageQueue[T]) tryGet() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.getLocked()
}

func (q *MessageQueue[T]) putLocked(elem *T) bool {
	// A blocked consumer implies an empty ring.
	if w := q.consumers.pop(); w != nil {
		w.item = *elem
		w.finish(dispGranted)
		return true
	}
	if q.count == len(q.buf) {
		return false
	}
	q.push(*elem)
	return true
}

func (q *MessageQueue[T]) getLocked() (T, bool) {
	var zero T
	if q.count == 0 {
		return zero, false
	}
	elem := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = q.wrap(q.head + 1)
	q.count--

	if w := q.producers.pop(); w != nil {
		q.push(w.item)
		w.finish(dispGranted)
	}
	return elem, true
}

func (q *MessageQueue[T]) push(elem T) {
	q.buf[q.tail] = elem
	q.tail = q.wrap(q.tail + 1)
	q.count++
}

func (q *MessageQueue[T]) wrap(i int) int {
	if i >= len(q.buf) {
		return i - len(q.buf)
	}
	return i
}

func (q *MessageQueue[T]) spinOn(try func() bool) bool {
	sw := spin.Wait{}
	for range q.spinRetries {
		if try() {
			return true
		}
		sw.Once()
	}
	return false
}

// Peek returns a copy of the head message without removing it.
// Returns ErrEmpty if the queue is empty.
func (q *MessageQueue[T]) Peek() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return q.buf[q.head], nil
}

// PeekAt returns a copy of the message at position index in FIFO order,
// 0 being the head, as of the instant of the call.
// Returns ErrOutOfRange unless 0 <= index < NumUsed().
func (q *MessageQueue[T]) PeekAt(index int) (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if index < 0 || index >= q.count {
		var zero T
		return zero, fmt.Errorf("%w: index %d, %d queued", ErrOutOfRange, index, q.count)
	}
	return q.buf[q.wrap(q.head+index)], nil
}

// Purge discards every queued message and releases every blocked producer
// with ErrPurged. Blocked consumers stay blocked.
func (q *MessageQueue[T]) Purge() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.buf)
	q.head, q.tail, q.count = 0, 0, 0
	q.producers.wakeAll(dispPurged)
}

// NumFree returns the number of free slots.
func (q *MessageQueue[T]) NumFree() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf) - q.count
}

// NumUsed returns the number of queued messages.
func (q *MessageQueue[T]) NumUsed() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the queue capacity.
func (q *MessageQueue[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Attrs returns the queue geometry and current occupancy.
func (q *MessageQueue[T]) Attrs() MsgqAttrs {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	return MsgqAttrs{
		MsgSize:  unsafe.Sizeof(zero),
		MaxMsgs:  len(q.buf),
		UsedMsgs: q.count,
	}
}

// Waiters returns the number of blocked producers and consumers.
func (q *MessageQueue[T]) Waiters() (producers, consumers int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.producers.Len(), q.consumers.Len()
}

// Kind returns KindMessageQueue.
func (q *MessageQueue[T]) Kind() Kind { return KindMessageQueue }
