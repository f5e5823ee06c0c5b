// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksync

// Kind identifies the type of a kernel object for diagnostic tooling.
type Kind uint8

const (
	KindMessageQueue Kind = iota + 1
	KindSemaphore
)

func (k Kind) String() string {
	switch k {
	case KindMessageQueue:
		return "msgq"
	case KindSemaphore:
		return "sem"
	}
	return "unknown"
}

// Object is implemented by every kernel object.
//
// Diagnostic code can classify objects without a global registry:
//
//	switch o.Kind() {
//	case ksync.KindMessageQueue:
//	    // ...
//	}
type Object interface {
	Kind() Kind
}

// Producer is the interface for putting messages.
//
// The message is passed by pointer to avoid copying large structs. The
// queue stores a copy of the pointed-to value, so the original can be
// modified after Put returns.
type Producer[T any] interface {
	// Put copies *elem into the queue, waiting up to timeout for space.
	// Returns nil on success, ErrWouldBlock, ErrTimedOut or ErrPurged.
	Put(c Caller, elem *T, timeout Timeout) error
}

// Consumer is the interface for getting messages.
//
// The message is returned by value; the queue slot is cleared.
type Consumer[T any] interface {
	// Get removes the head message, waiting up to timeout for one.
	// Returns ErrWouldBlock or ErrTimedOut when none arrives.
	Get(c Caller, timeout Timeout) (T, error)
}

// Queue is the full message queue interface.
//
// Example:
//
//	q, _ := ksync.NewMessageQueue(make([]int, 8))
//
//	v := 42
//	if err := q.Put(nil, &v, ksync.NoWait); ksync.IsWouldBlock(err) {
//	    // Queue is full
//	}
//
//	elem, err := q.Get(ksync.Prio(5), ksync.After(10*time.Millisecond))
//	if err == nil {
//	    fmt.Println(elem)
//	}
type Queue[T any] interface {
	Object
	Producer[T]
	Consumer[T]

	Peek() (T, error)
	PeekAt(index int) (T, error)
	Purge()
	NumFree() int
	NumUsed() int
	Cap() int
}

// Counter is the semaphore interface.
type Counter interface {
	Object

	Take(c Caller, timeout Timeout) error
	TryTake() bool
	Give()
	Reset()
	Count() uint32
}

var (
	_ Queue[int] = (*MessageQueue[int])(nil)
	_ Counter    = (*Semaphore)(nil)
)
