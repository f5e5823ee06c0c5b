// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksync

import "fmt"

// Options configures object construction.
type Options struct {
	// Timebase expiring bounded waits (nil: DefaultTimebase)
	timebase *Timebase

	// Fast-path retries before a blocking call parks (0: park at once)
	spin int
}

func (o Options) resolvedTimebase() *Timebase {
	if o.timebase != nil {
		return o.timebase
	}
	return DefaultTimebase()
}

// Builder creates queues and semaphores with fluent configuration.
//
// Example:
//
//	tb := ksync.NewManualTimebase(time.Unix(0, 0))
//	b := ksync.Configure().Timebase(tb).Spin(64)
//
//	q, err := ksync.BuildMessageQueue(b, make([]Frame, 16))
//	sem, err := b.BuildSemaphore(0, 1)
type Builder struct {
	opts Options
}

// Configure creates a builder with default options.
func Configure() *Builder {
	return &Builder{}
}

// Timebase selects the Timebase that expires bounded waits.
func (b *Builder) Timebase(tb *Timebase) *Builder {
	b.opts.timebase = tb
	return b
}

// Spin makes blocking calls retry the fast path up to n times, pausing
// the CPU between attempts, before they park. Spinning suits waits that
// are usually satisfied within microseconds. n <= 0 disables spinning.
//
// A spinning caller only succeeds when the resource is available, which
// implies no caller of the same kind is parked, so wake order is kept.
func (b *Builder) Spin(n int) *Builder {
	b.opts.spin = max(n, 0)
	return b
}

// Options returns a copy of the accumulated options.
func (b *Builder) Options() Options {
	return b.opts
}

// BuildMessageQueue creates a MessageQueue over storage.
// The queue capacity is len(storage).
func BuildMessageQueue[T any](b *Builder, storage []T) (*MessageQueue[T], error) {
	q := &MessageQueue[T]{}
	if err := q.init(storage, b.opts); err != nil {
		return nil, err
	}
	return q, nil
}

// BuildAllocMessageQueue creates a MessageQueue with queue-owned storage
// for capacity messages. Cleanup releases the storage.
func BuildAllocMessageQueue[T any](b *Builder, capacity int) (*MessageQueue[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvalidArgument, capacity)
	}
	q, err := BuildMessageQueue(b, make([]T, capacity))
	if err != nil {
		return nil, err
	}
	q.allocated = true
	return q, nil
}

// BuildSemaphore creates a Semaphore with the given initial count and limit.
func (b *Builder) BuildSemaphore(initial, limit uint32) (*Semaphore, error) {
	s := &Semaphore{}
	if err := s.init(initial, limit, b.opts); err != nil {
		return nil, err
	}
	return s, nil
}
