// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksync

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately and
// [NoWait] was requested.
//
// For Put: the queue is full
// For Get: the queue is empty
// For Take: the semaphore count is zero
//
// No state changes when ErrWouldBlock is returned. It is a control flow
// signal, not a failure.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

var (
	// ErrInvalidArgument reports a rejected construction: zero capacity,
	// zero limit, or an initial count above the limit. No object is
	// partially constructed.
	ErrInvalidArgument = errors.New("ksync: invalid argument")

	// ErrTimedOut reports that a bounded wait expired before the condition
	// was satisfied. The caller retains no partial effect.
	ErrTimedOut = errors.New("ksync: timed out")

	// ErrPurged reports that a pending Put was cancelled by Purge.
	ErrPurged = errors.New("ksync: queue purged")

	// ErrReset reports that a pending Take was cancelled by Reset.
	ErrReset = errors.New("ksync: semaphore reset")

	// ErrEmpty is returned by Peek on an empty queue.
	ErrEmpty = errors.New("ksync: queue empty")

	// ErrOutOfRange is returned by PeekAt for an index outside [0, NumUsed).
	ErrOutOfRange = errors.New("ksync: index out of range")

	// ErrBusy is returned by Cleanup while callers are still blocked.
	ErrBusy = errors.New("ksync: object has waiters")
)

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// IsCancelled reports whether a blocked call was released by Purge or
// Reset rather than satisfied or timed out.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrPurged) || errors.Is(err, ErrReset)
}
