// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksync

import "code.hybscloud.com/atomix"

// Caller supplies the scheduling priority of a blocking call.
//
// Higher values are woken first. The priority is sampled once, when the
// caller is registered as a waiter; changing it afterwards does not reorder
// an existing wait. A nil Caller has priority 0.
type Caller interface {
	Priority() int
}

// Prio is a Caller with a fixed priority.
//
//	q.Get(ksync.Prio(10), ksync.Forever)
type Prio int

// Priority returns p.
func (p Prio) Priority() int { return int(p) }

// Task is a named Caller whose priority may change at run time.
//
// A Task is typically owned by one goroutine and passed to every blocking
// call it makes. SetPriority may be called from any goroutine.
type Task struct {
	name string
	prio atomix.Int64
}

// NewTask creates a Task with the given name and initial priority.
func NewTask(name string, priority int) *Task {
	t := &Task{name: name}
	t.prio.StoreRelease(int64(priority))
	return t
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Priority returns the current priority. A nil Task has priority 0.
func (t *Task) Priority() int {
	if t == nil {
		return 0
	}
	return int(t.prio.LoadAcquire())
}

// SetPriority changes the priority used by subsequent blocking calls.
func (t *Task) SetPriority(priority int) {
	t.prio.StoreRelease(int64(priority))
}

func priorityOf(c Caller) int {
	if c == nil {
		return 0
	}
	return c.Priority()
}
