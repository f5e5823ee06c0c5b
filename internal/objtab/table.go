// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package objtab

import (
	"fmt"

	"code.hybscloud.com/ksync"
)

// Entry describes one object in a Table.
type Entry struct {
	Name   string
	Object ksync.Object
}

// Table holds the objects built from a Spec.
type Table struct {
	mailboxes  map[string]*Mailbox
	semaphores map[string]*ksync.Semaphore
	entries    []Entry
}

// Build validates spec and constructs every object with b. Nothing is
// returned if any declaration is rejected.
func Build(spec *Spec, b *ksync.Builder) (*Table, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	t := &Table{
		mailboxes:  make(map[string]*Mailbox, len(spec.Queues)),
		semaphores: make(map[string]*ksync.Semaphore, len(spec.Semaphores)),
	}
	for _, qs := range spec.Queues {
		q, err := ksync.BuildAllocMessageQueue[Message](b, qs.Capacity)
		if err != nil {
			return nil, fmt.Errorf("queue %q: %w", qs.Name, err)
		}
		size := qs.MsgSize
		if size == 0 {
			size = MaxMessageBytes
		}
		mb := &Mailbox{name: qs.Name, msgSize: size, q: q}
		t.mailboxes[qs.Name] = mb
		t.entries = append(t.entries, Entry{Name: qs.Name, Object: q})
	}
	for _, ss := range spec.Semaphores {
		s, err := b.BuildSemaphore(ss.Initial, ss.Limit)
		if err != nil {
			return nil, fmt.Errorf("semaphore %q: %w", ss.Name, err)
		}
		t.semaphores[ss.Name] = s
		t.entries = append(t.entries, Entry{Name: ss.Name, Object: s})
	}
	return t, nil
}

// Mailbox returns the queue declared as name.
func (t *Table) Mailbox(name string) (*Mailbox, bool) {
	mb, ok := t.mailboxes[name]
	return mb, ok
}

// Semaphore returns the semaphore declared as name.
func (t *Table) Semaphore(name string) (*ksync.Semaphore, bool) {
	s, ok := t.semaphores[name]
	return s, ok
}

// Entries lists all objects in declaration order, queues first.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Close cleans up every queue. It returns ksync.ErrBusy, naming the queue,
// if a caller is still blocked on one.
func (t *Table) Close() error {
	for _, e := range t.entries {
		mb, ok := t.mailboxes[e.Name]
		if !ok {
			continue
		}
		if err := mb.q.Cleanup(); err != nil {
			return fmt.Errorf("queue %q: %w", e.Name, err)
		}
	}
	return nil
}
