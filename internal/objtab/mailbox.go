// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package objtab

import (
	"fmt"

	"code.hybscloud.com/ksync"
)

// MaxMessageBytes is the payload capacity of a Message envelope.
const MaxMessageBytes = 256

// Message is a fixed-size message envelope.
type Message struct {
	Len  uint16
	Data [MaxMessageBytes]byte
}

// Payload returns the valid bytes of m.
func (m *Message) Payload() []byte {
	return m.Data[:m.Len]
}

// Mailbox is a named queue of Message envelopes with a payload bound.
type Mailbox struct {
	name    string
	msgSize int
	q       *ksync.MessageQueue[Message]
}

// Name returns the declared name.
func (mb *Mailbox) Name() string { return mb.name }

// MsgSize returns the largest payload Send accepts.
func (mb *Mailbox) MsgSize() int { return mb.msgSize }

// Queue returns the underlying queue.
func (mb *Mailbox) Queue() *ksync.MessageQueue[Message] { return mb.q }

// Send copies payload into an envelope and puts it on the queue.
// A payload longer than MsgSize is rejected with ksync.ErrInvalidArgument
// before the queue is touched.
func (mb *Mailbox) Send(c ksync.Caller, payload []byte, timeout ksync.Timeout) error {
	if len(payload) > mb.msgSize {
		return fmt.Errorf("%w: %s: payload %d bytes exceeds %d", ksync.ErrInvalidArgument, mb.name, len(payload), mb.msgSize)
	}
	var msg Message
	msg.Len = uint16(copy(msg.Data[:], payload))
	return mb.q.Put(c, &msg, timeout)
}

// Recv takes the next envelope from the queue.
func (mb *Mailbox) Recv(c ksync.Caller, timeout ksync.Timeout) (Message, error) {
	return mb.q.Get(c, timeout)
}
