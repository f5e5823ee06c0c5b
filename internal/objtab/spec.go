// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package objtab builds named kernel objects from a declarative table.
//
// A table is a YAML document listing the queues and semaphores an
// application needs, in the spirit of statically defined kernel objects:
//
//	queues:
//	  - name: rx
//	    capacity: 16
//	    msg_size: 64
//	semaphores:
//	  - name: rx_ready
//	    initial: 0
//	    limit: 1
//
// Queues carry fixed-size [Message] envelopes. msg_size bounds the payload
// a [Mailbox] accepts; payloads are validated at the Mailbox boundary so
// only well-formed envelopes reach the queue.
package objtab

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec is the declarative object table.
type Spec struct {
	Queues     []QueueSpec     `yaml:"queues"`
	Semaphores []SemaphoreSpec `yaml:"semaphores"`
}

// QueueSpec declares one message queue.
type QueueSpec struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
	// MsgSize is the largest payload in bytes; 0 means MaxMessageBytes.
	MsgSize int `yaml:"msg_size"`
}

// SemaphoreSpec declares one semaphore.
type SemaphoreSpec struct {
	Name    string `yaml:"name"`
	Initial uint32 `yaml:"initial"`
	Limit   uint32 `yaml:"limit"`
}

// Parse decodes a YAML table. Unknown fields are rejected.
func Parse(data []byte) (*Spec, error) {
	var s Spec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse object table: %w", err)
	}
	return &s, nil
}

// Load reads and decodes a YAML table from path.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read object table: %w", err)
	}
	return Parse(data)
}

// Validate checks names and sizes. Object arguments themselves are checked
// by the constructors during Build.
func (s *Spec) Validate() error {
	seen := make(map[string]bool)
	var errs []error
	claim := func(kind, name string) {
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("%s: name is required", kind))
		case seen[name]:
			errs = append(errs, fmt.Errorf("%s %q: duplicate name", kind, name))
		}
		seen[name] = true
	}
	for _, q := range s.Queues {
		claim("queue", q.Name)
		if q.MsgSize < 0 || q.MsgSize > MaxMessageBytes {
			errs = append(errs, fmt.Errorf("queue %q: msg_size %d outside [0, %d]", q.Name, q.MsgSize, MaxMessageBytes))
		}
	}
	for _, sem := range s.Semaphores {
		claim("semaphore", sem.Name)
	}
	return errors.Join(errs...)
}
