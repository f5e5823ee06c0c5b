// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/ksync"
	"code.hybscloud.com/ksync/internal/objtab"
	"github.com/oklog/ulid/v2"
)

// parseTimeout accepts "nowait", "forever", or a Go duration.
func parseTimeout(s string) (ksync.Timeout, error) {
	switch strings.ToLower(s) {
	case "", "nowait":
		return ksync.NoWait, nil
	case "forever":
		return ksync.Forever, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return ksync.NoWait, fmt.Errorf("timeout %q: %w", s, err)
	}
	return ksync.After(d), nil
}

// Message payloads are ULIDs, so a consumer can recover the send time.
const payloadBytes = len(ulid.ULID{})

var (
	idMu      sync.Mutex
	idEntropy io.Reader = ulid.Monotonic(rand.Reader, 0)
)

func newID(now time.Time) (ulid.ULID, error) {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.New(ulid.Timestamp(now), idEntropy)
}

// Stats counts workload outcomes across all tasks.
type Stats struct {
	Sent      atomix.Int64
	Received  atomix.Int64
	Rejected  atomix.Int64 // ErrWouldBlock or ErrTimedOut on send
	Idle      atomix.Int64 // ErrWouldBlock or ErrTimedOut on receive
	Malformed atomix.Int64
	LatencyMs atomix.Int64 // sum over received messages
}

// LogValue implements slog.LogValuer.
func (s *Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("sent", s.Sent.Load()),
		slog.Int64("received", s.Received.Load()),
		slog.Int64("rejected", s.Rejected.Load()),
		slog.Int64("idle", s.Idle.Load()),
		slog.Int64("malformed", s.Malformed.Load()),
		slog.Int64("latency_ms_sum", s.LatencyMs.Load()),
	)
}

// Workload runs the producer and consumer tasks of a Config against a Table.
type Workload struct {
	cfg    *Config
	tab    *objtab.Table
	logger *slog.Logger
	stats  Stats
}

// NewWorkload binds cfg to tab. cfg must have passed Validate.
func NewWorkload(cfg *Config, tab *objtab.Table, logger *slog.Logger) *Workload {
	return &Workload{cfg: cfg, tab: tab, logger: logger}
}

// Stats returns the live counters.
func (w *Workload) Stats() *Stats { return &w.stats }

// Run starts every task and returns when producers have finished and
// consumers have observed ctx done. Producers stop early on ctx done.
func (w *Workload) Run(ctx context.Context) error {
	var prodWG, consWG sync.WaitGroup
	errc := make(chan error, len(w.cfg.Producers)+len(w.cfg.Consumers))

	consCtx, stopConsumers := context.WithCancel(context.WithoutCancel(ctx))
	defer stopConsumers()
	for _, cc := range w.cfg.Consumers {
		consWG.Add(1)
		go func() {
			defer consWG.Done()
			if err := w.consume(consCtx, cc); err != nil {
				errc <- err
			}
		}()
	}
	for _, pc := range w.cfg.Producers {
		prodWG.Add(1)
		go func() {
			defer prodWG.Done()
			if err := w.produce(ctx, pc); err != nil {
				errc <- err
			}
		}()
	}

	prodWG.Wait()
	w.drain(ctx)
	stopConsumers()
	consWG.Wait()
	close(errc)

	var errs []error
	for err := range errc {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// drain waits for consumers to empty every queue or for ctx done.
func (w *Workload) drain(ctx context.Context) {
	if len(w.cfg.Consumers) == 0 {
		return
	}
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()
	for {
		used := 0
		for _, e := range w.tab.Entries() {
			if mb, ok := w.tab.Mailbox(e.Name); ok {
				used += mb.Queue().NumUsed()
			}
		}
		if used == 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}

func (w *Workload) produce(ctx context.Context, pc ProducerConfig) error {
	mb, _ := w.tab.Mailbox(pc.Queue)
	credits, _ := w.tab.Semaphore(pc.Credits)
	timeout, _ := parseTimeout(pc.Timeout)
	task := ksync.NewTask(pc.Name, pc.Priority)
	log := w.logger.With("task", pc.Name, "queue", pc.Queue)
	backoff := iox.Backoff{}

	for i := 0; pc.Count == 0 || i < pc.Count; i++ {
		if ctx.Err() != nil {
			log.Debug("producer stopped", "sent", i)
			return nil
		}
		if credits != nil {
			if err := credits.Take(task, timeout); err != nil {
				if errors.Is(err, ksync.ErrReset) {
					return nil
				}
				w.stats.Rejected.Add(1)
				backoff.Wait()
				i--
				continue
			}
		}
		id, err := newID(time.Now())
		if err != nil {
			return fmt.Errorf("producer %q: %w", pc.Name, err)
		}
		err = mb.Send(task, id[:], timeout)
		switch {
		case err == nil:
			w.stats.Sent.Add(1)
			backoff.Reset()
		case ksync.IsSemantic(err) || errors.Is(err, ksync.ErrTimedOut):
			w.stats.Rejected.Add(1)
			if credits != nil {
				credits.Give()
			}
			backoff.Wait()
			i--
		case errors.Is(err, ksync.ErrPurged):
			log.Info("queue purged")
			return nil
		default:
			return fmt.Errorf("producer %q: %w", pc.Name, err)
		}
	}
	log.Debug("producer done", "sent", pc.Count)
	return nil
}

func (w *Workload) consume(ctx context.Context, cc ConsumerConfig) error {
	mb, _ := w.tab.Mailbox(cc.Queue)
	credits, _ := w.tab.Semaphore(cc.Credits)
	timeout, _ := parseTimeout(cc.Timeout)
	if timeout.IsForever() {
		// Consumers must observe ctx; park in short slices instead.
		timeout = ksync.After(50 * time.Millisecond)
	}
	task := ksync.NewTask(cc.Name, cc.Priority)
	log := w.logger.With("task", cc.Name, "queue", cc.Queue)
	backoff := iox.Backoff{}

	for ctx.Err() == nil {
		msg, err := mb.Recv(task, timeout)
		switch {
		case err == nil:
			backoff.Reset()
		case ksync.IsWouldBlock(err) || errors.Is(err, ksync.ErrTimedOut):
			w.stats.Idle.Add(1)
			backoff.Wait()
			continue
		default:
			return fmt.Errorf("consumer %q: %w", cc.Name, err)
		}
		if credits != nil {
			credits.Give()
		}
		w.stats.Received.Add(1)

		var id ulid.ULID
		if copy(id[:], msg.Payload()) != len(id) {
			w.stats.Malformed.Add(1)
			log.Warn("malformed message", "len", msg.Len)
			continue
		}
		lat := time.Since(ulid.Time(id.Time()))
		w.stats.LatencyMs.Add(lat.Milliseconds())
		log.Debug("received", "id", id.String(), "latency", lat)
	}
	return nil
}
