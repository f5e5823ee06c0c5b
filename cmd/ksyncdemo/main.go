// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command ksyncdemo builds the queues and semaphores declared in a YAML
// file and runs prioritized producer and consumer tasks against them.
//
// Usage:
//
//	ksyncdemo [-config path/to/config.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.hybscloud.com/ksync"
	"code.hybscloud.com/ksync/internal/objtab"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ksyncdemo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	tb := ksync.NewTimebase()
	defer tb.Stop()
	tab, err := objtab.Build(&cfg.Objects, ksync.Configure().Timebase(tb).Spin(cfg.Run.Spin))
	if err != nil {
		return fmt.Errorf("build objects: %w", err)
	}
	for _, e := range tab.Entries() {
		slog.Info("object ready", "name", e.Name, "kind", e.Object.Kind().String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunDuration())
	defer cancel()

	w := NewWorkload(cfg, tab, logger)
	start := time.Now()
	slog.Info("ksyncdemo starting",
		"producers", len(cfg.Producers),
		"consumers", len(cfg.Consumers),
		"duration", cfg.RunDuration(),
		"spin", cfg.Run.Spin,
	)
	runErr := w.Run(ctx)

	for _, e := range tab.Entries() {
		if mb, ok := tab.Mailbox(e.Name); ok {
			attrs := mb.Queue().Attrs()
			slog.Info("queue state", "name", e.Name, "used", attrs.UsedMsgs, "max", attrs.MaxMsgs, "msg_bytes", attrs.MsgSize)
		}
		if s, ok := tab.Semaphore(e.Name); ok {
			slog.Info("semaphore state", "name", e.Name, "count", s.Count(), "limit", s.Limit())
		}
	}
	slog.Info("ksyncdemo finished", "elapsed", time.Since(start), "stats", w.Stats())

	if err := tab.Close(); err != nil {
		slog.Warn("close objects", "err", err)
	}
	return runErr
}
