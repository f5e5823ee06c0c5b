// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"code.hybscloud.com/ksync/internal/objtab"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration of a demo run.
type Config struct {
	Run       RunConfig        `yaml:"run"`
	Objects   objtab.Spec      `yaml:"objects"`
	Producers []ProducerConfig `yaml:"producers"`
	Consumers []ConsumerConfig `yaml:"consumers"`
}

// RunConfig controls the run as a whole.
type RunConfig struct {
	// Duration bounds the run, e.g. "2s".
	Duration string `yaml:"duration"`
	// Spin is the fast-path retry count before a blocking call parks.
	Spin     int    `yaml:"spin"`
	LogLevel string `yaml:"log_level"`
}

// ProducerConfig declares one producer task.
type ProducerConfig struct {
	Name     string `yaml:"name"`
	Queue    string `yaml:"queue"`
	Priority int    `yaml:"priority"`
	// Count is the number of messages to send; 0 sends until the run ends.
	Count   int    `yaml:"count"`
	Timeout string `yaml:"timeout"`
	// Credits names a semaphore taken before every send.
	Credits string `yaml:"credits"`
}

// ConsumerConfig declares one consumer task.
type ConsumerConfig struct {
	Name     string `yaml:"name"`
	Queue    string `yaml:"queue"`
	Priority int    `yaml:"priority"`
	Timeout  string `yaml:"timeout"`
	// Credits names a semaphore given after every receive.
	Credits string `yaml:"credits"`
}

// Default returns a Config with one producer and one consumer sharing a
// credit-limited queue.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Duration: "2s",
			Spin:     0,
			LogLevel: "info",
		},
		Objects: objtab.Spec{
			Queues:     []objtab.QueueSpec{{Name: "events", Capacity: 16, MsgSize: 16}},
			Semaphores: []objtab.SemaphoreSpec{{Name: "credits", Initial: 8, Limit: 8}},
		},
		Producers: []ProducerConfig{
			{Name: "producer", Queue: "events", Priority: 1, Count: 1000, Timeout: "50ms", Credits: "credits"},
		},
		Consumers: []ConsumerConfig{
			{Name: "consumer", Queue: "events", Priority: 1, Timeout: "50ms", Credits: "credits"},
		},
	}
}

// Load reads a YAML config file at path and overlays it on top of Default().
// A missing file yields the defaults. Unknown keys are rejected.
//
// KSYNCDEMO_DURATION overrides run.duration.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("KSYNCDEMO_DURATION"); v != "" {
		cfg.Run.Duration = v
	}
}

// Validate checks durations, log level, and that every task names a
// declared object. It returns all problems found.
func (c *Config) Validate() error {
	var errs []error
	if d, err := time.ParseDuration(c.Run.Duration); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("run.duration %q must be a positive duration", c.Run.Duration))
	}
	if c.Run.Spin < 0 {
		errs = append(errs, errors.New("run.spin must be >= 0"))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Run.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("run.log_level: %w", err))
	}
	if err := c.Objects.Validate(); err != nil {
		errs = append(errs, err)
	}

	queues := make(map[string]int)
	for _, q := range c.Objects.Queues {
		queues[q.Name] = q.MsgSize
	}
	sems := make(map[string]bool)
	for _, s := range c.Objects.Semaphores {
		sems[s.Name] = true
	}
	task := func(kind, name, queue, timeout, credits string) {
		size, ok := queues[queue]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%s %q: unknown queue %q", kind, name, queue))
		case size != 0 && size < payloadBytes:
			errs = append(errs, fmt.Errorf("%s %q: queue %q msg_size %d below %d", kind, name, queue, size, payloadBytes))
		}
		if credits != "" && !sems[credits] {
			errs = append(errs, fmt.Errorf("%s %q: unknown semaphore %q", kind, name, credits))
		}
		if _, err := parseTimeout(timeout); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", kind, name, err))
		}
	}
	for _, p := range c.Producers {
		task("producer", p.Name, p.Queue, p.Timeout, p.Credits)
		if p.Count < 0 {
			errs = append(errs, fmt.Errorf("producer %q: count must be >= 0", p.Name))
		}
	}
	for _, cs := range c.Consumers {
		task("consumer", cs.Name, cs.Queue, cs.Timeout, cs.Credits)
	}
	return errors.Join(errs...)
}

// RunDuration returns run.duration. Call after Validate.
func (c *Config) RunDuration() time.Duration {
	d, _ := time.ParseDuration(c.Run.Duration)
	return d
}

// Level returns run.log_level. Call after Validate.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(c.Run.LogLevel))
	return lvl
}
