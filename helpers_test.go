// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksync_test

import (
	"testing"
	"time"

	"code.hybscloud.com/iox"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// waitUntil polls cond with backoff until it holds or 5s pass.
func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	backoff := iox.Backoff{}
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		backoff.Wait()
	}
}

// result carries the outcome of a Get run on another goroutine.
type result[T any] struct {
	val T
	err error
}

func recvWithin[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("%s: no result", what)
	}
	var zero T
	return zero
}

func assertPending[T any](t *testing.T, ch <-chan T, what string) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("%s: returned %v, want still blocked", what, v)
	case <-time.After(20 * time.Millisecond):
	}
}
