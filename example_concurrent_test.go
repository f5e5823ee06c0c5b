// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// This file contains examples with concurrent producer/consumer goroutines
// that block on the queue instead of polling it.

package ksync_test

import (
	"fmt"
	"sync"

	"code.hybscloud.com/ksync"
)

// Example_workerPool demonstrates a worker pool fed by a blocking queue.
func Example_workerPool() {
	type Job struct {
		ID    int
		Input int
	}

	jobs, _ := ksync.NewMessageQueue(make([]Job, 4))
	results := make([]int, 5)
	var wg sync.WaitGroup

	// Start 3 workers; a job with ID -1 stops a worker.
	for w := range 3 {
		wg.Add(1)
		go func(worker *ksync.Task) {
			defer wg.Done()
			for {
				job, err := jobs.Get(worker, ksync.Forever)
				if err != nil || job.ID < 0 {
					return
				}
				results[job.ID] = job.Input * job.Input
			}
		}(ksync.NewTask(fmt.Sprintf("worker-%d", w), 1))
	}

	// Submit 5 jobs, then one stop job per worker. Put blocks while the
	// queue is full.
	for i := range 5 {
		job := Job{ID: i, Input: i + 1}
		_ = jobs.Put(nil, &job, ksync.Forever)
	}
	for range 3 {
		stop := Job{ID: -1}
		_ = jobs.Put(nil, &stop, ksync.Forever)
	}

	wg.Wait()

	for i, r := range results {
		fmt.Printf("Job %d: %d² = %d\n", i, i+1, r)
	}

	// Output:
	// Job 0: 1² = 1
	// Job 1: 2² = 4
	// Job 2: 3² = 9
	// Job 3: 4² = 16
	// Job 4: 5² = 25
}

// Example_pipeline demonstrates a multi-stage pipeline over capacity-1 queues.
func Example_pipeline() {
	// Pipeline: Generate → Double → Print
	stage1to2, _ := ksync.NewMessageQueue(make([]int, 1))
	stage2to3, _ := ksync.NewMessageQueue(make([]int, 1))

	// Stage 1: Generate numbers 1-5
	go func() {
		for i := 1; i <= 5; i++ {
			v := i
			_ = stage1to2.Put(nil, &v, ksync.Forever)
		}
	}()

	// Stage 2: Double each number
	go func() {
		for range 5 {
			v, _ := stage1to2.Get(nil, ksync.Forever)
			doubled := v * 2
			_ = stage2to3.Put(nil, &doubled, ksync.Forever)
		}
	}()

	// Stage 3: Collect results
	for i := range 5 {
		v, _ := stage2to3.Get(nil, ksync.Forever)
		fmt.Printf("Stage output %d: %d\n", i, v)
	}

	// Output:
	// Stage output 0: 2
	// Stage output 1: 4
	// Stage output 2: 6
	// Stage output 3: 8
	// Stage output 4: 10
}

// Example_signal demonstrates a semaphore used as a completion signal.
func Example_signal() {
	done, _ := ksync.NewSemaphore(0, 1)

	go func() {
		fmt.Println("work finished")
		done.Give()
	}()

	if err := done.Take(nil, ksync.Forever); err == nil {
		fmt.Println("signal received, count", done.Count())
	}

	// Output:
	// work finished
	// signal received, count 0
}
