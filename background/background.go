// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background

import (
	"sync"
)

// Process - a long running task
//
// Run must return promptly once shutdown is closed
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start
type Processes []Process

// T - handle for a running set of processes
type T struct {
	sync.Mutex
	shutdown chan struct{}
	wg       sync.WaitGroup
	stopped  bool
}

// Start - start up a set of background processes
func Start(processes Processes, args interface{}) *T {

	register := &T{
		shutdown: make(chan struct{}),
	}

	// start each background
	for _, p := range processes {
		register.wg.Add(1)
		go func(p Process) {
			defer register.wg.Done()
			p.Run(args, register.shutdown)
		}(p)
	}
	return register
}

// Stop - stop a set of background processes and wait for them to finish
//
// safe to call more than once
func (t *T) Stop() {
	if nil == t {
		return
	}

	t.Lock()
	if !t.stopped {
		t.stopped = true
		close(t.shutdown)
	}
	t.Unlock()

	t.wg.Wait()
}
