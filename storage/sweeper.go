// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"time"
)

// SweepInterval - default time between expiry sweeps
const SweepInterval = 5 * time.Minute

// Sweeper - background process removing expired LevelDB entries
//
// args to Run is ignored
type Sweeper struct {
	DB       *LevelDB
	Interval time.Duration
}

// Run - background loop
func (s *Sweeper) Run(args interface{}, shutdown <-chan struct{}) {
	interval := s.Interval
	if interval <= 0 {
		interval = SweepInterval
	}

	log := s.DB.log
	log.Info("sweeper: starting…")

	ticker := time.NewTicker(interval)
loop:
	for {
		select {
		case <-ticker.C:
			n, err := s.DB.Sweep()
			if nil != err {
				log.Errorf("sweeper: error: %s", err)
			} else if n > 0 {
				log.Debugf("sweeper: removed: %d expired entries", n)
			}
		case <-shutdown:
			break loop
		}
	}
	ticker.Stop()

	log.Info("sweeper: stopped")
}
