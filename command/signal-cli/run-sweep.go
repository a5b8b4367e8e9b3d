// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/signalstore/background"
	"github.com/bitmark-inc/signalstore/configuration"
	"github.com/bitmark-inc/signalstore/storage"
)

func runSweep(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	db, ok := m.cache.(*storage.LevelDB)
	if !ok {
		return fmt.Errorf("backend: %q expires entries itself, only %q needs sweeping", m.config.Cache.Backend, configuration.LevelDBBackend)
	}

	n, err := db.Sweep()
	if nil != err {
		return err
	}
	fmt.Fprintf(m.w, "removed: %d\n", n)

	if !c.Bool("follow") {
		return nil
	}

	p := background.Start(m.processes, nil)

	// wait for CTRL-C SIGINT or SIGTERM
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	m.log.Infof("received signal: %v", sig)
	if m.verbose {
		fmt.Fprintf(m.e, "received signal: %v\n", sig)
	}

	p.Stop()
	return nil
}
