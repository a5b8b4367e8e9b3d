// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/signalstore/background"
	"github.com/bitmark-inc/signalstore/configuration"
	"github.com/bitmark-inc/signalstore/storage"
)

type metadata struct {
	config    *configuration.Configuration
	log       *logger.L
	cache     storage.Cache
	processes background.Processes
	verbose   bool
	e         io.Writer
	w         io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	app := cli.NewApp()
	app.Name = "signal-cli"
	app.Usage = "inspect the external cache of a prediction content store"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "config-file, c",
			Value: "",
			Usage: "*Lua configuration `FILE`",
		},
		cli.StringFlag{
			Name:  "namespace, n",
			Value: "",
			Usage: " override the configured `NAMESPACE`",
		},
		cli.StringFlag{
			Name:   "passphrase, p",
			Value:  "",
			Usage:  " override the configured identity `PASSPHRASE`",
			EnvVar: "SIGNAL_PASSPHRASE",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "windows",
			Usage: "list the cached event windows",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "verify, V",
					Usage: " decode every window and report its event count",
				},
			},
			Action: runWindows,
		},
		{
			Name:   "identity",
			Usage:  "display the identity public key and the locally held prediction keys",
			Action: runIdentity,
		},
		{
			Name:  "replay",
			Usage: "rebuild the relations from the cached windows only",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "tournament, t",
					Value: "",
					Usage: " only count rows of tournament `ID`",
				},
			},
			Action: runReplay,
		},
		{
			Name:  "sweep",
			Usage: "remove expired entries from a leveldb cache",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "follow, f",
					Usage: " keep sweeping until interrupted",
				},
			},
			Action: runSweep,
		},
		{
			Name:   "namespace",
			Usage:  "generate a fresh cache namespace",
			Action: runNamespace,
		},
		{
			Name:  "version",
			Usage: "display signal-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// read the configuration and open the cache
	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		// to suppress reading config file if certain commands
		command := c.Args().Get(0)
		switch command {
		case "", "help", "h", "version", "namespace":
			return nil
		}

		file := c.GlobalString("config-file")
		if "" == file {
			return fmt.Errorf("a configuration file is required")
		}
		if verbose {
			fmt.Fprintf(e, "reading config file: %s\n", file)
		}

		config, err := configuration.GetConfiguration(file, map[string]string{})
		if nil != err {
			return err
		}
		if c.GlobalIsSet("namespace") {
			config.Namespace = c.GlobalString("namespace")
		}
		if "" != c.GlobalString("passphrase") {
			config.Passphrase = c.GlobalString("passphrase")
		}

		if err := logger.Initialise(config.Logging); nil != err {
			return err
		}
		log := logger.New("main")
		log.Infof("signal-cli: version: %s  command: %s", version, command)

		cache, processes, err := config.OpenCache(context.Background(), log)
		if nil != err {
			logger.Finalise()
			return err
		}

		c.App.Metadata["config"] = &metadata{
			config:    config,
			log:       log,
			cache:     cache,
			processes: processes,
			verbose:   verbose,
			e:         e,
			w:         w,
		}
		return nil
	}

	// release the cache
	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok {
			return nil
		}
		defer logger.Finalise()

		if closer, ok := m.cache.(storage.Closer); ok {
			if err := closer.Close(); nil != err {
				m.log.Errorf("close cache error: %s", err)
				return err
			}
		}
		m.log.Info("finished")
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		exitwithstatus.Message("%s: terminated with error: %s", app.Name, err)
	}
}
