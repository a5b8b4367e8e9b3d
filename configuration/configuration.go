// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/signalstore/fault"
	"github.com/bitmark-inc/signalstore/indexer"
)

// cache backends
const (
	LevelDBBackend = "leveldb"
	RedisBackend   = "redis"
	MemoryBackend  = "memory"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultCacheDirectory = "cache"
	defaultCacheName      = "signalstore.leveldb"
	defaultSweepInterval  = 300 // seconds

	defaultLogDirectory = "log"
	defaultLogFile      = "signalstore.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// path expanded or calculated defaults
var (
	defaultLogLevels = map[string]string{
		"main":            "info",
		logger.DefaultTag: "critical",
	}
)

// RedisConfiguration - connection to a shared redis cache
type RedisConfiguration struct {
	Address  string `gluamapper:"address" json:"address"`
	Username string `gluamapper:"username" json:"username"`
	Password string `gluamapper:"password" json:"-"`
	Database int    `gluamapper:"database" json:"database"`
}

// CacheConfiguration - the external cache backend
type CacheConfiguration struct {
	Backend       string             `gluamapper:"backend" json:"backend"`
	Directory     string             `gluamapper:"directory" json:"directory"`
	Name          string             `gluamapper:"name" json:"name"`
	SweepInterval int                `gluamapper:"sweep_interval" json:"sweep_interval"`
	Redis         RedisConfiguration `gluamapper:"redis" json:"redis"`
}

// RateLimitConfiguration - ledger request limit, zero per_second disables it
type RateLimitConfiguration struct {
	PerSecond float64 `gluamapper:"per_second" json:"per_second"`
	Burst     int     `gluamapper:"burst" json:"burst"`
}

// Configuration - configuration file data
type Configuration struct {
	DataDirectory string                 `gluamapper:"data_directory" json:"data_directory"`
	Namespace     string                 `gluamapper:"namespace" json:"namespace"`
	Address       string                 `gluamapper:"address" json:"address"`
	Passphrase    string                 `gluamapper:"passphrase" json:"-"`
	WindowSize    uint64                 `gluamapper:"window_size" json:"window_size"`
	Cache         CacheConfiguration     `gluamapper:"cache" json:"cache"`
	RateLimit     RateLimitConfiguration `gluamapper:"rate_limit" json:"rate_limit"`
	Logging       logger.Configuration   `gluamapper:"logging" json:"logging"`
}

// GetConfiguration - read, decode and verify the configuration
//
// the data directory must already exist, the cache and log
// directories are created below it when missing
func GetConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{
		DataDirectory: defaultDataDirectory,
		WindowSize:    indexer.DefaultWindowSize,

		Cache: CacheConfiguration{
			Backend:       LevelDBBackend,
			Directory:     defaultCacheDirectory,
			Name:          defaultCacheName,
			SweepInterval: defaultSweepInterval,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options, variables); nil != err {
		return nil, err
	}

	options.Cache.Backend = strings.ToLower(options.Cache.Backend)
	switch options.Cache.Backend {
	case LevelDBBackend, MemoryBackend:
	case RedisBackend:
		if "" == options.Cache.Redis.Address {
			return nil, fault.MissingRedisAddress
		}
	default:
		return nil, fmt.Errorf("%w: %q", fault.InvalidCacheBackend, options.Cache.Backend)
	}

	if 0 == options.WindowSize {
		return nil, fault.InvalidWindowSize
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("%w: %q", fault.InvalidDataDirectory, options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", fault.InvalidDataDirectory, options.DataDirectory)
	}

	// fail if any of these are not simple file names
	for _, f := range []string{options.Cache.Name, options.Logging.File} {
		switch filepath.Dir(f) {
		case "", ".":
		default:
			return nil, fmt.Errorf("%w: %q", fault.InvalidFileName, f)
		}
	}

	// make absolute and create directories if they do not already exist
	directories := []*string{
		&options.Logging.Directory,
	}
	if LevelDBBackend == options.Cache.Backend {
		directories = append(directories, &options.Cache.Directory)
	}
	for _, d := range directories {
		*d = ensureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	return options, nil
}

// CacheFileName - absolute path of the leveldb cache
func (c *Configuration) CacheFileName() string {
	return ensureAbsolute(c.Cache.Directory, c.Cache.Name)
}

// ensureAbsolute - if path is relative, prepend the directory
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
