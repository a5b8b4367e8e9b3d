// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"context"
	"fmt"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/signalstore/background"
	"github.com/bitmark-inc/signalstore/fault"
	"github.com/bitmark-inc/signalstore/ratelimit"
	"github.com/bitmark-inc/signalstore/storage"
)

// OpenCache - connect the configured cache backend
//
// the returned processes must be started by the caller and stopped
// before the cache is closed; a leveldb cache has an expiry sweeper
func (c *Configuration) OpenCache(ctx context.Context, log *logger.L) (storage.Cache, background.Processes, error) {
	switch c.Cache.Backend {
	case LevelDBBackend:
		db, err := storage.NewLevelDB(log, c.CacheFileName())
		if nil != err {
			return nil, nil, err
		}
		sweeper := &storage.Sweeper{
			DB:       db,
			Interval: time.Duration(c.Cache.SweepInterval) * time.Second,
		}
		return db, background.Processes{sweeper}, nil

	case RedisBackend:
		r, err := storage.NewRedis(ctx, storage.RedisOptions{
			Address:  c.Cache.Redis.Address,
			Username: c.Cache.Redis.Username,
			Password: c.Cache.Redis.Password,
			Database: c.Cache.Redis.Database,
		})
		if nil != err {
			return nil, nil, err
		}
		return r, nil, nil

	case MemoryBackend:
		return storage.NewMemory(), nil, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", fault.InvalidCacheBackend, c.Cache.Backend)
	}
}

// Limit - the configured ledger rate limit
//
// signal-cli replay paces the indexer with it; a zero per_second
// gives ratelimit.None
func (c *Configuration) Limit() ratelimit.Func {
	if c.RateLimit.PerSecond <= 0 {
		return ratelimit.None
	}
	burst := c.RateLimit.Burst
	if burst <= 0 {
		burst = 1
	}
	return ratelimit.New(c.RateLimit.PerSecond, burst)
}
