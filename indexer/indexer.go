// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/signalstore/fault"
	"github.com/bitmark-inc/signalstore/ledger"
	"github.com/bitmark-inc/signalstore/ratelimit"
	"github.com/bitmark-inc/signalstore/storage"
)

// WindowKeyPrefix - cache key prefix of all event windows
const WindowKeyPrefix = "event_window:"

// DefaultWindowSize - blocks per cached window
const DefaultWindowSize = 1000

// Indexer - incrementally materialised contract log
type Indexer struct {
	sync.Mutex

	log        *logger.L
	reader     ledger.Reader
	cache      storage.Cache
	limit      ratelimit.Func
	windowSize uint64

	watermark uint64
	r         *relations
}

// New - create an empty indexer at block zero
func New(log *logger.L, reader ledger.Reader, cache storage.Cache, limit ratelimit.Func, windowSize uint64) (*Indexer, error) {
	if nil == reader {
		return nil, fault.MissingLedgerClient
	}
	if nil == cache {
		return nil, fault.MissingCache
	}
	if 0 == windowSize {
		return nil, fault.InvalidWindowSize
	}
	if nil == limit {
		limit = ratelimit.None
	}

	return &Indexer{
		log:        log,
		reader:     reader,
		cache:      cache,
		limit:      limit,
		windowSize: windowSize,
		r:          newRelations(),
	}, nil
}

// Watermark - last block whose events are all applied
func (ix *Indexer) Watermark() uint64 {
	ix.Lock()
	defer ix.Unlock()
	return ix.watermark
}

// CatchUp - apply all events up to the current head
func (ix *Indexer) CatchUp(ctx context.Context) error {
	ix.Lock()
	defer ix.Unlock()
	return ix.catchUp(ctx)
}

// WindowKey - cache key of a window
func WindowKey(from uint64, to uint64) string {
	return WindowKeyPrefix + strconv.FormatUint(from, 10) + ":" + strconv.FormatUint(to, 10)
}

// ParseWindowKey - inverse of WindowKey
func ParseWindowKey(key string) (uint64, uint64, error) {
	if !strings.HasPrefix(key, WindowKeyPrefix) {
		return 0, 0, fault.NotEventPack
	}
	s := strings.Split(strings.TrimPrefix(key, WindowKeyPrefix), ":")
	if 2 != len(s) {
		return 0, 0, fault.NotEventPack
	}
	from, err := strconv.ParseUint(s[0], 10, 64)
	if nil != err {
		return 0, 0, err
	}
	to, err := strconv.ParseUint(s[1], 10, 64)
	if nil != err {
		return 0, 0, err
	}
	if 0 == from || to < from {
		return 0, 0, fault.NotEventPack
	}
	return from, to, nil
}

// Window - the aligned window holding a block, block must be > 0
func Window(block uint64, size uint64) (uint64, uint64) {
	k := (block - 1) / size
	return k*size + 1, (k + 1) * size
}

// must hold lock
func (ix *Indexer) catchUp(ctx context.Context) error {
	head, err := ix.reader.BlockNumber(ctx)
	if nil != err {
		ix.log.Errorf("block number error: %s", err)
		return fmt.Errorf("%w: block number: %w", fault.LedgerQueryFailed, err)
	}
	if head <= ix.watermark {
		return nil
	}

	ix.log.Debugf("catch up: %d → %d", ix.watermark+1, head)

	for from := ix.watermark + 1; from <= head; {
		windowFrom, windowTo := Window(from, ix.windowSize)

		var events []ledger.Event
		var to uint64
		if windowTo <= head {
			to = windowTo
			events, err = ix.fullWindow(ctx, windowFrom, windowTo)
		} else {
			to = head
			events, err = ix.query(ctx, from, head)
		}
		if nil != err {
			return err
		}

		// windows are disjoint and ascending so per window order is
		// the global order
		sortEvents(events)
		for _, e := range events {
			if e.BlockNumber < from || e.BlockNumber > to {
				continue
			}
			ix.apply(e)
		}

		ix.watermark = to
		from = to + 1
	}
	return nil
}

// a complete window, from the cache if possible
func (ix *Indexer) fullWindow(ctx context.Context, from uint64, to uint64) ([]ledger.Event, error) {
	key := WindowKey(from, to)

	data, found, err := ix.cache.Get(ctx, key)
	if nil != err {
		ix.log.Warnf("cache get: %s  error: %s", key, err)
	} else if found {
		events, err := ledger.Packed(data).Unpack()
		if nil == err {
			ix.log.Debugf("cache hit: %s  events: %d", key, len(events))
			return events, nil
		}
		ix.log.Warnf("cache entry: %s  unpack error: %s", key, err)
	}

	events, err := ix.query(ctx, from, to)
	if nil != err {
		return nil, err
	}

	sortEvents(events)
	packed, err := ledger.Pack(events)
	if nil != err {
		ix.log.Warnf("pack window: %s  error: %s", key, err)
		return events, nil
	}
	if err := ix.cache.Put(ctx, key, packed, storage.Never); nil != err {
		ix.log.Warnf("cache put: %s  error: %s", key, err)
	}
	return events, nil
}

// network query, always rate limited
func (ix *Indexer) query(ctx context.Context, from uint64, to uint64) ([]ledger.Event, error) {
	if err := ix.limit(ctx); nil != err {
		return nil, err
	}

	ix.log.Infof("query events: [%d, %d]", from, to)
	events, err := ix.reader.Events(ctx, from, to)
	if nil != err {
		ix.log.Errorf("query events: [%d, %d]  error: %s", from, to, err)
		return nil, fmt.Errorf("%w: [%d, %d]: %w", fault.LedgerQueryFailed, from, to, err)
	}
	return events, nil
}

func (ix *Indexer) apply(e ledger.Event) {
	if nil == e.Record {
		ix.log.Warnf("block: %d  log: %d  empty event", e.BlockNumber, e.LogIndex)
		return
	}
	err := ix.r.process(e)
	if nil != err {
		ix.log.Warnf("block: %d  log: %d  %s ignored: %s", e.BlockNumber, e.LogIndex, e.Record.Kind(), err)
		return
	}
	ix.log.Debugf("block: %d  log: %d  %s applied", e.BlockNumber, e.LogIndex, e.Record.Kind())
}

func sortEvents(events []ledger.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Before(events[j])
	})
}
