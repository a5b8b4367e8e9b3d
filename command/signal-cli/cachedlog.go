// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/bitmark-inc/signalstore/fault"
	"github.com/bitmark-inc/signalstore/indexer"
	"github.com/bitmark-inc/signalstore/ledger"
	"github.com/bitmark-inc/signalstore/storage"
)

// window - one cached block range
type window struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// all cached windows in block order, malformed keys are skipped
func listWindows(ctx context.Context, cache storage.Cache) ([]window, error) {
	lister, ok := cache.(storage.Lister)
	if !ok {
		return nil, fault.NotListable
	}
	keys, err := lister.Keys(ctx, indexer.WindowKeyPrefix)
	if nil != err {
		return nil, err
	}

	windows := make([]window, 0, len(keys))
	for _, k := range keys {
		from, to, err := indexer.ParseWindowKey(k)
		if nil != err {
			continue
		}
		windows = append(windows, window{From: from, To: to})
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].From < windows[j].From
	})
	return windows, nil
}

// last block of the run of windows of size starting at block 1
func contiguousHead(windows []window, size uint64) uint64 {
	head := uint64(0)
	for _, w := range windows {
		if head+1 != w.From || size != w.To-w.From+1 {
			break
		}
		head = w.To
	}
	return head
}

// cachedLog - a ledger reader backed only by the window cache
//
// the head is the end of the contiguous cached windows so the
// indexer finds every window it asks for in the cache, any query
// that reaches Events is for a window that is missing or unreadable
type cachedLog struct {
	head uint64
}

func newCachedLog(ctx context.Context, cache storage.Cache, windowSize uint64) (*cachedLog, error) {
	windows, err := listWindows(ctx, cache)
	if nil != err {
		return nil, err
	}
	return &cachedLog{
		head: contiguousHead(windows, windowSize),
	}, nil
}

func (c *cachedLog) BlockNumber(ctx context.Context) (uint64, error) {
	return c.head, nil
}

func (c *cachedLog) Events(ctx context.Context, fromBlock uint64, toBlock uint64) ([]ledger.Event, error) {
	return nil, fmt.Errorf("%w: %s", fault.WindowNotCached, indexer.WindowKey(fromBlock, toBlock))
}
