// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/signalstore/indexer"
	"github.com/bitmark-inc/signalstore/ledger"
	"github.com/bitmark-inc/signalstore/storage"
)

type windowInfo struct {
	window
	Events *int   `json:"events,omitempty"`
	Error  string `json:"error,omitempty"`
}

type windowsReply struct {
	WindowSize     uint64       `json:"windowSize"`
	ContiguousHead uint64       `json:"contiguousHead"`
	Windows        []windowInfo `json:"windows"`
}

func runWindows(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	reply, err := inspectWindows(context.Background(), m.cache, m.config.WindowSize, c.Bool("verify"))
	if nil != err {
		return err
	}
	return m.print(reply)
}

func inspectWindows(ctx context.Context, cache storage.Cache, windowSize uint64, verify bool) (*windowsReply, error) {
	windows, err := listWindows(ctx, cache)
	if nil != err {
		return nil, err
	}

	reply := &windowsReply{
		WindowSize:     windowSize,
		ContiguousHead: contiguousHead(windows, windowSize),
		Windows:        make([]windowInfo, 0, len(windows)),
	}

	for _, w := range windows {
		info := windowInfo{window: w}
		if verify {
			info.Events, info.Error = verifyWindow(ctx, cache, w)
		}
		reply.Windows = append(reply.Windows, info)
	}
	return reply, nil
}

// event count of a readable window or the reason it is unreadable
func verifyWindow(ctx context.Context, cache storage.Cache, w window) (*int, string) {
	data, found, err := cache.Get(ctx, indexer.WindowKey(w.From, w.To))
	if nil != err {
		return nil, err.Error()
	}
	if !found {
		return nil, "expired"
	}
	events, err := ledger.Packed(data).Unpack()
	if nil != err {
		return nil, err.Error()
	}
	for _, e := range events {
		if e.BlockNumber < w.From || e.BlockNumber > w.To {
			return nil, "event outside window"
		}
	}
	n := len(events)
	return &n, ""
}
