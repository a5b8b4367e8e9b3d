// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package indexer - materialise the contract log into relations
//
// The log is read in block windows aligned to multiples of the window
// size:
//
//	[k*size+1, (k+1)*size]
//
// so that a window completed below the head is immutable and the same
// for every indexer.  Completed windows are stored in the cache under
//
//	event_window:<from>:<to>
//
// and are never fetched from the ledger again by any indexer sharing
// the cache.  A window truncated by the head is always fetched from the
// ledger and never cached.
//
// Events are applied in (block, log index) order.  A creation event for
// an existing key and an update event for a missing key are logged and
// ignored.
package indexer
