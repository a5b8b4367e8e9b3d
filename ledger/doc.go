// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the contract event log and the client used to reach it
//
// All durable facts are events emitted by the marketplace contract,
// each identified by (block number, log index).  Nothing is updated in
// place on the ledger; the indexer rebuilds its relations by replaying
// the events in that order.
//
//	Event                Key                                          Effect
//	|___ TournamentCreated  tournament id                              create
//	|___ ModelCreated       model id                                   create
//	|___ PredictionCreated  (model id, execution start)                create
//	|___ PredictionPublished (model id, execution start)               update: content key generator
//	|___ PurchaseCreated    (model id, execution start, purchaser)     create
//	|___ PurchaseShipped    (model id, execution start, purchaser)     update: encrypted content key
//	|___ PublicKeyChanged   owner                                      append
//
// The binary window format produced by Pack is the value stored in the
// external cache for a full, immutable block window.
package ledger
