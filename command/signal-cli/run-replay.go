// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/signalstore/indexer"
	"github.com/bitmark-inc/signalstore/ratelimit"
	"github.com/bitmark-inc/signalstore/storage"
)

type replayReply struct {
	Head        uint64 `json:"head"`
	Watermark   uint64 `json:"watermark"`
	Error       string `json:"error,omitempty"`
	Tournaments int    `json:"tournaments"`
	Models      int    `json:"models"`
	Predictions int    `json:"predictions"`
	Purchases   int    `json:"purchases"`
	Shipped     int    `json:"shipped"`
	Disclosures int    `json:"disclosures"`
	PublicKeys  int    `json:"publicKeys"`
}

func runReplay(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	reply, err := replay(context.Background(), m.log, m.cache, m.config.Limit(), m.config.WindowSize, c.String("tournament"))
	if nil != err {
		return err
	}
	return m.print(reply)
}

// rebuild the relations and count the rows
//
// a failed catch up is reported with the counts reached so far; limit
// paces the reads of missing or unreadable windows
func replay(ctx context.Context, log *logger.L, cache storage.Cache, limit ratelimit.Func, windowSize uint64, tournamentId string) (*replayReply, error) {
	reader, err := newCachedLog(ctx, cache, windowSize)
	if nil != err {
		return nil, err
	}

	ix, err := indexer.New(log, reader, cache, limit, windowSize)
	if nil != err {
		return nil, err
	}

	reply := &replayReply{
		Head: reader.head,
	}
	if err := ix.CatchUp(ctx); nil != err {
		log.Errorf("replay: error: %s", err)
		reply.Error = err.Error()
	}
	reply.Watermark = ix.Watermark()

	tournaments, err := ix.FetchTournaments(ctx, indexer.TournamentFilter{TournamentId: tournamentId, SkipCatchUp: true})
	if nil != err {
		return nil, err
	}
	reply.Tournaments = len(tournaments)

	models, err := ix.FetchModels(ctx, indexer.ModelFilter{TournamentId: tournamentId, SkipCatchUp: true})
	if nil != err {
		return nil, err
	}
	reply.Models = len(models)

	predictions, err := ix.FetchPredictions(ctx, indexer.PredictionFilter{TournamentId: tournamentId, SkipCatchUp: true})
	if nil != err {
		return nil, err
	}
	reply.Predictions = len(predictions)

	purchases, err := ix.FetchPurchases(ctx, indexer.PurchaseFilter{TournamentId: tournamentId, SkipCatchUp: true})
	if nil != err {
		return nil, err
	}
	reply.Purchases = len(purchases)
	for _, p := range purchases {
		if nil != p.EncryptedContentKey {
			reply.Shipped += 1
		}
	}

	disclosures, err := ix.FetchDisclosures(ctx, indexer.DisclosureFilter{TournamentId: tournamentId, SkipCatchUp: true})
	if nil != err {
		return nil, err
	}
	reply.Disclosures = len(disclosures)

	publicKeys, err := ix.FetchPublicKeys(ctx, indexer.PublicKeyFilter{SkipCatchUp: true})
	if nil != err {
		return nil, err
	}
	reply.PublicKeys = len(publicKeys)

	return reply, nil
}
