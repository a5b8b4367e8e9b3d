// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer_test

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/signalstore/fault"
	"github.com/bitmark-inc/signalstore/indexer"
	"github.com/bitmark-inc/signalstore/ledger"
	"github.com/bitmark-inc/signalstore/ledger/ledgertest"
	"github.com/bitmark-inc/signalstore/ledger/mocks"
	"github.com/bitmark-inc/signalstore/storage"
)

func TestNewInvalid(t *testing.T) {
	chain := ledgertest.New()
	cache := storage.NewMemory()

	_, err := indexer.New(nil, nil, cache, nil, 10)
	assert.Equal(t, fault.MissingLedgerClient, err, "wrong error")

	_, err = indexer.New(nil, chain, nil, nil, 10)
	assert.Equal(t, fault.MissingCache, err, "wrong error")

	_, err = indexer.New(nil, chain, cache, nil, 0)
	assert.Equal(t, fault.InvalidWindowSize, err, "wrong error")
}

func TestRelations(t *testing.T) {
	chain := ledgertest.New()
	populate(chain)

	s := takeSnapshot(t, newIndexer(t, chain, storage.NewMemory(), 1000))

	assert.Equal(t, []ledger.Tournament{cryptoDaily}, s.Tournaments, "invalid tournament accepted")

	assert.Equal(t, []indexer.Model{
		{ModelId: "m1", TournamentId: "crypto_daily", Owner: alice, PredictionLicense: "CC0-1.0"},
		{ModelId: "m2", TournamentId: "crypto_daily", Owner: bob},
	}, s.Models, "wrong models")

	assert.Equal(t, []indexer.Prediction{
		{
			ModelId:             "m1",
			ExecutionStartAt:    4500,
			TournamentId:        "crypto_daily",
			Owner:               alice,
			EncryptedContent:    []byte("c1"),
			Price:               big.NewInt(5),
			ContentKeyGenerator: []byte("generator"),
		},
		{
			ModelId:          "m2",
			ExecutionStartAt: 4500,
			TournamentId:     "crypto_daily",
			Owner:            bob,
			EncryptedContent: []byte("c2"),
		},
	}, s.Predictions, "wrong predictions")

	assert.Equal(t, []indexer.Purchase{
		{
			ModelId:             "m1",
			ExecutionStartAt:    4500,
			TournamentId:        "crypto_daily",
			Owner:               alice,
			Purchaser:           bob,
			PublicKey:           []byte("bob-key"),
			EncryptedContentKey: []byte("sealed"),
		},
	}, s.Purchases, "wrong purchases")

	assert.Equal(t, []indexer.PublicKey{
		{Owner: alice, PublicKey: []byte("alice-key-1"), BlockNumber: 9},
		{Owner: alice, PublicKey: []byte("alice-key-2"), BlockNumber: 21},
		{Owner: bob, BlockNumber: 21},
	}, s.PublicKeys, "wrong public keys")

	assert.Equal(t, []indexer.Disclosure{
		{
			ModelId:             "m1",
			ExecutionStartAt:    4500,
			TournamentId:        "crypto_daily",
			Owner:               alice,
			ContentKeyGenerator: []byte("generator"),
		},
	}, s.Disclosures, "wrong disclosures")

	assert.Equal(t, uint64(31), s.Watermark, "wrong watermark")
}

func TestReplayIndependentOfWindowSize(t *testing.T) {
	chain := ledgertest.New()
	populate(chain)

	expected := takeSnapshot(t, newIndexer(t, chain, storage.NewMemory(), 1))

	for _, size := range []uint64{1, 7, 1000} {
		cache := storage.NewMemory()
		first := takeSnapshot(t, newIndexer(t, chain, cache, size))
		assert.Equal(t, expected, first, "window size: %d", size)

		// replay the same log from the cache
		second := takeSnapshot(t, newIndexer(t, chain, cache, size))
		assert.Equal(t, expected, second, "cached window size: %d", size)
	}
}

func TestIncrementalCatchUp(t *testing.T) {
	chain := ledgertest.New()
	populate(chain)

	expected := takeSnapshot(t, newIndexer(t, chain, storage.NewMemory(), 1000))

	// same log applied while the head moves through it
	replay := ledgertest.New()
	ix := newIndexer(t, replay, storage.NewMemory(), 7)
	ctx := context.Background()

	// a block is only visible once complete
	events, _ := chain.Events(ctx, 1, 31)
	for i := 0; i < len(events); {
		block := events[i].BlockNumber
		records := make([]ledger.Record, 0)
		for ; i < len(events) && block == events[i].BlockNumber; i += 1 {
			records = append(records, events[i].Record)
		}
		replay.EmitAt(block, records...)

		err := ix.CatchUp(ctx)
		assert.Nil(t, err, "catch up error at block: %d", block)
	}
	replay.MineTo(31)

	assert.Equal(t, expected, takeSnapshot(t, ix), "incremental replay differs")
}

func TestApplicationOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := mocks.NewMockReader(ctrl)

	// delivered in reverse, applying in this order would orphan all
	// but the first
	events := []ledger.Event{
		{BlockNumber: 7, LogIndex: 1, Record: &ledger.PublicKeyChanged{Owner: alice, PublicKey: []byte("second")}},
		{BlockNumber: 7, LogIndex: 0, Record: &ledger.PublicKeyChanged{Owner: alice, PublicKey: []byte("first")}},
		{BlockNumber: 5, LogIndex: 1, Record: &ledger.PredictionCreated{ModelId: "m1", ExecutionStartAt: 4500, EncryptedContent: []byte{1}}},
		{BlockNumber: 5, LogIndex: 0, Record: &ledger.ModelCreated{ModelId: "m1", TournamentId: "crypto_daily", Owner: alice}},
		{BlockNumber: 2, LogIndex: 0, Record: &ledger.TournamentCreated{Tournament: cryptoDaily}},
	}

	gomock.InOrder(
		reader.EXPECT().BlockNumber(gomock.Any()).Return(uint64(9), nil),
		reader.EXPECT().Events(gomock.Any(), uint64(1), uint64(9)).Return(events, nil),
	)

	ix := newIndexer(t, reader, storage.NewMemory(), 1000)
	ctx := context.Background()

	predictions, err := ix.FetchPredictions(ctx, indexer.PredictionFilter{})
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, 1, len(predictions), "prediction not applied after its model")
	assert.Equal(t, "crypto_daily", predictions[0].TournamentId, "wrong tournament")

	reader.EXPECT().BlockNumber(gomock.Any()).Return(uint64(9), nil)
	key, err := ix.CurrentPublicKey(ctx, alice, false)
	assert.Nil(t, err, "public key error")
	assert.Equal(t, []byte("second"), key, "log index order not applied")
}

func TestCacheNonDuplication(t *testing.T) {
	chain := ledgertest.New()
	populate(chain)
	chain.MineTo(2000)

	cache := storage.NewMemory()
	first := takeSnapshot(t, newIndexer(t, chain, cache, 1000))
	assert.Equal(t, []ledgertest.Range{{From: 1, To: 1000}, {From: 1001, To: 2000}}, chain.Queries(), "wrong first queries")

	chain.ResetQueries()

	second := takeSnapshot(t, newIndexer(t, chain, cache, 1000))
	assert.Equal(t, 0, len(chain.Queries()), "cached windows queried again")
	assert.Equal(t, first, second, "cached replay differs")
}

func TestWindowedCatchUp(t *testing.T) {
	chain := ledgertest.New()
	chain.EmitAt(500, &ledger.TournamentCreated{Tournament: cryptoDaily})
	chain.EmitAt(1500, &ledger.ModelCreated{ModelId: "m1", TournamentId: "crypto_daily", Owner: alice})
	chain.MineTo(2500)

	cache := storage.NewMemory()
	limited := 0
	limit := func(ctx context.Context) error {
		limited += 1
		return nil
	}

	ix := newLimitedIndexer(t, chain, cache, limit, 1000)
	ctx := context.Background()

	models, err := ix.FetchModels(ctx, indexer.ModelFilter{})
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, 1, len(models), "wrong model count")

	assert.Equal(t, []ledgertest.Range{
		{From: 1, To: 1000},
		{From: 1001, To: 2000},
		{From: 2001, To: 2500},
	}, chain.Queries(), "wrong queries")
	assert.Equal(t, 3, limited, "rate limit not applied to every query")

	keys, _ := cache.Keys(ctx, indexer.WindowKeyPrefix)
	sort.Strings(keys)
	assert.Equal(t, []string{"event_window:1001:2000", "event_window:1:1000"}, keys, "partial window cached")
	assert.Equal(t, uint64(2500), ix.Watermark(), "wrong watermark")

	// no new blocks, no queries
	chain.ResetQueries()
	_, err = ix.FetchModels(ctx, indexer.ModelFilter{})
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, 0, len(chain.Queries()), "query without new blocks")

	// the window completes and becomes cacheable
	chain.EmitAt(2700, &ledger.ModelCreated{ModelId: "m2", TournamentId: "crypto_daily", Owner: bob})
	chain.MineTo(3000)

	models, err = ix.FetchModels(ctx, indexer.ModelFilter{})
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, 2, len(models), "wrong model count")
	assert.Equal(t, []ledgertest.Range{{From: 2001, To: 3000}}, chain.Queries(), "wrong queries")

	_, found, _ := cache.Get(ctx, "event_window:2001:3000")
	assert.True(t, found, "completed window not cached")
}

func TestFailureKeepsWatermark(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := mocks.NewMockReader(ctrl)
	cache := storage.NewMemory()
	ix := newIndexer(t, reader, cache, 1000)
	ctx := context.Background()

	networkError := errors.New("connection reset")
	window1 := []ledger.Event{
		{BlockNumber: 10, Record: &ledger.TournamentCreated{Tournament: cryptoDaily}},
	}
	window2 := []ledger.Event{
		{BlockNumber: 1010, Record: &ledger.ModelCreated{ModelId: "m1", TournamentId: "crypto_daily", Owner: alice}},
	}

	gomock.InOrder(
		reader.EXPECT().BlockNumber(gomock.Any()).Return(uint64(2500), nil),
		reader.EXPECT().Events(gomock.Any(), uint64(1), uint64(1000)).Return(window1, nil),
		reader.EXPECT().Events(gomock.Any(), uint64(1001), uint64(2000)).Return(nil, networkError),
	)

	err := ix.CatchUp(ctx)
	assert.True(t, errors.Is(err, fault.LedgerQueryFailed), "not a ledger query error: %v", err)
	assert.True(t, errors.Is(err, networkError), "cause lost: %v", err)
	assert.True(t, fault.IsErrLedger(err), "wrong class")
	assert.Equal(t, uint64(1000), ix.Watermark(), "watermark advanced past failing window")

	// retry resumes at the failed window
	gomock.InOrder(
		reader.EXPECT().BlockNumber(gomock.Any()).Return(uint64(2500), nil),
		reader.EXPECT().Events(gomock.Any(), uint64(1001), uint64(2000)).Return(window2, nil),
		reader.EXPECT().Events(gomock.Any(), uint64(2001), uint64(2500)).Return(nil, nil),
	)

	models, err := ix.FetchModels(ctx, indexer.ModelFilter{})
	assert.Nil(t, err, "retry error")
	assert.Equal(t, 1, len(models), "wrong model count")
	assert.Equal(t, uint64(2500), ix.Watermark(), "wrong watermark")
}

func TestHeadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := mocks.NewMockReader(ctrl)
	reader.EXPECT().BlockNumber(gomock.Any()).Return(uint64(0), errors.New("timeout"))

	ix := newIndexer(t, reader, storage.NewMemory(), 1000)
	_, err := ix.FetchTournaments(context.Background(), indexer.TournamentFilter{})
	assert.True(t, errors.Is(err, fault.LedgerQueryFailed), "wrong error: %v", err)
}

func TestRateLimitRefusal(t *testing.T) {
	chain := ledgertest.New()
	populate(chain)

	refused := errors.New("refused")
	limit := func(ctx context.Context) error {
		return refused
	}

	ix := newLimitedIndexer(t, chain, storage.NewMemory(), limit, 1000)
	err := ix.CatchUp(context.Background())
	assert.Equal(t, refused, err, "wrong error")
	assert.Equal(t, 0, len(chain.Queries()), "query despite refusal")
	assert.Equal(t, uint64(0), ix.Watermark(), "watermark advanced")
}

func TestCorruptCacheEntry(t *testing.T) {
	chain := ledgertest.New()
	populate(chain)
	chain.MineTo(1000)

	cache := storage.NewMemory()
	ctx := context.Background()
	_ = cache.Put(ctx, indexer.WindowKey(1, 1000), []byte{0xff, 0x00}, storage.Never)

	s := takeSnapshot(t, newIndexer(t, chain, cache, 1000))
	assert.Equal(t, 2, len(s.Models), "corrupt entry not refetched")
	assert.Equal(t, []ledgertest.Range{{From: 1, To: 1000}}, chain.Queries(), "wrong queries")

	data, _, _ := cache.Get(ctx, indexer.WindowKey(1, 1000))
	events, err := ledger.Packed(data).Unpack()
	assert.Nil(t, err, "corrupt entry not replaced")
	assert.NotEqual(t, 0, len(events), "empty replacement")
}

func TestSkipCatchUp(t *testing.T) {
	chain := ledgertest.New()
	chain.CreateTournament(cryptoDaily)

	ix := newIndexer(t, chain, storage.NewMemory(), 1000)
	ctx := context.Background()

	tournaments, err := ix.FetchTournaments(ctx, indexer.TournamentFilter{})
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, 1, len(tournaments), "wrong count")

	chain.Emit(&ledger.TournamentCreated{Tournament: ledger.Tournament{TournamentId: "stocks", ExecutionTime: 86400}})
	chain.ResetQueries()

	tournaments, err = ix.FetchTournaments(ctx, indexer.TournamentFilter{SkipCatchUp: true})
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, 1, len(tournaments), "caught up despite skip")
	assert.Equal(t, 0, len(chain.Queries()), "queried despite skip")

	tournaments, err = ix.FetchTournaments(ctx, indexer.TournamentFilter{TournamentId: "stocks"})
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, 1, len(tournaments), "new tournament missing")
}

func TestFilters(t *testing.T) {
	chain := ledgertest.New()
	populate(chain)

	ix := newIndexer(t, chain, storage.NewMemory(), 1000)
	ctx := context.Background()

	models, _ := ix.FetchModels(ctx, indexer.ModelFilter{Owner: bob})
	assert.Equal(t, 1, len(models), "wrong owner filter")
	assert.Equal(t, "m2", models[0].ModelId, "wrong model")

	predictions, _ := ix.FetchPredictions(ctx, indexer.PredictionFilter{TournamentId: "crypto_daily", ExecutionStartAt: 4500})
	assert.Equal(t, 2, len(predictions), "wrong round filter")

	predictions, _ = ix.FetchPredictions(ctx, indexer.PredictionFilter{ExecutionStartAt: 8100})
	assert.Equal(t, 0, len(predictions), "wrong round filter")

	purchases, _ := ix.FetchPurchases(ctx, indexer.PurchaseFilter{Owner: alice, Purchaser: bob})
	assert.Equal(t, 1, len(purchases), "wrong purchase filter")

	purchases, _ = ix.FetchPurchases(ctx, indexer.PurchaseFilter{Owner: bob})
	assert.Equal(t, 0, len(purchases), "wrong purchase filter")

	disclosures, _ := ix.FetchDisclosures(ctx, indexer.DisclosureFilter{Owner: bob})
	assert.Equal(t, 0, len(disclosures), "wrong disclosure filter")

	key, _ := ix.CurrentPublicKey(ctx, "nobody", false)
	assert.Nil(t, key, "key for unknown owner")
}

func TestResultsAreCopies(t *testing.T) {
	chain := ledgertest.New()
	populate(chain)

	ix := newIndexer(t, chain, storage.NewMemory(), 1000)
	ctx := context.Background()

	predictions, _ := ix.FetchPredictions(ctx, indexer.PredictionFilter{ModelId: "m1"})
	predictions[0].EncryptedContent[0] = 'X'
	predictions[0].Price.SetInt64(999)
	predictions[0].ContentKeyGenerator = nil

	again, _ := ix.FetchPredictions(ctx, indexer.PredictionFilter{ModelId: "m1"})
	assert.Equal(t, []byte("c1"), again[0].EncryptedContent, "content shared")
	assert.Equal(t, int64(5), again[0].Price.Int64(), "price shared")
	assert.Equal(t, []byte("generator"), again[0].ContentKeyGenerator, "generator shared")

	purchases, _ := ix.FetchPurchases(ctx, indexer.PurchaseFilter{})
	purchases[0].EncryptedContentKey[0] = 'X'
	again2, _ := ix.FetchPurchases(ctx, indexer.PurchaseFilter{})
	assert.Equal(t, []byte("sealed"), again2[0].EncryptedContentKey, "sealed key shared")
}

func TestWindowKeys(t *testing.T) {
	assert.Equal(t, "event_window:1001:2000", indexer.WindowKey(1001, 2000), "wrong key")

	from, to, err := indexer.ParseWindowKey("event_window:1001:2000")
	assert.Nil(t, err, "parse error")
	assert.Equal(t, uint64(1001), from, "wrong from")
	assert.Equal(t, uint64(2000), to, "wrong to")

	for _, bad := range []string{"event_window:", "other:1:2", "event_window:5:1", "event_window:0:9", "event_window:a:b"} {
		_, _, err := indexer.ParseWindowKey(bad)
		assert.NotNil(t, err, "parsed: %q", bad)
	}

	type window struct{ block, from, to uint64 }
	for _, w := range []window{{1, 1, 1000}, {1000, 1, 1000}, {1001, 1001, 2000}, {2500, 2001, 3000}} {
		from, to := indexer.Window(w.block, 1000)
		assert.Equal(t, w.from, from, "block: %d", w.block)
		assert.Equal(t, w.to, to, "block: %d", w.block)
	}
}
