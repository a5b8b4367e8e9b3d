// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/signalstore/indexer"
	"github.com/bitmark-inc/signalstore/ledger"
	"github.com/bitmark-inc/signalstore/ledger/ledgertest"
	"github.com/bitmark-inc/signalstore/storage"
)

const (
	testingDirName = "testing"
	testWindowSize = 10

	alice = "0x00000000000000000000000000000000000000a1"
	bob   = "0x00000000000000000000000000000000000000b2"
)

func TestMain(m *testing.M) {
	_ = os.RemoveAll(testingDirName)
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		panic(fmt.Sprintf("logger initialization failed: %s", err))
	}

	rc := m.Run()

	logger.Finalise()
	_ = os.RemoveAll(testingDirName)
	os.Exit(rc)
}

// a cache filled by indexing a small chain
//
// windows: [1,10] 2 events, [11,20] 3 events, [21,30] 1 event, the
// partial window [31,35] is never cached
func filledCache(t *testing.T) storage.Cache {
	chain := ledgertest.New()
	chain.CreateTournament(ledger.Tournament{
		TournamentId:             "crypto_daily",
		ExecutionStartAt:         900,
		PredictionTime:           900,
		PurchaseTime:             900,
		ShippingTime:             300,
		ExecutionPreparationTime: 300,
		ExecutionTime:            3600,
		PublicationTime:          900,
	})
	chain.EmitAt(3, &ledger.ModelCreated{ModelId: "m1", TournamentId: "crypto_daily", Owner: alice})
	chain.EmitAt(12,
		&ledger.PredictionCreated{ModelId: "m1", ExecutionStartAt: 900, EncryptedContent: []byte{1}, Price: big.NewInt(5)},
		&ledger.PurchaseCreated{ModelId: "m1", ExecutionStartAt: 900, Purchaser: bob, PublicKey: []byte{2}},
	)
	chain.EmitAt(15, &ledger.PurchaseShipped{ModelId: "m1", ExecutionStartAt: 900, Purchaser: bob, EncryptedContentKey: []byte{3}})
	chain.EmitAt(21, &ledger.PublicKeyChanged{Owner: bob, PublicKey: []byte{2}})
	chain.MineTo(35)

	cache := storage.NewMemory()
	ix, err := indexer.New(logger.New("indexer"), chain, cache, nil, testWindowSize)
	if nil != err {
		t.Fatalf("indexer create error: %s", err)
	}
	if err := ix.CatchUp(context.Background()); nil != err {
		t.Fatalf("catch up error: %s", err)
	}
	return cache
}
