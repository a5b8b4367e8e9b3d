// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledgertest - an in-memory contract ledger for tests
//
// Every successful transaction is mined into its own block and its
// events receive consecutive log indexes.  The contract rules that the
// store relies on are checked and a violation produces a reverted
// receipt without events, like the real contract.
package ledgertest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/bitmark-inc/signalstore/ledger"
)

// Range - one Events query
type Range struct {
	From uint64
	To   uint64
}

type modelKey = string

type predictionKey struct {
	modelId          string
	executionStartAt uint64
}

type purchaseKey struct {
	predictionKey
	purchaser string
}

// Chain - simulated ledger, safe for concurrent use
type Chain struct {
	sync.Mutex

	head        uint64
	events      []ledger.Event
	balances    map[string]*big.Int
	txCount     uint64
	queries     []Range
	eventsError error

	tournaments map[string]ledger.Tournament
	models      map[modelKey]*ledger.ModelCreated
	predictions map[predictionKey]*ledger.PredictionCreated
	published   map[predictionKey]bool
	purchases   map[purchaseKey]bool
	shipped     map[purchaseKey]bool
}

// New - create an empty chain at block zero
func New() *Chain {
	return &Chain{
		balances:    make(map[string]*big.Int),
		tournaments: make(map[string]ledger.Tournament),
		models:      make(map[modelKey]*ledger.ModelCreated),
		predictions: make(map[predictionKey]*ledger.PredictionCreated),
		published:   make(map[predictionKey]bool),
		purchases:   make(map[purchaseKey]bool),
		shipped:     make(map[purchaseKey]bool),
	}
}

// BlockNumber - current head
func (c *Chain) BlockNumber(ctx context.Context) (uint64, error) {
	c.Lock()
	defer c.Unlock()
	return c.head, nil
}

// Events - all events in the inclusive range, ordered by block and log index
func (c *Chain) Events(ctx context.Context, fromBlock uint64, toBlock uint64) ([]ledger.Event, error) {
	c.Lock()
	defer c.Unlock()

	c.queries = append(c.queries, Range{From: fromBlock, To: toBlock})
	if nil != c.eventsError {
		return nil, c.eventsError
	}

	result := make([]ledger.Event, 0)
	for _, e := range c.events {
		if e.BlockNumber >= fromBlock && e.BlockNumber <= toBlock {
			result = append(result, e)
		}
	}
	return result, nil
}

// Balance - balance of an address, zero if never funded
func (c *Chain) Balance(ctx context.Context, address string) (*big.Int, error) {
	c.Lock()
	defer c.Unlock()
	return new(big.Int).Set(c.balance(address)), nil
}

// SetBalance - fund an address
func (c *Chain) SetBalance(address string, amount *big.Int) {
	c.Lock()
	defer c.Unlock()
	c.balances[address] = new(big.Int).Set(amount)
}

// Queries - the Events ranges requested so far
func (c *Chain) Queries() []Range {
	c.Lock()
	defer c.Unlock()
	return append([]Range{}, c.queries...)
}

// ResetQueries - forget the recorded Events ranges
func (c *Chain) ResetQueries() {
	c.Lock()
	defer c.Unlock()
	c.queries = nil
}

// FailEvents - make every following Events call return err, nil to clear
func (c *Chain) FailEvents(err error) {
	c.Lock()
	defer c.Unlock()
	c.eventsError = err
}

// Mine - advance the head by empty blocks
func (c *Chain) Mine(count uint64) {
	c.Lock()
	defer c.Unlock()
	c.head += count
}

// MineTo - advance the head to a block, never backwards
func (c *Chain) MineTo(block uint64) {
	c.Lock()
	defer c.Unlock()
	if block > c.head {
		c.head = block
	}
}

// Emit - mine a block holding the given records without any rule checks
func (c *Chain) Emit(records ...ledger.Record) uint64 {
	c.Lock()
	defer c.Unlock()
	return c.mine(records)
}

// EmitAt - append records to a specific block without any rule checks
//
// the block must not be before the last block holding events
func (c *Chain) EmitAt(block uint64, records ...ledger.Record) {
	c.Lock()
	defer c.Unlock()

	logIndex := uint64(0)
	if n := len(c.events); n > 0 {
		last := c.events[n-1]
		if last.BlockNumber > block {
			panic(fmt.Sprintf("EmitAt: block %d is before %d", block, last.BlockNumber))
		}
		if last.BlockNumber == block {
			logIndex = last.LogIndex + 1
		}
	}
	for _, r := range records {
		c.events = append(c.events, ledger.Event{BlockNumber: block, LogIndex: logIndex, Record: r})
		logIndex += 1
	}
	if block > c.head {
		c.head = block
	}
}

// CreateTournament - administrator action
func (c *Chain) CreateTournament(t ledger.Tournament) {
	c.Lock()
	defer c.Unlock()
	c.tournaments[t.TournamentId] = t
	c.mine([]ledger.Record{&ledger.TournamentCreated{Tournament: t}})
}

func (c *Chain) balance(address string) *big.Int {
	if b, ok := c.balances[address]; ok {
		return b
	}
	return new(big.Int)
}

// put records into a new block and return its number
func (c *Chain) mine(records []ledger.Record) uint64 {
	c.head += 1
	for i, r := range records {
		c.events = append(c.events, ledger.Event{
			BlockNumber: c.head,
			LogIndex:    uint64(i),
			Record:      r,
		})
	}
	return c.head
}
