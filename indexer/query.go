// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"context"

	"github.com/bitmark-inc/signalstore/ledger"
)

// filters are conjunctions of equality tests, an empty string or a
// zero round matches anything
//
// SkipCatchUp is set by a caller that has just caught up within the
// same operation

// TournamentFilter - selects tournaments
type TournamentFilter struct {
	TournamentId string
	SkipCatchUp  bool
}

// ModelFilter - selects models
type ModelFilter struct {
	ModelId      string
	TournamentId string
	Owner        string
	SkipCatchUp  bool
}

// PredictionFilter - selects predictions
type PredictionFilter struct {
	ModelId          string
	TournamentId     string
	Owner            string
	ExecutionStartAt uint64
	SkipCatchUp      bool
}

// PurchaseFilter - selects purchases
type PurchaseFilter struct {
	ModelId          string
	TournamentId     string
	Owner            string
	Purchaser        string
	ExecutionStartAt uint64
	SkipCatchUp      bool
}

// PublicKeyFilter - selects identity key registrations
type PublicKeyFilter struct {
	Owner       string
	SkipCatchUp bool
}

// DisclosureFilter - selects published generators
type DisclosureFilter struct {
	ModelId          string
	TournamentId     string
	Owner            string
	ExecutionStartAt uint64
	SkipCatchUp      bool
}

func match(want string, actual string) bool {
	return "" == want || want == actual
}

func matchRound(want uint64, actual uint64) bool {
	return 0 == want || want == actual
}

// must hold lock
func (ix *Indexer) prepare(ctx context.Context, skipCatchUp bool) error {
	if skipCatchUp {
		return nil
	}
	return ix.catchUp(ctx)
}

// FetchTournaments - tournaments in creation order
func (ix *Indexer) FetchTournaments(ctx context.Context, filter TournamentFilter) ([]ledger.Tournament, error) {
	ix.Lock()
	defer ix.Unlock()

	if err := ix.prepare(ctx, filter.SkipCatchUp); nil != err {
		return nil, err
	}

	result := make([]ledger.Tournament, 0)
	for _, id := range ix.r.tournamentOrder {
		if match(filter.TournamentId, id) {
			result = append(result, ix.r.tournaments[id])
		}
	}
	return result, nil
}

// FetchModels - models in creation order
func (ix *Indexer) FetchModels(ctx context.Context, filter ModelFilter) ([]Model, error) {
	ix.Lock()
	defer ix.Unlock()

	if err := ix.prepare(ctx, filter.SkipCatchUp); nil != err {
		return nil, err
	}

	result := make([]Model, 0)
	for _, id := range ix.r.modelOrder {
		m := ix.r.models[id]
		if match(filter.ModelId, m.ModelId) &&
			match(filter.TournamentId, m.TournamentId) &&
			match(filter.Owner, m.Owner) {
			result = append(result, *m)
		}
	}
	return result, nil
}

// FetchPredictions - predictions in creation order
func (ix *Indexer) FetchPredictions(ctx context.Context, filter PredictionFilter) ([]Prediction, error) {
	ix.Lock()
	defer ix.Unlock()

	if err := ix.prepare(ctx, filter.SkipCatchUp); nil != err {
		return nil, err
	}

	result := make([]Prediction, 0)
	for _, key := range ix.r.predictionOrder {
		p := ix.r.predictions[key]
		if match(filter.ModelId, p.ModelId) &&
			match(filter.TournamentId, p.TournamentId) &&
			match(filter.Owner, p.Owner) &&
			matchRound(filter.ExecutionStartAt, p.ExecutionStartAt) {
			result = append(result, p.clone())
		}
	}
	return result, nil
}

// FetchPurchases - purchases in creation order
func (ix *Indexer) FetchPurchases(ctx context.Context, filter PurchaseFilter) ([]Purchase, error) {
	ix.Lock()
	defer ix.Unlock()

	if err := ix.prepare(ctx, filter.SkipCatchUp); nil != err {
		return nil, err
	}

	result := make([]Purchase, 0)
	for _, key := range ix.r.purchaseOrder {
		p := ix.r.purchases[key]
		if match(filter.ModelId, p.ModelId) &&
			match(filter.TournamentId, p.TournamentId) &&
			match(filter.Owner, p.Owner) &&
			match(filter.Purchaser, p.Purchaser) &&
			matchRound(filter.ExecutionStartAt, p.ExecutionStartAt) {
			result = append(result, p.clone())
		}
	}
	return result, nil
}

// FetchPublicKeys - registry entries, oldest first
func (ix *Indexer) FetchPublicKeys(ctx context.Context, filter PublicKeyFilter) ([]PublicKey, error) {
	ix.Lock()
	defer ix.Unlock()

	if err := ix.prepare(ctx, filter.SkipCatchUp); nil != err {
		return nil, err
	}

	result := make([]PublicKey, 0)
	for _, k := range ix.r.publicKeys {
		if match(filter.Owner, k.Owner) {
			result = append(result, k.clone())
		}
	}
	return result, nil
}

// FetchDisclosures - published generators in publication order
func (ix *Indexer) FetchDisclosures(ctx context.Context, filter DisclosureFilter) ([]Disclosure, error) {
	ix.Lock()
	defer ix.Unlock()

	if err := ix.prepare(ctx, filter.SkipCatchUp); nil != err {
		return nil, err
	}

	result := make([]Disclosure, 0)
	for _, key := range ix.r.disclosureOrder {
		d := ix.r.disclosures[key]
		if match(filter.ModelId, d.ModelId) &&
			match(filter.TournamentId, d.TournamentId) &&
			match(filter.Owner, d.Owner) &&
			matchRound(filter.ExecutionStartAt, d.ExecutionStartAt) {
			result = append(result, d.clone())
		}
	}
	return result, nil
}

// CurrentPublicKey - most recent registration of an owner, nil if none
func (ix *Indexer) CurrentPublicKey(ctx context.Context, owner string, skipCatchUp bool) ([]byte, error) {
	keys, err := ix.FetchPublicKeys(ctx, PublicKeyFilter{Owner: owner, SkipCatchUp: skipCatchUp})
	if nil != err {
		return nil, err
	}
	if 0 == len(keys) {
		return nil, nil
	}
	return keys[len(keys)-1].PublicKey, nil
}
