// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"math/big"

	"github.com/bitmark-inc/signalstore/contentkey"
	"github.com/bitmark-inc/signalstore/fault"
	"github.com/bitmark-inc/signalstore/indexer"
	"github.com/bitmark-inc/signalstore/ledger"
)

// every write submits at most one transaction for its whole batch and
// returns a nil receipt when nothing needed to be submitted

// natural key of a prediction, repeats within a batch are skipped
type roundKey struct {
	modelId          string
	executionStartAt uint64
}

// ModelParams - a model to register
type ModelParams struct {
	ModelId           string
	TournamentId      string
	PredictionLicense string
}

// PredictionParams - plaintext prediction of an own model
type PredictionParams struct {
	ModelId          string
	ExecutionStartAt uint64
	Content          []byte
	Price            *big.Int // nil if not for sale
}

// PurchaseParams - a prediction to buy
type PurchaseParams struct {
	ModelId          string
	ExecutionStartAt uint64
}

// ShipParams - a purchase to deliver the content key for
type ShipParams struct {
	ModelId          string
	ExecutionStartAt uint64
	Purchaser        string
}

// PublishParams - an own prediction to disclose publicly
type PublishParams struct {
	ModelId          string
	ExecutionStartAt uint64
}

// CreateModelsIfNotExist - register the models not yet on the ledger
func (s *Store) CreateModelsIfNotExist(ctx context.Context, params []ModelParams) (*ledger.Receipt, error) {
	s.Lock()
	defer s.Unlock()

	if 0 == len(params) {
		return nil, nil
	}
	if err := s.indexer.CatchUp(ctx); nil != err {
		return nil, err
	}

	arguments := make([]ledger.CreateModelParams, 0, len(params))
	seen := make(map[string]bool)
	for _, p := range params {
		if seen[p.ModelId] {
			continue
		}
		seen[p.ModelId] = true

		models, err := s.indexer.FetchModels(ctx, indexer.ModelFilter{ModelId: p.ModelId, SkipCatchUp: true})
		if nil != err {
			return nil, err
		}
		if 0 != len(models) {
			continue
		}
		arguments = append(arguments, ledger.CreateModelParams{
			ModelId:           p.ModelId,
			TournamentId:      p.TournamentId,
			PredictionLicense: p.PredictionLicense,
		})
	}
	if 0 == len(arguments) {
		return nil, nil
	}

	return s.transact(ctx, ledger.CreateModels, arguments, len(arguments), nil)
}

// CreatePredictions - encrypt and submit predictions of own models
//
// the key info of each prediction is persisted before submission
func (s *Store) CreatePredictions(ctx context.Context, params []PredictionParams) (*ledger.Receipt, error) {
	s.Lock()
	defer s.Unlock()

	if 0 == len(params) {
		return nil, nil
	}
	if err := s.indexer.CatchUp(ctx); nil != err {
		return nil, err
	}

	arguments := make([]ledger.CreatePredictionParams, 0, len(params))
	seen := make(map[roundKey]bool)
	for _, p := range params {
		round := roundKey{p.ModelId, p.ExecutionStartAt}
		if seen[round] {
			s.log.Warnf("prediction: model: %s  start: %d  repeated in batch", p.ModelId, p.ExecutionStartAt)
			continue
		}
		seen[round] = true

		models, err := s.indexer.FetchModels(ctx, indexer.ModelFilter{ModelId: p.ModelId, SkipCatchUp: true})
		if nil != err {
			return nil, err
		}
		if 0 == len(models) {
			return nil, fault.ModelNotFound
		}
		if s.address != models[0].Owner {
			return nil, fault.NotModelOwner
		}

		// replacing the key info would lose the existing content
		existing, err := s.indexer.FetchPredictions(ctx, indexer.PredictionFilter{
			ModelId:          p.ModelId,
			ExecutionStartAt: p.ExecutionStartAt,
			SkipCatchUp:      true,
		})
		if nil != err {
			return nil, err
		}
		if 0 != len(existing) {
			s.log.Warnf("prediction: model: %s  start: %d  already exists", p.ModelId, p.ExecutionStartAt)
			continue
		}

		generator, err := contentkey.NewGenerator()
		if nil != err {
			return nil, err
		}
		key, err := contentkey.Derive(generator, p.ModelId)
		if nil != err {
			return nil, err
		}
		encrypted, err := contentkey.Encrypt(p.Content, key)
		if nil != err {
			return nil, err
		}

		err = s.saveKeyInfo(ctx, p.ModelId, p.ExecutionStartAt, keyInfo{generator: generator, key: key})
		if nil != err {
			return nil, err
		}

		var price *big.Int
		if nil != p.Price {
			price = new(big.Int).Set(p.Price)
		}
		arguments = append(arguments, ledger.CreatePredictionParams{
			ModelId:          p.ModelId,
			ExecutionStartAt: p.ExecutionStartAt,
			EncryptedContent: encrypted,
			Price:            price,
		})
	}
	if 0 == len(arguments) {
		return nil, nil
	}

	return s.transact(ctx, ledger.CreatePredictions, arguments, len(arguments), nil)
}

// CreatePurchases - buy the content keys of other identities' predictions
//
// the exact sum of the prices is sent with the transaction and returned;
// own predictions are skipped
func (s *Store) CreatePurchases(ctx context.Context, params []PurchaseParams) (*ledger.Receipt, *big.Int, error) {
	s.Lock()
	defer s.Unlock()

	total := new(big.Int)
	if 0 == len(params) {
		return nil, total, nil
	}
	if err := s.indexer.CatchUp(ctx); nil != err {
		return nil, nil, err
	}

	publicKey := s.identity.PublicKey()
	arguments := make([]ledger.CreatePurchaseParams, 0, len(params))
	seen := make(map[roundKey]bool)
	for _, p := range params {
		round := roundKey{p.ModelId, p.ExecutionStartAt}
		if seen[round] {
			s.log.Warnf("purchase: model: %s  start: %d  repeated in batch", p.ModelId, p.ExecutionStartAt)
			continue
		}
		seen[round] = true

		predictions, err := s.indexer.FetchPredictions(ctx, indexer.PredictionFilter{
			ModelId:          p.ModelId,
			ExecutionStartAt: p.ExecutionStartAt,
			SkipCatchUp:      true,
		})
		if nil != err {
			return nil, nil, err
		}
		if 0 == len(predictions) {
			return nil, nil, fault.PredictionNotFound
		}
		prediction := predictions[0]
		if s.address == prediction.Owner {
			s.log.Warnf("purchase: skip own model: %s", p.ModelId)
			continue
		}
		if nil == prediction.Price {
			return nil, nil, fault.EmptyPurchasePrice
		}

		total.Add(total, prediction.Price)
		arguments = append(arguments, ledger.CreatePurchaseParams{
			ModelId:          p.ModelId,
			ExecutionStartAt: p.ExecutionStartAt,
			PublicKey:        publicKey,
		})
	}
	if 0 == len(arguments) {
		return nil, total, nil
	}

	receipt, err := s.transact(ctx, ledger.CreatePurchases, arguments, len(arguments), total)
	return receipt, total, err
}

// ShipPurchases - send content keys sealed to each purchaser
//
// self purchases, purchases already shipped, purchases without a known
// public key and rounds whose key info is no longer held are skipped
func (s *Store) ShipPurchases(ctx context.Context, params []ShipParams) (*ledger.Receipt, error) {
	s.Lock()
	defer s.Unlock()

	if 0 == len(params) {
		return nil, nil
	}
	if err := s.indexer.CatchUp(ctx); nil != err {
		return nil, err
	}

	arguments := make([]ledger.ShipPurchaseParams, 0, len(params))
	seen := make(map[roundKey]map[string]bool)
	for _, p := range params {
		if s.address == p.Purchaser {
			continue
		}
		round := roundKey{p.ModelId, p.ExecutionStartAt}
		if seen[round][p.Purchaser] {
			continue
		}
		if nil == seen[round] {
			seen[round] = make(map[string]bool)
		}
		seen[round][p.Purchaser] = true

		purchases, err := s.indexer.FetchPurchases(ctx, indexer.PurchaseFilter{
			ModelId:          p.ModelId,
			ExecutionStartAt: p.ExecutionStartAt,
			Purchaser:        p.Purchaser,
			SkipCatchUp:      true,
		})
		if nil != err {
			return nil, err
		}
		if 0 == len(purchases) {
			s.log.Warnf("ship: model: %s  start: %d  purchaser: %s  %s", p.ModelId, p.ExecutionStartAt, p.Purchaser, fault.PurchaseNotFound)
			continue
		}
		purchase := purchases[0]
		if nil != purchase.EncryptedContentKey {
			continue
		}

		info := s.loadKeyInfo(ctx, p.ModelId, p.ExecutionStartAt)
		if nil == info {
			s.log.Warnf("ship: model: %s  start: %d  no key info", p.ModelId, p.ExecutionStartAt)
			continue
		}

		publicKey := purchase.PublicKey
		if nil == publicKey {
			publicKey, err = s.indexer.CurrentPublicKey(ctx, p.Purchaser, true)
			if nil != err {
				return nil, err
			}
		}
		if nil == publicKey {
			s.log.Warnf("ship: purchaser: %s  no public key", p.Purchaser)
			continue
		}

		sealed, err := contentkey.Seal(info.key, publicKey)
		if nil != err {
			s.log.Warnf("ship: purchaser: %s  seal: %s", p.Purchaser, err)
			continue
		}
		arguments = append(arguments, ledger.ShipPurchaseParams{
			ModelId:             p.ModelId,
			ExecutionStartAt:    p.ExecutionStartAt,
			Purchaser:           p.Purchaser,
			EncryptedContentKey: sealed,
		})
	}
	if 0 == len(arguments) {
		return nil, nil
	}

	return s.transact(ctx, ledger.ShipPurchases, arguments, len(arguments), nil)
}

// PublishPredictions - disclose the generators of own predictions
//
// predictions already published or whose key info is no longer held
// are skipped
func (s *Store) PublishPredictions(ctx context.Context, params []PublishParams) (*ledger.Receipt, error) {
	s.Lock()
	defer s.Unlock()

	if 0 == len(params) {
		return nil, nil
	}
	if err := s.indexer.CatchUp(ctx); nil != err {
		return nil, err
	}

	arguments := make([]ledger.PublishPredictionParams, 0, len(params))
	seen := make(map[roundKey]bool)
	for _, p := range params {
		round := roundKey{p.ModelId, p.ExecutionStartAt}
		if seen[round] {
			continue
		}
		seen[round] = true

		predictions, err := s.indexer.FetchPredictions(ctx, indexer.PredictionFilter{
			ModelId:          p.ModelId,
			ExecutionStartAt: p.ExecutionStartAt,
			Owner:            s.address,
			SkipCatchUp:      true,
		})
		if nil != err {
			return nil, err
		}
		if 0 == len(predictions) || nil != predictions[0].ContentKeyGenerator {
			continue
		}

		info := s.loadKeyInfo(ctx, p.ModelId, p.ExecutionStartAt)
		if nil == info {
			s.log.Warnf("publish: model: %s  start: %d  no key info", p.ModelId, p.ExecutionStartAt)
			continue
		}
		arguments = append(arguments, ledger.PublishPredictionParams{
			ModelId:             p.ModelId,
			ExecutionStartAt:    p.ExecutionStartAt,
			ContentKeyGenerator: info.generator,
		})
	}
	if 0 == len(arguments) {
		return nil, nil
	}

	return s.transact(ctx, ledger.PublishPredictions, arguments, len(arguments), nil)
}
