// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"math/big"

	"github.com/bitmark-inc/signalstore/contentkey"
	"github.com/bitmark-inc/signalstore/indexer"
)

// PredictionView - public fields of a prediction and its plaintext
//
// Content is nil when no key is available or decryption fails
type PredictionView struct {
	ModelId          string
	TournamentId     string
	Owner            string
	ExecutionStartAt uint64
	Price            *big.Int
	Published        bool
	Content          []byte
}

// LastPrediction - most recent prediction of a model
type LastPrediction struct {
	PredictionView
	LocallyStored bool // key info still held by this store
}

// ShippedPurchase - a purchase of this store whose key was shipped
type ShippedPurchase struct {
	ModelId          string
	ExecutionStartAt uint64
	Purchaser        string
	Content          []byte
}

// ToShip - a purchase of one of this store's predictions awaiting its key
type ToShip struct {
	ModelId          string
	ExecutionStartAt uint64
	Purchaser        string
}

// FetchPredictions - all predictions of a round, decrypted where possible
func (s *Store) FetchPredictions(ctx context.Context, tournamentId string, executionStartAt uint64) ([]PredictionView, error) {
	s.Lock()
	defer s.Unlock()

	if err := s.indexer.CatchUp(ctx); nil != err {
		return nil, err
	}

	predictions, err := s.indexer.FetchPredictions(ctx, indexer.PredictionFilter{
		TournamentId:     tournamentId,
		ExecutionStartAt: executionStartAt,
		SkipCatchUp:      true,
	})
	if nil != err {
		return nil, err
	}

	purchased, err := s.ownPurchases(ctx, tournamentId, executionStartAt)
	if nil != err {
		return nil, err
	}

	result := make([]PredictionView, 0, len(predictions))
	for _, p := range predictions {
		result = append(result, s.view(ctx, p, purchased[p.ModelId]))
	}
	return result, nil
}

// FetchPurchasesToShip - unshipped purchases of this store's predictions
func (s *Store) FetchPurchasesToShip(ctx context.Context, tournamentId string, executionStartAt uint64) ([]ToShip, error) {
	s.Lock()
	defer s.Unlock()

	purchases, err := s.indexer.FetchPurchases(ctx, indexer.PurchaseFilter{
		TournamentId:     tournamentId,
		Owner:            s.address,
		ExecutionStartAt: executionStartAt,
	})
	if nil != err {
		return nil, err
	}

	result := make([]ToShip, 0)
	for _, p := range purchases {
		if nil != p.EncryptedContentKey || s.address == p.Purchaser {
			continue
		}
		result = append(result, ToShip{
			ModelId:          p.ModelId,
			ExecutionStartAt: p.ExecutionStartAt,
			Purchaser:        p.Purchaser,
		})
	}
	return result, nil
}

// FetchShippedPurchases - this store's purchases whose key was shipped
func (s *Store) FetchShippedPurchases(ctx context.Context, tournamentId string, executionStartAt uint64) ([]ShippedPurchase, error) {
	s.Lock()
	defer s.Unlock()

	purchases, err := s.indexer.FetchPurchases(ctx, indexer.PurchaseFilter{
		TournamentId:     tournamentId,
		Purchaser:        s.address,
		ExecutionStartAt: executionStartAt,
	})
	if nil != err {
		return nil, err
	}

	result := make([]ShippedPurchase, 0)
	for _, purchase := range purchases {
		if nil == purchase.EncryptedContentKey {
			continue
		}
		predictions, err := s.indexer.FetchPredictions(ctx, indexer.PredictionFilter{
			ModelId:          purchase.ModelId,
			ExecutionStartAt: purchase.ExecutionStartAt,
			SkipCatchUp:      true,
		})
		if nil != err {
			return nil, err
		}
		if 0 == len(predictions) {
			continue
		}

		var content []byte
		if key := s.openShippedKey(&purchase); nil != key {
			content = s.decrypt(predictions[0], key)
		}
		result = append(result, ShippedPurchase{
			ModelId:          purchase.ModelId,
			ExecutionStartAt: purchase.ExecutionStartAt,
			Purchaser:        purchase.Purchaser,
			Content:          content,
		})
	}
	return result, nil
}

// FetchPredictionsToPublish - own unpublished predictions still held locally
func (s *Store) FetchPredictionsToPublish(ctx context.Context, tournamentId string, executionStartAt uint64) ([]PredictionView, error) {
	s.Lock()
	defer s.Unlock()

	predictions, err := s.indexer.FetchPredictions(ctx, indexer.PredictionFilter{
		TournamentId:     tournamentId,
		Owner:            s.address,
		ExecutionStartAt: executionStartAt,
	})
	if nil != err {
		return nil, err
	}

	result := make([]PredictionView, 0)
	for _, p := range predictions {
		if nil != p.ContentKeyGenerator {
			continue
		}
		if nil == s.loadKeyInfo(ctx, p.ModelId, p.ExecutionStartAt) {
			continue
		}
		result = append(result, s.view(ctx, p, nil))
	}
	return result, nil
}

// FetchLastPrediction - latest prediction of a model at or before a round
//
// nil if there is none
func (s *Store) FetchLastPrediction(ctx context.Context, modelId string, maxExecutionStartAt uint64) (*LastPrediction, error) {
	s.Lock()
	defer s.Unlock()

	predictions, err := s.indexer.FetchPredictions(ctx, indexer.PredictionFilter{ModelId: modelId})
	if nil != err {
		return nil, err
	}

	var last *indexer.Prediction
	for i := range predictions {
		p := &predictions[i]
		if p.ExecutionStartAt > maxExecutionStartAt {
			continue
		}
		if nil == last || p.ExecutionStartAt > last.ExecutionStartAt {
			last = p
		}
	}
	if nil == last {
		return nil, nil
	}

	purchased, err := s.ownPurchases(ctx, "", last.ExecutionStartAt)
	if nil != err {
		return nil, err
	}

	return &LastPrediction{
		PredictionView: s.view(ctx, *last, purchased[modelId]),
		LocallyStored:  s.address == last.Owner && nil != s.loadKeyInfo(ctx, modelId, last.ExecutionStartAt),
	}, nil
}

// this store's purchases of a round by model, indexer must be caught up
func (s *Store) ownPurchases(ctx context.Context, tournamentId string, executionStartAt uint64) (map[string]*indexer.Purchase, error) {
	purchases, err := s.indexer.FetchPurchases(ctx, indexer.PurchaseFilter{
		TournamentId:     tournamentId,
		Purchaser:        s.address,
		ExecutionStartAt: executionStartAt,
		SkipCatchUp:      true,
	})
	if nil != err {
		return nil, err
	}
	result := make(map[string]*indexer.Purchase, len(purchases))
	for i := range purchases {
		result[purchases[i].ModelId] = &purchases[i]
	}
	return result, nil
}

func (s *Store) view(ctx context.Context, p indexer.Prediction, purchase *indexer.Purchase) PredictionView {
	v := PredictionView{
		ModelId:          p.ModelId,
		TournamentId:     p.TournamentId,
		Owner:            p.Owner,
		ExecutionStartAt: p.ExecutionStartAt,
		Price:            p.Price,
		Published:        nil != p.ContentKeyGenerator,
	}
	if key := s.contentKey(ctx, p, purchase); nil != key {
		v.Content = s.decrypt(p, key)
	}
	return v
}

// first available content key, nil if none
func (s *Store) contentKey(ctx context.Context, p indexer.Prediction, purchase *indexer.Purchase) []byte {

	// local owner
	if s.address == p.Owner {
		if info := s.loadKeyInfo(ctx, p.ModelId, p.ExecutionStartAt); nil != info {
			return info.key
		}
	}

	// public disclosure
	if nil != p.ContentKeyGenerator {
		key, err := contentkey.Derive(p.ContentKeyGenerator, p.ModelId)
		if nil == err {
			return key
		}
		s.log.Warnf("model: %s  start: %d  published generator: %s", p.ModelId, p.ExecutionStartAt, err)
	}

	// shipped purchase
	if nil != purchase {
		return s.openShippedKey(purchase)
	}
	return nil
}

func (s *Store) openShippedKey(purchase *indexer.Purchase) []byte {
	if nil == purchase.EncryptedContentKey {
		return nil
	}
	key, err := s.identity.Open(purchase.EncryptedContentKey)
	if nil != err {
		s.log.Debugf("model: %s  start: %d  open shipped key: %s", purchase.ModelId, purchase.ExecutionStartAt, err)
		return nil
	}
	return key
}

func (s *Store) decrypt(p indexer.Prediction, key []byte) []byte {
	content, err := contentkey.Decrypt(p.EncryptedContent, key)
	if nil != err {
		s.log.Debugf("model: %s  start: %d  decrypt: %s", p.ModelId, p.ExecutionStartAt, err)
		return nil
	}
	return content
}
