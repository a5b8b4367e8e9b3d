// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"github.com/bitmark-inc/signalstore/fault"
	"github.com/bitmark-inc/signalstore/ledger"
)

// apply one event to the relations
//
// protocol violations are returned for logging only, the relations are
// unchanged in that case
func (r *relations) process(e ledger.Event) error {

	switch record := e.Record.(type) {

	case *ledger.TournamentCreated:
		id := record.TournamentId
		if _, ok := r.tournaments[id]; ok {
			return fault.DuplicateRecord
		}
		if err := record.Tournament.Validate(); nil != err {
			return err
		}
		r.tournaments[id] = record.Tournament
		r.tournamentOrder = append(r.tournamentOrder, id)

	case *ledger.ModelCreated:
		id := record.ModelId
		if _, ok := r.models[id]; ok {
			return fault.DuplicateRecord
		}
		r.models[id] = &Model{
			ModelId:           id,
			TournamentId:      record.TournamentId,
			Owner:             record.Owner,
			PredictionLicense: record.PredictionLicense,
		}
		r.modelOrder = append(r.modelOrder, id)

	case *ledger.PredictionCreated:
		model, ok := r.models[record.ModelId]
		if !ok {
			return fault.ModelNotFound
		}
		key := predictionKey{record.ModelId, record.ExecutionStartAt}
		if _, ok := r.predictions[key]; ok {
			return fault.DuplicateRecord
		}
		r.predictions[key] = &Prediction{
			ModelId:          record.ModelId,
			ExecutionStartAt: record.ExecutionStartAt,
			TournamentId:     model.TournamentId,
			Owner:            model.Owner,
			EncryptedContent: cloneBytes(record.EncryptedContent),
			Price:            cloneInt(record.Price),
		}
		r.predictionOrder = append(r.predictionOrder, key)

	case *ledger.PredictionPublished:
		key := predictionKey{record.ModelId, record.ExecutionStartAt}
		prediction, ok := r.predictions[key]
		if !ok {
			return fault.OrphanUpdate
		}
		if _, ok := r.disclosures[key]; ok {
			return fault.DuplicateRecord
		}
		generator := cloneBytes(record.ContentKeyGenerator)
		prediction.ContentKeyGenerator = generator
		r.disclosures[key] = &Disclosure{
			ModelId:             record.ModelId,
			ExecutionStartAt:    record.ExecutionStartAt,
			TournamentId:        prediction.TournamentId,
			Owner:               prediction.Owner,
			ContentKeyGenerator: cloneBytes(generator),
		}
		r.disclosureOrder = append(r.disclosureOrder, key)

	case *ledger.PurchaseCreated:
		pk := predictionKey{record.ModelId, record.ExecutionStartAt}
		prediction, ok := r.predictions[pk]
		if !ok {
			return fault.PredictionNotFound
		}
		key := purchaseKey{pk, record.Purchaser}
		if _, ok := r.purchases[key]; ok {
			return fault.DuplicateRecord
		}
		r.purchases[key] = &Purchase{
			ModelId:          record.ModelId,
			ExecutionStartAt: record.ExecutionStartAt,
			TournamentId:     prediction.TournamentId,
			Owner:            prediction.Owner,
			Purchaser:        record.Purchaser,
			PublicKey:        cloneBytes(record.PublicKey),
		}
		r.purchaseOrder = append(r.purchaseOrder, key)

	case *ledger.PurchaseShipped:
		key := purchaseKey{predictionKey{record.ModelId, record.ExecutionStartAt}, record.Purchaser}
		purchase, ok := r.purchases[key]
		if !ok {
			return fault.OrphanUpdate
		}
		if nil != purchase.EncryptedContentKey {
			return fault.DuplicateRecord
		}
		purchase.EncryptedContentKey = cloneBytes(record.EncryptedContentKey)

	case *ledger.PublicKeyChanged:
		r.publicKeys = append(r.publicKeys, &PublicKey{
			Owner:       record.Owner,
			PublicKey:   cloneBytes(record.PublicKey),
			BlockNumber: e.BlockNumber,
		})

	default:
		return fault.InvalidEventKind
	}

	return nil
}
