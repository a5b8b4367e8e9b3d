// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgertest

import (
	"context"
	"fmt"
	"math/big"

	"github.com/bitmark-inc/signalstore/fault"
	"github.com/bitmark-inc/signalstore/ledger"
)

const gasPerItem = 50000

// Transact - execute a contract call and mine it into a new block
func (c *Chain) Transact(ctx context.Context, call ledger.Call) (*ledger.Receipt, error) {
	c.Lock()
	defer c.Unlock()

	c.txCount += 1
	receipt := &ledger.Receipt{
		TxHash: fmt.Sprintf("0x%064x", c.txCount),
		Status: ledger.StatusFailed,
	}

	records, err := c.execute(call)
	if nil != err {
		if fault.UnsupportedMethod == err {
			return nil, err
		}
		c.head += 1
		receipt.BlockNumber = c.head
		return receipt, nil
	}

	receipt.BlockNumber = c.mine(records)
	receipt.GasUsed = uint64(len(records)) * gasPerItem
	receipt.Status = ledger.StatusSuccessful
	return receipt, nil
}

// check the contract rules and produce the events
// UnsupportedMethod is a malformed call, any other error is a revert
func (c *Chain) execute(call ledger.Call) ([]ledger.Record, error) {
	value := call.Value
	if nil == value {
		value = new(big.Int)
	}

	records := make([]ledger.Record, 0)

	switch args := call.Arguments.(type) {

	case []ledger.CreateModelParams:
		if ledger.CreateModels != call.Method {
			return nil, fault.UnsupportedMethod
		}
		created := make(map[string]bool)
		for _, p := range args {
			if _, ok := c.tournaments[p.TournamentId]; !ok {
				return nil, fault.TournamentNotFound
			}
			if _, ok := c.models[p.ModelId]; ok || created[p.ModelId] {
				return nil, fault.DuplicateRecord
			}
			created[p.ModelId] = true
			records = append(records, &ledger.ModelCreated{
				ModelId:           p.ModelId,
				TournamentId:      p.TournamentId,
				Owner:             call.From,
				PredictionLicense: p.PredictionLicense,
			})
		}
		for _, r := range records {
			m := r.(*ledger.ModelCreated)
			c.models[m.ModelId] = m
		}

	case []ledger.CreatePredictionParams:
		if ledger.CreatePredictions != call.Method {
			return nil, fault.UnsupportedMethod
		}
		created := make(map[predictionKey]bool)
		for _, p := range args {
			m, ok := c.models[p.ModelId]
			if !ok {
				return nil, fault.ModelNotFound
			}
			if m.Owner != call.From {
				return nil, fault.NotModelOwner
			}
			key := predictionKey{p.ModelId, p.ExecutionStartAt}
			if _, ok := c.predictions[key]; ok || created[key] {
				return nil, fault.DuplicateRecord
			}
			created[key] = true
			var price *big.Int
			if nil != p.Price {
				price = new(big.Int).Set(p.Price)
			}
			records = append(records, &ledger.PredictionCreated{
				ModelId:          p.ModelId,
				ExecutionStartAt: p.ExecutionStartAt,
				EncryptedContent: append([]byte{}, p.EncryptedContent...),
				Price:            price,
			})
		}
		for _, r := range records {
			p := r.(*ledger.PredictionCreated)
			c.predictions[predictionKey{p.ModelId, p.ExecutionStartAt}] = p
		}

	case []ledger.CreatePurchaseParams:
		if ledger.CreatePurchases != call.Method {
			return nil, fault.UnsupportedMethod
		}
		total := new(big.Int)
		payments := make(map[string]*big.Int)
		created := make(map[purchaseKey]bool)
		for _, p := range args {
			pk := predictionKey{p.ModelId, p.ExecutionStartAt}
			prediction, ok := c.predictions[pk]
			if !ok {
				return nil, fault.PredictionNotFound
			}
			if nil == prediction.Price {
				return nil, fault.EmptyPurchasePrice
			}
			owner := c.models[p.ModelId].Owner
			if owner == call.From {
				return nil, fault.NotModelOwner
			}
			key := purchaseKey{pk, call.From}
			if c.purchases[key] || created[key] {
				return nil, fault.DuplicateRecord
			}
			created[key] = true
			total.Add(total, prediction.Price)
			if _, ok := payments[owner]; !ok {
				payments[owner] = new(big.Int)
			}
			payments[owner].Add(payments[owner], prediction.Price)
			records = append(records, &ledger.PurchaseCreated{
				ModelId:          p.ModelId,
				ExecutionStartAt: p.ExecutionStartAt,
				Purchaser:        call.From,
				PublicKey:        append([]byte{}, p.PublicKey...),
			})
		}
		if 0 != total.Cmp(value) {
			return nil, fault.TransactionReverted
		}
		balance := c.balance(call.From)
		if balance.Cmp(value) < 0 {
			return nil, fault.NotEnoughBalance
		}
		c.balances[call.From] = new(big.Int).Sub(balance, value)
		for owner, amount := range payments {
			c.balances[owner] = new(big.Int).Add(c.balance(owner), amount)
		}
		for key := range created {
			c.purchases[key] = true
		}

	case []ledger.ShipPurchaseParams:
		if ledger.ShipPurchases != call.Method {
			return nil, fault.UnsupportedMethod
		}
		for _, p := range args {
			m, ok := c.models[p.ModelId]
			if !ok {
				return nil, fault.ModelNotFound
			}
			if m.Owner != call.From {
				return nil, fault.NotModelOwner
			}
			key := purchaseKey{predictionKey{p.ModelId, p.ExecutionStartAt}, p.Purchaser}
			if !c.purchases[key] {
				return nil, fault.PurchaseNotFound
			}
			if c.shipped[key] {
				return nil, fault.DuplicateRecord
			}
			records = append(records, &ledger.PurchaseShipped{
				ModelId:             p.ModelId,
				ExecutionStartAt:    p.ExecutionStartAt,
				Purchaser:           p.Purchaser,
				EncryptedContentKey: append([]byte{}, p.EncryptedContentKey...),
			})
		}
		for _, r := range records {
			s := r.(*ledger.PurchaseShipped)
			c.shipped[purchaseKey{predictionKey{s.ModelId, s.ExecutionStartAt}, s.Purchaser}] = true
		}

	case []ledger.PublishPredictionParams:
		if ledger.PublishPredictions != call.Method {
			return nil, fault.UnsupportedMethod
		}
		for _, p := range args {
			m, ok := c.models[p.ModelId]
			if !ok {
				return nil, fault.ModelNotFound
			}
			if m.Owner != call.From {
				return nil, fault.NotModelOwner
			}
			key := predictionKey{p.ModelId, p.ExecutionStartAt}
			if _, ok := c.predictions[key]; !ok {
				return nil, fault.PredictionNotFound
			}
			if c.published[key] {
				return nil, fault.DuplicateRecord
			}
			records = append(records, &ledger.PredictionPublished{
				ModelId:             p.ModelId,
				ExecutionStartAt:    p.ExecutionStartAt,
				ContentKeyGenerator: append([]byte{}, p.ContentKeyGenerator...),
			})
		}
		for _, r := range records {
			p := r.(*ledger.PredictionPublished)
			c.published[predictionKey{p.ModelId, p.ExecutionStartAt}] = true
		}

	case ledger.ChangePublicKeyParams:
		if ledger.ChangePublicKey != call.Method {
			return nil, fault.UnsupportedMethod
		}
		records = append(records, &ledger.PublicKeyChanged{
			Owner:     call.From,
			PublicKey: append([]byte{}, args.PublicKey...),
		})

	default:
		return nil, fault.UnsupportedMethod
	}

	return records, nil
}
