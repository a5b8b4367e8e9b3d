// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"context"
	"math/big"
)

// Reader - read only access to the contract log
type Reader interface {
	// current head block number
	BlockNumber(ctx context.Context) (uint64, error)

	// all contract events in the inclusive block range
	Events(ctx context.Context, fromBlock uint64, toBlock uint64) ([]Event, error)
}

// Client - log access plus transaction submission
//
// Transact must block until the transaction is confirmed and return
// its receipt; a reverted transaction returns a receipt with a zero
// status
type Client interface {
	Reader

	Balance(ctx context.Context, address string) (*big.Int, error)
	Transact(ctx context.Context, call Call) (*Receipt, error)
}

// Method - contract function name
type Method string

// contract functions used by the store
const (
	CreateModels       = Method("createModels")
	CreatePredictions  = Method("createPredictions")
	CreatePurchases    = Method("createPurchases")
	ShipPurchases      = Method("shipPurchases")
	PublishPredictions = Method("publishPredictions")
	ChangePublicKey    = Method("changePublicKey")
)

// Call - a single contract transaction
//
// Arguments holds one of the *Params slices matching the method
type Call struct {
	From      string
	Method    Method
	Arguments interface{}
	Value     *big.Int
}

// Receipt - summary of a confirmed transaction
type Receipt struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
	Status      uint64 `json:"status"`
}

// receipt status values
const (
	StatusFailed     = 0
	StatusSuccessful = 1
)

// CreateModelParams - argument item of createModels
type CreateModelParams struct {
	ModelId           string
	TournamentId      string
	PredictionLicense string
}

// CreatePredictionParams - argument item of createPredictions
type CreatePredictionParams struct {
	ModelId          string
	ExecutionStartAt uint64
	EncryptedContent []byte
	Price            *big.Int
}

// CreatePurchaseParams - argument item of createPurchases
type CreatePurchaseParams struct {
	ModelId          string
	ExecutionStartAt uint64
	PublicKey        []byte
}

// ShipPurchaseParams - argument item of shipPurchases
type ShipPurchaseParams struct {
	ModelId             string
	ExecutionStartAt    uint64
	Purchaser           string
	EncryptedContentKey []byte
}

// PublishPredictionParams - argument item of publishPredictions
type PublishPredictionParams struct {
	ModelId             string
	ExecutionStartAt    uint64
	ContentKeyGenerator []byte
}

// ChangePublicKeyParams - argument of changePublicKey
type ChangePublicKeyParams struct {
	PublicKey []byte
}
