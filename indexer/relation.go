// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"math/big"

	"github.com/bitmark-inc/signalstore/ledger"
)

// Model - a registered model
type Model struct {
	ModelId           string
	TournamentId      string
	Owner             string
	PredictionLicense string
}

// Prediction - one model's encrypted prediction for one round
//
// TournamentId and Owner are copied from the model
type Prediction struct {
	ModelId             string
	ExecutionStartAt    uint64
	TournamentId        string
	Owner               string
	EncryptedContent    []byte
	Price               *big.Int // nil if not for sale
	ContentKeyGenerator []byte   // nil until published
}

// Purchase - a purchaser's request for one prediction's content key
type Purchase struct {
	ModelId             string
	ExecutionStartAt    uint64
	TournamentId        string
	Owner               string // model owner
	Purchaser           string
	PublicKey           []byte
	EncryptedContentKey []byte // nil until shipped
}

// PublicKey - one entry of the identity key registry
type PublicKey struct {
	Owner       string
	PublicKey   []byte
	BlockNumber uint64
}

// Disclosure - a published content key generator
type Disclosure struct {
	ModelId             string
	ExecutionStartAt    uint64
	TournamentId        string
	Owner               string
	ContentKeyGenerator []byte
}

type predictionKey struct {
	modelId          string
	executionStartAt uint64
}

type purchaseKey struct {
	predictionKey
	purchaser string
}

// the materialised relations
//
// each map is paired with a slice holding keys in application order so
// query results are deterministic
type relations struct {
	tournaments     map[string]ledger.Tournament
	tournamentOrder []string

	models     map[string]*Model
	modelOrder []string

	predictions     map[predictionKey]*Prediction
	predictionOrder []predictionKey

	purchases     map[purchaseKey]*Purchase
	purchaseOrder []purchaseKey

	disclosures     map[predictionKey]*Disclosure
	disclosureOrder []predictionKey

	publicKeys []*PublicKey
}

func newRelations() *relations {
	return &relations{
		tournaments: make(map[string]ledger.Tournament),
		models:      make(map[string]*Model),
		predictions: make(map[predictionKey]*Prediction),
		purchases:   make(map[purchaseKey]*Purchase),
		disclosures: make(map[predictionKey]*Disclosure),
	}
}

// clone a byte field, empty becomes nil so cached and uncached
// replays compare equal
func cloneBytes(b []byte) []byte {
	if 0 == len(b) {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

func cloneInt(i *big.Int) *big.Int {
	if nil == i {
		return nil
	}
	return new(big.Int).Set(i)
}

func (p *Prediction) clone() Prediction {
	return Prediction{
		ModelId:             p.ModelId,
		ExecutionStartAt:    p.ExecutionStartAt,
		TournamentId:        p.TournamentId,
		Owner:               p.Owner,
		EncryptedContent:    cloneBytes(p.EncryptedContent),
		Price:               cloneInt(p.Price),
		ContentKeyGenerator: cloneBytes(p.ContentKeyGenerator),
	}
}

func (p *Purchase) clone() Purchase {
	c := *p
	c.PublicKey = cloneBytes(p.PublicKey)
	c.EncryptedContentKey = cloneBytes(p.EncryptedContentKey)
	return c
}

func (k *PublicKey) clone() PublicKey {
	c := *k
	c.PublicKey = cloneBytes(k.PublicKey)
	return c
}

func (d *Disclosure) clone() Disclosure {
	c := *d
	c.ContentKeyGenerator = cloneBytes(d.ContentKeyGenerator)
	return c
}
