// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"math/big"
)

// Kind - event type code, the first item of a packed event
type Kind uint64

// event kinds - never renumber, these are stored in the cache
const (
	NullKind = Kind(iota)

	TournamentCreatedKind   = Kind(iota) // tournament and round timing
	ModelCreatedKind        = Kind(iota) // model registration
	PredictionCreatedKind   = Kind(iota) // encrypted prediction
	PredictionPublishedKind = Kind(iota) // content key generator disclosed
	PurchaseCreatedKind     = Kind(iota) // paid key request
	PurchaseShippedKind     = Kind(iota) // sealed content key sent
	PublicKeyChangedKind    = Kind(iota) // identity key registration

	// this item must be last
	InvalidKind = Kind(iota)
)

// Record - the body of any of the event types
type Record interface {
	Kind() Kind
}

// Event - one log entry of the contract
type Event struct {
	BlockNumber uint64
	LogIndex    uint64
	Record      Record
}

// Before - application order of events
func (e Event) Before(other Event) bool {
	if e.BlockNumber != other.BlockNumber {
		return e.BlockNumber < other.BlockNumber
	}
	return e.LogIndex < other.LogIndex
}

// TournamentCreated - a tournament and its round timing
type TournamentCreated struct {
	Tournament
}

// ModelCreated - a model registered in a tournament
type ModelCreated struct {
	ModelId           string
	TournamentId      string
	Owner             string
	PredictionLicense string
}

// PredictionCreated - encrypted prediction for one round
type PredictionCreated struct {
	ModelId          string
	ExecutionStartAt uint64
	EncryptedContent []byte
	Price            *big.Int // nil if not for sale
}

// PredictionPublished - delayed public disclosure of the key generator
type PredictionPublished struct {
	ModelId             string
	ExecutionStartAt    uint64
	ContentKeyGenerator []byte
}

// PurchaseCreated - a paid request for a content key
type PurchaseCreated struct {
	ModelId          string
	ExecutionStartAt uint64
	Purchaser        string
	PublicKey        []byte
}

// PurchaseShipped - content key sealed to the purchaser's public key
type PurchaseShipped struct {
	ModelId             string
	ExecutionStartAt    uint64
	Purchaser           string
	EncryptedContentKey []byte
}

// PublicKeyChanged - new registration in the identity key registry
type PublicKeyChanged struct {
	Owner     string
	PublicKey []byte
}

func (r *TournamentCreated) Kind() Kind   { return TournamentCreatedKind }
func (r *ModelCreated) Kind() Kind        { return ModelCreatedKind }
func (r *PredictionCreated) Kind() Kind   { return PredictionCreatedKind }
func (r *PredictionPublished) Kind() Kind { return PredictionPublishedKind }
func (r *PurchaseCreated) Kind() Kind     { return PurchaseCreatedKind }
func (r *PurchaseShipped) Kind() Kind     { return PurchaseShippedKind }
func (r *PublicKeyChanged) Kind() Kind    { return PublicKeyChangedKind }

// String - event name as emitted by the contract
func (k Kind) String() string {
	switch k {
	case TournamentCreatedKind:
		return "TournamentCreated"
	case ModelCreatedKind:
		return "ModelCreated"
	case PredictionCreatedKind:
		return "PredictionCreated"
	case PredictionPublishedKind:
		return "PredictionPublished"
	case PurchaseCreatedKind:
		return "PurchaseCreated"
	case PurchaseShippedKind:
		return "PurchaseShipped"
	case PublicKeyChangedKind:
		return "PublicKeyChanged"
	default:
		return "*unknown*"
	}
}
