// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"math/big"

	"github.com/bitmark-inc/signalstore/fault"
)

// Packed - packed records are just a byte slice
type Packed []byte

// format version of a packed window, the first item of the pack
const packVersion = 1

// Pack - pack a list of events
//
// Pack Varint64(version) Varint64(count) and then for each event
// Varint64(kind) Varint64(block) Varint64(log index) followed by the
// fields in the order of the record struct
func Pack(events []Event) (Packed, error) {
	message := appendVarint64(nil, packVersion)
	message = appendVarint64(message, uint64(len(events)))

	for _, e := range events {
		if nil == e.Record {
			return nil, fault.InvalidEventKind
		}
		message = appendVarint64(message, uint64(e.Record.Kind()))
		message = appendVarint64(message, e.BlockNumber)
		message = appendVarint64(message, e.LogIndex)

		switch r := e.Record.(type) {
		case *TournamentCreated:
			message = appendString(message, r.TournamentId)
			message = appendString(message, r.Description)
			message = appendVarint64(message, r.ExecutionStartAt)
			message = appendVarint64(message, r.PredictionTime)
			message = appendVarint64(message, r.PurchaseTime)
			message = appendVarint64(message, r.ShippingTime)
			message = appendVarint64(message, r.ExecutionPreparationTime)
			message = appendVarint64(message, r.ExecutionTime)
			message = appendVarint64(message, r.PublicationTime)

		case *ModelCreated:
			message = appendString(message, r.ModelId)
			message = appendString(message, r.TournamentId)
			message = appendString(message, r.Owner)
			message = appendString(message, r.PredictionLicense)

		case *PredictionCreated:
			message = appendString(message, r.ModelId)
			message = appendVarint64(message, r.ExecutionStartAt)
			message = appendBytes(message, r.EncryptedContent)
			message = appendBigInt(message, r.Price)

		case *PredictionPublished:
			message = appendString(message, r.ModelId)
			message = appendVarint64(message, r.ExecutionStartAt)
			message = appendBytes(message, r.ContentKeyGenerator)

		case *PurchaseCreated:
			message = appendString(message, r.ModelId)
			message = appendVarint64(message, r.ExecutionStartAt)
			message = appendString(message, r.Purchaser)
			message = appendBytes(message, r.PublicKey)

		case *PurchaseShipped:
			message = appendString(message, r.ModelId)
			message = appendVarint64(message, r.ExecutionStartAt)
			message = appendString(message, r.Purchaser)
			message = appendBytes(message, r.EncryptedContentKey)

		case *PublicKeyChanged:
			message = appendString(message, r.Owner)
			message = appendBytes(message, r.PublicKey)

		default:
			return nil, fault.InvalidEventKind
		}
	}
	return message, nil
}

// append a single field to a buffer
//
// the field is prefixed by Varint64(length)
func appendBytes(buffer []byte, data []byte) []byte {
	buffer = appendVarint64(buffer, uint64(len(data)))
	return append(buffer, data...)
}

func appendString(buffer []byte, s string) []byte {
	return appendBytes(buffer, []byte(s))
}

// optional non-negative integer: Varint64(0) for nil
// otherwise Varint64(1) followed by the big endian magnitude
func appendBigInt(buffer []byte, value *big.Int) []byte {
	if nil == value {
		return appendVarint64(buffer, 0)
	}
	buffer = appendVarint64(buffer, 1)
	return appendBytes(buffer, value.Bytes())
}
