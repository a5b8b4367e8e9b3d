// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"math/big"

	"github.com/bitmark-inc/signalstore/fault"
)

// limit on the count of events in one window
const maximumPackedEvents = 1 << 20

// Unpack - turn a packed window back into its list of events
//
// all byte fields of the result are copies, the packed buffer can be
// reused by the caller
func (record Packed) Unpack() ([]Event, error) {
	u := &unpacker{buffer: record}

	version := u.uint64()
	if nil != u.err {
		return nil, fault.NotEventPack
	}
	if packVersion != version {
		return nil, fault.NotEventPack
	}

	count := u.uint64()
	if nil != u.err {
		return nil, u.err
	}
	if count > maximumPackedEvents {
		return nil, fault.NotEventPack
	}

	events := make([]Event, 0, count)
	for i := uint64(0); i < count; i += 1 {
		kind := Kind(u.uint64())
		e := Event{
			BlockNumber: u.uint64(),
			LogIndex:    u.uint64(),
		}

		switch kind {
		case TournamentCreatedKind:
			r := &TournamentCreated{}
			r.TournamentId = u.string()
			r.Description = u.string()
			r.ExecutionStartAt = u.uint64()
			r.PredictionTime = u.uint64()
			r.PurchaseTime = u.uint64()
			r.ShippingTime = u.uint64()
			r.ExecutionPreparationTime = u.uint64()
			r.ExecutionTime = u.uint64()
			r.PublicationTime = u.uint64()
			e.Record = r

		case ModelCreatedKind:
			e.Record = &ModelCreated{
				ModelId:           u.string(),
				TournamentId:      u.string(),
				Owner:             u.string(),
				PredictionLicense: u.string(),
			}

		case PredictionCreatedKind:
			e.Record = &PredictionCreated{
				ModelId:          u.string(),
				ExecutionStartAt: u.uint64(),
				EncryptedContent: u.bytes(),
				Price:            u.bigInt(),
			}

		case PredictionPublishedKind:
			e.Record = &PredictionPublished{
				ModelId:             u.string(),
				ExecutionStartAt:    u.uint64(),
				ContentKeyGenerator: u.bytes(),
			}

		case PurchaseCreatedKind:
			e.Record = &PurchaseCreated{
				ModelId:          u.string(),
				ExecutionStartAt: u.uint64(),
				Purchaser:        u.string(),
				PublicKey:        u.bytes(),
			}

		case PurchaseShippedKind:
			e.Record = &PurchaseShipped{
				ModelId:             u.string(),
				ExecutionStartAt:    u.uint64(),
				Purchaser:           u.string(),
				EncryptedContentKey: u.bytes(),
			}

		case PublicKeyChangedKind:
			e.Record = &PublicKeyChanged{
				Owner:     u.string(),
				PublicKey: u.bytes(),
			}

		default:
			if nil != u.err {
				return nil, u.err
			}
			return nil, fault.InvalidEventKind
		}

		if nil != u.err {
			return nil, u.err
		}
		events = append(events, e)
	}

	if u.n != len(u.buffer) {
		return nil, fault.NotEventPack
	}
	return events, nil
}

// sequential reader over a packed buffer
// the first error stops all further reads
type unpacker struct {
	buffer []byte
	n      int
	err    error
}

func (u *unpacker) uint64() uint64 {
	if nil != u.err {
		return 0
	}
	value, count := readVarint64(u.buffer[u.n:])
	if 0 == count {
		u.err = fault.TruncatedEventPack
		return 0
	}
	u.n += count
	return value
}

func (u *unpacker) bytes() []byte {
	length := u.uint64()
	if nil != u.err {
		return nil
	}
	if length > uint64(len(u.buffer)-u.n) {
		u.err = fault.TruncatedEventPack
		return nil
	}
	if 0 == length {
		return nil
	}
	data := make([]byte, length)
	copy(data, u.buffer[u.n:])
	u.n += int(length)
	return data
}

func (u *unpacker) string() string {
	return string(u.bytes())
}

func (u *unpacker) bigInt() *big.Int {
	present := u.uint64()
	if nil != u.err || 0 == present {
		return nil
	}
	return new(big.Int).SetBytes(u.bytes())
}
