// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/signalstore/fault"
)

// Tournament - round timing, all values in seconds
//
// ExecutionStartAt is the phase offset of the round grid and
// ExecutionTime the round length.  The phases of a round run:
//
//	prediction | purchase | shipping | preparation | execution ... | publication
//	                                               ^ round start
type Tournament struct {
	TournamentId             string
	Description              string
	ExecutionStartAt         uint64
	PredictionTime           uint64
	PurchaseTime             uint64
	ShippingTime             uint64
	ExecutionPreparationTime uint64
	ExecutionTime            uint64
	PublicationTime          uint64
}

// Lag - time from the start of the prediction phase to the round start
func (t Tournament) Lag() uint64 {
	return t.PredictionTime + t.PurchaseTime + t.ShippingTime + t.ExecutionPreparationTime
}

// Validate - phases of one round must not overlap the same phases of the next
func (t Tournament) Validate() error {
	if "" == t.TournamentId {
		return fault.InvalidTournamentPhases
	}
	if 0 == t.ExecutionTime {
		return fault.InvalidTournamentPhases
	}
	if t.Lag() > t.ExecutionTime {
		return fault.InvalidTournamentPhases
	}
	if t.PublicationTime > t.ExecutionTime {
		return fault.InvalidTournamentPhases
	}
	return nil
}

// RoundStart - the execution start of the round containing a timestamp
//
// a timestamp before the first grid point (ExecutionStartAt modulo
// ExecutionTime) has no containing round and maps to that grid point
func (t Tournament) RoundStart(timestamp uint64) uint64 {
	if 0 == t.ExecutionTime {
		return timestamp
	}
	offset := t.ExecutionStartAt % t.ExecutionTime
	if timestamp < offset {
		return offset
	}
	return timestamp - (timestamp-offset)%t.ExecutionTime
}

// Phase boundaries for the round starting at executionStartAt
func (t Tournament) PredictionStartAt(executionStartAt uint64) uint64 {
	return executionStartAt - t.Lag()
}

func (t Tournament) PurchaseStartAt(executionStartAt uint64) uint64 {
	return t.PredictionStartAt(executionStartAt) + t.PredictionTime
}

func (t Tournament) ShippingStartAt(executionStartAt uint64) uint64 {
	return t.PurchaseStartAt(executionStartAt) + t.PurchaseTime
}

func (t Tournament) PublicationStartAt(executionStartAt uint64) uint64 {
	return executionStartAt + t.ExecutionTime
}

func (t Tournament) PublicationEndAt(executionStartAt uint64) uint64 {
	return t.PublicationStartAt(executionStartAt) + t.PublicationTime
}
