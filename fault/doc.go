// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches
//
// The ledger facing classes map onto the failure kinds seen by callers:
//
//	LedgerError      - network/RPC failure while catching up, safe to retry
//	TransactionError - a submitted transaction failed or reverted
//	CryptoError      - wrong key or corrupted ciphertext, never aborts a batch read
//	ProtocolError    - duplicate create or orphan update, logged and ignored
package fault
