// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store - confidential prediction content over the contract log
//
// A store acts for one ledger address and owns a curve25519 identity
// kept in the cache under its namespace:
//
//	<namespace>private_key                          - raw or passphrase wrapped private key
//	<namespace>prediction_key_info:<model>:<start>  - generator[32] ++ content key[32]
//
// The key info entries expire two days after the round start.
//
// The content key of a prediction is obtained, in order of precedence:
//
//  1. the store owns the model and still holds the key info
//  2. the generator has been published
//  3. the store purchased the prediction and the key was shipped,
//     sealed to the store's public key
//
// Every exported method holds the store lock for its whole duration.
package store
