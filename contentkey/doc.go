// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package contentkey - keys protecting prediction content
//
// A fresh random generator is created for each prediction and the
// symmetric content key is derived from it:
//
//	content key = keccak256(generator ++ model id)
//
// Content is encrypted with secretbox:
//
//	ciphertext = nonce[24] ++ secretbox(content)
//
// The content key is sent to a single purchaser as an anonymous
// sealed box to the purchaser's curve25519 public key, while the
// generator alone is made public for delayed disclosure.
//
// The identity private key may be stored wrapped by a passphrase:
//
//	wrapped = 'W' ++ salt[16] ++ nonce[24] ++ secretbox(private key)
package contentkey
