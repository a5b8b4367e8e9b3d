// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contentkey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/signalstore/contentkey"
	"github.com/bitmark-inc/signalstore/fault"
)

func TestSealOpen(t *testing.T) {
	recipient, err := contentkey.NewIdentity()
	assert.Nil(t, err, "identity error")

	key := []byte("0123456789abcdef0123456789abcdef")
	sealed, err := contentkey.Seal(key, recipient.PublicKey())
	assert.Nil(t, err, "seal error")

	opened, err := recipient.Open(sealed)
	assert.Nil(t, err, "open error")
	assert.Equal(t, key, opened, "wrong content key")

	other, _ := contentkey.NewIdentity()
	_, err = other.Open(sealed)
	assert.Equal(t, fault.DecryptionFailed, err, "opened by wrong identity")

	_, err = recipient.Open(sealed[:10])
	assert.Equal(t, fault.WrongSealedBoxSize, err, "wrong error")

	_, err = contentkey.Seal(key, []byte{1, 2, 3})
	assert.Equal(t, fault.InvalidPublicKey, err, "wrong error")
}

func TestIdentityFromPrivateKey(t *testing.T) {
	id, _ := contentkey.NewIdentity()

	restored, err := contentkey.IdentityFromPrivateKey(id.PrivateKey())
	assert.Nil(t, err, "restore error")
	assert.Equal(t, id.PublicKey(), restored.PublicKey(), "public key not derived")

	_, err = contentkey.IdentityFromPrivateKey([]byte{1})
	assert.Equal(t, fault.InvalidPrivateKey, err, "wrong error")
}

func TestMarshalPassphrase(t *testing.T) {
	id, _ := contentkey.NewIdentity()

	raw, err := id.Marshal("")
	assert.Nil(t, err, "marshal error")
	assert.Equal(t, id.PrivateKey(), raw, "raw form not the private key")

	restored, err := contentkey.UnmarshalIdentity(raw, "")
	assert.Nil(t, err, "unmarshal error")
	assert.Equal(t, id.PublicKey(), restored.PublicKey(), "wrong identity")

	wrapped, err := id.Marshal("correct horse")
	assert.Nil(t, err, "marshal error")
	assert.NotContains(t, string(wrapped), string(id.PrivateKey()), "private key stored in clear")

	restored, err = contentkey.UnmarshalIdentity(wrapped, "correct horse")
	assert.Nil(t, err, "unwrap error")
	assert.Equal(t, id.PublicKey(), restored.PublicKey(), "wrong identity")

	_, err = contentkey.UnmarshalIdentity(wrapped, "battery staple")
	assert.Equal(t, fault.InvalidPassphrase, err, "wrong passphrase accepted")

	_, err = contentkey.UnmarshalIdentity(wrapped, "")
	assert.Equal(t, fault.InvalidPassphrase, err, "missing passphrase accepted")

	_, err = contentkey.UnmarshalIdentity(raw, "unexpected")
	assert.Equal(t, fault.InvalidPassphrase, err, "passphrase on raw key accepted")

	_, err = contentkey.UnmarshalIdentity([]byte{1, 2}, "")
	assert.Equal(t, fault.InvalidPrivateKey, err, "wrong error")
}
