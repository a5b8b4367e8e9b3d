// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contentkey

import (
	"crypto/rand"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	"github.com/bitmark-inc/signalstore/fault"
)

// PublicKeySize - curve25519 public key bytes
const PublicKeySize = 32

// PrivateKeySize - curve25519 private key bytes
const PrivateKeySize = 32

// Identity - keypair receiving sealed content keys
type Identity struct {
	publicKey  [PublicKeySize]byte
	privateKey [PrivateKeySize]byte
}

// NewIdentity - generate a random keypair
func NewIdentity() (*Identity, error) {
	publicKey, privateKey, err := box.GenerateKey(rand.Reader)
	if nil != err {
		return nil, err
	}
	return &Identity{
		publicKey:  *publicKey,
		privateKey: *privateKey,
	}, nil
}

// IdentityFromPrivateKey - rebuild a keypair from its private key
func IdentityFromPrivateKey(privateKey []byte) (*Identity, error) {
	if PrivateKeySize != len(privateKey) {
		return nil, fault.InvalidPrivateKey
	}

	publicKey, err := curve25519.X25519(privateKey, curve25519.Basepoint)
	if nil != err {
		return nil, fault.InvalidPrivateKey
	}

	id := &Identity{}
	copy(id.privateKey[:], privateKey)
	copy(id.publicKey[:], publicKey)
	return id, nil
}

// PublicKey - copy of the public key
func (id *Identity) PublicKey() []byte {
	return append([]byte{}, id.publicKey[:]...)
}

// PrivateKey - copy of the private key, only for persistence
func (id *Identity) PrivateKey() []byte {
	return append([]byte{}, id.privateKey[:]...)
}

// Open - open a box sealed to this identity
func (id *Identity) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < box.AnonymousOverhead {
		return nil, fault.WrongSealedBoxSize
	}
	message, ok := box.OpenAnonymous(nil, sealed, &id.publicKey, &id.privateKey)
	if !ok {
		return nil, fault.DecryptionFailed
	}
	return message, nil
}

// Seal - anonymous box that only the holder of publicKey can open
func Seal(message []byte, publicKey []byte) ([]byte, error) {
	if PublicKeySize != len(publicKey) {
		return nil, fault.InvalidPublicKey
	}
	var recipient [PublicKeySize]byte
	copy(recipient[:], publicKey)
	return box.SealAnonymous(nil, message, &recipient, rand.Reader)
}
