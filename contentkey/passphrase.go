// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contentkey

import (
	"crypto/rand"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/signalstore/fault"
)

const (
	wrappedHeader    = 'W'
	saltSize         = 16
	pbkdf2Iterations = 100000
	wrappedSize      = 1 + saltSize + nonceSize + secretbox.Overhead + PrivateKeySize
)

// Marshal - persistent form of the private key
//
// an empty passphrase stores the raw key
func (id *Identity) Marshal(passphrase string) ([]byte, error) {
	if "" == passphrase {
		return id.PrivateKey(), nil
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); nil != err {
		return nil, err
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); nil != err {
		return nil, err
	}

	buffer := make([]byte, 0, wrappedSize)
	buffer = append(buffer, wrappedHeader)
	buffer = append(buffer, salt...)
	buffer = append(buffer, nonce[:]...)
	return secretbox.Seal(buffer, id.privateKey[:], &nonce, passphraseKey(passphrase, salt)), nil
}

// UnmarshalIdentity - restore an identity stored by Marshal
func UnmarshalIdentity(data []byte, passphrase string) (*Identity, error) {
	switch len(data) {
	case PrivateKeySize:
		if "" != passphrase {
			return nil, fault.InvalidPassphrase
		}
		return IdentityFromPrivateKey(data)

	case wrappedSize:
		if wrappedHeader != data[0] {
			return nil, fault.InvalidPrivateKey
		}
		if "" == passphrase {
			return nil, fault.InvalidPassphrase
		}
		salt := data[1 : 1+saltSize]
		var nonce [nonceSize]byte
		copy(nonce[:], data[1+saltSize:1+saltSize+nonceSize])

		privateKey, ok := secretbox.Open(nil, data[1+saltSize+nonceSize:], &nonce, passphraseKey(passphrase, salt))
		if !ok {
			return nil, fault.InvalidPassphrase
		}
		return IdentityFromPrivateKey(privateKey)

	default:
		return nil, fault.InvalidPrivateKey
	}
}

func passphraseKey(passphrase string, salt []byte) *[KeySize]byte {
	var key [KeySize]byte
	copy(key[:], pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, KeySize, sha3.New256))
	return &key
}
