// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contentkey

import (
	"crypto/rand"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/signalstore/fault"
)

// sizes in bytes
const (
	GeneratorSize = 32
	KeySize       = 32
	nonceSize     = 24
)

// NewGenerator - fresh random content key generator
func NewGenerator() ([]byte, error) {
	generator := make([]byte, GeneratorSize)
	if _, err := rand.Read(generator); nil != err {
		return nil, err
	}
	return generator, nil
}

// Derive - the content key of one model's prediction
func Derive(generator []byte, modelId string) ([]byte, error) {
	if GeneratorSize != len(generator) {
		return nil, fault.InvalidGeneratorLength
	}

	hash := sha3.NewLegacyKeccak256()
	hash.Write(generator)
	hash.Write([]byte(modelId))
	return hash.Sum(nil), nil
}

// Encrypt - seal content under a content key
func Encrypt(content []byte, key []byte) ([]byte, error) {
	secretKey, err := toKey(key)
	if nil != err {
		return nil, err
	}

	// a random 192 bit nonce is unique enough per message
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); nil != err {
		return nil, err
	}

	return secretbox.Seal(nonce[:], content, &nonce, secretKey), nil
}

// Decrypt - open content sealed by Encrypt
func Decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	secretKey, err := toKey(key)
	if nil != err {
		return nil, err
	}
	if len(ciphertext) < nonceSize+secretbox.Overhead {
		return nil, fault.WrongSecretBoxSize
	}

	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])

	content, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, secretKey)
	if !ok {
		return nil, fault.DecryptionFailed
	}
	if nil == content {
		content = []byte{}
	}
	return content, nil
}

func toKey(key []byte) (*[KeySize]byte, error) {
	if KeySize != len(key) {
		return nil, fault.InvalidKeyLength
	}
	var k [KeySize]byte
	copy(k[:], key)
	return &k, nil
}
