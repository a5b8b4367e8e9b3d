// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/bitmark-inc/signalstore/contentkey"
	"github.com/bitmark-inc/signalstore/storage"
)

// KeyInfoEntry - a locally held prediction secret
type KeyInfoEntry struct {
	ModelId          string `json:"modelId"`
	ExecutionStartAt uint64 `json:"executionStartAt"`
	Valid            bool   `json:"valid"`
}

// Inventory - the identity and secrets one namespace holds in the cache
//
// PublicKey is nil when no identity has been created yet
type Inventory struct {
	PublicKey []byte         `json:"publicKey"`
	KeyInfo   []KeyInfoEntry `json:"keyInfo"`
}

// Inspect - read a namespace without connecting to the ledger
//
// key info entries are only listed when the cache can enumerate keys
func Inspect(ctx context.Context, cache storage.Cache, namespace string, passphrase string) (*Inventory, error) {
	keys := storage.Namespace(cache, namespace)

	inventory := &Inventory{
		KeyInfo: []KeyInfoEntry{},
	}

	data, found, err := keys.Get(ctx, privateKeyKey)
	if nil != err {
		return nil, err
	}
	if found {
		identity, err := contentkey.UnmarshalIdentity(data, passphrase)
		if nil != err {
			return nil, err
		}
		inventory.PublicKey = identity.PublicKey()
	}

	lister, ok := keys.(storage.Lister)
	if !ok {
		return inventory, nil
	}
	names, err := lister.Keys(ctx, keyInfoKeyPrefix)
	if nil != err {
		return nil, err
	}

	for _, name := range names {
		entry, ok := parseKeyInfoKey(name)
		if !ok {
			continue
		}
		data, found, err := keys.Get(ctx, name)
		if nil != err {
			return nil, err
		}
		if !found {
			continue // expired since listing
		}
		entry.Valid = contentkey.GeneratorSize+contentkey.KeySize == len(data)
		inventory.KeyInfo = append(inventory.KeyInfo, entry)
	}

	sort.Slice(inventory.KeyInfo, func(i, j int) bool {
		a, b := inventory.KeyInfo[i], inventory.KeyInfo[j]
		if a.ModelId != b.ModelId {
			return a.ModelId < b.ModelId
		}
		return a.ExecutionStartAt < b.ExecutionStartAt
	})
	return inventory, nil
}

// inverse of keyInfoKey, the model id may itself contain ':'
func parseKeyInfoKey(key string) (KeyInfoEntry, bool) {
	s := strings.TrimPrefix(key, keyInfoKeyPrefix)
	n := strings.LastIndexByte(s, ':')
	if n <= 0 {
		return KeyInfoEntry{}, false
	}
	start, err := strconv.ParseUint(s[n+1:], 10, 64)
	if nil != err {
		return KeyInfoEntry{}, false
	}
	return KeyInfoEntry{
		ModelId:          s[:n],
		ExecutionStartAt: start,
	}, true
}
