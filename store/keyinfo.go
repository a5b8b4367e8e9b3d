// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"strconv"
	"time"

	"github.com/bitmark-inc/signalstore/contentkey"
)

// keyInfo - locally held secrets of an own prediction
type keyInfo struct {
	generator []byte
	key       []byte
}

func keyInfoKey(modelId string, executionStartAt uint64) string {
	return keyInfoKeyPrefix + modelId + ":" + strconv.FormatUint(executionStartAt, 10)
}

func (s *Store) saveKeyInfo(ctx context.Context, modelId string, executionStartAt uint64, info keyInfo) error {
	data := make([]byte, 0, contentkey.GeneratorSize+contentkey.KeySize)
	data = append(data, info.generator...)
	data = append(data, info.key...)

	expiresAt := time.Unix(int64(executionStartAt), 0).Add(keyInfoExpiration)
	return s.keys.Put(ctx, keyInfoKey(modelId, executionStartAt), data, expiresAt)
}

// nil if not held, a cache error only loses the local read path
func (s *Store) loadKeyInfo(ctx context.Context, modelId string, executionStartAt uint64) *keyInfo {
	key := keyInfoKey(modelId, executionStartAt)
	data, found, err := s.keys.Get(ctx, key)
	if nil != err {
		s.log.Warnf("key info: %s  error: %s", key, err)
		return nil
	}
	if !found {
		return nil
	}
	if contentkey.GeneratorSize+contentkey.KeySize != len(data) {
		s.log.Warnf("key info: %s  invalid length: %d", key, len(data))
		return nil
	}
	return &keyInfo{
		generator: data[:contentkey.GeneratorSize],
		key:       data[contentkey.GeneratorSize:],
	}
}
