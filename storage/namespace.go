// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"strings"
	"time"
)

type namespaced struct {
	cache  Cache
	prefix string
}

// Namespace - view of a cache where every key is prefixed
//
// Keys on the result strips the prefix, and is empty if the underlying
// cache cannot list
func Namespace(cache Cache, prefix string) Cache {
	if "" == prefix {
		return cache
	}
	return &namespaced{
		cache:  cache,
		prefix: prefix,
	}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.cache.Get(ctx, n.prefix+key)
}

func (n *namespaced) Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	return n.cache.Put(ctx, n.prefix+key, value, expiresAt)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.cache.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Keys(ctx context.Context, prefix string) ([]string, error) {
	lister, ok := n.cache.(Lister)
	if !ok {
		return []string{}, nil
	}
	keys, err := lister.Keys(ctx, n.prefix+prefix)
	if nil != err {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, n.prefix)
	}
	return keys, nil
}
