// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = time.Minute

// Memory - in-process cache
type Memory struct {
	c   *gocache.Cache
	now func() time.Time
}

// NewMemory - create an empty in-process cache
func NewMemory() *Memory {
	return &Memory{
		c:   gocache.New(gocache.NoExpiration, memoryCleanupInterval),
		now: time.Now,
	}
}

// Get - read a copy of a value
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	item, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return copyBytes(item.([]byte)), true, nil
}

// Put - store a copy of a value
func (m *Memory) Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	if expiresAt.IsZero() {
		m.c.Set(key, copyBytes(value), gocache.NoExpiration)
		return nil
	}

	d := expiresAt.Sub(m.now())
	if d <= 0 {
		m.c.Delete(key)
		return nil
	}
	m.c.Set(key, copyBytes(value), d)
	return nil
}

// Delete - remove a value
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Keys - list unexpired keys starting with prefix
func (m *Memory) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	for k := range m.c.Items() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Len - number of unexpired entries
func (m *Memory) Len() int {
	return len(m.c.Items())
}
