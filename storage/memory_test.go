// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryPutGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	input := []byte("data")
	err := m.Put(ctx, "key", input, Never)
	assert.Nil(t, err, "put error")

	input[0] = 'X'
	value, found, err := m.Get(ctx, "key")
	assert.Nil(t, err, "get error")
	assert.True(t, found, "key not found")
	assert.Equal(t, []byte("data"), value, "stored value shares caller buffer")

	value[0] = 'Y'
	again, _, _ := m.Get(ctx, "key")
	assert.Equal(t, []byte("data"), again, "returned value shares stored buffer")

	_ = m.Delete(ctx, "key")
	_, found, _ = m.Get(ctx, "key")
	assert.False(t, found, "deleted key found")
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.Put(ctx, "past", []byte("p"), time.Now().Add(-time.Second))
	assert.Nil(t, err, "put error")
	_, found, _ := m.Get(ctx, "past")
	assert.False(t, found, "already expired entry stored")

	err = m.Put(ctx, "soon", []byte("s"), time.Now().Add(20*time.Millisecond))
	assert.Nil(t, err, "put error")
	_, found, _ = m.Get(ctx, "soon")
	assert.True(t, found, "entry expired early")

	time.Sleep(40 * time.Millisecond)
	_, found, _ = m.Get(ctx, "soon")
	assert.False(t, found, "expired entry found")
}

func TestMemoryKeys(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_ = m.Put(ctx, "event_window:1:2", nil, Never)
	_ = m.Put(ctx, "event_window:3:4", nil, Never)
	_ = m.Put(ctx, "other", nil, Never)

	keys, err := m.Keys(ctx, "event_window:")
	assert.Nil(t, err, "keys error")
	sort.Strings(keys)
	assert.Equal(t, []string{"event_window:1:2", "event_window:3:4"}, keys, "wrong keys")
	assert.Equal(t, 3, m.Len(), "wrong length")
}
