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

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/signalstore/fault"
)

func TestLevelDBPutGet(t *testing.T) {
	db := setupLevelDB(t)
	defer db.Close()

	ctx := context.Background()

	_, found, err := db.Get(ctx, "missing")
	assert.Nil(t, err, "get error")
	assert.False(t, found, "missing key found")

	err = db.Put(ctx, "event_window:1:1000", []byte{1, 2, 3}, Never)
	assert.Nil(t, err, "put error")

	value, found, err := db.Get(ctx, "event_window:1:1000")
	assert.Nil(t, err, "get error")
	assert.True(t, found, "key not found")
	assert.Equal(t, []byte{1, 2, 3}, value, "wrong value")

	value[0] = 99
	again, _, _ := db.Get(ctx, "event_window:1:1000")
	assert.Equal(t, byte(1), again[0], "cache returned shared buffer")

	err = db.Delete(ctx, "event_window:1:1000")
	assert.Nil(t, err, "delete error")
	_, found, _ = db.Get(ctx, "event_window:1:1000")
	assert.False(t, found, "deleted key found")
}

func TestLevelDBEmptyValue(t *testing.T) {
	db := setupLevelDB(t)
	defer db.Close()

	ctx := context.Background()
	err := db.Put(ctx, "empty", []byte{}, Never)
	assert.Nil(t, err, "put error")

	value, found, err := db.Get(ctx, "empty")
	assert.Nil(t, err, "get error")
	assert.True(t, found, "empty value not found")
	assert.Equal(t, 0, len(value), "wrong length")
}

func TestLevelDBPersistence(t *testing.T) {
	db := setupLevelDB(t)
	ctx := context.Background()

	err := db.Put(ctx, "a_private_key", []byte("secret"), Never)
	assert.Nil(t, err, "put error")
	assert.Nil(t, db.Close(), "close error")

	_, _, err = db.Get(ctx, "a_private_key")
	assert.Equal(t, fault.CacheClosed, err, "closed database readable")

	reopened, err := NewLevelDB(logger.New("storage"), databaseFileName)
	if nil != err {
		t.Fatalf("reopen error: %s", err)
	}
	defer reopened.Close()

	value, found, err := reopened.Get(ctx, "a_private_key")
	assert.Nil(t, err, "get error")
	assert.True(t, found, "value lost on reopen")
	assert.Equal(t, []byte("secret"), value, "wrong value")
}

func TestLevelDBExpiry(t *testing.T) {
	db := setupLevelDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	db.now = func() time.Time { return now }

	err := db.Put(ctx, "short", []byte("s"), now.Add(time.Hour))
	assert.Nil(t, err, "put error")
	err = db.Put(ctx, "long", []byte("l"), Never)
	assert.Nil(t, err, "put error")

	_, found, _ := db.Get(ctx, "short")
	assert.True(t, found, "entry expired early")

	now = now.Add(time.Hour)

	_, found, _ = db.Get(ctx, "short")
	assert.False(t, found, "expired entry found")
	_, found, _ = db.Get(ctx, "long")
	assert.True(t, found, "permanent entry expired")

	keys, err := db.Keys(ctx, "")
	assert.Nil(t, err, "keys error")
	assert.Equal(t, []string{"long"}, keys, "wrong keys")

	n, err := db.Sweep()
	assert.Nil(t, err, "sweep error")
	assert.Equal(t, 1, n, "wrong sweep count")

	n, err = db.Sweep()
	assert.Nil(t, err, "sweep error")
	assert.Equal(t, 0, n, "second sweep removed entries")
}

func TestLevelDBInvalidExpiry(t *testing.T) {
	db := setupLevelDB(t)
	defer db.Close()

	err := db.Put(context.Background(), "k", []byte("v"), time.Unix(-5, 0))
	assert.Equal(t, fault.InvalidExpiry, err, "wrong error")
}

func TestLevelDBKeys(t *testing.T) {
	db := setupLevelDB(t)
	defer db.Close()

	ctx := context.Background()
	for _, k := range []string{
		"event_window:1:10",
		"event_window:11:20",
		"ns1_private_key",
		"ns1_prediction_key_info:m:100",
	} {
		err := db.Put(ctx, k, []byte(k), Never)
		assert.Nil(t, err, "put error")
	}

	keys, err := db.Keys(ctx, "event_window:")
	assert.Nil(t, err, "keys error")
	sort.Strings(keys)
	assert.Equal(t, []string{"event_window:11:20", "event_window:1:10"}, keys, "wrong keys")

	keys, err = db.Keys(ctx, "ns1_")
	assert.Nil(t, err, "keys error")
	assert.Equal(t, 2, len(keys), "wrong key count")
}

func TestSweeperStops(t *testing.T) {
	db := setupLevelDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	db.now = func() time.Time { return now }
	_ = db.Put(ctx, "gone", []byte("x"), now.Add(time.Second))
	now = now.Add(time.Minute)

	s := &Sweeper{DB: db, Interval: time.Millisecond}
	shutdown := make(chan struct{})
	done := make(chan struct{})
	go func() {
		s.Run(nil, shutdown)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	close(shutdown)
	<-done

	n, err := db.Sweep()
	assert.Nil(t, err, "sweep error")
	assert.Equal(t, 0, n, "sweeper did not remove expired entry")
}
