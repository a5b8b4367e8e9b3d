// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/signalstore/fault"
)

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const (
	currentCacheDBVersion = 0x100

	entryPrefix = 'C'
	expiryBytes = 8
)

// LevelDB - on-disk cache
type LevelDB struct {
	sync.RWMutex
	log  *logger.L
	db   *leveldb.DB
	now  func() time.Time
	name string
}

// NewLevelDB - open or create the database
func NewLevelDB(log *logger.L, name string) (*LevelDB, error) {
	db, version, err := getDB(name)
	if nil != err {
		return nil, err
	}

	// ensure no database downgrade
	if version > currentCacheDBVersion {
		db.Close()
		log.Criticalf("cache database version: %d > current version: %d", version, currentCacheDBVersion)
		return nil, fmt.Errorf("cache database version: %d > current version: %d", version, currentCacheDBVersion)
	}

	if 0 == version {
		// database was empty so tag as current version
		err = putVersion(db, currentCacheDBVersion)
		if nil != err {
			db.Close()
			return nil, err
		}
	}

	log.Infof("opened cache database: %q  version: %d", name, currentCacheDBVersion)

	return &LevelDB{
		log:  log,
		db:   db,
		now:  time.Now,
		name: name,
	}, nil
}

// Close - close the database
func (l *LevelDB) Close() error {
	l.Lock()
	defer l.Unlock()

	if nil == l.db {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// Get - read a value, expired entries are not found
func (l *LevelDB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	l.RLock()
	defer l.RUnlock()

	if nil == l.db {
		return nil, false, fault.CacheClosed
	}

	data, err := l.db.Get(prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil, false, nil
	} else if nil != err {
		return nil, false, err
	}

	expiresAt, value, ok := splitEntry(data)
	if !ok {
		l.log.Warnf("corrupt cache entry: %q", key)
		return nil, false, nil
	}
	if expired(expiresAt, l.now()) {
		return nil, false, nil
	}

	// leveldb already returns a private copy
	return value, true, nil
}

// Put - store a value
func (l *LevelDB) Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	l.RLock()
	defer l.RUnlock()

	if nil == l.db {
		return fault.CacheClosed
	}
	if !expiresAt.IsZero() && expiresAt.Unix() <= 0 {
		return fault.InvalidExpiry
	}

	return l.db.Put(prefixKey(key), joinEntry(expiresAt, value), nil)
}

// Delete - remove a value
func (l *LevelDB) Delete(ctx context.Context, key string) error {
	l.RLock()
	defer l.RUnlock()

	if nil == l.db {
		return fault.CacheClosed
	}
	return l.db.Delete(prefixKey(key), nil)
}

// Keys - list all unexpired keys starting with prefix
func (l *LevelDB) Keys(ctx context.Context, prefix string) ([]string, error) {
	l.RLock()
	defer l.RUnlock()

	if nil == l.db {
		return nil, fault.CacheClosed
	}

	now := l.now()
	keys := make([]string, 0)

	iter := l.db.NewIterator(ldb_util.BytesPrefix(prefixKey(prefix)), nil)
	for iter.Next() {
		expiresAt, _, ok := splitEntry(iter.Value())
		if !ok || expired(expiresAt, now) {
			continue
		}
		keys = append(keys, string(iter.Key()[1:]))
	}
	iter.Release()
	return keys, iter.Error()
}

// Sweep - delete all expired entries, returns the number removed
func (l *LevelDB) Sweep() (int, error) {
	l.RLock()
	defer l.RUnlock()

	if nil == l.db {
		return 0, fault.CacheClosed
	}

	now := l.now()
	batch := new(leveldb.Batch)

	iter := l.db.NewIterator(ldb_util.BytesPrefix([]byte{entryPrefix}), nil)
	for iter.Next() {
		expiresAt, _, ok := splitEntry(iter.Value())
		if !ok || expired(expiresAt, now) {
			batch.Delete(copyBytes(iter.Key()))
		}
	}
	iter.Release()
	if err := iter.Error(); nil != err {
		return 0, err
	}

	if 0 == batch.Len() {
		return 0, nil
	}
	return batch.Len(), l.db.Write(batch, nil)
}

// prepend the prefix onto the key
func prefixKey(key string) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = entryPrefix
	return append(prefixedKey, key...)
}

func joinEntry(expiresAt time.Time, value []byte) []byte {
	data := make([]byte, expiryBytes, expiryBytes+len(value))
	if !expiresAt.IsZero() {
		binary.BigEndian.PutUint64(data, uint64(expiresAt.Unix()))
	}
	return append(data, value...)
}

func splitEntry(data []byte) (time.Time, []byte, bool) {
	if len(data) < expiryBytes {
		return time.Time{}, nil, false
	}
	expiresAt := time.Time{}
	if seconds := binary.BigEndian.Uint64(data[:expiryBytes]); 0 != seconds {
		expiresAt = time.Unix(int64(seconds), 0)
	}
	return expiresAt, data[expiryBytes:], true
}

// return:
//
//	database handle
//	version number
func getDB(name string) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
