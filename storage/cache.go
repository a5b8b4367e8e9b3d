// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"time"
)

// Cache - persisted key/value store
//
// Get returns a copy of the value; a zero expiresAt on Put means the
// entry never expires
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error
	Delete(ctx context.Context, key string) error
}

// Lister - a cache that can enumerate its keys
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Closer - a cache holding resources that must be released
type Closer interface {
	Close() error
}

// Never - expiry value for permanent entries
var Never = time.Time{}

// true if the expiry time has passed
func expired(expiresAt time.Time, now time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}

func copyBytes(b []byte) []byte {
	if nil == b {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
