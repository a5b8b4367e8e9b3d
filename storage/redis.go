// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisScanCount = 1000

// Redis - cache shared between processes
type Redis struct {
	client redis.UniversalClient
	now    func() time.Time
}

// RedisOptions - connection parameters
type RedisOptions struct {
	Address  string
	Username string
	Password string
	Database int
}

// NewRedis - connect and check the server is reachable
func NewRedis(ctx context.Context, options RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Username: options.Username,
		Password: options.Password,
		DB:       options.Database,
	})

	if err := client.Ping(ctx).Err(); nil != err {
		client.Close()
		return nil, err
	}
	return NewRedisFromClient(client), nil
}

// NewRedisFromClient - wrap an existing client
func NewRedisFromClient(client redis.UniversalClient) *Redis {
	return &Redis{
		client: client,
		now:    time.Now,
	}
}

// Get - read a value
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if nil != err {
		return nil, false, err
	}
	return value, true, nil
}

// Put - store a value, expiry is delegated to the server
func (r *Redis) Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	if expiresAt.IsZero() {
		return r.client.Set(ctx, key, value, 0).Err()
	}

	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.client.Del(ctx, key).Err()
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Delete - remove a value
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Keys - list keys starting with prefix
func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	cursor := uint64(0)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, prefix+"*", redisScanCount).Result()
		if nil != err {
			return nil, err
		}
		keys = append(keys, batch...)
		if 0 == next {
			return keys, nil
		}
		cursor = next
	}
}

// Close - release the connection pool
func (r *Redis) Close() error {
	return r.client.Close()
}
