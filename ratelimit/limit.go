// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ratelimit - pacing of the network queries to the ledger
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/signalstore/fault"
)

// Func - invoked before every network query and transaction
//
// blocks until the call may proceed, returns an error to abandon it
type Func func(ctx context.Context) error

// FuncN - invoked before a request carrying count items
type FuncN func(ctx context.Context, count int) error

// None - no limit at all
func None(ctx context.Context) error {
	return nil
}

// New - a limit of perSecond calls with bursts of up to burst calls
func New(perSecond float64, burst int) Func {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(ctx context.Context) error {
		return Limit(ctx, limiter)
	}
}

// Each - charge limit once per request whatever its count
func Each(limit Func) FuncN {
	return func(ctx context.Context, count int) error {
		return limit(ctx)
	}
}

// NewN - a limit of perSecond items, a request may carry up to
// maximumCount items and a larger one is refused with fault.InvalidCount
func NewN(perSecond float64, maximumCount int) FuncN {
	limiter := rate.NewLimiter(rate.Limit(perSecond), maximumCount)
	return func(ctx context.Context, count int) error {
		return LimitN(ctx, limiter, count, maximumCount)
	}
}

// Limit - limiting for a single request
func Limit(ctx context.Context, limiter *rate.Limiter) error {
	r := limiter.Reserve()
	if !r.OK() {
		return fault.RateLimiting
	}
	return wait(ctx, r)
}

// LimitN - limiting for a multiple request
func LimitN(ctx context.Context, limiter *rate.Limiter, count int, maximumCount int) error {
	// invalid count gets limited as a single request
	if count <= 0 || count > maximumCount {
		if err := Limit(ctx, limiter); nil != err {
			return err
		}
		return fault.InvalidCount
	}

	r := limiter.ReserveN(time.Now(), count)
	if !r.OK() {
		return fault.RateLimiting
	}
	return wait(ctx, r)
}

// sleep for the reservation delay unless the context ends first
func wait(ctx context.Context, r *rate.Reservation) error {
	delay := r.Delay()
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}
