// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - the external key -> bytes cache
//
// The cache outlives the process and may be shared between processes,
// it holds three kinds of entry (key layout is chosen by the callers):
//
//	event_window:<from>:<to>                      - packed events of a full block window
//	                                                never expires, immutable once written
//	<namespace>private_key                        - identity private key of one store
//	                                                never expires
//	<namespace>prediction_key_info:<model>:<start> - content key generator ++ content key
//	                                                expires after the disclosure window
//
// Backends:
//
//	LevelDB - on-disk, one process at a time, expired entries removed by a background sweep
//	Redis   - shared by any number of processes, expiry handled by the server
//	Memory  - in-process only, for tests and one-shot tools
//
// LevelDB value layout:
//
//	0x00 ++ "VERSION"             - database version (big endian uint32)
//	C ++ key                      - expiry (big endian uint64 unix seconds, 0 = never) ++ value
package storage
