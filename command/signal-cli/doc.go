// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// signal-cli - inspect and maintain the external cache of a store
//
// all commands read the Lua configuration given by --config-file and
// work on the cache alone, the ledger is never contacted
//
//	signal-cli -c signal.conf windows          list cached event windows
//	signal-cli -c signal.conf windows --verify decode every window
//	signal-cli -c signal.conf identity         identity public key and key info entries
//	signal-cli -c signal.conf replay           rebuild relations from the cached windows
//	signal-cli -c signal.conf sweep            remove expired leveldb entries
//	signal-cli namespace                       generate a fresh namespace
package main
