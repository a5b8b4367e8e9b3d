// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RecordError GenericError

// classes used by the ledger facing code
type LedgerError GenericError
type TransactionError GenericError
type CryptoError GenericError
type ProtocolError GenericError

// common errors - keep in alphabetic order
var (
	CacheClosed             = ProcessError("cache is closed")
	DecryptionFailed        = CryptoError("decryption failed")
	DuplicateRecord         = ProtocolError("duplicate record")
	EmptyPurchasePrice      = InvalidError("prediction has no price")
	InvalidCacheBackend     = InvalidError("invalid cache backend")
	InvalidCount            = InvalidError("invalid count")
	InvalidDataDirectory    = InvalidError("invalid data directory")
	InvalidEventKind        = RecordError("invalid event kind")
	InvalidExpiry           = InvalidError("invalid expiry")
	InvalidFileName         = InvalidError("file name must not contain a directory")
	InvalidGeneratorLength  = LengthError("invalid content key generator length")
	InvalidKeyLength        = LengthError("invalid key length")
	InvalidPassphrase       = CryptoError("invalid passphrase")
	InvalidPrivateKey       = InvalidError("invalid private key")
	InvalidPublicKey        = InvalidError("invalid public key")
	InvalidTournamentPhases = ProtocolError("tournament phases overlap the next round")
	InvalidWindowSize       = InvalidError("invalid window size")
	LedgerQueryFailed       = LedgerError("ledger query failed")
	MissingCache            = InvalidError("cache is required")
	MissingIdentity         = InvalidError("identity is required")
	MissingLedgerClient     = InvalidError("ledger client is required")
	MissingRedisAddress     = InvalidError("redis address is required")
	ModelNotFound           = NotFoundError("model not found")
	NotConfigurationTable   = InvalidError("configuration must return a table")
	NotEnoughBalance        = TransactionError("not enough balance")
	NotEventPack            = RecordError("not an event window pack")
	NotListable             = ProcessError("cache cannot list keys")
	NotModelOwner           = InvalidError("not model owner")
	OrphanUpdate            = ProtocolError("update for missing record")
	PredictionNotFound      = NotFoundError("prediction not found")
	PurchaseNotFound        = NotFoundError("purchase not found")
	RateLimiting            = ProcessError("rate limiting")
	TournamentNotFound      = NotFoundError("tournament not found")
	TransactionFailed       = TransactionError("transaction failed")
	TransactionReverted     = TransactionError("transaction reverted")
	TruncatedEventPack      = LengthError("truncated event window pack")
	UnsupportedMethod       = InvalidError("unsupported contract method")
	WindowNotCached         = NotFoundError("window not cached")
	WrongSealedBoxSize      = LengthError("sealed box is too short")
	WrongSecretBoxSize      = LengthError("secret box is too short")
)

// the error interface methods
func (e GenericError) Error() string     { return string(e) }
func (e ExistsError) Error() string      { return string(e) }
func (e InvalidError) Error() string     { return string(e) }
func (e LengthError) Error() string      { return string(e) }
func (e NotFoundError) Error() string    { return string(e) }
func (e ProcessError) Error() string     { return string(e) }
func (e RecordError) Error() string      { return string(e) }
func (e LedgerError) Error() string      { return string(e) }
func (e TransactionError) Error() string { return string(e) }
func (e CryptoError) Error() string      { return string(e) }
func (e ProtocolError) Error() string    { return string(e) }

// determine the class of an error
// wrapped errors are unwrapped until a class is found
func IsErrExists(e error) bool      { var x ExistsError; return errors.As(e, &x) }
func IsErrInvalid(e error) bool     { var x InvalidError; return errors.As(e, &x) }
func IsErrLength(e error) bool      { var x LengthError; return errors.As(e, &x) }
func IsErrNotFound(e error) bool    { var x NotFoundError; return errors.As(e, &x) }
func IsErrProcess(e error) bool     { var x ProcessError; return errors.As(e, &x) }
func IsErrRecord(e error) bool      { var x RecordError; return errors.As(e, &x) }
func IsErrLedger(e error) bool      { var x LedgerError; return errors.As(e, &x) }
func IsErrTransaction(e error) bool { var x TransactionError; return errors.As(e, &x) }
func IsErrCrypto(e error) bool      { var x CryptoError; return errors.As(e, &x) }
func IsErrProtocol(e error) bool    { var x ProtocolError; return errors.As(e, &x) }
