// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/signalstore/contentkey"
	"github.com/bitmark-inc/signalstore/fault"
	"github.com/bitmark-inc/signalstore/indexer"
	"github.com/bitmark-inc/signalstore/ledger"
	"github.com/bitmark-inc/signalstore/ratelimit"
	"github.com/bitmark-inc/signalstore/storage"
)

const (
	privateKeyKey     = "private_key"
	keyInfoKeyPrefix  = "prediction_key_info:"
	keyInfoExpiration = 2 * 24 * time.Hour
)

// Options - construction parameters
//
// Cache is shared by any number of stores, each store must have its own
// Namespace; an empty Namespace becomes DefaultNamespace(Address)
//
// TransactionLimit is charged with the number of items of each
// transaction, when nil RateLimit is charged once per transaction
type Options struct {
	Log              *logger.L
	Client           ledger.Client
	Cache            storage.Cache
	Namespace        string
	RateLimit        ratelimit.Func
	TransactionLimit ratelimit.FuncN
	Address          string // ledger identity of the store
	WindowSize       uint64
	Passphrase       string // protects the private key in the cache
}

// DefaultNamespace - the cache namespace of an identity without a configured one
func DefaultNamespace(address string) string {
	return address + ":"
}

// Store - content store of one identity
type Store struct {
	sync.Mutex

	log      *logger.L
	client   ledger.Client
	indexer  *indexer.Indexer
	keys     storage.Cache
	limit    ratelimit.Func
	limitN   ratelimit.FuncN
	address  string
	identity *contentkey.Identity
}

// New - open the store, creating and registering its identity if needed
func New(ctx context.Context, options Options) (*Store, error) {
	if nil == options.Client {
		return nil, fault.MissingLedgerClient
	}
	if nil == options.Cache {
		return nil, fault.MissingCache
	}
	if "" == options.Address {
		return nil, fault.MissingIdentity
	}

	limit := options.RateLimit
	if nil == limit {
		limit = ratelimit.None
	}
	limitN := options.TransactionLimit
	if nil == limitN {
		limitN = ratelimit.Each(limit)
	}
	namespace := options.Namespace
	if "" == namespace {
		namespace = DefaultNamespace(options.Address)
	}
	windowSize := options.WindowSize
	if 0 == windowSize {
		windowSize = indexer.DefaultWindowSize
	}

	log := options.Log
	if nil == log {
		log = logger.New("store")
	}

	ix, err := indexer.New(log, options.Client, options.Cache, limit, windowSize)
	if nil != err {
		return nil, err
	}

	s := &Store{
		log:     log,
		client:  options.Client,
		indexer: ix,
		keys:    storage.Namespace(options.Cache, namespace),
		limit:   limit,
		limitN:  limitN,
		address: options.Address,
	}

	s.identity, err = s.loadIdentity(ctx, options.Passphrase)
	if nil != err {
		return nil, err
	}

	err = s.registerPublicKey(ctx)
	if nil != err {
		return nil, err
	}

	log.Infof("store: %s  public key: %x", s.address, s.identity.PublicKey())
	return s, nil
}

// Address - ledger identity of the store
func (s *Store) Address() string {
	return s.address
}

// PublicKey - current identity public key
func (s *Store) PublicKey() []byte {
	return s.identity.PublicKey()
}

// Balance - ledger balance of the store identity
func (s *Store) Balance(ctx context.Context) (*big.Int, error) {
	s.Lock()
	defer s.Unlock()

	if err := s.limit(ctx); nil != err {
		return nil, err
	}
	return s.client.Balance(ctx, s.address)
}

// FetchTournament - a tournament by id
func (s *Store) FetchTournament(ctx context.Context, tournamentId string) (ledger.Tournament, error) {
	s.Lock()
	defer s.Unlock()

	tournaments, err := s.indexer.FetchTournaments(ctx, indexer.TournamentFilter{TournamentId: tournamentId})
	if nil != err {
		return ledger.Tournament{}, err
	}
	if 0 == len(tournaments) {
		return ledger.Tournament{}, fault.TournamentNotFound
	}
	return tournaments[0], nil
}

// the persisted identity or a new one
func (s *Store) loadIdentity(ctx context.Context, passphrase string) (*contentkey.Identity, error) {
	data, found, err := s.keys.Get(ctx, privateKeyKey)
	if nil != err {
		return nil, err
	}
	if found {
		return contentkey.UnmarshalIdentity(data, passphrase)
	}

	identity, err := contentkey.NewIdentity()
	if nil != err {
		return nil, err
	}
	data, err = identity.Marshal(passphrase)
	if nil != err {
		return nil, err
	}
	if err := s.keys.Put(ctx, privateKeyKey, data, storage.Never); nil != err {
		return nil, err
	}

	s.log.Info("created new identity")
	return identity, nil
}

// submit the public key if the registry holds a different one
//
// content already shipped stays sealed to the previous key
func (s *Store) registerPublicKey(ctx context.Context) error {
	current, err := s.indexer.CurrentPublicKey(ctx, s.address, false)
	if nil != err {
		return err
	}

	publicKey := s.identity.PublicKey()
	if bytes.Equal(current, publicKey) {
		return nil
	}

	s.log.Infof("change public key: %x → %x", current, publicKey)
	_, err = s.transact(ctx, ledger.ChangePublicKey, ledger.ChangePublicKeyParams{PublicKey: publicKey}, 1, nil)
	return err
}

// submit a transaction of count items and wait for its receipt
func (s *Store) transact(ctx context.Context, method ledger.Method, arguments interface{}, count int, value *big.Int) (*ledger.Receipt, error) {
	if err := s.limitN(ctx, count); nil != err {
		s.log.Errorf("%s: items: %d  limit error: %s", method, count, err)
		return nil, err
	}

	receipt, err := s.client.Transact(ctx, ledger.Call{
		From:      s.address,
		Method:    method,
		Arguments: arguments,
		Value:     value,
	})
	if nil != err {
		s.log.Errorf("%s: error: %s", method, err)
		return nil, err
	}
	if ledger.StatusSuccessful != receipt.Status {
		s.log.Errorf("%s: tx: %s  reverted", method, receipt.TxHash)
		return receipt, fault.TransactionFailed
	}

	s.log.Infof("%s: tx: %s  block: %d  gas: %d", method, receipt.TxHash, receipt.BlockNumber, receipt.GasUsed)
	return receipt, nil
}
