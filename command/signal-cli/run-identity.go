// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/signalstore/configuration"
	"github.com/bitmark-inc/signalstore/fault"
	"github.com/bitmark-inc/signalstore/store"
)

type identityReply struct {
	Namespace string               `json:"namespace"`
	Address   string               `json:"address"`
	PublicKey string               `json:"publicKey"`
	Base58    string               `json:"publicKeyBase58"`
	KeyInfo   []store.KeyInfoEntry `json:"keyInfo"`
}

// the namespace store.New uses for the configured identity
func storeNamespace(config *configuration.Configuration) (string, error) {
	if "" != config.Namespace {
		return config.Namespace, nil
	}
	if "" == config.Address {
		return "", fault.MissingIdentity
	}
	return store.DefaultNamespace(config.Address), nil
}

func runIdentity(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	namespace, err := storeNamespace(m.config)
	if nil != err {
		return err
	}

	inventory, err := store.Inspect(context.Background(), m.cache, namespace, m.config.Passphrase)
	if nil != err {
		return err
	}
	if nil == inventory.PublicKey && m.verbose {
		fmt.Fprintf(m.e, "namespace: %q holds no identity\n", namespace)
	}

	return m.print(identityReply{
		Namespace: namespace,
		Address:   m.config.Address,
		PublicKey: hex.EncodeToString(inventory.PublicKey),
		Base58:    base58.Encode(inventory.PublicKey),
		KeyInfo:   inventory.KeyInfo,
	})
}
