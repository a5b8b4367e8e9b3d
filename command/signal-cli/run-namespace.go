// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli"
)

// a namespace unique to one store, for the configuration file
func newNamespace() string {
	return uuid.New().String() + ":"
}

func runNamespace(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "%s\n", newNamespace())
	return nil
}
