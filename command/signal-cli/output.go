// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
)

// write a reply as indented JSON to the command output
func (m *metadata) print(reply interface{}) error {
	b, err := json.MarshalIndent(reply, "", "  ")
	if nil != err {
		return err
	}

	_, err = fmt.Fprintf(m.w, "%s\n", b)
	return err
}
