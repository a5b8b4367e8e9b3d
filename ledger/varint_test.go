// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"
	"testing"
)

var varint64Tests = []struct {
	value   uint64
	encoded []byte
}{
	{0, []byte{0x00}},
	{1, []byte{0x01}},
	{127, []byte{0x7f}},
	{128, []byte{0x80, 0x01}},
	{255, []byte{0xff, 0x01}},
	{16384, []byte{0x80, 0x80, 0x01}},
	{0x7fffffffffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}},
	{0x8000000000000000, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}},
	{0xffffffffffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
}

func TestVarint64(t *testing.T) {
	for i, item := range varint64Tests {
		encoded := appendVarint64(nil, item.value)
		if !bytes.Equal(encoded, item.encoded) {
			t.Errorf("%d: appendVarint64(%x) -> %x  expected: %x", i, item.value, encoded, item.encoded)
		}

		suffix := []byte{0xff, 0x97, 0x23}
		b := append(append([]byte{}, item.encoded...), suffix...)
		value, count := readVarint64(b)
		if value != item.value || count != len(item.encoded) {
			t.Errorf("%d: readVarint64(%x) -> %d, %d  expected: %d, %d", i, b, value, count, item.value, len(item.encoded))
		}
	}
}

func TestVarint64Truncated(t *testing.T) {
	truncated := [][]byte{
		{},
		{0x80},
		{0xff, 0xff},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	}
	for i, b := range truncated {
		if value, count := readVarint64(b); 0 != value || 0 != count {
			t.Errorf("%d: readVarint64(%x) -> %d, %d  expected: 0, 0", i, b, value, count)
		}
	}
}
