// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

// maximum possible number of bytes in a varint64
const varint64MaximumBytes = 9

// append a 64 bit unsigned integer as a varint64
//
// seven bits per byte, least significant group first, high bit set
// when another byte follows; the ninth byte carries a full eight bits
func appendVarint64(buffer []byte, value uint64) []byte {
	for i := 0; i < varint64MaximumBytes-1; i += 1 {
		if value < 0x80 {
			return append(buffer, byte(value))
		}
		buffer = append(buffer, byte(value)|0x80)
		value >>= 7
	}
	return append(buffer, byte(value))
}

// read a varint64 from the start of a buffer
//
// also return the number of bytes used as second value
// returns 0, 0 if varint64 buffer is truncated
func readVarint64(buffer []byte) (uint64, int) {
	result := uint64(0)
	shift := uint(0)

	for count := 0; count < len(buffer) && count < varint64MaximumBytes; count += 1 {
		currentByte := uint64(buffer[count])
		if count == varint64MaximumBytes-1 {
			result |= currentByte << shift
			return result, count + 1
		}
		result |= (currentByte & 0x7f) << shift
		if 0 == currentByte&0x80 {
			return result, count + 1
		}
		shift += 7
	}
	return 0, 0
}
