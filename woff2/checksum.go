package woff2

import "encoding/binary"

// calcChecksum computes an sfnt table checksum: the sum of the table's
// bytes read as big-endian uint32 words, short tables implicitly
// zero-padded to a 4-byte boundary.
func calcChecksum(data []byte) uint32 {
	var sum uint32
	n := len(data) / 4 * 4
	for i := 0; i < n; i += 4 {
		sum += binary.BigEndian.Uint32(data[i:])
	}
	if rem := len(data) - n; rem > 0 {
		var last [4]byte
		copy(last[:], data[n:])
		sum += binary.BigEndian.Uint32(last[:])
	}
	return sum
}

