package opentype

import "encoding/binary"

// CalcChecksum computes the OpenType table checksum: the big-endian
// unsigned 32-bit sum (with wraparound) of every 4-byte word in b. The
// caller must ensure len(b) is a multiple of 4 (tables are always padded
// to a 4-byte boundary before their checksum is taken).
func CalcChecksum(b []byte) uint32 {
	if len(b)%4 != 0 {
		panic("opentype: data not a multiple of four bytes")
	}
	var sum uint32
	for i := 0; i < len(b); i += 4 {
		sum += binary.BigEndian.Uint32(b[i : i+4])
	}
	return sum
}
