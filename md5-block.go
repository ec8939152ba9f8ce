// Copyright (c) 2024 Tagsum Inc. All rights reserved.
// Use of this source code is governed by a license that can be
// found in the LICENSE file.

package minimd5

import (
	"encoding/binary"
	"math/bits"
)

// MD5 initialization vector.
const (
	init0 = 0x67452301
	init1 = 0xefcdab89
	init2 = 0x98badcfe
	init3 = 0x10325476
)

// MD5 magic numbers, floor(2^32 * abs(sin(i+1))) for step i.
var md5consts = [64]uint32{
	0xd76aa478, 0xe8c7b756, 0x242070db, 0xc1bdceee,
	0xf57c0faf, 0x4787c62a, 0xa8304613, 0xfd469501,
	0x698098d8, 0x8b44f7af, 0xffff5bb1, 0x895cd7be,
	0x6b901122, 0xfd987193, 0xa679438e, 0x49b40821,
	0xf61e2562, 0xc040b340, 0x265e5a51, 0xe9b6c7aa,
	0xd62f105d, 0x02441453, 0xd8a1e681, 0xe7d3fbc8,
	0x21e1cde6, 0xc33707d6, 0xf4d50d87, 0x455a14ed,
	0xa9e3e905, 0xfcefa3f8, 0x676f02d9, 0x8d2a4c8a,
	0xfffa3942, 0x8771f681, 0x6d9d6122, 0xfde5380c,
	0xa4beea44, 0x4bdecfa9, 0xf6bb4b60, 0xbebfbc70,
	0x289b7ec6, 0xeaa127fa, 0xd4ef3085, 0x04881d05,
	0xd9d4d039, 0xe6db99e5, 0x1fa27cf8, 0xc4ac5665,
	0xf4292244, 0x432aff97, 0xab9423a7, 0xfc93a039,
	0x655b59c3, 0x8f0ccc92, 0xffeff47d, 0x85845dd1,
	0x6fa87e4f, 0xfe2ce6e0, 0xa3014314, 0x4e0811a1,
	0xf7537e82, 0xbd3af235, 0x2ad7d2bb, 0xeb86d391,
}

// Per-round left-rotation amounts.
const (
	s11, s12, s13, s14 = 7, 12, 17, 22
	s21, s22, s23, s24 = 5, 9, 14, 20
	s31, s32, s33, s34 = 4, 11, 16, 23
	s41, s42, s43, s44 = 6, 10, 15, 21
)

// The four per-round mixing steps. Each consumes one message word x and
// one magic constant k, rotates by s and adds b.
func ff(a, b, c, d, x, k uint32, s int) uint32 {
	return b + bits.RotateLeft32(a+((b&c)|(^b&d))+x+k, s)
}

func gg(a, b, c, d, x, k uint32, s int) uint32 {
	return b + bits.RotateLeft32(a+((b&d)|(c&^d))+x+k, s)
}

func hh(a, b, c, d, x, k uint32, s int) uint32 {
	return b + bits.RotateLeft32(a+(b^c^d)+x+k, s)
}

func ii(a, b, c, d, x, k uint32, s int) uint32 {
	return b + bits.RotateLeft32(a+(c^(b|^d))+x+k, s)
}

// blockGeneric applies the MD5 compression function to each 64-byte block
// of p. len(p) must be a multiple of BlockSize.
func blockGeneric(state *[4]uint32, p []byte) {
	a0, b0, c0, d0 := state[0], state[1], state[2], state[3]

	for len(p) >= BlockSize {
		var m [16]uint32
		for i := range m {
			m[i] = binary.LittleEndian.Uint32(p[i*4:])
		}

		a, b, c, d := a0, b0, c0, d0

		// round 1
		a = ff(a, b, c, d, m[0], md5consts[0], s11)
		d = ff(d, a, b, c, m[1], md5consts[1], s12)
		c = ff(c, d, a, b, m[2], md5consts[2], s13)
		b = ff(b, c, d, a, m[3], md5consts[3], s14)
		a = ff(a, b, c, d, m[4], md5consts[4], s11)
		d = ff(d, a, b, c, m[5], md5consts[5], s12)
		c = ff(c, d, a, b, m[6], md5consts[6], s13)
		b = ff(b, c, d, a, m[7], md5consts[7], s14)
		a = ff(a, b, c, d, m[8], md5consts[8], s11)
		d = ff(d, a, b, c, m[9], md5consts[9], s12)
		c = ff(c, d, a, b, m[10], md5consts[10], s13)
		b = ff(b, c, d, a, m[11], md5consts[11], s14)
		a = ff(a, b, c, d, m[12], md5consts[12], s11)
		d = ff(d, a, b, c, m[13], md5consts[13], s12)
		c = ff(c, d, a, b, m[14], md5consts[14], s13)
		b = ff(b, c, d, a, m[15], md5consts[15], s14)

		// round 2
		a = gg(a, b, c, d, m[1], md5consts[16], s21)
		d = gg(d, a, b, c, m[6], md5consts[17], s22)
		c = gg(c, d, a, b, m[11], md5consts[18], s23)
		b = gg(b, c, d, a, m[0], md5consts[19], s24)
		a = gg(a, b, c, d, m[5], md5consts[20], s21)
		d = gg(d, a, b, c, m[10], md5consts[21], s22)
		c = gg(c, d, a, b, m[15], md5consts[22], s23)
		b = gg(b, c, d, a, m[4], md5consts[23], s24)
		a = gg(a, b, c, d, m[9], md5consts[24], s21)
		d = gg(d, a, b, c, m[14], md5consts[25], s22)
		c = gg(c, d, a, b, m[3], md5consts[26], s23)
		b = gg(b, c, d, a, m[8], md5consts[27], s24)
		a = gg(a, b, c, d, m[13], md5consts[28], s21)
		d = gg(d, a, b, c, m[2], md5consts[29], s22)
		c = gg(c, d, a, b, m[7], md5consts[30], s23)
		b = gg(b, c, d, a, m[12], md5consts[31], s24)

		// round 3
		a = hh(a, b, c, d, m[5], md5consts[32], s31)
		d = hh(d, a, b, c, m[8], md5consts[33], s32)
		c = hh(c, d, a, b, m[11], md5consts[34], s33)
		b = hh(b, c, d, a, m[14], md5consts[35], s34)
		a = hh(a, b, c, d, m[1], md5consts[36], s31)
		d = hh(d, a, b, c, m[4], md5consts[37], s32)
		c = hh(c, d, a, b, m[7], md5consts[38], s33)
		b = hh(b, c, d, a, m[10], md5consts[39], s34)
		a = hh(a, b, c, d, m[13], md5consts[40], s31)
		d = hh(d, a, b, c, m[0], md5consts[41], s32)
		c = hh(c, d, a, b, m[3], md5consts[42], s33)
		b = hh(b, c, d, a, m[6], md5consts[43], s34)
		a = hh(a, b, c, d, m[9], md5consts[44], s31)
		d = hh(d, a, b, c, m[12], md5consts[45], s32)
		c = hh(c, d, a, b, m[15], md5consts[46], s33)
		b = hh(b, c, d, a, m[2], md5consts[47], s34)

		// round 4
		a = ii(a, b, c, d, m[0], md5consts[48], s41)
		d = ii(d, a, b, c, m[7], md5consts[49], s42)
		c = ii(c, d, a, b, m[14], md5consts[50], s43)
		b = ii(b, c, d, a, m[5], md5consts[51], s44)
		a = ii(a, b, c, d, m[12], md5consts[52], s41)
		d = ii(d, a, b, c, m[3], md5consts[53], s42)
		c = ii(c, d, a, b, m[10], md5consts[54], s43)
		b = ii(b, c, d, a, m[1], md5consts[55], s44)
		a = ii(a, b, c, d, m[8], md5consts[56], s41)
		d = ii(d, a, b, c, m[15], md5consts[57], s42)
		c = ii(c, d, a, b, m[6], md5consts[58], s43)
		b = ii(b, c, d, a, m[13], md5consts[59], s44)
		a = ii(a, b, c, d, m[4], md5consts[60], s41)
		d = ii(d, a, b, c, m[11], md5consts[61], s42)
		c = ii(c, d, a, b, m[2], md5consts[62], s43)
		b = ii(b, c, d, a, m[9], md5consts[63], s44)

		a0 += a
		b0 += b
		c0 += c
		d0 += d

		p = p[BlockSize:]
	}

	state[0], state[1], state[2], state[3] = a0, b0, c0, d0
}

// finish pads the n-byte payload at the start of buf in place, runs the
// transform over the whole padded message and returns the byte-swapped
// first state word. buf must hold at least allocSize(n) bytes and the
// bytes past the payload must be zero on entry.
//
// The padding is the RFC 1321 layout with one deliberate deviation: only
// the low 32 bits of the bit-length trailer are written, the upper 4
// trailer bytes stay zero. See Sum32String.
func finish(buf []byte, n int) uint32 {
	total := allocSize(n)
	buf[n] = 0x80
	binary.LittleEndian.PutUint32(buf[total-8:], uint32(n)<<3)

	state := [4]uint32{init0, init1, init2, init3}
	blockGeneric(&state, buf[:total])

	// First 4 digest bytes read big-endian, i.e. the leading 8 hex digits
	// of the canonical MD5 string form.
	return bits.ReverseBytes32(state[0])
}
