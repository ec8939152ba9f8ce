// Copyright (c) 2024 Tagsum Inc. All rights reserved.
// Use of this source code is governed by a license that can be
// found in the LICENSE file.

// Package minimd5 computes 32-bit MD5 fingerprints of short strings and
// byte slices.
//
// The fingerprint of an input is the first 4 bytes of its standard MD5
// digest, interpreted as a big-endian unsigned integer. That makes every
// value directly comparable with fingerprints computed elsewhere from the
// hex form of MD5, for example MySQL's
//
//	CONV(SUBSTR(MD5(input), 1, 8), 16, 10)
//
// MD5 is used here as a fast, well-distributed content fingerprint for
// keying and deduplication, not as a cryptographic primitive.
package minimd5

// Size of the fingerprint in bytes.
const Size = 4

// BlockSize of the underlying MD5 transform in bytes.
const BlockSize = 64

// scratchSize is the largest padded message hashed from stack scratch
// space. Inputs of scratchSize-9 bytes and shorter are fingerprinted
// without heap allocation.
const scratchSize = 256

// Sum32String returns the MiniMD5 fingerprint of the UTF-8 bytes of s.
//
// Only the low 32 bits of the MD5 bit-length trailer are ever written, so
// fingerprints of inputs of 512 MB and longer diverge from standard MD5.
// Inputs that large are far outside this package's intended use; they are
// still hashed deterministically rather than rejected.
func Sum32String(s string) uint32 {
	if len(s) <= scratchSize-9 {
		var scratch [scratchSize]byte
		n := copy(scratch[:], s)
		return finish(scratch[:], n)
	}
	buf := make([]byte, allocSize(len(s)))
	copy(buf, s)
	return finish(buf, len(s))
}

// Sum32 returns the MiniMD5 fingerprint of p. It is the []byte counterpart
// of Sum32String and returns identical values for identical bytes.
func Sum32(p []byte) uint32 {
	if len(p) <= scratchSize-9 {
		var scratch [scratchSize]byte
		n := copy(scratch[:], p)
		return finish(scratch[:], n)
	}
	buf := make([]byte, allocSize(len(p)))
	copy(buf, p)
	return finish(buf, len(p))
}

// allocSize returns the padded message size for an n-byte input: the
// payload, the 0x80 marker, zero fill up to the length trailer and the
// 8-byte trailer itself, rounded up to whole 64-byte blocks.
func allocSize(n int) int {
	return (n + 9 + 63) &^ 63
}
