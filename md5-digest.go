// Copyright (c) 2024 Tagsum Inc. All rights reserved.
// Use of this source code is governed by a license that can be
// found in the LICENSE file.

package minimd5

import (
	"encoding/binary"
	"hash"
	"math/bits"
)

// Digest is the streaming MiniMD5 state. Unlike the one-shot functions it
// keeps the full 64-bit bit-length trailer, so its fingerprints track
// standard MD5 at every input size. Use New; the zero value lacks the
// initialization vector.
type Digest struct {
	s   [4]uint32
	x   [BlockSize]byte
	nx  int
	len uint64
}

// New returns a hash.Hash32 computing the MiniMD5 fingerprint of all bytes
// written to it. Sum and Sum32 snapshot the running state rather than
// finalizing it, so the digest stays writable afterwards.
func New() hash.Hash32 {
	d := new(Digest)
	d.Reset()
	return d
}

// Size - number of bytes Sum appends.
func (d *Digest) Size() int { return Size }

// BlockSize - block size of the underlying transform.
func (d *Digest) BlockSize() int { return BlockSize }

// Reset - restore the digest to its initial state.
func (d *Digest) Reset() {
	d.s = [4]uint32{init0, init1, init2, init3}
	d.nx = 0
	d.len = 0
}

// Write adds p to the running digest. It never returns an error.
func (d *Digest) Write(p []byte) (nn int, err error) {
	nn = len(p)
	d.len += uint64(nn)
	if d.nx > 0 {
		n := copy(d.x[d.nx:], p)
		d.nx += n
		if d.nx == BlockSize {
			blockGeneric(&d.s, d.x[:])
			d.nx = 0
		}
		p = p[n:]
	}
	if len(p) >= BlockSize {
		n := len(p) &^ (BlockSize - 1)
		blockGeneric(&d.s, p[:n])
		p = p[n:]
	}
	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}
	return
}

// Sum32 - fingerprint of everything written so far.
func (d *Digest) Sum32() uint32 {
	d0 := *d
	return d0.checkSum()
}

// Sum - append the 4 fingerprint bytes, big-endian, to in.
func (d *Digest) Sum(in []byte) []byte {
	d0 := *d
	fp := d0.checkSum()
	return append(in, byte(fp>>24), byte(fp>>16), byte(fp>>8), byte(fp))
}

// checkSum consumes the receiver; Sum and Sum32 finalize a copy so the
// original stays writable.
func (d *Digest) checkSum() uint32 {
	// Padding. Add a 1 bit and 0 bits until 56 bytes mod 64, then the
	// message length in bits.
	length := d.len
	var tmp [64]byte
	tmp[0] = 0x80
	if length%64 < 56 {
		d.Write(tmp[0 : 56-length%64])
	} else {
		d.Write(tmp[0 : 64+56-length%64])
	}

	binary.LittleEndian.PutUint64(tmp[:8], length<<3)
	d.Write(tmp[:8])

	return bits.ReverseBytes32(d.s[0])
}
