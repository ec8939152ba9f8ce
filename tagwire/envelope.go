// Copyright (c) 2024 Tagsum Inc. All rights reserved.
// Use of this source code is governed by a license that can be
// found in the LICENSE file.

package tagwire

import (
	"encoding/binary"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/tagsum/minimd5"
)

// Frame layout:
//
//	offset 0  magic "TW"
//	offset 2  version byte
//	offset 3  flag byte (bit 0: body is snappy-compressed)
//	offset 4  MiniMD5 fingerprint of the uncompressed payload, big-endian
//	offset 8  varint body length, then the body
const (
	frameVersion = 1
	flagSnappy   = 1 << 0
	headerSize   = 2 + 1 + 1 + 4
)

// maxFramePayload caps decompressed frame bodies so a short hostile frame
// cannot claim a huge decoded size.
const maxFramePayload = 64 << 20

var frameMagic = [2]byte{'T', 'W'}

// Frame error categories, matched with errors.Is.
var (
	ErrFrame       = errors.New("tagwire: malformed frame")
	ErrVersion     = errors.New("tagwire: unsupported frame version")
	ErrFingerprint = errors.New("tagwire: frame fingerprint mismatch")
)

// Seal wraps payload in a fingerprinted frame, snappy-compressing the body
// when that makes it smaller. The returned frame does not alias payload.
func Seal(payload []byte) []byte {
	body := payload
	var flags byte
	if c := snappy.Encode(nil, payload); len(c) < len(payload) {
		body, flags = c, flagSnappy
	}

	frame := make([]byte, 0, headerSize+binary.MaxVarintLen64+len(body))
	frame = append(frame, frameMagic[0], frameMagic[1], frameVersion, flags)
	frame = binary.BigEndian.AppendUint32(frame, minimd5.Sum32(payload))
	frame = binary.AppendUvarint(frame, uint64(len(body)))
	return append(frame, body...)
}

// Open validates a frame produced by Seal and returns its payload. The
// payload aliases frame unless the body was compressed.
//
// The fingerprint is verified over the decompressed payload, so any
// corruption of the body, in transit or at rest, is reported as
// ErrFingerprint (or ErrFrame when it breaks the compression framing
// first).
func Open(frame []byte) ([]byte, error) {
	if len(frame) < headerSize {
		return nil, errors.Wrapf(ErrFrame, "%d bytes, need at least %d", len(frame), headerSize)
	}
	if frame[0] != frameMagic[0] || frame[1] != frameMagic[1] {
		return nil, errors.Wrapf(ErrFrame, "bad magic 0x%02x%02x", frame[0], frame[1])
	}
	if frame[2] != frameVersion {
		return nil, errors.Wrapf(ErrVersion, "version %d", frame[2])
	}
	flags := frame[3]
	if flags&^flagSnappy != 0 {
		return nil, errors.Wrapf(ErrFrame, "unknown flags 0x%02x", flags)
	}
	want := binary.BigEndian.Uint32(frame[4:8])

	rest := frame[headerSize:]
	n, vn := binary.Uvarint(rest)
	if vn <= 0 {
		return nil, errors.Wrap(ErrFrame, "body length varint")
	}
	rest = rest[vn:]
	if uint64(len(rest)) != n {
		return nil, errors.Wrapf(ErrFrame, "body is %d bytes, header says %d", len(rest), n)
	}

	payload := rest
	if flags&flagSnappy != 0 {
		dl, err := snappy.DecodedLen(rest)
		if err != nil {
			return nil, errors.Wrap(ErrFrame, "snappy header")
		}
		if dl > maxFramePayload {
			return nil, errors.Wrapf(ErrLimit, "frame payload of %d bytes (max %d)", dl, maxFramePayload)
		}
		payload, err = snappy.Decode(nil, rest)
		if err != nil {
			return nil, errors.Wrap(ErrFrame, "snappy body")
		}
	}

	if got := minimd5.Sum32(payload); got != want {
		return nil, errors.Wrapf(ErrFingerprint, "got %08x, want %08x", got, want)
	}
	return payload, nil
}
