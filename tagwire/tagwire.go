// Copyright (c) 2024 Tagsum Inc. All rights reserved.
// Use of this source code is governed by a license that can be
// found in the LICENSE file.

// Package tagwire implements a compact tagged binary encoding for
// structured payloads, plus a fingerprinted frame format for shipping them.
//
// A stream is a sequence of members. Each member is a one-byte type tag, a
// varint field id and a tag-dependent payload. Struct members nest: a
// TagStruct opens a new member sequence that runs until its TagEnd. Lists
// are packed: one element tag, a varint count and that many payloads with
// no per-element tags or ids.
//
// Readers never trust the input. Payload lengths, list counts and nesting
// depth are checked against configurable Limits before any allocation, and
// every decode error carries the stream offset it was detected at.
//
// Frames produced by Seal carry a MiniMD5 fingerprint of the payload so
// corruption is caught before a payload is decoded. See Seal and Open.
package tagwire

import (
	"github.com/pkg/errors"
)

// Tag identifies the wire type of a member or list element.
type Tag byte

const (
	TagNull    Tag = iota // no payload
	TagVarInt             // zigzag varint
	TagVarUint            // varint
	TagFloat64            // 8 bytes, IEEE 754 little-endian
	TagBytes              // varint length, then raw bytes
	TagString             // varint length, then UTF-8 bytes
	TagList               // element tag, varint count, packed payloads
	TagStruct             // members until the matching TagEnd
	TagEnd                // closes a TagStruct, no field id, no payload
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "Null"
	case TagVarInt:
		return "VarInt"
	case TagVarUint:
		return "VarUint"
	case TagFloat64:
		return "Float64"
	case TagBytes:
		return "Bytes"
	case TagString:
		return "String"
	case TagList:
		return "List"
	case TagStruct:
		return "Struct"
	case TagEnd:
		return "End"
	}
	return "Invalid"
}

func (t Tag) valid() bool { return t <= TagEnd }

// primitive reports whether t may appear as a packed list element.
func (t Tag) primitive() bool { return t >= TagVarInt && t <= TagString }

// Limits bound what a Reader will decode from a single stream.
type Limits struct {
	MaxBlob  int // largest Bytes or String payload in bytes
	MaxList  int // largest list element count
	MaxDepth int // deepest struct nesting
}

// DefaultLimits is sized for typical persisted payloads: generous enough
// for real data, small enough that a hostile stream cannot force a
// pathological allocation.
var DefaultLimits = Limits{
	MaxBlob:  16 << 20,
	MaxList:  1 << 20,
	MaxDepth: 64,
}

// Decode error categories. Wrapped errors add the offending offset; match
// with errors.Is.
var (
	ErrTruncated     = errors.New("tagwire: truncated input")
	ErrUnexpectedTag = errors.New("tagwire: unexpected tag")
	ErrVarint        = errors.New("tagwire: malformed varint")
	ErrLimit         = errors.New("tagwire: limit exceeded")
	ErrDepth         = errors.New("tagwire: nesting too deep")
)

// zigzag maps signed values onto unsigned so small magnitudes of either
// sign stay short on the wire.
func zigzag(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
