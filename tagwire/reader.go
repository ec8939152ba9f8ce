// Copyright (c) 2024 Tagsum Inc. All rights reserved.
// Use of this source code is governed by a license that can be
// found in the LICENSE file.

package tagwire

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Reader decodes a tagged stream. Next advances member by member; after
// Next reports a member's tag, the matching payload method (ReadVarInt,
// ReadString, ReadList, ...) or Skip consumes its payload.
//
// A Reader is a cursor over the input slice and never copies payload
// bytes: slices returned by ReadBytes alias the input.
type Reader struct {
	buf    []byte
	off    int
	limits Limits
	depth  int
}

// NewReader returns a Reader over p with DefaultLimits.
func NewReader(p []byte) *Reader {
	return &Reader{buf: p, limits: DefaultLimits}
}

// NewReaderLimits returns a Reader over p with explicit limits.
func NewReaderLimits(p []byte, l Limits) *Reader {
	return &Reader{buf: p, limits: l}
}

// Offset returns the current decoding position, for error context.
func (r *Reader) Offset() int { return r.off }

// Next returns the tag and field id of the next member. At a struct
// terminator it returns (TagEnd, 0, nil); when the top-level stream is
// exhausted it returns io.EOF.
func (r *Reader) Next() (Tag, uint64, error) {
	if r.off >= len(r.buf) {
		if r.depth != 0 {
			return 0, 0, errors.Wrapf(ErrTruncated, "unterminated struct at offset %d", r.off)
		}
		return 0, 0, io.EOF
	}

	t := Tag(r.buf[r.off])
	if !t.valid() {
		return 0, 0, errors.Wrapf(ErrUnexpectedTag, "tag 0x%02x at offset %d", byte(t), r.off)
	}
	r.off++

	if t == TagEnd {
		if r.depth == 0 {
			return 0, 0, errors.Wrapf(ErrUnexpectedTag, "End at top level, offset %d", r.off-1)
		}
		r.depth--
		return TagEnd, 0, nil
	}

	id, err := r.uvarint()
	if err != nil {
		return 0, 0, errors.Wrap(err, "field id")
	}

	if t == TagStruct {
		if r.depth+1 > r.limits.MaxDepth {
			return 0, 0, errors.Wrapf(ErrDepth, "struct nesting past %d at offset %d", r.limits.MaxDepth, r.off)
		}
		r.depth++
	}
	return t, id, nil
}

// ReadVarInt reads a zigzag varint payload.
func (r *Reader) ReadVarInt() (int64, error) {
	u, err := r.uvarint()
	return unzigzag(u), err
}

// ReadVarUint reads a varint payload.
func (r *Reader) ReadVarUint() (uint64, error) {
	return r.uvarint()
}

// ReadFloat64 reads an 8-byte little-endian payload.
func (r *Reader) ReadFloat64() (float64, error) {
	p, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(p)), nil
}

// ReadBytes reads a length-prefixed payload. The returned slice aliases
// the input and is valid as long as the input is.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.limits.MaxBlob) {
		return nil, errors.Wrapf(ErrLimit, "blob of %d bytes at offset %d (max %d)", n, r.off, r.limits.MaxBlob)
	}
	return r.take(int(n))
}

// ReadString reads a length-prefixed payload as a string.
func (r *Reader) ReadString() (string, error) {
	p, err := r.ReadBytes()
	return string(p), err
}

// ReadList reads a packed list header and returns the element tag and
// count. The caller then consumes count payloads with the element tag's
// payload method.
func (r *Reader) ReadList() (Tag, int, error) {
	if r.off >= len(r.buf) {
		return 0, 0, errors.Wrapf(ErrTruncated, "list header at offset %d", r.off)
	}
	elem := Tag(r.buf[r.off])
	if !elem.primitive() {
		return 0, 0, errors.Wrapf(ErrUnexpectedTag, "list element tag %s at offset %d", elem, r.off)
	}
	r.off++

	n, err := r.uvarint()
	if err != nil {
		return 0, 0, errors.Wrap(err, "list count")
	}
	if n > uint64(r.limits.MaxList) {
		return 0, 0, errors.Wrapf(ErrLimit, "list of %d elements at offset %d (max %d)", n, r.off, r.limits.MaxList)
	}
	return elem, int(n), nil
}

// Skip discards the payload of the member whose tag Next just returned,
// including all nested content for structs and lists.
func (r *Reader) Skip(t Tag) error {
	switch t {
	case TagNull:
		return nil
	case TagVarInt, TagVarUint:
		_, err := r.uvarint()
		return err
	case TagFloat64:
		_, err := r.take(8)
		return err
	case TagBytes, TagString:
		_, err := r.ReadBytes()
		return err
	case TagList:
		elem, n, err := r.ReadList()
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := r.Skip(elem); err != nil {
				return err
			}
		}
		return nil
	case TagStruct:
		for {
			tt, _, err := r.Next()
			if err != nil {
				return err
			}
			if tt == TagEnd {
				return nil
			}
			if err := r.Skip(tt); err != nil {
				return err
			}
		}
	}
	return errors.Wrapf(ErrUnexpectedTag, "cannot skip %s", t)
}

func (r *Reader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.off:])
	if n > 0 {
		r.off += n
		return v, nil
	}
	if n == 0 {
		return 0, errors.Wrapf(ErrTruncated, "varint at offset %d", r.off)
	}
	return 0, errors.Wrapf(ErrVarint, "varint overflow at offset %d", r.off)
}

func (r *Reader) take(n int) ([]byte, error) {
	if len(r.buf)-r.off < n {
		return nil, errors.Wrapf(ErrTruncated, "need %d bytes at offset %d, have %d", n, r.off, len(r.buf)-r.off)
	}
	p := r.buf[r.off : r.off+n]
	r.off += n
	return p, nil
}
