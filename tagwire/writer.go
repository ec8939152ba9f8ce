// Copyright (c) 2024 Tagsum Inc. All rights reserved.
// Use of this source code is governed by a license that can be
// found in the LICENSE file.

package tagwire

import (
	"encoding/binary"
	"math"
)

// Writer builds a tagged stream in memory. Write methods never fail; the
// buffer grows as needed. Mismatched BeginStruct/End pairs are programmer
// errors and panic. A Writer is not safe for concurrent use.
type Writer struct {
	buf   []byte
	depth int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Reset discards all written data, keeping the buffer for reuse.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.depth = 0
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Finish returns the encoded stream. It panics if a struct is still open.
// The returned slice aliases the Writer's buffer and is valid until the
// next Reset or write.
func (w *Writer) Finish() []byte {
	if w.depth != 0 {
		panic("tagwire: Finish with open struct")
	}
	return w.buf
}

func (w *Writer) tag(t Tag) {
	w.buf = append(w.buf, byte(t))
}

func (w *Writer) uvarint(v uint64) {
	w.buf = binary.AppendUvarint(w.buf, v)
}

// WriteNull records field id with no value.
func (w *Writer) WriteNull(id uint64) {
	w.tag(TagNull)
	w.uvarint(id)
}

// WriteVarInt writes v under id as a zigzag varint.
func (w *Writer) WriteVarInt(id uint64, v int64) {
	w.tag(TagVarInt)
	w.uvarint(id)
	w.uvarint(zigzag(v))
}

// WriteVarUint writes v under id as a plain varint.
func (w *Writer) WriteVarUint(id uint64, v uint64) {
	w.tag(TagVarUint)
	w.uvarint(id)
	w.uvarint(v)
}

// WriteFloat64 writes v under id as 8 little-endian bytes.
func (w *Writer) WriteFloat64(id uint64, v float64) {
	w.tag(TagFloat64)
	w.uvarint(id)
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteBytes writes p under id, length-prefixed.
func (w *Writer) WriteBytes(id uint64, p []byte) {
	w.tag(TagBytes)
	w.uvarint(id)
	w.uvarint(uint64(len(p)))
	w.buf = append(w.buf, p...)
}

// WriteString writes s under id, length-prefixed.
func (w *Writer) WriteString(id uint64, s string) {
	w.tag(TagString)
	w.uvarint(id)
	w.uvarint(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteInt64List writes vs under id as a packed list of zigzag varints.
func (w *Writer) WriteInt64List(id uint64, vs []int64) {
	w.tag(TagList)
	w.uvarint(id)
	w.buf = append(w.buf, byte(TagVarInt))
	w.uvarint(uint64(len(vs)))
	for _, v := range vs {
		w.uvarint(zigzag(v))
	}
}

// WriteUint64List writes vs under id as a packed list of varints.
func (w *Writer) WriteUint64List(id uint64, vs []uint64) {
	w.tag(TagList)
	w.uvarint(id)
	w.buf = append(w.buf, byte(TagVarUint))
	w.uvarint(uint64(len(vs)))
	for _, v := range vs {
		w.uvarint(v)
	}
}

// WriteStringList writes ss under id as a packed list of length-prefixed
// strings.
func (w *Writer) WriteStringList(id uint64, ss []string) {
	w.tag(TagList)
	w.uvarint(id)
	w.buf = append(w.buf, byte(TagString))
	w.uvarint(uint64(len(ss)))
	for _, s := range ss {
		w.uvarint(uint64(len(s)))
		w.buf = append(w.buf, s...)
	}
}

// BeginStruct opens a nested struct under id. Close it with End.
func (w *Writer) BeginStruct(id uint64) {
	w.tag(TagStruct)
	w.uvarint(id)
	w.depth++
}

// End closes the innermost open struct.
func (w *Writer) End() {
	if w.depth == 0 {
		panic("tagwire: End without BeginStruct")
	}
	w.tag(TagEnd)
	w.depth--
}
