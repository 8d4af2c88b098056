// Package wasm builds and serializes a WebAssembly binary module
// (spec.md §2, §7): the module object model, its LEB128/float
// encodings, and the per-function code builder codegen drives.
package wasm

import (
	"encoding/binary"
	"math"
)

// EncodeU32 encodes an unsigned integer as unsigned LEB128.
func EncodeU32(value uint64) []byte {
	if value == 0 {
		return []byte{0}
	}
	var result []byte
	for value > 0 {
		b := byte(value & 0x7F)
		value >>= 7
		if value > 0 {
			b |= 0x80
		}
		result = append(result, b)
	}
	return result
}

// EncodeS64 encodes a signed integer as signed LEB128.
func EncodeS64(value int64) []byte {
	var result []byte
	more := true
	for more {
		b := byte(value & 0x7F)
		value >>= 7 // arithmetic shift: sign-extends
		if (value == 0 && b&0x40 == 0) || (value == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		result = append(result, b)
	}
	return result
}

// EncodeU32Fixed5 encodes value as exactly 5 LEB128 bytes, padding with
// continuation bits as needed, so the field has the same size whatever
// the value. internal/codegen uses it for the length prefix of each
// string record in the Data section.
func EncodeU32Fixed5(value uint32) []byte {
	out := make([]byte, 5)
	for i := 0; i < 5; i++ {
		b := byte(value & 0x7F)
		value >>= 7
		if i < 4 {
			b |= 0x80
		}
		out[i] = b
	}
	return out
}

// EncodeF64 encodes a float64 as 8 little-endian bytes.
func EncodeF64(value float64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(value))
	return buf[:]
}

// EncodeF32 encodes a float32 as 4 little-endian bytes.
func EncodeF32(value float32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(value))
	return buf[:]
}

// EncodeString encodes a UTF-8 string with its LEB128 byte-length prefix.
func EncodeString(s string) []byte {
	out := EncodeU32(uint64(len(s)))
	return append(out, []byte(s)...)
}

// EncodeVector encodes a vector of already-serialized items with a
// LEB128 element-count prefix.
func EncodeVector(count int, items []byte) []byte {
	out := EncodeU32(uint64(count))
	return append(out, items...)
}

// encodeSection wraps contents with its section id and LEB128 byte
// length; the caller decides whether to call this at all, since an
// empty section must be omitted entirely, not emitted with length 0.
func encodeSection(id byte, contents []byte) []byte {
	out := []byte{id}
	out = append(out, EncodeU32(uint64(len(contents)))...)
	return append(out, contents...)
}
