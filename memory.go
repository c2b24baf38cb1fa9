package main

import (
	"encoding/binary"
	"math"
)

//
// The raw memory image addressed by the indirection operators.
// Offsets inside the teletext window are redirected to the 25x40
// cell frame rather than the backing byte slice; sub-offsets past
// the last cell read as zero and ignore writes, matching what the
// old 6845-based hardware did with the unused tail of the 1K frame
//

func newMemoryImage() *memoryImage {

	return &memoryImage{
		bytes:   make([]byte, memorySize),
		mode7Fb: mode7Base,
	}
}

func (m *memoryImage) validRange(offset int32, length int32) bool {

	return offset >= 0 && offset <= memorySize-length
}

func (m *memoryImage) checkRange(offset int32, length int32) {

	runtimeCheck(m.validRange(offset, length), EADDRESS)
}

func (m *memoryImage) inMode7Window(offset int32) bool {

	return offset >= m.mode7Fb && offset < m.mode7Fb+mode7WindowSize
}

func (m *memoryImage) readByte(offset int32) byte {

	if m.inMode7Window(offset) {
		offset -= m.mode7Fb
		if offset >= mode7Rows*mode7Cols {
			return 0
		}
		return m.mode7Frame[offset/mode7Cols][offset%mode7Cols]
	}

	m.checkRange(offset, 1)

	return m.bytes[offset]
}

func (m *memoryImage) writeByte(offset int32, val byte) {

	if m.inMode7Window(offset) {
		offset -= m.mode7Fb
		if offset >= mode7Rows*mode7Cols {
			return
		}
		m.mode7Frame[offset/mode7Cols][offset%mode7Cols] = val
		return
	}

	m.checkRange(offset, 1)

	m.bytes[offset] = val
}

//
// Words are 4 bytes, little-endian.  A word that overlaps the
// teletext window has to be assembled a byte at a time so each byte
// gets the cell redirection
//

func (m *memoryImage) readWord(offset int32) int32 {

	if m.inMode7Window(offset) || m.inMode7Window(offset+3) {
		var v uint32
		for n := int32(0); n < 4; n++ {
			v |= uint32(m.readByte(offset+n)) << (8 * n)
		}
		return int32(v)
	}

	m.checkRange(offset, 4)

	return int32(binary.LittleEndian.Uint32(m.bytes[offset:]))
}

func (m *memoryImage) writeWord(offset int32, val int32) {

	if m.inMode7Window(offset) || m.inMode7Window(offset+3) {
		for n := int32(0); n < 4; n++ {
			m.writeByte(offset+n, byte(uint32(val)>>(8*n)))
		}
		return
	}

	m.checkRange(offset, 4)

	binary.LittleEndian.PutUint32(m.bytes[offset:], uint32(val))
}

//
// Floats are 8 bytes of IEEE 754, little-endian
//

func (m *memoryImage) readFloat(offset int32) float64 {

	if m.inMode7Window(offset) || m.inMode7Window(offset+7) {
		var v uint64
		for n := int32(0); n < 8; n++ {
			v |= uint64(m.readByte(offset+n)) << (8 * n)
		}
		return math.Float64frombits(v)
	}

	m.checkRange(offset, 8)

	return math.Float64frombits(binary.LittleEndian.Uint64(m.bytes[offset:]))
}

func (m *memoryImage) writeFloat(offset int32, val float64) {

	bits := math.Float64bits(val)

	if m.inMode7Window(offset) || m.inMode7Window(offset+7) {
		for n := int32(0); n < 8; n++ {
			m.writeByte(offset+n, byte(bits>>(8*n)))
		}
		return
	}

	m.checkRange(offset, 8)

	binary.LittleEndian.PutUint64(m.bytes[offset:], bits)
}

//
// The '$' operator reads a carriage-return-terminated string.  If no
// CR turns up within the maximum string length the result is the
// null string, which is what programs poking around in uninitialised
// memory historically saw
//

func (m *memoryImage) readString(offset int32) []byte {

	m.checkRange(offset, 1)

	for n := int32(0); n < maxStringLen; n++ {
		if !m.validRange(offset+n, 1) {
			break
		}
		if m.readByte(offset+n) == '\r' {
			out := allocString(int(n))
			for i := int32(0); i < n; i++ {
				out[i] = m.readByte(offset + i)
			}
			return out
		}
	}

	return []byte{}
}

//
// Writes the string followed by the CR terminator
//

func (m *memoryImage) writeString(offset int32, val []byte) {

	m.checkRange(offset, int32(len(val))+1)

	for n := range val {
		m.writeByte(offset+int32(n), val[n])
	}

	m.writeByte(offset+int32(len(val)), '\r')
}
