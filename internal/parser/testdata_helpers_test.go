package parser_test

import (
	"bytes"
	"encoding/binary"

	"github.com/nolifestory/wz2nx/internal/wz"
)

// fixtureBuilder assembles a synthetic in-memory WZ archive byte by byte.
// All names/strings in these fixtures are encrypted under the "bms" zero
// key, since NewConverter is always called with forceRegion="bms" in these
// tests: the key oracle itself is exercised separately in internal/wz.
type fixtureBuilder struct {
	buf bytes.Buffer
}

func (f *fixtureBuilder) bytes() []byte { return f.buf.Bytes() }
func (f *fixtureBuilder) len() int      { return f.buf.Len() }

func (f *fixtureBuilder) u8(b byte) *fixtureBuilder {
	f.buf.WriteByte(b)
	return f
}

func (f *fixtureBuilder) raw(b []byte) *fixtureBuilder {
	f.buf.Write(b)
	return f
}

func (f *fixtureBuilder) u16(v uint16) *fixtureBuilder {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return f.raw(b[:])
}

func (f *fixtureBuilder) u32(v uint32) *fixtureBuilder {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return f.raw(b[:])
}

func (f *fixtureBuilder) i32(v int32) *fixtureBuilder {
	return f.u32(uint32(v))
}

// cint mirrors wz.Cursor.ReadCint's encoding: a single signed byte, or the
// sentinel -128 followed by a full int32.
func (f *fixtureBuilder) cint(v int32) *fixtureBuilder {
	if v >= -127 && v <= 127 {
		return f.u8(byte(int8(v)))
	}
	f.u8(0x80)
	return f.i32(v)
}

// encASCII returns an inline ASCII-encrypted string (as decoded by
// wz.DecodeEncryptedString / an inline wz.ReadPropertyString tag 0x00
// entry), encrypted under the zero ("bms") key stream.
func encASCII(plaintext string) []byte {
	n := len(plaintext)
	var buf bytes.Buffer
	if n >= 128 {
		buf.WriteByte(0x80)
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(n))
		buf.Write(lenBuf[:])
	} else {
		buf.WriteByte(byte(-int8(n)))
	}
	mask := byte(0xAA)
	for i := 0; i < n; i++ {
		buf.WriteByte(plaintext[i] ^ mask)
		mask++
	}
	return buf.Bytes()
}

func (f *fixtureBuilder) encName(plaintext string) *fixtureBuilder {
	return f.raw(encASCII(plaintext))
}

// inlineProp appends a property-string entry with the inline tag (0x00)
// followed by the encrypted bytes, matching wz.ReadPropertyString.
func (f *fixtureBuilder) inlineProp(plaintext string) *fixtureBuilder {
	return f.u8(0x00).raw(encASCII(plaintext))
}

func zeroRegionKey() *wz.Key {
	iv, _ := wz.IVForVersion("bms")
	return wz.NewKey(iv)
}
