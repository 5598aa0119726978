package wz_test

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nolifestory/wz2nx/internal/wz"
)

func zeroKey(t *testing.T) *wz.Key {
	t.Helper()
	iv, ok := wz.IVForVersion("bms")
	require.True(t, ok)
	return wz.NewKey(iv)
}

// encodeASCII produces the on-wire bytes (length prefix + ciphertext) for an
// ASCII-encrypted string under the zero key, mirroring decodeASCII in
// reverse.
func encodeASCII(plaintext string) []byte {
	n := len(plaintext)
	var buf []byte
	if n >= 128 {
		buf = append(buf, 0x80)
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(n))
		buf = append(buf, lenBuf[:]...)
	} else {
		buf = append(buf, byte(-int8(n)))
	}
	mask := byte(0xAA)
	for i := 0; i < n; i++ {
		buf = append(buf, plaintext[i]^mask)
		mask++
	}
	return buf
}

// encodeUnicode produces the on-wire bytes for a UTF-16-encrypted string
// under the zero key, mirroring decodeUnicode in reverse. Input must be
// representable in the basic multilingual plane (no surrogate pairs) for
// this test helper's length bookkeeping to line up 1:1 with code units.
func encodeUnicode(plaintext string) []byte {
	units := utf16.Encode([]rune(plaintext))
	n := len(units)
	var buf []byte
	if n >= 127 {
		buf = append(buf, 0x7F)
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(n))
		buf = append(buf, lenBuf[:]...)
	} else {
		buf = append(buf, byte(n))
	}
	mask := uint16(0xAAAA)
	for _, u := range units {
		enc := u ^ mask
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], enc)
		buf = append(buf, b[:]...)
		mask++
	}
	return buf
}

func TestDecodeEncryptedString_ASCII(t *testing.T) {
	key := zeroKey(t)
	c := wz.NewCursor(encodeASCII("Property"))
	got, err := wz.DecodeEncryptedString(c, key)
	require.NoError(t, err)
	assert.Equal(t, "Property", string(got))
}

func TestDecodeEncryptedString_Unicode(t *testing.T) {
	key := zeroKey(t)
	c := wz.NewCursor(encodeUnicode("hello"))
	got, err := wz.DecodeEncryptedString(c, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestDecodeEncryptedString_Empty(t *testing.T) {
	key := zeroKey(t)
	c := wz.NewCursor([]byte{0})
	got, err := wz.DecodeEncryptedString(c, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDecodeEncryptedString_ExtendedASCIILength(t *testing.T) {
	key := zeroKey(t)
	plaintext := make([]byte, 200)
	for i := range plaintext {
		plaintext[i] = 'a' + byte(i%26)
	}
	c := wz.NewCursor(encodeASCII(string(plaintext)))
	got, err := wz.DecodeEncryptedString(c, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecodeEncryptedString_ExtendedUnicodeLength(t *testing.T) {
	key := zeroKey(t)
	runes := make([]rune, 150)
	for i := range runes {
		runes[i] = 'a' + rune(i%26)
	}
	plaintext := string(runes)
	c := wz.NewCursor(encodeUnicode(plaintext))
	got, err := wz.DecodeEncryptedString(c, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, string(got))
}

func TestReadPropertyString_Inline(t *testing.T) {
	key := zeroKey(t)
	data := append([]byte{0x00}, encodeASCII("x")...)
	c := wz.NewCursor(data)
	got, err := wz.ReadPropertyString(c, key, 0)
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

func TestReadPropertyString_OffsetRestoresCursor(t *testing.T) {
	key := zeroKey(t)

	imageBase := 10
	target := encodeASCII("pos")

	// The target string lives at imageBase (offset 0 relative to it); the
	// tag+offset entry referencing it lives further along the stream.
	full := make([]byte, imageBase)
	full = append(full, target...)

	readAt := len(full)
	full = append(full, 0x01, 0, 0, 0, 0) // tag 0x01, rel offset 0
	full = append(full, 0xEE)             // sentinel byte after the entry

	c := wz.NewCursor(full)
	require.NoError(t, c.Seek(readAt))

	got, err := wz.ReadPropertyString(c, key, imageBase)
	require.NoError(t, err)
	assert.Equal(t, "pos", string(got))

	// Cursor must resume right after the 5-byte tag+offset, not inside the
	// target string.
	assert.Equal(t, readAt+5, c.Tell())

	next, err := c.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0xEE), next)
}

func TestDecodeEncryptedString_LengthBoundaries(t *testing.T) {
	key := zeroKey(t)

	t.Run("ascii length 127 stays single byte", func(t *testing.T) {
		plaintext := make([]byte, 127)
		for i := range plaintext {
			plaintext[i] = 'a' + byte(i%26)
		}
		encoded := encodeASCII(string(plaintext))
		assert.Equal(t, byte(0x81), encoded[0]) // -127, not the -128 sentinel

		c := wz.NewCursor(encoded)
		got, err := wz.DecodeEncryptedString(c, key)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	})

	t.Run("unicode length 127 uses extended sentinel", func(t *testing.T) {
		runes := make([]rune, 127)
		for i := range runes {
			runes[i] = 'a' + rune(i%26)
		}
		plaintext := string(runes)
		encoded := encodeUnicode(plaintext)
		assert.Equal(t, byte(0x7F), encoded[0])

		c := wz.NewCursor(encoded)
		got, err := wz.DecodeEncryptedString(c, key)
		require.NoError(t, err)
		assert.Equal(t, plaintext, string(got))
	})
}

func TestReadPropertyString_UnknownTag(t *testing.T) {
	key := zeroKey(t)
	c := wz.NewCursor([]byte{0xFF})
	_, err := wz.ReadPropertyString(c, key, 0)
	assert.Error(t, err)
}
