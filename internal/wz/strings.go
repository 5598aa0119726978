package wz

import (
	"fmt"
	"unicode/utf16"
)

// DecodeEncryptedString reads and decrypts a WZ encrypted string at the
// cursor's current position, returning its UTF-8 bytes. It does not intern
// the result; callers own interning so the decoder stays a pure transform.
func DecodeEncryptedString(c *Cursor, key *Key) ([]byte, error) {
	lead, err := c.ReadI8()
	if err != nil {
		return nil, err
	}

	switch {
	case lead > 0:
		n := int(lead)
		if lead == 127 {
			v, err := c.ReadI32()
			if err != nil {
				return nil, err
			}
			n = int(v)
		}
		return decodeUnicode(c, key, n)

	case lead < 0:
		n := int(-lead)
		if lead == -128 {
			v, err := c.ReadI32()
			if err != nil {
				return nil, err
			}
			n = int(v)
		}
		return decodeASCII(c, key, n)

	default:
		return nil, nil
	}
}

// decodeUnicode decrypts n UTF-16 code units and transcodes them to UTF-8.
// Each code unit is XORed with the active key stream's i-th 16-bit word and
// a mask that starts at 0xAAAA and increments by one per unit.
func decodeUnicode(c *Cursor, key *Key, n int) ([]byte, error) {
	raw, err := c.ReadBytes(n * 2)
	if err != nil {
		return nil, err
	}

	units := make([]uint16, n)
	mask := uint16(0xAAAA)
	for i := 0; i < n; i++ {
		enc := uint16(raw[i*2]) | uint16(raw[i*2+1])<<8
		units[i] = enc ^ key.Word16At(i) ^ mask
		mask++
	}

	return []byte(string(utf16.Decode(units))), nil
}

// decodeASCII decrypts n ASCII bytes. Each byte is XORed with the active
// key stream's i-th byte and a mask that starts at 0xAA and increments by
// one per byte.
func decodeASCII(c *Cursor, key *Key, n int) ([]byte, error) {
	raw, err := c.ReadBytes(n)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	mask := byte(0xAA)
	for i, b := range raw {
		out[i] = b ^ key.ByteAt(i) ^ mask
		mask++
	}
	return out, nil
}

// ReadPropertyString reads a "property string": either an inline encrypted
// string, or a 4-byte offset (relative to imageBase, never to the
// archive's file_start) to an encrypted string stored elsewhere in the
// image, restoring the cursor position afterward.
func ReadPropertyString(c *Cursor, key *Key, imageBase int) ([]byte, error) {
	tag, err := c.ReadU8()
	if err != nil {
		return nil, err
	}

	switch tag {
	case 0x00, 0x73:
		return DecodeEncryptedString(c, key)

	case 0x01, 0x1B:
		rel, err := c.ReadI32()
		if err != nil {
			return nil, err
		}
		resume := c.Tell()
		if err := c.Seek(imageBase + int(rel)); err != nil {
			return nil, err
		}
		s, err := DecodeEncryptedString(c, key)
		if err != nil {
			return nil, err
		}
		if err := c.Seek(resume); err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("wz: unknown property string tag 0x%02X", tag)
	}
}
