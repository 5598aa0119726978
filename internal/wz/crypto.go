package wz

import (
	"crypto/aes"
	"fmt"
)

// KeyBatchSize is the size in bytes of each key-stream expansion batch.
// Keys are generated lazily in batches to avoid allocating the full
// 128 KiB stream upfront for keys the oracle rejects.
const KeyBatchSize = 4096

// KeystreamSize is the size, in bytes, of one full candidate key stream:
// three fixed 64K-entry (128 KiB) XOR tables, derived here from an AES
// keystream generator rather than embedded as opaque binary constants.
const KeystreamSize = 65536 * 2

// UserKey is the 128-byte AES constant used by MapleStory to derive the
// 32-byte AES key that generates every region's key stream.
//
// Reference: MapleLib MapleCryptoConstants.MAPLESTORY_USERKEY_DEFAULT
var UserKey = [128]byte{
	0x13, 0x00, 0x00, 0x00, 0x52, 0x00, 0x00, 0x00, 0x2A, 0x00, 0x00, 0x00, 0x5B, 0x00, 0x00, 0x00,
	0x08, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x60, 0x00, 0x00, 0x00,
	0x06, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x43, 0x00, 0x00, 0x00, 0x0F, 0x00, 0x00, 0x00,
	0xB4, 0x00, 0x00, 0x00, 0x4B, 0x00, 0x00, 0x00, 0x35, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00,
	0x1B, 0x00, 0x00, 0x00, 0x0A, 0x00, 0x00, 0x00, 0x5F, 0x00, 0x00, 0x00, 0x09, 0x00, 0x00, 0x00,
	0x0F, 0x00, 0x00, 0x00, 0x50, 0x00, 0x00, 0x00, 0x0C, 0x00, 0x00, 0x00, 0x1B, 0x00, 0x00, 0x00,
	0x33, 0x00, 0x00, 0x00, 0x55, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x09, 0x00, 0x00, 0x00,
	0x52, 0x00, 0x00, 0x00, 0xDE, 0x00, 0x00, 0x00, 0xC7, 0x00, 0x00, 0x00, 0x1E, 0x00, 0x00, 0x00,
}

// Key generates and manages one region's WZ key stream.
//
// Key generation process:
//  1. Trim the 128-byte UserKey to create a 32-byte AES key (see NewKey).
//  2. Create a 16-byte initial block by repeating the 4-byte IV.
//  3. Encrypt the initial block with AES-256 ECB to get the first 16
//     bytes of key stream.
//  4. Use the previous 16 bytes as input to generate the next 16 bytes.
//  5. Repeat until the desired key length is reached.
//
// Special case: an all-zero IV produces an all-zero key stream, used for
// the BMS/classic candidate.
//
// Reference: MapleLib WzMutableKey
type Key struct {
	iv      [4]byte
	aesKey  [32]byte
	keyData []byte
}

// NewKey creates a new WZ key generator from a 4-byte IV.
func NewKey(iv [4]byte) *Key {
	var aesKey [32]byte
	for i := 0; i < 128; i += 16 {
		aesKey[i/4] = UserKey[i]
	}
	return &Key{iv: iv, aesKey: aesKey}
}

// ByteAt returns the key-stream byte at index, expanding the stream if
// necessary.
func (k *Key) ByteAt(index int) byte {
	k.expandTo(index + 1)
	return k.keyData[index]
}

// Word16At interprets the key stream as a table of little-endian uint16
// values and returns the i-th entry.
func (k *Key) Word16At(i int) uint16 {
	k.expandTo(2*i + 2)
	return uint16(k.keyData[2*i]) | uint16(k.keyData[2*i+1])<<8
}

func (k *Key) expandTo(size int) {
	if len(k.keyData) >= size {
		return
	}

	if k.iv == [4]byte{0, 0, 0, 0} {
		k.keyData = make([]byte, size)
		return
	}

	newSize := ((size + KeyBatchSize - 1) / KeyBatchSize) * KeyBatchSize
	newData := make([]byte, newSize)
	startIndex := copy(newData, k.keyData)

	block, err := aes.NewCipher(k.aesKey[:])
	if err != nil {
		panic(fmt.Sprintf("wz: failed to create AES cipher: %v", err))
	}

	input := make([]byte, 16)
	output := make([]byte, 16)

	for i := startIndex; i < newSize; i += 16 {
		if i == 0 {
			for j := 0; j < 16; j++ {
				input[j] = k.iv[j%4]
			}
		} else {
			copy(input, newData[i-16:i])
		}
		block.Encrypt(output, input)
		copy(newData[i:], output)
	}

	k.keyData = newData
}

// KeySet holds the three region candidate key streams the oracle trials
// against the archive's first encrypted string.
type KeySet struct {
	candidates [3]*Key
	active     *Key
}

// NewKeySet builds the three fixed candidate key streams: GMS, KMS, and the
// all-zero BMS/classic stream.
func NewKeySet() *KeySet {
	gms, _ := IVForVersion("gms")
	kms, _ := IVForVersion("kms")
	bms, _ := IVForVersion("bms")
	return &KeySet{
		candidates: [3]*Key{NewKey(gms), NewKey(kms), NewKey(bms)},
	}
}

// Active returns the key selected by the most recent call to Select, or
// nil if none has been selected yet.
func (ks *KeySet) Active() *Key {
	return ks.active
}

// ForceRegion bypasses the oracle and activates the key for a named region,
// honoring the CLI's --region override.
func (ks *KeySet) ForceRegion(region string) error {
	iv, ok := IVForVersion(region)
	if !ok {
		return fmt.Errorf("wz: unknown region %q", region)
	}
	ks.active = NewKey(iv)
	return nil
}

// Select runs the key oracle: it decrypts encrypted ASCII bytes with each
// candidate key stream and activates whichever candidate makes the result
// printable ASCII (0x20-0x7F). If more than one candidate is valid, the
// last one found wins. If none is valid the caller must treat it as a
// fatal locale-detection failure.
func (ks *KeySet) Select(encrypted []byte) error {
	var found *Key
	for _, cand := range ks.candidates {
		if candidateDecryptsToASCII(cand, encrypted) {
			found = cand
		}
	}
	if found == nil {
		return fmt.Errorf("wz: failed to identify locale: no candidate key decodes to printable ASCII")
	}
	ks.active = found
	return nil
}

func candidateDecryptsToASCII(k *Key, encrypted []byte) bool {
	mask := byte(0xAA)
	for i, b := range encrypted {
		c := b ^ k.ByteAt(i) ^ mask
		if c < 0x20 || c >= 0x80 {
			return false
		}
		mask++
	}
	return true
}
