package wz

// Magic is the magic number identifying valid WZ files ("PKG1").
const Magic uint32 = 0x31474B50

// IVForVersion returns the initialization vector (IV) bytes for known game
// versions/regions. Used only when the caller forces a region with --region
// instead of letting the key oracle pick one.
func IVForVersion(region string) ([4]byte, bool) {
	switch region {
	case "gms":
		return [4]byte{0x4D, 0x23, 0xC7, 0x2B}, true
	case "kms":
		return [4]byte{0xB9, 0x7D, 0x63, 0xE9}, true
	case "sea":
		return [4]byte{0x2E, 0x23, 0x12, 0x61}, true
	case "tms":
		return [4]byte{0x2E, 0x12, 0x61, 0x9A}, true
	case "bms", "classic":
		return [4]byte{0, 0, 0, 0}, true
	default:
		return [4]byte{}, false
	}
}
