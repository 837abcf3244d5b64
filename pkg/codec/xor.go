package codec

// DefaultKey is the obfuscation key shared by every builder and stub.
// It is part of the on-disk format in the same way the magic is:
// containers produced with one key are unreadable to binaries carrying
// another, so changing it breaks every deployed container.
//
// Note: the repeating-key XOR transform is obfuscation, not encryption.
// Known plaintext recovers the key in one pass. The format is frozen on
// it for compatibility and it must not be upgraded in place.
const DefaultKey = "MySecretCADKey2024!@#$"

// Apply applies the repeating-key XOR transform to buf in place and
// returns buf for convenience. The transform is an involution: applying
// it twice with the same key restores the original bytes, so the same
// call serves both the builder and the stub.
func Apply(buf []byte, key []byte) []byte {
	if len(key) == 0 {
		return buf
	}
	for i := range buf {
		buf[i] ^= key[i%len(key)]
	}
	return buf
}
