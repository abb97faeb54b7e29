// Package shared provides small helpers used across the vault, currently
// secure memory wiping for secret material.
package shared

// WipeByteArray overwrites the contents of b with zeros. This is a
// best-effort way to remove passwords and derived keys from memory once they
// are no longer needed.
//
// A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
