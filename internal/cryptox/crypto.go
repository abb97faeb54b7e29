// Package cryptox implements the vault's key derivation and authenticated
// encryption primitives: PBKDF2 password stretching and AES-256-GCM.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeyLength is the derived AES-256 key size in bytes.
	KeyLength = 32
	// SaltLength is the KDF salt size in bytes.
	SaltLength = 32
	// NonceLength is the AES-GCM nonce size in bytes.
	NonceLength = 12

	// DefaultIterations is the PBKDF2 iteration count used for newly created
	// vaults. Records always carry the count they were written with, so
	// raising this default never breaks existing vaults.
	DefaultIterations = 600000
	// MinIterations is the smallest count accepted for new records.
	MinIterations = 100000
)

// Names of the supported PBKDF2 hash functions as they appear in persisted
// records.
const (
	HashSHA256 = "SHA-256"
	HashSHA512 = "SHA-512"
)

var (
	// ErrAuthenticationFailed is returned when the GCM authentication tag does
	// not verify. A wrong password and tampered ciphertext are deliberately
	// indistinguishable here.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUnsupportedHash is returned for a hash name no KDF is registered for.
	ErrUnsupportedHash = errors.New("unsupported kdf hash")
)

func hashByName(name string) (func() hash.Hash, error) {
	switch name {
	case HashSHA256:
		return sha256.New, nil
	case HashSHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedHash, name)
	}
}

// DeriveKey stretches password into a 32-byte AES key with PBKDF2.
//
// The iteration count and hash name are always taken from the record being
// processed, never from ambient configuration, so historical records keep
// decrypting after defaults change.
func DeriveKey(password, salt []byte, iterations int, hashName string) ([]byte, error) {
	h, err := hashByName(hashName)
	if err != nil {
		return nil, err
	}
	return pbkdf2.Key(password, salt, iterations, KeyLength, h), nil
}

// Encrypt seals plaintext with AES-256-GCM under key. A fresh random 12-byte
// nonce is generated on every call; the returned ciphertext carries the
// authentication tag.
func Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	nonce, err = RandBytes(NonceLength)
	if err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, nil
}

// Decrypt verifies the authentication tag and opens ciphertext. It fails
// atomically: on a tag mismatch no partial plaintext is produced and
// ErrAuthenticationFailed is returned regardless of the cause.
func Decrypt(nonce, ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	return plaintext, nil
}

// RandBytes returns n bytes from the cryptographically secure random source.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
