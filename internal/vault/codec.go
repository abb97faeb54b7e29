package vault

import (
	"encoding/json"
	"fmt"
	"time"

	"lockbox/internal/cryptox"
)

// KDFParams selects the derivation settings used for newly created records.
// Existing records always keep the parameters they were written with.
type KDFParams struct {
	Iterations int
	Hash       string
}

// DefaultKDFParams returns the settings for new vaults.
func DefaultKDFParams() KDFParams {
	return KDFParams{Iterations: cryptox.DefaultIterations, Hash: cryptox.HashSHA256}
}

// Codec turns payloads into encrypted records and back. It holds no secret
// state; every call takes all parameters explicitly.
type Codec struct {
	params KDFParams
}

// NewCodec returns a codec with the default KDF parameters.
func NewCodec() *Codec {
	return NewCodecWithParams(DefaultKDFParams())
}

// NewCodecWithParams returns a codec that creates records with the given KDF
// parameters. Tests use this to lower the iteration count.
func NewCodecWithParams(p KDFParams) *Codec {
	if p.Iterations <= 0 {
		p.Iterations = cryptox.DefaultIterations
	}
	if p.Hash == "" {
		p.Hash = cryptox.HashSHA256
	}
	return &Codec{params: p}
}

// CreateRecord serializes payload and encrypts it under a key derived from
// password with a freshly generated salt and the codec's KDF parameters.
func (c *Codec) CreateRecord(password []byte, payload *Payload) (*Record, error) {
	salt, err := cryptox.RandBytes(cryptox.SaltLength)
	if err != nil {
		return nil, err
	}

	params := EncryptionParams{
		Algorithm:  algorithmAESGCM,
		KDF:        kdfPBKDF2,
		Iterations: c.params.Iterations,
		Hash:       c.params.Hash,
		Salt:       salt,
	}

	nonce, ciphertext, err := c.seal(password, params, payload)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Record{
		FormatVersion: FormatVersion,
		Encryption:    params,
		Nonce:         nonce,
		Ciphertext:    ciphertext,
		CreatedAt:     now,
		ModifiedAt:    now,
	}, nil
}

// UpdateRecord re-encrypts payload reusing the existing record's salt and KDF
// parameters, so the same password derives the same key without an extra
// derivation cost change. A fresh nonce is generated for the write; createdAt
// is preserved and modifiedAt refreshed.
func (c *Codec) UpdateRecord(password []byte, existing *Record, payload *Payload) (*Record, error) {
	if err := ValidateShape(existing); err != nil {
		return nil, err
	}

	nonce, ciphertext, err := c.seal(password, existing.Encryption, payload)
	if err != nil {
		return nil, err
	}

	return &Record{
		FormatVersion: FormatVersion,
		Encryption:    existing.Encryption,
		Nonce:         nonce,
		Ciphertext:    ciphertext,
		CreatedAt:     existing.CreatedAt,
		ModifiedAt:    time.Now().UTC(),
	}, nil
}

// OpenRecord derives the key from the record's stored KDF parameters,
// decrypts the ciphertext and parses the payload. Authentication and parse
// failures are merged into ErrInvalidCredentialsOrCorrupt.
func (c *Codec) OpenRecord(password []byte, record *Record) (*Payload, error) {
	if err := ValidateShape(record); err != nil {
		return nil, err
	}

	key, err := cryptox.DeriveKey(password, record.Encryption.Salt,
		record.Encryption.Iterations, record.Encryption.Hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecordFormat, err)
	}

	plaintext, err := cryptox.Decrypt(record.Nonce, record.Ciphertext, key)
	if err != nil {
		return nil, ErrInvalidCredentialsOrCorrupt
	}

	var payload Payload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, ErrInvalidCredentialsOrCorrupt
	}

	return &payload, nil
}

// seal derives a key for params and encrypts the serialized payload.
func (c *Codec) seal(password []byte, params EncryptionParams, payload *Payload) (nonce, ciphertext []byte, err error) {
	key, err := cryptox.DeriveKey(password, params.Salt, params.Iterations, params.Hash)
	if err != nil {
		return nil, nil, err
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}

	ciphertext, nonce, err = cryptox.Encrypt(plaintext, key)
	if err != nil {
		return nil, nil, err
	}

	return nonce, ciphertext, nil
}
