package vault

import (
	"encoding/json"
	"fmt"
	"time"

	"lockbox/internal/cryptox"
)

// FormatVersion tags every persisted vault record.
const FormatVersion = "1.0"

// Algorithm and KDF names as stored inside records.
const (
	algorithmAESGCM = "AES-256-GCM"
	kdfPBKDF2       = "PBKDF2"
)

// EncryptionParams records how the key for a particular record was derived.
// They are stored per record so older records remain decryptable after the
// defaults change.
//
// Salt, like Nonce and Ciphertext on Record, marshals to base64 through the
// standard []byte JSON encoding.
type EncryptionParams struct {
	Algorithm  string `json:"algorithm"`
	KDF        string `json:"kdf"`
	Iterations int    `json:"iterations"`
	Hash       string `json:"hash"`
	Salt       []byte `json:"salt"`
}

// Record is the persisted vault format and the only thing ever written to a
// byte store or exchanged with a sync endpoint.
type Record struct {
	FormatVersion string           `json:"formatVersion"`
	Encryption    EncryptionParams `json:"encryption"`
	Nonce         []byte           `json:"nonce"`
	Ciphertext    []byte           `json:"ciphertext"`
	CreatedAt     time.Time        `json:"createdAt"`
	ModifiedAt    time.Time        `json:"modifiedAt"`
}

// Payload is the decrypted vault content. It exists only in memory, never on
// disk. Entries keep insertion order.
type Payload struct {
	Entries   []Entry   `json:"entries"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidateShape structurally checks a record before any cryptographic
// attempt, so "not a vault" can be told apart from "wrong password" at the
// UI boundary without weakening the merged decrypt error.
func ValidateShape(r *Record) error {
	if r == nil {
		return ErrInvalidRecordFormat
	}
	if r.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: unsupported format version %q", ErrInvalidRecordFormat, r.FormatVersion)
	}
	if r.Encryption.KDF == "" || r.Encryption.Hash == "" {
		return fmt.Errorf("%w: missing kdf parameters", ErrInvalidRecordFormat)
	}
	if r.Encryption.Iterations <= 0 {
		return fmt.Errorf("%w: invalid iteration count %d", ErrInvalidRecordFormat, r.Encryption.Iterations)
	}
	if len(r.Encryption.Salt) == 0 {
		return fmt.Errorf("%w: missing salt", ErrInvalidRecordFormat)
	}
	if len(r.Nonce) != cryptox.NonceLength {
		return fmt.Errorf("%w: invalid nonce length %d", ErrInvalidRecordFormat, len(r.Nonce))
	}
	if len(r.Ciphertext) == 0 {
		return fmt.Errorf("%w: missing ciphertext", ErrInvalidRecordFormat)
	}
	return nil
}

// ParseRecord decodes and structurally validates a serialized record.
func ParseRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecordFormat, err)
	}
	if err := ValidateShape(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Marshal serializes the record to its JSON wire format.
func (r *Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
