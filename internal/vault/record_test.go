package vault

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lockbox/internal/cryptox"
)

func validRecord(t *testing.T) *Record {
	t.Helper()
	record, err := testCodec().CreateRecord([]byte("pw"), testPayload())
	require.NoError(t, err)
	return record
}

func TestValidateShape(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Record)
		ok     bool
	}{
		{"valid", func(r *Record) {}, true},
		{"nil salt", func(r *Record) { r.Encryption.Salt = nil }, false},
		{"unsupported version", func(r *Record) { r.FormatVersion = "0.9" }, false},
		{"empty version", func(r *Record) { r.FormatVersion = "" }, false},
		{"missing kdf", func(r *Record) { r.Encryption.KDF = "" }, false},
		{"missing hash", func(r *Record) { r.Encryption.Hash = "" }, false},
		{"zero iterations", func(r *Record) { r.Encryption.Iterations = 0 }, false},
		{"negative iterations", func(r *Record) { r.Encryption.Iterations = -1 }, false},
		{"short nonce", func(r *Record) { r.Nonce = r.Nonce[:4] }, false},
		{"empty ciphertext", func(r *Record) { r.Ciphertext = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validRecord(t)
			tt.mutate(record)

			err := ValidateShape(record)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRecordFormat)
			}
		})
	}
}

func TestValidateShape_NilRecord(t *testing.T) {
	assert.ErrorIs(t, ValidateShape(nil), ErrInvalidRecordFormat)
}

func TestParseRecord_RoundTrip(t *testing.T) {
	record := validRecord(t)

	data, err := record.Marshal()
	require.NoError(t, err)

	parsed, err := ParseRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, parsed)
}

func TestParseRecord_NotJSON(t *testing.T) {
	_, err := ParseRecord([]byte("definitely not a vault"))
	assert.ErrorIs(t, err, ErrInvalidRecordFormat)
}

func TestParseRecord_MissingFields(t *testing.T) {
	_, err := ParseRecord([]byte(`{"formatVersion":"1.0"}`))
	assert.ErrorIs(t, err, ErrInvalidRecordFormat)
}

// The wire format is consumed by import/export and remote sync peers, so the
// JSON field names and base64 byte encoding are part of the contract.
func TestRecord_WireFormat(t *testing.T) {
	record := validRecord(t)

	data, err := record.Marshal()
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &wire))

	for _, field := range []string{"formatVersion", "encryption", "nonce", "ciphertext", "createdAt", "modifiedAt"} {
		assert.Contains(t, wire, field)
	}

	var enc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(wire["encryption"], &enc))
	for _, field := range []string{"algorithm", "kdf", "iterations", "hash", "salt"} {
		assert.Contains(t, enc, field)
	}

	var salt string
	require.NoError(t, json.Unmarshal(enc["salt"], &salt))
	decoded, err := base64.StdEncoding.DecodeString(salt)
	require.NoError(t, err)
	assert.Len(t, decoded, cryptox.SaltLength)
}
