package vault

import "errors"

var (
	// ErrInvalidCredentialsOrCorrupt covers both a wrong master password and a
	// tampered or corrupted record. The two cases are merged on purpose so the
	// error cannot be used as an oracle to tell them apart.
	ErrInvalidCredentialsOrCorrupt = errors.New("invalid password or corrupted data")

	// ErrInvalidRecordFormat means structural validation failed before any
	// cryptographic work; no secret material is involved, so it is safe to
	// report specifically.
	ErrInvalidRecordFormat = errors.New("not a valid vault record")

	// session-state errors
	ErrVaultLocked        = errors.New("vault is locked")
	ErrVaultAlreadyExists = errors.New("vault already exists")

	// entry errors
	ErrEntryNotFound    = errors.New("entry not found")
	ErrEmptyTitle       = errors.New("entry title must not be empty")
	ErrInvalidEntryType = errors.New("invalid entry type")

	// ErrPersistenceFailure wraps byte-store read/write failures. It is
	// propagated to the caller, never retried here.
	ErrPersistenceFailure = errors.New("persistence failure")
)
