// Package vault implements the encrypted password vault: the persisted
// record format, the codec that encrypts and decrypts it, and the session
// manager that owns the plaintext entries while the vault is unlocked.
package vault

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// EntryType classifies an entry kind. The set is closed; it determines which
// type-specific fields are meaningful.
type EntryType string

const (
	EntryTypeLogin EntryType = "login"
	EntryTypeCard  EntryType = "card"
	EntryTypeNote  EntryType = "note"
)

// Valid reports whether t belongs to the closed variant set.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeLogin, EntryTypeCard, EntryTypeNote:
		return true
	}
	return false
}

// Category selects a listing view.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryFavorites Category = "favorites"
	CategoryLogin     Category = "login"
	CategoryCard      Category = "card"
	CategoryNote      Category = "note"
)

// Entry is a single structured secret. Type-specific fields are optional
// strings and only meaningful for the matching Type.
type Entry struct {
	ID       string    `json:"id"`
	Type     EntryType `json:"type"`
	Title    string    `json:"title"`
	Favorite bool      `json:"favorite"`

	// login fields
	URL      string `json:"url,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// card fields
	CardHolder string `json:"cardHolder,omitempty"`
	CardNumber string `json:"cardNumber,omitempty"`
	CardExpiry string `json:"cardExpiry,omitempty"`
	CardCVV    string `json:"cardCvv,omitempty"`

	// shared by login and card
	Notes string `json:"notes,omitempty"`

	// note field
	NoteContent string `json:"noteContent,omitempty"`

	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// inCategory reports whether the entry belongs to the given listing view.
// An empty category behaves like CategoryAll.
func (e Entry) inCategory(c Category) bool {
	switch c {
	case CategoryAll, "":
		return true
	case CategoryFavorites:
		return e.Favorite
	case CategoryLogin:
		return e.Type == EntryTypeLogin
	case CategoryCard:
		return e.Type == EntryTypeCard
	case CategoryNote:
		return e.Type == EntryTypeNote
	}
	return false
}

// matches reports whether any searchable field contains query,
// case-insensitively. An empty query matches every entry.
func (e Entry) matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{e.Title, e.Username, e.URL, e.Notes, e.CardHolder, e.NoteContent} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Draft carries the caller-supplied fields for a new entry. The manager
// assigns the id and timestamps.
type Draft struct {
	Type     EntryType
	Title    string
	Favorite bool

	URL      string
	Username string
	Password string

	CardHolder string
	CardNumber string
	CardExpiry string
	CardCVV    string

	Notes       string
	NoteContent string
}

func (d Draft) validate() error {
	if !d.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEntryType, d.Type)
	}
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Patch holds optional replacements for entry fields. A nil field keeps the
// current value.
type Patch struct {
	Title    *string
	Favorite *bool

	URL      *string
	Username *string
	Password *string

	CardHolder *string
	CardNumber *string
	CardExpiry *string
	CardCVV    *string

	Notes       *string
	NoteContent *string
}

// apply merges p into e. The entry's id, type and timestamps are never
// patched; the caller refreshes ModifiedAt.
func (e *Entry) apply(p Patch) error {
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return ErrEmptyTitle
		}
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Favorite != nil {
		e.Favorite = *p.Favorite
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&e.URL, p.URL)
	set(&e.Username, p.Username)
	set(&e.Password, p.Password)
	set(&e.CardHolder, p.CardHolder)
	set(&e.CardNumber, p.CardNumber)
	set(&e.CardExpiry, p.CardExpiry)
	set(&e.CardCVV, p.CardCVV)
	set(&e.Notes, p.Notes)
	set(&e.NoteContent, p.NoteContent)

	return nil
}

// sortForDisplay orders entries most recently modified first. Storage order
// stays insertion order; this is a presentation rule only.
func sortForDisplay(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModifiedAt.After(entries[j].ModifiedAt)
	})
}
