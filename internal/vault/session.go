package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lockbox/internal/filex"
	"lockbox/internal/logging"
	"lockbox/internal/shared"
	"lockbox/internal/store"
)

// DefaultAutoLockTimeout is the inactivity window after which an unlocked
// session locks itself.
const DefaultAutoLockTimeout = 5 * time.Minute

// EventType names the notifications delivered to subscribers.
type EventType string

const (
	EventVaultUnlocked EventType = "vaultUnlocked"
	EventVaultLocked   EventType = "vaultLocked"
	EventEntryChanged  EventType = "entryChanged"
)

// ChangeKind qualifies an EventEntryChanged notification.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Event is delivered to subscribers on session transitions and entry
// mutations.
type Event struct {
	Type EventType

	// Auto is set on EventVaultLocked when the inactivity timer fired the
	// transition rather than an explicit Lock call.
	Auto bool

	// Change and EntryID are set on EventEntryChanged.
	Change  ChangeKind
	EntryID string
}

// Manager owns the single in-memory vault session: the locked/unlocked
// state, the plaintext entries and the master password while unlocked, and
// the inactivity auto-lock. All operations are serialized on one mutex, so
// two mutations can never interleave a read-modify-write of the entry list.
type Manager struct {
	store   store.Store
	codec   *Codec
	logger  logging.Logger
	timeout time.Duration

	mu               sync.Mutex
	unlocked         bool
	password         []byte
	record           *Record // cached persisted record, reused for salt and KDF params
	entries          []Entry
	payloadCreatedAt time.Time
	lastActivity     time.Time
	timer            *time.Timer
	subscribers      []func(Event)
}

// Option configures a Manager.
type Option func(*Manager)

// WithAutoLockTimeout overrides the inactivity window. Zero or negative
// disables auto-lock.
func WithAutoLockTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithLogger sets the manager's logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithCodec replaces the default codec, e.g. to change KDF parameters for
// newly created records.
func WithCodec(c *Codec) Option {
	return func(m *Manager) { m.codec = c }
}

// NewManager returns a locked session backed by s.
func NewManager(s store.Store, opts ...Option) *Manager {
	m := &Manager{
		store:   s,
		codec:   NewCodec(),
		logger:  logging.NewDiscardLogger(),
		timeout: DefaultAutoLockTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers fn for session and entry events. Callbacks run
// synchronously on the goroutine performing the transition and must not call
// back into the manager.
func (m *Manager) Subscribe(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

func (m *Manager) notify(ev Event) {
	for _, fn := range m.subscribers {
		fn(ev)
	}
}

// Unlocked reports whether the session currently holds decrypted entries.
func (m *Manager) Unlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked
}

// Initialized reports whether a persisted vault record exists.
func (m *Manager) Initialized(ctx context.Context) (bool, error) {
	if _, err := m.store.Load(ctx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return true, nil
}

// CreateVault initializes a new empty vault protected by password, persists
// it and enters Unlocked. It refuses to overwrite an existing record unless
// force is set (destructive re-initialization).
func (m *Manager) CreateVault(ctx context.Context, password []byte, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !force {
		if _, err := m.store.Load(ctx); err == nil {
			return ErrVaultAlreadyExists
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
	}

	payload := &Payload{Entries: []Entry{}, CreatedAt: time.Now().UTC()}

	record, err := m.codec.CreateRecord(password, payload)
	if err != nil {
		return err
	}
	if err := m.persist(ctx, record); err != nil {
		return err
	}

	m.record = record
	m.enterUnlocked(password, payload)
	m.logger.Info(ctx, "vault created")
	return nil
}

// Unlock loads the persisted record, decrypts it with password and enters
// Unlocked. On any failure the session stays Locked and no entries
// materialize.
func (m *Manager) Unlock(ctx context.Context, password []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unlocked {
		return nil
	}

	data, err := m.store.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: no vault record", ErrInvalidRecordFormat)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	record, err := ParseRecord(data)
	if err != nil {
		return err
	}

	payload, err := m.codec.OpenRecord(password, record)
	if err != nil {
		return err
	}

	m.record = record
	m.enterUnlocked(password, payload)
	m.logger.Info(ctx, "vault unlocked", "entries", len(m.entries))
	return nil
}

// enterUnlocked materializes the session state. Called with the mutex held.
func (m *Manager) enterUnlocked(password []byte, payload *Payload) {
	pw := make([]byte, len(password))
	copy(pw, password)
	m.password = pw

	m.entries = payload.Entries
	if m.entries == nil {
		m.entries = []Entry{}
	}
	m.payloadCreatedAt = payload.CreatedAt
	m.unlocked = true
	m.lastActivity = time.Now()
	m.armTimer()

	m.notify(Event{Type: EventVaultUnlocked})
}

// Lock discards the in-memory entries and the master password and cancels
// the inactivity timer. Locking a locked session is a no-op.
func (m *Manager) Lock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lock(false)
}

// lock is the shared transition. Called with the mutex held.
func (m *Manager) lock(auto bool) {
	if !m.unlocked {
		return
	}

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	shared.WipeByteArray(m.password)
	m.password = nil
	m.entries = nil
	m.unlocked = false

	m.notify(Event{Type: EventVaultLocked, Auto: auto})
}

// Touch records a user-activity signal, pushing the auto-lock deadline out.
// O(1): only a timestamp is written, the timer itself is not reset here.
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unlocked {
		m.lastActivity = time.Now()
	}
}

func (m *Manager) armTimer() {
	if m.timeout <= 0 {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.timeout, m.onAutoLockTimer)
}

// onAutoLockTimer runs on the timer goroutine. Taking the session mutex here
// is what defers an auto-lock behind any in-flight operation: the lock can
// only take effect between operations, never in the middle of one.
func (m *Manager) onAutoLockTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.unlocked {
		return
	}

	idle := time.Since(m.lastActivity)
	if idle < m.timeout {
		// activity arrived after the timer was armed; sleep out the remainder
		m.timer = time.AfterFunc(m.timeout-idle, m.onAutoLockTimer)
		return
	}

	m.logger.Info(context.Background(), "auto-locking vault", "idle", idle.String())
	m.lock(true)
}

// AddEntry assigns a fresh id and timestamps to the draft, appends it and
// synchronously re-encrypts and persists the whole entry list. The in-memory
// list is only updated after the record has been durably written.
func (m *Manager) AddEntry(ctx context.Context, draft Draft) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.unlocked {
		return Entry{}, ErrVaultLocked
	}
	m.lastActivity = time.Now()

	if err := draft.validate(); err != nil {
		return Entry{}, err
	}

	now := time.Now().UTC()
	entry := Entry{
		ID:          uuid.NewString(),
		Type:        draft.Type,
		Title:       strings.TrimSpace(draft.Title),
		Favorite:    draft.Favorite,
		URL:         draft.URL,
		Username:    draft.Username,
		Password:    draft.Password,
		CardHolder:  draft.CardHolder,
		CardNumber:  draft.CardNumber,
		CardExpiry:  draft.CardExpiry,
		CardCVV:     draft.CardCVV,
		Notes:       draft.Notes,
		NoteContent: draft.NoteContent,
		CreatedAt:   now,
		ModifiedAt:  now,
	}

	next := make([]Entry, len(m.entries), len(m.entries)+1)
	copy(next, m.entries)
	next = append(next, entry)

	if err := m.persistEntries(ctx, next); err != nil {
		return Entry{}, err
	}
	m.entries = next

	m.notify(Event{Type: EventEntryChanged, Change: ChangeAdded, EntryID: entry.ID})
	return entry, nil
}

// UpdateEntry merges patch into the entry with the given id, refreshes its
// modifiedAt and re-persists the full record.
func (m *Manager) UpdateEntry(ctx context.Context, id string, patch Patch) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.unlocked {
		return Entry{}, ErrVaultLocked
	}
	m.lastActivity = time.Now()

	idx := m.findIndex(id)
	if idx < 0 {
		return Entry{}, ErrEntryNotFound
	}

	next := make([]Entry, len(m.entries))
	copy(next, m.entries)

	updated := next[idx]
	if err := updated.apply(patch); err != nil {
		return Entry{}, err
	}
	updated.ModifiedAt = time.Now().UTC()
	next[idx] = updated

	if err := m.persistEntries(ctx, next); err != nil {
		return Entry{}, err
	}
	m.entries = next

	m.notify(Event{Type: EventEntryChanged, Change: ChangeUpdated, EntryID: id})
	return updated, nil
}

// DeleteEntry removes the entry with the given id and re-persists the full
// record.
func (m *Manager) DeleteEntry(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.unlocked {
		return ErrVaultLocked
	}
	m.lastActivity = time.Now()

	idx := m.findIndex(id)
	if idx < 0 {
		return ErrEntryNotFound
	}

	next := make([]Entry, 0, len(m.entries)-1)
	next = append(next, m.entries[:idx]...)
	next = append(next, m.entries[idx+1:]...)

	if err := m.persistEntries(ctx, next); err != nil {
		return err
	}
	m.entries = next

	m.notify(Event{Type: EventEntryChanged, Change: ChangeDeleted, EntryID: id})
	return nil
}

// GetEntry returns the entry with the given id. Reads never touch the
// persisted record.
func (m *Manager) GetEntry(id string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.unlocked {
		return Entry{}, ErrVaultLocked
	}
	m.lastActivity = time.Now()

	idx := m.findIndex(id)
	if idx < 0 {
		return Entry{}, ErrEntryNotFound
	}
	return m.entries[idx], nil
}

// List returns the entries of the given category, most recently modified
// first.
func (m *Manager) List(category Category) ([]Entry, error) {
	return m.Search(category, "")
}

// Search narrows by category first, then filters with a case-insensitive
// substring match over the entry's searchable fields. The result is ordered
// most recently modified first.
func (m *Manager) Search(category Category, query string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.unlocked {
		return nil, ErrVaultLocked
	}
	m.lastActivity = time.Now()

	result := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.inCategory(category) && e.matches(query) {
			result = append(result, e)
		}
	}
	sortForDisplay(result)
	return result, nil
}

// ChangeMasterPassword re-encrypts the current payload under a key derived
// from newPassword with a fresh salt, persists the result and swaps the
// in-memory password. Requires Unlocked.
func (m *Manager) ChangeMasterPassword(ctx context.Context, newPassword []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.unlocked {
		return ErrVaultLocked
	}
	m.lastActivity = time.Now()

	payload := &Payload{Entries: m.entries, CreatedAt: m.payloadCreatedAt}

	record, err := m.codec.CreateRecord(newPassword, payload)
	if err != nil {
		return err
	}
	record.CreatedAt = m.record.CreatedAt

	if err := m.persist(ctx, record); err != nil {
		return err
	}
	m.record = record

	shared.WipeByteArray(m.password)
	pw := make([]byte, len(newPassword))
	copy(pw, newPassword)
	m.password = pw

	m.logger.Info(ctx, "master password changed")
	return nil
}

// ExportRecord writes the persisted record verbatim to path.
func (m *Manager) ExportRecord(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.store.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: no vault record", ErrInvalidRecordFormat)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	if err := filex.WriteAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// ImportRecord reads a record file, validates its shape, verifies that
// password decrypts it, and only then commits it as the active record and
// enters Unlocked. A failed import leaves the existing record and session
// untouched.
func (m *Manager) ImportRecord(ctx context.Context, path string, password []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	record, err := ParseRecord(data)
	if err != nil {
		return err
	}

	payload, err := m.codec.OpenRecord(password, record)
	if err != nil {
		return err
	}

	if err := m.persist(ctx, record); err != nil {
		return err
	}

	m.lock(false)
	m.record = record
	m.enterUnlocked(password, payload)
	m.logger.Info(ctx, "vault record imported", "entries", len(m.entries))
	return nil
}

// persistEntries re-encrypts the full entry list into a fresh record and
// writes it through the store. Called with the mutex held; the caller only
// commits the in-memory change after this succeeds.
func (m *Manager) persistEntries(ctx context.Context, entries []Entry) error {
	payload := &Payload{Entries: entries, CreatedAt: m.payloadCreatedAt}

	record, err := m.codec.UpdateRecord(m.password, m.record, payload)
	if err != nil {
		return err
	}
	if err := m.persist(ctx, record); err != nil {
		return err
	}

	m.record = record
	return nil
}

func (m *Manager) persist(ctx context.Context, record *Record) error {
	data, err := record.Marshal()
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, data); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// findIndex returns the position of id in the entry list, or -1. Called with
// the mutex held.
func (m *Manager) findIndex(id string) int {
	for i := range m.entries {
		if m.entries[i].ID == id {
			return i
		}
	}
	return -1
}
