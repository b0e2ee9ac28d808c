package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/assetbot/internal/logging"
	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/aretw0/assetbot/pkg/ports"
)

// ErrEmptySessionKey is returned for operations on the empty key.
var ErrEmptySessionKey = errors.New("session key is empty")

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore // optional

	mu     sync.Mutex            // guards locks and states
	locks  map[string]*lockEntry // active per-key locks
	states map[string]*domain.ConversationState

	locker  ports.DistributedLocker // optional
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithStore enables write-through persistence and rehydration of unknown keys.
func WithStore(store ports.StateStore) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock replaces time.Now for the Created and Updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager. Without WithStore, sessions live only in memory.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:   make(map[string]*lockEntry),
		states:  make(map[string]*domain.ConversationState),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// withKeyLock runs fn holding the in-process lock for key.
func (m *Manager) withKeyLock(key string, fn func() error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()
	return fn()
}

// GetOrCreate returns the live state for key, creating it on first contact.
// Repeated calls with the same key return the same pointer. A key unknown to this
// process is first looked up in the store.
func (m *Manager) GetOrCreate(ctx context.Context, key, identity string) (*domain.ConversationState, error) {
	if key == "" {
		return nil, ErrEmptySessionKey
	}
	var state *domain.ConversationState
	err := m.withKeyLock(key, func() error {
		var err error
		state, err = m.resident(ctx, key, identity)
		return err
	})
	return state, err
}

// resident returns the in-memory state for key. Caller holds the key lock.
func (m *Manager) resident(ctx context.Context, key, identity string) (*domain.ConversationState, error) {
	m.mu.Lock()
	state, ok := m.states[key]
	m.mu.Unlock()
	if ok {
		if state.Identity == "" {
			state.Identity = identity
		}
		return state, nil
	}

	state, err := m.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = domain.NewConversationState(key, identity)
		state.Created = m.now()
		state.Updated = state.Created
	}

	m.mu.Lock()
	m.states[key] = state
	m.mu.Unlock()
	return state, nil
}

// load reads key from the store. A missing session yields (nil, nil).
func (m *Manager) load(ctx context.Context, key string) (*domain.ConversationState, error) {
	if m.store == nil {
		return nil, nil
	}
	state, err := m.store.Load(ctx, key)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", key, err)
	}
	return state, nil
}

// WithSession runs fn on the state for key while no other turn for that key runs,
// here or (with a locker) on any replica. The state is saved to the store after fn
// succeeds; if fn fails nothing is saved and its error is returned.
func (m *Manager) WithSession(ctx context.Context, key, identity string, fn func(context.Context, *domain.ConversationState) error) error {
	if key == "" {
		return ErrEmptySessionKey
	}
	return m.withKeyLock(key, func() error {
		if m.locker != nil {
			unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
			if err != nil {
				return fmt.Errorf("failed to acquire distributed lock: %w", err)
			}
			defer func() {
				if err := unlock(context.WithoutCancel(ctx)); err != nil {
					m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
						"session_key", key,
						"err", err,
					)
				}
			}()
		}

		state, err := m.resident(ctx, key, identity)
		if err != nil {
			return err
		}
		if m.locker != nil {
			// Another replica may have advanced the session since we last saw it.
			if err := m.refresh(ctx, key, state); err != nil {
				return err
			}
		}

		if err := fn(ctx, state); err != nil {
			return err
		}

		state.Updated = m.now()
		if state.Created.IsZero() {
			state.Created = state.Updated
		}
		if m.store == nil {
			return nil
		}
		if err := m.store.Save(ctx, key, state); err != nil {
			return fmt.Errorf("failed to save session %s: %w", key, err)
		}
		return nil
	})
}

// refresh overwrites state in place with the stored copy, keeping the pointer stable.
// It runs under the distributed lock, so the store holds the last committed turn
// regardless of which replica wrote it or what its clock said.
func (m *Manager) refresh(ctx context.Context, key string, state *domain.ConversationState) error {
	stored, err := m.load(ctx, key)
	if err != nil || stored == nil {
		return err
	}
	*state = *stored
	return nil
}

// Snapshot returns a deep copy of the state for key, from memory or the store.
// It returns domain.ErrSessionNotFound for unknown keys.
func (m *Manager) Snapshot(ctx context.Context, key string) (*domain.ConversationState, error) {
	if key == "" {
		return nil, ErrEmptySessionKey
	}
	var snap *domain.ConversationState
	err := m.withKeyLock(key, func() error {
		m.mu.Lock()
		state, ok := m.states[key]
		m.mu.Unlock()
		if ok {
			snap = state.Clone()
			return nil
		}
		stored, err := m.load(ctx, key)
		if err != nil {
			return err
		}
		if stored == nil {
			return domain.ErrSessionNotFound
		}
		snap = stored
		return nil
	})
	return snap, err
}

// Delete forgets the session here and in the store.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptySessionKey
	}
	return m.withKeyLock(key, func() error {
		m.mu.Lock()
		delete(m.states, key)
		m.mu.Unlock()
		if m.store == nil {
			return nil
		}
		return m.store.Delete(ctx, key)
	})
}

// List returns the keys of resident and stored sessions, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	m.mu.Lock()
	for key := range m.states {
		seen[key] = true
	}
	m.mu.Unlock()

	if m.store != nil {
		stored, err := m.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		for _, key := range stored {
			seen[key] = true
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
