// internal/store/memory.go
//
// In-memory snapshots of the judge's game, read by the status endpoints.
//
// Characteristics:
//   - Stores *Snapshot values keyed by game ID in a map.
//   - Concurrency-safe via RWMutex (the game loop writes, HTTP handlers read).
//   - State is lost when the process exits; nothing is persisted.
//   - Callers get copies, never the stored pointer.

package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Get and Latest for unknown games.
var ErrNotFound = errors.New("not found")

// Snapshot is the observable state of one game. The secret is never part
// of it.
type Snapshot struct {
	ID          string    `json:"id"`
	Round       int       `json:"round"`
	MaxRounds   int       `json:"maxRounds"`
	LastGuess   string    `json:"lastGuess,omitempty"`
	Red         int       `json:"red"`
	White       int       `json:"white"`
	ParityError bool      `json:"parityError"`
	GameLost    bool      `json:"gameLost"`
	Finished    bool      `json:"finished"`
	Outcome     string    `json:"outcome,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt,omitempty"`
}

// Store defines the snapshot interface.
type Store interface {
	// Save persists or updates a snapshot.
	Save(ctx context.Context, s *Snapshot) error

	// Get retrieves a snapshot by game ID.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Latest returns the most recently saved game.
	Latest(ctx context.Context) (*Snapshot, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex
	games  map[string]Snapshot
	latest string
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]Snapshot)}
}

// Save adds or updates the snapshot and marks it latest.
func (m *memory) Save(ctx context.Context, s *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[s.ID] = *s
	m.latest = s.ID
	return nil
}

// Get looks up a game by ID.
func (m *memory) Get(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.games[id]; ok {
		return &s, nil
	}
	return nil, ErrNotFound
}

// Latest returns the last game saved.
func (m *memory) Latest(ctx context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.games[m.latest]; ok {
		return &s, nil
	}
	return nil, ErrNotFound
}
