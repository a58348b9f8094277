// Package status owns Eva's status record: the current status, a bounded history,
// the walk counter and a bounded photo list. Every mutation re-persists the whole
// record into a single storage slot.
package status

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/liminalpurple/evastatus/internal/storage"
	"github.com/rs/zerolog"
)

// DefaultKey is the slot key the snapshot is stored under
const DefaultKey = "evaStatusSite_v1"

// LoadOutcome tells how Load obtained the state
type LoadOutcome int

const (
	// LoadFresh means nothing was stored; the state is the default one.
	LoadFresh LoadOutcome = iota
	// LoadRestored means the stored snapshot was applied.
	LoadRestored
	// LoadRecovered means the stored snapshot was unusable and the default state is in effect.
	LoadRecovered
)

func (o LoadOutcome) String() string {
	switch o {
	case LoadFresh:
		return "fresh"
	case LoadRestored:
		return "restored"
	case LoadRecovered:
		return "recovered"
	default:
		return fmt.Sprintf("LoadOutcome(%d)", int(o))
	}
}

// LoadResult describes the outcome of Load. Err is set only for LoadRecovered.
type LoadResult struct {
	Outcome LoadOutcome
	Err     error
}

// Store holds the state in memory and mirrors it into a slot.
// All methods are safe for concurrent use; each mutation and its persist run as one step.
type Store struct {
	mu    sync.Mutex
	slot  storage.Slot
	key   string
	state State
	now   func() time.Time
	log   zerolog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithKey overrides the slot key
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock overrides the clock used for entry timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore creates a store over slot holding the default state. Call Load to restore.
func NewStore(slot storage.Slot, opts ...Option) *Store {
	s := &Store{
		slot:  slot,
		key:   DefaultKey,
		state: DefaultState(),
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory state with the stored snapshot merged over defaults.
// A missing, unreadable or malformed snapshot never fails: the default state is used
// and the outcome says why.
func (s *Store) Load(ctx context.Context) LoadResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, outcome, err := s.read(ctx)
	if err != nil {
		s.state = DefaultState()
		return s.recovered(err)
	}

	s.state = state
	if outcome == LoadRestored {
		s.log.Debug().
			Int("history", len(state.History)).
			Int("photos", len(state.Photos)).
			Int("walks", state.WalkCount).
			Msg("Status snapshot restored")
	}
	return LoadResult{Outcome: outcome}
}

// Refresh re-reads the stored snapshot so that writes made through another store on
// the same slot are not overwritten by the next mutation. When the snapshot cannot be
// read or decoded the in-memory state is kept and the error returned.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, _, err := s.read(ctx)
	if err != nil {
		return err
	}
	s.state = state
	return nil
}

// read fetches and decodes the stored snapshot. Nothing stored yields the default state.
func (s *Store) read(ctx context.Context) (State, LoadOutcome, error) {
	raw, err := s.slot.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return DefaultState(), LoadFresh, nil
	}
	if err != nil {
		return State{}, LoadRecovered, fmt.Errorf("failed to read snapshot: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return DefaultState(), LoadFresh, nil
	}

	state, err := decodeSnapshot(raw)
	if err != nil {
		return State{}, LoadRecovered, err
	}
	return state, LoadRestored, nil
}

func (s *Store) recovered(err error) LoadResult {
	s.log.Warn().Err(err).Str("key", s.key).Msg("Failed to load status snapshot, starting from defaults")
	return LoadResult{Outcome: LoadRecovered, Err: err}
}

// decodeSnapshot applies the fields present in raw over the default state.
// Fields that are absent keep their defaults; null collections become empty.
func decodeSnapshot(raw []byte) (State, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return State{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	state := DefaultState()
	if v, ok := fields["currentStatus"]; ok {
		if err := json.Unmarshal(v, &state.CurrentStatus); err != nil {
			return State{}, fmt.Errorf("failed to unmarshal currentStatus: %w", err)
		}
	}
	if v, ok := fields["history"]; ok {
		if err := json.Unmarshal(v, &state.History); err != nil {
			return State{}, fmt.Errorf("failed to unmarshal history: %w", err)
		}
	}
	if v, ok := fields["walkCount"]; ok {
		if err := json.Unmarshal(v, &state.WalkCount); err != nil {
			return State{}, fmt.Errorf("failed to unmarshal walkCount: %w", err)
		}
	}
	if v, ok := fields["photos"]; ok {
		if err := json.Unmarshal(v, &state.Photos); err != nil {
			return State{}, fmt.Errorf("failed to unmarshal photos: %w", err)
		}
	}

	if state.History == nil {
		state.History = []Entry{}
	}
	if state.Photos == nil {
		state.Photos = []string{}
	}
	state.History = keepLast(state.History, MaxHistory)
	state.Photos = keepLast(state.Photos, MaxPhotos)
	if state.WalkCount < 0 {
		state.WalkCount = 0
	}

	return state, nil
}

// Save writes the whole state to the slot
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx)
}

// persist must be called with mu held
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := s.slot.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// RecordStatus creates an entry stamped with the current local time, makes it the
// current status, appends it to the history and persists. Any input is accepted.
func (s *Store) RecordStatus(ctx context.Context, text string, flags Flags, moodRaw string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		Text:  text,
		Flags: flags,
		Mood:  NormalizeMood(moodRaw),
		Time:  s.now().Format(TimeLayout),
	}

	current := entry.Clone()
	s.state.CurrentStatus = &current
	s.state.History = keepLast(append(s.state.History, entry.Clone()), MaxHistory)

	s.log.Debug().Str("time", entry.Time).Strs("flags", flags.Names()).Msg("Status recorded")
	return entry.Clone(), s.persist(ctx)
}

// ClearHistory empties the history. The current status stays.
func (s *Store) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.History = []Entry{}
	return s.persist(ctx)
}

// IncrementWalk adds one walk and returns the new count
func (s *Store) IncrementWalk(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.WalkCount++
	return s.state.WalkCount, s.persist(ctx)
}

// ResetWalk sets the walk counter to zero
func (s *Store) ResetWalk(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.WalkCount = 0
	return s.persist(ctx)
}

// AddPhotos appends images in order and keeps only the most recent MaxPhotos.
// It can be called once per decoded image; the cap holds after every call.
func (s *Store) AddPhotos(ctx context.Context, images ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Photos = keepLast(append(s.state.Photos, images...), MaxPhotos)
	return s.persist(ctx)
}

// ClearPhotos removes all photos
func (s *Store) ClearPhotos(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Photos = []string{}
	return s.persist(ctx)
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// CurrentStatus returns a copy of the current status, or nil
func (s *Store) CurrentStatus() *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.CurrentStatus == nil {
		return nil
	}
	e := s.state.CurrentStatus.Clone()
	return &e
}

// HistoryNewestFirst returns the history in display order
func (s *Store) HistoryNewestFirst() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewestFirst(s.state.History)
}

// WalkCount returns the walk counter
func (s *Store) WalkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.WalkCount
}

// Photos returns the stored photos, oldest first
func (s *Store) Photos() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.state.Photos...)
}

// NewestFirst returns a reversed deep copy of history
func NewestFirst(history []Entry) []Entry {
	out := make([]Entry, len(history))
	for i, e := range history {
		out[len(history)-1-i] = e.Clone()
	}
	return out
}

// keepLast drops items from the front so at most n remain.
// The result never aliases the dropped prefix.
func keepLast[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return append(make([]T, 0, n), items[len(items)-n:]...)
}
