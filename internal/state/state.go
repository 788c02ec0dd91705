// Package state persists reader settings, reading positions and the merit
// counter between sessions.
package state

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

const (
	stateFileName = "state.json"

	// TapInterval is the minimum time between two counted merit taps.
	TapInterval = 300 * time.Millisecond
)

// ReadingState stores the position for a single document as a rune
// offset, so it survives font-size changes.
type ReadingState struct {
	Offset int `json:"offset"`
}

type fileData struct {
	Settings  Settings                `json:"settings"`
	Positions map[string]ReadingState `json:"positions"`
	Merit     int                     `json:"merit"`
}

// Store manages persistent reader state.
type Store struct {
	path    string
	data    fileData
	lastTap time.Time
	fresh   bool
	subs    map[int]func(Settings)
	nextSub int
	mu      sync.RWMutex
}

// NewStateStore creates or loads state from XDG_STATE_HOME/foshuo/.
func NewStateStore() (*Store, error) {
	return Open(DefaultDir())
}

// Open creates or loads state from dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	store := &Store{
		path: filepath.Join(dir, stateFileName),
		subs: make(map[int]func(Settings)),
	}
	if err := store.load(); err != nil {
		// Non-fatal - start with empty state
		store.data = fileData{}
	}
	store.fillDefaults()
	return store, nil
}

// DefaultDir returns XDG_STATE_HOME/foshuo or ~/.local/state/foshuo
func DefaultDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "foshuo")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "foshuo")
}

// HashText identifies a document by its content (32 hex chars).
func HashText(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:16])
}

// Fresh reports whether no state file existed when the store was opened.
func (s *Store) Fresh() bool {
	return s.fresh
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Settings returns the current settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Settings
}

// UpdateSettings applies fn to a copy of the settings, validates and
// saves the result, then notifies subscribers.
func (s *Store) UpdateSettings(fn func(*Settings) error) error {
	s.mu.Lock()
	next := s.data.Settings
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.data.Settings = next
	err := s.save()
	subs := s.subscribers()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	for _, fn := range subs {
		fn(next)
	}
	return nil
}

// Set updates one setting by key, see Settings.Set.
func (s *Store) Set(key, value string) error {
	return s.UpdateSettings(func(st *Settings) error {
		return st.Set(key, value)
	})
}

// Subscribe registers fn to be called after every settings change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Settings)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) subscribers() []func(Settings) {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(Settings), len(ids))
	for i, id := range ids {
		out[i] = s.subs[id]
	}
	return out
}

// GetPosition returns the saved offset for a document, or 0 if not found
func (s *Store) GetPosition(hash string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.data.Positions[hash]; ok {
		return state.Offset
	}
	return 0
}

// SetPosition saves the offset for a document
func (s *Store) SetPosition(hash string, offset int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Positions[hash] = ReadingState{Offset: offset}
	return s.save()
}

// Clear removes the saved position for a document
func (s *Store) Clear(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.Positions, hash)
	return s.save()
}

// Merit returns the merit count.
func (s *Store) Merit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Merit
}

// Tap counts one merit tap at now. Taps closer than TapInterval to the
// previous counted tap are ignored; counted reports which happened.
func (s *Store) Tap(now time.Time) (merit int, counted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lastTap.IsZero() && now.Sub(s.lastTap) < TapInterval {
		return s.data.Merit, false, nil
	}
	s.lastTap = now
	s.data.Merit++
	return s.data.Merit, true, s.save()
}

func (s *Store) fillDefaults() {
	if s.data.Positions == nil {
		s.data.Positions = make(map[string]ReadingState)
	}
	if s.data.Settings.Validate() != nil {
		s.data.Settings = DefaultSettings()
	}
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.fresh = true
		s.data.Settings = DefaultSettings()
		return nil
	}
	if err != nil {
		return err
	}
	s.data.Settings = DefaultSettings()
	return json.Unmarshal(data, &s.data)
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
