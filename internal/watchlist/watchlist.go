// Package watchlist persists the user's followed symbols in a flat JSON
// file under the per-user config directory. It is single-process,
// single-writer state: every mutation rewrites the whole file.
package watchlist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	configDirName = ".borsa-api"
	fileName      = "watchlist.json"
)

// Entry is one followed symbol. Symbol is canonical uppercase; Name is
// whatever the caller supplied at add time; AddedAt is RFC 3339.
type Entry struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	AddedAt string `json:"addedAt"`
}

// Result reports the outcome of a mutation. Duplicates, missing entries and
// a disabled store are expected conditions, not errors, so they come back
// as a failed Result with a user-displayable message.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Store owns the watchlist file. If its directory cannot be created at
// construction time (read-only home, sandbox), the store flips to disabled
// for its whole lifetime and every operation degrades to a no-op Result
// instead of failing hard.
type Store struct {
	dir      string
	file     string
	disabled bool
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithDir overrides the backing directory (tests, BORSA_WATCHLIST_DIR).
func WithDir(dir string) Option {
	return func(s *Store) { s.dir = dir }
}

// Disabled constructs the store in the permanently-unavailable state.
func Disabled() Option {
	return func(s *Store) { s.disabled = true }
}

func withClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New builds a Store rooted at ~/.borsa-api unless overridden.
func New(log zerolog.Logger, opts ...Option) *Store {
	s := &Store{log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.disabled {
		return s
	}
	if s.dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			s.log.Warn().Err(err).Msg("watchlist disabled: no home directory")
			s.disabled = true
			return s
		}
		s.dir = filepath.Join(home, configDirName)
	}
	s.file = filepath.Join(s.dir, fileName)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.log.Warn().Err(err).Str("dir", s.dir).Msg("watchlist disabled: cannot create config dir")
		s.disabled = true
	}
	return s
}

// IsDisabled reports whether the store ended up unavailable.
func (s *Store) IsDisabled() bool { return s.disabled }

// List returns all entries in insertion order. A disabled store, a missing
// file and a corrupt file all read as empty.
func (s *Store) List() []Entry {
	if s.disabled {
		return []Entry{}
	}
	data, err := os.ReadFile(s.file)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Debug().Err(err).Msg("watchlist read failed")
		}
		return []Entry{}
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Debug().Err(err).Msg("watchlist file corrupt, treating as empty")
		return []Entry{}
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries
}

// Add appends a symbol. Adding a symbol that is already present reports a
// duplicate and leaves the store untouched.
func (s *Store) Add(sym, name string) Result {
	if s.disabled {
		return Result{Success: false, Message: "Watchlist not available in serverless environment"}
	}
	up := strings.ToUpper(sym)
	entries := s.List()
	for _, e := range entries {
		if e.Symbol == up {
			return Result{Success: false, Message: "Bu hisse zaten izleme listesinde"}
		}
	}
	entries = append(entries, Entry{
		Symbol:  up,
		Name:    name,
		AddedAt: s.now().UTC().Format(time.RFC3339),
	})
	if err := s.persist(entries); err != nil {
		s.log.Error().Err(err).Msg("watchlist save failed")
		return Result{Success: false, Message: "Failed to save watchlist"}
	}
	return Result{Success: true, Message: "İzleme listesine eklendi"}
}

// Remove deletes a symbol by exact uppercase match.
func (s *Store) Remove(sym string) Result {
	if s.disabled {
		return Result{Success: false, Message: "Watchlist not available in serverless environment"}
	}
	up := strings.ToUpper(sym)
	entries := s.List()
	kept := entries[:0]
	for _, e := range entries {
		if e.Symbol != up {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return Result{Success: false, Message: "Hisse izleme listesinde bulunamadı"}
	}
	if err := s.persist(kept); err != nil {
		s.log.Error().Err(err).Msg("watchlist save failed")
		return Result{Success: false, Message: "Failed to save watchlist"}
	}
	return Result{Success: true, Message: "İzleme listesinden çıkarıldı"}
}

// Clear rewrites the store as empty. Clearing an empty store succeeds.
func (s *Store) Clear() Result {
	if s.disabled {
		return Result{Success: false, Message: "Watchlist not available in serverless environment"}
	}
	if err := s.persist([]Entry{}); err != nil {
		s.log.Error().Err(err).Msg("watchlist clear failed")
		return Result{Success: false, Message: "Failed to clear watchlist"}
	}
	return Result{Success: true, Message: "İzleme listesi temizlendi"}
}

func (s *Store) persist(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.file, data, 0o644)
}
