package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"vinscan-service/internal/domain/vehicle"
)

var ErrIndexOutOfRange = errors.New("history index out of range")

// Backend persists the two JSON-serialized collections: the ordered
// record history and the user settings. Implementations overwrite the
// stored value in full on every save.
type Backend interface {
	LoadHistory() ([]vehicle.Record, error)
	SaveHistory(records []vehicle.Record) error
	// LoadSettings returns nil when no settings document has been
	// persisted yet.
	LoadSettings() (*vehicle.Settings, error)
	SaveSettings(settings vehicle.Settings) error
}

// Store is the sole source of truth for history display and export. It
// keeps the collection in memory, most-recent-first, and writes through
// to the backend on every mutation. Saves are fire-and-forget: a failed
// write is logged, never surfaced, since the collection is local and
// re-derivable.
type Store struct {
	mu       sync.RWMutex
	records  []vehicle.Record
	settings vehicle.Settings
	backend  Backend
	log      zerolog.Logger
}

// Open loads the persisted state once. Absent settings fall back to the
// provided defaults.
func Open(backend Backend, defaults vehicle.Settings, log zerolog.Logger) (*Store, error) {
	records, err := backend.LoadHistory()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	settings, err := backend.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	s := &Store{
		records: records,
		backend: backend,
		log:     log,
	}
	if settings != nil {
		s.settings = *settings
	} else {
		s.settings = defaults
	}
	return s, nil
}

// Append prepends the record so the view stays most-recent-first.
func (s *Store) Append(rec vehicle.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]vehicle.Record{rec}, s.records...)
	s.persistHistory()
}

// Remove deletes the entry at index in current display order.
func (s *Store) Remove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.records) {
		return ErrIndexOutOfRange
	}
	s.records = append(s.records[:index], s.records[index+1:]...)
	s.persistHistory()
	return nil
}

// Clear empties the whole collection.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.persistHistory()
}

// Get returns the record at index in current display order.
func (s *Store) Get(index int) (vehicle.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.records) {
		return vehicle.Record{}, ErrIndexOutOfRange
	}
	return s.records[index], nil
}

// Search returns a filtered copy matching term case-insensitively
// against vin, plate, make, model and location. An empty term returns
// the full ordered collection. The underlying sequence is never
// mutated.
func (s *Store) Search(term string) []vehicle.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term = strings.ToUpper(strings.TrimSpace(term))
	out := make([]vehicle.Record, 0, len(s.records))
	for _, r := range s.records {
		if term == "" || matches(r, term) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r vehicle.Record, term string) bool {
	return strings.Contains(r.VIN, term) ||
		strings.Contains(r.Plate, term) ||
		strings.Contains(strings.ToUpper(r.Make), term) ||
		strings.Contains(strings.ToUpper(r.Model), term) ||
		strings.Contains(strings.ToUpper(r.Location), term)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) Settings() vehicle.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSettings(s.settings)
}

// UpdateSettings replaces the settings document in full. The zone list
// must stay non-empty; every record needs a valid zone to save into.
func (s *Store) UpdateSettings(settings vehicle.Settings) error {
	if len(settings.AllowedLocations) == 0 {
		return errors.New("allowedLocations must not be empty")
	}
	if !settings.BusinessType.Valid() {
		return fmt.Errorf("unknown businessType %q", settings.BusinessType)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = cloneSettings(settings)
	if err := s.backend.SaveSettings(s.settings); err != nil {
		s.log.Warn().Err(err).Msg("settings save failed")
	}
	return nil
}

// persistHistory is called with the lock held.
func (s *Store) persistHistory() {
	if err := s.backend.SaveHistory(s.records); err != nil {
		s.log.Warn().Err(err).Int("records", len(s.records)).Msg("history save failed")
	}
}

func cloneSettings(in vehicle.Settings) vehicle.Settings {
	out := in
	out.AllowedLocations = make([]string, len(in.AllowedLocations))
	copy(out.AllowedLocations, in.AllowedLocations)
	return out
}
