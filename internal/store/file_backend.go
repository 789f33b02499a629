package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vinscan-service/internal/domain/vehicle"
)

const (
	historyFile  = "history.json"
	settingsFile = "settings.json"
)

// FileBackend keeps the two collections as JSON files under a data
// directory, rewritten in full on every save.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) LoadHistory() ([]vehicle.Record, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, historyFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []vehicle.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", historyFile, err)
	}
	return records, nil
}

func (b *FileBackend) SaveHistory(records []vehicle.Record) error {
	if records == nil {
		records = []vehicle.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(b.dir, historyFile), data, 0o644)
}

func (b *FileBackend) LoadSettings() (*vehicle.Settings, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, settingsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var settings vehicle.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", settingsFile, err)
	}
	return &settings, nil
}

func (b *FileBackend) SaveSettings(settings vehicle.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(b.dir, settingsFile), data, 0o644)
}
