package store

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"vinscan-service/internal/domain/vehicle"
	"vinscan-service/internal/repository"
)

// DBBackend stores the two collections as JSONB rows in the app_state
// table. Same full-overwrite semantics as the file backend.
type DBBackend struct {
	repo *repository.StateRepository
}

func NewDBBackend(repo *repository.StateRepository) *DBBackend {
	return &DBBackend{repo: repo}
}

func (b *DBBackend) LoadHistory() ([]vehicle.Record, error) {
	raw, err := b.repo.Get(context.Background(), repository.KeyHistory)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var records []vehicle.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse history state: %w", err)
	}
	return records, nil
}

func (b *DBBackend) SaveHistory(records []vehicle.Record) error {
	if records == nil {
		records = []vehicle.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return b.repo.Put(context.Background(), repository.KeyHistory, datatypes.JSON(data))
}

func (b *DBBackend) LoadSettings() (*vehicle.Settings, error) {
	raw, err := b.repo.Get(context.Background(), repository.KeySettings)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var settings vehicle.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("parse settings state: %w", err)
	}
	return &settings, nil
}

func (b *DBBackend) SaveSettings(settings vehicle.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return b.repo.Put(context.Background(), repository.KeySettings, datatypes.JSON(data))
}
