package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Keys under which the two persisted collections live.
const (
	KeyHistory  = "history"
	KeySettings = "settings"
)

type StateRepository struct {
	db *gorm.DB
}

func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

type StateEntry struct {
	Key       string         `gorm:"primaryKey;column:key"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (StateEntry) TableName() string {
	return "app_state"
}

// Get returns nil with no error when the key has never been written.
func (r *StateRepository) Get(ctx context.Context, key string) (datatypes.JSON, error) {
	var entry StateEntry
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// Put overwrites the stored value in full.
func (r *StateRepository) Put(ctx context.Context, key string, value datatypes.JSON) error {
	entry := StateEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}
