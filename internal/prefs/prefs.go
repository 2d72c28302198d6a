// Package prefs persists user preference flags in an embedded SQLite store.
package prefs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// KeyDarkMode is the dark/light appearance flag.
const KeyDarkMode = "dark_mode"

// Preference is one stored key/value pair.
type Preference struct {
	Key       string         `gorm:"primaryKey"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// Store is a preference store backed by a SQLite file.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the store at the given path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("opening preference store: %w", err)
	}
	if err := db.AutoMigrate(&Preference{}); err != nil {
		return nil, fmt.Errorf("migrating preference store: %w", err)
	}
	return &Store{db: db}, nil
}

// SetBool stores a boolean preference, replacing any prior value.
func (s *Store) SetBool(key string, value bool) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding preference %s: %w", key, err)
	}
	pref := Preference{Key: key, Value: raw, UpdatedAt: time.Now()}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("storing preference %s: %w", key, err)
	}
	return nil
}

// GetBool returns a boolean preference, or def when the key is unset.
func (s *Store) GetBool(key string, def bool) (bool, error) {
	var pref Preference
	err := s.db.First(&pref, "key = ?", key).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return def, nil
		}
		return def, fmt.Errorf("reading preference %s: %w", key, err)
	}
	var value bool
	if err := json.Unmarshal(pref.Value, &value); err != nil {
		return def, fmt.Errorf("decoding preference %s: %w", key, err)
	}
	return value, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
