package storage

import (
	"citystate/internal/providers"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	json "github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type record struct {
	Key           string         `gorm:"column:record_key;primaryKey;size:191"`
	SchemaVersion int            `gorm:"not null;default:0"`
	Value         datatypes.JSON `gorm:"not null"`
	UpdatedAt     time.Time
}

func (record) TableName() string { return "records" }

// SQLiteBackend stores one row per record. PutMany runs in a transaction.
type SQLiteBackend struct {
	db     *gorm.DB
	quota  int
	logger providers.Logger
}

func NewSQLiteBackend(path string, quota int, logger providers.Logger) (*SQLiteBackend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
	}
	logger.Infof(providers.TypeStore, "Opened sqlite store %s", path)
	return &SQLiteBackend{db: db, quota: quota, logger: logger}, nil
}

func (s *SQLiteBackend) Get(key string) (Entry, bool, error) {
	var r record
	err := s.db.Where("record_key = ?", key).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{SchemaVersion: r.SchemaVersion, Value: json.RawMessage(r.Value)}, true, nil
}

func (s *SQLiteBackend) PutMany(entries map[string]Entry) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for k, e := range entries {
			r := record{Key: k, SchemaVersion: e.SchemaVersion, Value: datatypes.JSON(e.Value), UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "record_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"schema_version", "value", "updated_at"}),
			}).Create(&r).Error
			if err != nil {
				return err
			}
		}
		if s.quota <= 0 {
			return nil
		}
		var size int64
		if err := tx.Model(&record{}).Select("COALESCE(SUM(LENGTH(value)), 0)").Scan(&size).Error; err != nil {
			return err
		}
		if size > int64(s.quota) {
			return ErrQuotaExceeded
		}
		return nil
	})
}

func (s *SQLiteBackend) Delete(key string) error {
	return s.db.Where("record_key = ?", key).Delete(&record{}).Error
}

func (s *SQLiteBackend) Keys() ([]string, error) {
	var keys []string
	err := s.db.Model(&record{}).Order("record_key").Pluck("record_key", &keys).Error
	return keys, err
}

func (s *SQLiteBackend) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
