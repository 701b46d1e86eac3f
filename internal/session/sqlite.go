package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// storageItem is one key/value row of the local storage table
type storageItem struct {
	Name      string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (storageItem) TableName() string {
	return "local_storage"
}

// SQLStore persists the session as key/value rows in a SQLite file, for hosts
// without a usable keychain
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLStore opens (creating if needed) the SQLite file at path
func OpenSQLStore(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage database: %w", err)
	}

	if err := db.Exec("PRAGMA busy_timeout=5000").Error; err != nil {
		return nil, fmt.Errorf("failed to configure storage database: %w", err)
	}

	if err := db.AutoMigrate(&storageItem{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storage database: %w", err)
	}

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Load(ctx context.Context) (Session, error) {
	var items []storageItem
	err := s.db.WithContext(ctx).
		Where("name IN ?", []string{TokenKey, UserKey}).
		Find(&items).Error
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	for _, item := range items {
		switch item.Name {
		case TokenKey:
			sess.Token = item.Value
		case UserKey:
			sess.User = item.Value
		}
	}
	return sess, nil
}

// Save upserts both keys; an empty value removes its key
func (s *SQLStore) Save(ctx context.Context, sess Session) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, value := range map[string]string{TokenKey: sess.Token, UserKey: sess.User} {
			if value == "" {
				if err := tx.Where("name = ?", name).Delete(&storageItem{}).Error; err != nil {
					return fmt.Errorf("failed to delete %s: %w", name, err)
				}
				continue
			}
			item := storageItem{Name: name, Value: value, UpdatedAt: time.Now()}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&item).Error
			if err != nil {
				return fmt.Errorf("failed to save %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *SQLStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Where("name IN ?", []string{TokenKey, UserKey}).
		Delete(&storageItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close releases the underlying database connection
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
