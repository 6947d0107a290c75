package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// entry is one stored key-value pair.
type entry struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

func (entry) TableName() string { return "kv_entries" }

// SQLite is a KV backed by a single SQLite table.
type SQLite struct {
	db *gorm.DB

	// maxValueBytes caps a single stored value; 0 means unlimited.
	maxValueBytes int
}

// OpenSQLite opens (creating if needed) the store at dsn and runs
// migrations.
func OpenSQLite(dsn string, maxValueBytes int) (*SQLite, error) {
	if dsn == "" {
		dsn = "linecal.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		stdlog.New(os.Stdout, "", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	return &SQLite{db: db, maxValueBytes: maxValueBytes}, nil
}

// ensureDirForSQLite creates the parent dir for the SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir %q: %w", dir, err)
	}
	return nil
}

func (s *SQLite) Get(key string, out any) error {
	var e entry
	if err := s.db.First(&e, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get %q: %w", key, err)
	}
	if err := json.Unmarshal(e.Value, out); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if s.maxValueBytes > 0 && len(data) > s.maxValueBytes {
		return fmt.Errorf("set %q (%d bytes): %w", key, len(data), ErrQuotaExceeded)
	}

	e := entry{Key: key, Value: data, UpdatedAt: time.Now()}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Remove(key string) error {
	if err := s.db.Delete(&entry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Keys(prefix string) ([]string, error) {
	var keys []string
	q := s.db.Model(&entry{}).Order("key ASC")
	if prefix != "" {
		q = q.Where("key LIKE ?", prefix+"%")
	}
	if err := q.Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

func (s *SQLite) Stats() (Stats, error) {
	var st Stats
	var count int64
	if err := s.db.Model(&entry{}).Count(&count).Error; err != nil {
		return st, fmt.Errorf("count entries: %w", err)
	}
	var bytes *int64
	if err := s.db.Model(&entry{}).Select("SUM(LENGTH(value))").Scan(&bytes).Error; err != nil {
		return st, fmt.Errorf("sum entry sizes: %w", err)
	}
	st.Items = int(count)
	if bytes != nil {
		st.Bytes = *bytes
	}
	return st, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
