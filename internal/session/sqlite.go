package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/telematch/internal/clock"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Entry is one stored session value.
type Entry struct {
	Key       string    `gorm:"column:key;primaryKey;type:text"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "session_entries" }

// SQLiteStore persists values in a local sqlite file.
type SQLiteStore struct {
	db    *gorm.DB
	clock clock.Clock
}

// OpenSQLite opens (or creates) the database at dsn and prepares the
// session table.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(otelgorm.NewPlugin(otelgorm.WithDBName("session"))); err != nil {
		return nil, err
	}
	return NewSQLiteStore(db, clock.System{})
}

func NewSQLiteStore(db *gorm.DB, clk clock.Clock) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("session database handle is required")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, clock: clk}, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	entry := Entry{Key: key, Value: value, UpdatedAt: s.clock.Now()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
