// Package journal keeps a local, advisory history of lifecycle operations in
// a sqlite database. It is never consulted to answer list/get queries; the
// remote filesystem stays the single source of truth.
package journal

import (
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Entry is one recorded lifecycle step outcome.
type Entry struct {
	ID         string `gorm:"primaryKey"`
	Deployment string `gorm:"index"`
	Action     string
	Step       string
	Status     string
	Detail     string
	CreatedAt  time.Time
}

type Journal struct {
	db *gorm.DB
}

// Open creates the journal database, its parent directory included.
func Open(path string) (*Journal, error) {
	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}

	return &Journal{db: db}, nil
}

// Record stores one step outcome. Safe on a nil Journal so callers can run
// without a journal at all.
func (j *Journal) Record(deployment, action, step, status, detail string) error {
	if j == nil {
		return nil
	}

	entry := &Entry{
		ID:         uuid.NewString(),
		Deployment: deployment,
		Action:     action,
		Step:       step,
		Status:     status,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}

	return j.db.Create(entry).Error
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if j == nil {
		return nil, nil
	}

	var entries []Entry
	err := j.db.Order("created_at desc").Limit(limit).Find(&entries).Error
	return entries, err
}

func (j *Journal) Close() error {
	if j == nil {
		return nil
	}

	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
