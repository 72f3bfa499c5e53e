// Package journal keeps a local audit log of automated vault and export
// operations. The vault's own history remains authoritative; the journal
// exists so batch runs can be reviewed on the machine that drove them.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Operation result values recorded per entry.
const (
	ResultOK      = "ok"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

// Entry is one recorded operation.
type Entry struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index:idx_journal_created"`

	// EntryUUID correlates the entry with batch checkin comments in vault
	// history.
	EntryUUID uuid.UUID `gorm:"type:uuid;not null"`

	Operation string `gorm:"type:varchar(50);not null;index:idx_journal_operation"`
	File      string `gorm:"type:varchar(500);not null;index:idx_journal_file"`
	Result    string `gorm:"type:varchar(20);not null"`
	Detail    string `gorm:"type:varchar(1000)"`
}

// TableName specifies the table name.
func (Entry) TableName() string {
	return "journal_entries"
}

// BeforeCreate hook to ensure EntryUUID is set.
func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.EntryUUID == uuid.Nil {
		e.EntryUUID = uuid.New()
	}
	return nil
}

// Journal is an open journal database.
type Journal struct {
	db  *gorm.DB
	log hclog.Logger
}

// Open opens (creating if needed) the journal database at path and migrates
// its schema.
func Open(path string, log hclog.Logger) (*Journal, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newGormLogger(log.Named("gorm")),
	})
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrating journal schema: %w", err)
	}
	return &Journal{db: db, log: log}, nil
}

// Record appends an entry. Journal failures are reported but should not abort
// the operation that produced them; the journal is advisory.
func (j *Journal) Record(operation, file, result, detail string) error {
	entry := Entry{
		Operation: operation,
		File:      file,
		Result:    result,
		Detail:    detail,
	}
	if err := j.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("recording journal entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []Entry
	err := j.db.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("listing journal entries: %w", err)
	}
	return entries, nil
}

// ForFile returns the entries recorded for one file, most recent first.
func (j *Journal) ForFile(file string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []Entry
	err := j.db.Where("file = ?", file).
		Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("listing journal entries for %s: %w", file, err)
	}
	return entries, nil
}

// gormHclogAdapter adapts hclog.Logger to gorm's logger.Interface.
type gormHclogAdapter struct {
	logger hclog.Logger
	level  logger.LogLevel
}

func newGormLogger(log hclog.Logger) logger.Interface {
	return &gormHclogAdapter{logger: log, level: logger.Warn}
}

func (g *gormHclogAdapter) LogMode(level logger.LogLevel) logger.Interface {
	return &gormHclogAdapter{logger: g.logger, level: level}
}

func (g *gormHclogAdapter) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Info {
		g.logger.Info(msg, data...)
	}
}

func (g *gormHclogAdapter) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Warn {
		g.logger.Warn(msg, data...)
	}
}

func (g *gormHclogAdapter) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Error {
		g.logger.Error(msg, data...)
	}
}

func (g *gormHclogAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	sql, rows := fc()
	elapsed := time.Since(begin)
	if err != nil {
		g.logger.Error("query failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
		return
	}
	g.logger.Debug("query", "sql", sql, "rows", rows, "elapsed", elapsed)
}
