package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const queryTimeout = 5 * time.Second

func openDB(cfg config, log *logrus.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	switch cfg.db.driver {
	case "postgres":
		sqlDB, err := sql.Open("postgres", cfg.db.dsn)
		if err != nil {
			return nil, err
		}
		if err := preparePool(sqlDB, cfg); err != nil {
			sqlDB.Close()
			return nil, err
		}
		return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gcfg)
	case "sqlite", "":
		db, err := gorm.Open(sqlite.Open(sqliteDSN(cfg.db.dsn)), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.db.driver)
	}
}

func preparePool(db *sql.DB, cfg config) error {
	db.SetMaxOpenConns(cfg.db.maxOpenConnections)
	db.SetMaxIdleConns(cfg.db.maxIdleConnections)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return db.PingContext(ctx)
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

type storage struct {
	db *gorm.DB
}

func newStorage(db *gorm.DB) *storage {
	return &storage{db: db}
}

// migrate creates the account, note and task tables when they are missing.
func (s *storage) migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&account{}, &note{}, &task{})
}

func (s *storage) getAccountByEmail(ctx context.Context, email string) (*account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var a account
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&a).Error
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &a, nil
}

func (s *storage) getAccountByID(ctx context.Context, id int) (*account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var a account
	err := s.db.WithContext(ctx).First(&a, id).Error
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &a, nil
}

func (s *storage) insertAccount(ctx context.Context, a *account) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *storage) insertNote(ctx context.Context, n *note) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *storage) getNoteByID(ctx context.Context, id int) (*note, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var n note
	err := s.db.WithContext(ctx).First(&n, id).Error
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &n, nil
}

// updateNoteContent writes the content column only; subject and creation
// time are left as stored.
func (s *storage) updateNoteContent(ctx context.Context, n *note) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.db.WithContext(ctx).Model(n).Update("content", n.Content).Error
}

func (s *storage) deleteNote(ctx context.Context, n *note) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.db.WithContext(ctx).Delete(&note{}, n.ID).Error
}

func (s *storage) notesFor(ctx context.Context, accountID int) ([]note, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var notes []note
	err := s.db.WithContext(ctx).Where("account_id = ?", accountID).Order("id").Find(&notes).Error
	return notes, err
}

func (s *storage) insertTask(ctx context.Context, t *task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *storage) getTaskByID(ctx context.Context, id int) (*task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var t task
	err := s.db.WithContext(ctx).First(&t, id).Error
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *storage) updateTaskCompleted(ctx context.Context, t *task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.db.WithContext(ctx).Model(t).Update("completed", t.Completed).Error
}

func (s *storage) deleteTask(ctx context.Context, t *task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.db.WithContext(ctx).Delete(&task{}, t.ID).Error
}

func (s *storage) tasksFor(ctx context.Context, accountID int) ([]task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var tasks []task
	err := s.db.WithContext(ctx).Where("account_id = ?", accountID).Order("id").Find(&tasks).Error
	return tasks, err
}
