package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"stock_sim/internal/domain"
	"stock_sim/internal/infra"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultPostgresHost    = "localhost"
	defaultPostgresPort    = 5432
	defaultPostgresSSLMode = "disable"
)

// Journal is a write-mostly audit trail of the orders a broker applied.
// Nothing in it is read back to seed a run.
type Journal struct {
	db *gorm.DB
}

// OpenJournal opens the configured database and migrates the journal tables.
func OpenJournal(cfg *infra.Config) (*Journal, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.OrderRecord{}, &domain.RunInfo{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Journal{db: db}, nil
}

func dialectorFor(cfg *infra.Config) (gorm.Dialector, error) {
	switch cfg.Storage.Driver {
	case infra.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
		return sqlite.Open(cfg.Storage.Path), nil
	case infra.DriverPostgres:
		return postgres.Open(postgresDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownBackend, cfg.Storage.Driver)
	}
}

func postgresDSN(cfg *infra.Config) string {
	pg := cfg.Storage.Postgres

	host := pg.Host
	if host == "" {
		host = defaultPostgresHost
	}
	port := pg.Port
	if port == 0 {
		port = defaultPostgresPort
	}
	sslMode := pg.SSLMode
	if sslMode == "" {
		sslMode = defaultPostgresSSLMode
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
	}
	if pg.User != "" {
		if pg.Password != "" {
			u.User = url.UserPassword(pg.User, pg.Password)
		} else {
			u.User = url.User(pg.User)
		}
	}
	if pg.Database != "" {
		u.Path = "/" + pg.Database
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	u.RawQuery = query.Encode()

	return u.String()
}

// ======================================================================================
// Run Operations
// ======================================================================================

// StartRun records the start of a run.
func (j *Journal) StartRun(ctx context.Context, run *domain.RunInfo) error {
	return j.db.WithContext(ctx).Create(run).Error
}

// FinishRun stamps a run with its final order count.
func (j *Journal) FinishRun(ctx context.Context, runID string, completed int, finishedAt time.Time) error {
	res := j.db.WithContext(ctx).Model(&domain.RunInfo{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{"completed": completed, "finished_at": finishedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("run %s: %w", runID, gorm.ErrRecordNotFound)
	}
	return nil
}

// GetRun retrieves a run by id. Returns nil when it does not exist.
func (j *Journal) GetRun(ctx context.Context, runID string) (*domain.RunInfo, error) {
	var run domain.RunInfo
	err := j.db.WithContext(ctx).First(&run, "id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &run, err
}

// ======================================================================================
// Order Operations
// ======================================================================================

// RecordApplied appends one applied order to the journal.
func (j *Journal) RecordApplied(ctx context.Context, runID string, stock domain.Stock) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	record := domain.OrderRecord{
		ID:        id.String(),
		RunID:     runID,
		StockName: stock.Name,
		Price:     decimal.NewFromFloat(stock.CurrentPrice),
		AppliedAt: time.Now(),
	}
	return j.db.WithContext(ctx).Create(&record).Error
}

// Orders returns a run's applied orders in the order they were applied.
func (j *Journal) Orders(ctx context.Context, runID string) ([]domain.OrderRecord, error) {
	var records []domain.OrderRecord
	err := j.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id").
		Find(&records).Error
	return records, err
}

// CountByRun returns how many orders a run applied.
func (j *Journal) CountByRun(ctx context.Context, runID string) (int64, error) {
	var count int64
	err := j.db.WithContext(ctx).Model(&domain.OrderRecord{}).Where("run_id = ?", runID).Count(&count).Error
	return count, err
}

// Close closes the underlying connection pool.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
