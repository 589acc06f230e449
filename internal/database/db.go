package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aspet/simple-bank/internal/config"
	"github.com/aspet/simple-bank/models"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account with this name already exists")
)

// AccountRepository is the storage boundary for the account table.
type AccountRepository interface {
	Migrate(ctx context.Context) error
	FindAll(ctx context.Context) ([]models.Account, error)
	FindByName(ctx context.Context, name string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	UpdateBalance(ctx context.Context, id int64, balance float64) error
	UpdatePin(ctx context.Context, id int64, pin string) error
	// InTx runs fn against a repository bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(AccountRepository) error) error
	Summary(ctx context.Context) (models.LedgerSummary, error)
	Ping(ctx context.Context) error
	Close()
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg config.DatabaseConfig) (AccountRepository, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := ConnectDB(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepository(pool), nil
	case config.DriverSQLite:
		db, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func ConnectDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}

func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps pragmas and transactions on the same handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}
	return db, nil
}
