package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aspet/simple-bank/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqlQuerier is satisfied by both *sql.DB and *sql.Tx.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteRepository stores accounts in a local SQLite file. It backs local
// runs and tests that have no Postgres at hand.
type SQLiteRepository struct {
	db *sql.DB // nil when bound to a transaction
	q  sqlQuerier
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, q: db}
}

func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS account (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			pin_code TEXT NOT NULL,
			balance REAL NOT NULL DEFAULT 0
		)`
	if _, err := r.q.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create account table: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) FindAll(ctx context.Context) ([]models.Account, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name, pin_code, balance FROM account ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.Name, &account.PinCode, &account.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *SQLiteRepository) FindByName(ctx context.Context, name string) (*models.Account, error) {
	account := &models.Account{}
	err := r.q.QueryRowContext(ctx, `SELECT id, name, pin_code, balance FROM account WHERE name = ?`, name).
		Scan(&account.ID, &account.Name, &account.PinCode, &account.Balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %q: %w", name, err)
	}
	return account, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO account (name, pin_code, balance) VALUES (?, ?, ?) RETURNING id`
	err := r.q.QueryRowContext(ctx, query, account.Name, account.PinCode, account.Balance).Scan(&account.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateBalance(ctx context.Context, id int64, balance float64) error {
	result, err := r.q.ExecContext(ctx, `UPDATE account SET balance = ? WHERE id = ?`, balance, id)
	if err != nil {
		return fmt.Errorf("failed to update balance of account %d: %w", id, err)
	}
	return expectOneRow(result)
}

func (r *SQLiteRepository) UpdatePin(ctx context.Context, id int64, pin string) error {
	result, err := r.q.ExecContext(ctx, `UPDATE account SET pin_code = ? WHERE id = ?`, pin, id)
	if err != nil {
		return fmt.Errorf("failed to update pin of account %d: %w", id, err)
	}
	return expectOneRow(result)
}

func (r *SQLiteRepository) InTx(ctx context.Context, fn func(AccountRepository) error) error {
	if r.db == nil {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&SQLiteRepository{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Summary(ctx context.Context) (models.LedgerSummary, error) {
	var summary models.LedgerSummary
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(balance), 0.0) FROM account`).
		Scan(&summary.Accounts, &summary.TotalBalance)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize accounts: %w", err)
	}
	return summary, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() {
	if r.db != nil {
		_ = r.db.Close()
	}
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
}
