package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/aspet/simple-bank/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	pool *pgxpool.Pool // nil when bound to a transaction
	q    pgQuerier
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool, q: pool}
}

func (r *PostgresRepository) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS account (
			id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			pin_code TEXT NOT NULL,
			balance DOUBLE PRECISION NOT NULL DEFAULT 0
		)`
	if _, err := r.q.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create account table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]models.Account, error) {
	query := `SELECT id, name, pin_code, balance FROM account ORDER BY id`
	rows, err := r.q.Query(ctx, query)
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

func (r *PostgresRepository) FindByName(ctx context.Context, name string) (*models.Account, error) {
	query := `SELECT id, name, pin_code, balance FROM account WHERE name = $1`

	account := &models.Account{}
	err := r.q.QueryRow(ctx, query, name).Scan(&account.ID, &account.Name, &account.PinCode, &account.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %q: %w", name, err)
	}
	return account, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO account (name, pin_code, balance)
		VALUES ($1, $2, $3)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, account.Name, account.PinCode, account.Balance).Scan(&account.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateBalance(ctx context.Context, id int64, balance float64) error {
	result, err := r.q.Exec(ctx, `UPDATE account SET balance = $1 WHERE id = $2`, balance, id)
	if err != nil {
		return fmt.Errorf("failed to update balance of account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdatePin(ctx context.Context, id int64, pin string) error {
	result, err := r.q.Exec(ctx, `UPDATE account SET pin_code = $1 WHERE id = $2`, pin, id)
	if err != nil {
		return fmt.Errorf("failed to update pin of account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PostgresRepository) InTx(ctx context.Context, fn func(AccountRepository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&PostgresRepository{q: tx})
	})
}

func (r *PostgresRepository) Summary(ctx context.Context) (models.LedgerSummary, error) {
	var summary models.LedgerSummary
	query := `SELECT COUNT(*), COALESCE(SUM(balance), 0) FROM account`
	if err := r.q.QueryRow(ctx, query).Scan(&summary.Accounts, &summary.TotalBalance); err != nil {
		return summary, fmt.Errorf("failed to summarize accounts: %w", err)
	}
	return summary, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return nil
	}
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}
