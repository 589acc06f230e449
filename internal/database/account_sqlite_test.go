package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aspet/simple-bank/internal/config"
	"github.com/aspet/simple-bank/internal/database"
	"github.com/aspet/simple-bank/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) database.AccountRepository {
	t.Helper()
	repo, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "bank.db"),
	})
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestSQLiteCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	bob := &models.Account{Name: "Bob Marley", PinCode: "1234", Balance: 100}
	require.NoError(t, repo.Create(ctx, bob))
	assert.NotZero(t, bob.ID)

	got, err := repo.FindByName(ctx, "Bob Marley")
	require.NoError(t, err)
	assert.Equal(t, *bob, *got)

	_, err = repo.FindByName(ctx, "Nobody")
	assert.ErrorIs(t, err, database.ErrAccountNotFound)
}

func TestSQLiteDuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	require.NoError(t, repo.Create(ctx, &models.Account{Name: "Dart Vader", PinCode: "1234"}))
	err := repo.Create(ctx, &models.Account{Name: "Dart Vader", PinCode: "4321"})
	assert.ErrorIs(t, err, database.ErrDuplicateAccount)
}

func TestSQLiteFindAllOrdered(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Create(ctx, &models.Account{Name: name, PinCode: "0000"}))
	}
	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Name)
	assert.Equal(t, "b", all[2].Name)
}

func TestSQLiteUpdates(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	acc := &models.Account{Name: "A", PinCode: "1111"}
	require.NoError(t, repo.Create(ctx, acc))

	require.NoError(t, repo.UpdateBalance(ctx, acc.ID, 42.5))
	require.NoError(t, repo.UpdatePin(ctx, acc.ID, "2222"))

	got, err := repo.FindByName(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 42.5, got.Balance)
	assert.Equal(t, "2222", got.PinCode)

	assert.ErrorIs(t, repo.UpdateBalance(ctx, 999, 1), database.ErrAccountNotFound)
	assert.ErrorIs(t, repo.UpdatePin(ctx, 999, "0000"), database.ErrAccountNotFound)
}

func TestSQLiteInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	from := &models.Account{Name: "from", PinCode: "1111", Balance: 100}
	to := &models.Account{Name: "to", PinCode: "2222", Balance: 0}
	require.NoError(t, repo.Create(ctx, from))
	require.NoError(t, repo.Create(ctx, to))

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(tx database.AccountRepository) error {
		if err := tx.UpdateBalance(ctx, from.ID, 0); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.FindByName(ctx, "from")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Balance, "rolled back")

	err = repo.InTx(ctx, func(tx database.AccountRepository) error {
		if err := tx.UpdateBalance(ctx, from.ID, 60); err != nil {
			return err
		}
		return tx.UpdateBalance(ctx, to.ID, 40)
	})
	require.NoError(t, err)

	summary, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.LedgerSummary{Accounts: 2, TotalBalance: 100}, summary)
}

func TestSQLitePingAndEmptySummary(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	require.NoError(t, repo.Ping(ctx))
	summary, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.LedgerSummary{}, summary)
}
