package database_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aspet/simple-bank/internal/database"
	"github.com/aspet/simple-bank/models"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connectPostgres needs a live database. Set BANK_TEST_DATABASE_URL in the
// environment or in a .env file next to this package.
func connectPostgres(t *testing.T) *database.PostgresRepository {
	t.Helper()
	_ = godotenv.Load()
	dsn := os.Getenv("BANK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("BANK_TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := database.ConnectDB(ctx, dsn)
	require.NoError(t, err)
	repo := database.NewPostgresRepository(pool)
	t.Cleanup(repo.Close)
	require.NoError(t, repo.Migrate(ctx))
	return repo
}

// uniqueName keeps reruns against the same database from colliding.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestPostgresCreateFindUpdate(t *testing.T) {
	ctx := context.Background()
	repo := connectPostgres(t)

	acc := &models.Account{Name: uniqueName("bob"), PinCode: "1234", Balance: 10}
	require.NoError(t, repo.Create(ctx, acc))
	assert.NotZero(t, acc.ID)

	require.NoError(t, repo.UpdateBalance(ctx, acc.ID, 25))
	got, err := repo.FindByName(ctx, acc.Name)
	require.NoError(t, err)
	assert.Equal(t, 25.0, got.Balance)

	err = repo.Create(ctx, &models.Account{Name: acc.Name, PinCode: "0000"})
	assert.ErrorIs(t, err, database.ErrDuplicateAccount)

	_, err = repo.FindByName(ctx, uniqueName("ghost"))
	assert.ErrorIs(t, err, database.ErrAccountNotFound)
}

func TestPostgresInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := connectPostgres(t)

	acc := &models.Account{Name: uniqueName("tx"), PinCode: "1234", Balance: 50}
	require.NoError(t, repo.Create(ctx, acc))

	err := repo.InTx(ctx, func(tx database.AccountRepository) error {
		if err := tx.UpdateBalance(ctx, acc.ID, 0); err != nil {
			return err
		}
		return database.ErrAccountNotFound
	})
	assert.ErrorIs(t, err, database.ErrAccountNotFound)

	got, err := repo.FindByName(ctx, acc.Name)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Balance)
}
