package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aspet/simple-bank/internal/config"
	"github.com/aspet/simple-bank/internal/database"
	"github.com/aspet/simple-bank/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("BANK_CONFIG", "")
	t.Setenv("BANK_DATABASE_URL", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("BANK_DB_DRIVER", "sqlite")
	t.Setenv("BANK_SQLITE_PATH", path)
	t.Setenv("BANK_LOG_LEVEL", "error")
	t.Setenv("BANK_PIN_HASHING", "plain")
	return path
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestSeedThenHashPins(t *testing.T) {
	path := useSQLite(t)

	out := runCLI(t, "seed", "--count", "3", "--seed", "7")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))

	runCLI(t, "hash-pins", "--cost", "4")

	repo, err := database.Open(context.Background(), config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer repo.Close()

	accounts, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	for _, a := range accounts {
		assert.True(t, service.IsBcryptHash(a.PinCode), a.Name)
	}
}

func TestMigrate(t *testing.T) {
	path := useSQLite(t)
	runCLI(t, "migrate")
	assert.FileExists(t, path)
}

func TestHashPinsRejectsBadCost(t *testing.T) {
	useSQLite(t)
	rootCmd.SetArgs([]string{"hash-pins", "--cost", "99"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.ExecuteContext(context.Background()))
	hashPinsCost = 10
}
