package main

import (
	"fmt"

	"github.com/aspet/simple-bank/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the account table if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer repo.Close()

		logger.Info("schema is up to date", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}

var hashPinsCost int

var hashPinsCmd = &cobra.Command{
	Use:   "hash-pins",
	Short: "Replace plaintext PINs with bcrypt hashes",
	Long: `Replace every plaintext PIN with its bcrypt hash.

Run this before switching security.pin_hashing to bcrypt, or while already
running with bcrypt: plaintext PINs keep working until they are rehashed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if hashPinsCost < bcrypt.MinCost || hashPinsCost > bcrypt.MaxCost {
			return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}

		repo, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer repo.Close()

		n, err := service.RehashPins(cmd.Context(), repo, service.BcryptPins{Cost: hashPinsCost})
		if err != nil {
			return fmt.Errorf("failed to rehash pins: %w", err)
		}
		logger.Info("pins rehashed", zap.Int("accounts", n))
		return nil
	},
}

func init() {
	hashPinsCmd.Flags().IntVar(&hashPinsCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
}
