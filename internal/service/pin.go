package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/aspet/simple-bank/internal/config"
	"github.com/aspet/simple-bank/internal/database"
	"golang.org/x/crypto/bcrypt"
)

// PinVerifier decides how a PIN is stored and how a presented PIN is checked
// against the stored value.
type PinVerifier interface {
	Seal(pin string) (string, error)
	Match(stored, pin string) bool
}

func NewPinVerifier(mode string) (PinVerifier, error) {
	switch mode {
	case config.PinsPlain, "":
		return PlainPins{}, nil
	case config.PinsBcrypt:
		return BcryptPins{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown pin hashing mode %q", mode)
	}
}

// PlainPins stores the PIN as given.
type PlainPins struct{}

func (PlainPins) Seal(pin string) (string, error) { return pin, nil }

func (PlainPins) Match(stored, pin string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(pin)) == 1
}

// BcryptPins stores bcrypt hashes. Stored values that are not hashes yet are
// compared as plaintext so a database can be migrated with RehashPins while
// the service keeps running.
type BcryptPins struct {
	Cost int
}

func (b BcryptPins) Seal(pin string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), b.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(hashed), nil
}

func (BcryptPins) Match(stored, pin string) bool {
	if !IsBcryptHash(stored) {
		return PlainPins{}.Match(stored, pin)
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(pin)) == nil
}

func IsBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// RehashPins replaces every plaintext PIN with its bcrypt hash in a single
// transaction and returns how many accounts were updated.
func RehashPins(ctx context.Context, repo database.AccountRepository, pins BcryptPins) (int, error) {
	updated := 0
	err := repo.InTx(ctx, func(tx database.AccountRepository) error {
		accounts, err := tx.FindAll(ctx)
		if err != nil {
			return err
		}
		for _, account := range accounts {
			if IsBcryptHash(account.PinCode) {
				continue
			}
			hashed, err := pins.Seal(account.PinCode)
			if err != nil {
				return err
			}
			if err := tx.UpdatePin(ctx, account.ID, hashed); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
