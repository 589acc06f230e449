package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/aspet/simple-bank/internal/database"
	"github.com/aspet/simple-bank/internal/service"
	"github.com/aspet/simple-bank/models"
	"github.com/brianvoe/gofakeit/v6"
)

// SeededAccount keeps the plaintext PIN so whoever seeded the data can use it.
type SeededAccount struct {
	Name    string
	Pin     string
	Balance float64
}

// GenerateTestAccounts creates count accounts with fake names, random PINs
// and balances. Name collisions are retried a bounded number of times.
func GenerateTestAccounts(ctx context.Context, repo database.AccountRepository, pins service.PinVerifier, faker *gofakeit.Faker, count int) ([]SeededAccount, error) {
	seeded := make([]SeededAccount, 0, count)
	attempts := 0
	for len(seeded) < count {
		attempts++
		if attempts > count*10 {
			return seeded, fmt.Errorf("gave up after %d attempts, %d accounts created", attempts-1, len(seeded))
		}

		pin := faker.Numerify("####")
		sealed, err := pins.Seal(pin)
		if err != nil {
			return seeded, err
		}
		account := &models.Account{
			Name:    faker.Name(),
			PinCode: sealed,
			Balance: faker.Price(0, 1000),
		}
		if err := repo.Create(ctx, account); err != nil {
			if errors.Is(err, database.ErrDuplicateAccount) {
				continue
			}
			return seeded, fmt.Errorf("failed to seed account %q: %w", account.Name, err)
		}
		seeded = append(seeded, SeededAccount{Name: account.Name, Pin: pin, Balance: account.Balance})
	}
	return seeded, nil
}
