package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/aspet/simple-bank/internal/database"
	"github.com/aspet/simple-bank/models"
	"go.uber.org/zap"
)

const (
	msgDepositRejected  = "Name is invalid or pin code is invalid"
	msgWithdrawRejected = "Name is invalid or pin code is invalid or sum of withdraw is higher then balance is"
	msgTransferRejected = "Check accounts names or pin code or sum of transfer is higher then balance on account %s is"
)

// AccountService holds the business rules for every account operation.
// Inputs are expected to be validated by the caller: names non-empty, PINs
// of four digits, amounts positive.
type AccountService struct {
	repo   database.AccountRepository
	pins   PinVerifier
	logger *zap.Logger
}

func NewAccountService(repo database.AccountRepository, pins PinVerifier, logger *zap.Logger) *AccountService {
	return &AccountService{repo: repo, pins: pins, logger: logger}
}

func (s *AccountService) GetAccounts(ctx context.Context) ([]models.AccountDTO, error) {
	accounts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]models.AccountDTO, 0, len(accounts))
	for i := range accounts {
		dtos = append(dtos, models.NewAccountDTO(&accounts[i]))
	}
	return dtos, nil
}

func (s *AccountService) CreateAccount(ctx context.Context, name, pin string) (*models.Account, error) {
	sealed, err := s.pins.Seal(pin)
	if err != nil {
		return nil, err
	}
	account := &models.Account{Name: name, PinCode: sealed, Balance: 0}
	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, database.ErrDuplicateAccount) {
			return nil, fmt.Errorf("%w: account %q already exists", ErrConflict, name)
		}
		return nil, err
	}
	s.logger.Info("account created", zap.Int64("id", account.ID), zap.String("name", name))
	return account, nil
}

func (s *AccountService) MakeDeposit(ctx context.Context, name, pin string, amount float64) (models.AccountDTO, error) {
	var dto models.AccountDTO
	err := s.repo.InTx(ctx, func(repo database.AccountRepository) error {
		account, err := findAccount(ctx, repo, name)
		if err != nil {
			return err
		}
		if account == nil || !s.pins.Match(account.PinCode, pin) || !finite(account.Balance+amount) {
			s.logger.Error("deposit rejected", zap.String("name", name), zap.Float64("amount", amount))
			return NewBadRequest(msgDepositRejected)
		}
		account.Balance += amount
		if err := repo.UpdateBalance(ctx, account.ID, account.Balance); err != nil {
			return err
		}
		dto = models.NewAccountDTO(account)
		return nil
	})
	return dto, err
}

func (s *AccountService) WithdrawDeposit(ctx context.Context, name, pin string, amount float64) (models.AccountDTO, error) {
	var dto models.AccountDTO
	err := s.repo.InTx(ctx, func(repo database.AccountRepository) error {
		account, err := findAccount(ctx, repo, name)
		if err != nil {
			return err
		}
		if account == nil || !s.pins.Match(account.PinCode, pin) ||
			account.Balance < amount || !finite(account.Balance-amount) {
			fields := []zap.Field{zap.String("name", name), zap.Float64("amount", amount)}
			if account != nil {
				fields = append(fields, zap.Float64("balance", account.Balance))
			}
			s.logger.Error("withdraw rejected", fields...)
			return NewBadRequest(msgWithdrawRejected)
		}
		account.Balance -= amount
		if err := repo.UpdateBalance(ctx, account.ID, account.Balance); err != nil {
			return err
		}
		dto = models.NewAccountDTO(account)
		return nil
	})
	return dto, err
}

// Transfer moves amount from one account to another and returns the
// sender's state after the move.
func (s *AccountService) Transfer(ctx context.Context, from, to, pin string, amount float64) (models.AccountDTO, error) {
	var dto models.AccountDTO
	err := s.repo.InTx(ctx, func(repo database.AccountRepository) error {
		sender, err := findAccount(ctx, repo, from)
		if err != nil {
			return err
		}
		receiver, err := findAccount(ctx, repo, to)
		if err != nil {
			return err
		}
		if sender == nil || receiver == nil || sender.ID == receiver.ID ||
			!s.pins.Match(sender.PinCode, pin) || sender.Balance < amount ||
			!finite(sender.Balance-amount) || !finite(receiver.Balance+amount) {
			s.logger.Error("transfer rejected",
				zap.String("from", from), zap.String("to", to), zap.Float64("amount", amount))
			return NewBadRequest(fmt.Sprintf(msgTransferRejected, from))
		}
		sender.Balance -= amount
		receiver.Balance += amount
		if err := repo.UpdateBalance(ctx, sender.ID, sender.Balance); err != nil {
			return err
		}
		if err := repo.UpdateBalance(ctx, receiver.ID, receiver.Balance); err != nil {
			return err
		}
		dto = models.NewAccountDTO(sender)
		return nil
	})
	return dto, err
}

// finite reports whether a balance can be stored and encoded as JSON.
func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// findAccount returns nil without an error when the name is unknown.
func findAccount(ctx context.Context, repo database.AccountRepository, name string) (*models.Account, error) {
	account, err := repo.FindByName(ctx, name)
	if errors.Is(err, database.ErrAccountNotFound) {
		return nil, nil
	}
	return account, err
}
