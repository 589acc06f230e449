package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/aspet/simple-bank/internal/service"
	"github.com/aspet/simple-bank/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountService is the part of service.AccountService the handlers call.
type AccountService interface {
	GetAccounts(ctx context.Context) ([]models.AccountDTO, error)
	CreateAccount(ctx context.Context, name, pin string) (*models.Account, error)
	MakeDeposit(ctx context.Context, name, pin string, amount float64) (models.AccountDTO, error)
	WithdrawDeposit(ctx context.Context, name, pin string, amount float64) (models.AccountDTO, error)
	Transfer(ctx context.Context, from, to, pin string, amount float64) (models.AccountDTO, error)
}

const (
	msgEmptyName        = "Field name can`t be empty"
	msgEmptyNames       = "Name fields can`t be empty"
	msgBadPin           = "Pin code must contain four digits"
	msgDepositNotPos    = "The deposit must have a positive balance"
	msgRemittanceNotPos = "The remittance must have a positive balance"
)

type AccountHandler struct {
	service AccountService
	logger  *zap.Logger
}

func NewAccountHandler(svc AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{service: svc, logger: logger}
}

// GetAccounts handles GET /api/accounts.
func (h *AccountHandler) GetAccounts(c *gin.Context) {
	accounts, err := h.service.GetAccounts(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// CreateAccount handles POST /api/create?name=&pin_code=.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	params, err := requiredQuery(c, "name", "pin_code")
	if err != nil {
		h.writeError(c, err)
		return
	}
	name, pin := params[0], params[1]

	if err := validateName(name); err != nil {
		h.writeError(c, err)
		return
	}
	if err := validatePin(pin); err != nil {
		h.writeError(c, err)
		return
	}

	if _, err := h.service.CreateAccount(c.Request.Context(), name, pin); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// MakeDeposit handles PATCH /api/makeDeposit?name=&pin_code=&deposit=.
func (h *AccountHandler) MakeDeposit(c *gin.Context) {
	h.balanceChange(c, h.service.MakeDeposit)
}

// WithdrawDeposit handles PATCH /api/withdrawDeposit?name=&pin_code=&deposit=.
func (h *AccountHandler) WithdrawDeposit(c *gin.Context) {
	h.balanceChange(c, h.service.WithdrawDeposit)
}

func (h *AccountHandler) balanceChange(c *gin.Context, apply func(ctx context.Context, name, pin string, amount float64) (models.AccountDTO, error)) {
	params, err := requiredQuery(c, "name", "pin_code", "deposit")
	if err != nil {
		h.writeError(c, err)
		return
	}
	name, pin := params[0], params[1]
	amount, err := parseAmount("deposit", params[2])
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := validateName(name); err != nil {
		h.writeError(c, err)
		return
	}
	if err := validatePin(pin); err != nil {
		h.writeError(c, err)
		return
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		h.writeError(c, service.NewBadRequest(msgDepositNotPos))
		return
	}

	dto, err := apply(c.Request.Context(), name, pin, amount.InexactFloat64())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// Transfer handles PATCH /api/transfer?nameFrom=&nameTo=&pin_code=&remittance=.
func (h *AccountHandler) Transfer(c *gin.Context) {
	params, err := requiredQuery(c, "nameFrom", "nameTo", "pin_code", "remittance")
	if err != nil {
		h.writeError(c, err)
		return
	}
	from, to, pin := params[0], params[1], params[2]
	amount, err := parseAmount("remittance", params[3])
	if err != nil {
		h.writeError(c, err)
		return
	}

	// A single blank name still reaches the service, which rejects it as an
	// unknown account.
	if strings.TrimSpace(from) == "" && strings.TrimSpace(to) == "" {
		h.writeError(c, service.NewBadRequest(msgEmptyNames))
		return
	}
	if err := validatePin(pin); err != nil {
		h.writeError(c, err)
		return
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		h.writeError(c, service.NewBadRequest(msgRemittanceNotPos))
		return
	}

	dto, err := h.service.Transfer(c.Request.Context(), from, to, pin, amount.InexactFloat64())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *AccountHandler) writeError(c *gin.Context, err error) {
	var badRequest *service.BadRequestError
	switch {
	case errors.As(err, &badRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": badRequest.Message})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// requiredQuery returns the values of keys in order, or a bad request naming
// the first missing one.
func requiredQuery(c *gin.Context, keys ...string) ([]string, error) {
	values := make([]string, len(keys))
	for i, key := range keys {
		v, ok := c.GetQuery(key)
		if !ok {
			return nil, service.NewBadRequest(fmt.Sprintf("Required request parameter '%s' is not present", key))
		}
		values[i] = v
	}
	return values, nil
}

func parseAmount(key, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || math.IsInf(amount.InexactFloat64(), 0) {
		return decimal.Zero, service.NewBadRequest(fmt.Sprintf("Parameter '%s' must be a number", key))
	}
	return amount, nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return service.NewBadRequest(msgEmptyName)
	}
	return nil
}

func validatePin(pin string) error {
	if len(pin) != 4 {
		return service.NewBadRequest(msgBadPin)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return service.NewBadRequest(msgBadPin)
		}
	}
	return nil
}
