package models

type Account struct {
	ID      int64   `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	PinCode string  `json:"-" db:"pin_code"`
	Balance float64 `json:"balance" db:"balance"`
}

// AccountDTO is the only view of an account that leaves the service.
type AccountDTO struct {
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

func NewAccountDTO(account *Account) AccountDTO {
	return AccountDTO{
		Name:    account.Name,
		Balance: account.Balance,
	}
}

type LedgerSummary struct {
	Accounts     int64   `json:"accounts"`
	TotalBalance float64 `json:"total_balance"`
}
