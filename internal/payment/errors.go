package payment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrAlreadyPaid           = errors.New("booking is already paid")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrNotTransactionOwner   = errors.New("transaction belongs to another student")
)

// InsufficientFundsError carries the balance shortfall so handlers can report
// exactly how much was missing.
type InsufficientFundsError struct {
	Balance decimal.Decimal
	Amount  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient wallet balance: have %s, need %s", e.Balance, e.Amount)
}

// MinTopUpError is returned when a top-up is below the platform minimum.
type MinTopUpError struct {
	Minimum decimal.Decimal
}

func (e *MinTopUpError) Error() string {
	return fmt.Sprintf("minimum top-up amount is %s", e.Minimum)
}
