package trading

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError indicates a trade request that is missing fields or
// combines them illegally. It is raised before any exchange call.
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// InsufficientAmountError indicates a buy below the symbol's minimum
// notional value. The minimum is included so callers can report it.
type InsufficientAmountError struct {
	Symbol    string
	Minimum   decimal.Decimal
	Requested decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientAmountError) Error() string {
	return fmt.Sprintf("minimum order value for %s is %s, requested %s",
		e.Symbol, e.Minimum.String(), e.Requested.String())
}

// InsufficientFundsError indicates the account balance cannot cover
// the requested amount.
type InsufficientFundsError struct {
	Asset     string
	Requested decimal.Decimal
	Available decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: requested %s %s, available %s %s",
		e.Requested.String(), e.Asset, e.Available.String(), e.Asset)
}
