// Package validation holds the rule predicates shared by the transfer
// and withdrawal paths. Each rule maps to exactly one domain error so
// the two orchestrators cannot drift apart on what a violation means.
package validation

import (
	"cajero/internal/errors"
	"cajero/internal/models"

	"github.com/shopspring/decimal"
)

// ValidAccountNumber reports whether s is a well-formed account
// number: exactly 18 ASCII digits.
func ValidAccountNumber(s string) bool {
	if len(s) != models.AccountNumberLength {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckAccountNumber returns the format error for malformed numbers.
func CheckAccountNumber(s string) error {
	if !ValidAccountNumber(s) {
		return errors.ErrInvalidAccountFormat
	}
	return nil
}

// CheckAmount rejects zero and negative amounts.
func CheckAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return errors.ErrInvalidAmount
	}
	return nil
}

// CheckAmountLimit rejects amounts above the given policy ceiling.
func CheckAmountLimit(amount, limit decimal.Decimal) error {
	if amount.GreaterThan(limit) {
		return errors.ErrAmountLimitExceeded
	}
	return nil
}

// CheckAccountActive rejects operations against cancelled accounts.
func CheckAccountActive(account *models.Account) error {
	if account == nil {
		return errors.ErrAccountNotFound
	}
	if !account.Active() {
		return errors.ErrAccountCancelled
	}
	return nil
}

// CheckSufficientFunds rejects amounts above the account balance.
func CheckSufficientFunds(account *models.Account, amount decimal.Decimal) error {
	if account.Balance.LessThan(amount) {
		return errors.ErrInsufficientFunds
	}
	return nil
}
