// Package repositories provides the persistence boundary for the
// money-movement core. All balance mutation happens inside a
// Store.Transaction scope so a failure partway through an operation
// rolls back every record it touched.
package repositories

import (
	"context"
	"errors"

	"cajero/internal/models"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrWithdrawalNotFound = errors.New("withdrawal ticket not found")
	ErrDuplicateNumber    = errors.New("generated number already exists")
)

// AccountRepository persists Account records. The ForUpdate variants
// must lock the row for the remainder of the enclosing transaction so
// concurrent balance mutations on one account are serialized.
type AccountRepository interface {
	Create(account *models.Account) error
	FindByID(id uint) (*models.Account, error)
	FindByNumber(number string) (*models.Account, error)
	FindByIDForUpdate(id uint) (*models.Account, error)
	FindByNumberForUpdate(number string) (*models.Account, error)
	Save(account *models.Account) error
	ListActiveByCustomer(customerID uint) ([]models.Account, error)
}

// CustomerRepository is consumed, not owned, by the core; it exists
// only to authorize account cancellation by ownership.
type CustomerRepository interface {
	FindByID(id uint) (*models.Customer, error)
}

// TransferRepository appends immutable transfer records.
type TransferRepository interface {
	Create(transfer *models.Transfer) error
	ListByAccount(number string, limit, offset int) ([]models.Transfer, error)
}

// WithdrawalRepository persists cardless withdrawal tickets.
type WithdrawalRepository interface {
	Create(ticket *models.CardlessWithdrawal) error
	FindByFolio(folio string) (*models.CardlessWithdrawal, error)
	FindByFolioForUpdate(folio string) (*models.CardlessWithdrawal, error)
	Save(ticket *models.CardlessWithdrawal) error
}

// Store bundles the repositories behind one transaction scope. The
// Store passed to the Transaction callback is bound to that
// transaction; calling Transaction on it joins the open scope instead
// of starting a new one.
type Store interface {
	Accounts() AccountRepository
	Customers() CustomerRepository
	Transfers() TransferRepository
	Withdrawals() WithdrawalRepository
	Transaction(ctx context.Context, fn func(Store) error) error
}
