// Package ledger is the sole writer of account balances and states.
// The transfer and withdrawal orchestrators never touch a balance
// directly; they call the primitives here, inside a shared store
// transaction when an operation spans several records.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainerrors "cajero/internal/errors"
	"cajero/internal/models"
	"cajero/internal/repositories"
	"cajero/internal/utils"
	"cajero/internal/validation"

	"github.com/shopspring/decimal"
)

// numberAttempts bounds the retry loop for generated account numbers
// that collide with an existing row.
const numberAttempts = 5

// AccountCache is the read cache the ledger keeps coherent. A nil
// cache disables caching.
type AccountCache interface {
	GetAccount(ctx context.Context, number string) *models.Account
	SetAccount(ctx context.Context, account *models.Account) error
	InvalidateAccount(ctx context.Context, number string) error
}

// Service owns the Account entity invariants: balances never go
// negative and a cancelled account's balance never changes again.
type Service interface {
	Open(ctx context.Context, customerID uint) (*models.Account, error)
	GetByNumber(ctx context.Context, number string) (*models.Account, error)
	GetBalance(ctx context.Context, number string) (decimal.Decimal, error)
	Debit(ctx context.Context, accountID uint, amount decimal.Decimal) error
	Credit(ctx context.Context, accountID uint, amount decimal.Decimal) error
	Cancel(ctx context.Context, number string, customerID uint) (*models.Account, error)
	ListActive(ctx context.Context, customerID uint) ([]models.Account, error)

	// WithStore returns a view of the ledger bound to the given
	// store, so orchestrators can run its primitives inside their
	// own transaction scope.
	WithStore(store repositories.Store) Service
}

type service struct {
	store repositories.Store
	cache AccountCache
}

// NewService creates the ledger service. cache may be nil.
func NewService(store repositories.Store, cache AccountCache) Service {
	if store == nil {
		panic("store is required")
	}
	return &service{store: store, cache: cache}
}

func (s *service) WithStore(store repositories.Store) Service {
	return &service{store: store, cache: s.cache}
}

func (s *service) Open(ctx context.Context, customerID uint) (*models.Account, error) {
	if _, err := s.store.Customers().FindByID(customerID); err != nil {
		if errors.Is(err, repositories.ErrCustomerNotFound) {
			return nil, domainerrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	for attempt := 0; attempt < numberAttempts; attempt++ {
		number, err := utils.RandomDigits(models.AccountNumberLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}
		account := &models.Account{
			Number:     number,
			CustomerID: customerID,
			Status:     models.AccountStatusActive,
			OpenedAt:   time.Now(),
		}
		err = s.store.Accounts().Create(account)
		if errors.Is(err, repositories.ErrDuplicateNumber) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return account, nil
	}
	return nil, fmt.Errorf("failed to allocate a unique account number after %d attempts", numberAttempts)
}

func (s *service) GetByNumber(ctx context.Context, number string) (*models.Account, error) {
	if s.cache != nil {
		if account := s.cache.GetAccount(ctx, number); account != nil {
			return account, nil
		}
	}

	account, err := s.store.Accounts().FindByNumber(number)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetAccount(ctx, account)
	}
	return account, nil
}

func (s *service) GetBalance(ctx context.Context, number string) (decimal.Decimal, error) {
	account, err := s.GetByNumber(ctx, number)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func (s *service) Debit(ctx context.Context, accountID uint, amount decimal.Decimal) error {
	if err := validation.CheckAmount(amount); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		account, err := tx.Accounts().FindByIDForUpdate(accountID)
		if err != nil {
			if errors.Is(err, repositories.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound
			}
			return err
		}
		if err := validation.CheckAccountActive(account); err != nil {
			return err
		}
		if err := validation.CheckSufficientFunds(account, amount); err != nil {
			return err
		}
		account.Balance = account.Balance.Sub(amount)
		if err := tx.Accounts().Save(account); err != nil {
			return err
		}
		s.invalidate(ctx, account.Number)
		return nil
	})
}

func (s *service) Credit(ctx context.Context, accountID uint, amount decimal.Decimal) error {
	if err := validation.CheckAmount(amount); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		account, err := tx.Accounts().FindByIDForUpdate(accountID)
		if err != nil {
			if errors.Is(err, repositories.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound
			}
			return err
		}
		if err := validation.CheckAccountActive(account); err != nil {
			return err
		}
		account.Balance = account.Balance.Add(amount)
		if err := tx.Accounts().Save(account); err != nil {
			return err
		}
		s.invalidate(ctx, account.Number)
		return nil
	})
}

func (s *service) Cancel(ctx context.Context, number string, customerID uint) (*models.Account, error) {
	if _, err := s.store.Customers().FindByID(customerID); err != nil {
		if errors.Is(err, repositories.ErrCustomerNotFound) {
			return nil, domainerrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	var cancelled *models.Account
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		account, err := tx.Accounts().FindByNumberForUpdate(number)
		if err != nil {
			if errors.Is(err, repositories.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound
			}
			return err
		}
		if account.CustomerID != customerID {
			return domainerrors.ErrNotOwner
		}
		if account.Cancelled() {
			return domainerrors.ErrAlreadyCancelled
		}
		if !account.Balance.IsZero() {
			return domainerrors.ErrNonZeroBalance
		}
		account.Status = models.AccountStatusCancelled
		if err := tx.Accounts().Save(account); err != nil {
			return err
		}
		s.invalidate(ctx, account.Number)
		cancelled = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *service) ListActive(ctx context.Context, customerID uint) ([]models.Account, error) {
	if _, err := s.store.Customers().FindByID(customerID); err != nil {
		if errors.Is(err, repositories.ErrCustomerNotFound) {
			return nil, domainerrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}
	return s.store.Accounts().ListActiveByCustomer(customerID)
}

func (s *service) invalidate(ctx context.Context, number string) {
	if s.cache != nil {
		_ = s.cache.InvalidateAccount(ctx, number)
	}
}
