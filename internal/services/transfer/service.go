// Package transfer executes account-to-account movements as single
// atomic units: both balance changes and the transfer record commit
// together or not at all.
package transfer

import (
	"context"
	"strings"
	"time"

	"cajero/internal/errors"
	"cajero/internal/models"
	"cajero/internal/repositories"
	"cajero/internal/services/ledger"
	"cajero/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Limit is the policy ceiling per transfer.
var Limit = decimal.NewFromInt(100000)

// Service executes validated transfers between two accounts.
type Service interface {
	Transfer(ctx context.Context, sourceNumber, destinationNumber string, amount decimal.Decimal, at time.Time) (*models.Transfer, error)
	History(ctx context.Context, accountNumber string, limit, offset int) ([]models.Transfer, error)
}

type service struct {
	store  repositories.Store
	ledger ledger.Service
}

// NewService creates a new transfer service instance.
func NewService(store repositories.Store, ledgerSvc ledger.Service) Service {
	if store == nil {
		panic("store is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	return &service{store: store, ledger: ledgerSvc}
}

// Transfer moves amount from the source account to the destination
// account. Transfers are not idempotent; on failure nothing moved and
// the caller decides whether to resubmit.
func (s *service) Transfer(ctx context.Context, sourceNumber, destinationNumber string, amount decimal.Decimal, at time.Time) (*models.Transfer, error) {
	if sourceNumber == destinationNumber {
		return nil, errors.ErrSameAccount
	}
	if err := validation.CheckAmount(amount); err != nil {
		return nil, err
	}
	if err := validation.CheckAmountLimit(amount, Limit); err != nil {
		return nil, err
	}
	if err := validation.CheckAccountNumber(destinationNumber); err != nil {
		return nil, err
	}

	source, err := s.ledger.GetByNumber(ctx, sourceNumber)
	if err != nil {
		return nil, err
	}
	destination, err := s.ledger.GetByNumber(ctx, destinationNumber)
	if err != nil {
		return nil, err
	}

	if source.Balance.IsZero() {
		return nil, errors.ErrEmptySourceAccount
	}
	if err := validation.CheckSufficientFunds(source, amount); err != nil {
		return nil, err
	}
	if destination.Cancelled() {
		return nil, errors.ErrDestinationCancelled
	}

	record := &models.Transfer{
		Reference:         uuid.NewString(),
		SourceNumber:      sourceNumber,
		DestinationNumber: destinationNumber,
		Amount:            amount,
		ExecutedAt:        at,
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		// Lock both rows in number order so two transfers running
		// in opposite directions cannot deadlock.
		first, second := sourceNumber, destinationNumber
		if strings.Compare(second, first) < 0 {
			first, second = second, first
		}
		if _, err := tx.Accounts().FindByNumberForUpdate(first); err != nil {
			return err
		}
		if _, err := tx.Accounts().FindByNumberForUpdate(second); err != nil {
			return err
		}

		led := s.ledger.WithStore(tx)
		if err := led.Debit(ctx, source.ID, amount); err != nil {
			return err
		}
		if err := led.Credit(ctx, destination.ID, amount); err != nil {
			return err
		}
		return tx.Transfers().Create(record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// History lists transfer records touching the given account, newest
// first.
func (s *service) History(ctx context.Context, accountNumber string, limit, offset int) ([]models.Transfer, error) {
	if err := validation.CheckAccountNumber(accountNumber); err != nil {
		return nil, err
	}
	return s.store.Transfers().ListByAccount(accountNumber, limit, offset)
}
