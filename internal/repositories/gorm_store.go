package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// gormStore implements Store on top of gorm. Transaction returns a
// Store bound to the gorm transaction handle; gorm turns nested
// Transaction calls into savepoints, so ledger primitives can be used
// both standalone and inside an orchestrator's scope.
type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm connection in the Store interface.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Accounts() AccountRepository       { return &accountRepository{db: s.db} }
func (s *gormStore) Customers() CustomerRepository     { return &customerRepository{db: s.db} }
func (s *gormStore) Transfers() TransferRepository     { return &transferRepository{db: s.db} }
func (s *gormStore) Withdrawals() WithdrawalRepository { return &withdrawalRepository{db: s.db} }

func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether the error is a Postgres duplicate
// key failure, used to retry generated account numbers and folios.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
