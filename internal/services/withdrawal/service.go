// Package withdrawal implements the cardless withdrawal lifecycle:
// a ticket is issued PENDING against a source account, redeemable
// once at a kiosk with its folio and password before it expires.
// Funds are not reserved at issuance; redemption re-validates the
// balance and fails cleanly if it dropped in the meantime.
package withdrawal

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"cajero/internal/errors"
	"cajero/internal/models"
	"cajero/internal/repositories"
	"cajero/internal/services/ledger"
	"cajero/internal/utils"
	"cajero/internal/validation"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// TicketTTL is the redemption window measured from issuance.
const TicketTTL = 10 * time.Minute

// folioAttempts bounds the retry loop for generated folios that
// collide with an existing ticket.
const folioAttempts = 5

// IssuedTicket carries the persisted ticket plus the plaintext
// password. The password is returned exactly once, here; only its
// bcrypt hash is stored.
type IssuedTicket struct {
	Ticket   *models.CardlessWithdrawal
	Password string
}

// Service drives the per-ticket state machine. Expiration is derived
// from the expiration timestamp at every access, never stored.
type Service interface {
	Issue(ctx context.Context, sourceNumber string, amount decimal.Decimal) (*IssuedTicket, error)
	Lookup(ctx context.Context, folio, password string) (*models.CardlessWithdrawal, error)
	Redeem(ctx context.Context, folio, password string) (*models.CardlessWithdrawal, error)
}

type service struct {
	store  repositories.Store
	ledger ledger.Service
	now    func() time.Time
}

// NewService creates the withdrawal service. clock may be nil, in
// which case wall-clock time is used.
func NewService(store repositories.Store, ledgerSvc ledger.Service, clock func() time.Time) Service {
	if store == nil {
		panic("store is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &service{store: store, ledger: ledgerSvc, now: clock}
}

// Issue validates the source account and persists a PENDING ticket.
// The source balance is checked now but not debited or held, so the
// account stays spendable until redemption.
func (s *service) Issue(ctx context.Context, sourceNumber string, amount decimal.Decimal) (*IssuedTicket, error) {
	if err := validation.CheckAmount(amount); err != nil {
		return nil, err
	}

	account, err := s.ledger.GetByNumber(ctx, sourceNumber)
	if err != nil {
		return nil, err
	}
	if err := validation.CheckAccountActive(account); err != nil {
		return nil, err
	}
	if err := validation.CheckSufficientFunds(account, amount); err != nil {
		return nil, err
	}

	password, err := utils.RandomDigits(models.PasswordLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ticket password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash ticket password: %w", err)
	}

	issuedAt := s.now()
	for attempt := 0; attempt < folioAttempts; attempt++ {
		folio, err := utils.RandomDigits(models.FolioLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate folio: %w", err)
		}
		ticket := &models.CardlessWithdrawal{
			AccountNumber: account.Number,
			Amount:        amount,
			Folio:         folio,
			PasswordHash:  string(hash),
			Status:        models.WithdrawalStatusPending,
			IssuedAt:      issuedAt,
			ExpiresAt:     issuedAt.Add(TicketTTL),
		}
		err = s.store.Withdrawals().Create(ticket)
		if stderrors.Is(err, repositories.ErrDuplicateNumber) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &IssuedTicket{Ticket: ticket, Password: password}, nil
	}
	return nil, fmt.Errorf("failed to allocate a unique folio after %d attempts", folioAttempts)
}

// Lookup resolves a ticket by its folio and password. Unknown folio
// and wrong password are indistinguishable to the caller.
func (s *service) Lookup(ctx context.Context, folio, password string) (*models.CardlessWithdrawal, error) {
	ticket, err := s.store.Withdrawals().FindByFolio(folio)
	if err != nil {
		if stderrors.Is(err, repositories.ErrWithdrawalNotFound) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(ticket.PasswordHash), []byte(password)) != nil {
		return nil, errors.ErrInvalidCredentials
	}
	if ticket.Status == models.WithdrawalStatusPending && ticket.ExpiredAt(s.now()) {
		return nil, errors.ErrTicketExpired
	}
	return ticket, nil
}

// Redeem cashes out a ticket: inside one transaction the ticket row
// is locked, its state re-checked, the source account debited and the
// ticket flipped to REDEEMED. Any failure, including a balance that
// dropped since issuance, rolls everything back and the ticket stays
// PENDING.
func (s *service) Redeem(ctx context.Context, folio, password string) (*models.CardlessWithdrawal, error) {
	var redeemed *models.CardlessWithdrawal
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		ticket, err := tx.Withdrawals().FindByFolioForUpdate(folio)
		if err != nil {
			if stderrors.Is(err, repositories.ErrWithdrawalNotFound) {
				return errors.ErrInvalidCredentials
			}
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(ticket.PasswordHash), []byte(password)) != nil {
			return errors.ErrInvalidCredentials
		}

		now := s.now()
		switch ticket.Status {
		case models.WithdrawalStatusRedeemed:
			return errors.ErrAlreadyRedeemed
		case models.WithdrawalStatusPending:
			if ticket.ExpiredAt(now) {
				return errors.ErrTicketExpired
			}
		default:
			return fmt.Errorf("ticket %s is in unknown state %q", ticket.Folio, ticket.Status)
		}

		account, err := tx.Accounts().FindByNumber(ticket.AccountNumber)
		if err != nil {
			if stderrors.Is(err, repositories.ErrAccountNotFound) {
				return errors.ErrAccountNotFound
			}
			return err
		}

		if err := s.ledger.WithStore(tx).Debit(ctx, account.ID, ticket.Amount); err != nil {
			return err
		}

		ticket.Status = models.WithdrawalStatusRedeemed
		ticket.RedeemedAt = &now
		if err := tx.Withdrawals().Save(ticket); err != nil {
			return err
		}
		redeemed = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redeemed, nil
}
