package withdrawal

import (
	"context"
	"testing"
	"time"

	"cajero/internal/errors"
	"cajero/internal/models"
	"cajero/internal/repositories/memory"
	"cajero/internal/services/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	store  *memory.Store
	ledger ledger.Service
	svc    Service
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		now:   time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	f.store.AddCustomer(&models.Customer{ID: 1, Name: "Ana Torres"})
	f.ledger = ledger.NewService(f.store, nil)
	f.svc = NewService(f.store, f.ledger, func() time.Time { return f.now })
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) openFunded(t *testing.T, balance string) *models.Account {
	t.Helper()
	ctx := context.Background()
	account, err := f.ledger.Open(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Credit(ctx, account.ID, dec(balance)))
	fresh, err := f.ledger.GetByNumber(ctx, account.Number)
	require.NoError(t, err)
	return fresh
}

func TestIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending ticket without touching the balance", func(t *testing.T) {
		f := newFixture(t)
		account := f.openFunded(t, "100.00")

		issued, err := f.svc.Issue(ctx, account.Number, dec("40.00"))
		require.NoError(t, err)

		ticket := issued.Ticket
		assert.Equal(t, models.WithdrawalStatusPending, ticket.Status)
		assert.Equal(t, account.Number, ticket.AccountNumber)
		assert.Len(t, ticket.Folio, models.FolioLength)
		assert.Len(t, issued.Password, models.PasswordLength)
		assert.True(t, ticket.ExpiresAt.Equal(ticket.IssuedAt.Add(TicketTTL)))
		assert.NotEqual(t, issued.Password, ticket.PasswordHash)

		balance, err := f.ledger.GetBalance(ctx, account.Number)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("100.00")), "funds are not reserved at issuance")
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		account := f.openFunded(t, "100.00")
		cancelled := f.openFunded(t, "1.00")
		require.NoError(t, f.ledger.Debit(ctx, cancelled.ID, dec("1.00")))
		_, err := f.ledger.Cancel(ctx, cancelled.Number, 1)
		require.NoError(t, err)

		tests := []struct {
			name    string
			number  string
			amount  decimal.Decimal
			wantErr error
		}{
			{"zero amount", account.Number, decimal.Zero, errors.ErrInvalidAmount},
			{"negative amount", account.Number, dec("-1.00"), errors.ErrInvalidAmount},
			{"over balance", account.Number, dec("100.01"), errors.ErrInsufficientFunds},
			{"unknown account", "999999999999999999", dec("10.00"), errors.ErrAccountNotFound},
			{"cancelled account", cancelled.Number, dec("10.00"), errors.ErrAccountCancelled},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.svc.Issue(ctx, tt.number, tt.amount)
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}
	})
}

func TestLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("matches folio and password", func(t *testing.T) {
		f := newFixture(t)
		account := f.openFunded(t, "100.00")
		issued, err := f.svc.Issue(ctx, account.Number, dec("40.00"))
		require.NoError(t, err)

		ticket, err := f.svc.Lookup(ctx, issued.Ticket.Folio, issued.Password)
		require.NoError(t, err)
		assert.Equal(t, issued.Ticket.ID, ticket.ID)
	})

	t.Run("unknown folio and wrong password are indistinguishable", func(t *testing.T) {
		f := newFixture(t)
		account := f.openFunded(t, "100.00")
		issued, err := f.svc.Issue(ctx, account.Number, dec("40.00"))
		require.NoError(t, err)

		_, err = f.svc.Lookup(ctx, "000000000000000000", issued.Password)
		assert.ErrorIs(t, err, errors.ErrInvalidCredentials)

		_, err = f.svc.Lookup(ctx, issued.Ticket.Folio, "00000000")
		assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})

	t.Run("expired ticket", func(t *testing.T) {
		f := newFixture(t)
		account := f.openFunded(t, "100.00")
		issued, err := f.svc.Issue(ctx, account.Number, dec("40.00"))
		require.NoError(t, err)

		f.advance(TicketTTL + time.Minute)
		_, err = f.svc.Lookup(ctx, issued.Ticket.Folio, issued.Password)
		assert.ErrorIs(t, err, errors.ErrTicketExpired)
	})
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path debits once and is terminal", func(t *testing.T) {
		f := newFixture(t)
		account := f.openFunded(t, "100.00")
		issued, err := f.svc.Issue(ctx, account.Number, dec("40.00"))
		require.NoError(t, err)

		f.advance(5 * time.Minute)
		ticket, err := f.svc.Redeem(ctx, issued.Ticket.Folio, issued.Password)
		require.NoError(t, err)
		assert.Equal(t, models.WithdrawalStatusRedeemed, ticket.Status)
		require.NotNil(t, ticket.RedeemedAt)
		assert.True(t, ticket.RedeemedAt.Equal(f.now))

		balance, err := f.ledger.GetBalance(ctx, account.Number)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("60.00")))

		_, err = f.svc.Redeem(ctx, issued.Ticket.Folio, issued.Password)
		assert.ErrorIs(t, err, errors.ErrAlreadyRedeemed)

		balance, err = f.ledger.GetBalance(ctx, account.Number)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("60.00")), "second redeem must not debit")
	})

	t.Run("expired ticket cannot be redeemed", func(t *testing.T) {
		f := newFixture(t)
		account := f.openFunded(t, "100.00")
		issued, err := f.svc.Issue(ctx, account.Number, dec("40.00"))
		require.NoError(t, err)

		f.advance(TicketTTL + time.Minute)
		_, err = f.svc.Redeem(ctx, issued.Ticket.Folio, issued.Password)
		assert.ErrorIs(t, err, errors.ErrTicketExpired)

		balance, err := f.ledger.GetBalance(ctx, account.Number)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("100.00")))
	})

	t.Run("redeemed lookup still resolves after expiry window", func(t *testing.T) {
		f := newFixture(t)
		account := f.openFunded(t, "100.00")
		issued, err := f.svc.Issue(ctx, account.Number, dec("40.00"))
		require.NoError(t, err)

		_, err = f.svc.Redeem(ctx, issued.Ticket.Folio, issued.Password)
		require.NoError(t, err)

		// Expiration only applies to PENDING tickets; a redeemed one
		// keeps resolving as REDEEMED.
		f.advance(TicketTTL + time.Hour)
		ticket, err := f.svc.Lookup(ctx, issued.Ticket.Folio, issued.Password)
		require.NoError(t, err)
		assert.Equal(t, models.WithdrawalStatusRedeemed, ticket.Status)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		f := newFixture(t)
		account := f.openFunded(t, "100.00")
		issued, err := f.svc.Issue(ctx, account.Number, dec("40.00"))
		require.NoError(t, err)

		_, err = f.svc.Redeem(ctx, issued.Ticket.Folio, "00000000")
		assert.ErrorIs(t, err, errors.ErrInvalidCredentials)

		_, err = f.svc.Redeem(ctx, "000000000000000000", issued.Password)
		assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})

	t.Run("balance dropped since issuance", func(t *testing.T) {
		f := newFixture(t)
		account := f.openFunded(t, "100.00")
		issued, err := f.svc.Issue(ctx, account.Number, dec("80.00"))
		require.NoError(t, err)

		// No hold was placed, so other spending can drain the
		// account between issuance and redemption.
		require.NoError(t, f.ledger.Debit(ctx, account.ID, dec("50.00")))

		_, err = f.svc.Redeem(ctx, issued.Ticket.Folio, issued.Password)
		assert.ErrorIs(t, err, errors.ErrInsufficientFunds)

		// The failed redemption rolled back: ticket is still PENDING
		// and the remaining balance is intact.
		ticket, err := f.svc.Lookup(ctx, issued.Ticket.Folio, issued.Password)
		require.NoError(t, err)
		assert.Equal(t, models.WithdrawalStatusPending, ticket.Status)

		balance, err := f.ledger.GetBalance(ctx, account.Number)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("50.00")))
	})
}

func TestEffectiveStatus(t *testing.T) {
	issued := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	ticket := &models.CardlessWithdrawal{
		Status:    models.WithdrawalStatusPending,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(TicketTTL),
	}

	assert.Equal(t, models.WithdrawalStatusPending, ticket.EffectiveStatus(issued.Add(9*time.Minute)))
	assert.Equal(t, models.WithdrawalStatusPending, ticket.EffectiveStatus(issued.Add(TicketTTL)))
	assert.Equal(t, models.WithdrawalStatusExpired, ticket.EffectiveStatus(issued.Add(11*time.Minute)))

	ticket.Status = models.WithdrawalStatusRedeemed
	assert.Equal(t, models.WithdrawalStatusRedeemed, ticket.EffectiveStatus(issued.Add(11*time.Minute)))
}
