package transfer

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"cajero/internal/errors"
	"cajero/internal/models"
	"cajero/internal/repositories"
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
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddCustomer(&models.Customer{ID: 1, Name: "Ana Torres"})
	ledgerSvc := ledger.NewService(store, nil)
	return &fixture{
		store:  store,
		ledger: ledgerSvc,
		svc:    NewService(store, ledgerSvc),
	}
}

func (f *fixture) openFunded(t *testing.T, balance string) *models.Account {
	t.Helper()
	ctx := context.Background()
	account, err := f.ledger.Open(ctx, 1)
	require.NoError(t, err)
	if balance != "0" {
		require.NoError(t, f.ledger.Credit(ctx, account.ID, dec(balance)))
	}
	fresh, err := f.ledger.GetByNumber(ctx, account.Number)
	require.NoError(t, err)
	return fresh
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("successful transfer moves funds and appends one record", func(t *testing.T) {
		f := newFixture(t)
		source := f.openFunded(t, "500.00")
		destination := f.openFunded(t, "0")

		record, err := f.svc.Transfer(ctx, source.Number, destination.Number, dec("200.00"), time.Now())
		require.NoError(t, err)
		assert.NotEmpty(t, record.Reference)
		assert.True(t, record.Amount.Equal(dec("200.00")))

		sourceBalance, err := f.ledger.GetBalance(ctx, source.Number)
		require.NoError(t, err)
		destinationBalance, err := f.ledger.GetBalance(ctx, destination.Number)
		require.NoError(t, err)
		assert.True(t, sourceBalance.Equal(dec("300.00")))
		assert.True(t, destinationBalance.Equal(dec("200.00")))

		records, err := f.svc.History(ctx, source.Number, 10, 0)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("conservation across a chain of transfers", func(t *testing.T) {
		f := newFixture(t)
		a := f.openFunded(t, "500.00")
		b := f.openFunded(t, "120.00")
		total := dec("620.00")

		for _, amount := range []string{"40.00", "0.01", "99.99"} {
			_, err := f.svc.Transfer(ctx, a.Number, b.Number, dec(amount), time.Now())
			require.NoError(t, err)
		}
		_, err := f.svc.Transfer(ctx, b.Number, a.Number, dec("60.00"), time.Now())
		require.NoError(t, err)

		aBalance, err := f.ledger.GetBalance(ctx, a.Number)
		require.NoError(t, err)
		bBalance, err := f.ledger.GetBalance(ctx, b.Number)
		require.NoError(t, err)
		assert.True(t, aBalance.Add(bBalance).Equal(total))
		assert.True(t, aBalance.Sign() >= 0)
		assert.True(t, bBalance.Sign() >= 0)
	})

	t.Run("validation failures leave balances untouched", func(t *testing.T) {
		f := newFixture(t)
		source := f.openFunded(t, "500.00")
		destination := f.openFunded(t, "0")
		cancelled := f.openFunded(t, "0")
		_, err := f.ledger.Cancel(ctx, cancelled.Number, 1)
		require.NoError(t, err)
		empty := f.openFunded(t, "0")

		tests := []struct {
			name        string
			source      string
			destination string
			amount      decimal.Decimal
			wantErr     error
		}{
			{"same account", source.Number, source.Number, dec("10.00"), errors.ErrSameAccount},
			{"zero amount", source.Number, destination.Number, decimal.Zero, errors.ErrInvalidAmount},
			{"negative amount", source.Number, destination.Number, dec("-1.00"), errors.ErrInvalidAmount},
			{"over the limit", source.Number, destination.Number, dec("150000.00"), errors.ErrAmountLimitExceeded},
			{"malformed destination", source.Number, "12345", dec("10.00"), errors.ErrInvalidAccountFormat},
			{"destination with letters", source.Number, "00000000000000000x", dec("10.00"), errors.ErrInvalidAccountFormat},
			{"unknown source", strings.Repeat("7", 18), destination.Number, dec("10.00"), errors.ErrAccountNotFound},
			{"unknown destination", source.Number, strings.Repeat("7", 18), dec("10.00"), errors.ErrAccountNotFound},
			{"empty source", empty.Number, destination.Number, dec("10.00"), errors.ErrEmptySourceAccount},
			{"insufficient funds", source.Number, destination.Number, dec("600.00"), errors.ErrInsufficientFunds},
			{"cancelled destination", source.Number, cancelled.Number, dec("10.00"), errors.ErrDestinationCancelled},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.svc.Transfer(ctx, tt.source, tt.destination, tt.amount, time.Now())
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}

		sourceBalance, err := f.ledger.GetBalance(ctx, source.Number)
		require.NoError(t, err)
		destinationBalance, err := f.ledger.GetBalance(ctx, destination.Number)
		require.NoError(t, err)
		assert.True(t, sourceBalance.Equal(dec("500.00")))
		assert.True(t, destinationBalance.IsZero())
	})

	t.Run("exactly the limit is allowed", func(t *testing.T) {
		f := newFixture(t)
		source := f.openFunded(t, "100000.00")
		destination := f.openFunded(t, "0")

		_, err := f.svc.Transfer(ctx, source.Number, destination.Number, dec("100000.00"), time.Now())
		require.NoError(t, err)
	})

	t.Run("record append failure rolls back both balances", func(t *testing.T) {
		f := newFixture(t)
		source := f.openFunded(t, "500.00")
		destination := f.openFunded(t, "0")

		broken := &brokenRecordStore{Store: f.store}
		svc := NewService(broken, f.ledger)

		_, err := svc.Transfer(ctx, source.Number, destination.Number, dec("200.00"), time.Now())
		require.Error(t, err)

		sourceBalance, err := f.ledger.GetBalance(ctx, source.Number)
		require.NoError(t, err)
		destinationBalance, err := f.ledger.GetBalance(ctx, destination.Number)
		require.NoError(t, err)
		assert.True(t, sourceBalance.Equal(dec("500.00")))
		assert.True(t, destinationBalance.IsZero())
	})
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.History(ctx, "not-a-number", 10, 0)
	assert.ErrorIs(t, err, errors.ErrInvalidAccountFormat)
}

// brokenRecordStore fails every transfer-record append while letting
// balance mutations through, to prove the transaction scope rolls the
// whole movement back.
type brokenRecordStore struct {
	repositories.Store
}

func (b *brokenRecordStore) Transaction(ctx context.Context, fn func(repositories.Store) error) error {
	return b.Store.Transaction(ctx, func(tx repositories.Store) error {
		return fn(&brokenRecordStore{Store: tx})
	})
}

func (b *brokenRecordStore) Transfers() repositories.TransferRepository {
	return failingTransfers{}
}

type failingTransfers struct{}

func (failingTransfers) Create(*models.Transfer) error {
	return stderrors.New("transfer log unavailable")
}

func (failingTransfers) ListByAccount(string, int, int) ([]models.Transfer, error) {
	return nil, stderrors.New("transfer log unavailable")
}
