package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal ticket statuses. EXPIRED is never stored: it is derived
// from the expiration timestamp at every access, so the stored status
// of an expired ticket remains PENDING.
const (
	WithdrawalStatusPending  = "PENDING"
	WithdrawalStatusRedeemed = "REDEEMED"
	WithdrawalStatusExpired  = "EXPIRED"
)

// Ticket dimensions
const (
	FolioLength    = 18
	PasswordLength = 8
)

// CardlessWithdrawal is a folio+password-protected claim on funds
// from a source account, redeemable once before it expires. Funds are
// not reserved at issuance; the balance is re-checked at redemption.
type CardlessWithdrawal struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	AccountNumber string          `gorm:"size:18;index;not null" json:"account_number"`
	Amount        decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"amount"`
	Folio         string          `gorm:"size:18;uniqueIndex;not null" json:"folio"`
	PasswordHash  string          `gorm:"not null" json:"-"`
	Status        string          `gorm:"not null;default:'PENDING'" json:"status"`
	IssuedAt      time.Time       `gorm:"not null" json:"issued_at"`
	ExpiresAt     time.Time       `gorm:"not null" json:"expires_at"`
	RedeemedAt    *time.Time      `json:"redeemed_at,omitempty"`
	CreatedAt     time.Time       `json:"-"`
	UpdatedAt     time.Time       `json:"-"`
}

// ExpiredAt reports whether the ticket is past its expiration at the
// given instant.
func (w *CardlessWithdrawal) ExpiredAt(now time.Time) bool {
	return now.After(w.ExpiresAt)
}

// EffectiveStatus returns the status as observed at the given
// instant, substituting the derived EXPIRED state for stale PENDING
// tickets.
func (w *CardlessWithdrawal) EffectiveStatus(now time.Time) string {
	if w.Status == WithdrawalStatusPending && w.ExpiredAt(now) {
		return WithdrawalStatusExpired
	}
	return w.Status
}
