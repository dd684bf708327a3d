package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account statuses
const (
	AccountStatusActive    = "ACTIVE"
	AccountStatusCancelled = "CANCELLED"
)

// AccountNumberLength is the fixed length of an account number.
const AccountNumberLength = 18

// Account is a customer-owned balance-holding record. Balance and
// Status are only ever written by the ledger service.
type Account struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	Number     string          `gorm:"size:18;uniqueIndex;not null" json:"number"`
	CustomerID uint            `gorm:"index;not null" json:"customer_id"`
	Balance    decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"balance"`
	Status     string          `gorm:"not null;default:'ACTIVE'" json:"status"`
	OpenedAt   time.Time       `json:"opened_at"`
	UpdatedAt  time.Time       `json:"-"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	// Accounts always open empty, whatever the caller put in Balance.
	a.Balance = decimal.Zero
	if a.Status == "" {
		a.Status = AccountStatusActive
	}
	return nil
}

func (a *Account) Active() bool    { return a.Status == AccountStatusActive }
func (a *Account) Cancelled() bool { return a.Status == AccountStatusCancelled }
