package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is the immutable record of one executed account-to-account
// movement. It is appended in the same transaction that moves the
// balances and never updated afterwards.
type Transfer struct {
	ID                uint            `gorm:"primarykey" json:"id"`
	Reference         string          `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	SourceNumber      string          `gorm:"size:18;index;not null" json:"source_number"`
	DestinationNumber string          `gorm:"size:18;index;not null" json:"destination_number"`
	Amount            decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"amount"`
	ExecutedAt        time.Time       `gorm:"not null" json:"executed_at"`
	Metadata          JSON            `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt         time.Time       `json:"-"`
}
