package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is the single money account of a user. Balance only moves through a
// terminal transaction, a completed distribution, an adjustment or a
// commission credit; handlers never write it directly.
type Wallet struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Balance        decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	TotalDeposited decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_deposited"`
	TotalWithdrawn decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_withdrawn"`
	TotalInvested  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_invested"`
	TotalProfit    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_profit"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
