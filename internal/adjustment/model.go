package adjustment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDeduct Type = "deduct"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Adjustment is a manual, audited correction to an investment's earned
// profit. Rows are append-only; a mistake is reversed by a new compensating
// row, never by editing this one. Amount is the value actually applied after
// clamping, so the ledger sums to the wallet movement.
type Adjustment struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"id"`
	InvestmentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"investment_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Type         Type            `gorm:"not null" json:"type"`
	Reason       string          `gorm:"not null" json:"reason"`
	Status       Status          `gorm:"not null;default:active" json:"status"`
	CreatedBy    uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
}
