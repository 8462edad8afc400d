package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeDeposit  Type = "deposit"
	TypeWithdraw Type = "withdraw"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
)

// Transaction is one deposit or withdrawal attempt. Rows are never hard
// deleted; a terminal row is immutable.
type Transaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Reference     string          `gorm:"uniqueIndex;not null" json:"reference"`
	Type          Type            `gorm:"not null;index" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Fee           decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"fee"`
	NetAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"net_amount"`
	Status        Status          `gorm:"not null;default:pending;index" json:"status"`
	GatewayID     uuid.UUID       `gorm:"type:uuid;not null" json:"gateway_id"`
	ProofRef      string          `json:"proof_ref,omitempty"`
	PayoutDetails string          `json:"payout_details,omitempty"`
	ProcessedBy   *uuid.UUID      `gorm:"type:uuid" json:"processed_by,omitempty"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	AdminNote     string          `json:"admin_note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Terminal reports whether no further state transition is permitted.
func (t *Transaction) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusRejected || t.Status == StatusCancelled
}
