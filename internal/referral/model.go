package referral

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Event source kinds the cascade reacts to.
const (
	SourceDeposit = "deposit"
	SourceProfit  = "profit"
)

// Referral is one edge of the referral graph: ancestor (referrer) at a given
// level above the referred user. The level-1 edge is registered at signup;
// deeper levels are derived by chain walking and materialized on first credit.
type Referral struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"id"`
	ReferrerID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_referral_edge" json:"referrer_id"`
	ReferredUserID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_referral_edge" json:"referred_user_id"`
	Level          int             `gorm:"not null;uniqueIndex:idx_referral_edge" json:"level"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"commission_rate"`
	TotalEarnings  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_earnings"`
	Status         Status          `gorm:"not null;default:pending" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CommissionCredit is the audit row behind a wallet credit produced by the
// cascade. The (source_type, source_id, level) index makes a replayed event
// unable to double-credit a level.
type CommissionCredit struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"id"`
	ReferralID    uuid.UUID       `gorm:"type:uuid;not null" json:"referral_id"`
	BeneficiaryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"beneficiary_id"`
	SourceType    string          `gorm:"not null;uniqueIndex:idx_commission_source" json:"source_type"`
	SourceID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_commission_source" json:"source_id"`
	Level         int             `gorm:"not null;uniqueIndex:idx_commission_source" json:"level"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CascadeRun marks one triggering event as processed. Inserted in the same
// transaction as the credits, so a retry either sees it or repeats cleanly.
type CascadeRun struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"id"`
	SourceType string    `gorm:"not null;uniqueIndex:idx_cascade_source" json:"source_type"`
	SourceID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cascade_source" json:"source_id"`
	Levels     int       `gorm:"not null" json:"levels"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlannedCredit is one level of a cascade computed from the rate schedule
// before any write happens.
type PlannedCredit struct {
	Level      int
	AncestorID uuid.UUID
	Amount     decimal.Decimal
	Rate       decimal.Decimal
}

// LevelBreakdown is the per-level read model for a referrer.
type LevelBreakdown struct {
	Level          int             `json:"level"`
	Referrals      int64           `json:"referrals"`
	TotalEarnings  decimal.Decimal `json:"total_earnings"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
}
