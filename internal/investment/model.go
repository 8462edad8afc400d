package investment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/internal/plan"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Investment is one accepted plan subscription. Plan economics are copied in
// at purchase so later plan edits never change a running investment.
type Investment struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"plan_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Cadence        plan.Cadence    `gorm:"not null" json:"cadence"`
	TermDays       int             `gorm:"not null" json:"term_days"`
	TickPayout     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"tick_payout"`
	ExpectedProfit decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"expected_profit"`
	EarnedProfit   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"earned_profit"`
	Status         Status          `gorm:"not null;default:active;index" json:"status"`
	IsPaused       bool            `gorm:"not null;default:false" json:"is_paused"`
	NextProfitDate *time.Time      `gorm:"index" json:"next_profit_date,omitempty"`
	StartDate      time.Time       `gorm:"not null" json:"start_date"`
	EndDate        time.Time       `gorm:"not null" json:"end_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Remaining is the headroom under the cap.
func (i *Investment) Remaining() decimal.Decimal {
	return i.ExpectedProfit.Sub(i.EarnedProfit)
}

type DistributionStatus string

const (
	DistributionPending   DistributionStatus = "pending"
	DistributionCompleted DistributionStatus = "completed"
	DistributionFailed    DistributionStatus = "failed"
)

// ProfitDistribution is one scheduler tick applied to an investment.
// Append-only; only the status may move, pending to completed or failed.
type ProfitDistribution struct {
	ID            uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"id"`
	InvestmentID  uuid.UUID          `gorm:"type:uuid;not null;index" json:"investment_id"`
	Amount        decimal.Decimal    `gorm:"type:decimal(20,2);not null" json:"amount"`
	Type          plan.Cadence       `gorm:"not null" json:"type"`
	Status        DistributionStatus `gorm:"not null;default:pending" json:"status"`
	DistributedAt time.Time          `gorm:"not null;index" json:"distributed_at"`
	CreatedAt     time.Time          `json:"created_at"`
}
