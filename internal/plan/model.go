package plan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// Interval is the wall-clock gap between two profit distributions.
func (c Cadence) Interval() time.Duration {
	switch c {
	case CadenceWeekly:
		return 7 * 24 * time.Hour
	case CadenceMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

func (c Cadence) Days() int {
	switch c {
	case CadenceWeekly:
		return 7
	case CadenceMonthly:
		return 30
	default:
		return 1
	}
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Plan is an investment product: how much can be invested, the total return
// over the term, and the cadence profit is paid at.
type Plan struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"id"`
	Name      string          `gorm:"uniqueIndex;not null" json:"name"`
	MinAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"min_amount"`
	MaxAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"max_amount"`
	TotalRate decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"total_rate"`
	TermDays  int             `gorm:"not null" json:"term_days"`
	Cadence   Cadence         `gorm:"not null;default:daily" json:"cadence"`
	Status    Status          `gorm:"not null;default:active" json:"status"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// Ticks is the number of distributions over the full term.
func (p *Plan) Ticks() int64 {
	ticks := int64(p.TermDays / p.Cadence.Days())
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// ExpectedProfit is the term-scaled total profit for an invested amount.
func (p *Plan) ExpectedProfit(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.TotalRate).Div(decimal.NewFromInt(100)).Round(2)
}

// TickPayout is the per-cadence payout before clamping against the cap.
func (p *Plan) TickPayout(amount decimal.Decimal) decimal.Decimal {
	return p.ExpectedProfit(amount).Div(decimal.NewFromInt(p.Ticks())).Round(2)
}
