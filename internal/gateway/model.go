package gateway

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
)

type FeeType string

const (
	FeeFixed   FeeType = "fixed"
	FeePercent FeeType = "percent"
)

// PaymentGateway holds the fee and limit parameters the transaction workflow
// consumes. Rows are operator-managed configuration, not user data.
type PaymentGateway struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"id"`
	Name            string          `gorm:"not null" json:"name"`
	Code            string          `gorm:"uniqueIndex;not null" json:"code"`
	DepositEnabled  bool            `gorm:"not null;default:true" json:"deposit_enabled"`
	WithdrawEnabled bool            `gorm:"not null;default:true" json:"withdraw_enabled"`
	MinDeposit      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"min_deposit"`
	MaxDeposit      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"max_deposit"`
	MinWithdraw     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"min_withdraw"`
	MaxWithdraw     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"max_withdraw"`
	DepositFee      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"deposit_fee"`
	DepositFeeType  FeeType         `gorm:"not null;default:fixed" json:"deposit_fee_type"`
	WithdrawFee     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"withdraw_fee"`
	WithdrawFeeType FeeType         `gorm:"not null;default:fixed" json:"withdraw_fee_type"`
	Channels        pq.StringArray  `gorm:"type:text[]" json:"channels"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ValidateDeposit checks the gateway accepts a deposit of this amount and
// returns the fee to charge.
func (g *PaymentGateway) ValidateDeposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if !g.DepositEnabled {
		return decimal.Zero, apperrors.Validation(fmt.Sprintf("Gateway %s is disabled for deposits", g.Name))
	}
	if amount.LessThan(g.MinDeposit) || amount.GreaterThan(g.MaxDeposit) {
		return decimal.Zero, apperrors.Validation(fmt.Sprintf(
			"Deposit amount must be between %s and %s", g.MinDeposit, g.MaxDeposit))
	}
	return computeFee(amount, g.DepositFee, g.DepositFeeType), nil
}

// ValidateWithdrawal checks the withdrawal limits and returns the fee.
func (g *PaymentGateway) ValidateWithdrawal(amount decimal.Decimal) (decimal.Decimal, error) {
	if !g.WithdrawEnabled {
		return decimal.Zero, apperrors.Validation(fmt.Sprintf("Gateway %s is disabled for withdrawals", g.Name))
	}
	if amount.LessThan(g.MinWithdraw) || amount.GreaterThan(g.MaxWithdraw) {
		return decimal.Zero, apperrors.Validation(fmt.Sprintf(
			"Withdrawal amount must be between %s and %s", g.MinWithdraw, g.MaxWithdraw))
	}
	return computeFee(amount, g.WithdrawFee, g.WithdrawFeeType), nil
}

func computeFee(amount, fee decimal.Decimal, feeType FeeType) decimal.Decimal {
	if feeType == FeePercent {
		return amount.Mul(fee).Div(decimal.NewFromInt(100)).Round(2)
	}
	return fee.Round(2)
}
