package gateway

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func testGateway() PaymentGateway {
	return PaymentGateway{
		Name:            "Bank Transfer",
		DepositEnabled:  true,
		WithdrawEnabled: true,
		MinDeposit:      dec("10"),
		MaxDeposit:      dec("100000"),
		MinWithdraw:     dec("50"),
		MaxWithdraw:     dec("20000"),
		DepositFee:      dec("2"),
		DepositFeeType:  FeePercent,
		WithdrawFee:     dec("5"),
		WithdrawFeeType: FeeFixed,
	}
}

func TestValidateDeposit_PercentFee(t *testing.T) {
	g := testGateway()

	fee, err := g.ValidateDeposit(dec("1000"))

	assert.NoError(t, err)
	assert.True(t, fee.Equal(dec("20")), "fee was %s", fee)
}

func TestValidateDeposit_OutOfRange(t *testing.T) {
	g := testGateway()

	_, err := g.ValidateDeposit(dec("5"))
	assert.True(t, apperrors.IsValidation(err))

	_, err = g.ValidateDeposit(dec("100001"))
	assert.True(t, apperrors.IsValidation(err))
}

func TestValidateDeposit_Disabled(t *testing.T) {
	g := testGateway()
	g.DepositEnabled = false

	_, err := g.ValidateDeposit(dec("1000"))
	assert.True(t, apperrors.IsValidation(err))
}

func TestValidateWithdrawal_FixedFee(t *testing.T) {
	g := testGateway()

	fee, err := g.ValidateWithdrawal(dec("500"))

	assert.NoError(t, err)
	assert.True(t, fee.Equal(dec("5")))
}

func TestComputeFee_Rounding(t *testing.T) {
	// 2% of 333.33 is 6.6666, charged as 6.67.
	fee := computeFee(dec("333.33"), dec("2"), FeePercent)
	assert.True(t, fee.Equal(dec("6.67")), "fee was %s", fee)
}
