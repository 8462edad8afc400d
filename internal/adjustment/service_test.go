package adjustment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Apply(adj *Adjustment) error {
	args := m.Called(adj)
	return args.Error(0)
}

func (m *MockRepository) ListByInvestment(investmentID string, limit, offset int) ([]Adjustment, int64, error) {
	args := m.Called(investmentID, limit, offset)
	return args.Get(0).([]Adjustment), args.Get(1).(int64), args.Error(2)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestCreate_RequiresReason(t *testing.T) {
	svc := NewService(new(MockRepository))
	_, err := svc.Create(context.Background(), uuid.NewString(), dec("100"), TypeAdd, "   ", uuid.New())
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreate_RejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(new(MockRepository))
	_, err := svc.Create(context.Background(), uuid.NewString(), dec("-5"), TypeDeduct, "typo fix", uuid.New())
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreate_RejectsUnknownType(t *testing.T) {
	svc := NewService(new(MockRepository))
	_, err := svc.Create(context.Background(), uuid.NewString(), dec("5"), Type("bonus"), "reason", uuid.New())
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreate_RejectsInvalidInvestmentID(t *testing.T) {
	svc := NewService(new(MockRepository))
	_, err := svc.Create(context.Background(), "nope", dec("5"), TypeAdd, "reason", uuid.New())
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreate_ReturnsClampedAmount(t *testing.T) {
	repo := new(MockRepository)
	adminID := uuid.New()
	invID := uuid.New()

	// The repository clamps against the cap under the row lock; the caller
	// sees what was actually applied.
	repo.On("Apply", mock.AnythingOfType("*adjustment.Adjustment")).Run(func(args mock.Arguments) {
		adj := args.Get(0).(*Adjustment)
		adj.Amount = dec("27.78")
	}).Return(nil)

	svc := NewService(repo)
	adj, err := svc.Create(context.Background(), invID.String(), dec("100"), TypeAdd, "promo credit", adminID)

	assert.NoError(t, err)
	assert.True(t, adj.Amount.Equal(dec("27.78")))
	assert.Equal(t, adminID, adj.CreatedBy)
	assert.Equal(t, StatusActive, adj.Status)
	repo.AssertExpectations(t)
}

func TestCreate_NoEffect(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Apply", mock.Anything).Return(apperrors.Validation("Adjustment has no effect"))

	svc := NewService(repo)
	_, err := svc.Create(context.Background(), uuid.NewString(), dec("100"), TypeAdd, "already at cap", uuid.New())

	assert.True(t, apperrors.IsValidation(err))
}
