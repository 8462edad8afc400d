package investment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/internal/plan"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"github.com/stackvest/stackvest-backend/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateWithDebit(inv *Investment) error {
	args := m.Called(inv)
	return args.Error(0)
}

func (m *MockRepository) GetByID(id string) (*Investment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Investment), args.Error(1)
}

func (m *MockRepository) ListByUser(userID string, status Status, limit, offset int) ([]Investment, int64, error) {
	args := m.Called(userID, status, limit, offset)
	return args.Get(0).([]Investment), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) DueInvestments(now time.Time) ([]Investment, error) {
	args := m.Called(now)
	return args.Get(0).([]Investment), args.Error(1)
}

func (m *MockRepository) Distribute(invID uuid.UUID, now time.Time) (*DistributionResult, error) {
	args := m.Called(invID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DistributionResult), args.Error(1)
}

func (m *MockRepository) MarkFailed(invID uuid.UUID, now time.Time) error {
	args := m.Called(invID, now)
	return args.Error(0)
}

func (m *MockRepository) Pause(id uuid.UUID) (*Investment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Investment), args.Error(1)
}

func (m *MockRepository) Resume(id uuid.UUID, next time.Time) (*Investment, error) {
	args := m.Called(id, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Investment), args.Error(1)
}

// MockPlanRepository is a mock implementation of plan.Repository.
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) GetActiveByID(id string) (*plan.Plan, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.Plan), args.Error(1)
}

func (m *MockPlanRepository) ListActive() ([]plan.Plan, error) {
	args := m.Called()
	return args.Get(0).([]plan.Plan), args.Error(1)
}

// MockPublisher is a mock implementation of EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishCascade(ctx context.Context, event events.CascadeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishNotification(ctx context.Context, event events.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func dailyPlan() *plan.Plan {
	return &plan.Plan{
		ID:        uuid.New(),
		Name:      "Growth 90",
		MinAmount: dec("100"),
		MaxAmount: dec("50000"),
		TotalRate: dec("25"),
		TermDays:  90,
		Cadence:   plan.CadenceDaily,
		Status:    plan.StatusActive,
	}
}

func TestCreate_DenormalizesPlanEconomics(t *testing.T) {
	repo := new(MockRepository)
	plans := new(MockPlanRepository)
	p := dailyPlan()

	plans.On("GetActiveByID", p.ID.String()).Return(p, nil)
	repo.On("CreateWithDebit", mock.AnythingOfType("*investment.Investment")).Return(nil)

	svc := NewService(repo, plans, nil)
	inv, err := svc.Create(context.Background(), uuid.New(), p.ID.String(), dec("10000"))

	assert.NoError(t, err)
	assert.True(t, inv.ExpectedProfit.Equal(dec("2500")), "expected profit was %s", inv.ExpectedProfit)
	assert.True(t, inv.TickPayout.Equal(dec("27.78")), "tick payout was %s", inv.TickPayout)
	assert.Equal(t, StatusActive, inv.Status)
	assert.NotNil(t, inv.NextProfitDate)
	assert.WithinDuration(t, inv.StartDate.Add(24*time.Hour), *inv.NextProfitDate, time.Second)
	repo.AssertExpectations(t)
}

func TestCreate_AmountOutsidePlanRange(t *testing.T) {
	repo := new(MockRepository)
	plans := new(MockPlanRepository)
	p := dailyPlan()
	plans.On("GetActiveByID", p.ID.String()).Return(p, nil)

	svc := NewService(repo, plans, nil)
	_, err := svc.Create(context.Background(), uuid.New(), p.ID.String(), dec("50"))

	assert.True(t, apperrors.IsValidation(err))
	repo.AssertNotCalled(t, "CreateWithDebit", mock.Anything)
}

func TestCreate_InsufficientFunds(t *testing.T) {
	repo := new(MockRepository)
	plans := new(MockPlanRepository)
	p := dailyPlan()

	plans.On("GetActiveByID", p.ID.String()).Return(p, nil)
	repo.On("CreateWithDebit", mock.Anything).Return(apperrors.ErrInsufficientFunds)

	svc := NewService(repo, plans, nil)
	_, err := svc.Create(context.Background(), uuid.New(), p.ID.String(), dec("10000"))

	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
}

func TestRunDistributions_Summary(t *testing.T) {
	repo := new(MockRepository)
	publisher := new(MockPublisher)
	now := time.Now()

	paid := Investment{ID: uuid.New(), UserID: uuid.New(), Status: StatusActive, Cadence: plan.CadenceDaily}
	raced := Investment{ID: uuid.New(), UserID: uuid.New(), Status: StatusActive, Cadence: plan.CadenceDaily}

	repo.On("DueInvestments", now).Return([]Investment{paid, raced}, nil)
	repo.On("Distribute", paid.ID, now).Return(&DistributionResult{
		Investment: &paid,
		Distribution: &ProfitDistribution{
			ID: uuid.New(), InvestmentID: paid.ID, Amount: dec("27.78"), Status: DistributionCompleted,
		},
	}, nil)
	// The second row was already handled by a concurrent run.
	repo.On("Distribute", raced.ID, now).Return(nil, apperrors.ErrConflict)
	publisher.On("PublishCascade", mock.Anything, mock.MatchedBy(func(ev events.CascadeEvent) bool {
		return ev.SourceType == "profit" && ev.Amount.Equal(dec("27.78"))
	})).Return(nil)

	svc := NewService(repo, new(MockPlanRepository), publisher)
	summary, err := svc.RunDistributions(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 2, summary.Due)
	assert.Equal(t, 1, summary.Distributed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	publisher.AssertExpectations(t)
}

func TestRunDistributions_FailureIsIsolated(t *testing.T) {
	repo := new(MockRepository)
	now := time.Now()

	bad := Investment{ID: uuid.New(), Status: StatusActive, Cadence: plan.CadenceDaily}
	good := Investment{ID: uuid.New(), UserID: uuid.New(), Status: StatusActive, Cadence: plan.CadenceDaily}

	repo.On("DueInvestments", now).Return([]Investment{bad, good}, nil)
	repo.On("Distribute", bad.ID, now).Return(nil, assert.AnError)
	repo.On("MarkFailed", bad.ID, now).Return(nil)
	repo.On("Distribute", good.ID, now).Return(&DistributionResult{
		Investment: &good,
		Distribution: &ProfitDistribution{
			ID: uuid.New(), InvestmentID: good.ID, Amount: dec("10.00"), Status: DistributionCompleted,
		},
	}, nil)

	svc := NewService(repo, new(MockPlanRepository), nil)
	summary, err := svc.RunDistributions(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Distributed)
	repo.AssertCalled(t, "MarkFailed", bad.ID, now)
}

func TestRunDistributions_FinalTickCompletes(t *testing.T) {
	repo := new(MockRepository)
	publisher := new(MockPublisher)
	now := time.Now()

	inv := Investment{
		ID: uuid.New(), UserID: uuid.New(), Status: StatusActive, Cadence: plan.CadenceDaily,
		ExpectedProfit: dec("2500"), EarnedProfit: dec("2472.22"), TickPayout: dec("27.78"),
	}
	done := inv
	done.EarnedProfit = dec("2500")
	done.Status = StatusCompleted
	done.NextProfitDate = nil

	repo.On("DueInvestments", now).Return([]Investment{inv}, nil)
	repo.On("Distribute", inv.ID, now).Return(&DistributionResult{
		Investment: &done,
		Distribution: &ProfitDistribution{
			ID: uuid.New(), InvestmentID: inv.ID, Amount: dec("27.78"), Status: DistributionCompleted,
		},
	}, nil)
	publisher.On("PublishCascade", mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishNotification", mock.Anything, mock.MatchedBy(func(ev events.NotificationEvent) bool {
		return ev.Kind == "investment.completed"
	})).Return(nil)

	svc := NewService(repo, new(MockPlanRepository), publisher)
	summary, err := svc.RunDistributions(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Distributed)
	assert.Equal(t, 1, summary.Completed)
	publisher.AssertExpectations(t)
}

func TestResume_RecomputesNextFromNow(t *testing.T) {
	repo := new(MockRepository)
	invID := uuid.New()
	paused := &Investment{ID: invID, Status: StatusPaused, IsPaused: true, Cadence: plan.CadenceWeekly}
	resumed := *paused
	resumed.Status = StatusActive
	resumed.IsPaused = false

	repo.On("GetByID", invID.String()).Return(paused, nil)
	repo.On("Resume", invID, mock.MatchedBy(func(next time.Time) bool {
		// One full weekly interval from now, not from the frozen date.
		return time.Until(next) > 6*24*time.Hour
	})).Return(&resumed, nil)

	svc := NewService(repo, new(MockPlanRepository), nil)
	inv, err := svc.Resume(context.Background(), invID.String())

	assert.NoError(t, err)
	assert.Equal(t, StatusActive, inv.Status)
	repo.AssertExpectations(t)
}

func TestPause_Conflict(t *testing.T) {
	repo := new(MockRepository)
	invID := uuid.New()
	repo.On("Pause", invID).Return(nil, apperrors.ErrConflict)

	svc := NewService(repo, new(MockPlanRepository), nil)
	_, err := svc.Pause(context.Background(), invID.String())

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}
