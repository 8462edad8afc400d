package referral

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// chainLookup resolves referrers from a fixed parent map.
type chainLookup struct {
	parents map[uuid.UUID]uuid.UUID
}

func (c *chainLookup) ReferrerOf(userID uuid.UUID) (*uuid.UUID, error) {
	parent, ok := c.parents[userID]
	if !ok {
		return nil, nil
	}
	return &parent, nil
}

// MockCascadeRepo is a mock implementation of Repository.
type MockCascadeRepo struct {
	mock.Mock
}

func (m *MockCascadeRepo) CreateEdge(edge *Referral) error {
	args := m.Called(edge)
	return args.Error(0)
}

func (m *MockCascadeRepo) RunExists(sourceType string, sourceID uuid.UUID) (bool, error) {
	args := m.Called(sourceType, sourceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCascadeRepo) ApplyCascade(ev Event, credits []PlannedCredit) error {
	args := m.Called(ev, credits)
	return args.Error(0)
}

func (m *MockCascadeRepo) ListByReferrer(referrerID string, level int, limit, offset int) ([]Referral, int64, error) {
	args := m.Called(referrerID, level, limit, offset)
	return args.Get(0).([]Referral), args.Get(1).(int64), args.Error(2)
}

func (m *MockCascadeRepo) BreakdownByReferrer(referrerID string, rates []decimal.Decimal) ([]LevelBreakdown, error) {
	args := m.Called(referrerID, rates)
	return args.Get(0).([]LevelBreakdown), args.Error(1)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func schedule() []decimal.Decimal {
	return []decimal.Decimal{dec("8"), dec("4"), dec("3"), dec("2"), dec("1"), dec("1"), dec("1")}
}

func TestPlan_DepthThreeChain(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	lookup := &chainLookup{parents: map[uuid.UUID]uuid.UUID{c: b, b: a}}

	cascade := NewCascade(lookup, new(MockCascadeRepo), schedule(), false)
	credits, err := cascade.Plan(c, dec("1000"))

	assert.NoError(t, err)
	assert.Len(t, credits, 2)
	assert.Equal(t, 1, credits[0].Level)
	assert.Equal(t, b, credits[0].AncestorID)
	assert.True(t, credits[0].Amount.Equal(dec("80")), "level 1 was %s", credits[0].Amount)
	assert.Equal(t, 2, credits[1].Level)
	assert.Equal(t, a, credits[1].AncestorID)
	assert.True(t, credits[1].Amount.Equal(dec("40")), "level 2 was %s", credits[1].Amount)
}

func TestPlan_StopsAtSevenLevels(t *testing.T) {
	// Ten ancestors; only the schedule's seven levels get credits.
	parents := make(map[uuid.UUID]uuid.UUID)
	user := uuid.New()
	current := user
	for i := 0; i < 10; i++ {
		parent := uuid.New()
		parents[current] = parent
		current = parent
	}

	cascade := NewCascade(&chainLookup{parents: parents}, new(MockCascadeRepo), schedule(), false)
	credits, err := cascade.Plan(user, dec("1000"))

	assert.NoError(t, err)
	assert.Len(t, credits, 7)
	assert.Equal(t, 7, credits[6].Level)
	assert.True(t, credits[6].Amount.Equal(dec("10")))
}

func TestPlan_CycleIsCutOff(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	lookup := &chainLookup{parents: map[uuid.UUID]uuid.UUID{a: b, b: a}}

	cascade := NewCascade(lookup, new(MockCascadeRepo), schedule(), false)
	credits, err := cascade.Plan(a, dec("1000"))

	assert.NoError(t, err)
	assert.Len(t, credits, 1)
}

func TestApply_FirstDeposit(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	lookup := &chainLookup{parents: map[uuid.UUID]uuid.UUID{c: b, b: a}}
	repo := new(MockCascadeRepo)

	ev := Event{SourceType: SourceDeposit, SourceID: uuid.New(), UserID: c, Amount: dec("1000"), FirstDeposit: true}
	repo.On("RunExists", SourceDeposit, ev.SourceID).Return(false, nil)
	repo.On("ApplyCascade", ev, mock.MatchedBy(func(credits []PlannedCredit) bool {
		return len(credits) == 2 && credits[0].Amount.Equal(dec("80")) && credits[1].Amount.Equal(dec("40"))
	})).Return(nil)

	cascade := NewCascade(lookup, repo, schedule(), false)
	assert.NoError(t, cascade.Apply(ev))
	repo.AssertExpectations(t)
}

func TestApply_RepeatDepositSkippedByDefault(t *testing.T) {
	repo := new(MockCascadeRepo)
	cascade := NewCascade(&chainLookup{}, repo, schedule(), false)

	ev := Event{SourceType: SourceDeposit, SourceID: uuid.New(), UserID: uuid.New(), Amount: dec("1000"), FirstDeposit: false}
	assert.NoError(t, cascade.Apply(ev))
	repo.AssertNotCalled(t, "ApplyCascade", mock.Anything, mock.Anything)
}

func TestApply_RepeatDepositWhenEnabled(t *testing.T) {
	b, c := uuid.New(), uuid.New()
	lookup := &chainLookup{parents: map[uuid.UUID]uuid.UUID{c: b}}
	repo := new(MockCascadeRepo)

	ev := Event{SourceType: SourceDeposit, SourceID: uuid.New(), UserID: c, Amount: dec("500"), FirstDeposit: false}
	repo.On("RunExists", SourceDeposit, ev.SourceID).Return(false, nil)
	repo.On("ApplyCascade", ev, mock.Anything).Return(nil)

	cascade := NewCascade(lookup, repo, schedule(), true)
	assert.NoError(t, cascade.Apply(ev))
	repo.AssertExpectations(t)
}

func TestApply_ProfitEvent(t *testing.T) {
	b, c := uuid.New(), uuid.New()
	lookup := &chainLookup{parents: map[uuid.UUID]uuid.UUID{c: b}}
	repo := new(MockCascadeRepo)

	ev := Event{SourceType: SourceProfit, SourceID: uuid.New(), UserID: c, Amount: dec("27.78")}
	repo.On("RunExists", SourceProfit, ev.SourceID).Return(false, nil)
	repo.On("ApplyCascade", ev, mock.MatchedBy(func(credits []PlannedCredit) bool {
		// 8% of 27.78, rounded.
		return len(credits) == 1 && credits[0].Amount.Equal(dec("2.22"))
	})).Return(nil)

	cascade := NewCascade(lookup, repo, schedule(), false)
	assert.NoError(t, cascade.Apply(ev))
	repo.AssertExpectations(t)
}

func TestApply_ReplayIsNoOp(t *testing.T) {
	repo := new(MockCascadeRepo)
	ev := Event{SourceType: SourceProfit, SourceID: uuid.New(), UserID: uuid.New(), Amount: dec("100")}
	repo.On("RunExists", SourceProfit, ev.SourceID).Return(true, nil)

	cascade := NewCascade(&chainLookup{}, repo, schedule(), false)
	assert.NoError(t, cascade.Apply(ev))
	repo.AssertNotCalled(t, "ApplyCascade", mock.Anything, mock.Anything)
}

func TestApply_UnknownSourceType(t *testing.T) {
	cascade := NewCascade(&chainLookup{}, new(MockCascadeRepo), schedule(), false)
	err := cascade.Apply(Event{SourceType: "bonus", SourceID: uuid.New(), UserID: uuid.New(), Amount: dec("10")})
	assert.Error(t, err)
}

func TestApply_RootUserNoCredits(t *testing.T) {
	repo := new(MockCascadeRepo)
	ev := Event{SourceType: SourceProfit, SourceID: uuid.New(), UserID: uuid.New(), Amount: dec("100")}
	repo.On("RunExists", SourceProfit, ev.SourceID).Return(false, nil)
	repo.On("ApplyCascade", ev, mock.MatchedBy(func(credits []PlannedCredit) bool {
		return len(credits) == 0
	})).Return(nil)

	cascade := NewCascade(&chainLookup{}, repo, schedule(), false)
	assert.NoError(t, cascade.Apply(ev))
	repo.AssertExpectations(t)
}
