package investment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/internal/plan"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"github.com/stackvest/stackvest-backend/pkg/events"
	"github.com/stackvest/stackvest-backend/pkg/logger"
)

// EventPublisher decouples the scheduler from the redis client. Publish
// failures are logged, never returned: the distribution already committed.
type EventPublisher interface {
	PublishCascade(ctx context.Context, event events.CascadeEvent) error
	PublishNotification(ctx context.Context, event events.NotificationEvent) error
}

type Service struct {
	Repo      Repository
	Plans     plan.Repository
	Publisher EventPublisher

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(repo Repository, plans plan.Repository, publisher EventPublisher) *Service {
	return &Service{
		Repo:      repo,
		Plans:     plans,
		Publisher: publisher,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// Summary is the batch result of one scheduler run.
type Summary struct {
	Due         int `json:"due"`
	Distributed int `json:"distributed"`
	Completed   int `json:"completed"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}

// Create purchases a plan for the user. The plan's economics are validated,
// denormalized onto the investment, and the wallet is debited atomically with
// the insert.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, planID string, amount decimal.Decimal) (*Investment, error) {
	if !amount.IsPositive() {
		return nil, apperrors.Validation("Amount must be positive")
	}

	p, err := s.Plans.GetActiveByID(planID)
	if err != nil {
		return nil, err
	}
	if amount.LessThan(p.MinAmount) || amount.GreaterThan(p.MaxAmount) {
		return nil, apperrors.Validation("Amount is outside the plan's range")
	}

	now := time.Now()
	next := now.Add(p.Cadence.Interval())
	inv := &Investment{
		UserID:         userID,
		PlanID:         p.ID,
		Amount:         amount,
		Cadence:        p.Cadence,
		TermDays:       p.TermDays,
		TickPayout:     p.TickPayout(amount),
		ExpectedProfit: p.ExpectedProfit(amount),
		EarnedProfit:   decimal.Zero,
		Status:         StatusActive,
		NextProfitDate: &next,
		StartDate:      now,
		EndDate:        now.Add(time.Duration(p.TermDays) * 24 * time.Hour),
	}

	if err := s.Repo.CreateWithDebit(inv); err != nil {
		return nil, err
	}

	logger.Info("Investment created", logger.Fields{
		logger.InvestmentKey: inv.ID.String(),
		logger.UserIdKey:     userID.String(),
		"plan":               p.Name,
		"amount":             amount.String(),
	})
	return inv, nil
}

// Pause freezes an active investment. Due ticks accumulate no backlog: the
// next payout date stays put and is recomputed on resume.
func (s *Service) Pause(ctx context.Context, invID string) (*Investment, error) {
	parsed, err := uuid.Parse(invID)
	if err != nil {
		return nil, apperrors.Validation("Invalid investment id")
	}
	inv, err := s.Repo.Pause(parsed)
	if err != nil {
		return nil, err
	}
	logger.Info("Investment paused", logger.Fields{logger.InvestmentKey: inv.ID.String()})
	return inv, nil
}

// Resume reactivates a paused investment with the next payout one full
// interval from now, so the pause never produces a burst of catch-up ticks.
func (s *Service) Resume(ctx context.Context, invID string) (*Investment, error) {
	parsed, err := uuid.Parse(invID)
	if err != nil {
		return nil, apperrors.Validation("Invalid investment id")
	}
	next := time.Now().Add(plan.CadenceDaily.Interval())
	current, err := s.Repo.GetByID(invID)
	if err == nil {
		next = time.Now().Add(current.Cadence.Interval())
	}
	inv, err := s.Repo.Resume(parsed, next)
	if err != nil {
		return nil, err
	}
	logger.Info("Investment resumed", logger.Fields{logger.InvestmentKey: inv.ID.String()})
	return inv, nil
}

// RunDistributions pays every due investment once. Failures are isolated per
// investment; one bad row never aborts the batch.
func (s *Service) RunDistributions(ctx context.Context, now time.Time) (*Summary, error) {
	due, err := s.Repo.DueInvestments(now)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Due: len(due)}
	for i := range due {
		inv := &due[i]
		result, err := s.distributeOne(inv.ID, now)
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			// Another run got there first, or the row changed since selection.
			summary.Skipped++
		case err != nil:
			summary.Failed++
			logger.Error("Profit distribution failed", logger.Fields{
				logger.InvestmentKey: inv.ID.String(),
				logger.ErrorKey:      err.Error(),
			})
			if markErr := s.Repo.MarkFailed(inv.ID, now); markErr != nil {
				logger.Error("Failed to record failed distribution", logger.Fields{
					logger.InvestmentKey: inv.ID.String(),
					logger.ErrorKey:      markErr.Error(),
				})
			}
		default:
			if result.Distribution != nil {
				summary.Distributed++
				s.publishProfit(ctx, result)
			}
			if result.Investment.Status == StatusCompleted {
				summary.Completed++
				s.notifyCompleted(ctx, result.Investment)
			}
		}
	}

	logger.Info("Distribution run finished", logger.Fields{
		"due":         summary.Due,
		"distributed": summary.Distributed,
		"completed":   summary.Completed,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
	})
	return summary, nil
}

// distributeOne serializes ticks per investment in-process before taking the
// row lock, so overlapping runs queue instead of piling onto the database.
func (s *Service) distributeOne(invID uuid.UUID, now time.Time) (*DistributionResult, error) {
	lock := s.lockFor(invID)
	lock.Lock()
	defer lock.Unlock()
	return s.Repo.Distribute(invID, now)
}

func (s *Service) lockFor(invID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[invID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[invID] = lock
	}
	return lock
}

func (s *Service) publishProfit(ctx context.Context, result *DistributionResult) {
	if s.Publisher == nil {
		return
	}
	event := events.CascadeEvent{
		SourceType: "profit",
		SourceID:   result.Distribution.ID.String(),
		UserID:     result.Investment.UserID.String(),
		Amount:     result.Distribution.Amount,
		OccurredAt: time.Now(),
	}
	if err := s.Publisher.PublishCascade(ctx, event); err != nil {
		logger.Error("Failed to publish cascade event", logger.Fields{
			logger.InvestmentKey: result.Investment.ID.String(),
			logger.ErrorKey:      err.Error(),
		})
	}
}

func (s *Service) notifyCompleted(ctx context.Context, inv *Investment) {
	if s.Publisher == nil {
		return
	}
	event := events.NotificationEvent{
		Kind:      "investment.completed",
		UserID:    inv.UserID.String(),
		Reference: inv.ID.String(),
		Status:    string(inv.Status),
		Timestamp: time.Now(),
	}
	if err := s.Publisher.PublishNotification(ctx, event); err != nil {
		logger.Warn("Failed to publish notification event", logger.Fields{
			logger.InvestmentKey: inv.ID.String(),
			logger.ErrorKey:      err.Error(),
		})
	}
}
