package adjustment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"github.com/stackvest/stackvest-backend/pkg/logger"
)

type Service struct {
	Repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{Repo: repo}
}

// Create validates and applies one manual adjustment. The repository clamps
// the amount, so the returned row carries what was actually applied.
func (s *Service) Create(ctx context.Context, investmentID string, amount decimal.Decimal, adjType Type, reason string, adminID uuid.UUID) (*Adjustment, error) {
	parsed, err := uuid.Parse(investmentID)
	if err != nil {
		return nil, apperrors.Validation("Invalid investment id")
	}
	if !amount.IsPositive() {
		return nil, apperrors.Validation("Amount must be positive")
	}
	if adjType != TypeAdd && adjType != TypeDeduct {
		return nil, apperrors.Validation("Type must be add or deduct")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.Validation("Reason is required")
	}

	adj := &Adjustment{
		InvestmentID: parsed,
		Amount:       amount,
		Type:         adjType,
		Reason:       reason,
		Status:       StatusActive,
		CreatedBy:    adminID,
	}
	if err := s.Repo.Apply(adj); err != nil {
		return nil, err
	}

	logger.Info("Adjustment applied", logger.Fields{
		logger.InvestmentKey: investmentID,
		"type":               string(adjType),
		"amount":             adj.Amount.String(),
		"admin":              adminID.String(),
	})
	return adj, nil
}
