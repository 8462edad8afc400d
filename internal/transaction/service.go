package transaction

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/internal/gateway"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"github.com/stackvest/stackvest-backend/pkg/events"
	"github.com/stackvest/stackvest-backend/pkg/id"
	"github.com/stackvest/stackvest-backend/pkg/logger"
)

// EventPublisher decouples the workflow from the redis client. Publish
// failures are logged, never returned: the ledger write already committed.
type EventPublisher interface {
	PublishCascade(ctx context.Context, event events.CascadeEvent) error
	PublishNotification(ctx context.Context, event events.NotificationEvent) error
}

type Service struct {
	Repo      Repository
	Gateways  gateway.Repository
	Publisher EventPublisher
}

func NewService(repo Repository, gateways gateway.Repository, publisher EventPublisher) *Service {
	return &Service{Repo: repo, Gateways: gateways, Publisher: publisher}
}

// CreateDeposit validates against the gateway's limits and fee schedule and
// registers a pending deposit. No wallet movement happens until approval.
func (s *Service) CreateDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, gatewayID, proofRef string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.Validation("Amount must be positive")
	}

	gw, err := s.Gateways.GetByID(gatewayID)
	if err != nil {
		return nil, err
	}

	fee, err := gw.ValidateDeposit(amount)
	if err != nil {
		return nil, err
	}

	txn := &Transaction{
		UserID:    userID,
		Reference: id.Reference("dep"),
		Type:      TypeDeposit,
		Amount:    amount,
		Fee:       fee,
		NetAmount: amount.Sub(fee),
		Status:    StatusPending,
		GatewayID: gw.ID,
		ProofRef:  proofRef,
	}

	if err := s.Repo.Create(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// CreateWithdrawal validates limits and balance, then reserves the amount out
// of the wallet atomically with the row insert. The reservation is released on
// reject/cancel and finalized on completion.
func (s *Service) CreateWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, gatewayID, payoutDetails string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.Validation("Amount must be positive")
	}
	if strings.TrimSpace(payoutDetails) == "" {
		return nil, apperrors.Validation("Payout details are required")
	}

	gw, err := s.Gateways.GetByID(gatewayID)
	if err != nil {
		return nil, err
	}

	fee, err := gw.ValidateWithdrawal(amount)
	if err != nil {
		return nil, err
	}

	txn := &Transaction{
		UserID:        userID,
		Reference:     id.Reference("wd"),
		Type:          TypeWithdraw,
		Amount:        amount,
		Fee:           fee,
		NetAmount:     amount.Sub(fee),
		Status:        StatusPending,
		GatewayID:     gw.ID,
		PayoutDetails: payoutDetails,
	}

	if err := s.Repo.CreateWithReservation(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// Approve drives a reviewable transaction to completed. Deposits credit the
// wallet and emit a cascade event for the depositor's upline; withdrawals
// finalize their reservation.
func (s *Service) Approve(ctx context.Context, txnID string, adminID uuid.UUID, note string) (*Transaction, error) {
	current, err := s.Repo.GetByID(txnID)
	if err != nil {
		return nil, err
	}

	switch current.Type {
	case TypeDeposit:
		txn, firstDeposit, err := s.Repo.CompleteDeposit(current.ID, adminID, note)
		if err != nil {
			return nil, err
		}
		s.publishCascade(ctx, txn, firstDeposit)
		s.notify(ctx, txn)
		return txn, nil
	case TypeWithdraw:
		txn, err := s.Repo.CompleteWithdrawal(current.ID, adminID, note)
		if err != nil {
			return nil, err
		}
		s.notify(ctx, txn)
		return txn, nil
	default:
		return nil, apperrors.Validation("Unknown transaction type")
	}
}

// Reject drives a reviewable transaction to rejected; a reason is mandatory.
func (s *Service) Reject(ctx context.Context, txnID string, adminID uuid.UUID, reason string) (*Transaction, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.Validation("Rejection reason is required")
	}

	current, err := s.Repo.GetByID(txnID)
	if err != nil {
		return nil, err
	}

	txn, err := s.Repo.Reject(current.ID, adminID, reason)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, txn)
	return txn, nil
}

// Cancel is user-initiated and only valid while the transaction is pending.
func (s *Service) Cancel(ctx context.Context, txnID string, userID uuid.UUID) (*Transaction, error) {
	parsed, err := id.IsValidUUID(txnID)
	if err != nil {
		return nil, apperrors.Validation("Invalid transaction id")
	}

	txn, err := s.Repo.Cancel(parsed, userID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, txn)
	return txn, nil
}

// StartExpirySweep cancels pending deposits older than the configured window.
// A zero window disables the sweep; the state machine is untouched either way.
func (s *Service) StartExpirySweep(expiryHours int) {
	if expiryHours <= 0 {
		return
	}
	logger.Info("Starting deposit expiry sweep", logger.Fields{"expiry_hours": expiryHours})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-time.Duration(expiryHours) * time.Hour)
			expired, err := s.Repo.ExpirePendingDeposits(cutoff)
			if err != nil {
				logger.Error("Deposit expiry sweep failed", logger.WithError(err))
				continue
			}
			if expired > 0 {
				logger.Info("Expired stale pending deposits", logger.Fields{"count": expired})
			}
		}
	}()
}

func (s *Service) publishCascade(ctx context.Context, txn *Transaction, firstDeposit bool) {
	if s.Publisher == nil {
		return
	}
	event := events.CascadeEvent{
		SourceType:   "deposit",
		SourceID:     txn.ID.String(),
		UserID:       txn.UserID.String(),
		Amount:       txn.NetAmount,
		FirstDeposit: firstDeposit,
		OccurredAt:   time.Now(),
	}
	if err := s.Publisher.PublishCascade(ctx, event); err != nil {
		logger.Error("Failed to publish cascade event", logger.Fields{
			"reference": txn.Reference,
			"error":     err.Error(),
		})
	}
}

func (s *Service) notify(ctx context.Context, txn *Transaction) {
	if s.Publisher == nil {
		return
	}
	event := events.NotificationEvent{
		Kind:      "transaction." + string(txn.Type),
		UserID:    txn.UserID.String(),
		Reference: txn.Reference,
		Status:    string(txn.Status),
		Timestamp: time.Now(),
	}
	if err := s.Publisher.PublishNotification(ctx, event); err != nil {
		logger.Warn("Failed to publish notification event", logger.Fields{
			"reference": txn.Reference,
			"error":     err.Error(),
		})
	}
}
