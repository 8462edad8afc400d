package investment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stackvest/stackvest-backend/internal/wallet"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DistributionResult is the outcome of one tick against one investment.
// Distribution is nil when the clamp hit zero and the investment was only
// marked completed.
type DistributionResult struct {
	Investment   *Investment
	Distribution *ProfitDistribution
}

type Repository interface {
	// CreateWithDebit inserts the investment and debits the wallet in one
	// transaction; purchase and funding commit together or not at all.
	CreateWithDebit(inv *Investment) error
	GetByID(id string) (*Investment, error)
	ListByUser(userID string, status Status, limit, offset int) ([]Investment, int64, error)

	// DueInvestments selects the batch for a tick: active, not paused,
	// next_profit_date elapsed.
	DueInvestments(now time.Time) ([]Investment, error)
	// Distribute applies one tick atomically under a row lock, re-checking
	// the selection predicate so a concurrent or repeated tick is a no-op.
	Distribute(invID uuid.UUID, now time.Time) (*DistributionResult, error)
	// MarkFailed records a failed tick for operator visibility; balances are
	// untouched and the investment stays due for the next run.
	MarkFailed(invID uuid.UUID, now time.Time) error

	Pause(id uuid.UUID) (*Investment, error)
	Resume(id uuid.UUID, next time.Time) (*Investment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWithDebit(inv *Investment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := wallet.Debit(tx, inv.UserID, inv.Amount, "total_invested"); err != nil {
			return err
		}
		return tx.Create(inv).Error
	})
}

func (r *repository) GetByID(id string) (*Investment, error) {
	var inv Investment
	if err := r.db.Where("id = ?", id).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repository) ListByUser(userID string, status Status, limit, offset int) ([]Investment, int64, error) {
	query := r.db.Model(&Investment{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var invs []Investment
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&invs).Error
	return invs, count, err
}

func (r *repository) DueInvestments(now time.Time) ([]Investment, error) {
	var due []Investment
	err := r.db.
		Where("status = ? AND is_paused = ? AND next_profit_date IS NOT NULL AND next_profit_date <= ?",
			StatusActive, false, now).
		Order("next_profit_date ASC").
		Find(&due).Error
	return due, err
}

func (r *repository) Distribute(invID uuid.UUID, now time.Time) (*DistributionResult, error) {
	var result DistributionResult
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var inv Investment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", invID).First(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		// Re-check under the lock: the predicate plus the advance below is
		// the sole guard against double payment.
		if inv.Status != StatusActive || inv.IsPaused ||
			inv.NextProfitDate == nil || inv.NextProfitDate.After(now) {
			return apperrors.ErrConflict
		}

		payout := inv.TickPayout
		if remaining := inv.Remaining(); payout.GreaterThan(remaining) {
			payout = remaining
		}

		if !payout.IsPositive() {
			// Cap reached; nothing to distribute.
			if err := tx.Model(&inv).Updates(map[string]interface{}{
				"status":           StatusCompleted,
				"next_profit_date": nil,
			}).Error; err != nil {
				return err
			}
			inv.Status = StatusCompleted
			inv.NextProfitDate = nil
			result.Investment = &inv
			return nil
		}

		dist := ProfitDistribution{
			InvestmentID:  inv.ID,
			Amount:        payout,
			Type:          inv.Cadence,
			Status:        DistributionPending,
			DistributedAt: now,
		}
		if err := tx.Create(&dist).Error; err != nil {
			return err
		}

		if err := wallet.Credit(tx, inv.UserID, payout, "total_profit"); err != nil {
			return err
		}

		earned := inv.EarnedProfit.Add(payout)
		next := inv.NextProfitDate.Add(inv.Cadence.Interval())
		updates := map[string]interface{}{
			"earned_profit":    earned,
			"next_profit_date": next,
		}
		if earned.GreaterThanOrEqual(inv.ExpectedProfit) || !now.Before(inv.EndDate) {
			updates["status"] = StatusCompleted
			updates["next_profit_date"] = nil
		}
		if err := tx.Model(&inv).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Model(&dist).Update("status", DistributionCompleted).Error; err != nil {
			return err
		}
		dist.Status = DistributionCompleted

		inv.EarnedProfit = earned
		if s, ok := updates["status"]; ok {
			inv.Status = s.(Status)
			inv.NextProfitDate = nil
		} else {
			inv.NextProfitDate = &next
		}
		result.Investment = &inv
		result.Distribution = &dist
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repository) MarkFailed(invID uuid.UUID, now time.Time) error {
	var inv Investment
	if err := r.db.Select("tick_payout", "cadence").Where("id = ?", invID).First(&inv).Error; err != nil {
		return err
	}
	dist := ProfitDistribution{
		InvestmentID:  invID,
		Amount:        inv.TickPayout,
		Type:          inv.Cadence,
		Status:        DistributionFailed,
		DistributedAt: now,
	}
	return r.db.Create(&dist).Error
}

func (r *repository) Pause(id uuid.UUID) (*Investment, error) {
	res := r.db.Model(&Investment{}).
		Where("id = ? AND status = ?", id, StatusActive).
		Updates(map[string]interface{}{"status": StatusPaused, "is_paused": true})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return r.conflictOrNotFound(id)
	}
	return r.GetByID(id.String())
}

func (r *repository) Resume(id uuid.UUID, next time.Time) (*Investment, error) {
	res := r.db.Model(&Investment{}).
		Where("id = ? AND status = ?", id, StatusPaused).
		Updates(map[string]interface{}{
			"status":           StatusActive,
			"is_paused":        false,
			"next_profit_date": next,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return r.conflictOrNotFound(id)
	}
	return r.GetByID(id.String())
}

func (r *repository) conflictOrNotFound(id uuid.UUID) (*Investment, error) {
	var count int64
	if err := r.db.Model(&Investment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperrors.ErrNotFound
	}
	return nil, apperrors.ErrConflict
}
