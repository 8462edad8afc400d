package adjustment

import (
	"errors"

	"github.com/stackvest/stackvest-backend/internal/investment"
	"github.com/stackvest/stackvest-backend/internal/wallet"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Apply locks the investment row, clamps the requested amount against
	// the cap (add) or the earned floor (deduct), and commits the adjustment
	// row, the investment update and the wallet move together.
	Apply(adj *Adjustment) error
	ListByInvestment(investmentID string, limit, offset int) ([]Adjustment, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Apply(adj *Adjustment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var inv investment.Investment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", adj.InvestmentID).First(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		applied := adj.Amount
		switch adj.Type {
		case TypeAdd:
			if headroom := inv.Remaining(); applied.GreaterThan(headroom) {
				applied = headroom
			}
		case TypeDeduct:
			if applied.GreaterThan(inv.EarnedProfit) {
				applied = inv.EarnedProfit
			}
		default:
			return apperrors.Validation("Unknown adjustment type")
		}

		if !applied.IsPositive() {
			return apperrors.Validation("Adjustment has no effect")
		}
		adj.Amount = applied

		earned := inv.EarnedProfit
		if adj.Type == TypeAdd {
			earned = earned.Add(applied)
			if err := wallet.Credit(tx, inv.UserID, applied, "total_profit"); err != nil {
				return err
			}
		} else {
			earned = earned.Sub(applied)
			res := tx.Model(&wallet.Wallet{}).
				Where("user_id = ? AND balance >= ?", inv.UserID, applied).
				Updates(map[string]interface{}{
					"balance":      gorm.Expr("balance - ?", applied),
					"total_profit": gorm.Expr("total_profit - ?", applied),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.ErrInsufficientFunds
			}
		}

		updates := map[string]interface{}{"earned_profit": earned}
		// An add that lands on the cap finishes the investment the same way a
		// final scheduler tick would.
		if adj.Type == TypeAdd && earned.GreaterThanOrEqual(inv.ExpectedProfit) &&
			inv.Status == investment.StatusActive {
			updates["status"] = investment.StatusCompleted
			updates["next_profit_date"] = nil
		}
		if err := tx.Model(&inv).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Create(adj).Error
	})
}

func (r *repository) ListByInvestment(investmentID string, limit, offset int) ([]Adjustment, int64, error) {
	query := r.db.Model(&Adjustment{}).Where("investment_id = ?", investmentID)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var adjs []Adjustment
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&adjs).Error
	return adjs, count, err
}
