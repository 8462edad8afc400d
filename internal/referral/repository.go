package referral

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/internal/wallet"
	"gorm.io/gorm"
)

type Repository interface {
	CreateEdge(edge *Referral) error
	RunExists(sourceType string, sourceID uuid.UUID) (bool, error)
	// ApplyCascade commits one whole cascade: the run marker, edge upserts,
	// wallet credits and commission rows, all in one transaction. A replay of
	// an already processed event returns nil without writing anything.
	ApplyCascade(ev Event, credits []PlannedCredit) error
	ListByReferrer(referrerID string, level int, limit, offset int) ([]Referral, int64, error)
	BreakdownByReferrer(referrerID string, rates []decimal.Decimal) ([]LevelBreakdown, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEdge(edge *Referral) error {
	return r.db.Create(edge).Error
}

func (r *repository) RunExists(sourceType string, sourceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&CascadeRun{}).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ApplyCascade(ev Event, credits []PlannedCredit) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		run := CascadeRun{SourceType: ev.SourceType, SourceID: ev.SourceID, Levels: len(credits)}
		if err := tx.Create(&run).Error; err != nil {
			// The unique (source_type, source_id) index turns a replay into a no-op.
			if isUniqueViolation(err) {
				return nil
			}
			return err
		}

		// A first deposit activates the referred user's level-1 edge before
		// eligibility is checked.
		if ev.SourceType == SourceDeposit && ev.FirstDeposit {
			if err := tx.Model(&Referral{}).
				Where("referred_user_id = ? AND level = 1 AND status = ?", ev.UserID, StatusPending).
				Update("status", StatusActive).Error; err != nil {
				return err
			}
		}

		for _, credit := range credits {
			var edge Referral
			err := tx.Where("referrer_id = ? AND referred_user_id = ? AND level = ?",
				credit.AncestorID, ev.UserID, credit.Level).First(&edge).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				edge = Referral{
					ReferrerID:     credit.AncestorID,
					ReferredUserID: ev.UserID,
					Level:          credit.Level,
					CommissionRate: credit.Rate,
					Status:         StatusActive,
				}
				if err := tx.Create(&edge).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			case edge.Status != StatusActive:
				// Skip this ancestor without breaking the walk.
				continue
			}

			if err := wallet.Credit(tx, credit.AncestorID, credit.Amount, ""); err != nil {
				return err
			}

			if err := tx.Model(&Referral{}).
				Where("id = ?", edge.ID).
				Update("total_earnings", gorm.Expr("total_earnings + ?", credit.Amount)).Error; err != nil {
				return err
			}

			row := CommissionCredit{
				ReferralID:    edge.ID,
				BeneficiaryID: credit.AncestorID,
				SourceType:    ev.SourceType,
				SourceID:      ev.SourceID,
				Level:         credit.Level,
				Amount:        credit.Amount,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *repository) ListByReferrer(referrerID string, level int, limit, offset int) ([]Referral, int64, error) {
	query := r.db.Model(&Referral{}).Where("referrer_id = ?", referrerID)
	if level > 0 {
		query = query.Where("level = ?", level)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var edges []Referral
	err := query.Order("level ASC, created_at DESC").Limit(limit).Offset(offset).Find(&edges).Error
	return edges, count, err
}

func (r *repository) BreakdownByReferrer(referrerID string, rates []decimal.Decimal) ([]LevelBreakdown, error) {
	type row struct {
		Level         int
		Referrals     int64
		TotalEarnings decimal.Decimal
	}
	var rows []row
	err := r.db.Model(&Referral{}).
		Select("level, COUNT(*) as referrals, COALESCE(SUM(total_earnings), 0) as total_earnings").
		Where("referrer_id = ?", referrerID).
		Group("level").
		Order("level ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byLevel := make(map[int]row, len(rows))
	for _, r := range rows {
		byLevel[r.Level] = r
	}

	breakdown := make([]LevelBreakdown, 0, len(rates))
	for i, rate := range rates {
		level := i + 1
		b := LevelBreakdown{Level: level, CommissionRate: rate, TotalEarnings: decimal.Zero}
		if r, ok := byLevel[level]; ok {
			b.Referrals = r.Referrals
			b.TotalEarnings = r.TotalEarnings
		}
		breakdown = append(breakdown, b)
	}
	return breakdown, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}
