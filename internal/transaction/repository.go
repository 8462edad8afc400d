package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stackvest/stackvest-backend/internal/wallet"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"gorm.io/gorm"
)

type Repository interface {
	Create(tx *Transaction) error
	// CreateWithReservation inserts a withdrawal and moves its amount out of
	// the wallet balance in the same transaction, so two concurrent requests
	// cannot double spend.
	CreateWithReservation(tx *Transaction) error
	GetByID(id string) (*Transaction, error)
	List(userID string, status Status, txType Type, limit, offset int) ([]Transaction, int64, error)

	// The three transition methods use a conditional update keyed on current
	// status; a losing concurrent call gets ErrConflict, never an overwrite.
	CompleteDeposit(id uuid.UUID, adminID uuid.UUID, note string) (*Transaction, bool, error)
	CompleteWithdrawal(id uuid.UUID, adminID uuid.UUID, note string) (*Transaction, error)
	Reject(id uuid.UUID, adminID uuid.UUID, reason string) (*Transaction, error)
	Cancel(id uuid.UUID, userID uuid.UUID) (*Transaction, error)

	ExpirePendingDeposits(olderThan time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(tx *Transaction) error {
	return r.db.Create(tx).Error
}

func (r *repository) CreateWithReservation(txn *Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := wallet.Debit(tx, txn.UserID, txn.Amount, ""); err != nil {
			return err
		}
		return tx.Create(txn).Error
	})
}

func (r *repository) GetByID(id string) (*Transaction, error) {
	var txn Transaction
	if err := r.db.Where("id = ?", id).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *repository) List(userID string, status Status, txType Type, limit, offset int) ([]Transaction, int64, error) {
	query := r.db.Model(&Transaction{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if txType != "" {
		query = query.Where("type = ?", txType)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var txns []Transaction
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&txns).Error
	return txns, count, err
}

// transition flips a row out of a reviewable state. RowsAffected == 0 with an
// existing row means another admin won the race.
func transition(tx *gorm.DB, id uuid.UUID, from []Status, updates map[string]interface{}) error {
	res := tx.Model(&Transaction{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&Transaction{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.ErrNotFound
		}
		return apperrors.ErrConflict
	}
	return nil
}

var reviewable = []Status{StatusPending, StatusProcessing}

func (r *repository) CompleteDeposit(id uuid.UUID, adminID uuid.UUID, note string) (*Transaction, bool, error) {
	var txn Transaction
	first := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND type = ?", id, TypeDeposit).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		now := time.Now()
		if err := transition(tx, id, reviewable, map[string]interface{}{
			"status":       StatusCompleted,
			"processed_by": adminID,
			"processed_at": now,
			"admin_note":   note,
		}); err != nil {
			return err
		}

		if err := wallet.Credit(tx, txn.UserID, txn.NetAmount, "total_deposited"); err != nil {
			return err
		}

		var completed int64
		if err := tx.Model(&Transaction{}).
			Where("user_id = ? AND type = ? AND status = ?", txn.UserID, TypeDeposit, StatusCompleted).
			Count(&completed).Error; err != nil {
			return err
		}
		first = completed == 1

		txn.Status = StatusCompleted
		txn.ProcessedBy = &adminID
		txn.ProcessedAt = &now
		txn.AdminNote = note
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &txn, first, nil
}

func (r *repository) CompleteWithdrawal(id uuid.UUID, adminID uuid.UUID, note string) (*Transaction, error) {
	var txn Transaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND type = ?", id, TypeWithdraw).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		now := time.Now()
		if err := transition(tx, id, reviewable, map[string]interface{}{
			"status":       StatusCompleted,
			"processed_by": adminID,
			"processed_at": now,
			"admin_note":   note,
		}); err != nil {
			return err
		}

		// Funds were reserved at creation; completion only finalizes the total.
		if err := wallet.AddTotal(tx, txn.UserID, txn.Amount, "total_withdrawn"); err != nil {
			return err
		}

		txn.Status = StatusCompleted
		txn.ProcessedBy = &adminID
		txn.ProcessedAt = &now
		txn.AdminNote = note
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) Reject(id uuid.UUID, adminID uuid.UUID, reason string) (*Transaction, error) {
	var txn Transaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		now := time.Now()
		if err := transition(tx, id, reviewable, map[string]interface{}{
			"status":       StatusRejected,
			"processed_by": adminID,
			"processed_at": now,
			"admin_note":   reason,
		}); err != nil {
			return err
		}

		if txn.Type == TypeWithdraw {
			if err := wallet.Release(tx, txn.UserID, txn.Amount); err != nil {
				return err
			}
		}

		txn.Status = StatusRejected
		txn.ProcessedBy = &adminID
		txn.ProcessedAt = &now
		txn.AdminNote = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) Cancel(id uuid.UUID, userID uuid.UUID) (*Transaction, error) {
	var txn Transaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		// User cancellation is only valid before any admin action.
		if err := transition(tx, id, []Status{StatusPending}, map[string]interface{}{
			"status": StatusCancelled,
		}); err != nil {
			return err
		}

		if txn.Type == TypeWithdraw {
			if err := wallet.Release(tx, txn.UserID, txn.Amount); err != nil {
				return err
			}
		}

		txn.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) ExpirePendingDeposits(olderThan time.Time) (int64, error) {
	res := r.db.Model(&Transaction{}).
		Where("type = ? AND status = ? AND created_at < ?", TypeDeposit, StatusPending, olderThan).
		Update("status", StatusCancelled)
	return res.RowsAffected, res.Error
}
