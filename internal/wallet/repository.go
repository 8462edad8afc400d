package wallet

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"gorm.io/gorm"
)

type Repository interface {
	CreateWallet(wallet *Wallet) error
	GetWalletByUserID(userID string) (*Wallet, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWallet(wallet *Wallet) error {
	return r.db.Create(wallet).Error
}

func (r *repository) GetWalletByUserID(userID string) (*Wallet, error) {
	var wallet Wallet
	if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// The functions below run against the *gorm.DB of an enclosing transaction so
// that a wallet move always commits together with its originating ledger row.

// Credit adds amount to balance and, optionally, to one of the running
// totals (column name, may be empty).
func Credit(tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, totalColumn string) error {
	updates := map[string]interface{}{"balance": gorm.Expr("balance + ?", amount)}
	if totalColumn != "" {
		updates[totalColumn] = gorm.Expr(totalColumn+" + ?", amount)
	}
	res := tx.Model(&Wallet{}).Where("user_id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Debit removes amount from balance, failing when the balance would go
// negative. The conditional WHERE is what makes two concurrent debits safe.
func Debit(tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, totalColumn string) error {
	updates := map[string]interface{}{"balance": gorm.Expr("balance - ?", amount)}
	if totalColumn != "" {
		updates[totalColumn] = gorm.Expr(totalColumn+" + ?", amount)
	}
	res := tx.Model(&Wallet{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrInsufficientFunds
	}
	return nil
}

// AddTotal bumps one of the running totals without touching balance. Used
// when finalizing a withdrawal whose funds were already reserved.
func AddTotal(tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, totalColumn string) error {
	res := tx.Model(&Wallet{}).
		Where("user_id = ?", userID).
		Update(totalColumn, gorm.Expr(totalColumn+" + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Release returns previously reserved withdrawal funds to balance.
func Release(tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal) error {
	res := tx.Model(&Wallet{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
