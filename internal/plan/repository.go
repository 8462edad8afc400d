package plan

import (
	"errors"

	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"gorm.io/gorm"
)

type Repository interface {
	GetActiveByID(id string) (*Plan, error)
	ListActive() ([]Plan, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetActiveByID(id string) (*Plan, error) {
	var p Plan
	if err := r.db.Where("id = ? AND status = ?", id, StatusActive).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListActive() ([]Plan, error) {
	var plans []Plan
	err := r.db.Where("status = ?", StatusActive).Order("min_amount ASC").Find(&plans).Error
	return plans, err
}
