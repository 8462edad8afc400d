package gateway

import (
	"errors"

	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"gorm.io/gorm"
)

type Repository interface {
	GetByID(id string) (*PaymentGateway, error)
	List() ([]PaymentGateway, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(id string) (*PaymentGateway, error) {
	var g PaymentGateway
	if err := r.db.Where("id = ?", id).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *repository) List() ([]PaymentGateway, error) {
	var gateways []PaymentGateway
	err := r.db.Order("name ASC").Find(&gateways).Error
	return gateways, err
}
