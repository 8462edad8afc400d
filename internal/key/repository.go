package key

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/stackvest/stackvest-backend/pkg/apperrors"
	"gorm.io/gorm"
)

type Repository interface {
	Create(key *APIKey) error
	List() ([]APIKey, error)
	// Verify resolves a raw key to its stored record and stamps last_used_at.
	Verify(rawKey string) (*APIKey, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func Hash(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

func (r *repository) Create(key *APIKey) error {
	return r.db.Create(key).Error
}

func (r *repository) List() ([]APIKey, error) {
	var keys []APIKey
	err := r.db.Order("created_at DESC").Find(&keys).Error
	return keys, err
}

func (r *repository) Verify(rawKey string) (*APIKey, error) {
	var key APIKey
	if err := r.db.Where("key_hash = ?", Hash(rawKey)).First(&key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	if err := r.db.Model(&key).Update("last_used_at", now).Error; err != nil {
		return nil, err
	}
	key.LastUsedAt = &now
	return &key, nil
}
