package repository

import (
	"context"
	"errors"

	"usdtpay/internal/model"

	"gorm.io/gorm"
)

var (
	ErrApiKeyNotFound = errors.New("API 密钥不存在")
)

type ApiKeyRepository struct {
	db *gorm.DB
}

func NewApiKeyRepository(db *gorm.DB) *ApiKeyRepository {
	return &ApiKeyRepository{db: db}
}

func (r *ApiKeyRepository) Create(ctx context.Context, key *model.ApiKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *ApiKeyRepository) ListByMerchant(ctx context.Context, merchantID string) ([]*model.ApiKey, error) {
	var keys []*model.ApiKey
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&keys).Error
	return keys, err
}

// SetActive 按商户限定范围更新，不会动到别人的密钥
func (r *ApiKeyRepository) SetActive(ctx context.Context, merchantID, keyID string, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.ApiKey{}).
		Where("id = ? AND merchant_id = ?", keyID, merchantID).
		Update("is_active", active)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApiKeyNotFound
	}
	return nil
}

func (r *ApiKeyRepository) Delete(ctx context.Context, merchantID, keyID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND merchant_id = ?", keyID, merchantID).
		Delete(&model.ApiKey{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApiKeyNotFound
	}
	return nil
}
