package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"usdtpay/internal/model"
	"usdtpay/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateApiKeyReturnsSecretOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewApiKeyService(db)
	merchant := seedMerchant(t, db, model.AccountStatusActive)

	created, err := svc.Create(context.Background(), merchant.ID, "生产环境")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.ApiKey.ApiKey, "upk_"))
	assert.True(t, strings.HasPrefix(created.Secret, "usk_"))
	assert.Equal(t, "生产环境", created.Name)
	assert.True(t, created.IsActive)
	assert.Contains(t, created.Permissions, "payout")

	// 库里只存哈希，列表接口拿不回明文 secret
	hash := sha256.Sum256([]byte(created.Secret))
	var stored model.ApiKey
	require.NoError(t, db.Where("id = ?", created.ID).First(&stored).Error)
	assert.Equal(t, hex.EncodeToString(hash[:]), stored.SecretKeyHash)
	assert.NotContains(t, stored.SecretKeyHash, created.Secret)
}

func TestCreateApiKeyRequiresName(t *testing.T) {
	db := newTestDB(t)
	svc := NewApiKeyService(db)

	_, err := svc.Create(context.Background(), "merchant-id", "")
	assert.ErrorIs(t, err, ErrApiKeyNameEmpty)
}

func TestApiKeyScopedToMerchant(t *testing.T) {
	db := newTestDB(t)
	svc := NewApiKeyService(db)
	first := seedMerchant(t, db, model.AccountStatusActive)
	second := seedMerchant(t, db, model.AccountStatusActive)

	created, err := svc.Create(context.Background(), first.ID, "密钥A")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), second.ID, "密钥B")
	require.NoError(t, err)

	keys, err := svc.List(context.Background(), first.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, created.ID, keys[0].ID)

	// 别的商户动不了不属于自己的密钥
	err = svc.SetActive(context.Background(), second.ID, created.ID, false)
	assert.ErrorIs(t, err, repository.ErrApiKeyNotFound)
	err = svc.Delete(context.Background(), second.ID, created.ID)
	assert.ErrorIs(t, err, repository.ErrApiKeyNotFound)
}

func TestApiKeyToggleAndDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewApiKeyService(db)
	merchant := seedMerchant(t, db, model.AccountStatusActive)

	created, err := svc.Create(context.Background(), merchant.ID, "轮换测试")
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(context.Background(), merchant.ID, created.ID, false))
	keys, err := svc.List(context.Background(), merchant.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.False(t, keys[0].IsActive)

	require.NoError(t, svc.Delete(context.Background(), merchant.ID, created.ID))
	keys, err = svc.List(context.Background(), merchant.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)

	err = svc.Delete(context.Background(), merchant.ID, created.ID)
	assert.ErrorIs(t, err, repository.ErrApiKeyNotFound)
}
