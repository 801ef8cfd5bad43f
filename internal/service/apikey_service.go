package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"usdtpay/internal/model"
	"usdtpay/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrApiKeyNameEmpty = errors.New("请输入 API 密钥名称")

// 新密钥默认具备的能力
var defaultPermissions = []string{"payout", "payin", "balance"}

// ApiKeyService 商户 API 密钥管理
// secret 只在创建时返回一次，库里只存 sha256 哈希
type ApiKeyService struct {
	apiKeyRepo *repository.ApiKeyRepository
}

func NewApiKeyService(db *gorm.DB) *ApiKeyService {
	return &ApiKeyService{
		apiKeyRepo: repository.NewApiKeyRepository(db),
	}
}

// CreatedApiKey 创建结果，Secret 字段仅此一次可见
type CreatedApiKey struct {
	*model.ApiKey
	Secret string `json:"secret"`
}

func (s *ApiKeyService) Create(ctx context.Context, merchantID, name string) (*CreatedApiKey, error) {
	if name == "" {
		return nil, ErrApiKeyNameEmpty
	}

	publicKey, err := randomToken("upk")
	if err != nil {
		return nil, err
	}
	secret, err := randomToken("usk")
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256([]byte(secret))
	permissions, _ := json.Marshal(defaultPermissions)

	key := &model.ApiKey{
		ID:            uuid.NewString(),
		MerchantID:    merchantID,
		ApiKey:        publicKey,
		SecretKeyHash: hex.EncodeToString(hash[:]),
		Name:          name,
		IsActive:      true,
		Permissions:   string(permissions),
	}

	if err := s.apiKeyRepo.Create(ctx, key); err != nil {
		return nil, err
	}

	return &CreatedApiKey{ApiKey: key, Secret: secret}, nil
}

func (s *ApiKeyService) List(ctx context.Context, merchantID string) ([]*model.ApiKey, error) {
	return s.apiKeyRepo.ListByMerchant(ctx, merchantID)
}

func (s *ApiKeyService) SetActive(ctx context.Context, merchantID, keyID string, active bool) error {
	return s.apiKeyRepo.SetActive(ctx, merchantID, keyID, active)
}

func (s *ApiKeyService) Delete(ctx context.Context, merchantID, keyID string) error {
	return s.apiKeyRepo.Delete(ctx, merchantID, keyID)
}

// randomToken 生成 "<prefix>_<32字节十六进制>" 形式的随机令牌
func randomToken(prefix string) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成随机令牌失败: %w", err)
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(buf)), nil
}
