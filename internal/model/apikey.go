package model

import (
	"time"
)

// ApiKey 商户 API 密钥表
// secret 只在创建时明文返回一次，库里只存哈希，之后不可找回
type ApiKey struct {
	ID            string     `gorm:"type:char(36);primaryKey" json:"id"`
	MerchantID    string     `gorm:"type:char(36);index;not null" json:"merchant_id"`
	ApiKey        string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"api_key"`
	SecretKeyHash string     `gorm:"type:varchar(64);not null" json:"-"`
	Name          string     `gorm:"type:varchar(64);not null" json:"name"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	Permissions   string     `gorm:"type:varchar(255);not null" json:"permissions"` // JSON 数组，如 ["payout","payin","balance"]
	LastUsedAt    *time.Time `json:"last_used_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (ApiKey) TableName() string {
	return "api_key"
}
