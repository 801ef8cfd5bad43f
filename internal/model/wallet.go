package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet 商户钱包表，与商户账户一一对应
// balance 为唯一的余额口径；total_deposit / total_payout 只增不减，用于对账
// frozen_balance 预留给在途订单资金占用，当前订单生命周期不动它
type Wallet struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID     string          `gorm:"type:char(36);uniqueIndex;not null" json:"account_id"`
	Balance       decimal.Decimal `gorm:"type:decimal(32,8);not null;default:0" json:"balance"`
	FrozenBalance decimal.Decimal `gorm:"type:decimal(32,8);not null;default:0" json:"frozen_balance"`
	TotalDeposit  decimal.Decimal `gorm:"type:decimal(32,8);not null;default:0" json:"total_deposit"`
	TotalPayout   decimal.Decimal `gorm:"type:decimal(32,8);not null;default:0" json:"total_payout"`
	Version       int             `gorm:"not null;default:0" json:"version"` // 乐观锁版本号
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallet"
}
