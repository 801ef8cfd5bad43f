package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 流水类型
const (
	TransactionTypeRecharge = "RECHARGE" // 管理员充值入账
)

// WalletTransaction 钱包流水表
// 只追加，不修改，不删除；记录交易前后余额，便于校验余额一致性
type WalletTransaction struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"`
	AccountID     string          `gorm:"type:char(36);index;not null" json:"account_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(32,8);not null" json:"amount"` // 正数入账
	Type          string          `gorm:"type:varchar(20);not null" json:"type"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(32,8);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(32,8);not null" json:"balance_after"`
	OperatorID    string          `gorm:"type:char(36);not null" json:"operator_id"` // 执行操作的管理员
	Remark        string          `gorm:"type:varchar(256)" json:"remark"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transaction"
}
