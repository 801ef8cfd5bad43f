package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 代付订单状态
// pending 由商户创建，管理员确认付款或拒绝后进入终态，终态不可再迁移
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusRejected  = "rejected"
)

// ValidOrderTransitions 订单状态机（仅管理员可触发）
// completed / rejected 不在表中，意味着任何从终态出发的迁移都不合法，
// 重复确认同一个终态同样会被拒绝，用来暴露重复处理
var ValidOrderTransitions = map[string][]string{
	OrderStatusPending: {OrderStatusCompleted, OrderStatusRejected},
}

// CanTransitionOrder 判断订单状态迁移是否合法
func CanTransitionOrder(currentStatus, targetStatus string) bool {
	allowedStatuses, exists := ValidOrderTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, s := range allowedStatuses {
		if s == targetStatus {
			return true
		}
	}
	return false
}

// Order 代付订单表
// network 在创建时由收款地址格式推导，入库后不再变化；
// 订单只改 status 和审核字段，其余字段全部不可变
type Order struct {
	ID         string          `gorm:"type:char(36);primaryKey" json:"id"`
	OwnerID    string          `gorm:"type:char(36);index;not null" json:"owner_id"` // 创建订单的商户
	Amount     decimal.Decimal `gorm:"type:decimal(32,8);not null" json:"amount"`    // USDT 金额
	Address    string          `gorm:"type:varchar(64);not null" json:"address"`     // 收款地址
	Network    string          `gorm:"type:varchar(10);not null" json:"network"`     // ERC20 / TRC20
	Status     string          `gorm:"type:varchar(20);index;not null;default:pending" json:"status"`
	ReviewedAt *time.Time      `json:"reviewed_at"`                      // 审核时间
	ReviewedBy *string         `gorm:"type:char(36)" json:"reviewed_by"` // 审核人账户ID
	CreatedAt  time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "payout_order"
}
