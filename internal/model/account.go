package model

import (
	"time"
)

// 账户状态
// 商户注册后为 pending，由管理员审核放行；banned 为终态
const (
	AccountStatusPending   = "pending"
	AccountStatusActive    = "active"
	AccountStatusSuspended = "suspended"
	AccountStatusBanned    = "banned"
)

// 账户角色
const (
	RoleAdmin    = "admin"
	RoleMerchant = "merchant"
)

// ValidAccountTransitions 账户状态机（仅管理员可触发）
var ValidAccountTransitions = map[string][]string{
	AccountStatusPending:   {AccountStatusActive, AccountStatusBanned},
	AccountStatusActive:    {AccountStatusSuspended, AccountStatusBanned},
	AccountStatusSuspended: {AccountStatusActive, AccountStatusBanned},
}

// CanTransitionAccount 判断账户状态迁移是否合法
func CanTransitionAccount(currentStatus, targetStatus string) bool {
	allowedStatuses, exists := ValidAccountTransitions[currentStatus]
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

// Account 商户/管理员账户表
// 身份认证由外部网关负责，这里只存业务档案；角色与状态是所有鉴权和审核的依据
type Account struct {
	ID            string     `gorm:"type:char(36);primaryKey" json:"id"`
	Email         string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"` // 统一存小写
	CompanyName   string     `gorm:"type:varchar(255)" json:"company_name"`
	ContactPerson string     `gorm:"type:varchar(64)" json:"contact_person"`
	Phone         string     `gorm:"type:varchar(32)" json:"phone"`
	Status        string     `gorm:"type:varchar(20);index;not null;default:pending" json:"status"`
	Role          string     `gorm:"type:varchar(20);not null;default:merchant" json:"role"`
	ApprovedAt    *time.Time `json:"approved_at"`                          // 审核通过时间
	ApprovedBy    *string    `gorm:"type:char(36)" json:"approved_by"`     // 审核人账户ID
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}
