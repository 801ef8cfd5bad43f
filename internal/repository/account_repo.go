package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"usdtpay/internal/model"

	"gorm.io/gorm"
)

var (
	ErrAccountNotFound   = errors.New("账户不存在")
	ErrEmailExists       = errors.New("邮箱已注册")
	ErrIllegalTransition = errors.New("状态变更不合法")
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, tx *gorm.DB, account *model.Account) error {
	if tx == nil {
		tx = r.db
	}
	account.Email = strings.ToLower(account.Email)
	err := tx.WithContext(ctx).Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailExists
	}
	return err
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByEmail 邮箱不区分大小写
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// UpdateStatus 条件更新账户状态
// WHERE 带上当前状态，并发的两次审核只有一个能生效；
// 迁移到 active 时一并写入审核时间和审核人
func (r *AccountRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, accountID string, fromStatus, toStatus string, operatorID string) error {
	if !model.CanTransitionAccount(fromStatus, toStatus) {
		return ErrIllegalTransition
	}

	if tx == nil {
		tx = r.db
	}

	updates := map[string]interface{}{
		"status": toStatus,
	}

	if toStatus == model.AccountStatusActive {
		now := time.Now()
		updates["approved_at"] = &now
		updates["approved_by"] = operatorID
	}

	result := tx.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ? AND status = ?", accountID, fromStatus).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrIllegalTransition
	}

	return nil
}

// ListMerchants 按状态过滤商户列表，status 为空返回全部
func (r *AccountRepository) ListMerchants(ctx context.Context, status string, page, pageSize int) ([]*model.Account, int64, error) {
	var accounts []*model.Account
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Account{}).Where("role = ?", model.RoleMerchant)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&accounts).Error

	return accounts, total, err
}
