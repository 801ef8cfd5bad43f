package repository

import (
	"context"
	"errors"
	"time"

	"usdtpay/internal/model"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("订单不存在")
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// UpdateStatus 条件更新订单状态
// WHERE 同时匹配当前状态，两个管理员并发审核同一笔订单只有一个成功，
// 另一个拿到 ErrIllegalTransition；重复确认终态同样走这里被拒绝
func (r *OrderRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, fromStatus, toStatus string, reviewerID string) error {
	if !model.CanTransitionOrder(fromStatus, toStatus) {
		return ErrIllegalTransition
	}

	if tx == nil {
		tx = r.db
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      toStatus,
		"reviewed_at": &now,
		"reviewed_by": reviewerID,
	}

	result := tx.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, fromStatus).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrIllegalTransition
	}

	return nil
}

func (r *OrderRepository) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Order{}).Where("owner_id = ?", ownerID)

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error

	return orders, total, err
}

// ListPending 管理员待审核队列，最早的排最前
func (r *OrderRepository) ListPending(ctx context.Context, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", model.OrderStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// ListPendingBefore 创建时间早于 before 的待审核订单，提醒任务用
func (r *OrderRepository) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.OrderStatusPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
