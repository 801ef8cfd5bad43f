package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"usdtpay/internal/config"
	"usdtpay/internal/infrastructure/lock"
	"usdtpay/internal/model"
	"usdtpay/internal/repository"
	"usdtpay/pkg/chainaddr"
	"usdtpay/pkg/idgen"
	"usdtpay/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService 代付订单生命周期
// 创建和审核都在校验全部通过后才写库；通知走事务性发件箱，
// 和订单写入同一个事务提交，投递失败不影响订单本身
type OrderService struct {
	db          *gorm.DB
	redisClient *redis.Client
	cfg         *config.Config
	orderRepo   *repository.OrderRepository
	outboxRepo  *repository.OutboxRepository
}

func NewOrderService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *OrderService {
	return &OrderService{
		db:          db,
		redisClient: redisClient,
		cfg:         cfg,
		orderRepo:   repository.NewOrderRepository(db),
		outboxRepo:  repository.NewOutboxRepository(db),
	}
}

// CreateOrder 商户提交代付订单
// 金额必须为正，地址按格式推导网络；校验不通过不产生任何写入
func (s *OrderService) CreateOrder(ctx context.Context, actor *model.Account, amount decimal.Decimal, rawAddress string) (*model.Order, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if actor.Status != model.AccountStatusActive {
		return nil, ErrAccountInactive
	}

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	network, ok := chainaddr.Classify(rawAddress)
	if !ok {
		return nil, ErrInvalidAddress
	}
	address := chainaddr.Normalize(rawAddress)

	order := &model.Order{
		ID:      uuid.NewString(),
		OwnerID: actor.ID,
		Amount:  amount,
		Address: address,
		Network: string(network),
		Status:  model.OrderStatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("创建订单失败: %w", err)
		}

		text := fmt.Sprintf("🚀 发现新代付订单！\n\n金额：%s USDT\n地址：%s\n网络：%s",
			amount.String(), address, network)
		if err := s.enqueueTelegram(ctx, tx, order.ID, text); err != nil {
			return err
		}

		return s.enqueueOrderEvent(ctx, tx, order, "order.created")
	})

	if err != nil {
		return nil, err
	}

	logger.Info("代付订单已创建",
		zap.String("order_id", order.ID),
		zap.String("owner_id", actor.ID),
		zap.String("amount", amount.String()),
		zap.String("network", order.Network),
	)

	return order, nil
}

// TransitionOrder 管理员审核订单（确认已付 / 拒绝）
// 条件更新按 pending 前置状态匹配，重复确认终态一律失败，不做静默幂等，
// 这样重复处理会被暴露出来而不是被吞掉
func (s *OrderService) TransitionOrder(ctx context.Context, actor *model.Account, orderID, targetStatus string) (*model.Order, error) {
	if !CanModerate(&s.cfg.Business, actor) {
		return nil, ErrUnauthorized
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !model.CanTransitionOrder(order.Status, targetStatus) {
		return nil, ErrIllegalTransition
	}

	// 订单维度的锁挡掉同一笔订单的并发审核，数据库条件更新兜底
	if s.redisClient != nil {
		reviewLock := lock.NewOrderReviewLock(s.redisClient, orderID, uuid.NewString())
		if err := reviewLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
			return nil, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
		}
		defer reviewLock.Unlock(ctx)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.UpdateStatus(ctx, tx, orderID, order.Status, targetStatus, actor.ID); err != nil {
			return err
		}

		statusText := "✅ 确认已付"
		if targetStatus == model.OrderStatusRejected {
			statusText = "❌ 拒绝订单"
		}
		text := fmt.Sprintf("%s\n\n订单ID：%s...\n金额：%s USDT\n地址：%s",
			statusText, idgen.ShortID(orderID), order.Amount.String(), chainaddr.Truncate(order.Address))
		if err := s.enqueueTelegram(ctx, tx, orderID, text); err != nil {
			return err
		}

		order.Status = targetStatus
		return s.enqueueOrderEvent(ctx, tx, order, "order."+targetStatus)
	})

	if err != nil {
		if errors.Is(err, repository.ErrIllegalTransition) {
			return nil, ErrIllegalTransition
		}
		return nil, err
	}

	logger.Info("订单审核完成",
		zap.String("order_id", orderID),
		zap.String("status", targetStatus),
		zap.String("reviewer", actor.ID),
	)

	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *OrderService) ListOrders(ctx context.Context, ownerID string, page, pageSize int) ([]*model.Order, int64, error) {
	return s.orderRepo.ListByOwner(ctx, ownerID, page, pageSize)
}

func (s *OrderService) ListPending(ctx context.Context, limit int) ([]*model.Order, error) {
	return s.orderRepo.ListPending(ctx, limit)
}

func (s *OrderService) enqueueTelegram(ctx context.Context, tx *gorm.DB, key, text string) error {
	msg := &model.OutboxMessage{
		Channel:    model.OutboxChannelTelegram,
		MessageKey: key,
		Payload:    text,
		Status:     model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, tx, msg); err != nil {
		return fmt.Errorf("写入通知消息失败: %w", err)
	}
	return nil
}

func (s *OrderService) enqueueOrderEvent(ctx context.Context, tx *gorm.DB, order *model.Order, event string) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"event":       event,
		"order_id":    order.ID,
		"owner_id":    order.OwnerID,
		"amount":      order.Amount.String(),
		"address":     order.Address,
		"network":     order.Network,
		"status":      order.Status,
		"occurred_at": time.Now().Format(time.RFC3339),
	})

	msg := &model.OutboxMessage{
		Channel:    model.OutboxChannelKafka,
		Topic:      s.cfg.Kafka.Topic.OrderEvent,
		MessageKey: order.ID,
		Payload:    string(payload),
		Status:     model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, tx, msg); err != nil {
		return fmt.Errorf("写入事件消息失败: %w", err)
	}
	return nil
}
