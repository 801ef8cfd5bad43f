package job

import (
	"context"
	"fmt"
	"time"

	"usdtpay/internal/config"
	"usdtpay/internal/model"
	"usdtpay/internal/repository"
	"usdtpay/pkg/chainaddr"
	"usdtpay/pkg/idgen"
	"usdtpay/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PendingReminderJob 待审核订单提醒
// 订单没有超时关闭一说，必须等管理员处理；挂太久的单定期提醒一次，
// redis SETNX 做去重，每笔订单只提醒一遍
type PendingReminderJob struct {
	db          *gorm.DB
	redisClient *redis.Client
	orderRepo   *repository.OrderRepository
	outboxRepo  *repository.OutboxRepository
	cfg         *config.Config
	stopCh      chan struct{}
	interval    time.Duration
	batchSize   int
}

func NewPendingReminderJob(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *PendingReminderJob {
	return &PendingReminderJob{
		db:          db,
		redisClient: redisClient,
		orderRepo:   repository.NewOrderRepository(db),
		outboxRepo:  repository.NewOutboxRepository(db),
		cfg:         cfg,
		stopCh:      make(chan struct{}),
		interval:    time.Minute,
		batchSize:   50,
	}
}

func (j *PendingReminderJob) Start(ctx context.Context) {
	logger.Info("待审核订单提醒任务启动")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("收到停止信号，提醒任务退出")
			return
		case <-j.stopCh:
			logger.Info("提醒任务停止")
			return
		case <-ticker.C:
			j.remindStaleOrders(ctx)
		}
	}
}

func (j *PendingReminderJob) Stop() {
	close(j.stopCh)
}

func (j *PendingReminderJob) remindStaleOrders(ctx context.Context) {
	threshold := time.Duration(j.cfg.Business.PendingReminderMinutes) * time.Minute
	before := time.Now().Add(-threshold)

	orders, err := j.orderRepo.ListPendingBefore(ctx, before, j.batchSize)
	if err != nil {
		logger.Error("查询滞留订单失败", zap.Error(err))
		return
	}

	for _, order := range orders {
		j.remind(ctx, order)
	}
}

func (j *PendingReminderJob) remind(ctx context.Context, order *model.Order) {
	// 去重 key 跟着订单走，提醒过的不再提醒
	dedupKey := fmt.Sprintf("reminder:order:%s", order.ID)
	ok, err := j.redisClient.SetNX(ctx, dedupKey, 1, 7*24*time.Hour).Result()
	if err != nil {
		logger.Error("提醒去重失败", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	age := time.Since(order.CreatedAt).Round(time.Minute)
	text := fmt.Sprintf("⏰ 订单等待审核超过 %s\n\n订单ID：%s...\n金额：%s USDT\n地址：%s",
		age, idgen.ShortID(order.ID), order.Amount.String(), chainaddr.Truncate(order.Address))

	msg := &model.OutboxMessage{
		Channel:    model.OutboxChannelTelegram,
		MessageKey: order.ID,
		Payload:    text,
		Status:     model.OutboxStatusPending,
	}
	if err := j.outboxRepo.Create(ctx, nil, msg); err != nil {
		logger.Error("写入提醒消息失败", zap.String("order_id", order.ID), zap.Error(err))
	}
}
