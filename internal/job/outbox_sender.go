package job

import (
	"context"
	"time"

	"usdtpay/internal/config"
	"usdtpay/internal/infrastructure/mq"
	"usdtpay/internal/infrastructure/notify"
	"usdtpay/internal/model"
	"usdtpay/internal/repository"
	"usdtpay/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OutboxSender 发件箱投递任务
// 定时扫 PENDING 消息，按渠道分发：kafka 事件给下游系统，telegram 文本给运营群。
// 投递失败只累计重试次数，超限标记 FAILED，从不反向影响业务数据
type OutboxSender struct {
	db         *gorm.DB
	outboxRepo *repository.OutboxRepository
	telegram   *notify.TelegramClient
	cfg        *config.Config
	stopCh     chan struct{}
	interval   time.Duration
	batchSize  int
}

func NewOutboxSender(db *gorm.DB, telegram *notify.TelegramClient, cfg *config.Config) *OutboxSender {
	return &OutboxSender{
		db:         db,
		outboxRepo: repository.NewOutboxRepository(db),
		telegram:   telegram,
		cfg:        cfg,
		stopCh:     make(chan struct{}),
		interval:   100 * time.Millisecond,
		batchSize:  100,
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	logger.Info("发件箱投递任务启动")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("收到停止信号，发件箱任务退出")
			return
		case <-s.stopCh:
			logger.Info("发件箱任务停止")
			return
		case <-ticker.C:
			s.processPendingMessages(ctx)
		}
	}
}

func (s *OutboxSender) Stop() {
	close(s.stopCh)
}

func (s *OutboxSender) processPendingMessages(ctx context.Context) {
	messages, err := s.outboxRepo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		logger.Error("查询待投递消息失败", zap.Error(err))
		return
	}

	for _, msg := range messages {
		s.dispatch(ctx, msg)
	}
}

func (s *OutboxSender) dispatch(ctx context.Context, msg *model.OutboxMessage) {
	var err error
	switch msg.Channel {
	case model.OutboxChannelKafka:
		err = mq.SendMessage(msg.Topic, msg.MessageKey, msg.Payload)
	case model.OutboxChannelTelegram:
		if !s.telegram.Enabled() {
			// 未配置通知渠道时直接标记已发送，不堆积
			err = nil
		} else {
			err = s.telegram.SendText(msg.Payload)
		}
	default:
		logger.Warn("未知投递渠道，标记失败",
			zap.Int64("id", msg.ID),
			zap.String("channel", msg.Channel),
		)
		_ = s.outboxRepo.MarkAsFailed(ctx, msg.ID)
		return
	}

	if err == nil {
		if updateErr := s.outboxRepo.UpdateStatus(ctx, msg.ID, model.OutboxStatusSent); updateErr != nil {
			logger.Error("更新消息状态失败", zap.Int64("id", msg.ID), zap.Error(updateErr))
		}
		return
	}

	logger.Error("消息投递失败",
		zap.Int64("id", msg.ID),
		zap.String("channel", msg.Channel),
		zap.Error(err),
	)

	if err := s.outboxRepo.IncrementRetryCount(ctx, msg.ID); err != nil {
		logger.Error("增加重试次数失败", zap.Int64("id", msg.ID), zap.Error(err))
	}

	if msg.RetryCount+1 >= s.cfg.Business.MaxRetryCount {
		if err := s.outboxRepo.MarkAsFailed(ctx, msg.ID); err != nil {
			logger.Error("标记消息失败状态失败", zap.Int64("id", msg.ID), zap.Error(err))
		} else {
			logger.Warn("消息超过最大重试次数，标记为失败", zap.Int64("id", msg.ID))
		}
	}
}
