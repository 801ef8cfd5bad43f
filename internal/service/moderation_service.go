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
	"usdtpay/pkg/idgen"
	"usdtpay/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModerationService 商户账户审核与充值
// 全部操作要求管理员身份；校验先行，不产生部分写入
type ModerationService struct {
	db              *gorm.DB
	redisClient     *redis.Client
	cfg             *config.Config
	accountRepo     *repository.AccountRepository
	walletRepo      *repository.WalletRepository
	transactionRepo *repository.TransactionRepository
	outboxRepo      *repository.OutboxRepository
}

func NewModerationService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *ModerationService {
	return &ModerationService{
		db:              db,
		redisClient:     redisClient,
		cfg:             cfg,
		accountRepo:     repository.NewAccountRepository(db),
		walletRepo:      repository.NewWalletRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
	}
}

// SetAccountStatus 变更商户账户状态
// 迁移必须符合账户状态机；激活时写入审核时间和审核人；
// banned 是终态，任何从 banned 出发的请求都会失败
func (s *ModerationService) SetAccountStatus(ctx context.Context, actor *model.Account, targetAccountID, targetStatus string) (*model.Account, error) {
	if !CanModerate(&s.cfg.Business, actor) {
		return nil, ErrUnauthorized
	}

	target, err := s.accountRepo.GetByID(ctx, targetAccountID)
	if err != nil {
		return nil, err
	}

	if !model.CanTransitionAccount(target.Status, targetStatus) {
		return nil, ErrIllegalTransition
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.accountRepo.UpdateStatus(ctx, tx, targetAccountID, target.Status, targetStatus, actor.ID); err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"event":       "account." + targetStatus,
			"account_id":  targetAccountID,
			"email":       target.Email,
			"status":      targetStatus,
			"operator_id": actor.ID,
			"occurred_at": time.Now().Format(time.RFC3339),
		})
		msg := &model.OutboxMessage{
			Channel:    model.OutboxChannelKafka,
			Topic:      s.cfg.Kafka.Topic.AccountEvent,
			MessageKey: targetAccountID,
			Payload:    string(payload),
			Status:     model.OutboxStatusPending,
		}
		if err := s.outboxRepo.Create(ctx, tx, msg); err != nil {
			return fmt.Errorf("写入事件消息失败: %w", err)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, repository.ErrIllegalTransition) {
			return nil, ErrIllegalTransition
		}
		return nil, err
	}

	logger.Info("商户状态已变更",
		zap.String("account_id", targetAccountID),
		zap.String("from", target.Status),
		zap.String("to", targetStatus),
		zap.String("operator", actor.ID),
	)

	return s.accountRepo.GetByID(ctx, targetAccountID)
}

// Recharge 管理员为商户钱包充值
// 余额加法在数据库侧单条 UPDATE 原子完成，绝不读出来再写回；
// 流水的前后余额快照在同一事务内从更新后的行回读，并发充值下依然连续
func (s *ModerationService) Recharge(ctx context.Context, actor *model.Account, targetAccountID string, amount decimal.Decimal) (*model.Wallet, error) {
	if !CanModerate(&s.cfg.Business, actor) {
		return nil, ErrUnauthorized
	}

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if _, err := s.accountRepo.GetByID(ctx, targetAccountID); err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		rechargeLock := lock.NewRechargeLock(s.redisClient, targetAccountID, uuid.NewString())
		if err := rechargeLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
			return nil, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
		}
		defer rechargeLock.Unlock(ctx)
	}

	if _, err := s.walletRepo.GetOrCreate(ctx, targetAccountID); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.walletRepo.Increase(ctx, tx, targetAccountID, amount); err != nil {
			return fmt.Errorf("充值入账失败: %w", err)
		}

		// UPDATE 持有行锁，这里回读到的就是本次入账后的余额
		wallet, err := s.walletRepo.GetByAccountID(ctx, tx, targetAccountID)
		if err != nil {
			return err
		}

		trans := &model.WalletTransaction{
			TransactionNo: idgen.GenerateTransactionNo(),
			AccountID:     targetAccountID,
			Amount:        amount,
			Type:          model.TransactionTypeRecharge,
			BalanceBefore: wallet.Balance.Sub(amount),
			BalanceAfter:  wallet.Balance,
			OperatorID:    actor.ID,
			Remark:        fmt.Sprintf("管理员充值-%s", actor.Email),
		}
		if err := s.transactionRepo.Create(ctx, tx, trans); err != nil {
			return fmt.Errorf("记录流水失败: %w", err)
		}

		text := fmt.Sprintf("💰 商户充值到账\n\n账户：%s...\n金额：%s USDT",
			idgen.ShortID(targetAccountID), amount.String())
		msg := &model.OutboxMessage{
			Channel:    model.OutboxChannelTelegram,
			MessageKey: trans.TransactionNo,
			Payload:    text,
			Status:     model.OutboxStatusPending,
		}
		if err := s.outboxRepo.Create(ctx, tx, msg); err != nil {
			return fmt.Errorf("写入通知消息失败: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.Info("充值成功",
		zap.String("account_id", targetAccountID),
		zap.String("amount", amount.String()),
		zap.String("operator", actor.ID),
	)

	return s.walletRepo.GetByAccountID(ctx, nil, targetAccountID)
}

// ListMerchants 商户列表（管理端）
func (s *ModerationService) ListMerchants(ctx context.Context, actor *model.Account, status string, page, pageSize int) ([]*model.Account, int64, error) {
	if !CanModerate(&s.cfg.Business, actor) {
		return nil, 0, ErrUnauthorized
	}
	return s.accountRepo.ListMerchants(ctx, status, page, pageSize)
}
