package repository

import (
	"context"
	"errors"

	"usdtpay/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrWalletNotFound = errors.New("钱包不存在")
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Create(ctx context.Context, tx *gorm.DB, wallet *model.Wallet) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(wallet).Error
}

func (r *WalletRepository) GetByAccountID(ctx context.Context, tx *gorm.DB, accountID string) (*model.Wallet, error) {
	if tx == nil {
		tx = r.db
	}
	var wallet model.Wallet
	err := tx.WithContext(ctx).Where("account_id = ?", accountID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// GetOrCreate 取钱包，不存在则建一个零余额钱包
// OnConflict DoNothing 应对注册补偿和并发创建
func (r *WalletRepository) GetOrCreate(ctx context.Context, accountID string) (*model.Wallet, error) {
	wallet, err := r.GetByAccountID(ctx, nil, accountID)
	if err == nil {
		return wallet, nil
	}

	if !errors.Is(err, ErrWalletNotFound) {
		return nil, err
	}

	newWallet := &model.Wallet{
		AccountID: accountID,
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}},
			DoNothing: true,
		}).
		Create(newWallet).Error

	if err != nil {
		return nil, err
	}

	return r.GetByAccountID(ctx, nil, accountID)
}

// Increase 充值入账，单条 UPDATE 原子完成
// balance 和 total_deposit 在数据库侧做加法，绝不读出来再写回，
// 并发充值互不丢失
func (r *WalletRepository) Increase(ctx context.Context, tx *gorm.DB, accountID string, amount decimal.Decimal) error {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.Wallet{}).
		Where("account_id = ?", accountID).
		Updates(map[string]interface{}{
			"balance":       gorm.Expr("balance + ?", amount),
			"total_deposit": gorm.Expr("total_deposit + ?", amount),
			"version":       gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}

	return nil
}
