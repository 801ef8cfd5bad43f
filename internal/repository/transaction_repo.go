package repository

import (
	"context"
	"errors"

	"usdtpay/internal/model"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, trans *model.WalletTransaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(trans).Error
}

func (r *TransactionRepository) GetByTransactionNo(ctx context.Context, transactionNo string) (*model.WalletTransaction, error) {
	var trans model.WalletTransaction
	err := r.db.WithContext(ctx).Where("transaction_no = ?", transactionNo).First(&trans).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trans, nil
}

func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID string, page, pageSize int) ([]*model.WalletTransaction, int64, error) {
	var transactions []*model.WalletTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&model.WalletTransaction{}).Where("account_id = ?", accountID)

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transactions).Error

	return transactions, total, err
}
