package service

import (
	"context"

	"usdtpay/internal/model"
	"usdtpay/internal/repository"
	"usdtpay/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccountService 商户注册与档案读取
// 凭证与会话由外部认证网关管理，这里只维护业务档案和钱包
type AccountService struct {
	db          *gorm.DB
	accountRepo *repository.AccountRepository
	walletRepo  *repository.WalletRepository
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{
		db:          db,
		accountRepo: repository.NewAccountRepository(db),
		walletRepo:  repository.NewWalletRepository(db),
	}
}

type RegisterRequest struct {
	AccountID     string // 认证网关分配的用户ID，为空则生成
	Email         string
	CompanyName   string
	ContactPerson string
	Phone         string
}

// Register 商户注册
// 新账户为 pending 状态，等待管理员审核；档案和零余额钱包同一事务创建
func (s *AccountService) Register(ctx context.Context, req *RegisterRequest) (*model.Account, error) {
	accountID := req.AccountID
	if accountID == "" {
		accountID = uuid.NewString()
	}

	account := &model.Account{
		ID:            accountID,
		Email:         req.Email,
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Status:        model.AccountStatusPending,
		Role:          model.RoleMerchant,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.accountRepo.Create(ctx, tx, account); err != nil {
			return err
		}
		wallet := &model.Wallet{AccountID: account.ID}
		return s.walletRepo.Create(ctx, tx, wallet)
	})

	if err != nil {
		return nil, err
	}

	logger.Info("商户注册成功，待审核",
		zap.String("account_id", account.ID),
		zap.String("email", account.Email),
	)

	return account, nil
}

func (s *AccountService) GetProfile(ctx context.Context, accountID string) (*model.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

// GetWallet 商户钱包；老账户缺钱包时补建
func (s *AccountService) GetWallet(ctx context.Context, accountID string) (*model.Wallet, error) {
	return s.walletRepo.GetOrCreate(ctx, accountID)
}
