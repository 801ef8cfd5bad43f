package service

import (
	"context"
	"sync"
	"testing"

	"usdtpay/internal/model"
	"usdtpay/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAccountStatusRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil, newTestConfig())
	merchant := seedMerchant(t, db, model.AccountStatusPending)

	_, err := svc.SetAccountStatus(context.Background(), merchant, merchant.ID, model.AccountStatusActive)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.SetAccountStatus(context.Background(), nil, merchant.ID, model.AccountStatusActive)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSetAccountStatusActivateRecordsApproval(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil, newTestConfig())
	admin := seedAdmin(t, db)
	merchant := seedMerchant(t, db, model.AccountStatusPending)

	updated, err := svc.SetAccountStatus(context.Background(), admin, merchant.ID, model.AccountStatusActive)
	require.NoError(t, err)

	assert.Equal(t, model.AccountStatusActive, updated.Status)
	require.NotNil(t, updated.ApprovedAt)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, admin.ID, *updated.ApprovedBy)

	var messages []*model.OutboxMessage
	require.NoError(t, db.Where("channel = ?", model.OutboxChannelKafka).Find(&messages).Error)
	require.Len(t, messages, 1)
	assert.Equal(t, "usdtpay.account.event", messages[0].Topic)
	assert.Contains(t, messages[0].Payload, `"event":"account.active"`)
}

func TestSetAccountStatusBannedIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil, newTestConfig())
	admin := seedAdmin(t, db)
	merchant := seedMerchant(t, db, model.AccountStatusActive)

	_, err := svc.SetAccountStatus(context.Background(), admin, merchant.ID, model.AccountStatusBanned)
	require.NoError(t, err)

	// banned 为终态，任何出边都不合法
	for _, target := range []string{
		model.AccountStatusActive,
		model.AccountStatusSuspended,
		model.AccountStatusPending,
		model.AccountStatusBanned,
	} {
		_, err := svc.SetAccountStatus(context.Background(), admin, merchant.ID, target)
		assert.ErrorIs(t, err, ErrIllegalTransition, "target=%s", target)
	}
}

func TestSetAccountStatusUnknownAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil, newTestConfig())
	admin := seedAdmin(t, db)

	_, err := svc.SetAccountStatus(context.Background(), admin, "11111111-2222-3333-4444-555555555555", model.AccountStatusActive)
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestRechargeRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil, newTestConfig())
	merchant := seedMerchant(t, db, model.AccountStatusActive)

	_, err := svc.Recharge(context.Background(), merchant, merchant.ID, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRechargeRejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil, newTestConfig())
	admin := seedAdmin(t, db)
	merchant := seedMerchant(t, db, model.AccountStatusActive)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
		_, err := svc.Recharge(context.Background(), admin, merchant.ID, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount=%s", amount)
	}

	assert.EqualValues(t, 0, countRows(t, db, &model.WalletTransaction{}))
}

func TestRechargeUnknownAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil, newTestConfig())
	admin := seedAdmin(t, db)

	_, err := svc.Recharge(context.Background(), admin, "11111111-2222-3333-4444-555555555555", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestRechargeCreditsWalletAndWritesLedger(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil, newTestConfig())
	admin := seedAdmin(t, db)
	merchant := seedMerchant(t, db, model.AccountStatusActive)

	wallet, err := svc.Recharge(context.Background(), admin, merchant.ID, decimal.RequireFromString("250.75"))
	require.NoError(t, err)

	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("250.75")), "balance=%s", wallet.Balance)
	assert.True(t, wallet.TotalDeposit.Equal(decimal.RequireFromString("250.75")))

	var trans []*model.WalletTransaction
	require.NoError(t, db.Where("account_id = ?", merchant.ID).Find(&trans).Error)
	require.Len(t, trans, 1)
	assert.Equal(t, model.TransactionTypeRecharge, trans[0].Type)
	assert.True(t, trans[0].BalanceBefore.Equal(decimal.Zero))
	assert.True(t, trans[0].BalanceAfter.Equal(decimal.RequireFromString("250.75")))
	assert.Equal(t, admin.ID, trans[0].OperatorID)
}

func TestRechargeShortExternalAccountID(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil, newTestConfig())
	admin := seedAdmin(t, db)

	// 账户ID由外部网关分配，不保证长度
	accountSvc := NewAccountService(db)
	merchant, err := accountSvc.Register(context.Background(), &RegisterRequest{
		AccountID: "abc",
		Email:     "short-id@example.com",
	})
	require.NoError(t, err)

	wallet, err := svc.Recharge(context.Background(), admin, merchant.ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(10)))

	var messages []*model.OutboxMessage
	require.NoError(t, db.Where("channel = ?", model.OutboxChannelTelegram).Find(&messages).Error)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Payload, "账户：abc...")
}

func TestRechargeConcurrentIncrementsDoNotLoseUpdates(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil, newTestConfig())
	admin := seedAdmin(t, db)
	merchant := seedMerchant(t, db, model.AccountStatusActive)

	// 先建好钱包，避免并发路径同时走补建
	_, err := svc.Recharge(context.Background(), admin, merchant.ID, decimal.NewFromInt(1))
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			_, err := svc.Recharge(context.Background(), admin, merchant.ID, decimal.NewFromInt(n))
			errs <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// 1 + (1+2+...+20) = 211，数据库侧原子加法不丢任何一笔
	var wallet model.Wallet
	require.NoError(t, db.Where("account_id = ?", merchant.ID).First(&wallet).Error)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(211)), "balance=%s", wallet.Balance)
	assert.True(t, wallet.TotalDeposit.Equal(decimal.NewFromInt(211)))

	// 流水快照在事务内回读更新后的行，并发写下也必须首尾相接：
	// 按 balance_after 排序后每条的 before 等于上一条的 after，链尾即最终余额
	var ledger []*model.WalletTransaction
	require.NoError(t, db.Where("account_id = ?", merchant.ID).Order("balance_after").Find(&ledger).Error)
	require.Len(t, ledger, workers+1)

	prev := decimal.Zero
	for _, row := range ledger {
		assert.True(t, row.BalanceBefore.Equal(prev), "before=%s prev=%s", row.BalanceBefore, prev)
		assert.True(t, row.BalanceAfter.Equal(row.BalanceBefore.Add(row.Amount)))
		prev = row.BalanceAfter
	}
	assert.True(t, prev.Equal(decimal.NewFromInt(211)))
}

func TestListMerchantsRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil, newTestConfig())
	admin := seedAdmin(t, db)
	merchant := seedMerchant(t, db, model.AccountStatusPending)
	seedMerchant(t, db, model.AccountStatusActive)

	_, _, err := svc.ListMerchants(context.Background(), merchant, "", 1, 10)
	assert.ErrorIs(t, err, ErrUnauthorized)

	pending, total, err := svc.ListMerchants(context.Background(), admin, model.AccountStatusPending, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, pending, 1)
	assert.Equal(t, merchant.ID, pending[0].ID)
}
