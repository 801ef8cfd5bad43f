package service

import (
	"testing"

	"usdtpay/internal/config"
	"usdtpay/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 内存 sqlite，单连接保证并发用例串行访问同一个库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.Account{},
		&model.Wallet{},
		&model.Order{},
		&model.ApiKey{},
		&model.WalletTransaction{},
		&model.OutboxMessage{},
	)
	require.NoError(t, err)

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{
				OrderEvent:   "usdtpay.order.event",
				AccountEvent: "usdtpay.account.event",
			},
		},
		Business: config.BusinessConfig{
			MaxRetryCount:          3,
			PendingReminderMinutes: 30,
			MaxPageSize:            100,
		},
	}
}

func seedAccount(t *testing.T, db *gorm.DB, role, status string) *model.Account {
	t.Helper()

	account := &model.Account{
		ID:     uuid.NewString(),
		Email:  uuid.NewString() + "@example.com",
		Status: status,
		Role:   role,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func seedAdmin(t *testing.T, db *gorm.DB) *model.Account {
	t.Helper()
	return seedAccount(t, db, model.RoleAdmin, model.AccountStatusActive)
}

func seedMerchant(t *testing.T, db *gorm.DB, status string) *model.Account {
	t.Helper()
	return seedAccount(t, db, model.RoleMerchant, status)
}

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()

	var total int64
	require.NoError(t, db.Model(m).Count(&total).Error)
	return total
}
