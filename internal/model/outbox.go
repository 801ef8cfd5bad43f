package model

import (
	"time"
)

const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

// 投递渠道
const (
	OutboxChannelKafka    = "kafka"    // 订单/账户事件，下游系统消费
	OutboxChannelTelegram = "telegram" // 人读通知，发到运营群
)

// OutboxMessage 事务性发件箱
// 业务写库和写消息在同一个事务里提交，后台任务异步投递；
// 投递失败只影响消息本身的重试计数，永远不回滚业务数据
type OutboxMessage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Channel    string    `gorm:"type:varchar(20);index;not null" json:"channel"`
	Topic      string    `gorm:"type:varchar(64)" json:"topic"` // kafka 渠道有效
	MessageKey string    `gorm:"type:varchar(64);not null" json:"message_key"`
	Payload    string    `gorm:"type:text;not null" json:"payload"`
	Status     string    `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_message"
}
