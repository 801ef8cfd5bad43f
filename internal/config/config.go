package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	OrderEvent   string `mapstructure:"order_event"`
	AccountEvent string `mapstructure:"account_event"`
}

// TelegramConfig 通知机器人配置
// Enabled=false 时订单照常创建，只是不投递通知
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	APIBase  string `mapstructure:"api_base"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type BusinessConfig struct {
	// AdminEmails 管理员邮箱兜底名单
	// 只在账户记录缺少角色字段时参考，命中会打降级告警日志；正常路径以 role 字段为准
	AdminEmails            []string `mapstructure:"admin_emails"`
	MaxRetryCount          int      `mapstructure:"max_retry_count"`
	PendingReminderMinutes int      `mapstructure:"pending_reminder_minutes"`
	MaxPageSize            int      `mapstructure:"max_page_size"`
}

var GlobalConfig *Config

// LoadConfig 加载配置文件
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("读取配置文件失败: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	if config.Business.MaxRetryCount <= 0 {
		config.Business.MaxRetryCount = 3
	}
	if config.Business.PendingReminderMinutes <= 0 {
		config.Business.PendingReminderMinutes = 30
	}
	if config.Business.MaxPageSize <= 0 {
		config.Business.MaxPageSize = 100
	}

	GlobalConfig = config
	return config
}
