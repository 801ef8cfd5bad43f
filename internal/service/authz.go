package service

import (
	"errors"
	"strings"

	"usdtpay/internal/config"
	"usdtpay/internal/model"
	"usdtpay/pkg/logger"

	"go.uber.org/zap"
)

// 服务层公共错误，handler 映射为对应的业务码
var (
	ErrUnauthorized      = errors.New("无权执行此操作")
	ErrInvalidAmount     = errors.New("金额必须大于0")
	ErrInvalidAddress    = errors.New("收款地址格式不正确（以太坊地址：0x开头42个字符，或 TRC20 地址：T开头34个字符）")
	ErrAccountInactive   = errors.New("账户未启用")
	ErrIllegalTransition = errors.New("状态变更不合法")
)

// CanModerate 审核权限判定
// 以账户的 role 字段为准；身份未解析的调用方在中间件就被拦掉，不会走到这里。
// 账户记录缺少角色字段时参考配置里的管理员邮箱兜底名单，
// 命中打降级告警日志——这是一条降级信任路径，不等同于正常的角色判定
func CanModerate(cfg *config.BusinessConfig, actor *model.Account) bool {
	if actor == nil {
		return false
	}

	if actor.Role != "" {
		return actor.Role == model.RoleAdmin
	}

	email := strings.ToLower(actor.Email)
	for _, admin := range cfg.AdminEmails {
		if strings.ToLower(admin) == email {
			logger.Warn("角色字段缺失，命中管理员邮箱兜底名单（降级信任路径）",
				zap.String("account_id", actor.ID),
				zap.String("email", email),
			)
			return true
		}
	}
	return false
}
