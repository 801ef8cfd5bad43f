package handler

import (
	"time"

	"usdtpay/internal/config"
	"usdtpay/internal/model"
	"usdtpay/internal/service"
	"usdtpay/pkg/logger"
	"usdtpay/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ctxKeyAccount = "account"

// LoggerMiddleware 访问日志
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if query != "" {
			path = path + "?" + query
		}

		logger.Info("[HTTP]",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		)
	}
}

// RecoveryMiddleware 恢复中间件，防止 panic 导致服务崩溃
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("[PANIC]", zap.Any("error", err))
				c.AbortWithStatusJSON(500, gin.H{
					"code":    500,
					"message": "服务器内部错误",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-User-Id, X-Email-Verified")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// AuthMiddleware 身份解析中间件
// 凭证校验在外部认证网关完成，网关把已验证的用户ID放在 X-User-Id 头里；
// 这里只负责把头换成账户档案。头缺失或档案不存在一律 401，
// 不会退回任何邮箱名单匹配（兜底名单只影响角色判定，见 service.CanModerate）
func AuthMiddleware(accountService *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-Id")
		if userID == "" {
			response.Unauthorized(c, "未登录或登录已过期")
			c.Abort()
			return
		}

		account, err := accountService.GetProfile(c.Request.Context(), userID)
		if err != nil {
			response.Unauthorized(c, "账户不存在或未完成注册")
			c.Abort()
			return
		}

		c.Set(ctxKeyAccount, account)
		c.Next()
	}
}

// AdminMiddleware 管理接口准入，需在 AuthMiddleware 之后
func AdminMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentAccount(c)
		if !service.CanModerate(&cfg.Business, actor) {
			response.Forbidden(c, "无权访问管理接口")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentAccount 取当前请求的账户档案
func CurrentAccount(c *gin.Context) *model.Account {
	value, exists := c.Get(ctxKeyAccount)
	if !exists {
		return nil
	}
	account, ok := value.(*model.Account)
	if !ok {
		return nil
	}
	return account
}
