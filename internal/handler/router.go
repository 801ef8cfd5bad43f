package handler

import (
	"usdtpay/internal/config"
	"usdtpay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	h := NewHandler(db, rdb, cfg)
	accountService := service.NewAccountService(db)

	api := r.Group("/api/v1")
	{
		// 注册回调不要求已有档案
		api.POST("/auth/register", h.Register)

		// 商户侧接口
		authed := api.Group("", AuthMiddleware(accountService))
		{
			account := authed.Group("/account")
			{
				account.GET("/profile", h.GetProfile)
				account.GET("/wallet", h.GetWallet)
			}

			order := authed.Group("/order")
			{
				order.POST("/create", h.CreateOrder)
				order.GET("/detail", h.GetOrder)
				order.GET("/list", h.ListOrders)
			}

			apikey := authed.Group("/apikey")
			{
				apikey.POST("/create", h.CreateApiKey)
				apikey.GET("/list", h.ListApiKeys)
				apikey.POST("/toggle", h.ToggleApiKey)
				apikey.POST("/delete", h.DeleteApiKey)
			}

			// 管理接口
			admin := authed.Group("/admin", AdminMiddleware(cfg))
			{
				admin.GET("/merchants", h.ListMerchants)
				admin.POST("/merchant/status", h.SetMerchantStatus)
				admin.POST("/recharge", h.Recharge)
				admin.GET("/order/pending", h.ListPendingOrders)
				admin.POST("/order/review", h.ReviewOrder)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
