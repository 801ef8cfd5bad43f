package handler

import (
	"errors"
	"strconv"

	"usdtpay/internal/config"
	"usdtpay/internal/repository"
	"usdtpay/internal/service"
	"usdtpay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	cfg               *config.Config
	accountService    *service.AccountService
	orderService      *service.OrderService
	moderationService *service.ModerationService
	apiKeyService     *service.ApiKeyService
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		cfg:               cfg,
		accountService:    service.NewAccountService(db),
		orderService:      service.NewOrderService(db, rdb, cfg),
		moderationService: service.NewModerationService(db, rdb, cfg),
		apiKeyService:     service.NewApiKeyService(db),
	}
}

// renderError 业务错误到响应码的统一映射
func renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidAmount):
		response.BusinessError(c, response.CodeInvalidAmount, err.Error())
	case errors.Is(err, service.ErrInvalidAddress):
		response.BusinessError(c, response.CodeInvalidAddress, err.Error())
	case errors.Is(err, service.ErrIllegalTransition), errors.Is(err, repository.ErrIllegalTransition):
		response.BusinessError(c, response.CodeIllegalTransition, err.Error())
	case errors.Is(err, service.ErrAccountInactive):
		response.BusinessError(c, response.CodeAccountInactive, err.Error())
	case errors.Is(err, repository.ErrOrderNotFound):
		response.BusinessError(c, response.CodeOrderNotFound, err.Error())
	case errors.Is(err, repository.ErrAccountNotFound):
		response.BusinessError(c, response.CodeAccountNotFound, err.Error())
	case errors.Is(err, repository.ErrWalletNotFound):
		response.BusinessError(c, response.CodeWalletNotFound, err.Error())
	case errors.Is(err, repository.ErrEmailExists):
		response.BusinessError(c, response.CodeEmailExists, err.Error())
	case errors.Is(err, repository.ErrApiKeyNotFound):
		response.BusinessError(c, response.CodeApiKeyNotFound, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

// ============================================================
// 注册与账户接口
// ============================================================

// RegisterRequest 商户注册请求
type RegisterRequest struct {
	Email         string `json:"email" binding:"required,email"`
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
}

// Register 商户注册
// POST /api/v1/auth/register
// 认证网关完成凭证创建后回调这里建档；X-User-Id 为网关分配的用户ID
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	account, err := h.accountService.Register(c.Request.Context(), &service.RegisterRequest{
		AccountID:     c.GetHeader("X-User-Id"),
		Email:         req.Email,
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
	})
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, gin.H{
		"account": account,
		"message": "注册成功，请等待管理员审核",
	})
}

// GetProfile 当前账户档案
// GET /api/v1/account/profile
func (h *Handler) GetProfile(c *gin.Context) {
	response.Success(c, CurrentAccount(c))
}

// GetWallet 当前账户钱包
// GET /api/v1/account/wallet
func (h *Handler) GetWallet(c *gin.Context) {
	actor := CurrentAccount(c)
	wallet, err := h.accountService.GetWallet(c.Request.Context(), actor.ID)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, wallet)
}

// ============================================================
// 订单接口（商户侧）
// ============================================================

// CreateOrderRequest 创建代付订单请求
// 金额用字符串传，避免浮点精度问题
type CreateOrderRequest struct {
	Amount  string `json:"amount" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// CreateOrder 创建代付订单
// POST /api/v1/order/create
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.BusinessError(c, response.CodeInvalidAmount, "金额格式不正确")
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), CurrentAccount(c), amount, req.Address)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, order)
}

// GetOrder 查询订单详情
// GET /api/v1/order/detail?order_id=xxx
func (h *Handler) GetOrder(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		response.ParamError(c, "order_id 参数不能为空")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		renderError(c, err)
		return
	}

	// 商户只能看自己的订单，管理员不受限
	actor := CurrentAccount(c)
	if order.OwnerID != actor.ID && !service.CanModerate(&h.cfg.Business, actor) {
		response.BusinessError(c, response.CodeOrderNotFound, repository.ErrOrderNotFound.Error())
		return
	}

	response.Success(c, order)
}

// ListOrders 当前商户订单列表
// GET /api/v1/order/list?page=1&page_size=10
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := h.pagination(c)

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), CurrentAccount(c).ID, page, pageSize)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      orders,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ============================================================
// API 密钥接口
// ============================================================

// CreateApiKeyRequest 创建 API 密钥请求
type CreateApiKeyRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateApiKey 创建 API 密钥
// POST /api/v1/apikey/create
// secret 仅本次响应返回，之后不可找回
func (h *Handler) CreateApiKey(c *gin.Context) {
	var req CreateApiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	created, err := h.apiKeyService.Create(c.Request.Context(), CurrentAccount(c).ID, req.Name)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, gin.H{
		"api_key": created,
		"message": "请妥善保存，Secret Key 只显示一次",
	})
}

// ListApiKeys 当前商户密钥列表
// GET /api/v1/apikey/list
func (h *Handler) ListApiKeys(c *gin.Context) {
	keys, err := h.apiKeyService.List(c.Request.Context(), CurrentAccount(c).ID)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, gin.H{"list": keys})
}

// ToggleApiKeyRequest 启停 API 密钥请求
type ToggleApiKeyRequest struct {
	KeyID    string `json:"key_id" binding:"required"`
	IsActive *bool  `json:"is_active" binding:"required"`
}

// ToggleApiKey 启停 API 密钥
// POST /api/v1/apikey/toggle
func (h *Handler) ToggleApiKey(c *gin.Context) {
	var req ToggleApiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.apiKeyService.SetActive(c.Request.Context(), CurrentAccount(c).ID, req.KeyID, *req.IsActive); err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "操作成功"})
}

// DeleteApiKey 删除 API 密钥
// POST /api/v1/apikey/delete
func (h *Handler) DeleteApiKey(c *gin.Context) {
	var req struct {
		KeyID string `json:"key_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.apiKeyService.Delete(c.Request.Context(), CurrentAccount(c).ID, req.KeyID); err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "已删除"})
}

// ============================================================
// 管理接口
// ============================================================

// ListMerchants 商户列表
// GET /api/v1/admin/merchants?status=pending&page=1&page_size=10
func (h *Handler) ListMerchants(c *gin.Context) {
	page, pageSize := h.pagination(c)

	merchants, total, err := h.moderationService.ListMerchants(
		c.Request.Context(), CurrentAccount(c), c.Query("status"), page, pageSize)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      merchants,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// SetMerchantStatusRequest 商户状态变更请求
type SetMerchantStatusRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Status    string `json:"status" binding:"required,oneof=active suspended banned"`
}

// SetMerchantStatus 商户审核/停用/封禁
// POST /api/v1/admin/merchant/status
func (h *Handler) SetMerchantStatus(c *gin.Context) {
	var req SetMerchantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	account, err := h.moderationService.SetAccountStatus(
		c.Request.Context(), CurrentAccount(c), req.AccountID, req.Status)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, account)
}

// RechargeRequest 充值请求
type RechargeRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
}

// Recharge 为商户钱包充值
// POST /api/v1/admin/recharge
func (h *Handler) Recharge(c *gin.Context) {
	var req RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.BusinessError(c, response.CodeInvalidAmount, "金额格式不正确")
		return
	}

	wallet, err := h.moderationService.Recharge(c.Request.Context(), CurrentAccount(c), req.AccountID, amount)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, wallet)
}

// ListPendingOrders 待审核订单队列
// GET /api/v1/admin/order/pending
func (h *Handler) ListPendingOrders(c *gin.Context) {
	orders, err := h.orderService.ListPending(c.Request.Context(), h.cfg.Business.MaxPageSize)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, gin.H{"list": orders})
}

// ReviewOrderRequest 订单审核请求
type ReviewOrderRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	Status  string `json:"status" binding:"required,oneof=completed rejected"`
}

// ReviewOrder 订单审核（确认已付 / 拒绝）
// POST /api/v1/admin/order/review
func (h *Handler) ReviewOrder(c *gin.Context) {
	var req ReviewOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	order, err := h.orderService.TransitionOrder(c.Request.Context(), CurrentAccount(c), req.OrderID, req.Status)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, order)
}

func (h *Handler) pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > h.cfg.Business.MaxPageSize {
		pageSize = h.cfg.Business.MaxPageSize
	}
	return page, pageSize
}
