package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"usdtpay/internal/config"
)

// Telegram Bot 通知客户端
// 只做一次 sendMessage 调用，失败交给发件箱重试，不在这里做重试

const defaultAPIBase = "https://api.telegram.org"

var ErrNotConfigured = errors.New("telegram 配置缺失")

type TelegramClient struct {
	apiBase    string
	botToken   string
	chatID     string
	enabled    bool
	httpClient *http.Client
}

func NewTelegramClient(cfg *config.TelegramConfig) *TelegramClient {
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &TelegramClient{
		apiBase:  apiBase,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		enabled:  cfg.Enabled,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (c *TelegramClient) Enabled() bool {
	return c.enabled && c.botToken != "" && c.chatID != ""
}

// SendText 发送一条文本消息到配置的群
func (c *TelegramClient) SendText(text string) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID: c.chatID,
		Text:   text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.botToken)
	resp, err := c.httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var result sendMessageResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("解析 Telegram 响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !result.OK {
		return fmt.Errorf("telegram 接口返回失败: %s", result.Description)
	}

	return nil
}
