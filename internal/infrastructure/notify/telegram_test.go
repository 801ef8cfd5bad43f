package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"usdtpay/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendText(t *testing.T) {
	var gotPath string
	var gotReq sendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(sendMessageResponse{OK: true})
	}))
	defer srv.Close()

	client := NewTelegramClient(&config.TelegramConfig{
		Enabled:  true,
		APIBase:  srv.URL,
		BotToken: "test-token",
		ChatID:   "-100123456",
	})

	require.NoError(t, client.SendText("🚀 发现新代付订单！"))
	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "-100123456", gotReq.ChatID)
	assert.Equal(t, "🚀 发现新代付订单！", gotReq.Text)
}

func TestSendTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(sendMessageResponse{OK: false, Description: "chat not found"})
	}))
	defer srv.Close()

	client := NewTelegramClient(&config.TelegramConfig{
		Enabled:  true,
		APIBase:  srv.URL,
		BotToken: "test-token",
		ChatID:   "bad-chat",
	})

	err := client.SendText("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendTextNotConfigured(t *testing.T) {
	client := NewTelegramClient(&config.TelegramConfig{Enabled: false})
	assert.ErrorIs(t, client.SendText("hello"), ErrNotConfigured)

	client = NewTelegramClient(&config.TelegramConfig{Enabled: true})
	assert.ErrorIs(t, client.SendText("hello"), ErrNotConfigured)
	assert.False(t, client.Enabled())
}
