package chainaddr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyERC20(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"全小写", "0x" + strings.Repeat("a", 40)},
		{"全大写", "0x" + strings.Repeat("F", 40)},
		{"混合大小写", "0xAbCdEf1234567890abcdef1234567890AbCdEf12"},
		{"带首尾空白", "  0x" + strings.Repeat("a", 40) + "\t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			network, ok := Classify(tt.addr)
			assert.True(t, ok)
			assert.Equal(t, NetworkERC20, network)
		})
	}
}

func TestClassifyTRC20(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"全大写A", "T" + strings.Repeat("A", 33)},
		{"典型地址", "TXYZopYRdj2D9XRtbG411XZZ3kM5VkAeBf"},
		{"带空白", " T" + strings.Repeat("z", 33) + " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			network, ok := Classify(tt.addr)
			assert.True(t, ok)
			assert.Equal(t, NetworkTRC20, network)
		})
	}
}

func TestClassifyInvalid(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"空字符串", ""},
		{"纯空白", "   "},
		{"过短的0x地址", "0xshort"},
		{"0x后39位", "0x" + strings.Repeat("a", 39)},
		{"0x后41位", "0x" + strings.Repeat("a", 41)},
		{"非十六进制字符", "0x" + strings.Repeat("g", 40)},
		{"T后32位", "T" + strings.Repeat("A", 32)},
		{"T后34位", "T" + strings.Repeat("A", 34)},
		{"Base58禁用字符0", "T" + strings.Repeat("A", 32) + "0"},
		{"Base58禁用字符O", "T" + strings.Repeat("A", 32) + "O"},
		{"Base58禁用字符I", "T" + strings.Repeat("A", 32) + "I"},
		{"Base58禁用字符l", "T" + strings.Repeat("A", 32) + "l"},
		{"小写t开头", "t" + strings.Repeat("A", 33)},
		{"中间含空格", "0x" + strings.Repeat("a", 20) + " " + strings.Repeat("a", 19)},
		{"比特币地址", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			network, ok := Classify(tt.addr)
			assert.False(t, ok)
			assert.Empty(t, network)
		})
	}
}

// 纯函数：同一输入多次调用结果一致
func TestClassifyIdempotent(t *testing.T) {
	addr := "0x" + strings.Repeat("a", 40)
	n1, ok1 := Classify(addr)
	n2, ok2 := Classify(addr)
	assert.Equal(t, n1, n2)
	assert.Equal(t, ok1, ok2)
}

func TestTruncate(t *testing.T) {
	addr := "0x" + strings.Repeat("a", 40)
	assert.Equal(t, "0xaaaaaaaa...aaaaaaaa", Truncate(addr))
	assert.Equal(t, "short", Truncate("short"))
}
