package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTransactionNo(t *testing.T) {
	no := GenerateTransactionNo()
	assert.True(t, strings.HasPrefix(no, "TXN"))
	assert.Len(t, no, 3+14+8)

	// 连续生成不重号
	assert.NotEqual(t, no, GenerateTransactionNo())
}

func TestShortID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"uuid截断前8位", "11111111-2222-3333-4444-555555555555", "11111111"},
		{"恰好8位", "abcdefgh", "abcdefgh"},
		{"不足8位原样返回", "abc", "abc"},
		{"空字符串", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortID(tt.id))
		})
	}
}
