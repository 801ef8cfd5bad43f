package service

import (
	"testing"

	"usdtpay/internal/config"
	"usdtpay/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCanModerate(t *testing.T) {
	cfg := &config.BusinessConfig{
		AdminEmails: []string{"OPS@Example.com"},
	}

	tests := []struct {
		name  string
		actor *model.Account
		want  bool
	}{
		{"空身份", nil, false},
		{"管理员角色", &model.Account{Role: model.RoleAdmin, Email: "a@b.c"}, true},
		{"商户角色", &model.Account{Role: model.RoleMerchant, Email: "m@b.c"}, false},
		{"商户角色即使邮箱在兜底名单", &model.Account{Role: model.RoleMerchant, Email: "ops@example.com"}, false},
		{"缺角色命中兜底名单", &model.Account{Email: "ops@example.com"}, true},
		{"缺角色兜底名单大小写不敏感", &model.Account{Email: "Ops@EXAMPLE.com"}, true},
		{"缺角色未命中兜底名单", &model.Account{Email: "other@example.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModerate(cfg, tt.actor))
		})
	}
}

func TestCanModerateEmptyAllowList(t *testing.T) {
	cfg := &config.BusinessConfig{}
	assert.False(t, CanModerate(cfg, &model.Account{Email: "anyone@example.com"}))
	assert.True(t, CanModerate(cfg, &model.Account{Role: model.RoleAdmin}))
}
