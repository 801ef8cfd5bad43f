package chainaddr

import (
	"regexp"
	"strings"
)

// Network 收款地址所属网络
type Network string

const (
	NetworkERC20 Network = "ERC20"
	NetworkTRC20 Network = "TRC20"
)

// 地址格式规则：
//   - 以太坊地址：0x 开头 + 40 个十六进制字符，共 42 个字符
//   - TRC20 地址：T 开头 + 33 个 Base58 字符（不含 0、O、I、l），共 34 个字符
var (
	erc20Pattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	trc20Pattern = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)
)

// Classify 判断地址格式并返回所属网络
// 匹配前先去除首尾空白；两种格式都不匹配时 ok 为 false，不允许创建订单
func Classify(raw string) (Network, bool) {
	addr := strings.TrimSpace(raw)

	if erc20Pattern.MatchString(addr) {
		return NetworkERC20, true
	}
	if trc20Pattern.MatchString(addr) {
		return NetworkTRC20, true
	}
	return "", false
}

// Normalize 返回去除首尾空白后的地址，入库前统一使用
func Normalize(raw string) string {
	return strings.TrimSpace(raw)
}

// Truncate 地址脱敏展示：前10位...后8位
// 用于通知消息，避免完整地址出现在消息渠道里
func Truncate(addr string) string {
	if len(addr) <= 18 {
		return addr
	}
	return addr[:10] + "..." + addr[len(addr)-8:]
}
