package idgen

import (
	"fmt"
	"sync"
	"time"
)

// 雪花算法生成流水号的数字部分：
// 64位 = 41位毫秒时间戳 + 10位机器ID + 12位序列号
// 趋势递增便于索引，同时不暴露业务量
const (
	epoch          = int64(1704067200000) // 2024-01-01 00:00:00 UTC
	workerIDBits   = 10
	sequenceBits   = 12
	maxWorkerID    = -1 ^ (-1 << workerIDBits)
	maxSequence    = -1 ^ (-1 << sequenceBits)
	workerIDShift  = sequenceBits
	timestampShift = sequenceBits + workerIDBits
)

type Snowflake struct {
	mu        sync.Mutex
	timestamp int64
	workerID  int64
	sequence  int64
}

var (
	defaultGenerator *Snowflake
	once             sync.Once
)

// Init 初始化默认 ID 生成器，workerID 取值 0-1023
func Init(workerID int64) {
	once.Do(func() {
		if workerID < 0 || workerID > maxWorkerID {
			panic(fmt.Sprintf("workerID 必须在 0-%d 之间", maxWorkerID))
		}
		defaultGenerator = &Snowflake{workerID: workerID}
	})
}

// NextID 生成下一个ID
func NextID() int64 {
	if defaultGenerator == nil {
		Init(1)
	}
	return defaultGenerator.Generate()
}

func (s *Snowflake) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()

	if now == s.timestamp {
		s.sequence = (s.sequence + 1) & maxSequence
		if s.sequence == 0 {
			// 同一毫秒内序列号用完，等下一毫秒
			for now <= s.timestamp {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.sequence = 0
	}

	s.timestamp = now

	return ((now - epoch) << timestampShift) |
		(s.workerID << workerIDShift) |
		s.sequence
}

// GenerateTransactionNo 生成钱包流水号
// 格式：TXN + 年月日时分秒 + 雪花ID后8位，例如 TXN20240115143052_12345678
func GenerateTransactionNo() string {
	id := NextID()
	timestamp := time.Now().Format("20060102150405")
	return fmt.Sprintf("TXN%s%08d", timestamp, id%100000000)
}

// ShortID 通知消息里展示的ID短形式，最多取前8位
// 账户ID可能是外部网关分配的任意长度字符串，不足8位原样返回
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
