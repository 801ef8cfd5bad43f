package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis 分布式锁
//
// 加锁：SET key value NX EX timeout
//   - NX 保证互斥，EX 防止持有方崩溃后死锁
//   - value 记录持有者，释放时校验，避免误删别人的锁
//
// 释放：Lua 脚本保证"校验+删除"原子执行

var (
	ErrLockFailed = errors.New("获取分布式锁失败")
)

// DistributedLock 分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string // 持有者标识
	expiration time.Duration
}

func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock 尝试获取锁（非阻塞）
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// Lock 阻塞式获取锁（带重试）
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁，只删除自己持有的
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// NewRechargeLock 充值锁（按商户账户维度）
// 同一账户的充值串行执行，不同账户互不影响
func NewRechargeLock(client *redis.Client, accountID string, token string) *DistributedLock {
	key := fmt.Sprintf("recharge:lock:account:%s", accountID)
	return NewDistributedLock(client, key, token, 30*time.Second)
}

// NewOrderReviewLock 订单审核锁（按订单维度）
// 防止两个管理员同时审核同一笔订单；数据库条件更新是最终兜底
func NewOrderReviewLock(client *redis.Client, orderID string, token string) *DistributedLock {
	key := fmt.Sprintf("review:lock:order:%s", orderID)
	return NewDistributedLock(client, key, token, 30*time.Second)
}
