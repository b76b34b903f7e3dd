package saga

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// StepLog 步骤完成日志
type StepLog interface {
	IsDone(key string) (bool, error)
	MarkDone(key string) error
	Clear(key string) error
}

// RedisStepLog 基于Redis的步骤日志
// 标记带TTL，异常中断的saga标记最终自然过期。
type RedisStepLog struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStepLog 创建Redis步骤日志
func NewRedisStepLog(client *redis.Client, prefix string) *RedisStepLog {
	if prefix == "" {
		prefix = "renthub:saga"
	}
	return &RedisStepLog{
		client: client,
		prefix: prefix,
		ttl:    10 * time.Minute,
	}
}

func (l *RedisStepLog) key(k string) string {
	return l.prefix + ":" + k
}

func (l *RedisStepLog) IsDone(key string) (bool, error) {
	n, err := l.client.Exists(context.Background(), l.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *RedisStepLog) MarkDone(key string) error {
	return l.client.Set(context.Background(), l.key(key), 1, l.ttl).Err()
}

func (l *RedisStepLog) Clear(key string) error {
	return l.client.Del(context.Background(), l.key(key)).Err()
}

// MemoryStepLog 内存步骤日志（单元测试用）
type MemoryStepLog struct {
	mu   sync.Mutex
	done map[string]bool
}

// NewMemoryStepLog 创建内存步骤日志
func NewMemoryStepLog() *MemoryStepLog {
	return &MemoryStepLog{done: make(map[string]bool)}
}

func (l *MemoryStepLog) IsDone(key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done[key], nil
}

func (l *MemoryStepLog) MarkDone(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done[key] = true
	return nil
}

func (l *MemoryStepLog) Clear(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.done, key)
	return nil
}
