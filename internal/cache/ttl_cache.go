package cache

import (
	"sync"
	"time"
)

// TTLCache 进程内 TTL 缓存
//
// 用于给读多写少的目录类数据（如邮件模板）挡掉重复的
// 存储读取。读取走 sync.Map，无锁。
type TTLCache struct {
	data sync.Map
	ttl  time.Duration
	stop chan struct{}
	once sync.Once
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// New 创建缓存并启动过期清理协程
func New(ttl time.Duration) *TTLCache {
	c := &TTLCache{
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get 获取缓存值；过期条目按未命中处理
func (c *TTLCache) Get(key string) (interface{}, bool) {
	val, ok := c.data.Load(key)
	if !ok {
		return nil, false
	}

	e := val.(*entry)
	if time.Now().After(e.expiresAt) {
		c.data.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Set 写入缓存值，使用缓存默认 TTL
func (c *TTLCache) Set(key string, value interface{}) {
	c.data.Store(key, &entry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Delete 删除缓存值
func (c *TTLCache) Delete(key string) {
	c.data.Delete(key)
}

// Close 停止清理协程
func (c *TTLCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// cleanupLoop 定期清除过期条目，避免只写不读的键泄漏
func (c *TTLCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.data.Range(func(key, value interface{}) bool {
				if now.After(value.(*entry).expiresAt) {
					c.data.Delete(key)
				}
				return true
			})
		}
	}
}
