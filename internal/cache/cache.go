package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/LJTian/NewsBrief/internal/logging"
	"github.com/LJTian/NewsBrief/internal/metrics"
	"github.com/LJTian/NewsBrief/internal/pipeline"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL 缓存窗口，限制外部调用频率
const DefaultTTL = 15 * time.Minute

// refreshTimeout 单轮刷新的上限，与发起请求的连接无关
const refreshTimeout = 2 * time.Minute

var errNilAggregate = errors.New("cache: refresh returned nil aggregate")

// RefreshFunc 计算一轮新的聚合结果，at 为本轮时间
type RefreshFunc func(ctx context.Context, at time.Time) (*pipeline.Aggregate, error)

// Cache 进程内只保存最近一次聚合结果，过期后由下一次读取懒刷新，不做后台刷新。
// 刷新失败时保留旧值；每次写入都是整体替换。
type Cache struct {
	ttl     time.Duration
	now     func() time.Time
	refresh RefreshFunc

	mu        sync.RWMutex
	current   *pipeline.Aggregate
	fetchedAt time.Time

	group singleflight.Group
	log   *logrus.Entry
}

func New(ttl time.Duration, refresh RefreshFunc) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		refresh: refresh,
		log:     logging.For("cache"),
	}
}

// WithClock 注入时钟，便于测试过期逻辑
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get 窗口内直接返回缓存；否则同步刷新。并发的过期读取合并为一次刷新。
func (c *Cache) Get(ctx context.Context) (*pipeline.Aggregate, error) {
	if agg, ok := c.fresh(); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return agg, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do("aggregate", func() (any, error) {
		// 排队期间可能已被其它请求刷新
		if agg, ok := c.fresh(); ok {
			return agg, nil
		}

		// 刷新结果由所有等待者共享并写入缓存，不能随首个调用方断开而取消
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		at := c.now()
		agg, err := c.refresh(rctx, at)
		if err != nil {
			return nil, err
		}
		if agg == nil {
			return nil, errNilAggregate
		}

		c.mu.Lock()
		c.current = agg
		c.fetchedAt = at
		c.mu.Unlock()
		return agg, nil
	})
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		entry := c.log.WithError(err)
		if kept, fetchedAt, ok := c.Peek(); ok {
			entry = entry.WithFields(logrus.Fields{
				"kept_cycle": kept.Time().UTC().Format(time.RFC3339),
				"kept_age":   c.now().Sub(fetchedAt).Round(time.Second).String(),
			})
		}
		entry.Error("refresh aggregate failed, keeping previous value")
		return nil, err
	}
	return v.(*pipeline.Aggregate), nil
}

// Peek 返回当前缓存值（可能已过期），不触发刷新
func (c *Cache) Peek() (*pipeline.Aggregate, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.fetchedAt, c.current != nil
}

func (c *Cache) fresh() (*pipeline.Aggregate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil, false
	}
	if c.now().Sub(c.fetchedAt) < c.ttl {
		return c.current, true
	}
	return nil, false
}
