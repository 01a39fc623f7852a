package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LJTian/NewsBrief/internal/pipeline"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

type countingRefresh struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (r *countingRefresh) Run(ctx context.Context, at time.Time) (*pipeline.Aggregate, error) {
	r.calls.Add(1)
	if r.fail.Load() {
		return nil, errors.New("annotator exploded")
	}
	return &pipeline.Aggregate{Timestamp: at.UnixMilli()}, nil
}

func newTestCache() (*Cache, *fakeClock, *countingRefresh) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	r := &countingRefresh{}
	return New(15*time.Minute, r.Run).WithClock(clock.Now), clock, r
}

func TestGetWithinWindowReturnsCachedValue(t *testing.T) {
	c, clock, r := newTestCache()

	first, err := c.Get(context.Background())
	require.NoError(t, err)

	clock.Advance(14*time.Minute + 59*time.Second)
	second, err := c.Get(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, first.Timestamp, second.Timestamp)
	assert.EqualValues(t, 1, r.calls.Load())
}

func TestGetAfterExpiryRefreshesOnce(t *testing.T) {
	c, clock, r := newTestCache()

	first, err := c.Get(context.Background())
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)
	second, err := c.Get(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, r.calls.Load())
	assert.Greater(t, second.Timestamp, first.Timestamp)

	third, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, second, third)
	assert.EqualValues(t, 2, r.calls.Load())
}

func TestGetRefreshErrorKeepsPreviousValue(t *testing.T) {
	c, clock, r := newTestCache()

	first, err := c.Get(context.Background())
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	r.fail.Store(true)
	_, err = c.Get(context.Background())
	require.Error(t, err)

	kept, fetchedAt, ok := c.Peek()
	require.True(t, ok)
	assert.Same(t, first, kept)
	assert.Equal(t, first.Timestamp, fetchedAt.UnixMilli())

	// 下一次读取会再次尝试
	r.fail.Store(false)
	next, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, next)
	assert.EqualValues(t, 3, r.calls.Load())
}

func TestGetColdCacheErrorLeavesEmpty(t *testing.T) {
	c, _, r := newTestCache()
	r.fail.Store(true)

	_, err := c.Get(context.Background())
	require.Error(t, err)
	_, _, ok := c.Peek()
	assert.False(t, ok)
}

func TestGetNilAggregateIsAnError(t *testing.T) {
	c := New(time.Minute, func(ctx context.Context, at time.Time) (*pipeline.Aggregate, error) {
		return nil, nil
	})
	_, err := c.Get(context.Background())
	assert.ErrorIs(t, err, errNilAggregate)
}

func TestConcurrentExpiredReadsShareOneRefresh(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	c := New(time.Minute, func(ctx context.Context, at time.Time) (*pipeline.Aggregate, error) {
		calls.Add(1)
		<-release
		return &pipeline.Aggregate{Timestamp: at.UnixMilli()}, nil
	})

	const n = 8
	var wg sync.WaitGroup
	results := make([]*pipeline.Aggregate, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			agg, err := c.Get(context.Background())
			assert.NoError(t, err)
			results[i] = agg
		}()
	}

	// 等待第一个刷新开始后再放行
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, agg := range results {
		assert.Same(t, results[0], agg)
	}
}

func TestRefreshOutlivesCancelledCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := New(time.Minute, func(ctx context.Context, at time.Time) (*pipeline.Aggregate, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return &pipeline.Aggregate{Timestamp: at.UnixMilli()}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx)
		done <- err
	}()

	<-started
	cancel()
	close(release)
	require.NoError(t, <-done)

	kept, _, ok := c.Peek()
	require.True(t, ok)
	assert.NotNil(t, kept)
}

func TestGetRefreshErrorLogsKeptValue(t *testing.T) {
	c, clock, r := newTestCache()
	hook := test.NewLocal(c.log.Logger)
	defer hook.Reset()

	_, err := c.Get(context.Background())
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	r.fail.Store(true)
	_, err = c.Get(context.Background())
	require.Error(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "20m0s", entry.Data["kept_age"])
	assert.Equal(t, "2024-05-01T12:00:00Z", entry.Data["kept_cycle"])
}
