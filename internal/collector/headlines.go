package collector

import (
	"context"
	"sort"
	"time"

	"github.com/LJTian/NewsBrief/internal/metrics"
	"github.com/LJTian/NewsBrief/internal/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultItemLimit   = 5
	headlinesFetchConc = 4
)

// Headlines 从一组固定的数据源汇总头条：每个源最多取前 limit 条，合并后按发布时间倒序
type Headlines struct {
	fetchers []Fetcher
	limit    int
	now      func() time.Time
	log      *logrus.Entry
}

func NewHeadlines(fetchers []Fetcher, limit int) *Headlines {
	if limit <= 0 {
		limit = defaultItemLimit
	}
	return &Headlines{
		fetchers: fetchers,
		limit:    limit,
		now:      time.Now,
		log:      logging.For("collector"),
	}
}

// WithClock 替换时间来源，缺失发布时间的条目以此为准
func (h *Headlines) WithClock(now func() time.Time) *Headlines {
	h.now = now
	return h
}

// FetchHeadlines 单个数据源失败只记录日志并跳过，不影响其它源；全部失败时返回空列表。
// 只有 ctx 被取消时才返回错误。
func (h *Headlines) FetchHeadlines(ctx context.Context) ([]NewsItem, error) {
	fetchedAt := h.now()

	// 按源的下标落位，保证合并顺序与配置顺序一致，不受并发完成先后影响
	perSource := make([][]NewsItem, len(h.fetchers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(headlinesFetchConc)
	for i, f := range h.fetchers {
		g.Go(func() error {
			name := f.Name()
			items, err := f.Fetch(gctx)
			if err != nil {
				metrics.FeedFetches.WithLabelValues(name, "error").Inc()
				h.log.WithError(err).WithField("source", name).Warn("fetch feed failed, skipped")
				return nil
			}
			metrics.FeedFetches.WithLabelValues(name, "ok").Inc()
			perSource[i] = h.normalize(name, items, fetchedAt)
			h.log.WithFields(logrus.Fields{
				"source":  name,
				"fetched": len(items),
				"kept":    len(perSource[i]),
			}).Debug("feed fetched")
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]NewsItem, 0, len(h.fetchers)*h.limit)
	for _, items := range perSource {
		out = append(out, items...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out, nil
}

// normalize 先按源顺序截取前 limit 条，再丢弃缺少标题或链接的条目
func (h *Headlines) normalize(source string, items []NewsItem, fetchedAt time.Time) []NewsItem {
	if len(items) > h.limit {
		items = items[:h.limit]
	}
	out := make([]NewsItem, 0, len(items))
	for _, it := range items {
		if it.Title == "" || it.URL == "" {
			continue
		}
		if it.PublishedAt.IsZero() {
			it.PublishedAt = fetchedAt
		}
		if it.Source == "" {
			it.Source = source
		}
		out = append(out, it)
	}
	return out
}
