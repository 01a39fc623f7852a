package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LJTian/NewsBrief/internal/collector"
	"github.com/LJTian/NewsBrief/internal/logging"
	"github.com/LJTian/NewsBrief/internal/metrics"
	"github.com/LJTian/NewsBrief/internal/processor"
	"github.com/sirupsen/logrus"
)

// ErrAnnotationMismatch 标注结果与输入条数不一致
var ErrAnnotationMismatch = errors.New("annotation result does not match fetched articles")

// Aggregate 一轮抓取+标注的结果，也是缓存、看板和对话上下文共用的单元
type Aggregate struct {
	// Articles 已剔除 IsDuplicate 的文章
	Articles []processor.EnrichedArticle `json:"articles"`
	Summary  processor.DailySummary      `json:"summary"`
	// Timestamp 本轮时间，Unix 毫秒
	Timestamp int64 `json:"timestamp"`
}

// Time 将 Timestamp 还原为 time.Time
func (a *Aggregate) Time() time.Time {
	return time.UnixMilli(a.Timestamp)
}

type HeadlineFetcher interface {
	FetchHeadlines(ctx context.Context) ([]collector.NewsItem, error)
}

type Annotator interface {
	Annotate(ctx context.Context, items []collector.NewsItem, cycleAt time.Time) processor.Result
}

// Pipeline 串联 Fetcher 与 Annotator
type Pipeline struct {
	fetcher   HeadlineFetcher
	annotator Annotator
	log       *logrus.Entry
}

func New(fetcher HeadlineFetcher, annotator Annotator) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		annotator: annotator,
		log:       logging.For("pipeline"),
	}
}

// RunOnce 执行一轮：抓取 -> 标注 -> 过滤重复。summary 基于未过滤的完整列表生成。
func (p *Pipeline) RunOnce(ctx context.Context, at time.Time) (*Aggregate, error) {
	start := time.Now()
	p.log.Info("start news cycle...")

	items, err := p.fetcher.FetchHeadlines(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines: %w", err)
	}

	res := p.annotator.Annotate(ctx, items, at)
	// 上下文结束导致的 mock 回落不能作为本轮结果
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("annotate headlines: %w", err)
	}
	if len(res.Articles) != len(items) {
		return nil, fmt.Errorf("%w: fetched=%d annotated=%d", ErrAnnotationMismatch, len(items), len(res.Articles))
	}

	unique := make([]processor.EnrichedArticle, 0, len(res.Articles))
	for _, a := range res.Articles {
		if a.IsDuplicate {
			continue
		}
		unique = append(unique, a)
	}

	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	p.log.WithFields(logrus.Fields{
		"fetched":    len(items),
		"duplicates": len(items) - len(unique),
		"path":       res.Path,
		"elapsed":    time.Since(start).String(),
	}).Info("news cycle done")

	return &Aggregate{
		Articles:  unique,
		Summary:   res.Summary,
		Timestamp: at.UnixMilli(),
	}, nil
}
