package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/LJTian/NewsBrief/internal/collector"
	"github.com/LJTian/NewsBrief/internal/llm"
	"github.com/LJTian/NewsBrief/internal/logging"
	"github.com/LJTian/NewsBrief/internal/metrics"
	"github.com/sirupsen/logrus"
)

// 标注来源
const (
	PathService = "service"
	PathMock    = "mock"
)

// EnrichedArticle 原始新闻 + 偏向/重复/付费墙标注
type EnrichedArticle struct {
	collector.NewsItem

	ID            string `json:"id"`
	BiasScore     int    `json:"biasScore"` // -10（左）~ 10（右），0 为中立
	BiasReasoning string `json:"biasReasoning"`
	IsDuplicate   bool   `json:"isDuplicate"`
	DuplicateOfID string `json:"duplicateOfId,omitempty"`
	IsPaywalled   bool   `json:"isPaywalled"`
}

// DailySummary 当日概览：一段 overview + 3~5 条要点
type DailySummary struct {
	Overview  string   `json:"overview"`
	KeyPoints []string `json:"keyPoints"`
}

// Result 一轮标注的输出，Articles 与输入按下标一一对应
type Result struct {
	Articles []EnrichedArticle
	Summary  DailySummary
	// Path 实际生效的路径：service / mock
	Path string
}

// Annotator 有 Completer 时走外部服务，失败或未配置时走确定性的 mock
type Annotator struct {
	client    llm.Completer
	paywalled map[string]struct{}
	log       *logrus.Entry
}

// NewAnnotator client 为 nil 表示未配置密钥
func NewAnnotator(client llm.Completer, paywalledSources []string) *Annotator {
	pw := make(map[string]struct{}, len(paywalledSources))
	for _, s := range paywalledSources {
		pw[s] = struct{}{}
	}
	return &Annotator{
		client:    client,
		paywalled: pw,
		log:       logging.For("annotator"),
	}
}

// Annotate 永不失败：service 路径的任何错误都整体回落到 mock 路径，
// 增强字段与 summary 总是来自同一条路径。cycleAt 用于生成文章 ID。
func (a *Annotator) Annotate(ctx context.Context, items []collector.NewsItem, cycleAt time.Time) Result {
	if a.client != nil {
		res, err := a.annotateWithService(ctx, items, cycleAt)
		if err == nil {
			metrics.Annotations.WithLabelValues(PathService).Inc()
			return res
		}
		metrics.AnnotationFallbacks.Inc()
		a.log.WithError(err).Warn("service annotation failed, falling back to mock")
	} else {
		a.log.Debug("no credential configured, using mock annotation")
	}

	metrics.Annotations.WithLabelValues(PathMock).Inc()
	return a.annotateWithMock(items, cycleAt)
}

func (a *Annotator) isPaywalled(source string) bool {
	_, ok := a.paywalled[source]
	return ok
}

// articleID 批内下标 + 本轮时间戳，同一轮内唯一
func articleID(idx int, cycleAt time.Time) string {
	return fmt.Sprintf("art_%d_%d", idx, cycleAt.UnixMilli())
}
