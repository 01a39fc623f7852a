package processor

import (
	"math/rand/v2"
	"time"

	"github.com/LJTian/NewsBrief/internal/collector"
)

const (
	mockBiasReasoning = "Mock evaluation: based on generic sentiment analysis."
	mockOverview      = "Today's news highlights significant global events including political developments, economic shifts, and ongoing conflicts. Authorities are responding to emerging crises while international negotiations continue."
)

// 文章不足三条时用于补齐要点
var mockFillerPoints = []string{
	"Major global policy update announced.",
	"Economic indicators show unexpected trends.",
	"Significant developments in ongoing international conflict.",
}

// annotateWithMock 偏向分在 [-10,10] 均匀分布，随机源以本轮时间戳为种子，同一轮可复现
func (a *Annotator) annotateWithMock(items []collector.NewsItem, cycleAt time.Time) Result {
	rng := rand.New(rand.NewPCG(uint64(cycleAt.UnixMilli()), 0x6e657773))

	articles := make([]EnrichedArticle, len(items))
	for i, it := range items {
		articles[i] = EnrichedArticle{
			NewsItem:      it,
			ID:            articleID(i, cycleAt),
			BiasScore:     rng.IntN(21) - 10,
			BiasReasoning: mockBiasReasoning,
			IsDuplicate:   false,
			IsPaywalled:   a.isPaywalled(it.Source),
		}
	}

	points := make([]string, len(mockFillerPoints))
	for i := range points {
		if i < len(items) {
			points[i] = items[i].Title
		} else {
			points[i] = mockFillerPoints[i]
		}
	}

	return Result{
		Articles: articles,
		Summary:  DailySummary{Overview: mockOverview, KeyPoints: points},
		Path:     PathMock,
	}
}
