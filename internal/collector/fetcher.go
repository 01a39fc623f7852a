package collector

import (
	"context"
	"time"
)

// NewsItem 统一采集后的基础结构（一条原始新闻）
type NewsItem struct {
	Title string `json:"title"`
	URL   string `json:"link"`
	// Source 数据源名称，例如 "BBC News"
	Source string `json:"source"`
	// 纯文本摘要，可能为空
	Description string    `json:"contentSnippet"`
	PublishedAt time.Time `json:"pubDate"`
}

// Fetcher 抽象每一个数据源
type Fetcher interface {
	Name() string
	// Fetch 按数据源自身顺序返回条目；PublishedAt 缺失时为零值
	Fetch(ctx context.Context) ([]NewsItem, error)
}
