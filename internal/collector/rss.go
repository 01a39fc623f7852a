package collector

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/mmcdole/gofeed"
)

const (
	rssUserAgent      = "NewsBriefBot/1.0"
	rssDefaultTimeout = 10 * time.Second
	rssMaxBodyBytes   = 4 << 20 // 4MB
)

// RSSFetcher 通过 colly 下载 RSS/Atom 文档，再交给 gofeed 解析
type RSSFetcher struct {
	name    string
	url     string
	timeout time.Duration
	parser  *gofeed.Parser
}

func NewRSSFetcher(name, url string, timeout time.Duration) *RSSFetcher {
	if timeout <= 0 {
		timeout = rssDefaultTimeout
	}
	return &RSSFetcher{
		name:    name,
		url:     url,
		timeout: timeout,
		parser:  gofeed.NewParser(),
	}
}

func (f *RSSFetcher) Name() string {
	return f.name
}

func (f *RSSFetcher) Fetch(ctx context.Context) ([]NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := f.download()
	if err != nil {
		return nil, fmt.Errorf("%s: download feed: %w", f.name, err)
	}

	feed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: parse feed: %w", f.name, err)
	}

	items := make([]NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}

		var pub time.Time
		if it.PublishedParsed != nil {
			pub = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			pub = *it.UpdatedParsed
		}

		desc := it.Description
		if strings.TrimSpace(desc) == "" {
			desc = it.Content
		}

		items = append(items, NewsItem{
			Title:       strings.TrimSpace(it.Title),
			URL:         strings.TrimSpace(it.Link),
			Source:      f.name,
			Description: snippetText(desc),
			PublishedAt: pub,
		})
	}
	return items, nil
}

// download 单次请求，不做重试；非 2xx 由 colly 作为错误返回
func (f *RSSFetcher) download() ([]byte, error) {
	c := colly.NewCollector(
		colly.UserAgent(rssUserAgent),
		colly.MaxBodySize(rssMaxBodyBytes),
	)
	c.SetRequestTimeout(f.timeout)

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(f.url); err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	return body, nil
}
