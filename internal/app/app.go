// Package app 根据配置组装各组件，供 cmd/api 与 cmd/collect 共用
package app

import (
	"github.com/LJTian/NewsBrief/internal/cache"
	"github.com/LJTian/NewsBrief/internal/chat"
	"github.com/LJTian/NewsBrief/internal/collector"
	"github.com/LJTian/NewsBrief/internal/config"
	"github.com/LJTian/NewsBrief/internal/llm"
	"github.com/LJTian/NewsBrief/internal/pipeline"
	"github.com/LJTian/NewsBrief/internal/processor"
)

type App struct {
	Pipeline  *pipeline.Pipeline
	Cache     *cache.Cache
	Responder *chat.Responder
}

// Completer 未配置密钥时返回 nil，标注与对话据此走 mock 路径
func Completer(cfg *config.Config) llm.Completer {
	if !cfg.HasCredential() {
		return nil
	}
	return llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
}

func New(cfg *config.Config) *App {
	fetchers := make([]collector.Fetcher, 0, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		fetchers = append(fetchers, collector.NewRSSFetcher(f.Name, f.URL, cfg.FeedTimeout))
	}

	client := Completer(cfg)
	p := pipeline.New(
		collector.NewHeadlines(fetchers, cfg.FeedItemLimit),
		processor.NewAnnotator(client, cfg.PaywalledSources),
	)

	return &App{
		Pipeline:  p,
		Cache:     cache.New(cfg.CacheTTL, p.RunOnce),
		Responder: chat.NewResponder(client),
	}
}
