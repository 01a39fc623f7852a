package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

// PathEnv 指定 YAML 配置文件路径的环境变量
const PathEnv = "NEWSBRIEF_CONFIG"

// FeedSource 一个具名的 RSS/Atom 数据源
type FeedSource struct {
	Name string `koanf:"name"`
	URL  string `koanf:"url"`
}

type Config struct {
	AppPort   string `koanf:"app_port"`
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// OpenAIAPIKey 为空时，标注与对话都走 mock 路径
	OpenAIAPIKey  string `koanf:"openai_api_key"`
	OpenAIBaseURL string `koanf:"openai_base_url"`
	OpenAIModel   string `koanf:"openai_model"`

	CacheTTL      time.Duration `koanf:"cache_ttl"`
	FeedTimeout   time.Duration `koanf:"feed_timeout"`
	FeedItemLimit int           `koanf:"feed_item_limit"`

	Feeds            []FeedSource `koanf:"feeds"`
	PaywalledSources []string     `koanf:"paywalled_sources"`

	BasicAuthUser string `koanf:"app_basic_user"`
	BasicAuthPass string `koanf:"app_basic_pass"`
	WebRoot       string `koanf:"web_root"`
}

// DefaultFeeds 未配置 feeds 时使用的默认新闻源
var DefaultFeeds = []FeedSource{
	{Name: "AP News", URL: "https://apnews.com/index.rss"},
	{Name: "NYT World", URL: "https://rss.nytimes.com/services/xml/rss/nyt/World.xml"},
	{Name: "NPR", URL: "https://feeds.npr.org/1001/rss.xml"},
	{Name: "BBC News", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
}

// DefaultPaywalledSources 已知的硬付费墙发布方（按 source 名称精确匹配）
var DefaultPaywalledSources = []string{"Reuters"}

func defaults() *Config {
	return &Config{
		AppPort:       "9000",
		LogLevel:      "info",
		LogFormat:     "text",
		OpenAIBaseURL: "https://api.openai.com/v1",
		OpenAIModel:   "gpt-4o-mini",
		CacheTTL:      15 * time.Minute,
		FeedTimeout:   10 * time.Second,
		FeedItemLimit: 5,
	}
}

// Load 按 默认值 -> YAML 文件 -> 环境变量 的顺序加载配置。
// path 为空或文件不存在时跳过 YAML。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logrus.WithField("path", path).Warn("config file not found, using defaults")
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	// APP_PORT -> app_port, OPENAI_API_KEY -> openai_api_key
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 列表类配置为空时回落到默认值
	if len(cfg.Feeds) == 0 {
		cfg.Feeds = append([]FeedSource(nil), DefaultFeeds...)
	}
	if len(cfg.PaywalledSources) == 0 {
		cfg.PaywalledSources = append([]string(nil), DefaultPaywalledSources...)
	}
	if cfg.FeedItemLimit <= 0 {
		cfg.FeedItemLimit = 5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}

	logrus.WithFields(logrus.Fields{
		"port":       cfg.AppPort,
		"feeds":      len(cfg.Feeds),
		"cache_ttl":  cfg.CacheTTL.String(),
		"credential": cfg.HasCredential(),
	}).Info("config loaded")
	return cfg, nil
}

// HasCredential 是否配置了外部模型服务的密钥；这是切换 service/mock 的唯一依据
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.OpenAIAPIKey) != ""
}
