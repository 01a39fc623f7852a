package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/LJTian/NewsBrief/internal/app"
	"github.com/LJTian/NewsBrief/internal/config"
	"github.com/LJTian/NewsBrief/internal/logging"
	"github.com/sirupsen/logrus"
)

// 只执行一轮抓取+标注并把结果以 JSON 打印到 stdout，适合手动触发与排查
func main() {
	cfg, err := config.Load(os.Getenv(config.PathEnv))
	if err != nil {
		logrus.Fatalf("load config failed: %v", err)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	// 日志走 stderr，stdout 只输出结果
	logrus.SetOutput(os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	agg, err := app.New(cfg).Pipeline.RunOnce(ctx, time.Now())
	if err != nil {
		logrus.Fatalf("collect failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(agg); err != nil {
		logrus.Fatalf("encode result failed: %v", err)
	}
}
