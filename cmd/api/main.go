package main

import (
	"os"

	"github.com/LJTian/NewsBrief/internal/api"
	"github.com/LJTian/NewsBrief/internal/app"
	"github.com/LJTian/NewsBrief/internal/config"
	"github.com/LJTian/NewsBrief/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load(os.Getenv(config.PathEnv))
	if err != nil {
		logrus.Fatalf("load config failed: %v", err)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	if !cfg.HasCredential() {
		logrus.Warn("no OPENAI_API_KEY found, annotation and chat use mock logic")
	}

	a := app.New(cfg)

	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger())
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 与 /metrics 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	api.NewServer(a.Cache, a.Responder).RegisterRoutes(r)

	// 若配置了前端目录，则托管 SPA 静态文件并做 fallback
	if cfg.WebRoot != "" {
		api.ServeSPA(r, cfg.WebRoot)
	}

	addr := ":" + cfg.AppPort
	logrus.Infof("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		logrus.Fatalf("server exit: %v", err)
	}
}
