package api

import (
	"crypto/subtle"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/LJTian/NewsBrief/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger 为每个请求分配 request id 并记录一行访问日志
func RequestLogger() gin.HandlerFunc {
	log := logging.For("http")
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)
		c.Set("request_id", reqID)

		c.Next()

		log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"request_id": reqID,
		}).Info("http request")
	}
}

// authExempt 探活与指标抓取不带凭证
var authExempt = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BasicAuth 配置了 APP_BASIC_USER / APP_BASIC_PASS 时为站点加一层访问密码，authExempt 中的路径除外
func BasicAuth(user, pass string) gin.HandlerFunc {
	want := []byte(user + ":" + pass)
	return func(c *gin.Context) {
		if _, open := authExempt[c.Request.URL.Path]; open {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u+":"+p), want) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="NewsBrief", charset="UTF-8"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// ServeSPA 托管看板静态文件。未匹配的 /api 请求返回 JSON 404，其余 GET 回落到 index.html
func ServeSPA(r *gin.Engine, webRoot string) {
	indexFile := filepath.Join(webRoot, "index.html")
	r.Static("/assets", filepath.Join(webRoot, "assets"))
	r.NoRoute(func(c *gin.Context) {
		switch {
		case strings.HasPrefix(c.Request.URL.Path, "/api/"):
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		case c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead:
			c.Status(http.StatusNotFound)
		default:
			c.File(indexFile)
		}
	})
}
