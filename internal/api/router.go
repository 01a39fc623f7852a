package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/LJTian/NewsBrief/internal/chat"
	"github.com/LJTian/NewsBrief/internal/logging"
	"github.com/LJTian/NewsBrief/internal/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewsSource 提供当日聚合结果（通常是 cache.Cache）
type NewsSource interface {
	Get(ctx context.Context) (*pipeline.Aggregate, error)
}

// ChatResponder 生成一条对话回复
type ChatResponder interface {
	Respond(ctx context.Context, history []chat.Turn, news *pipeline.Aggregate) (string, error)
}

type Server struct {
	news NewsSource
	chat ChatResponder
	log  *logrus.Entry
}

func NewServer(news NewsSource, responder ChatResponder) *Server {
	return &Server{
		news: news,
		chat: responder,
		log:  logging.For("api"),
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/news", s.getNews)
		api.POST("/chat", s.postChat)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getNews(c *gin.Context) {
	agg, err := s.news.Get(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Error("get news failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch news"})
		return
	}
	c.JSON(http.StatusOK, agg)
}

type chatRequest struct {
	Messages []chat.Turn `json:"messages" binding:"required,min=1,dive"`
	// Context 缺省时使用当前缓存的聚合结果
	Context *pipeline.Aggregate `json:"context"`
}

func (s *Server) postChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat request"})
		return
	}

	ctx := c.Request.Context()
	news := req.Context
	if news == nil {
		agg, err := s.news.Get(ctx)
		if err != nil {
			s.log.WithError(err).Error("load news context for chat failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chat request"})
			return
		}
		news = agg
	}

	reply, err := s.chat.Respond(ctx, req.Messages, news)
	if err != nil {
		if errors.Is(err, chat.ErrNoTurns) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat request"})
			return
		}
		s.log.WithError(err).Error("chat reply failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chat request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
