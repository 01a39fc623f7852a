package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/LJTian/NewsBrief/internal/llm"
	"github.com/LJTian/NewsBrief/internal/metrics"
	"github.com/LJTian/NewsBrief/internal/pipeline"
)

// ErrNoTurns 对话历史中没有 user/assistant 消息
var ErrNoTurns = errors.New("chat: empty conversation")

// Turn 一条对话消息
type Turn struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

const persona = `You are an expert news analyst and AI assistant for NewsBrief.
Use the provided news context to answer user questions, connect stories, and provide in-depth information.
If a user asks for a link, provide the link formatted in markdown, and mention if it is paywalled based on the context.
Make your answers informative, neutral, and reliable.

TODAY'S NEWS CONTEXT:
`

const mockReplyTemplate = `I'm a mock AI agent. To interact with the real AI, add an OPENAI_API_KEY to your environment variables.
I see you're asking about: "%s".
From today's news context, there are %d top stories.`

// Responder 有 Completer 时调用外部服务；服务失败直接返回错误，由调用方决定兜底文案
type Responder struct {
	client llm.Completer
}

// NewResponder client 为 nil 表示未配置密钥，走 mock
func NewResponder(client llm.Completer) *Responder {
	return &Responder{client: client}
}

// Respond 根据历史与当日新闻上下文生成一条回复；不在服务端保存历史
func (r *Responder) Respond(ctx context.Context, history []Turn, news *pipeline.Aggregate) (string, error) {
	turns := withoutSystem(history)
	if len(turns) == 0 {
		return "", ErrNoTurns
	}

	if r.client == nil {
		metrics.ChatReplies.WithLabelValues("mock", "ok").Inc()
		return mockReply(turns, news), nil
	}

	reply, err := r.serviceReply(ctx, turns, news)
	if err != nil {
		metrics.ChatReplies.WithLabelValues("service", "error").Inc()
		return "", err
	}
	metrics.ChatReplies.WithLabelValues("service", "ok").Inc()
	return reply, nil
}

func (r *Responder) serviceReply(ctx context.Context, turns []Turn, news *pipeline.Aggregate) (string, error) {
	system, err := systemPrompt(news)
	if err != nil {
		return "", err
	}

	msgs := make([]llm.Message, 0, len(turns)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, t := range turns {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}

	reply, err := r.client.Complete(ctx, llm.Request{Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return reply, nil
}

func systemPrompt(news *pipeline.Aggregate) (string, error) {
	if news == nil {
		news = &pipeline.Aggregate{}
	}
	bs, err := json.MarshalIndent(news, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal news context: %w", err)
	}
	return persona + string(bs), nil
}

func mockReply(turns []Turn, news *pipeline.Aggregate) string {
	count := 0
	if news != nil {
		count = len(news.Articles)
	}
	return fmt.Sprintf(mockReplyTemplate, lastUserContent(turns), count)
}

func lastUserContent(turns []Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == llm.RoleUser {
			return strings.TrimSpace(turns[i].Content)
		}
	}
	return ""
}

// withoutSystem 丢弃调用方传入的 system 消息，由服务端统一注入
func withoutSystem(history []Turn) []Turn {
	out := make([]Turn, 0, len(history))
	for _, t := range history {
		if t.Role == llm.RoleSystem {
			continue
		}
		out = append(out, t)
	}
	return out
}
