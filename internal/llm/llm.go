// Package llm 封装外部 chat completions 服务，供标注与对话共用
package llm

import (
	"context"
	"errors"
)

// 消息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyResponse 服务返回了成功状态但没有任何 choice
var ErrEmptyResponse = errors.New("llm: empty response")

// Message 一条对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 一次补全请求；JSON 为 true 时要求服务返回 JSON 对象
type Request struct {
	Messages []Message
	JSON     bool
}

// Completer 单次调用，不做重试
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
