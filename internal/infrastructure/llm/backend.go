package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"book-companion-api/internal/domain/entity"
	"book-companion-api/pkg/metrics"
)

// EinoBackend 基于 Eino ChatModel 的对话后端实现
type EinoBackend struct {
	factory  *EinoFactory
	provider string
}

// NewEinoBackend 创建对话后端，使用工厂的默认提供商
func NewEinoBackend(factory *EinoFactory) *EinoBackend {
	return &EinoBackend{
		factory:  factory,
		provider: factory.DefaultProvider(),
	}
}

// Chat 同步调用模型并返回回复文本
// 入参消息按序转换为 schema.Message；token 用量取自响应元数据。
func (b *EinoBackend) Chat(ctx context.Context, turns []entity.Turn) (string, error) {
	chatModel, err := b.factory.Get(ctx, b.provider)
	if err != nil {
		return "", err
	}

	messages := make([]*schema.Message, 0, len(turns))
	for i := range turns {
		messages = append(messages, toSchemaMessage(&turns[i]))
	}

	modelName := b.factory.ProviderModel(b.provider)
	start := time.Now()
	out, err := chatModel.Generate(ctx, messages)
	metrics.LLMCallDuration.WithLabelValues(b.provider, modelName).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(b.provider, modelName, "error").Inc()
		return "", fmt.Errorf("llm generate: %w", err)
	}
	metrics.LLMCallTotal.WithLabelValues(b.provider, modelName, "success").Inc()

	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(b.provider, modelName, "prompt").
			Add(float64(out.ResponseMeta.Usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(b.provider, modelName, "completion").
			Add(float64(out.ResponseMeta.Usage.CompletionTokens))
	}

	reply := strings.TrimSpace(out.Content)
	if reply == "" {
		return "", fmt.Errorf("empty llm response")
	}
	return reply, nil
}

// toSchemaMessage 领域轮次转 Eino 消息
func toSchemaMessage(t *entity.Turn) *schema.Message {
	switch t.Role {
	case entity.RoleSystem:
		return schema.SystemMessage(t.Content)
	case entity.RoleAssistant:
		return schema.AssistantMessage(t.Content, nil)
	default:
		return schema.UserMessage(t.Content)
	}
}
