package chat

import (
	"context"
	"errors"
	"time"

	"book-companion-api/internal/application/library"
	"book-companion-api/internal/config"
	"book-companion-api/internal/domain/entity"
	apperrors "book-companion-api/pkg/errors"
	"book-companion-api/pkg/logger"
)

// DefaultRequestTimeout 单次后端调用的默认超时
const DefaultRequestTimeout = 120 * time.Second

// Backend 外部对话模型端口
// 实现方收到按序消息并同步返回助手回复文本。
type Backend interface {
	Chat(ctx context.Context, turns []entity.Turn) (string, error)
}

// Service 将书籍解析、会话维护与后端调用组合成一次完整的对话交换
type Service struct {
	books    *library.Cache
	sessions *Store
	prompts  *PromptBuilder
	backend  Backend
	timeout  time.Duration
}

// NewService 创建伴读对话服务
func NewService(books *library.Cache, sessions *Store, backend Backend, cfg *config.ChatConfig) *Service {
	timeout := DefaultRequestTimeout
	contextRunes := DefaultChapterContextRunes
	window := DefaultHistoryWindow
	if cfg != nil {
		if cfg.RequestTimeout > 0 {
			timeout = cfg.RequestTimeout
		}
		if cfg.ChapterContextRunes > 0 {
			contextRunes = cfg.ChapterContextRunes
		}
		if cfg.HistoryWindow >= 0 {
			window = cfg.HistoryWindow
		}
	}

	return &Service{
		books:    books,
		sessions: sessions,
		prompts:  NewPromptBuilder(contextRunes, window),
		backend:  backend,
		timeout:  timeout,
	}
}

// Sessions 返回底层会话注册表
func (s *Service) Sessions() *Store {
	return s.sessions
}

// Send 执行一次对话交换并返回助手回复
//
// 流程：校验章节存在 -> 追加用户轮次 -> 组装请求 -> 带超时调用后端 ->
// 追加助手轮次。后端调用不持有任何会话锁。
// 调用失败时已追加的用户轮次保留不回滚，用户重试不丢上下文，
// 代价是可能留下一条没有回复的用户轮次。
func (s *Service) Send(ctx context.Context, key SessionKey, message string) (string, error) {
	book, ok := s.books.Load(ctx, key.BookID)
	if !ok {
		return "", apperrors.ErrBookNotFound
	}
	chapter := book.Chapter(key.Chapter)
	if chapter == nil {
		return "", apperrors.ErrChapterNotFound
	}

	s.sessions.AppendUserTurn(key, message)
	request := s.prompts.BuildRequest(s.sessions.History(key), chapter.Text)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.backend.Chat(callCtx, request)
	if err != nil {
		logger.Error(ctx, "chat backend call failed", err,
			"book_id", key.BookID,
			"chapter", key.Chapter,
		)
		if errors.Is(err, context.DeadlineExceeded) {
			return "", apperrors.Wrap(err, apperrors.CodeChatCallTimeout, "chat backend call timed out")
		}
		return "", apperrors.Wrap(err, apperrors.CodeChatCallFailed, "chat backend call failed")
	}

	s.sessions.AppendAssistantTurn(key, reply)
	return reply, nil
}

// History 返回某个会话的完整轮次记录
// 会话不存在时返回空记录；章节校验交由调用方处理。
func (s *Service) History(key SessionKey) []entity.Turn {
	return s.sessions.History(key)
}

// Reset 清空某个会话，之后的对话从空历史开始
func (s *Service) Reset(key SessionKey) {
	s.sessions.Reset(key)
}
