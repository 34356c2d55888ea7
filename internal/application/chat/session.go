// Package chat 提供按 (书籍, 章节) 隔离的伴读会话管理
package chat

import (
	"sync"

	"book-companion-api/internal/domain/entity"
	"book-companion-api/pkg/metrics"
)

// SessionKey 唯一标识一个会话：一本书的一个章节
type SessionKey struct {
	BookID  string
	Chapter int
}

// session 单个会话的轮次序列，只追加
type session struct {
	mu    sync.Mutex
	turns []entity.Turn
}

func (s *session) append(role entity.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, entity.NewTurn(role, content))
	metrics.ChatTurnsTotal.WithLabelValues(string(role)).Inc()
}

// snapshot 返回轮次副本，调用方可随意持有
func (s *session) snapshot() []entity.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Store 进程内会话注册表
//
// 同一 key 的修改经由该会话自己的互斥量串行化，不同 key 完全并行。
// 会话只存活于进程生命周期内，不做持久化。
type Store struct {
	mu       sync.RWMutex
	sessions map[SessionKey]*session
}

// NewStore 创建会话注册表
func NewStore() *Store {
	return &Store{
		sessions: make(map[SessionKey]*session),
	}
}

// getOrCreate 返回已有会话，缺失时注册一个空会话
func (s *Store) getOrCreate(key SessionKey) *session {
	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[key]; ok {
		return sess
	}
	sess = &session{}
	s.sessions[key] = sess
	metrics.ChatSessionsActive.Inc()
	return sess
}

// AppendUserTurn 追加一条用户轮次，会话不存在时先创建
func (s *Store) AppendUserTurn(key SessionKey, text string) {
	s.getOrCreate(key).append(entity.RoleUser, text)
}

// AppendAssistantTurn 追加一条助手轮次
// 只应在后端成功返回之后调用。
func (s *Store) AppendAssistantTurn(key SessionKey, text string) {
	s.getOrCreate(key).append(entity.RoleAssistant, text)
}

// History 返回会话轮次的按序副本，会话不存在时返回空
func (s *Store) History(key SessionKey) []entity.Turn {
	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return sess.snapshot()
}

// Reset 整体移除会话；key 不存在时是无操作
func (s *Store) Reset(key SessionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[key]; ok {
		delete(s.sessions, key)
		metrics.ChatSessionsActive.Dec()
	}
}

// Len 返回当前活跃会话数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
