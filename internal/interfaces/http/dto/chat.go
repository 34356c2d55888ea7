// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"book-companion-api/internal/domain/entity"
)

// ChatMessageRequest 对话消息请求
type ChatMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatTurnResponse 对话轮次响应
type ChatTurnResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ChatReplyResponse 对话回复响应
type ChatReplyResponse struct {
	BookID  string `json:"book_id"`
	Chapter int    `json:"chapter"`
	Reply   string `json:"reply"`
	Turns   int    `json:"turns"`
}

// ChatHistoryResponse 对话历史响应
type ChatHistoryResponse struct {
	BookID  string              `json:"book_id"`
	Chapter int                 `json:"chapter"`
	Turns   []*ChatTurnResponse `json:"turns"`
}

// ToChatTurnResponse 将领域轮次转换为响应 DTO
func ToChatTurnResponse(t entity.Turn) *ChatTurnResponse {
	return &ChatTurnResponse{
		Role:      string(t.Role),
		Content:   t.Content,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

// ToChatHistoryResponse 将轮次列表转换为历史 DTO
func ToChatHistoryResponse(bookID string, chapter int, turns []entity.Turn) *ChatHistoryResponse {
	resp := &ChatHistoryResponse{
		BookID:  bookID,
		Chapter: chapter,
		Turns:   make([]*ChatTurnResponse, 0, len(turns)),
	}
	for _, t := range turns {
		resp.Turns = append(resp.Turns, ToChatTurnResponse(t))
	}
	return resp
}
