// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strconv"

	"book-companion-api/internal/application/chat"
	"book-companion-api/internal/interfaces/http/dto"
	apperrors "book-companion-api/pkg/errors"
	"book-companion-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ChatHandler 章节对话处理器
type ChatHandler struct {
	svc *chat.Service
}

// NewChatHandler 创建章节对话处理器
func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

func bindSessionKey(c *gin.Context) (chat.SessionKey, bool) {
	bookID := c.Param("bid")
	index, err := strconv.Atoi(c.Param("idx"))
	if err != nil {
		dto.BadRequest(c, "chapter index must be an integer")
		return chat.SessionKey{}, false
	}
	return chat.SessionKey{BookID: bookID, Chapter: index}, true
}

// respondAppError 将应用错误映射为 HTTP 响应
func respondAppError(c *gin.Context, err error) {
	if appErr := apperrors.AsAppError(err); appErr != nil {
		dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
			ErrorCode: string(appErr.Code),
			Details:   appErr.Detail,
		})
		return
	}
	dto.InternalError(c, "internal server error")
}

// Send 发送对话消息
// @Summary 章节对话
// @Description 在指定书籍章节的会话中发送一条消息并返回模型回复
// @Tags Chat
// @Accept json
// @Produce json
// @Param bid path string true "书籍 ID"
// @Param idx path int true "章节索引（从 0 开始）"
// @Param body body dto.ChatMessageRequest true "对话消息请求"
// @Success 200 {object} dto.Response[dto.ChatReplyResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/chapters/{idx}/chat [post]
func (h *ChatHandler) Send(c *gin.Context) {
	ctx := c.Request.Context()

	key, ok := bindSessionKey(c)
	if !ok {
		return
	}

	var req dto.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ctx = logger.WithContext(ctx, logger.BookIDKey, key.BookID)
	ctx = logger.WithContext(ctx, logger.ChapterKey, strconv.Itoa(key.Chapter))

	reply, err := h.svc.Send(ctx, key, req.Message)
	if err != nil {
		respondAppError(c, err)
		return
	}

	dto.Success(c, &dto.ChatReplyResponse{
		BookID:  key.BookID,
		Chapter: key.Chapter,
		Reply:   reply,
		Turns:   len(h.svc.History(key)),
	})
}

// History 获取对话历史
// @Summary 对话历史
// @Description 返回指定书籍章节会话的全部对话轮次
// @Tags Chat
// @Produce json
// @Param bid path string true "书籍 ID"
// @Param idx path int true "章节索引（从 0 开始）"
// @Success 200 {object} dto.Response[dto.ChatHistoryResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/chapters/{idx}/chat [get]
func (h *ChatHandler) History(c *gin.Context) {
	key, ok := bindSessionKey(c)
	if !ok {
		return
	}

	turns := h.svc.History(key)
	dto.Success(c, dto.ToChatHistoryResponse(key.BookID, key.Chapter, turns))
}

// Reset 重置对话会话
// @Summary 重置对话
// @Description 清空指定书籍章节的会话历史
// @Tags Chat
// @Produce json
// @Param bid path string true "书籍 ID"
// @Param idx path int true "章节索引（从 0 开始）"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/chapters/{idx}/chat/reset [post]
func (h *ChatHandler) Reset(c *gin.Context) {
	key, ok := bindSessionKey(c)
	if !ok {
		return
	}

	h.svc.Reset(key)
	dto.NoContent(c)
}
