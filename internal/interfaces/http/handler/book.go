// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"strconv"

	"book-companion-api/internal/application/library"
	"book-companion-api/internal/domain/repository"
	"book-companion-api/internal/infrastructure/persistence/bookfs"
	"book-companion-api/internal/interfaces/http/dto"
	"book-companion-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// BookHandler 书籍处理器
type BookHandler struct {
	books *library.Cache
	store *bookfs.Store
}

// NewBookHandler 创建书籍处理器
func NewBookHandler(books *library.Cache, store *bookfs.Store) *BookHandler {
	return &BookHandler{
		books: books,
		store: store,
	}
}

// List 列出书库中的所有书籍
// @Summary 列出书籍
// @Description 扫描书库目录并返回全部可用书籍的摘要
// @Tags Books
// @Produce json
// @Success 200 {object} dto.Response[dto.BookListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books [get]
func (h *BookHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	entries, err := h.books.List(ctx)
	if err != nil {
		logger.Error(ctx, "failed to list books", err)
		dto.InternalError(c, "failed to list books")
		return
	}

	dto.Success(c, dto.ToBookListResponse(entries))
}

// Get 获取书籍详情
// @Summary 获取书籍详情
// @Description 返回书籍元数据、章节数与目录
// @Tags Books
// @Produce json
// @Param bid path string true "书籍 ID"
// @Success 200 {object} dto.Response[dto.BookDetailResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid} [get]
func (h *BookHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := c.Param("bid")

	book, ok := h.books.Load(ctx, bookID)
	if !ok {
		dto.NotFound(c, "book not found: "+bookID)
		return
	}

	dto.Success(c, dto.ToBookDetailResponse(bookID, book))
}

// Chapter 获取章节内容
// @Summary 获取章节内容
// @Description 返回指定章节的文本与前后章节索引
// @Tags Books
// @Produce json
// @Param bid path string true "书籍 ID"
// @Param idx path int true "章节索引（从 0 开始）"
// @Success 200 {object} dto.Response[dto.ChapterContentResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/chapters/{idx} [get]
func (h *BookHandler) Chapter(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := c.Param("bid")

	index, err := strconv.Atoi(c.Param("idx"))
	if err != nil {
		dto.BadRequest(c, "chapter index must be an integer")
		return
	}

	book, ok := h.books.Load(ctx, bookID)
	if !ok {
		dto.NotFound(c, "book not found: "+bookID)
		return
	}

	chapter := book.Chapter(index)
	if chapter == nil {
		dto.NotFound(c, "chapter index out of range: "+strconv.Itoa(index))
		return
	}

	dto.Success(c, dto.ToChapterContentResponse(bookID, index, book, chapter))
}

// Image 读取书籍内嵌图片
// @Summary 获取书籍图片
// @Description 返回书籍数据目录下的图片文件
// @Tags Books
// @Produce octet-stream
// @Param bid path string true "书籍 ID"
// @Param name path string true "图片文件名"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/images/{name} [get]
func (h *BookHandler) Image(c *gin.Context) {
	bookID := c.Param("bid")
	name := c.Param("name")

	path, err := h.store.ImagePath(bookID, name)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotExist) {
			dto.NotFound(c, "image not found: "+name)
			return
		}
		logger.Error(c.Request.Context(), "failed to resolve image path", err,
			"book_id", bookID,
			"image", name,
		)
		dto.InternalError(c, "failed to read image")
		return
	}

	c.File(path)
}
