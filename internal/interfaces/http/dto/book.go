// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"book-companion-api/internal/application/library"
	"book-companion-api/internal/domain/entity"
)

// BookSummaryResponse 书籍摘要响应
type BookSummaryResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author,omitempty"`
	Language     string `json:"language,omitempty"`
	ChapterCount int    `json:"chapter_count"`
}

// BookListResponse 书籍列表响应
type BookListResponse struct {
	Books []*BookSummaryResponse `json:"books"`
}

// TOCEntryResponse 目录条目响应
type TOCEntryResponse struct {
	Title      string `json:"title"`
	SpineIndex int    `json:"spine_index"`
}

// BookDetailResponse 书籍详情响应
type BookDetailResponse struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Author       string              `json:"author,omitempty"`
	Language     string              `json:"language,omitempty"`
	Identifier   string              `json:"identifier,omitempty"`
	ChapterCount int                 `json:"chapter_count"`
	TOC          []*TOCEntryResponse `json:"toc"`
}

// ChapterContentResponse 章节内容响应
type ChapterContentResponse struct {
	BookID       string `json:"book_id"`
	Index        int    `json:"index"`
	Title        string `json:"title,omitempty"`
	Text         string `json:"text"`
	HTML         string `json:"html,omitempty"`
	PrevIndex    *int   `json:"prev_index,omitempty"`
	NextIndex    *int   `json:"next_index,omitempty"`
	ChapterCount int    `json:"chapter_count"`
}

// ToBookSummaryResponse 将库条目转换为摘要 DTO
func ToBookSummaryResponse(e library.Entry) *BookSummaryResponse {
	return &BookSummaryResponse{
		ID:           e.ID,
		Title:        e.Book.Metadata.Title,
		Author:       e.Book.AuthorLine(),
		Language:     e.Book.Metadata.Language,
		ChapterCount: e.Book.ChapterCount(),
	}
}

// ToBookListResponse 将库条目列表转换为列表 DTO
func ToBookListResponse(entries []library.Entry) *BookListResponse {
	resp := &BookListResponse{
		Books: make([]*BookSummaryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Books = append(resp.Books, ToBookSummaryResponse(e))
	}
	return resp
}

// ToBookDetailResponse 将领域实体转换为详情 DTO
func ToBookDetailResponse(id string, b *entity.Book) *BookDetailResponse {
	resp := &BookDetailResponse{
		ID:           id,
		Title:        b.Metadata.Title,
		Author:       b.AuthorLine(),
		Language:     b.Metadata.Language,
		Identifier:   b.Metadata.Identifier,
		ChapterCount: b.ChapterCount(),
		TOC:          make([]*TOCEntryResponse, 0, len(b.TOC)),
	}
	for _, t := range b.TOC {
		resp.TOC = append(resp.TOC, &TOCEntryResponse{
			Title:      t.Title,
			SpineIndex: t.SpineIndex,
		})
	}
	return resp
}

// ToChapterContentResponse 将章节实体转换为内容 DTO
func ToChapterContentResponse(bookID string, index int, b *entity.Book, ch *entity.ChapterContent) *ChapterContentResponse {
	resp := &ChapterContentResponse{
		BookID:       bookID,
		Index:        index,
		Title:        ch.Title,
		Text:         ch.Text,
		HTML:         ch.HTML,
		ChapterCount: b.ChapterCount(),
	}
	if index > 0 {
		prev := index - 1
		resp.PrevIndex = &prev
	}
	if index < b.ChapterCount()-1 {
		next := index + 1
		resp.NextIndex = &next
	}
	return resp
}
