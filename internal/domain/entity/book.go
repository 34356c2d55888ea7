// Package entity 定义领域实体
package entity

// BookMetadata 书籍元信息
type BookMetadata struct {
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Language   string   `json:"language,omitempty"`
	Identifier string   `json:"identifier,omitempty"`
}

// ChapterContent 书脊中的一个章节
// Text 为纯文本正文（用于对话 grounding），HTML 为渲染用内容。
type ChapterContent struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
	HTML  string `json:"html,omitempty"`
}

// TOCEntry 目录条目，SpineIndex 指向书脊内的位置
type TOCEntry struct {
	Title      string `json:"title"`
	SpineIndex int    `json:"spine_index"`
}

// Book 预处理后的书籍聚合，加载后不可变
type Book struct {
	Metadata BookMetadata     `json:"metadata"`
	Spine    []ChapterContent `json:"spine"`
	TOC      []TOCEntry       `json:"toc,omitempty"`
}

// ChapterCount 返回书脊长度
func (b *Book) ChapterCount() int {
	if b == nil {
		return 0
	}
	return len(b.Spine)
}

// Chapter 按下标返回章节，越界时返回 nil
// 下标从 0 开始且连续，是章节的唯一位置标识。
func (b *Book) Chapter(index int) *ChapterContent {
	if b == nil || index < 0 || index >= len(b.Spine) {
		return nil
	}
	return &b.Spine[index]
}

// AuthorLine 返回逗号连接的作者串
func (b *Book) AuthorLine() string {
	if b == nil || len(b.Metadata.Authors) == 0 {
		return ""
	}
	line := b.Metadata.Authors[0]
	for _, a := range b.Metadata.Authors[1:] {
		line += ", " + a
	}
	return line
}
