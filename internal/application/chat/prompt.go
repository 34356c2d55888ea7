package chat

import (
	"strings"
	"unicode/utf8"

	"book-companion-api/internal/domain/entity"
)

const (
	// DefaultChapterContextRunes 系统提示中章节文本前缀的默认预算
	DefaultChapterContextRunes = 8000
	// DefaultHistoryWindow 单次请求携带的最近轮次数默认上限
	DefaultHistoryWindow = 100
)

// systemPromptHeader 伴读角色设定，章节文本紧随其后
const systemPromptHeader = `You are a reading companion. The user is reading the following book chapter. ` +
	`Your role is to ask thought-provoking comprehension questions, discuss themes, ` +
	`clarify difficult passages, and help the reader engage more deeply with the text. ` +
	`Keep responses concise and conversational.`

// PromptBuilder 组装发送给模型的消息序列
type PromptBuilder struct {
	chapterContextRunes int
	historyWindow       int
}

// NewPromptBuilder 创建提示组装器，非正数参数回退到默认值
func NewPromptBuilder(chapterContextRunes, historyWindow int) *PromptBuilder {
	if chapterContextRunes <= 0 {
		chapterContextRunes = DefaultChapterContextRunes
	}
	if historyWindow < 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &PromptBuilder{
		chapterContextRunes: chapterContextRunes,
		historyWindow:       historyWindow,
	}
}

// BuildRequest 返回完整的请求消息序列：
// 首条是角色设定加章节文本前缀的合成 system 轮次，其后是累计的会话历史。
// 章节文本永远取前缀截断，同一章节无论对话多长 grounding 都相同。
// 历史超出窗口时只保留最近的轮次，存储中的完整记录不受影响。
func (p *PromptBuilder) BuildRequest(history []entity.Turn, chapterText string) []entity.Turn {
	if p.historyWindow > 0 && len(history) > p.historyWindow {
		history = history[len(history)-p.historyWindow:]
	}

	system := entity.NewTurn(entity.RoleSystem, systemPrompt(chapterText, p.chapterContextRunes))

	out := make([]entity.Turn, 0, len(history)+1)
	out = append(out, system)
	out = append(out, history...)
	return out
}

// systemPrompt 拼接角色设定与截断后的章节文本
func systemPrompt(chapterText string, budget int) string {
	var b strings.Builder
	b.WriteString(systemPromptHeader)
	b.WriteString("\n\n--- CHAPTER TEXT ---\n")
	b.WriteString(truncateByRunes(chapterText, budget))
	b.WriteString("\n--- END CHAPTER TEXT ---")
	return b.String()
}

// truncateByRunes 按 rune 数量截断字符串
func truncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
