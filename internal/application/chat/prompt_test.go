package chat

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-companion-api/internal/domain/entity"
)

func TestBuildRequestShape(t *testing.T) {
	builder := NewPromptBuilder(0, 0)
	history := []entity.Turn{
		entity.NewTurn(entity.RoleUser, "q1"),
		entity.NewTurn(entity.RoleAssistant, "a1"),
	}

	request := builder.BuildRequest(history, "chapter text")

	require.Len(t, request, 3)
	assert.Equal(t, entity.RoleSystem, request[0].Role)
	assert.Contains(t, request[0].Content, "reading companion")
	assert.Contains(t, request[0].Content, "--- CHAPTER TEXT ---")
	assert.Contains(t, request[0].Content, "chapter text")
	assert.Contains(t, request[0].Content, "--- END CHAPTER TEXT ---")
	assert.Equal(t, "q1", request[1].Content)
	assert.Equal(t, "a1", request[2].Content)
}

func TestBuildRequestTruncatesChapterByRunes(t *testing.T) {
	const budget = 100
	builder := NewPromptBuilder(budget, 0)

	// 多字节字符保证按 rune 截断而不是按字节
	chapter := strings.Repeat("秋", 250)
	request := builder.BuildRequest(nil, chapter)

	require.Len(t, request, 1)
	start := strings.Index(request[0].Content, "--- CHAPTER TEXT ---\n") + len("--- CHAPTER TEXT ---\n")
	end := strings.Index(request[0].Content, "\n--- END CHAPTER TEXT ---")
	embedded := request[0].Content[start:end]

	assert.Equal(t, budget, utf8.RuneCountInString(embedded))
	assert.Equal(t, strings.Repeat("秋", budget), embedded)
}

func TestBuildRequestGroundingStableAcrossHistoryGrowth(t *testing.T) {
	builder := NewPromptBuilder(50, 0)
	chapter := strings.Repeat("x", 500)

	short := builder.BuildRequest(nil, chapter)

	long := builder.BuildRequest([]entity.Turn{
		entity.NewTurn(entity.RoleUser, "q1"),
		entity.NewTurn(entity.RoleAssistant, "a1"),
		entity.NewTurn(entity.RoleUser, "q2"),
	}, chapter)

	// 对话变长不改变系统轮次里的章节前缀
	assert.Equal(t, short[0].Content, long[0].Content)
}

func TestBuildRequestShortChapterNotPadded(t *testing.T) {
	builder := NewPromptBuilder(8000, 0)
	request := builder.BuildRequest(nil, "tiny chapter")
	assert.Contains(t, request[0].Content, "--- CHAPTER TEXT ---\ntiny chapter\n--- END CHAPTER TEXT ---")
}

func TestBuildRequestHistoryWindow(t *testing.T) {
	const window = 10
	builder := NewPromptBuilder(100, window)

	history := make([]entity.Turn, 0, 25)
	for i := 0; i < 25; i++ {
		history = append(history, entity.NewTurn(entity.RoleUser, strings.Repeat("m", i+1)))
	}

	request := builder.BuildRequest(history, "chapter")

	// system + 窗口内最近 10 条
	require.Len(t, request, window+1)
	assert.Equal(t, entity.RoleSystem, request[0].Role)
	assert.Equal(t, history[len(history)-window].Content, request[1].Content)
	assert.Equal(t, history[len(history)-1].Content, request[window].Content)
}

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "", truncateByRunes("anything", 0))
	assert.Equal(t, "abc", truncateByRunes("abc", 10))
	assert.Equal(t, "ab", truncateByRunes("abc", 2))
	assert.Equal(t, "日本", truncateByRunes("日本語", 2))
}
