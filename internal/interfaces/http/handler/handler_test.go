package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-companion-api/internal/application/chat"
	"book-companion-api/internal/application/library"
	"book-companion-api/internal/config"
	"book-companion-api/internal/domain/entity"
	"book-companion-api/internal/infrastructure/persistence/bookfs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// echoBackend 固定回复的对话后端
type echoBackend struct {
	reply string
	err   error
}

func (b *echoBackend) Chat(_ context.Context, _ []entity.Turn) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return b.reply, nil
}

type testEnv struct {
	engine *gin.Engine
	store  *bookfs.Store
}

func writeFixtureBook(t *testing.T, root, id string, chapters int) {
	t.Helper()
	book := &entity.Book{
		Metadata: entity.BookMetadata{
			Title:   "Dracula",
			Authors: []string{"Bram Stoker"},
		},
		TOC: []entity.TOCEntry{{Title: "Chapter 1", SpineIndex: 0}},
	}
	for i := 0; i < chapters; i++ {
		book.Spine = append(book.Spine, entity.ChapterContent{
			Title: "Chapter",
			Text:  "some chapter text",
		})
	}

	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	f, err := os.Create(filepath.Join(dir, bookfs.BookFileName))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, bookfs.EncodeBook(f, book))
}

func newTestEnv(t *testing.T, backend chat.Backend) *testEnv {
	t.Helper()
	root := t.TempDir()
	writeFixtureBook(t, root, "dracula_data", 12)

	store := bookfs.NewStore(&config.LibraryConfig{Root: root})
	cache, err := library.NewCache(store, 4)
	require.NoError(t, err)

	svc := chat.NewService(cache, chat.NewStore(), backend, nil)

	bookHandler := NewBookHandler(cache, store)
	chatHandler := NewChatHandler(svc)

	engine := gin.New()
	v1 := engine.Group("/v1")
	books := v1.Group("/books")
	books.GET("", bookHandler.List)
	books.GET("/:bid", bookHandler.Get)
	books.GET("/:bid/chapters/:idx", bookHandler.Chapter)
	books.GET("/:bid/images/:name", bookHandler.Image)
	books.POST("/:bid/chapters/:idx/chat", chatHandler.Send)
	books.GET("/:bid/chapters/:idx/chat", chatHandler.History)
	books.POST("/:bid/chapters/:idx/chat/reset", chatHandler.Reset)

	return &testEnv{engine: engine, store: store}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestBookList(t *testing.T) {
	env := newTestEnv(t, &echoBackend{reply: "ok"})

	w := env.do(http.MethodGet, "/v1/books", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	books := data["books"].([]any)
	require.Len(t, books, 1)

	first := books[0].(map[string]any)
	assert.Equal(t, "dracula_data", first["id"])
	assert.Equal(t, "Dracula", first["title"])
	assert.Equal(t, "Bram Stoker", first["author"])
	assert.EqualValues(t, 12, first["chapter_count"])
}

func TestBookGet(t *testing.T) {
	env := newTestEnv(t, &echoBackend{reply: "ok"})

	w := env.do(http.MethodGet, "/v1/books/dracula_data", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "Dracula", data["title"])
	assert.EqualValues(t, 12, data["chapter_count"])
	assert.NotEmpty(t, data["toc"])
}

func TestBookGetNotFound(t *testing.T) {
	env := newTestEnv(t, &echoBackend{reply: "ok"})

	w := env.do(http.MethodGet, "/v1/books/ghost_data", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookChapterBoundaries(t *testing.T) {
	env := newTestEnv(t, &echoBackend{reply: "ok"})

	// 12 章的书：下标 11 是最后一个合法章节
	w := env.do(http.MethodGet, "/v1/books/dracula_data/chapters/11", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 11, data["index"])
	assert.EqualValues(t, 10, data["prev_index"])
	assert.Nil(t, data["next_index"])

	// 下标 12 越界
	w = env.do(http.MethodGet, "/v1/books/dracula_data/chapters/12", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/v1/books/dracula_data/chapters/-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/v1/books/dracula_data/chapters/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookChapterFirstHasNoPrev(t *testing.T) {
	env := newTestEnv(t, &echoBackend{reply: "ok"})

	w := env.do(http.MethodGet, "/v1/books/dracula_data/chapters/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Nil(t, data["prev_index"])
	assert.EqualValues(t, 1, data["next_index"])
}

func TestBookImage(t *testing.T) {
	env := newTestEnv(t, &echoBackend{reply: "ok"})

	imgDir := filepath.Join(env.store.Root(), "dracula_data", bookfs.ImagesDirName)
	require.NoError(t, os.MkdirAll(imgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(imgDir, "cover.jpg"), []byte("jpegbytes"), 0o644))

	w := env.do(http.MethodGet, "/v1/books/dracula_data/images/cover.jpg", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpegbytes", w.Body.String())

	w = env.do(http.MethodGet, "/v1/books/dracula_data/images/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatSendAndHistory(t *testing.T) {
	env := newTestEnv(t, &echoBackend{reply: "Loss and memory."})

	w := env.do(http.MethodPost, "/v1/books/dracula_data/chapters/2/chat",
		map[string]string{"message": "What are the themes?"})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "Loss and memory.", data["reply"])
	assert.EqualValues(t, 2, data["turns"])

	w = env.do(http.MethodGet, "/v1/books/dracula_data/chapters/2/chat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	turns := decodeBody(t, w)["data"].(map[string]any)["turns"].([]any)
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].(map[string]any)["role"])
	assert.Equal(t, "assistant", turns[1].(map[string]any)["role"])

	// 其它章节的会话不受影响
	w = env.do(http.MethodGet, "/v1/books/dracula_data/chapters/3/chat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["data"].(map[string]any)["turns"])
}

func TestChatSendValidation(t *testing.T) {
	env := newTestEnv(t, &echoBackend{reply: "ok"})

	// 空请求体
	w := env.do(http.MethodPost, "/v1/books/dracula_data/chapters/2/chat", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 未知书籍
	w = env.do(http.MethodPost, "/v1/books/ghost_data/chapters/0/chat",
		map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 越界章节
	w = env.do(http.MethodPost, "/v1/books/dracula_data/chapters/99/chat",
		map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatSendBackendFailure(t *testing.T) {
	env := newTestEnv(t, &echoBackend{err: errors.New("backend unavailable")})

	w := env.do(http.MethodPost, "/v1/books/dracula_data/chapters/2/chat",
		map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// 失败的交换保留用户轮次
	w = env.do(http.MethodGet, "/v1/books/dracula_data/chapters/2/chat", nil)
	turns := decodeBody(t, w)["data"].(map[string]any)["turns"].([]any)
	require.Len(t, turns, 1)
	assert.Equal(t, "user", turns[0].(map[string]any)["role"])
}

func TestChatReset(t *testing.T) {
	env := newTestEnv(t, &echoBackend{reply: "ok"})

	w := env.do(http.MethodPost, "/v1/books/dracula_data/chapters/2/chat",
		map[string]string{"message": "hi"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/v1/books/dracula_data/chapters/2/chat/reset", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/v1/books/dracula_data/chapters/2/chat", nil)
	assert.Empty(t, decodeBody(t, w)["data"].(map[string]any)["turns"])

	// 重复重置幂等
	w = env.do(http.MethodPost, "/v1/books/dracula_data/chapters/2/chat/reset", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

