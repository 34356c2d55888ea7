// Package library 提供带上限的书籍内存缓存
package library

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"book-companion-api/internal/domain/entity"
	"book-companion-api/internal/domain/repository"
	"book-companion-api/pkg/logger"
	"book-companion-api/pkg/metrics"
)

// DefaultCacheCapacity 默认同时驻留内存的书籍数量
const DefaultCacheCapacity = 10

// Cache 书籍缓存
//
// 对同一标识符的重复加载复用同一个 *entity.Book；容量满时按 LRU 淘汰。
// 磁盘文件在首次加载后发生变化不会被感知（书籍视为一次写入）。
// 同一标识符的并发未命中通过 singleflight 合并为一次反序列化。
type Cache struct {
	source repository.BookSource
	books  *lru.Cache[string, *entity.Book]
	group  singleflight.Group

	// loads 实际发生的磁盘加载次数，供测试观察淘汰行为
	loads atomic.Int64
}

// NewCache 创建书籍缓存
func NewCache(source repository.BookSource, capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	books, err := lru.NewWithEvict[string, *entity.Book](capacity, func(string, *entity.Book) {
		metrics.BookCacheEvictions.Inc()
	})
	if err != nil {
		return nil, err
	}

	return &Cache{
		source: source,
		books:  books,
	}, nil
}

// Load 按标识符解析书籍
// 缺失、标识符非法或文件损坏都返回 (nil, false)：损坏只记日志，
// 不允许坏数据让读路径崩溃。命中时返回的指针在未被淘汰前保持稳定。
func (c *Cache) Load(ctx context.Context, id string) (*entity.Book, bool) {
	if book, ok := c.books.Get(id); ok {
		metrics.BookCacheHits.Inc()
		return book, true
	}
	metrics.BookCacheMisses.Inc()

	v, err, _ := c.group.Do(id, func() (any, error) {
		// 合并窗口内可能已有别的请求完成加载
		if book, ok := c.books.Get(id); ok {
			return book, nil
		}

		c.loads.Add(1)
		start := time.Now()
		book, err := c.source.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		metrics.BookLoadDuration.Observe(time.Since(start).Seconds())

		c.books.Add(id, book)
		return book, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrBookNotExist) {
			metrics.BookLoadFailures.WithLabelValues("missing").Inc()
			return nil, false
		}
		// 损坏或读取失败按不存在处理，调用方不区分
		metrics.BookLoadFailures.WithLabelValues("corrupt").Inc()
		logger.Error(ctx, "failed to load book", err, "book_id", id)
		return nil, false
	}

	return v.(*entity.Book), true
}

// Entry 书库列表中的一项
type Entry struct {
	ID   string
	Book *entity.Book
}

// List 重新扫描存储并返回当前可用的书籍
// 目录枚举每次都走磁盘；每本书的元信息解析仍复用缓存。
// 无法加载的条目（损坏文件等）被跳过。
func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	ids, err := c.source.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		book, ok := c.Load(ctx, id)
		if !ok {
			continue
		}
		out = append(out, Entry{ID: id, Book: book})
	}
	return out, nil
}

// Loads 返回实际发生过的磁盘加载次数
func (c *Cache) Loads() int64 {
	return c.loads.Load()
}
