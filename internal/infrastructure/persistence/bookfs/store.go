// Package bookfs 提供基于文件系统的书籍存储实现
//
// 每本书占一个 <id>_data 文件夹，内含 gob 序列化的 book.gob
// 以及可选的 images/ 目录。文件夹视为一次写入后只读。
package bookfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"book-companion-api/internal/config"
	"book-companion-api/internal/domain/entity"
	"book-companion-api/internal/domain/repository"
)

var tracer = otel.Tracer("bookfs")

const (
	// BookFileName 每个书籍文件夹内的序列化文件名
	BookFileName = "book.gob"
	// DataDirSuffix 标记“已处理书籍”文件夹的命名后缀
	DataDirSuffix = "_data"
	// ImagesDirName 书籍图片子目录
	ImagesDirName = "images"
)

// Store 文件系统书籍存储
type Store struct {
	root string
}

// NewStore 创建文件系统书籍存储
func NewStore(cfg *config.LibraryConfig) *Store {
	root := "."
	if cfg != nil && strings.TrimSpace(cfg.Root) != "" {
		root = cfg.Root
	}
	return &Store{root: root}
}

// Root 返回书库根目录
func (s *Store) Root() string {
	return s.root
}

// Load 按标识符读取并解析书籍
// 非法或缺失的标识符返回 repository.ErrBookNotExist；
// 文件存在但解析失败时返回解码错误，由上层缓存转为 miss。
func (s *Store) Load(ctx context.Context, id string) (*entity.Book, error) {
	_, span := tracer.Start(ctx, "bookfs.Load",
		trace.WithAttributes(attribute.String("book.id", id)))
	defer span.End()

	safeID, ok := sanitizeName(id)
	if !ok {
		span.SetAttributes(attribute.Bool("book.invalid_id", true))
		return nil, repository.ErrBookNotExist
	}

	path := filepath.Join(s.root, safeID, BookFileName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, repository.ErrBookNotExist
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to open book file %s: %w", path, err)
	}
	defer f.Close()

	book, err := DecodeBook(f)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode book %s: %w", safeID, err)
	}
	return book, nil
}

// List 扫描存储根目录，返回当前可用的书籍标识符
// 每次调用都重新扫描磁盘，不做缓存。
func (s *Store) List(ctx context.Context) ([]string, error) {
	_, span := tracer.Start(ctx, "bookfs.List")
	defer span.End()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read library root %s: %w", s.root, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || !strings.HasSuffix(e.Name(), DataDirSuffix) {
			continue
		}
		// 只收录确实带序列化文件的文件夹
		if _, err := os.Stat(filepath.Join(s.root, e.Name(), BookFileName)); err != nil {
			continue
		}
		ids = append(ids, e.Name())
	}

	span.SetAttributes(attribute.Int("library.book_count", len(ids)))
	return ids, nil
}

// ImagePath 返回某本书图片的磁盘路径
// 书籍标识符与图片名都先做路径净化，越出书库根目录的请求一律按不存在处理。
func (s *Store) ImagePath(id, name string) (string, error) {
	safeID, ok := sanitizeName(id)
	if !ok {
		return "", repository.ErrBookNotExist
	}
	safeName, ok := sanitizeName(name)
	if !ok {
		return "", repository.ErrBookNotExist
	}

	path := filepath.Join(s.root, safeID, ImagesDirName, safeName)
	if _, err := os.Stat(path); err != nil {
		return "", repository.ErrBookNotExist
	}
	return path, nil
}

// HealthCheck 检查书库根目录是否可读
func (s *Store) HealthCheck(ctx context.Context) error {
	if _, err := os.ReadDir(s.root); err != nil {
		return fmt.Errorf("library root not readable: %w", err)
	}
	return nil
}

// sanitizeName 拒绝含路径分隔符或相对跳转的名字
func sanitizeName(name string) (string, bool) {
	n := strings.TrimSpace(name)
	if n == "" || n == "." || n == ".." {
		return "", false
	}
	if strings.ContainsAny(n, `/\`) {
		return "", false
	}
	if n != filepath.Base(n) {
		return "", false
	}
	return n, true
}
