// Package repository 定义领域仓储接口
package repository

import (
	"context"
	"errors"

	"book-companion-api/internal/domain/entity"
)

// ErrBookNotExist 表示存储中不存在该书籍（含结构非法的标识符）
var ErrBookNotExist = errors.New("book does not exist")

// BookSource 书籍存储端口：定位、读取并反序列化一本预处理书籍
//
// 实现约定：
//   - 标识符非法（路径逃逸等）或文件缺失时返回 ErrBookNotExist；
//   - 文件存在但反序列化失败时返回其它错误，由调用方决定吞吐策略。
type BookSource interface {
	// Load 按标识符读取并解析书籍
	Load(ctx context.Context, id string) (*entity.Book, error)
	// List 扫描存储根目录，返回当前可用的书籍标识符（不缓存）
	List(ctx context.Context) ([]string, error)
}
