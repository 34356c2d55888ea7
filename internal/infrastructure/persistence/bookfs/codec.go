package bookfs

import (
	"encoding/gob"
	"fmt"
	"io"

	"book-companion-api/internal/domain/entity"
)

// DecodeBook 从字节流反序列化一本书
// 预处理工具链写出的是 gob 编码的 entity.Book。
func DecodeBook(r io.Reader) (*entity.Book, error) {
	var book entity.Book
	if err := gob.NewDecoder(r).Decode(&book); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	if len(book.Spine) == 0 {
		return nil, fmt.Errorf("book has empty spine")
	}
	return &book, nil
}

// EncodeBook 将一本书序列化到字节流（供预处理工具与测试使用）
func EncodeBook(w io.Writer, book *entity.Book) error {
	if book == nil {
		return fmt.Errorf("book is nil")
	}
	if err := gob.NewEncoder(w).Encode(book); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}
