package ports

import (
	"context"
	"time"

	"filetree-server/internal/model"
)

// ByteStorage : хранилище байтов. Ядро не смотрит в содержимое файлов —
// только выдаёт ссылки и просит архив поддерева.
type ByteStorage interface {
	GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error)
	GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error)
	Archive(ctx context.Context, nodes []*model.TreeNode) ([]byte, error)
}

// ContentUploader : заливка содержимого по pre-signed PUT URL.
// Возвращает управление только когда байты подтверждены хранилищем.
type ContentUploader interface {
	Upload(presignedURL string, name string, data []byte) error
}
