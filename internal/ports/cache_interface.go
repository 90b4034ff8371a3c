package ports

import (
	"context"

	"filetree-server/internal/model"
)

// CacheRepository : Redis-кэш метаданных узлов.
// Инвалидируется при любой структурной мутации затронутых узлов.
type CacheRepository interface {
	SetNode(ctx context.Context, node *model.Node) error
	GetNode(ctx context.Context, uuid string) (*model.Node, error)
	DeleteNode(ctx context.Context, uuid string) error
	DeleteNodes(ctx context.Context, uuids []string) error
}
