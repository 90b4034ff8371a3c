package ports

import (
	"context"

	"filetree-server/internal/model"

	"github.com/jmoiron/sqlx"
)

// EdgeRepository : closure-таблица рёбер (предок, потомок).
// DeleteByAncestorsAndDescendants — единственная операция, переносящая поддерево:
// она обязана выполняться внутри транзакции вызывающего сервиса, частичное
// применение ломает инвариант closure-таблицы.
type EdgeRepository interface {
	AncestorsOf(ctx context.Context, exec sqlx.ExtContext, descendantUUID string) ([]*model.Node, error)
	OwnedAncestorsOf(ctx context.Context, exec sqlx.ExtContext, descendantUUID string) ([]*model.Node, error)
	DescendantsOf(ctx context.Context, exec sqlx.ExtContext, ancestorUUID string) ([]*model.Node, error)
	DirectChildren(ctx context.Context, exec sqlx.ExtContext, folderUUID string, edgeKinds []model.EdgeKind, nodeKind model.NodeKind) ([]*model.Node, error)
	DirectParent(ctx context.Context, exec sqlx.ExtContext, nodeUUID string) (*model.Node, error)
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, edges []*model.Edge) error
	DeleteByDescendant(ctx context.Context, exec sqlx.ExtContext, descendantUUID string) error
	DeleteByAncestorsAndDescendants(ctx context.Context, exec sqlx.ExtContext, ancestorUUIDs, descendantUUIDs []string) error
	FindSharedInbound(ctx context.Context, exec sqlx.ExtContext, rootUUID string, nodeUUIDs []string) ([]*model.Edge, error)
}
