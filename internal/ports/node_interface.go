package ports

import (
	"context"

	"filetree-server/internal/model"
	"filetree-server/internal/model/requestresponse"

	"github.com/jmoiron/sqlx"
)

// NodeRepository : SQL слой записей о файлах/папках.
// GetByUUID возвращает (nil, nil), если записи нет — операции над списками id
// пропускают несуществующие узлы, а не падают.
type NodeRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, node *model.Node) error
	BulkCreate(ctx context.Context, exec sqlx.ExtContext, nodes []*model.Node) error
	GetByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.Node, error)
	FindAllByUUIDs(ctx context.Context, exec sqlx.ExtContext, uuids []string) ([]*model.Node, error)
	Rename(ctx context.Context, exec sqlx.ExtContext, uuid string, newName string) error
	MarkDeleted(ctx context.Context, exec sqlx.ExtContext, uuids []string) error
	SearchByName(ctx context.Context, exec sqlx.ExtContext, startingPointUUIDs []string, namePart string) ([]*model.Node, error)
	BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error)
}

// FileService : операции над иерархией (каждая мутация — одна транзакция)
type FileService interface {
	CreateRootFolder(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.Node, error)
	CreateFolder(ctx context.Context, user *model.User, parentUUID, name string) (*requestresponse.NodeResponse, error)
	UploadFiles(ctx context.Context, user *model.User, folderUUID string, files []requestresponse.UploadDescriptor) ([]requestresponse.NodeResponse, error)
	RenameNode(ctx context.Context, user *model.User, nodeUUID, newName string) (*requestresponse.NodeResponse, error)
	DeleteNodes(ctx context.Context, user *model.User, nodeUUIDs []string) error
	MoveNodes(ctx context.Context, user *model.User, srcUUID, destUUID string, nodeUUIDs []string) ([]requestresponse.NodeResponse, error)
	ListFolder(ctx context.Context, user *model.User, folderUUID string) (*requestresponse.FolderContentResponse, error)
	NodeDetails(ctx context.Context, user *model.User, nodeUUID string) (*requestresponse.NodeDetailsResponse, error)
	DownloadNode(ctx context.Context, user *model.User, nodeUUID string) (*requestresponse.DownloadResponse, error)
	DownloadArchive(ctx context.Context, user *model.User, nodeUUIDs []string) ([]byte, error)
	FolderTree(ctx context.Context, user *model.User) (*model.FolderTreeNode, error)
}
