package ports

import (
	"context"

	"filetree-server/internal/model"
	"filetree-server/internal/model/requestresponse"

	"github.com/jmoiron/sqlx"
)

// AccessRepository : выданные права (user, node, level)
type AccessRepository interface {
	GrantsOn(ctx context.Context, exec sqlx.ExtContext, nodeUUID string) ([]*model.AccessGrant, error)
	GrantsOnAny(ctx context.Context, exec sqlx.ExtContext, nodeUUIDs []string) ([]*model.AccessGrant, error)
	HasReadAccess(ctx context.Context, exec sqlx.ExtContext, userUUID, nodeUUID string) (bool, error)
	GrantedNodeUUIDs(ctx context.Context, exec sqlx.ExtContext, userUUID string, nodeUUIDs []string) (map[string]bool, error)
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, grants []*model.AccessGrant) error
	DeleteByUsersAndNodes(ctx context.Context, exec sqlx.ExtContext, userUUIDs, nodeUUIDs []string) error
	UsersNodeSharedWith(ctx context.Context, exec sqlx.ExtContext, nodeUUID string) ([]*model.User, error)
}

// ShareService : выдача и снятие доступа вместе с shared-рёбрами
type ShareService interface {
	Share(ctx context.Context, owner *model.User, logins []string, nodeUUIDs []string) ([]requestresponse.ShareResponse, error)
	Unshare(ctx context.Context, owner *model.User, logins []string, nodeUUIDs []string) ([]requestresponse.ShareResponse, error)
	RefuseShare(ctx context.Context, user *model.User, nodeUUIDs []string) ([]requestresponse.ShareResponse, error)
	UsersNodeSharedWith(ctx context.Context, nodeUUID string) ([]requestresponse.UserResponse, error)
}
