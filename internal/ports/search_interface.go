package ports

import (
	"context"

	"filetree-server/internal/model"
	"filetree-server/internal/model/requestresponse"
)

// SearchService : навигация и поиск, только чтение
type SearchService interface {
	BuildPath(ctx context.Context, user *model.User, nodeUUID string) ([]requestresponse.NavEntry, error)
	SearchByName(ctx context.Context, user *model.User, namePart string) ([]requestresponse.NodeResponse, error)
}
