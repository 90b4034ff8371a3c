package ports

import (
	"context"

	"filetree-server/internal/model"
	"filetree-server/internal/model/requestresponse"

	"github.com/jmoiron/sqlx"
)

// UserRepository : SQL слой пользователей
type UserRepository interface {
	CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error)
	FindByLogin(ctx context.Context, exec sqlx.ExtContext, login string) (*model.User, error)
	FindAllByLogins(ctx context.Context, exec sqlx.ExtContext, logins []string) ([]*model.User, error)
	SearchByLogin(ctx context.Context, exec sqlx.ExtContext, loginChunk string) ([]*model.User, error)
}

type UserService interface {
	Register(ctx context.Context, req *requestresponse.RegisterRequest) (*requestresponse.RegisterResponse, error)
	Login(ctx context.Context, req *requestresponse.LoginRequest) (*requestresponse.LoginResponse, error)
	SearchByLogin(ctx context.Context, loginChunk string) ([]requestresponse.UserResponse, error)
}
