package repository

import (
	"context"
	"database/sql"
	"errors"

	"filetree-server/config"
	"filetree-server/internal/model"
	"filetree-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя
func (r *UserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, login, password_hash)
	VALUES ($1, $2, $3)
	RETURNING uuid, login, created_at
	`

	createdUser := &model.User{}
	err := exec.QueryRowxContext(ctx, query, user.UUID, user.Login, user.PasswordHash).
		Scan(&createdUser.UUID, &createdUser.Login, &createdUser.CreatedAt)

	if err != nil {
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	query := `SELECT uuid, login, password_hash, created_at FROM users WHERE uuid = $1`
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, uuid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// FindByLogin : ищет пользователя по login
func (r *UserRepository) FindByLogin(ctx context.Context, exec sqlx.ExtContext, login string) (*model.User, error) {
	query := `SELECT uuid, login, password_hash, created_at FROM users WHERE login = $1`
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, login)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по login", err)
	}
	return &user, nil
}

// FindAllByLogins : несуществующие логины молча пропускаются
func (r *UserRepository) FindAllByLogins(ctx context.Context, exec sqlx.ExtContext, logins []string) ([]*model.User, error) {
	if len(logins) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT uuid, login, password_hash, created_at FROM users WHERE login IN (?)
	`, logins)
	if err != nil {
		return nil, util.LogError("[UserRepo] ошибка подготовки запроса", err)
	}

	var users []*model.User
	if err := sqlx.SelectContext(ctx, exec, &users, exec.Rebind(query), args...); err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователей", err)
	}
	return users, nil
}

// SearchByLogin : поиск по подстроке логина (для окна выдачи доступа)
func (r *UserRepository) SearchByLogin(ctx context.Context, exec sqlx.ExtContext, loginChunk string) ([]*model.User, error) {
	query := `
		SELECT uuid, login, password_hash, created_at
		FROM users
		WHERE login ILIKE '%' || $1 || '%'
		ORDER BY login ASC
	`

	var users []*model.User
	if err := sqlx.SelectContext(ctx, exec, &users, query, loginChunk); err != nil {
		return nil, util.LogError("[UserRepo] не удалось выполнить поиск пользователей", err)
	}
	return users, nil
}
