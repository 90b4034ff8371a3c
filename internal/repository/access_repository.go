package repository

import (
	"context"

	"filetree-server/config"
	"filetree-server/internal/model"
	"filetree-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type AccessRepository struct {
	database *config.Database
}

func NewAccessRepository(database *config.Database) *AccessRepository {
	return &AccessRepository{database: database}
}

// GrantsOn : все выданные права на узел
func (r *AccessRepository) GrantsOn(ctx context.Context, exec sqlx.ExtContext, nodeUUID string) ([]*model.AccessGrant, error) {
	query := `SELECT uuid, user_uuid, node_uuid, level FROM access_grants WHERE node_uuid = $1`

	var grants []*model.AccessGrant
	if err := sqlx.SelectContext(ctx, exec, &grants, query, nodeUUID); err != nil {
		return nil, util.LogError("[AccessRepo] не удалось получить права на узел", err)
	}
	return grants, nil
}

// GrantsOnAny : права на любой узел из множества (для цепочки предков при переносе)
func (r *AccessRepository) GrantsOnAny(ctx context.Context, exec sqlx.ExtContext, nodeUUIDs []string) ([]*model.AccessGrant, error) {
	if len(nodeUUIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT uuid, user_uuid, node_uuid, level FROM access_grants WHERE node_uuid IN (?)
	`, nodeUUIDs)
	if err != nil {
		return nil, util.LogError("[AccessRepo] ошибка подготовки запроса", err)
	}

	var grants []*model.AccessGrant
	if err := sqlx.SelectContext(ctx, exec, &grants, exec.Rebind(query), args...); err != nil {
		return nil, util.LogError("[AccessRepo] не удалось получить права на множество узлов", err)
	}
	return grants, nil
}

// HasReadAccess : true, если узел не удалён и пользователь — владелец
// либо имеет любую выданную ему запись о доступе
func (r *AccessRepository) HasReadAccess(ctx context.Context, exec sqlx.ExtContext, userUUID, nodeUUID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM nodes AS n
			LEFT JOIN access_grants AS g
			  ON n.uuid = g.node_uuid AND g.user_uuid = $2
			WHERE n.uuid = $1
			  AND n.status <> $3
			  AND (n.owner_uuid = $2 OR g.user_uuid IS NOT NULL)
		)
	`
	var exists bool
	err := sqlx.GetContext(ctx, exec, &exists, query, nodeUUID, userUUID, model.NodeStatusDeleted)
	if err != nil {
		return false, util.LogError("[AccessRepo] ошибка проверки доступа", err)
	}
	return exists, nil
}

// GrantedNodeUUIDs : какие из перечисленных узлов доступны пользователю по грантам
// (один запрос вместо проверки каждого узла при листинге папки)
func (r *AccessRepository) GrantedNodeUUIDs(ctx context.Context, exec sqlx.ExtContext, userUUID string, nodeUUIDs []string) (map[string]bool, error) {
	if len(nodeUUIDs) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT node_uuid FROM access_grants WHERE user_uuid = ? AND node_uuid IN (?)
	`, userUUID, nodeUUIDs)
	if err != nil {
		return nil, util.LogError("[AccessRepo] ошибка подготовки запроса", err)
	}

	var granted []string
	if err := sqlx.SelectContext(ctx, exec, &granted, exec.Rebind(query), args...); err != nil {
		return nil, util.LogError("[AccessRepo] не удалось получить доступные узлы", err)
	}

	result := make(map[string]bool, len(granted))
	for _, uuid := range granted {
		result[uuid] = true
	}
	return result, nil
}

// BulkInsert : вставляет права одним запросом; повторная выдача того же права
// не ошибка (ON CONFLICT DO NOTHING)
func (r *AccessRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, grants []*model.AccessGrant) error {
	if len(grants) == 0 {
		return nil
	}

	query := `
		INSERT INTO access_grants (uuid, user_uuid, node_uuid, level)
		VALUES (:uuid, :user_uuid, :node_uuid, :level)
		ON CONFLICT (user_uuid, node_uuid) DO NOTHING
	`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, grants); err != nil {
		return util.LogError("[AccessRepo] не удалось сохранить права", err)
	}
	return nil
}

// DeleteByUsersAndNodes : снимает права множества пользователей на множество узлов
func (r *AccessRepository) DeleteByUsersAndNodes(ctx context.Context, exec sqlx.ExtContext, userUUIDs, nodeUUIDs []string) error {
	if len(userUUIDs) == 0 || len(nodeUUIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`
		DELETE FROM access_grants WHERE user_uuid IN (?) AND node_uuid IN (?)
	`, userUUIDs, nodeUUIDs)
	if err != nil {
		return util.LogError("[AccessRepo] ошибка подготовки запроса", err)
	}

	if _, err := exec.ExecContext(ctx, exec.Rebind(query), args...); err != nil {
		return util.LogError("[AccessRepo] не удалось снять права", err)
	}
	return nil
}

// UsersNodeSharedWith : пользователи, которым выдан доступ к узлу
func (r *AccessRepository) UsersNodeSharedWith(ctx context.Context, exec sqlx.ExtContext, nodeUUID string) ([]*model.User, error) {
	query := `
		SELECT u.uuid, u.login, u.password_hash, u.created_at
		FROM users AS u
		INNER JOIN access_grants AS g ON u.uuid = g.user_uuid
		WHERE g.node_uuid = $1
		ORDER BY u.login ASC
	`

	var users []*model.User
	if err := sqlx.SelectContext(ctx, exec, &users, query, nodeUUID); err != nil {
		return nil, util.LogError("[AccessRepo] не удалось получить список пользователей", err)
	}
	return users, nil
}
