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

type NodeRepository struct {
	*config.Database
}

func NewNodeRepository(database *config.Database) *NodeRepository {
	return &NodeRepository{database}
}

// Create : сохраняет новую запись о файле/папке
func (r *NodeRepository) Create(ctx context.Context, exec sqlx.ExtContext, node *model.Node) error {
	query := `
		INSERT INTO nodes (uuid, name, kind, owner_uuid, size_bytes, extension, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		node.UUID,
		node.Name,
		node.Kind,
		node.OwnerUUID,
		node.SizeBytes,
		node.Extension,
		node.Status,
		node.CreatedAt,
		node.UpdatedAt)

	if err != nil {
		return util.LogError("[NodeRepo] не удалось сохранить узел", err)
	}
	return nil
}

// BulkCreate : сохраняет несколько записей одним INSERT
func (r *NodeRepository) BulkCreate(ctx context.Context, exec sqlx.ExtContext, nodes []*model.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	query := `
		INSERT INTO nodes (uuid, name, kind, owner_uuid, size_bytes, extension, status, created_at, updated_at)
		VALUES (:uuid, :name, :kind, :owner_uuid, :size_bytes, :extension, :status, :created_at, :updated_at)
	`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, nodes); err != nil {
		return util.LogError("[NodeRepo] не удалось сохранить узлы", err)
	}
	return nil
}

// GetByUUID : возвращает узел или (nil, nil), если записи нет
func (r *NodeRepository) GetByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.Node, error) {
	query := `
		SELECT uuid, name, kind, owner_uuid, size_bytes, extension, status, created_at, updated_at
		FROM nodes
		WHERE uuid = $1
	`

	var node model.Node
	err := sqlx.GetContext(ctx, exec, &node, query, uuid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, util.LogError("[NodeRepo] не удалось найти узел", err)
	}

	return &node, nil
}

// FindAllByUUIDs : возвращает существующие узлы из списка id (несуществующие пропускаются)
func (r *NodeRepository) FindAllByUUIDs(ctx context.Context, exec sqlx.ExtContext, uuids []string) ([]*model.Node, error) {
	if len(uuids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT uuid, name, kind, owner_uuid, size_bytes, extension, status, created_at, updated_at
		FROM nodes
		WHERE uuid IN (?)
	`, uuids)
	if err != nil {
		return nil, util.LogError("[NodeRepo] ошибка подготовки запроса", err)
	}

	var nodes []*model.Node
	if err := sqlx.SelectContext(ctx, exec, &nodes, exec.Rebind(query), args...); err != nil {
		return nil, util.LogError("[NodeRepo] не удалось найти узлы", err)
	}
	return nodes, nil
}

// Rename : меняет имя узла
func (r *NodeRepository) Rename(ctx context.Context, exec sqlx.ExtContext, uuid string, newName string) error {
	query := `UPDATE nodes SET name = $2, updated_at = NOW() WHERE uuid = $1`
	if _, err := exec.ExecContext(ctx, query, uuid, newName); err != nil {
		return util.LogError("[NodeRepo] не удалось переименовать узел", err)
	}
	return nil
}

// MarkDeleted : мягкое удаление — строки и рёбра остаются, статус фильтрует их из выборок
func (r *NodeRepository) MarkDeleted(ctx context.Context, exec sqlx.ExtContext, uuids []string) error {
	if len(uuids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`
		UPDATE nodes SET status = ?, updated_at = NOW() WHERE uuid IN (?)
	`, model.NodeStatusDeleted, uuids)
	if err != nil {
		return util.LogError("[NodeRepo] ошибка подготовки запроса", err)
	}

	if _, err := exec.ExecContext(ctx, exec.Rebind(query), args...); err != nil {
		return util.LogError("[NodeRepo] не удалось пометить узлы удалёнными", err)
	}
	return nil
}

// SearchByName : регистронезависимый поиск по подстроке имени среди потомков
// заданных стартовых точек (корень пользователя + расшаренные ему папки).
// Поиск никогда не глобальный — только через closure-таблицу.
func (r *NodeRepository) SearchByName(ctx context.Context, exec sqlx.ExtContext, startingPointUUIDs []string, namePart string) ([]*model.Node, error) {
	if len(startingPointUUIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT DISTINCT n.uuid, n.name, n.kind, n.owner_uuid, n.size_bytes, n.extension, n.status, n.created_at, n.updated_at
		FROM nodes AS n
		INNER JOIN edges AS e ON e.descendant_uuid = n.uuid
		WHERE e.ancestor_uuid IN (?)
		  AND n.status <> ?
		  AND n.name ILIKE '%' || ? || '%'
	`, startingPointUUIDs, model.NodeStatusDeleted, namePart)
	if err != nil {
		return nil, util.LogError("[NodeRepo] ошибка подготовки запроса", err)
	}

	var nodes []*model.Node
	if err := sqlx.SelectContext(ctx, exec, &nodes, exec.Rebind(query), args...); err != nil {
		return nil, util.LogError("[NodeRepo] ошибка поиска по имени", err)
	}
	return nodes, nil
}

// BeginTX : открывает транзакцию и отдаёт (exec, rollback, commit)
func (r *NodeRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, util.LogError("[NodeRepo] не удалось начать транзакцию", err)
	}
	return tx, func() error { return tx.Rollback() }, func() error { return tx.Commit() }, nil
}
