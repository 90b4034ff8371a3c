package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"filetree-server/config"
	"filetree-server/internal/model"
	"filetree-server/internal/util"

	"github.com/jmoiron/sqlx"
)

// EdgeRepository : closure-таблица. Для каждой пары (предок, потомок) в дереве
// владельца хранится ровно одно ребро: owned_direct для непосредственного родителя,
// owned_indirect для остальных предков. Shared-рёбра идут от корня получателя
// доступа к расшаренному узлу.
type EdgeRepository struct {
	*config.Database
}

func NewEdgeRepository(database *config.Database) *EdgeRepository {
	return &EdgeRepository{database}
}

const nodeColumns = `n.uuid, n.name, n.kind, n.owner_uuid, n.size_bytes, n.extension, n.status, n.created_at, n.updated_at`

// AncestorsOf : все узлы, из которых достижим данный (рёбра любого вида)
func (r *EdgeRepository) AncestorsOf(ctx context.Context, exec sqlx.ExtContext, descendantUUID string) ([]*model.Node, error) {
	query := `
		SELECT ` + nodeColumns + `
		FROM nodes AS n
		INNER JOIN edges AS e ON e.ancestor_uuid = n.uuid
		WHERE e.descendant_uuid = $1
	`

	var nodes []*model.Node
	if err := sqlx.SelectContext(ctx, exec, &nodes, query, descendantUUID); err != nil {
		return nil, util.LogError("[EdgeRepo] не удалось получить предков", err)
	}
	return nodes, nil
}

// OwnedAncestorsOf : предки в дереве владельца (без shared-рёбер)
func (r *EdgeRepository) OwnedAncestorsOf(ctx context.Context, exec sqlx.ExtContext, descendantUUID string) ([]*model.Node, error) {
	query, args, err := sqlx.In(`
		SELECT `+nodeColumns+`
		FROM nodes AS n
		INNER JOIN edges AS e ON e.ancestor_uuid = n.uuid
		WHERE e.descendant_uuid = ? AND e.kind IN (?)
	`, descendantUUID, model.OwnedEdgeKinds())
	if err != nil {
		return nil, util.LogError("[EdgeRepo] ошибка подготовки запроса", err)
	}

	var nodes []*model.Node
	if err := sqlx.SelectContext(ctx, exec, &nodes, exec.Rebind(query), args...); err != nil {
		return nil, util.LogError("[EdgeRepo] не удалось получить предков по дереву владельца", err)
	}
	return nodes, nil
}

// DescendantsOf : всё поддерево (не только прямые дети), без удалённых узлов.
// Благодаря closure-таблице это один запрос, а не рекурсивный обход.
func (r *EdgeRepository) DescendantsOf(ctx context.Context, exec sqlx.ExtContext, ancestorUUID string) ([]*model.Node, error) {
	query, args, err := sqlx.In(`
		SELECT `+nodeColumns+`
		FROM nodes AS n
		INNER JOIN edges AS e ON e.descendant_uuid = n.uuid
		WHERE e.ancestor_uuid = ? AND e.kind IN (?) AND n.status <> ?
	`, ancestorUUID, model.OwnedEdgeKinds(), model.NodeStatusDeleted)
	if err != nil {
		return nil, util.LogError("[EdgeRepo] ошибка подготовки запроса", err)
	}

	var nodes []*model.Node
	if err := sqlx.SelectContext(ctx, exec, &nodes, exec.Rebind(query), args...); err != nil {
		return nil, util.LogError("[EdgeRepo] не удалось получить потомков", err)
	}
	return nodes, nil
}

// DirectChildren : дети по рёбрам заданных видов, с фильтром файл/папка
// (nodeKind = "" — любой вид), удалённые узлы исключаются
func (r *EdgeRepository) DirectChildren(ctx context.Context, exec sqlx.ExtContext, folderUUID string, edgeKinds []model.EdgeKind, nodeKind model.NodeKind) ([]*model.Node, error) {
	if len(edgeKinds) == 0 {
		edgeKinds = []model.EdgeKind{model.EdgeKindDirect}
	}

	base := `
		SELECT ` + nodeColumns + `
		FROM nodes AS n
		INNER JOIN edges AS e ON e.descendant_uuid = n.uuid
		WHERE e.ancestor_uuid = ? AND e.kind IN (?) AND n.status <> ?
	`
	var (
		query string
		args  []interface{}
		err   error
	)
	if nodeKind != "" {
		query, args, err = sqlx.In(base+` AND n.kind = ? ORDER BY n.kind DESC, n.name ASC`,
			folderUUID, edgeKinds, model.NodeStatusDeleted, nodeKind)
	} else {
		query, args, err = sqlx.In(base+` ORDER BY n.kind DESC, n.name ASC`,
			folderUUID, edgeKinds, model.NodeStatusDeleted)
	}
	if err != nil {
		return nil, util.LogError("[EdgeRepo] ошибка подготовки запроса", err)
	}

	var nodes []*model.Node
	if err := sqlx.SelectContext(ctx, exec, &nodes, exec.Rebind(query), args...); err != nil {
		return nil, util.LogError("[EdgeRepo] не удалось получить содержимое папки", err)
	}
	return nodes, nil
}

// DirectParent : единственный owned_direct родитель узла.
// (nil, nil) для корня; два и более родителя — повреждение closure-таблицы.
func (r *EdgeRepository) DirectParent(ctx context.Context, exec sqlx.ExtContext, nodeUUID string) (*model.Node, error) {
	query := `
		SELECT ` + nodeColumns + `
		FROM nodes AS n
		INNER JOIN edges AS e ON e.ancestor_uuid = n.uuid
		WHERE e.descendant_uuid = $1 AND e.kind = $2
	`

	var parents []*model.Node
	if err := sqlx.SelectContext(ctx, exec, &parents, query, nodeUUID, model.EdgeKindDirect); err != nil {
		return nil, util.LogError("[EdgeRepo] не удалось получить родителя", err)
	}

	switch len(parents) {
	case 0:
		return nil, nil
	case 1:
		return parents[0], nil
	default:
		return nil, fmt.Errorf("[EdgeRepo] узел %s имеет %d direct-родителей: %w", nodeUUID, len(parents), util.ErrConsistency)
	}
}

// BulkInsert : вставляет рёбра одним запросом
func (r *EdgeRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, edges []*model.Edge) error {
	if len(edges) == 0 {
		return nil
	}

	query := `
		INSERT INTO edges (uuid, ancestor_uuid, descendant_uuid, kind, created_by)
		VALUES (:uuid, :ancestor_uuid, :descendant_uuid, :kind, :created_by)
	`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, edges); err != nil {
		return util.LogError("[EdgeRepo] не удалось сохранить рёбра", err)
	}
	return nil
}

// DeleteByDescendant : удаляет все owned-рёбра, приходящие в узел
// (при переносе файла; shared-рёбра на сам файл переносы переживают)
func (r *EdgeRepository) DeleteByDescendant(ctx context.Context, exec sqlx.ExtContext, descendantUUID string) error {
	query, args, err := sqlx.In(`
		DELETE FROM edges WHERE descendant_uuid = ? AND kind IN (?)
	`, descendantUUID, model.OwnedEdgeKinds())
	if err != nil {
		return util.LogError("[EdgeRepo] ошибка подготовки запроса", err)
	}

	if _, err := exec.ExecContext(ctx, exec.Rebind(query), args...); err != nil {
		return util.LogError("[EdgeRepo] не удалось удалить рёбра узла", err)
	}
	return nil
}

// DeleteByAncestorsAndDescendants : удаляет все рёбра между двумя множествами узлов.
// Вызывается только внутри транзакции сервиса вместе со вставкой новых рёбер.
func (r *EdgeRepository) DeleteByAncestorsAndDescendants(ctx context.Context, exec sqlx.ExtContext, ancestorUUIDs, descendantUUIDs []string) error {
	if len(ancestorUUIDs) == 0 || len(descendantUUIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`
		DELETE FROM edges WHERE ancestor_uuid IN (?) AND descendant_uuid IN (?)
	`, ancestorUUIDs, descendantUUIDs)
	if err != nil {
		return util.LogError("[EdgeRepo] ошибка подготовки запроса", err)
	}

	if _, err := exec.ExecContext(ctx, exec.Rebind(query), args...); err != nil {
		return util.LogError("[EdgeRepo] не удалось удалить рёбра между множествами", err)
	}
	return nil
}

// FindSharedInbound : shared-рёбра от корня пользователя к любому из узлов.
// Используется при перестройке хлебных крошек для получателя доступа.
func (r *EdgeRepository) FindSharedInbound(ctx context.Context, exec sqlx.ExtContext, rootUUID string, nodeUUIDs []string) ([]*model.Edge, error) {
	if len(nodeUUIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT uuid, ancestor_uuid, descendant_uuid, kind, created_by
		FROM edges
		WHERE ancestor_uuid = ? AND descendant_uuid IN (?) AND kind = ?
	`, rootUUID, nodeUUIDs, model.EdgeKindShared)
	if err != nil {
		return nil, util.LogError("[EdgeRepo] ошибка подготовки запроса", err)
	}

	var edges []*model.Edge
	if err := sqlx.SelectContext(ctx, exec, &edges, exec.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("[EdgeRepo] не удалось найти входящие shared-рёбра", err)
	}
	return edges, nil
}
