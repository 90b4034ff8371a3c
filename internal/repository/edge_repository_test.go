package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filetree-server/config"
	"filetree-server/internal/model"
	"filetree-server/internal/repository"
	"filetree-server/internal/util"
)

func newMockDatabase(t *testing.T) (*config.Database, sqlmock.Sqlmock) {
	t.Helper()

	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &config.Database{DB: sqlx.NewDb(db, "postgres")}, mockDB
}

func nodeRows(nodes ...*model.Node) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"uuid", "name", "kind", "owner_uuid", "size_bytes", "extension", "status", "created_at", "updated_at",
	})
	for _, node := range nodes {
		rows.AddRow(node.UUID, node.Name, node.Kind, node.OwnerUUID,
			node.SizeBytes, node.Extension, node.Status, node.CreatedAt, node.UpdatedAt)
	}
	return rows
}

func TestDirectParent_Single(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewEdgeRepository(db)

	parent := model.NewFolder("docs", "docs", "alice")
	mockDB.ExpectQuery("SELECT (.+) FROM nodes").
		WithArgs("report", string(model.EdgeKindDirect)).
		WillReturnRows(nodeRows(parent))

	node, err := repo.DirectParent(context.Background(), db, "report")

	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "docs", node.UUID)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestDirectParent_RootHasNone(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewEdgeRepository(db)

	mockDB.ExpectQuery("SELECT (.+) FROM nodes").
		WithArgs("alice", string(model.EdgeKindDirect)).
		WillReturnRows(nodeRows())

	node, err := repo.DirectParent(context.Background(), db, "alice")

	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestDirectParent_TwoParentsIsConsistencyFault(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewEdgeRepository(db)

	first := model.NewFolder("docs", "docs", "alice")
	second := model.NewFolder("other", "other", "alice")
	mockDB.ExpectQuery("SELECT (.+) FROM nodes").
		WithArgs("report", string(model.EdgeKindDirect)).
		WillReturnRows(nodeRows(first, second))

	_, err := repo.DirectParent(context.Background(), db, "report")

	assert.ErrorIs(t, err, util.ErrConsistency)
}

func TestDescendantsOf_ReturnsSubtree(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewEdgeRepository(db)

	inner := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")
	mockDB.ExpectQuery("SELECT (.+) FROM nodes").
		WithArgs("docs",
			string(model.EdgeKindDirect), string(model.EdgeKindIndirect),
			string(model.NodeStatusDeleted)).
		WillReturnRows(nodeRows(inner))

	nodes, err := repo.DescendantsOf(context.Background(), db, "docs")

	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "report", nodes[0].UUID)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestBulkInsert_SavesEdges(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewEdgeRepository(db)

	mockDB.ExpectExec("INSERT INTO edges").
		WillReturnResult(sqlmock.NewResult(0, 2))

	edges := []*model.Edge{
		{UUID: "e1", AncestorUUID: "docs", DescendantUUID: "report", Kind: model.EdgeKindDirect, CreatedBy: "alice"},
		{UUID: "e2", AncestorUUID: "alice", DescendantUUID: "report", Kind: model.EdgeKindIndirect, CreatedBy: "alice"},
	}
	err := repo.BulkInsert(context.Background(), db, edges)

	assert.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestBulkInsert_EmptySliceNoQuery(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewEdgeRepository(db)

	err := repo.BulkInsert(context.Background(), db, nil)

	assert.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestDeleteByAncestorsAndDescendants_EmptySetsNoQuery(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewEdgeRepository(db)

	err := repo.DeleteByAncestorsAndDescendants(context.Background(), db, nil, []string{"report"})

	assert.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestDeleteByAncestorsAndDescendants_CrossProduct(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewEdgeRepository(db)

	mockDB.ExpectExec("DELETE FROM edges").
		WithArgs("alice", "src", "docs", "report").
		WillReturnResult(sqlmock.NewResult(0, 4))

	err := repo.DeleteByAncestorsAndDescendants(context.Background(), db,
		[]string{"alice", "src"}, []string{"docs", "report"})

	assert.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestDeleteByDescendant_KeepsSharedEdges(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewEdgeRepository(db)

	// удаляются только owned-рёбра, shared-рёбра на узел остаются
	mockDB.ExpectExec("DELETE FROM edges").
		WithArgs("report", string(model.EdgeKindDirect), string(model.EdgeKindIndirect)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.DeleteByDescendant(context.Background(), db, "report")

	assert.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestFindSharedInbound(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewEdgeRepository(db)

	rows := sqlmock.NewRows([]string{"uuid", "ancestor_uuid", "descendant_uuid", "kind", "created_by"}).
		AddRow("e1", "bob", "docs", string(model.EdgeKindShared), "alice")
	mockDB.ExpectQuery("SELECT (.+) FROM edges").
		WithArgs("bob", "report", "docs", string(model.EdgeKindShared)).
		WillReturnRows(rows)

	edges, err := repo.FindSharedInbound(context.Background(), db, "bob", []string{"report", "docs"})

	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "docs", edges[0].DescendantUUID)
}

func TestDirectChildren_FoldersBeforeFiles(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewEdgeRepository(db)

	folder := model.NewFolder("sub", "sub", "alice")
	file := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")
	mockDB.ExpectQuery("SELECT (.+) FROM nodes").
		WithArgs("docs",
			string(model.EdgeKindDirect), string(model.EdgeKindShared),
			string(model.NodeStatusDeleted)).
		WillReturnRows(nodeRows(folder, file))

	nodes, err := repo.DirectChildren(context.Background(), db, "docs",
		[]model.EdgeKind{model.EdgeKindDirect, model.EdgeKindShared}, "")

	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.True(t, nodes[0].IsFolder())

}
