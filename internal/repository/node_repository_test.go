package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filetree-server/internal/model"
	"filetree-server/internal/repository"
)

func TestSearchByName_FiltersDeletedAndScopesToStartingPoints(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewNodeRepository(db)

	found := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")
	mockDB.ExpectQuery("SELECT DISTINCT (.+) FROM nodes").
		WithArgs("alice", "shared-docs", string(model.NodeStatusDeleted), "rep").
		WillReturnRows(nodeRows(found))

	nodes, err := repo.SearchByName(context.Background(), db, []string{"alice", "shared-docs"}, "rep")

	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "report", nodes[0].UUID)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestSearchByName_NoStartingPointsNoQuery(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewNodeRepository(db)

	nodes, err := repo.SearchByName(context.Background(), db, nil, "rep")

	assert.NoError(t, err)
	assert.Empty(t, nodes)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestMarkDeleted_SetsStatusOnAllUUIDs(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewNodeRepository(db)

	mockDB.ExpectExec("UPDATE nodes SET status").
		WithArgs(string(model.NodeStatusDeleted), "docs", "report").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.MarkDeleted(context.Background(), db, []string{"docs", "report"})

	assert.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestMarkDeleted_EmptyListNoQuery(t *testing.T) {
	db, mockDB := newMockDatabase(t)
	repo := repository.NewNodeRepository(db)

	err := repo.MarkDeleted(context.Background(), db, nil)

	assert.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
