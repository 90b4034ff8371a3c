package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filetree-server/internal/model"
	"filetree-server/internal/service"
	"filetree-server/internal/util"
)

func newTestSearchService() (*service.SearchService, *MockNodeRepository, *MockEdgeRepository, *MockAccessRepository) {
	nodeRepo := new(MockNodeRepository)
	edgeRepo := new(MockEdgeRepository)
	accessRepo := new(MockAccessRepository)

	svc := service.NewSearchService(nodeRepo, edgeRepo, accessRepo)
	return svc, nodeRepo, edgeRepo, accessRepo
}

func TestBuildPath_OwnerRootFirst(t *testing.T) {
	svc, nodeRepo, edgeRepo, _ := newTestSearchService()
	ctx := dbContext()

	root := model.NewFolder("alice", "alice", "alice")
	docs := model.NewFolder("docs", "docs", "alice")
	report := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")

	nodeRepo.On("GetByUUID", mock.Anything, mock.Anything, "report").Return(report, nil)
	edgeRepo.On("DirectParent", mock.Anything, mock.Anything, "report").Return(docs, nil)
	edgeRepo.On("DirectParent", mock.Anything, mock.Anything, "docs").Return(root, nil)
	edgeRepo.On("DirectParent", mock.Anything, mock.Anything, "alice").Return(nil, nil)

	path, err := svc.BuildPath(ctx, testUser("alice", "alice"), "report")

	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, "alice", path[0].UUID)
	assert.Equal(t, "docs", path[1].UUID)
	assert.Equal(t, "report", path[2].UUID)
}

func TestBuildPath_SharedNodeRerootedUnderRequester(t *testing.T) {
	svc, nodeRepo, edgeRepo, accessRepo := newTestSearchService()
	ctx := dbContext()

	aliceRoot := model.NewFolder("alice", "alice", "alice")
	docs := model.NewFolder("docs", "docs", "alice")
	report := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")
	bobRoot := model.NewFolder("bob", "bob", "bob")

	nodeRepo.On("GetByUUID", mock.Anything, mock.Anything, "report").Return(report, nil)
	accessRepo.On("HasReadAccess", mock.Anything, mock.Anything, "bob", "report").Return(true, nil)

	edgeRepo.On("DirectParent", mock.Anything, mock.Anything, "report").Return(docs, nil)
	edgeRepo.On("DirectParent", mock.Anything, mock.Anything, "docs").Return(aliceRoot, nil)
	edgeRepo.On("DirectParent", mock.Anything, mock.Anything, "alice").Return(nil, nil)

	// docs расшарена bob — путь обрезается на ней и подвешивается под корень bob
	edgeRepo.On("FindSharedInbound", mock.Anything, mock.Anything, "bob", []string{"report", "docs", "alice"}).
		Return([]*model.Edge{{AncestorUUID: "bob", DescendantUUID: "docs", Kind: model.EdgeKindShared}}, nil)
	nodeRepo.On("GetByUUID", mock.Anything, mock.Anything, "bob").Return(bobRoot, nil)

	path, err := svc.BuildPath(ctx, testUser("bob", "bob"), "report")

	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, "bob", path[0].UUID)
	assert.Equal(t, "docs", path[1].UUID)
	assert.Equal(t, "report", path[2].UUID)
}

func TestBuildPath_NoAccessEmpty(t *testing.T) {
	svc, nodeRepo, _, accessRepo := newTestSearchService()
	ctx := dbContext()

	report := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")
	nodeRepo.On("GetByUUID", mock.Anything, mock.Anything, "report").Return(report, nil)
	accessRepo.On("HasReadAccess", mock.Anything, mock.Anything, "bob", "report").Return(false, nil)

	path, err := svc.BuildPath(ctx, testUser("bob", "bob"), "report")

	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestBuildPath_NoInboundShareEmpty(t *testing.T) {
	svc, nodeRepo, edgeRepo, accessRepo := newTestSearchService()
	ctx := dbContext()

	aliceRoot := model.NewFolder("alice", "alice", "alice")
	report := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")

	nodeRepo.On("GetByUUID", mock.Anything, mock.Anything, "report").Return(report, nil)
	accessRepo.On("HasReadAccess", mock.Anything, mock.Anything, "bob", "report").Return(true, nil)
	edgeRepo.On("DirectParent", mock.Anything, mock.Anything, "report").Return(aliceRoot, nil)
	edgeRepo.On("DirectParent", mock.Anything, mock.Anything, "alice").Return(nil, nil)
	edgeRepo.On("FindSharedInbound", mock.Anything, mock.Anything, "bob", []string{"report", "alice"}).
		Return([]*model.Edge{}, nil)

	path, err := svc.BuildPath(ctx, testUser("bob", "bob"), "report")

	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestBuildPath_CycleDetected(t *testing.T) {
	svc, nodeRepo, edgeRepo, _ := newTestSearchService()
	ctx := dbContext()

	docs := model.NewFolder("docs", "docs", "alice")
	report := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")

	nodeRepo.On("GetByUUID", mock.Anything, mock.Anything, "report").Return(report, nil)
	edgeRepo.On("DirectParent", mock.Anything, mock.Anything, "report").Return(docs, nil)
	edgeRepo.On("DirectParent", mock.Anything, mock.Anything, "docs").Return(report, nil)

	_, err := svc.BuildPath(ctx, testUser("alice", "alice"), "report")

	assert.ErrorIs(t, err, util.ErrConsistency)
}

func TestBuildPath_BrokenChainDetected(t *testing.T) {
	svc, nodeRepo, edgeRepo, _ := newTestSearchService()
	ctx := dbContext()

	orphan := model.NewFolder("orphan", "orphan", "alice")
	report := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")

	nodeRepo.On("GetByUUID", mock.Anything, mock.Anything, "report").Return(report, nil)
	edgeRepo.On("DirectParent", mock.Anything, mock.Anything, "report").Return(orphan, nil)
	// подъём оборвался не на корне владельца
	edgeRepo.On("DirectParent", mock.Anything, mock.Anything, "orphan").Return(nil, nil)

	_, err := svc.BuildPath(ctx, testUser("alice", "alice"), "report")

	assert.ErrorIs(t, err, util.ErrConsistency)
}

func TestBuildPath_MissingNodeEmpty(t *testing.T) {
	svc, nodeRepo, _, _ := newTestSearchService()
	ctx := dbContext()

	nodeRepo.On("GetByUUID", mock.Anything, mock.Anything, "ghost").Return(nil, nil)

	path, err := svc.BuildPath(ctx, testUser("alice", "alice"), "ghost")

	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestSearchByName_CoversOwnAndSharedScopes(t *testing.T) {
	svc, nodeRepo, edgeRepo, _ := newTestSearchService()
	ctx := dbContext()

	root := model.NewFolder("alice", "alice", "alice")
	sharedFolder := model.NewFolder("shared-docs", "docs", "bob")
	found := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")

	nodeRepo.On("GetByUUID", mock.Anything, mock.Anything, "alice").Return(root, nil)
	edgeRepo.On("DirectChildren", mock.Anything, mock.Anything, "alice",
		[]model.EdgeKind{model.EdgeKindShared}, model.NodeKindFolder).Return([]*model.Node{sharedFolder}, nil)
	nodeRepo.On("SearchByName", mock.Anything, mock.Anything, []string{"shared-docs", "alice"}, "rep").
		Return([]*model.Node{found}, nil)

	result, err := svc.SearchByName(ctx, testUser("alice", "alice"), "rep")

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "report", result[0].UUID)
	assert.Equal(t, model.AccessLevelReadWrite, result[0].AccessLevel)
}
