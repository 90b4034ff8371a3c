package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filetree-server/internal/model"
	"filetree-server/internal/service"
	"filetree-server/internal/util"
)

func newTestShareService() (*service.ShareService, *MockNodeRepository, *MockEdgeRepository, *MockAccessRepository, *MockUserRepository) {
	nodeRepo := new(MockNodeRepository)
	edgeRepo := new(MockEdgeRepository)
	accessRepo := new(MockAccessRepository)
	userRepo := new(MockUserRepository)
	cacheRepo := new(MockCacheRepository)

	svc := service.NewShareService(nodeRepo, edgeRepo, accessRepo, userRepo, cacheRepo)
	return svc, nodeRepo, edgeRepo, accessRepo, userRepo
}

func TestShare_FolderPropagatesToSubtree(t *testing.T) {
	svc, nodeRepo, edgeRepo, accessRepo, userRepo := newTestShareService()
	expectTx(nodeRepo)

	owner := testUser("alice", "alice")
	bob := testUser("bob", "bob")
	folder := model.NewFolder("docs", "docs", "alice")
	inner := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")

	userRepo.On("FindAllByLogins", mock.Anything, mock.Anything, []string{"bob"}).Return([]*model.User{bob}, nil)
	nodeRepo.On("FindAllByUUIDs", mock.Anything, mock.Anything, []string{"docs"}).Return([]*model.Node{folder}, nil)
	edgeRepo.On("DescendantsOf", mock.Anything, mock.Anything, "docs").Return([]*model.Node{inner}, nil)

	// одно shared-ребро от корня bob к расшаренному узлу, грант на каждый узел поддерева
	edgeRepo.On("BulkInsert", mock.Anything, mock.Anything, mock.MatchedBy(func(edges []*model.Edge) bool {
		return len(edges) == 1 &&
			edges[0].AncestorUUID == "bob" &&
			edges[0].DescendantUUID == "docs" &&
			edges[0].Kind == model.EdgeKindShared &&
			edges[0].CreatedBy == "alice"
	})).Return(nil)
	accessRepo.On("BulkInsert", mock.Anything, mock.Anything, mock.MatchedBy(func(grants []*model.AccessGrant) bool {
		if len(grants) != 2 {
			return false
		}
		for _, grant := range grants {
			if grant.UserUUID != "bob" || grant.Level != model.AccessLevelReadOnly {
				return false
			}
		}
		return grants[0].NodeUUID == "docs" && grants[1].NodeUUID == "report"
	})).Return(nil)

	result, err := svc.Share(context.Background(), owner, []string{"bob"}, []string{"docs"})

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "bob", result[0].Login)
	assert.Equal(t, "docs", result[0].NodeUUID)
	edgeRepo.AssertExpectations(t)
	accessRepo.AssertExpectations(t)
}

func TestShare_ForeignNodeRejectedBeforeMutation(t *testing.T) {
	svc, nodeRepo, edgeRepo, _, userRepo := newTestShareService()
	expectTx(nodeRepo)

	owner := testUser("alice", "alice")
	bob := testUser("bob", "bob")
	foreign := model.NewFile("report", "report.pdf", ".pdf", 42, "carol")

	userRepo.On("FindAllByLogins", mock.Anything, mock.Anything, []string{"bob"}).Return([]*model.User{bob}, nil)
	nodeRepo.On("FindAllByUUIDs", mock.Anything, mock.Anything, []string{"report"}).Return([]*model.Node{foreign}, nil)

	_, err := svc.Share(context.Background(), owner, []string{"bob"}, []string{"report"})

	assert.ErrorIs(t, err, util.ErrForbidden)
	edgeRepo.AssertNotCalled(t, "BulkInsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestShare_EmptyListsNoop(t *testing.T) {
	svc, nodeRepo, _, _, _ := newTestShareService()

	result, err := svc.Share(context.Background(), testUser("alice", "alice"), nil, []string{"docs"})

	assert.NoError(t, err)
	assert.Empty(t, result)
	nodeRepo.AssertNotCalled(t, "BeginTX", mock.Anything)
}

func TestShare_OwnerExcludedFromTargets(t *testing.T) {
	svc, nodeRepo, _, _, userRepo := newTestShareService()
	expectTx(nodeRepo)

	owner := testUser("alice", "alice")
	userRepo.On("FindAllByLogins", mock.Anything, mock.Anything, []string{"alice"}).Return([]*model.User{owner}, nil)

	// шаринг самому себе вырождается в no-op
	result, err := svc.Share(context.Background(), owner, []string{"alice"}, []string{"docs"})

	assert.NoError(t, err)
	assert.Empty(t, result)
	nodeRepo.AssertNotCalled(t, "FindAllByUUIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnshare_RemovesEdgesAndSubtreeGrants(t *testing.T) {
	svc, nodeRepo, edgeRepo, accessRepo, userRepo := newTestShareService()
	expectTx(nodeRepo)

	owner := testUser("alice", "alice")
	bob := testUser("bob", "bob")
	folder := model.NewFolder("docs", "docs", "alice")
	inner := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")

	userRepo.On("FindAllByLogins", mock.Anything, mock.Anything, []string{"bob"}).Return([]*model.User{bob}, nil)
	nodeRepo.On("FindAllByUUIDs", mock.Anything, mock.Anything, []string{"docs"}).Return([]*model.Node{folder}, nil)
	edgeRepo.On("DescendantsOf", mock.Anything, mock.Anything, "docs").Return([]*model.Node{inner}, nil)

	// рёбра и гранты снимаются со всего поддерева одним списком
	edgeRepo.On("DeleteByAncestorsAndDescendants", mock.Anything, mock.Anything, []string{"bob"}, []string{"docs", "report"}).Return(nil)
	accessRepo.On("DeleteByUsersAndNodes", mock.Anything, mock.Anything, []string{"bob"}, []string{"docs", "report"}).Return(nil)

	result, err := svc.Unshare(context.Background(), owner, []string{"bob"}, []string{"docs"})

	require.NoError(t, err)
	require.Len(t, result, 1)
	edgeRepo.AssertExpectations(t)
	accessRepo.AssertExpectations(t)
}

func TestRefuseShare_OnlyForeignNodes(t *testing.T) {
	svc, nodeRepo, edgeRepo, accessRepo, _ := newTestShareService()
	expectTx(nodeRepo)

	bob := testUser("bob", "bob")
	sharedIn := model.NewFile("report", "report.pdf", ".pdf", 42, "alice")
	ownNode := model.NewFile("note", "note.txt", ".txt", 1, "bob")

	nodeRepo.On("FindAllByUUIDs", mock.Anything, mock.Anything, []string{"report", "note"}).
		Return([]*model.Node{sharedIn, ownNode}, nil)

	// собственный узел из списка отказа выпадает
	edgeRepo.On("DeleteByAncestorsAndDescendants", mock.Anything, mock.Anything, []string{"bob"}, []string{"report"}).Return(nil)
	accessRepo.On("DeleteByUsersAndNodes", mock.Anything, mock.Anything, []string{"bob"}, []string{"report"}).Return(nil)

	result, err := svc.RefuseShare(context.Background(), bob, []string{"report", "note"})

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "report", result[0].NodeUUID)
	edgeRepo.AssertExpectations(t)
}
