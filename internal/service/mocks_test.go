package service_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"filetree-server/internal/model"
	"filetree-server/internal/model/requestresponse"
)

// ===== Моки репозиториев =====

type MockNodeRepository struct{ mock.Mock }

func (m *MockNodeRepository) Create(ctx context.Context, exec sqlx.ExtContext, node *model.Node) error {
	return m.Called(ctx, exec, node).Error(0)
}

func (m *MockNodeRepository) BulkCreate(ctx context.Context, exec sqlx.ExtContext, nodes []*model.Node) error {
	return m.Called(ctx, exec, nodes).Error(0)
}

func (m *MockNodeRepository) GetByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.Node, error) {
	args := m.Called(ctx, exec, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Node), args.Error(1)
}

func (m *MockNodeRepository) FindAllByUUIDs(ctx context.Context, exec sqlx.ExtContext, uuids []string) ([]*model.Node, error) {
	args := m.Called(ctx, exec, uuids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Node), args.Error(1)
}

func (m *MockNodeRepository) Rename(ctx context.Context, exec sqlx.ExtContext, uuid string, newName string) error {
	return m.Called(ctx, exec, uuid, newName).Error(0)
}

func (m *MockNodeRepository) MarkDeleted(ctx context.Context, exec sqlx.ExtContext, uuids []string) error {
	return m.Called(ctx, exec, uuids).Error(0)
}

func (m *MockNodeRepository) SearchByName(ctx context.Context, exec sqlx.ExtContext, startingPointUUIDs []string, namePart string) ([]*model.Node, error) {
	args := m.Called(ctx, exec, startingPointUUIDs, namePart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Node), args.Error(1)
}

func (m *MockNodeRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	args := m.Called(ctx)
	return args.Get(0).(sqlx.ExtContext), args.Get(1).(func() error), args.Get(2).(func() error), args.Error(3)
}

type MockEdgeRepository struct{ mock.Mock }

func (m *MockEdgeRepository) AncestorsOf(ctx context.Context, exec sqlx.ExtContext, descendantUUID string) ([]*model.Node, error) {
	args := m.Called(ctx, exec, descendantUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Node), args.Error(1)
}

func (m *MockEdgeRepository) OwnedAncestorsOf(ctx context.Context, exec sqlx.ExtContext, descendantUUID string) ([]*model.Node, error) {
	args := m.Called(ctx, exec, descendantUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Node), args.Error(1)
}

func (m *MockEdgeRepository) DescendantsOf(ctx context.Context, exec sqlx.ExtContext, ancestorUUID string) ([]*model.Node, error) {
	args := m.Called(ctx, exec, ancestorUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Node), args.Error(1)
}

func (m *MockEdgeRepository) DirectChildren(ctx context.Context, exec sqlx.ExtContext, folderUUID string, edgeKinds []model.EdgeKind, nodeKind model.NodeKind) ([]*model.Node, error) {
	args := m.Called(ctx, exec, folderUUID, edgeKinds, nodeKind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Node), args.Error(1)
}

func (m *MockEdgeRepository) DirectParent(ctx context.Context, exec sqlx.ExtContext, nodeUUID string) (*model.Node, error) {
	args := m.Called(ctx, exec, nodeUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Node), args.Error(1)
}

func (m *MockEdgeRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, edges []*model.Edge) error {
	return m.Called(ctx, exec, edges).Error(0)
}

func (m *MockEdgeRepository) DeleteByDescendant(ctx context.Context, exec sqlx.ExtContext, descendantUUID string) error {
	return m.Called(ctx, exec, descendantUUID).Error(0)
}

func (m *MockEdgeRepository) DeleteByAncestorsAndDescendants(ctx context.Context, exec sqlx.ExtContext, ancestorUUIDs, descendantUUIDs []string) error {
	return m.Called(ctx, exec, ancestorUUIDs, descendantUUIDs).Error(0)
}

func (m *MockEdgeRepository) FindSharedInbound(ctx context.Context, exec sqlx.ExtContext, rootUUID string, nodeUUIDs []string) ([]*model.Edge, error) {
	args := m.Called(ctx, exec, rootUUID, nodeUUIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Edge), args.Error(1)
}

type MockAccessRepository struct{ mock.Mock }

func (m *MockAccessRepository) GrantsOn(ctx context.Context, exec sqlx.ExtContext, nodeUUID string) ([]*model.AccessGrant, error) {
	args := m.Called(ctx, exec, nodeUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AccessGrant), args.Error(1)
}

func (m *MockAccessRepository) GrantsOnAny(ctx context.Context, exec sqlx.ExtContext, nodeUUIDs []string) ([]*model.AccessGrant, error) {
	args := m.Called(ctx, exec, nodeUUIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AccessGrant), args.Error(1)
}

func (m *MockAccessRepository) HasReadAccess(ctx context.Context, exec sqlx.ExtContext, userUUID, nodeUUID string) (bool, error) {
	args := m.Called(ctx, exec, userUUID, nodeUUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccessRepository) GrantedNodeUUIDs(ctx context.Context, exec sqlx.ExtContext, userUUID string, nodeUUIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, exec, userUUID, nodeUUIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockAccessRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, grants []*model.AccessGrant) error {
	return m.Called(ctx, exec, grants).Error(0)
}

func (m *MockAccessRepository) DeleteByUsersAndNodes(ctx context.Context, exec sqlx.ExtContext, userUUIDs, nodeUUIDs []string) error {
	return m.Called(ctx, exec, userUUIDs, nodeUUIDs).Error(0)
}

func (m *MockAccessRepository) UsersNodeSharedWith(ctx context.Context, exec sqlx.ExtContext, nodeUUID string) ([]*model.User, error) {
	args := m.Called(ctx, exec, nodeUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	args := m.Called(ctx, exec, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	args := m.Called(ctx, exec, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByLogin(ctx context.Context, exec sqlx.ExtContext, login string) (*model.User, error) {
	args := m.Called(ctx, exec, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindAllByLogins(ctx context.Context, exec sqlx.ExtContext, logins []string) ([]*model.User, error) {
	args := m.Called(ctx, exec, logins)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockUserRepository) SearchByLogin(ctx context.Context, exec sqlx.ExtContext, loginChunk string) ([]*model.User, error) {
	args := m.Called(ctx, exec, loginChunk)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

type MockCacheRepository struct{ mock.Mock }

func (m *MockCacheRepository) SetNode(ctx context.Context, node *model.Node) error {
	return m.Called(ctx, node).Error(0)
}

func (m *MockCacheRepository) GetNode(ctx context.Context, uuid string) (*model.Node, error) {
	args := m.Called(ctx, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Node), args.Error(1)
}

func (m *MockCacheRepository) DeleteNode(ctx context.Context, uuid string) error {
	return m.Called(ctx, uuid).Error(0)
}

func (m *MockCacheRepository) DeleteNodes(ctx context.Context, uuids []string) error {
	return m.Called(ctx, uuids).Error(0)
}

type MockByteStorage struct{ mock.Mock }

func (m *MockByteStorage) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockByteStorage) GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockByteStorage) Archive(ctx context.Context, tree []*model.TreeNode) ([]byte, error) {
	args := m.Called(ctx, tree)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockContentUploader struct{ mock.Mock }

func (m *MockContentUploader) Upload(presignedURL string, name string, data []byte) error {
	return m.Called(presignedURL, name, data).Error(0)
}

type MockSearchService struct{ mock.Mock }

func (m *MockSearchService) BuildPath(ctx context.Context, user *model.User, nodeUUID string) ([]requestresponse.NavEntry, error) {
	args := m.Called(ctx, user, nodeUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]requestresponse.NavEntry), args.Error(1)
}

func (m *MockSearchService) SearchByName(ctx context.Context, user *model.User, namePart string) ([]requestresponse.NodeResponse, error) {
	args := m.Called(ctx, user, namePart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]requestresponse.NodeResponse), args.Error(1)
}

// ===== Фальшивая транзакция =====

type fakeTx struct{}

func (f *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (f *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (f *fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return &sql.Row{}
}
func (f *fakeTx) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, nil
}
func (f *fakeTx) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return &sqlx.Row{}
}
func (f *fakeTx) BindNamed(query string, arg interface{}) (string, []interface{}, error) {
	return "", nil, nil
}
func (f *fakeTx) DriverName() string         { return "fake" }
func (f *fakeTx) Rebind(query string) string { return query }

func expectTx(nodeRepo *MockNodeRepository) *fakeTx {
	tx := &fakeTx{}
	nodeRepo.On("BeginTX", mock.Anything).Return(tx, func() error { return nil }, func() error { return nil }, nil)
	return tx
}
