package service

import (
	"context"
	"fmt"
	"log"

	"filetree-server/internal/model"
	"filetree-server/internal/model/requestresponse"
	"filetree-server/internal/ports"
	"filetree-server/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ShareService : выдача и снятие доступа. Грант появляется на узле и на каждом
// его живом потомке, shared-ребро — одно, от корня получателя к самому узлу.
// Права и структура всегда меняются в одной транзакции.
type ShareService struct {
	nodeRepository   ports.NodeRepository
	edgeRepository   ports.EdgeRepository
	accessRepository ports.AccessRepository
	userRepository   ports.UserRepository
	cacheRepository  ports.CacheRepository
}

func NewShareService(
	nodeRepository ports.NodeRepository,
	edgeRepository ports.EdgeRepository,
	accessRepository ports.AccessRepository,
	userRepository ports.UserRepository,
	cacheRepository ports.CacheRepository,
) *ShareService {
	return &ShareService{
		nodeRepository:   nodeRepository,
		edgeRepository:   edgeRepository,
		accessRepository: accessRepository,
		userRepository:   userRepository,
		cacheRepository:  cacheRepository,
	}
}

// Share : даёт пользователям read_only доступ к узлам и их поддеревьям.
// Пустые списки — no-op. Узел, которым делится не владелец, отклоняется
// до любых мутаций. Передача доступа по цепочке не поддерживается.
func (s *ShareService) Share(ctx context.Context, owner *model.User, logins []string, nodeUUIDs []string) ([]requestresponse.ShareResponse, error) {
	if len(logins) == 0 || len(nodeUUIDs) == 0 {
		return []requestresponse.ShareResponse{}, nil
	}

	exec, rollback, commit, err := s.nodeRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[ShareService] не удалось начать транзакцию", err)
	}
	defer rollback()

	targets, err := s.loadTargets(ctx, exec, owner, logins)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return []requestresponse.ShareResponse{}, nil
	}

	// сначала валидация владения всем списком, потом мутации
	nodes, err := s.loadOwnedNodes(ctx, exec, owner, nodeUUIDs)
	if err != nil {
		return nil, err
	}

	var (
		newEdges  []*model.Edge
		newGrants []*model.AccessGrant
		result    []requestresponse.ShareResponse
	)

	for _, node := range nodes {
		shared := []*model.Node{node}
		if node.IsFolder() {
			descendants, err := s.edgeRepository.DescendantsOf(ctx, exec, node.UUID)
			if err != nil {
				return nil, err
			}
			shared = append(shared, descendants...)
		}

		for _, target := range targets {
			newEdges = append(newEdges, &model.Edge{
				UUID:           uuid.New().String(),
				AncestorUUID:   target.UUID,
				DescendantUUID: node.UUID,
				Kind:           model.EdgeKindShared,
				CreatedBy:      owner.UUID,
			})
			for _, sharedNode := range shared {
				newGrants = append(newGrants, &model.AccessGrant{
					UUID:     uuid.New().String(),
					UserUUID: target.UUID,
					NodeUUID: sharedNode.UUID,
					Level:    model.AccessLevelReadOnly,
				})
			}
			result = append(result, requestresponse.ShareResponse{
				Login:    target.Login,
				NodeUUID: node.UUID,
			})
		}
	}

	if err := s.edgeRepository.BulkInsert(ctx, exec, newEdges); err != nil {
		return nil, err
	}
	if err := s.accessRepository.BulkInsert(ctx, exec, newGrants); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[ShareService] ошибка коммита транзакции", err)
	}

	log.Printf("[ShareService] пользователь %s выдал доступ: узлов %d, получателей %d", owner.Login, len(nodes), len(targets))
	return result, nil
}

// Unshare : обратная операция — владелец снимает доступ
func (s *ShareService) Unshare(ctx context.Context, owner *model.User, logins []string, nodeUUIDs []string) ([]requestresponse.ShareResponse, error) {
	if len(logins) == 0 || len(nodeUUIDs) == 0 {
		return []requestresponse.ShareResponse{}, nil
	}

	exec, rollback, commit, err := s.nodeRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[ShareService] не удалось начать транзакцию", err)
	}
	defer rollback()

	targets, err := s.loadTargets(ctx, exec, owner, logins)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return []requestresponse.ShareResponse{}, nil
	}

	nodes, err := s.loadOwnedNodes(ctx, exec, owner, nodeUUIDs)
	if err != nil {
		return nil, err
	}

	result, err := s.removeShares(ctx, exec, targets, nodes)
	if err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[ShareService] ошибка коммита транзакции", err)
	}

	return result, nil
}

// RefuseShare : пользователь сам отказывается от входящего доступа, не трогая
// ни владельца, ни других получателей — удаляются только его рёбра и гранты
func (s *ShareService) RefuseShare(ctx context.Context, user *model.User, nodeUUIDs []string) ([]requestresponse.ShareResponse, error) {
	if len(nodeUUIDs) == 0 {
		return []requestresponse.ShareResponse{}, nil
	}

	exec, rollback, commit, err := s.nodeRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[ShareService] не удалось начать транзакцию", err)
	}
	defer rollback()

	nodes, err := s.nodeRepository.FindAllByUUIDs(ctx, exec, nodeUUIDs)
	if err != nil {
		return nil, err
	}

	var refused []*model.Node
	for _, node := range nodes {
		if node.OwnerUUID != user.UUID {
			refused = append(refused, node)
		}
	}

	result, err := s.removeShares(ctx, exec, []*model.User{user}, refused)
	if err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[ShareService] ошибка коммита транзакции", err)
	}

	return result, nil
}

// UsersNodeSharedWith : кому выдан доступ к узлу
func (s *ShareService) UsersNodeSharedWith(ctx context.Context, nodeUUID string) ([]requestresponse.UserResponse, error) {
	db, err := dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.accessRepository.UsersNodeSharedWith(ctx, db, nodeUUID)
	if err != nil {
		return nil, err
	}

	result := make([]requestresponse.UserResponse, 0, len(users))
	for _, user := range users {
		result = append(result, requestresponse.UserResponse{Login: user.Login})
	}
	return result, nil
}

// removeShares : снимает shared-рёбра и гранты пользователей на узлы и их поддеревья
func (s *ShareService) removeShares(ctx context.Context, exec sqlx.ExtContext, targets []*model.User, nodes []*model.Node) ([]requestresponse.ShareResponse, error) {
	result := []requestresponse.ShareResponse{}
	if len(nodes) == 0 {
		return result, nil
	}

	targetUUIDs := make([]string, 0, len(targets))
	for _, target := range targets {
		targetUUIDs = append(targetUUIDs, target.UUID)
	}

	for _, node := range nodes {
		affected := []*model.Node{node}
		if node.IsFolder() {
			descendants, err := s.edgeRepository.DescendantsOf(ctx, exec, node.UUID)
			if err != nil {
				return nil, err
			}
			affected = append(affected, descendants...)
		}

		// shared-рёбра идут от корней получателей (uuid корня = uuid пользователя);
		// потомки снимаются вместе с узлом, иначе независимо расшаренный потомок
		// остался бы с ребром без гранта
		if err := s.edgeRepository.DeleteByAncestorsAndDescendants(ctx, exec, targetUUIDs, uuidsOf(affected)); err != nil {
			return nil, err
		}
		if err := s.accessRepository.DeleteByUsersAndNodes(ctx, exec, targetUUIDs, uuidsOf(affected)); err != nil {
			return nil, err
		}

		for _, target := range targets {
			result = append(result, requestresponse.ShareResponse{
				Login:    target.Login,
				NodeUUID: node.UUID,
			})
		}
	}

	return result, nil
}

// loadTargets : получатели доступа по логинам; сам владелец из списка исключается
func (s *ShareService) loadTargets(ctx context.Context, exec sqlx.ExtContext, owner *model.User, logins []string) ([]*model.User, error) {
	users, err := s.userRepository.FindAllByLogins(ctx, exec, logins)
	if err != nil {
		return nil, err
	}

	targets := make([]*model.User, 0, len(users))
	for _, user := range users {
		if user.UUID != owner.UUID {
			targets = append(targets, user)
		}
	}
	return targets, nil
}

// loadOwnedNodes : узлы из списка; чужой узел — отказ до любых мутаций,
// несуществующие и удалённые пропускаются
func (s *ShareService) loadOwnedNodes(ctx context.Context, exec sqlx.ExtContext, owner *model.User, nodeUUIDs []string) ([]*model.Node, error) {
	nodes, err := s.nodeRepository.FindAllByUUIDs(ctx, exec, nodeUUIDs)
	if err != nil {
		return nil, err
	}

	result := make([]*model.Node, 0, len(nodes))
	for _, node := range nodes {
		if node.OwnerUUID != owner.UUID {
			return nil, fmt.Errorf("[ShareService] узел %s не принадлежит пользователю %s: %w", node.UUID, owner.Login, util.ErrForbidden)
		}
		if node.IsDeleted() {
			continue
		}
		result = append(result, node)
	}
	return result, nil
}
