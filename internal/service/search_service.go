package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"filetree-server/internal/model"
	"filetree-server/internal/model/requestresponse"
	"filetree-server/internal/ports"
	"filetree-server/internal/util"
)

// maxPathDepth : предохранитель от бесконечного подъёма по повреждённой
// closure-таблице; реальная вложенность на порядки меньше
const maxPathDepth = 512

// SearchService : хлебные крошки и поиск по имени. Только чтение — пишущие
// операции живут в FileService/ShareService.
type SearchService struct {
	nodeRepository   ports.NodeRepository
	edgeRepository   ports.EdgeRepository
	accessRepository ports.AccessRepository
}

func NewSearchService(
	nodeRepository ports.NodeRepository,
	edgeRepository ports.EdgeRepository,
	accessRepository ports.AccessRepository,
) *SearchService {
	return &SearchService{
		nodeRepository:   nodeRepository,
		edgeRepository:   edgeRepository,
		accessRepository: accessRepository,
	}
}

// BuildPath : путь корень → узел по direct-рёбрам дерева владельца.
// Для не-владельца путь обрезается на расшаренном узле и «перевешивается»
// на его собственный корень: с точки зрения получателя доступа элемент висит
// под его корнем, а не в дереве владельца. Если ни один узел пути не расшарен
// запрашивающему — результат пуст.
func (s *SearchService) BuildPath(ctx context.Context, user *model.User, nodeUUID string) ([]requestresponse.NavEntry, error) {
	db, err := dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	node, err := s.nodeRepository.GetByUUID(ctx, db, nodeUUID)
	if err != nil {
		return nil, err
	}
	if node == nil || node.IsDeleted() {
		return []requestresponse.NavEntry{}, nil
	}

	if node.OwnerUUID != user.UUID {
		ok, err := s.accessRepository.HasReadAccess(ctx, db, user.UUID, nodeUUID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []requestresponse.NavEntry{}, nil
		}
	}

	// подъём к корню владельца, от узла вверх по одному direct-ребру за шаг
	path := []*model.Node{node}
	visited := map[string]bool{node.UUID: true}
	current := node
	for depth := 0; ; depth++ {
		if depth > maxPathDepth {
			return nil, fmt.Errorf("[SearchService] путь к %s глубже %d: %w", nodeUUID, maxPathDepth, util.ErrConsistency)
		}

		parent, err := s.edgeRepository.DirectParent(ctx, db, current.UUID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			// подъём закончен; обрыв не в корне — повреждённая таблица
			if current.UUID != node.OwnerUUID {
				return nil, fmt.Errorf("[SearchService] цепочка %s оборвана на %s: %w", nodeUUID, current.UUID, util.ErrConsistency)
			}
			break
		}
		if visited[parent.UUID] {
			return nil, fmt.Errorf("[SearchService] цикл в пути к %s: %w", nodeUUID, util.ErrConsistency)
		}

		visited[parent.UUID] = true
		path = append(path, parent)
		current = parent
	}

	if node.OwnerUUID != user.UUID {
		path, err = s.rerootSharedPath(ctx, db, user, path)
		if err != nil {
			return nil, err
		}
		if path == nil {
			return []requestresponse.NavEntry{}, nil
		}
	}

	// path собран от узла вверх — разворачиваем в порядок корень → узел
	entries := make([]requestresponse.NavEntry, 0, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		entries = append(entries, requestresponse.NavEntry{
			UUID: path[i].UUID,
			Name: path[i].Name,
			Kind: path[i].Kind,
		})
	}
	return entries, nil
}

// SearchByName : регистронезависимый поиск по подстроке в пределах
// достижимого множества — собственного корня и расшаренных пользователю папок
func (s *SearchService) SearchByName(ctx context.Context, user *model.User, namePart string) ([]requestresponse.NodeResponse, error) {
	db, err := dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	root, err := s.nodeRepository.GetByUUID(ctx, db, user.UUID)
	if err != nil {
		return nil, err
	}
	if root == nil || root.IsDeleted() {
		return []requestresponse.NodeResponse{}, nil
	}

	sharedFolders, err := s.edgeRepository.DirectChildren(ctx, db, user.UUID,
		[]model.EdgeKind{model.EdgeKindShared}, model.NodeKindFolder)
	if err != nil {
		return nil, err
	}

	startingPoints := append(uuidsOf(sharedFolders), root.UUID)
	nodes, err := s.nodeRepository.SearchByName(ctx, db, startingPoints, namePart)
	if err != nil {
		return nil, err
	}

	result := make([]requestresponse.NodeResponse, 0, len(nodes))
	for _, node := range nodes {
		result = append(result, toNodeResponse(node, user))
	}
	return result, nil
}

// rerootSharedPath : принимает путь узел → корень владельца, оставляет отрезок
// от узла до первого расшаренного пользователю предка и подвешивает его
// под корень самого пользователя. nil — доступ через шаринг не нашёлся.
func (s *SearchService) rerootSharedPath(ctx context.Context, db sqlx.ExtContext, user *model.User, path []*model.Node) ([]*model.Node, error) {
	sharedEdges, err := s.edgeRepository.FindSharedInbound(ctx, db, user.UUID, uuidsOf(path))
	if err != nil {
		return nil, err
	}
	if len(sharedEdges) == 0 {
		return nil, nil
	}

	anchors := make(map[string]bool, len(sharedEdges))
	for _, edge := range sharedEdges {
		anchors[edge.DescendantUUID] = true
	}

	// path идёт от узла вверх — первый встреченный якорь и есть ближайший к узлу
	var truncated []*model.Node
	for _, pathNode := range path {
		truncated = append(truncated, pathNode)
		if anchors[pathNode.UUID] {
			break
		}
	}

	root, err := s.nodeRepository.GetByUUID(ctx, db, user.UUID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("[SearchService] корневая папка пользователя %s: %w", user.Login, util.ErrConsistency)
	}

	return append(truncated, root), nil
}
