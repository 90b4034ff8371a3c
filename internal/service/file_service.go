package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"filetree-server/config"
	"filetree-server/internal/model"
	"filetree-server/internal/model/requestresponse"
	"filetree-server/internal/ports"
	"filetree-server/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// FileService : операции над иерархией файлов/папок. Каждая мутация читает
// текущее состояние closure-таблицы, считает новые рёбра и права и коммитит
// всё одной транзакцией — частично применённый перенос сломал бы инвариант
// closure-таблицы.
type FileService struct {
	nodeRepository   ports.NodeRepository
	edgeRepository   ports.EdgeRepository
	accessRepository ports.AccessRepository
	userRepository   ports.UserRepository
	cacheRepository  ports.CacheRepository
	storageInterface ports.ByteStorage
	uploader         ports.ContentUploader
	searchService    ports.SearchService
	ttl              time.Duration
}

func NewFileService(
	nodeRepository ports.NodeRepository,
	edgeRepository ports.EdgeRepository,
	accessRepository ports.AccessRepository,
	userRepository ports.UserRepository,
	cacheRepository ports.CacheRepository,
	storageInterface ports.ByteStorage,
	uploader ports.ContentUploader,
	searchService ports.SearchService,
	ttl time.Duration,
) *FileService {
	return &FileService{
		nodeRepository:   nodeRepository,
		edgeRepository:   edgeRepository,
		accessRepository: accessRepository,
		userRepository:   userRepository,
		cacheRepository:  cacheRepository,
		storageInterface: storageInterface,
		uploader:         uploader,
		searchService:    searchService,
		ttl:              ttl,
	}
}

func dbFromContext(ctx context.Context) (*config.Database, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("database connection не найден в context")
	}
	return db, nil
}

// CreateRootFolder : создаёт корневую папку пользователя при регистрации.
// Uuid корня равен uuid пользователя; выполняется внутри транзакции регистрации,
// поэтому принимает exec снаружи.
func (s *FileService) CreateRootFolder(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.Node, error) {
	root := model.NewFolder(user.UUID, user.Login, user.UUID)
	if err := s.nodeRepository.Create(ctx, exec, root); err != nil {
		return nil, util.LogError("[FileService] не удалось создать корневую папку", err)
	}

	log.Printf("[FileService] корневая папка пользователя %s создана", user.Login)
	return root, nil
}

// CreateFolder : новая папка наследует и цепочку предков родителя
// (одно direct-ребро + indirect на каждого предка), и его права доступа
func (s *FileService) CreateFolder(ctx context.Context, user *model.User, parentUUID, name string) (*requestresponse.NodeResponse, error) {
	exec, rollback, commit, err := s.nodeRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[FileService] не удалось начать транзакцию", err)
	}
	defer rollback()

	parent, err := s.nodeRepository.GetByUUID(ctx, exec, parentUUID)
	if err != nil {
		return nil, err
	}
	if parent == nil || parent.IsDeleted() || !parent.IsFolder() {
		return nil, fmt.Errorf("[FileService] родительская папка %s: %w", parentUUID, util.ErrNotFound)
	}
	if parent.OwnerUUID != user.UUID {
		return nil, fmt.Errorf("[FileService] создание в чужой папке: %w", util.ErrForbidden)
	}

	folder := model.NewFolder(uuid.New().String(), name, user.UUID)
	if err := s.nodeRepository.Create(ctx, exec, folder); err != nil {
		return nil, err
	}

	ancestors, err := s.edgeRepository.OwnedAncestorsOf(ctx, exec, parent.UUID)
	if err != nil {
		return nil, err
	}

	edges := buildEdges(user.UUID, append(ancestors, parent), parent.UUID, []*model.Node{folder}, folder.UUID)
	if err := s.edgeRepository.BulkInsert(ctx, exec, edges); err != nil {
		return nil, err
	}

	// папка наследует текущее состояние шаринга родителя
	parentGrants, err := s.accessRepository.GrantsOn(ctx, exec, parent.UUID)
	if err != nil {
		return nil, err
	}
	if err := s.accessRepository.BulkInsert(ctx, exec, copyGrants(parentGrants, []*model.Node{folder})); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[FileService] ошибка коммита транзакции", err)
	}

	response := toNodeResponse(folder, user)
	return &response, nil
}

// UploadFiles : заливает содержимое по pre-signed PUT URL и только после
// подтверждения байтов коммитит метаданные, рёбра от всей цепочки предков
// и унаследованные права. Сбой заливки откатывает транзакцию целиком —
// записи без содержимого в хранилище не появляются.
func (s *FileService) UploadFiles(ctx context.Context, user *model.User, folderUUID string, files []requestresponse.UploadDescriptor) ([]requestresponse.NodeResponse, error) {
	if len(files) == 0 {
		return nil, nil
	}

	exec, rollback, commit, err := s.nodeRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[FileService] не удалось начать транзакцию", err)
	}
	defer rollback()

	folder, err := s.nodeRepository.GetByUUID(ctx, exec, folderUUID)
	if err != nil {
		return nil, err
	}
	if folder == nil || folder.IsDeleted() || !folder.IsFolder() {
		return nil, fmt.Errorf("[FileService] папка %s: %w", folderUUID, util.ErrNotFound)
	}
	if folder.OwnerUUID != user.UUID {
		return nil, fmt.Errorf("[FileService] загрузка в чужую папку: %w", util.ErrForbidden)
	}

	ancestors, err := s.edgeRepository.OwnedAncestorsOf(ctx, exec, folder.UUID)
	if err != nil {
		return nil, err
	}
	ancestors = append(ancestors, folder)

	folderGrants, err := s.accessRepository.GrantsOn(ctx, exec, folder.UUID)
	if err != nil {
		return nil, err
	}

	nodes := make([]*model.Node, 0, len(files))
	responses := make([]requestresponse.NodeResponse, 0, len(files))
	for _, file := range files {
		node := model.NewFile(uuid.New().String(), file.Name, util.ExtractExt(file.Name), file.SizeBytes, user.UUID)
		putURL, err := s.storageInterface.GeneratePresignedPutURL(ctx, node.StorageKey(), s.ttl)
		if err != nil {
			return nil, util.LogError("[FileService] не удалось сгенерировать pre-signed PUT URL", err)
		}

		if err := s.uploader.Upload(putURL, file.Name, file.Content); err != nil {
			return nil, util.LogError("[FileService] загрузка содержимого "+file.Name, errors.Join(util.ErrStorage, err))
		}

		nodes = append(nodes, node)
		responses = append(responses, toNodeResponse(node, user))
	}

	if err := s.nodeRepository.BulkCreate(ctx, exec, nodes); err != nil {
		return nil, err
	}

	var edges []*model.Edge
	for _, node := range nodes {
		edges = append(edges, buildEdges(user.UUID, ancestors, folder.UUID, []*model.Node{node}, node.UUID)...)
	}
	if err := s.edgeRepository.BulkInsert(ctx, exec, edges); err != nil {
		return nil, err
	}

	if err := s.accessRepository.BulkInsert(ctx, exec, copyGrants(folderGrants, nodes)); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[FileService] ошибка коммита транзакции", err)
	}

	log.Printf("[FileService] в папку %s загружено файлов: %d", folder.Name, len(nodes))
	return responses, nil
}

// RenameNode : чистая мутация записи, рёбра и права не меняются
func (s *FileService) RenameNode(ctx context.Context, user *model.User, nodeUUID, newName string) (*requestresponse.NodeResponse, error) {
	exec, rollback, commit, err := s.nodeRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[FileService] не удалось начать транзакцию", err)
	}
	defer rollback()

	node, err := s.nodeRepository.GetByUUID(ctx, exec, nodeUUID)
	if err != nil {
		return nil, err
	}
	if node == nil || node.IsDeleted() {
		return nil, fmt.Errorf("[FileService] узел %s: %w", nodeUUID, util.ErrNotFound)
	}
	if node.OwnerUUID != user.UUID {
		return nil, fmt.Errorf("[FileService] переименование доступно только владельцу: %w", util.ErrForbidden)
	}

	if err := s.nodeRepository.Rename(ctx, exec, nodeUUID, newName); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[FileService] ошибка коммита транзакции", err)
	}

	if err := s.cacheRepository.DeleteNode(ctx, nodeUUID); err != nil {
		log.Printf("[FileService] ошибка инвалидации кэша: %v", err)
	}

	node.Name = newName
	response := toNodeResponse(node, user)
	return &response, nil
}

// DeleteNodes : владелец мягко удаляет узел и всё поддерево (рёбра остаются,
// статус фильтрует их из выборок). Не-владелец «покидает» расшаренный элемент:
// снимаются только его shared-рёбра и права. Несуществующие id пропускаются,
// повторное удаление — no-op.
func (s *FileService) DeleteNodes(ctx context.Context, user *model.User, nodeUUIDs []string) error {
	exec, rollback, commit, err := s.nodeRepository.BeginTX(ctx)
	if err != nil {
		return util.LogError("[FileService] не удалось начать транзакцию", err)
	}
	defer rollback()

	var invalidate []string

	for _, id := range nodeUUIDs {
		node, err := s.nodeRepository.GetByUUID(ctx, exec, id)
		if err != nil {
			return err
		}
		if node == nil || node.IsDeleted() {
			continue
		}

		targets := []*model.Node{node}
		if node.IsFolder() {
			descendants, err := s.edgeRepository.DescendantsOf(ctx, exec, node.UUID)
			if err != nil {
				return err
			}
			targets = append(targets, descendants...)
		}

		if node.OwnerUUID == user.UUID {
			if err := s.nodeRepository.MarkDeleted(ctx, exec, uuidsOf(targets)); err != nil {
				return err
			}
		} else {
			// покидаем расшаренный элемент: shared-рёбра от нашего корня снимаются
			// со всего поддерева, в ногу с грантами
			if err := s.edgeRepository.DeleteByAncestorsAndDescendants(ctx, exec, []string{user.UUID}, uuidsOf(targets)); err != nil {
				return err
			}
			if err := s.accessRepository.DeleteByUsersAndNodes(ctx, exec, []string{user.UUID}, uuidsOf(targets)); err != nil {
				return err
			}
		}

		invalidate = append(invalidate, uuidsOf(targets)...)
	}

	if err := commit(); err != nil {
		return util.LogError("[FileService] ошибка коммита транзакции", err)
	}

	if err := s.cacheRepository.DeleteNodes(ctx, invalidate); err != nil {
		log.Printf("[FileService] ошибка инвалидации кэша: %v", err)
	}

	return nil
}

// MoveNodes : переносит файлы/папки из src в dest. Внутренние рёбра поддерева
// не трогаются — заменяются только рёбра через границу поддерева. Права
// пересчитываются по политике «потерять старые, получить новые»: гранты
// пользователей старой цепочки предков снимаются, гранты с цепочки dest
// выдаются заново.
func (s *FileService) MoveNodes(ctx context.Context, user *model.User, srcUUID, destUUID string, nodeUUIDs []string) ([]requestresponse.NodeResponse, error) {
	filtered := dedupeExcluding(nodeUUIDs, srcUUID, destUUID)
	if len(filtered) == 0 {
		return nil, nil
	}

	exec, rollback, commit, err := s.nodeRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[FileService] не удалось начать транзакцию", err)
	}
	defer rollback()

	src, err := s.nodeRepository.GetByUUID(ctx, exec, srcUUID)
	if err != nil {
		return nil, err
	}
	if src == nil || src.IsDeleted() {
		return nil, nil
	}
	if ok, err := s.accessRepository.HasReadAccess(ctx, exec, user.UUID, srcUUID); err != nil {
		return nil, err
	} else if !ok {
		return nil, nil
	}

	dest, err := s.nodeRepository.GetByUUID(ctx, exec, destUUID)
	if err != nil {
		return nil, err
	}
	if dest == nil || dest.IsDeleted() || !dest.IsFolder() {
		return nil, nil
	}
	if ok, err := s.accessRepository.HasReadAccess(ctx, exec, user.UUID, destUUID); err != nil {
		return nil, err
	} else if !ok {
		return nil, nil
	}

	// перенос папки внутрь собственного поддерева зациклил бы closure-таблицу:
	// узлы из цепочки предков dest выпадают из переноса
	destAncestors, err := s.edgeRepository.AncestorsOf(ctx, exec, dest.UUID)
	if err != nil {
		return nil, err
	}
	destChain := make(map[string]bool, len(destAncestors))
	for _, ancestor := range destAncestors {
		destChain[ancestor.UUID] = true
	}

	// пользователи, имевшие доступ через старую цепочку предков
	srcAncestors, err := s.edgeRepository.OwnedAncestorsOf(ctx, exec, src.UUID)
	if err != nil {
		return nil, err
	}
	srcAncestors = append(srcAncestors, src)
	srcGrants, err := s.accessRepository.GrantsOnAny(ctx, exec, uuidsOf(srcAncestors))
	if err != nil {
		return nil, err
	}
	srcUsers := grantUserUUIDs(srcGrants)

	// права, действующие в точке назначения
	newAncestors, err := s.edgeRepository.OwnedAncestorsOf(ctx, exec, dest.UUID)
	if err != nil {
		return nil, err
	}
	newAncestors = append(newAncestors, dest)
	destGrants, err := s.accessRepository.GrantsOnAny(ctx, exec, uuidsOf(newAncestors))
	if err != nil {
		return nil, err
	}
	destLevels := grantLevelsByUser(destGrants)

	var (
		allNewEdges  []*model.Edge
		allNewGrants []*model.AccessGrant
		result       []requestresponse.NodeResponse
		invalidate   []string
	)

	for _, id := range filtered {
		if destChain[id] {
			continue
		}

		node, err := s.nodeRepository.GetByUUID(ctx, exec, id)
		if err != nil {
			return nil, err
		}
		if node == nil || node.IsDeleted() {
			continue
		}

		movingSet := []*model.Node{node}
		if node.IsFolder() {
			// рёбра через границу поддерева: все текущие предки × всё поддерево
			currentAncestors, err := s.edgeRepository.OwnedAncestorsOf(ctx, exec, node.UUID)
			if err != nil {
				return nil, err
			}
			descendants, err := s.edgeRepository.DescendantsOf(ctx, exec, node.UUID)
			if err != nil {
				return nil, err
			}
			movingSet = append(movingSet, descendants...)

			if err := s.edgeRepository.DeleteByAncestorsAndDescendants(ctx, exec, uuidsOf(currentAncestors), uuidsOf(movingSet)); err != nil {
				return nil, err
			}
		} else {
			if err := s.edgeRepository.DeleteByDescendant(ctx, exec, node.UUID); err != nil {
				return nil, err
			}
		}

		allNewEdges = append(allNewEdges, buildEdges(user.UUID, newAncestors, dest.UUID, movingSet, node.UUID)...)

		if err := s.accessRepository.DeleteByUsersAndNodes(ctx, exec, srcUsers, uuidsOf(movingSet)); err != nil {
			return nil, err
		}
		allNewGrants = append(allNewGrants, deriveGrants(destLevels, movingSet)...)

		result = append(result, toNodeResponse(node, user))
		invalidate = append(invalidate, uuidsOf(movingSet)...)
	}

	if err := s.edgeRepository.BulkInsert(ctx, exec, allNewEdges); err != nil {
		return nil, err
	}
	if err := s.accessRepository.BulkInsert(ctx, exec, allNewGrants); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[FileService] ошибка коммита транзакции", err)
	}

	if err := s.cacheRepository.DeleteNodes(ctx, invalidate); err != nil {
		log.Printf("[FileService] ошибка инвалидации кэша: %v", err)
	}

	return result, nil
}

// ListFolder : содержимое папки (direct + shared дети) глазами пользователя,
// с хлебными крошками
func (s *FileService) ListFolder(ctx context.Context, user *model.User, folderUUID string) (*requestresponse.FolderContentResponse, error) {
	db, err := dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	folder, err := s.getNodeCached(ctx, db, folderUUID)
	if err != nil {
		return nil, err
	}
	if folder == nil || folder.IsDeleted() {
		return nil, fmt.Errorf("[FileService] папка %s: %w", folderUUID, util.ErrNotFound)
	}
	if folder.OwnerUUID != user.UUID {
		if ok, err := s.accessRepository.HasReadAccess(ctx, db, user.UUID, folderUUID); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("[FileService] просмотр папки: %w", util.ErrForbidden)
		}
	}

	children, err := s.edgeRepository.DirectChildren(ctx, db, folderUUID,
		[]model.EdgeKind{model.EdgeKindDirect, model.EdgeKindShared}, "")
	if err != nil {
		return nil, err
	}

	// видимость чужих узлов проверяем по грантам одним запросом
	var foreign []string
	for _, child := range children {
		if child.OwnerUUID != user.UUID {
			foreign = append(foreign, child.UUID)
		}
	}
	granted, err := s.accessRepository.GrantedNodeUUIDs(ctx, db, user.UUID, foreign)
	if err != nil {
		return nil, err
	}

	content := make([]requestresponse.NodeResponse, 0, len(children))
	for _, child := range children {
		if child.OwnerUUID == user.UUID || granted[child.UUID] {
			content = append(content, toNodeResponse(child, user))
		}
	}

	navigation, err := s.searchService.BuildPath(ctx, user, folderUUID)
	if err != nil {
		return nil, err
	}

	return &requestresponse.FolderContentResponse{
		Navigation: navigation,
		Content:    content,
	}, nil
}

// NodeDetails : карточка файла/папки
func (s *FileService) NodeDetails(ctx context.Context, user *model.User, nodeUUID string) (*requestresponse.NodeDetailsResponse, error) {
	db, err := dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	node, err := s.getNodeCached(ctx, db, nodeUUID)
	if err != nil {
		return nil, err
	}
	if node == nil || node.IsDeleted() {
		return nil, fmt.Errorf("[FileService] узел %s: %w", nodeUUID, util.ErrNotFound)
	}
	if node.OwnerUUID != user.UUID {
		if ok, err := s.accessRepository.HasReadAccess(ctx, db, user.UUID, nodeUUID); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("[FileService] просмотр узла: %w", util.ErrForbidden)
		}
	}

	owner, err := s.userRepository.FindByUUID(ctx, db, node.OwnerUUID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("[FileService] владелец узла %s: %w", nodeUUID, util.ErrConsistency)
	}

	return &requestresponse.NodeDetailsResponse{
		Name:       node.Name,
		Extension:  node.Extension,
		SizeBytes:  node.SizeBytes,
		OwnerLogin: owner.Login,
		CreatedAt:  node.CreatedAt,
		UpdatedAt:  node.UpdatedAt,
	}, nil
}

// DownloadNode : pre-signed GET URL на один файл
func (s *FileService) DownloadNode(ctx context.Context, user *model.User, nodeUUID string) (*requestresponse.DownloadResponse, error) {
	db, err := dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	node, err := s.getNodeCached(ctx, db, nodeUUID)
	if err != nil {
		return nil, err
	}
	if node == nil || node.IsDeleted() || node.IsFolder() {
		return nil, fmt.Errorf("[FileService] файл %s: %w", nodeUUID, util.ErrNotFound)
	}
	if node.OwnerUUID != user.UUID {
		if ok, err := s.accessRepository.HasReadAccess(ctx, db, user.UUID, nodeUUID); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("[FileService] скачивание файла: %w", util.ErrForbidden)
		}
	}

	getURL, err := s.storageInterface.GeneratePresignedGetURL(ctx, node.StorageKey(), s.ttl)
	if err != nil {
		return nil, util.LogError("[FileService] не удалось сгенерировать pre-signed GET URL", err)
	}

	return &requestresponse.DownloadResponse{
		Name:   node.Name,
		GetURL: getURL,
	}, nil
}

// DownloadArchive : несколько файлов/папок одним zip-архивом.
// Недоступные и удалённые узлы молча выпадают из выборки.
func (s *FileService) DownloadArchive(ctx context.Context, user *model.User, nodeUUIDs []string) ([]byte, error) {
	db, err := dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	nodes, err := s.nodeRepository.FindAllByUUIDs(ctx, db, nodeUUIDs)
	if err != nil {
		return nil, err
	}

	var foreign []string
	for _, node := range nodes {
		if node.OwnerUUID != user.UUID {
			foreign = append(foreign, node.UUID)
		}
	}
	granted, err := s.accessRepository.GrantedNodeUUIDs(ctx, db, user.UUID, foreign)
	if err != nil {
		return nil, err
	}

	var accessible []*model.Node
	for _, node := range nodes {
		if node.IsDeleted() {
			continue
		}
		if node.OwnerUUID == user.UUID || granted[node.UUID] {
			accessible = append(accessible, node)
		}
	}
	if len(accessible) == 0 {
		return nil, fmt.Errorf("[FileService] нет доступных файлов для скачивания: %w", util.ErrNotFound)
	}

	tree, err := s.buildTree(ctx, db, accessible)
	if err != nil {
		return nil, err
	}

	archive, err := s.storageInterface.Archive(ctx, tree)
	if err != nil {
		return nil, util.LogError("[FileService] не удалось собрать архив", err)
	}
	return archive, nil
}

// FolderTree : дерево папок пользователя (BFS по direct-рёбрам)
func (s *FileService) FolderTree(ctx context.Context, user *model.User) (*model.FolderTreeNode, error) {
	db, err := dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	root, err := s.nodeRepository.GetByUUID(ctx, db, user.UUID)
	if err != nil {
		return nil, err
	}
	if root == nil || root.IsDeleted() {
		return nil, fmt.Errorf("[FileService] корневая папка пользователя %s: %w", user.Login, util.ErrNotFound)
	}

	rootNode := &model.FolderTreeNode{UUID: root.UUID, Name: root.Name}
	queue := []*model.FolderTreeNode{rootNode}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		folders, err := s.edgeRepository.DirectChildren(ctx, db, current.UUID,
			[]model.EdgeKind{model.EdgeKindDirect}, model.NodeKindFolder)
		if err != nil {
			return nil, err
		}

		for _, folder := range folders {
			subnode := &model.FolderTreeNode{UUID: folder.UUID, Name: folder.Name}
			current.Subnodes = append(current.Subnodes, subnode)
			queue = append(queue, subnode)
		}
	}

	return rootNode, nil
}

// getNodeCached : чтение узла через Redis (read-through)
func (s *FileService) getNodeCached(ctx context.Context, db *config.Database, nodeUUID string) (*model.Node, error) {
	node, err := s.cacheRepository.GetNode(ctx, nodeUUID)
	if err != nil {
		log.Printf("[FileService] ошибка кэширования: %v", err)
	}
	if node != nil {
		return node, nil
	}

	node, err = s.nodeRepository.GetByUUID(ctx, db, nodeUUID)
	if err != nil || node == nil {
		return node, err
	}

	if err := s.cacheRepository.SetNode(ctx, node); err != nil {
		log.Printf("[FileService] ошибка кэширования узла: %v", err)
	}
	return node, nil
}

// buildTree : рекурсивно собирает дерево для архива по direct-рёбрам
func (s *FileService) buildTree(ctx context.Context, exec sqlx.ExtContext, nodes []*model.Node) ([]*model.TreeNode, error) {
	var tree []*model.TreeNode

	for _, node := range nodes {
		treeNode := &model.TreeNode{Node: node}

		if node.IsFolder() {
			children, err := s.edgeRepository.DirectChildren(ctx, exec, node.UUID,
				[]model.EdgeKind{model.EdgeKindDirect}, "")
			if err != nil {
				return nil, err
			}
			subTree, err := s.buildTree(ctx, exec, children)
			if err != nil {
				return nil, err
			}
			treeNode.Children = subTree
		}

		tree = append(tree, treeNode)
	}

	return tree, nil
}

// ===== Вспомогательные функции над множествами узлов/прав =====

// buildEdges : рёбра от каждого предка к каждому узлу переносимого множества;
// direct ровно в точке (непосредственный родитель, корень множества)
func buildEdges(createdBy string, ancestors []*model.Node, parentUUID string, movingSet []*model.Node, movedRootUUID string) []*model.Edge {
	edges := make([]*model.Edge, 0, len(ancestors)*len(movingSet))
	for _, ancestor := range ancestors {
		for _, node := range movingSet {
			kind := model.EdgeKindIndirect
			if ancestor.UUID == parentUUID && node.UUID == movedRootUUID {
				kind = model.EdgeKindDirect
			}
			edges = append(edges, &model.Edge{
				UUID:           uuid.New().String(),
				AncestorUUID:   ancestor.UUID,
				DescendantUUID: node.UUID,
				Kind:           kind,
				CreatedBy:      createdBy,
			})
		}
	}
	return edges
}

// copyGrants : переносит права родителя на новые узлы (новые uuid записей)
func copyGrants(parentGrants []*model.AccessGrant, nodes []*model.Node) []*model.AccessGrant {
	grants := make([]*model.AccessGrant, 0, len(parentGrants)*len(nodes))
	for _, parentGrant := range parentGrants {
		for _, node := range nodes {
			grants = append(grants, &model.AccessGrant{
				UUID:     uuid.New().String(),
				UserUUID: parentGrant.UserUUID,
				NodeUUID: node.UUID,
				Level:    parentGrant.Level,
			})
		}
	}
	return grants
}

// deriveGrants : выдаёт каждому пользователю из карты его уровень на каждый узел
func deriveGrants(levelsByUser map[string]model.AccessLevel, nodes []*model.Node) []*model.AccessGrant {
	var grants []*model.AccessGrant
	for userUUID, level := range levelsByUser {
		for _, node := range nodes {
			grants = append(grants, &model.AccessGrant{
				UUID:     uuid.New().String(),
				UserUUID: userUUID,
				NodeUUID: node.UUID,
				Level:    level,
			})
		}
	}
	return grants
}

func grantUserUUIDs(grants []*model.AccessGrant) []string {
	seen := make(map[string]bool, len(grants))
	var users []string
	for _, grant := range grants {
		if !seen[grant.UserUUID] {
			seen[grant.UserUUID] = true
			users = append(users, grant.UserUUID)
		}
	}
	return users
}

func grantLevelsByUser(grants []*model.AccessGrant) map[string]model.AccessLevel {
	levels := make(map[string]model.AccessLevel, len(grants))
	for _, grant := range grants {
		// read_write сильнее read_only, если у пользователя гранты на нескольких предках
		if current, ok := levels[grant.UserUUID]; !ok || current == model.AccessLevelReadOnly {
			levels[grant.UserUUID] = grant.Level
		}
	}
	return levels
}

func uuidsOf(nodes []*model.Node) []string {
	uuids := make([]string, 0, len(nodes))
	for _, node := range nodes {
		uuids = append(uuids, node.UUID)
	}
	return uuids
}

func dedupeExcluding(ids []string, exclude ...string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	seen := make(map[string]bool, len(ids))
	var result []string
	for _, id := range ids {
		if excluded[id] || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

func toNodeResponse(node *model.Node, user *model.User) requestresponse.NodeResponse {
	level := model.AccessLevelReadWrite
	if node.OwnerUUID != user.UUID {
		level = model.AccessLevelReadOnly
	}
	return requestresponse.NodeResponse{
		UUID:        node.UUID,
		Name:        node.Name,
		Kind:        node.Kind,
		SizeBytes:   node.SizeBytes,
		AccessLevel: level,
		UpdatedAt:   node.UpdatedAt,
	}
}
