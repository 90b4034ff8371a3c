package model

import "time"

type NodeKind string

const (
	NodeKindFile   NodeKind = "file"
	NodeKindFolder NodeKind = "folder"
)

type NodeStatus string

const (
	NodeStatusEnabled NodeStatus = "enabled"
	NodeStatusDeleted NodeStatus = "deleted"
)

// Node : запись о файле или папке. Корневая папка пользователя имеет uuid,
// равный uuid самого пользователя. Extension и SizeBytes имеют смысл только для файлов.
type Node struct {
	UUID      string     `db:"uuid" json:"uuid"`
	Name      string     `db:"name" json:"name"`
	Kind      NodeKind   `db:"kind" json:"kind"`
	OwnerUUID string     `db:"owner_uuid" json:"owner_uuid"`
	SizeBytes int64      `db:"size_bytes" json:"size_bytes"`
	Extension string     `db:"extension" json:"extension,omitempty"`
	Status    NodeStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

func (n *Node) IsFolder() bool {
	return n.Kind == NodeKindFolder
}

func (n *Node) IsDeleted() bool {
	return n.Status == NodeStatusDeleted
}

// NewFolder : создаёт запись о папке (размер всегда 0, расширения нет)
func NewFolder(uuid, name, ownerUUID string) *Node {
	now := time.Now()
	return &Node{
		UUID:      uuid,
		Name:      name,
		Kind:      NodeKindFolder,
		OwnerUUID: ownerUUID,
		Status:    NodeStatusEnabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewFile : создаёт запись о файле
func NewFile(uuid, name, extension string, size int64, ownerUUID string) *Node {
	now := time.Now()
	return &Node{
		UUID:      uuid,
		Name:      name,
		Kind:      NodeKindFile,
		OwnerUUID: ownerUUID,
		SizeBytes: size,
		Extension: extension,
		Status:    NodeStatusEnabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StorageKey : ключ объекта в S3 — неймспейс владельца + uuid + расширение
func (n *Node) StorageKey() string {
	return "users/" + n.OwnerUUID + "/files/" + n.UUID + n.Extension
}

// FolderTreeNode : узел дерева папок пользователя (для бокового меню)
type FolderTreeNode struct {
	UUID     string            `json:"uuid"`
	Name     string            `json:"name"`
	Subnodes []*FolderTreeNode `json:"subnodes"`
}

// TreeNode : узел дерева для скачивания нескольких файлов архивом
type TreeNode struct {
	Node     *Node
	Children []*TreeNode
}
