package requestresponse

import (
	"filetree-server/internal/model"
	"time"
)

// NodeResponse : запись о файле/папке глазами конкретного пользователя.
// AccessLevel зависит от того, владелец запрашивает или получивший доступ.
type NodeResponse struct {
	UUID        string            `json:"uuid"`
	Name        string            `json:"name"`
	Kind        model.NodeKind    `json:"kind"`
	SizeBytes   int64             `json:"size_bytes"`
	AccessLevel model.AccessLevel `json:"access_level"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NavEntry : элемент хлебных крошек (корень → узел)
type NavEntry struct {
	UUID string         `json:"uuid"`
	Name string         `json:"name"`
	Kind model.NodeKind `json:"kind"`
}

type FolderContentResponse struct {
	Navigation []NavEntry     `json:"navigation"`
	Content    []NodeResponse `json:"content"`
}

type NodeDetailsResponse struct {
	Name       string    `json:"name"`
	Extension  string    `json:"extension"`
	SizeBytes  int64     `json:"size_bytes"`
	OwnerLogin string    `json:"owner_login"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateFolderRequest struct {
	ParentUUID string `json:"parent_uuid"`
	Name       string `json:"name"`
}

type RenameRequest struct {
	Name string `json:"name"`
}

type DeleteNodesRequest struct {
	NodeUUIDs []string `json:"node_uuids"`
}

type MoveNodesRequest struct {
	SourceUUID      string   `json:"source_uuid"`
	DestinationUUID string   `json:"destination_uuid"`
	NodeUUIDs       []string `json:"node_uuids"`
}

// UploadDescriptor : один загружаемый файл; содержимое в JSON не попадает
type UploadDescriptor struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Content   []byte `json:"-"`
}

type UploadFilesRequest struct {
	Files []UploadDescriptor `json:"files"`
}

type DownloadResponse struct {
	Name   string `json:"name"`
	GetURL string `json:"get_url"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
