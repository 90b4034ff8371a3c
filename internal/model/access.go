package model

type AccessLevel string

const (
	AccessLevelReadOnly  AccessLevel = "read_only"
	AccessLevelReadWrite AccessLevel = "read_write"
)

// AccessGrant : явное право пользователя на чужой узел.
// Владельцу узла запись не нужна — у него всегда read_write.
type AccessGrant struct {
	UUID     string      `db:"uuid" json:"uuid"`
	UserUUID string      `db:"user_uuid" json:"user_uuid"`
	NodeUUID string      `db:"node_uuid" json:"node_uuid"`
	Level    AccessLevel `db:"level" json:"level"`
}
