package model

type EdgeKind string

const (
	// EdgeKindDirect : непосредственный родитель → потомок в дереве владельца
	EdgeKindDirect EdgeKind = "owned_direct"
	// EdgeKindIndirect : транзитивный предок → потомок (closure table)
	EdgeKindIndirect EdgeKind = "owned_indirect"
	// EdgeKindShared : корень другого пользователя → узел, которым с ним поделились
	EdgeKindShared EdgeKind = "shared"
)

// Edge : факт достижимости (предок, потомок) в closure-таблице.
// CreatedBy — пользователь, создавший ребро (для shared-рёбер это владелец узла).
type Edge struct {
	UUID           string   `db:"uuid" json:"uuid"`
	AncestorUUID   string   `db:"ancestor_uuid" json:"ancestor_uuid"`
	DescendantUUID string   `db:"descendant_uuid" json:"descendant_uuid"`
	Kind           EdgeKind `db:"kind" json:"kind"`
	CreatedBy      string   `db:"created_by" json:"created_by"`
}

// OwnedEdgeKinds : рёбра, образующие дерево одного владельца
func OwnedEdgeKinds() []EdgeKind {
	return []EdgeKind{EdgeKindDirect, EdgeKindIndirect}
}
