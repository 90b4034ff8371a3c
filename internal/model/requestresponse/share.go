package requestresponse

type ShareRequest struct {
	Logins    []string `json:"logins"`
	NodeUUIDs []string `json:"node_uuids"`
}

type UnshareRequest struct {
	Logins    []string `json:"logins"`
	NodeUUIDs []string `json:"node_uuids"`
}

// RefuseShareRequest : пользователь сам отказывается от входящего доступа
type RefuseShareRequest struct {
	NodeUUIDs []string `json:"node_uuids"`
}

// ShareResponse : одна выданная/снятая пара (пользователь, узел)
type ShareResponse struct {
	Login    string `json:"login"`
	NodeUUID string `json:"node_uuid"`
}
