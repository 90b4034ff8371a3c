package requestresponse

type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// RegisterResponse : вместе с токеном возвращаем uuid корневой папки,
// созданной при регистрации
type RegisterResponse struct {
	UUID        string `json:"uuid"`
	Login       string `json:"login"`
	AccessToken string `json:"access_token"`
	RootUUID    string `json:"root_uuid"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type UserResponse struct {
	Login string `json:"login"`
}
