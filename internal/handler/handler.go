package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"filetree-server/internal/model"
	"filetree-server/internal/security"
	"filetree-server/internal/util"
)

// userFromRequest : восстанавливает пользователя из claims, положенных
// JWT-middleware в context
func userFromRequest(r *http.Request) (*model.User, error) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		return nil, err
	}
	return &model.User{UUID: claims.UserUUID, Login: claims.Login}, nil
}

// handleServiceError : логирует ошибку сервиса и отвечает статусом
// по её классу, не раскрывая клиенту внутренностей
func handleServiceError(w http.ResponseWriter, err error) {
	log.Println(err)

	status := util.StatusFromError(err)
	switch status {
	case http.StatusNotFound:
		util.HandleError(w, "не найдено", status)
	case http.StatusForbidden:
		util.HandleError(w, "доступ запрещён", status)
	default:
		util.HandleError(w, "внутренняя ошибка сервера", status)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
