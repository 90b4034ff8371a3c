package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	requestresponse "filetree-server/internal/model/requestresponse"
	"filetree-server/internal/ports"
	"filetree-server/internal/util"
)

type UserHandler struct {
	ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService}
}

// Register godoc
// @Summary Регистрация
// @Description Создаёт пользователя и его корневую папку, возвращает access-токен.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requestresponse.RegisterRequest true "Логин и пароль"
// @Success 201 {object} requestresponse.RegisterResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Failure 403 {object} requestresponse.ErrorResponse "Логин уже занят"
// @Router /api/auth/register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req requestresponse.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}
	if req.Login == "" || req.Password == "" {
		util.HandleError(w, "логин и пароль обязательны", http.StatusBadRequest)
		return
	}

	response, err := h.UserService.Register(ctx, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

// Login godoc
// @Summary Вход
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requestresponse.LoginRequest true "Логин и пароль"
// @Success 200 {object} requestresponse.LoginResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Failure 403 {object} requestresponse.ErrorResponse "Неверный логин или пароль"
// @Router /api/auth/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req requestresponse.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	response, err := h.UserService.Login(ctx, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// SearchByLogin godoc
// @Summary Поиск пользователей по логину
// @Description Подбор логинов для диалога выдачи доступа.
// @Tags Users
// @Produce json
// @Param login query string true "Подстрока логина"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {array} requestresponse.UserResponse
// @Router /api/users/search [get]
func (h *UserHandler) SearchByLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := userFromRequest(r); err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	loginChunk := r.URL.Query().Get("login")
	if loginChunk == "" {
		util.HandleError(w, "параметр login обязателен", http.StatusBadRequest)
		return
	}

	users, err := h.UserService.SearchByLogin(ctx, loginChunk)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}
