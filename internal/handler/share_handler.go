package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestresponse "filetree-server/internal/model/requestresponse"
	"filetree-server/internal/ports"
	"filetree-server/internal/util"
)

type ShareHandler struct {
	ports.ShareService
}

func NewShareHandler(shareService ports.ShareService) *ShareHandler {
	return &ShareHandler{shareService}
}

// Share godoc
// @Summary Выдача доступа
// @Description Выдаёт пользователям доступ на чтение к элементам; для папок доступ распространяется на всё поддерево.
// @Tags Share
// @Accept json
// @Produce json
// @Param request body requestresponse.ShareRequest true "Логины и список uuid"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {array} requestresponse.ShareResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Failure 403 {object} requestresponse.ErrorResponse "Среди элементов есть чужие"
// @Router /api/share [post]
func (h *ShareHandler) Share(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	shared, err := h.ShareService.Share(ctx, user, req.Logins, req.NodeUUIDs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shared)
}

// Unshare godoc
// @Summary Снятие доступа
// @Description Снимает ранее выданный доступ вместе с доступом ко всем вложенным элементам.
// @Tags Share
// @Accept json
// @Produce json
// @Param request body requestresponse.UnshareRequest true "Логины и список uuid"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {array} requestresponse.ShareResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Failure 403 {object} requestresponse.ErrorResponse "Среди элементов есть чужие"
// @Router /api/share [delete]
func (h *ShareHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.UnshareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	removed, err := h.ShareService.Unshare(ctx, user, req.Logins, req.NodeUUIDs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, removed)
}

// RefuseShare godoc
// @Summary Отказ от входящего доступа
// @Description Пользователь сам отказывается от элементов, расшаренных ему другими.
// @Tags Share
// @Accept json
// @Produce json
// @Param request body requestresponse.RefuseShareRequest true "Список uuid"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {array} requestresponse.ShareResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Router /api/share/refuse [post]
func (h *ShareHandler) RefuseShare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.RefuseShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	refused, err := h.ShareService.RefuseShare(ctx, user, req.NodeUUIDs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, refused)
}

// UsersNodeSharedWith godoc
// @Summary Пользователи с доступом к элементу
// @Tags Share
// @Produce json
// @Param uuid path string true "UUID элемента"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {array} requestresponse.UserResponse
// @Router /api/share/{uuid}/users [get]
func (h *ShareHandler) UsersNodeSharedWith(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := userFromRequest(r); err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	users, err := h.ShareService.UsersNodeSharedWith(ctx, chi.URLParam(r, "uuid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}
