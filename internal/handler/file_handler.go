package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestresponse "filetree-server/internal/model/requestresponse"
	"filetree-server/internal/ports"
	"filetree-server/internal/util"
)

type FileHandler struct {
	ports.FileService
	searchService ports.SearchService
}

func NewFileHandler(fileService ports.FileService, searchService ports.SearchService) *FileHandler {
	return &FileHandler{fileService, searchService}
}

// ListFolder godoc
// @Summary Содержимое папки
// @Description Возвращает хлебные крошки и содержимое папки: собственные элементы плюс расшаренные запрашивающему.
// @Tags Files
// @Produce json
// @Param uuid path string true "UUID папки"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.FolderContentResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} requestresponse.ErrorResponse "Нет доступа к папке"
// @Failure 404 {object} requestresponse.ErrorResponse "Папка не найдена"
// @Router /api/files/folder/{uuid} [get]
func (h *FileHandler) ListFolder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	content, err := h.FileService.ListFolder(ctx, user, chi.URLParam(r, "uuid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, content)
}

// CreateFolder godoc
// @Summary Создание папки
// @Description Создаёт папку внутри родительской; новая папка наследует права доступа родителя.
// @Tags Files
// @Accept json
// @Produce json
// @Param request body requestresponse.CreateFolderRequest true "Родительская папка и имя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.NodeResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Failure 403 {object} requestresponse.ErrorResponse "Родительская папка чужая"
// @Failure 404 {object} requestresponse.ErrorResponse "Родительская папка не найдена"
// @Router /api/files/folder [post]
func (h *FileHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.ParentUUID == "" {
		util.HandleError(w, "имя и родительская папка обязательны", http.StatusBadRequest)
		return
	}

	folder, err := h.FileService.CreateFolder(ctx, user, req.ParentUUID, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, folder)
}

// UploadFiles godoc
// @Summary Загрузка файлов в папку
// @Description Принимает multipart/form-data, заливает содержимое в хранилище и регистрирует файлы в папке. Записи появляются только после подтверждения байтов.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param uuid path string true "UUID папки назначения"
// @Param files formData file true "Файлы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {array} requestresponse.NodeResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Failure 403 {object} requestresponse.ErrorResponse "Папка назначения чужая"
// @Failure 404 {object} requestresponse.ErrorResponse "Папка назначения не найдена"
// @Router /api/files/folder/{uuid}/upload [post]
func (h *FileHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		util.HandleError(w, "файлы не найдены в запросе", http.StatusBadRequest)
		return
	}

	descriptors := make([]requestresponse.UploadDescriptor, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			util.HandleError(w, "ошибка чтения файла", http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			util.HandleError(w, "ошибка чтения файла", http.StatusBadRequest)
			return
		}

		descriptors = append(descriptors, requestresponse.UploadDescriptor{
			Name:      header.Filename,
			SizeBytes: int64(len(data)),
			Content:   data,
		})
	}

	uploaded, err := h.FileService.UploadFiles(ctx, user, chi.URLParam(r, "uuid"), descriptors)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploaded)
}

// RenameNode godoc
// @Summary Переименование файла или папки
// @Tags Files
// @Accept json
// @Produce json
// @Param uuid path string true "UUID элемента"
// @Param request body requestresponse.RenameRequest true "Новое имя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.NodeResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Элемент чужой"
// @Failure 404 {object} requestresponse.ErrorResponse "Элемент не найден"
// @Router /api/files/{uuid}/rename [patch]
func (h *FileHandler) RenameNode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	node, err := h.FileService.RenameNode(ctx, user, chi.URLParam(r, "uuid"), req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, node)
}

// DeleteNodes godoc
// @Summary Удаление элементов
// @Description Владелец помечает элементы и их поддеревья удалёнными; получивший доступ — отказывается от доступа. Несуществующие uuid пропускаются.
// @Tags Files
// @Accept json
// @Param request body requestresponse.DeleteNodesRequest true "Список uuid"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 204 "Удалено"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Router /api/files [delete]
func (h *FileHandler) DeleteNodes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.DeleteNodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.FileService.DeleteNodes(ctx, user, req.NodeUUIDs); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MoveNodes godoc
// @Summary Перенос элементов между папками
// @Description Переносит элементы из исходной папки в папку назначения; права прежнего окружения снимаются, права нового — выдаются.
// @Tags Files
// @Accept json
// @Produce json
// @Param request body requestresponse.MoveNodesRequest true "Источник, назначение и список uuid"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {array} requestresponse.NodeResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Router /api/files/move [put]
func (h *FileHandler) MoveNodes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.MoveNodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}
	if req.SourceUUID == "" || req.DestinationUUID == "" {
		util.HandleError(w, "источник и назначение обязательны", http.StatusBadRequest)
		return
	}

	moved, err := h.FileService.MoveNodes(ctx, user, req.SourceUUID, req.DestinationUUID, req.NodeUUIDs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, moved)
}

// NodeDetails godoc
// @Summary Сведения об элементе
// @Tags Files
// @Produce json
// @Param uuid path string true "UUID элемента"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.NodeDetailsResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Нет доступа"
// @Failure 404 {object} requestresponse.ErrorResponse "Элемент не найден"
// @Router /api/files/{uuid} [get]
func (h *FileHandler) NodeDetails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	details, err := h.FileService.NodeDetails(ctx, user, chi.URLParam(r, "uuid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// DownloadNode godoc
// @Summary Скачивание файла
// @Description Возвращает pre-signed GET URL на содержимое файла.
// @Tags Files
// @Produce json
// @Param uuid path string true "UUID файла"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.DownloadResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Нет доступа"
// @Failure 404 {object} requestresponse.ErrorResponse "Файл не найден"
// @Router /api/files/{uuid}/download [get]
func (h *FileHandler) DownloadNode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	download, err := h.FileService.DownloadNode(ctx, user, chi.URLParam(r, "uuid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, download)
}

// DownloadArchive godoc
// @Summary Скачивание zip-архива
// @Description Собирает zip из перечисленных элементов; папки попадают в архив вместе с поддеревьями.
// @Tags Files
// @Accept json
// @Produce application/zip
// @Param request body requestresponse.DeleteNodesRequest true "Список uuid"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {file} binary "Zip-архив"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Router /api/files/archive [post]
func (h *FileHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.DeleteNodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.NodeUUIDs) == 0 {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	archive, err := h.FileService.DownloadArchive(ctx, user, req.NodeUUIDs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="archive.zip"`)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(archive)))
	w.WriteHeader(http.StatusOK)
	w.Write(archive)
}

// BuildPath godoc
// @Summary Хлебные крошки до элемента
// @Description Путь от корня запрашивающего до элемента; для расшаренных элементов путь подвешен под корень запрашивающего.
// @Tags Files
// @Produce json
// @Param uuid path string true "UUID элемента"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {array} requestresponse.NavEntry
// @Router /api/files/{uuid}/path [get]
func (h *FileHandler) BuildPath(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	path, err := h.searchService.BuildPath(ctx, user, chi.URLParam(r, "uuid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, path)
}

// SearchByName godoc
// @Summary Поиск по имени
// @Description Регистронезависимый поиск по подстроке среди собственных и расшаренных элементов.
// @Tags Files
// @Produce json
// @Param name query string true "Подстрока имени"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {array} requestresponse.NodeResponse
// @Router /api/files/search [get]
func (h *FileHandler) SearchByName(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	namePart := r.URL.Query().Get("name")
	if namePart == "" {
		util.HandleError(w, "параметр name обязателен", http.StatusBadRequest)
		return
	}

	found, err := h.searchService.SearchByName(ctx, user, namePart)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, found)
}

// FolderTree godoc
// @Summary Дерево папок пользователя
// @Description Полное дерево собственных папок без файлов, для диалога переноса.
// @Tags Files
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} model.FolderTreeNode
// @Router /api/files/tree [get]
func (h *FileHandler) FolderTree(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userFromRequest(r)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	tree, err := h.FileService.FolderTree(ctx, user)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tree)
}
