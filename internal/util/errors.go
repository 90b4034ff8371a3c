package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
)

// Классификация ошибок ядра. Сервисы оборачивают их через %w,
// хендлеры разбирают errors.Is и выбирают HTTP-статус.
var (
	// ErrNotFound : узел/пользователь не найден или уже помечен удалённым
	ErrNotFound = errors.New("не найдено")
	// ErrForbidden : нет владения или выданного доступа; проверяется до любых мутаций
	ErrForbidden = errors.New("доступ запрещён")
	// ErrConsistency : closure-таблица повреждена (цикл, потерянное или двойное direct-ребро).
	// Не маскируется пустым результатом — это сигнал о сломанной прошлой транзакции.
	ErrConsistency = errors.New("нарушена целостность иерархии")
	// ErrStorage : сбой БД или объектного хранилища
	ErrStorage = errors.New("ошибка хранилища")
)

func LogError(message string, err error) error {
	log.Printf("%s: %v", message, err)
	return fmt.Errorf("%s: %w", message, err)
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	json.NewEncoder(w).Encode(errorResponse)
}

// StatusFromError : соответствие ошибок ядра HTTP-статусам
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
