package util

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// S3Uploader : заливает содержимое файла по pre-signed PUT URL.
// Возврат без ошибки означает, что хранилище подтвердило байты —
// метаданные можно коммитить.
type S3Uploader struct {
	client *http.Client
}

func NewS3Uploader() *S3Uploader {
	return &S3Uploader{
		client: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// Upload : синхронная загрузка содержимого по pre-signed URL
func (u *S3Uploader) Upload(presignedURL string, name string, data []byte) error {
	req, err := http.NewRequest(http.MethodPut, presignedURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса для %s: %w", name, err)
	}

	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка загрузки %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ошибка загрузки %s: статус %d, ответ: %s", name, resp.StatusCode, string(body))
	}

	return nil
}
