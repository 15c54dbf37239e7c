package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StoredFile - метаданные сохранённого вложения.
type StoredFile struct {
	ID           string `json:"id"`
	OriginalName string `json:"name"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
}

type FileStorageInterface interface {
	Save(file io.Reader, originalFileName string, prefix string) (StoredFile, error)
	Delete(filePath string) error
}

type LocalFileStorage struct {
	basePath string
	now      func() time.Time
}

func NewLocalFileStorage(basePath string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию: %w", err)
	}
	return &LocalFileStorage{basePath: basePath, now: time.Now}, nil
}

// Save кладёт файл в <base>/<prefix>/<yyyy>/<mm>/<dd>/<uuid><ext> и
// возвращает путь относительно base.
func (s *LocalFileStorage) Save(file io.Reader, originalFileName string, prefix string) (StoredFile, error) {
	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(originalFileName))

	datePath := s.now().Format("2006/01/02")
	fullDirPath := filepath.Join(s.basePath, prefix, datePath)
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return StoredFile{}, err
	}

	dst, err := os.Create(filepath.Join(fullDirPath, id+ext))
	if err != nil {
		return StoredFile{}, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		return StoredFile{}, err
	}

	return StoredFile{
		ID:           id,
		OriginalName: filepath.Base(originalFileName),
		Path:         filepath.ToSlash(filepath.Join(prefix, datePath, id+ext)),
		Size:         size,
	}, nil
}

// Delete удаляет файл по относительному пути. Отсутствующий файл - не ошибка.
func (s *LocalFileStorage) Delete(filePath string) error {
	relativePath := strings.TrimPrefix(filePath, "/uploads/")
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(relativePath))

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(fullPath)
}
