package validation

import (
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"helpdesk-core/pkg/config"
)

// ValidateFile проверяет размер и MIME-тип файла по правилам контекста
// (ключ из config.UploadContexts) и возвращает определённый тип.
func ValidateFile(file io.ReadSeeker, size int64, contextName string) (string, error) {
	rules, ok := config.UploadContexts[contextName]
	if !ok {
		return "", fmt.Errorf("внутренняя ошибка: неизвестный контекст загрузки '%s'", contextName)
	}

	if rules.MaxSizeMB > 0 {
		maxSizeBytes := rules.MaxSizeMB * 1024 * 1024
		if size > maxSizeBytes {
			return "", fmt.Errorf("размер файла (%.2f MB) превышает лимит в %d MB", float64(size)/1024/1024, rules.MaxSizeMB)
		}
	}

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения файла")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("ошибка обработки файла")
	}

	// xlsx, docx и т.п. принимаются там, где разрешён их родитель (zip)
	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range rules.AllowedMimeTypes {
			if m.Is(allowed) {
				return detected.String(), nil
			}
		}
	}
	return "", fmt.Errorf("недопустимый формат файла: %s", detected.String())
}
