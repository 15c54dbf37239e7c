package mockapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"helpdesk-core/internal/gateway"
	"helpdesk-core/pkg/config"
	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/filestorage"
	"helpdesk-core/pkg/validation"
)

const (
	defaultUploadContext = "ticket_attachment"
	uploadsURLPrefix     = "/uploads/"
)

type uploadHandler struct {
	files  filestorage.FileStorageInterface
	logger *zap.Logger
}

// upload принимает multipart с полем file; поле context выбирает
// правила из config.UploadContexts.
func (h *uploadHandler) upload(c echo.Context) error {
	uploadContext := c.FormValue("context")
	if uploadContext == "" {
		uploadContext = defaultUploadContext
	}
	rules, ok := config.UploadContexts[uploadContext]
	if !ok {
		return errorResponse(c, http.StatusBadRequest, apperrors.CodeUpload, "Неизвестный контекст загрузки")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, apperrors.CodeUpload, "Файл не был передан")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, apperrors.CodeUpload, "Ошибка обработки файла")
	}
	defer src.Close()

	contentType, err := validation.ValidateFile(src, fileHeader.Size, uploadContext)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, apperrors.CodeUpload, err.Error())
	}

	stored, err := h.files.Save(src, fileHeader.Filename, rules.PathPrefix)
	if err != nil {
		h.logger.Error("Ошибка сохранения файла", zap.Error(err))
		return errorResponse(c, http.StatusInternalServerError, apperrors.CodeUpload, "Ошибка сохранения файла")
	}

	h.logger.Info("Файл загружен", zap.String("id", stored.ID), zap.String("path", stored.Path))
	return c.JSON(http.StatusCreated, gateway.UploadedFile{
		ID:          stored.ID,
		Name:        stored.OriginalName,
		Size:        stored.Size,
		ContentType: contentType,
		URL:         uploadsURLPrefix + stored.Path,
	})
}
