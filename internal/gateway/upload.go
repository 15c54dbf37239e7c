package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"

	"go.uber.org/zap"

	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/types"
)

const uploadField = "file"

// UploadedFile - метаданные файла, которые сервер возвращает после загрузки.
type UploadedFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
	URL         string `json:"url"`
}

// File - загружаемый файл.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// UploadFile отправляет файл и дополнительные поля формы multipart-запросом.
// Любой сбой даёт UPLOAD_ERROR.
func (g *Gateway) UploadFile(ctx context.Context, endpoint string, file File, extra map[string]string) types.Response[UploadedFile] {
	body, contentType, size, err := buildMultipart(file, extra)
	if err != nil {
		g.logger.Error("Не удалось подготовить загрузку файла", zap.String("file", file.Name), zap.Error(err))
		return types.Failure[UploadedFile](apperrors.CodeUpload, err.Error())
	}

	header := http.Header{}
	header.Set("Content-Type", contentType)
	header.Set("Accept", "application/json")
	g.authorize(ctx, header)

	call := &Call{
		Method: http.MethodPost,
		Path:   endpoint,
		Header: header,
		Body:   body,
		Upload: &FileUpload{
			FieldName:   uploadField,
			FileName:    file.Name,
			ContentType: file.ContentType,
			Size:        size,
		},
	}
	resp := g.do(ctx, call, apperrors.CodeUpload)
	if !resp.Success {
		return types.FailureFrom[UploadedFile](resp)
	}

	var uploaded UploadedFile
	if err := json.Unmarshal(resp.Data, &uploaded); err != nil {
		return types.Failure[UploadedFile](apperrors.CodeUpload, "не удалось разобрать ответ на загрузку: "+err.Error())
	}
	g.logger.Info("Файл загружен", zap.String("file", file.Name), zap.String("id", uploaded.ID))
	return types.Success(uploaded)
}

func buildMultipart(file File, extra map[string]string) ([]byte, string, int64, error) {
	if file.Content == nil {
		return nil, "", 0, fmt.Errorf("файл %q пуст", file.Name)
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writer.WriteField(name, extra[name]); err != nil {
			return nil, "", 0, fmt.Errorf("ошибка записи поля %s: %w", name, err)
		}
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", multipart.FileContentDisposition(uploadField, file.Name))
	partHeader.Set("Content-Type", contentType)
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return nil, "", 0, fmt.Errorf("ошибка создания части файла: %w", err)
	}
	size, err := io.Copy(part, file.Content)
	if err != nil {
		return nil, "", 0, fmt.Errorf("ошибка чтения файла %s: %w", file.Name, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", 0, err
	}
	return buf.Bytes(), writer.FormDataContentType(), size, nil
}
