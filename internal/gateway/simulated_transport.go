package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const simulatedHost = "http://simulated.local"

// SimulatedTransport не ходит в сеть: выдерживает задержку, пишет вызов в
// лог и передаёт его встроенному обработчику, если он задан.
type SimulatedTransport struct {
	latency time.Duration
	handler http.Handler
	logger  *zap.Logger
}

func NewSimulatedTransport(latency time.Duration, handler http.Handler, logger *zap.Logger) *SimulatedTransport {
	return &SimulatedTransport{latency: latency, handler: handler, logger: logger.Named("simulated")}
}

func (t *SimulatedTransport) Name() string { return "simulated" }

func (t *SimulatedTransport) RoundTrip(ctx context.Context, call *Call) (*Reply, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	t.logger.Debug("Имитация запроса",
		zap.String("method", call.Method),
		zap.String("path", call.Path),
		zap.Int("bodyBytes", len(call.Body)),
	)

	if t.handler != nil {
		return t.serve(ctx, call)
	}
	if call.Upload != nil {
		return t.fakeUpload(call.Upload)
	}
	return &Reply{StatusCode: http.StatusOK, Header: jsonHeader(), Body: []byte("null")}, nil
}

func (t *SimulatedTransport) wait(ctx context.Context) error {
	if t.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(t.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("имитация запроса прервана: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (t *SimulatedTransport) serve(ctx context.Context, call *Call) (*Reply, error) {
	req, err := http.NewRequestWithContext(ctx, call.Method, simulatedHost+call.Path, bytes.NewReader(call.Body))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания имитируемого запроса: %w", err)
	}
	req.Header = call.Header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}

	rec := httptest.NewRecorder()
	t.handler.ServeHTTP(rec, req)
	res := rec.Result()
	defer res.Body.Close()
	return &Reply{StatusCode: res.StatusCode, Header: res.Header, Body: rec.Body.Bytes()}, nil
}

// fakeUpload возвращает правдоподобные метаданные файла.
func (t *SimulatedTransport) fakeUpload(upload *FileUpload) (*Reply, error) {
	id := uuid.NewString()
	body, err := json.Marshal(UploadedFile{
		ID:          id,
		Name:        upload.FileName,
		Size:        upload.Size,
		ContentType: upload.ContentType,
		URL:         "/uploads/" + id + "/" + upload.FileName,
	})
	if err != nil {
		return nil, err
	}
	return &Reply{StatusCode: http.StatusCreated, Header: jsonHeader(), Body: body}, nil
}

func jsonHeader() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return h
}
