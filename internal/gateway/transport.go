package gateway

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"helpdesk-core/pkg/config"
)

// FileUpload - сведения о загружаемом файле, передаются транспорту вместе
// с уже собранным multipart-телом.
type FileUpload struct {
	FieldName   string
	FileName    string
	ContentType string
	Size        int64
}

// Call - один исходящий вызов. Path уже содержит строку запроса.
type Call struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
	Upload *FileUpload
}

// Reply - ответ транспорта. Статус не проверяется: это делает шлюз.
type Reply struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport доставляет вызов до сервера (настоящего или имитируемого).
// Ошибка возвращается только при сбое доставки.
type Transport interface {
	RoundTrip(ctx context.Context, call *Call) (*Reply, error)
	Name() string
}

// TransportFunc позволяет использовать обычную функцию как Transport.
type TransportFunc func(ctx context.Context, call *Call) (*Reply, error)

func (f TransportFunc) RoundTrip(ctx context.Context, call *Call) (*Reply, error) {
	return f(ctx, call)
}

func (f TransportFunc) Name() string { return "func" }

// NewTransport выбирает транспорт по режиму приложения. handler может быть
// nil: тогда имитация отвечает пустыми данными.
func NewTransport(cfg *config.Config, handler http.Handler, logger *zap.Logger) Transport {
	if cfg.Mode.IsProduction() {
		logger.Info("Шлюз работает через HTTP", zap.String("baseURL", cfg.API.BaseURL))
		return NewHTTPTransport(cfg.API.BaseURL, cfg.API.Timeout, logger)
	}
	logger.Info("Шлюз работает в режиме имитации", zap.Duration("latency", cfg.API.SimulatedLatency))
	return NewSimulatedTransport(cfg.API.SimulatedLatency, handler, logger)
}
