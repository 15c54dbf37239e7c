package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderCorrelationID = "X-Correlation-Id"
	maxReplyBytes       = 32 << 20
)

type HTTPTransport struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPTransport(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPTransport {
	return &HTTPTransport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("http"),
	}
}

func (t *HTTPTransport) Name() string { return "http" }

func (t *HTTPTransport) RoundTrip(ctx context.Context, call *Call) (*Reply, error) {
	var body io.Reader
	if len(call.Body) > 0 {
		body = bytes.NewReader(call.Body)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, t.baseURL+call.Path, body)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса %s %s: %w", call.Method, call.Path, err)
	}
	for name, values := range call.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if req.Header.Get(HeaderCorrelationID) == "" {
		req.Header.Set(HeaderCorrelationID, uuid.NewString())
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса %s %s: %w", call.Method, call.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа %s %s: %w", call.Method, call.Path, err)
	}
	t.logger.Debug("HTTP-запрос выполнен",
		zap.String("method", call.Method),
		zap.String("path", call.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("correlationId", req.Header.Get(HeaderCorrelationID)),
	)
	return &Reply{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
