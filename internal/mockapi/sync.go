package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"helpdesk-core/internal/repositories"
	apperrors "helpdesk-core/pkg/errors"
)

// Replay - принятая офлайн-запись клиента.
type Replay struct {
	Key        string    `json:"key"`
	Entity     string    `json:"entity,omitempty"`
	Op         string    `json:"op,omitempty"`
	ID         string    `json:"id,omitempty"`
	Applied    bool      `json:"applied"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// syncHandler принимает POST /sync/:key. Записи с ключами create/update
// известных коллекций применяются, остальные только фиксируются.
type syncHandler struct {
	mu          sync.Mutex
	replays     []Replay
	collections map[string]replayer
	now         func() time.Time
	logger      *zap.Logger
}

func (h *syncHandler) receive(c echo.Context) error {
	key, err := url.PathUnescape(c.Param("key"))
	if err != nil || key == "" {
		return errorResponse(c, http.StatusBadRequest, apperrors.CodeSync, "Неверный ключ записи")
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, apperrors.CodeSync, "Не удалось прочитать тело запроса")
	}
	if !json.Valid(body) {
		return errorResponse(c, http.StatusBadRequest, apperrors.CodeSync, "Тело записи не является JSON")
	}

	replay := Replay{Key: key, ReceivedAt: h.now()}
	if entity, op, id, ok := repositories.ParseOfflineKey(key); ok {
		if col, known := h.collections[entity]; known {
			replay.Entity, replay.Op, replay.ID = entity, op, id
			if err := col.replay(c.Request().Context(), op, id, body); err != nil {
				h.logger.Warn("Не удалось применить офлайн-запись", zap.String("key", key), zap.Error(err))
				return repositoryError(c, entity, err)
			}
			replay.Applied = true
		}
	}

	h.mu.Lock()
	h.replays = append(h.replays, replay)
	h.mu.Unlock()

	h.logger.Info("Офлайн-запись принята", zap.String("key", key), zap.Bool("applied", replay.Applied))
	return c.JSON(http.StatusOK, replay)
}

func (h *syncHandler) list(c echo.Context) error {
	h.mu.Lock()
	out := make([]Replay, len(h.replays))
	copy(out, h.replays)
	h.mu.Unlock()
	return c.JSON(http.StatusOK, out)
}
