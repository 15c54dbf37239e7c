package gateway

import (
	"context"
	"time"

	"helpdesk-core/pkg/types"
)

const HealthEndpoint = "/health"

type HealthStatus struct {
	Reachable      bool       `json:"reachable"`
	LatencyMs      int64      `json:"latencyMs"`
	Mode           string     `json:"mode"`
	Message        string     `json:"message,omitempty"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`
	CheckedAt      time.Time  `json:"checkedAt"`
}

// HealthCheck проверяет доступность сервера. Недоступность сервера - это
// не ошибка проверки, а Reachable == false.
func (g *Gateway) HealthCheck(ctx context.Context) types.Response[HealthStatus] {
	started := time.Now()
	resp := g.Get(ctx, HealthEndpoint, nil)

	status := HealthStatus{
		Reachable: resp.Success,
		LatencyMs: time.Since(started).Milliseconds(),
		Mode:      g.Mode(),
		CheckedAt: g.store.Now(),
	}
	if !resp.Success && resp.Error != nil {
		status.Message = resp.Error.Message
	}
	if exp, ok := g.store.TokenExpiry(ctx); ok {
		status.TokenExpiresAt = &exp
	}
	return types.Success(status)
}
