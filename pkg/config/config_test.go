package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("APP_MODE", "")
	cfg := New()

	assert.Equal(t, ModeDevelopment, cfg.Mode)
	assert.Equal(t, "helpdesk_", cfg.Store.Namespace)
	assert.Equal(t, 24*time.Hour, cfg.Drafts.MaxAge)
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultTTL)
}

func TestNew_FromEnv(t *testing.T) {
	t.Setenv("APP_MODE", "Production")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("OFFLINE_RETENTION", "0")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg := New()

	assert.True(t, cfg.Mode.IsProduction())
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Offline.Retention)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultTTL, "некорректное значение откатывается к умолчанию")
}
