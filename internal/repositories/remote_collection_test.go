package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"helpdesk-core/internal/entities"
	"helpdesk-core/internal/gateway"
	apperrors "helpdesk-core/pkg/errors"
)

func TestParseOfflineKey(t *testing.T) {
	entity, op, id, ok := ParseOfflineKey(OfflineCreateKey(EntityTicketMessages))
	require.True(t, ok)
	assert.Equal(t, EntityTicketMessages, entity)
	assert.Equal(t, OfflineOpCreate, op)
	assert.Empty(t, id)

	entity, op, id, ok = ParseOfflineKey(OfflineUpdateKey(EntityDepartments, "it-support"))
	require.True(t, ok)
	assert.Equal(t, EntityDepartments, entity)
	assert.Equal(t, OfflineOpUpdate, op)
	assert.Equal(t, "it-support", id)

	_, _, _, ok = ParseOfflineKey("tickets")
	assert.False(t, ok)
	_, _, _, ok = ParseOfflineKey("tickets_archive_1")
	assert.False(t, ok)
}

func TestRemoteCollection(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	online := true
	var lastCall *gateway.Call
	transport := gateway.TransportFunc(func(_ context.Context, call *gateway.Call) (*gateway.Reply, error) {
		lastCall = call
		if !online {
			return nil, errors.New("network down")
		}
		switch {
		case call.Method == http.MethodGet && call.Path == "/clients":
			return &gateway.Reply{StatusCode: 200, Body: []byte(`[{"id":"1","name":"Acme"}]`)}, nil
		case call.Method == http.MethodGet && call.Path == "/clients/1":
			return &gateway.Reply{StatusCode: 200, Body: []byte(`{"id":"1","name":"Acme"}`)}, nil
		case call.Method == http.MethodPost:
			var c entities.Client
			_ = json.Unmarshal(call.Body, &c)
			c.ID = "2"
			body, _ := json.Marshal(c)
			return &gateway.Reply{StatusCode: 201, Body: body}, nil
		case call.Method == http.MethodPut:
			return &gateway.Reply{StatusCode: 200, Body: call.Body}, nil
		}
		return &gateway.Reply{StatusCode: 404, Body: []byte(`{"code":"CLIENT_NOT_FOUND","message":"Клиент не найден"}`)}, nil
	})
	gw := gateway.New(transport, store, gateway.Options{}, zap.NewNop())
	repo := NewRemoteCollection[entities.Client](gw, EntityClients, time.Minute, zap.NewNop())

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = repo.Find(ctx, "77")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	created, err := repo.Insert(ctx, func(nextID string, existing []entities.Client) (entities.Client, error) {
		assert.Empty(t, nextID, "id назначает сервер")
		assert.Len(t, existing, 1)
		return entities.Client{Name: "Globex"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "2", created.ID)

	updated, err := repo.Update(ctx, "1", func(c entities.Client) (entities.Client, error) {
		c.Company = "Acme Inc"
		return c, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", updated.Company)
	assert.Equal(t, "/clients/1", lastCall.Path)

	_, err = repo.Delete(ctx, "77")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	online = false
	queued, err := repo.Insert(ctx, func(string, []entities.Client) (entities.Client, error) {
		return entities.Client{Name: "Offline Ltd"}, nil
	})
	require.NoError(t, err, "при недоступном сервере запись ставится в очередь")
	assert.Equal(t, "Offline Ltd", queued.Name)

	pending, err := store.ListOfflineData(ctx, true)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, strings.HasPrefix(pending[0].Key, "clients_create_"))
}

func TestRemoteCollection_ServerRejectionIsNotQueued(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	transport := gateway.TransportFunc(func(_ context.Context, call *gateway.Call) (*gateway.Reply, error) {
		switch {
		case call.Method == http.MethodGet && call.Path == "/clients":
			return &gateway.Reply{StatusCode: 200, Body: []byte(`[{"id":"1","name":"Acme"}]`)}, nil
		case call.Method == http.MethodGet && call.Path == "/clients/1":
			return &gateway.Reply{StatusCode: 200, Body: []byte(`{"id":"1","name":"Acme"}`)}, nil
		case call.Method == http.MethodPost:
			return &gateway.Reply{StatusCode: 422, Body: []byte(`{"code":"CLIENT_VALIDATION_ERROR","message":"email: обязательное поле"}`)}, nil
		}
		return &gateway.Reply{StatusCode: 404, Body: []byte(`{"code":"CLIENT_NOT_FOUND","message":"Клиент не найден"}`)}, nil
	})
	gw := gateway.New(transport, store, gateway.Options{}, zap.NewNop())
	repo := NewRemoteCollection[entities.Client](gw, EntityClients, time.Minute, zap.NewNop())

	_, err := repo.Update(ctx, "1", func(c entities.Client) (entities.Client, error) {
		c.Company = "Acme Inc"
		return c, nil
	})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "PUT с ответом 404: %v", err)

	_, err = repo.Insert(ctx, func(string, []entities.Client) (entities.Client, error) {
		return entities.Client{Name: "Globex"}, nil
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), "POST с ответом 422: %v", err)

	pending, err := store.ListOfflineData(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, pending, "отказ сервера не ставится в офлайн-очередь")
}

func TestRemoteCollection_OfflineUpdateIsQueuedAndSynced(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	online := true
	var synced []string
	transport := gateway.TransportFunc(func(_ context.Context, call *gateway.Call) (*gateway.Reply, error) {
		if !online {
			return nil, errors.New("network down")
		}
		switch {
		case strings.HasPrefix(call.Path, gateway.SyncEndpointPrefix):
			synced = append(synced, strings.TrimPrefix(call.Path, gateway.SyncEndpointPrefix))
			return &gateway.Reply{StatusCode: 200, Body: call.Body}, nil
		case call.Method == http.MethodGet && call.Path == "/clients":
			return &gateway.Reply{StatusCode: 200, Body: []byte(`[{"id":"1","name":"Acme"}]`)}, nil
		}
		return &gateway.Reply{StatusCode: 404, Body: []byte(`{"code":"CLIENT_NOT_FOUND","message":"Клиент не найден"}`)}, nil
	})
	gw := gateway.New(transport, store, gateway.Options{}, zap.NewNop())
	repo := NewRemoteCollection[entities.Client](gw, EntityClients, time.Minute, zap.NewNop())

	_, err := repo.All(ctx)
	require.NoError(t, err)

	online = false
	found, err := repo.Find(ctx, "1")
	require.NoError(t, err, "без связи запись берётся из списка")
	assert.Equal(t, "Acme", found.Name)

	_, err = repo.Find(ctx, "9")
	assert.True(t, errors.Is(err, apperrors.ErrOffline))

	updated, err := repo.Update(ctx, "1", func(c entities.Client) (entities.Client, error) {
		c.Company = "Acme Inc"
		return c, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", updated.Company)
	assert.Equal(t, "1", updated.ID)

	pending, err := store.ListOfflineData(ctx, true)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	entity, op, id, ok := ParseOfflineKey(pending[0].Key)
	require.True(t, ok)
	assert.Equal(t, EntityClients, entity)
	assert.Equal(t, OfflineOpUpdate, op)
	assert.Equal(t, "1", id)

	online = true
	report := gw.SyncOfflineData(ctx)
	require.True(t, report.Success)
	assert.Equal(t, 1, report.Data.Synced)
	assert.Equal(t, []string{pending[0].Key}, synced)

	pending, err = store.ListOfflineData(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRemoteCollection_OfflineInsertWithoutSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	transport := gateway.TransportFunc(func(context.Context, *gateway.Call) (*gateway.Reply, error) {
		return nil, errors.New("network down")
	})
	gw := gateway.New(transport, store, gateway.Options{}, zap.NewNop())
	repo := NewRemoteCollection[entities.Client](gw, EntityClients, time.Minute, zap.NewNop())

	queued, err := repo.Insert(ctx, func(_ string, existing []entities.Client) (entities.Client, error) {
		assert.Empty(t, existing)
		return entities.Client{Name: "Globex"}, nil
	})
	require.NoError(t, err)
	assert.Empty(t, queued.ID)

	pending, err := store.ListOfflineData(ctx, true)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, strings.HasPrefix(pending[0].Key, "clients_create_"))
}
