package dto

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/types"
	"helpdesk-core/pkg/validation"
)

func TestParseTicketFilter(t *testing.T) {
	q := url.Values{
		"search":     {" принтер "},
		"status":     {"new,open", "pending"},
		"assignedTo": {"3", "current_user"},
		"sortBy":     {"priority"},
		"sortOrder":  {"DESC"},
		"dateFrom":   {"2026-01-01"},
		"dateTo":     {"2026-01-31"},
		"page":       {"2"},
		"limit":      {"500"},
	}

	filter, page, err := ParseTicketFilter(q)
	require.NoError(t, err)
	assert.Equal(t, "принтер", filter.Search)
	assert.Equal(t, []string{"new", "open", "pending"}, filter.Status)
	assert.True(t, filter.AssignedTo.IsCurrentUser(), "current_user становится отдельным значением")
	assert.Empty(t, filter.AssignedTo.IDs())
	assert.Equal(t, types.Sort{By: "priority", Order: types.SortDesc}, filter.Sort)
	assert.Equal(t, types.PageRequest{Page: 2, Limit: types.MaxLimit}, page)

	require.NotNil(t, filter.DateRange.From)
	require.NotNil(t, filter.DateRange.To)
	assert.True(t, filter.DateRange.Contains(time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)), "dateTo включает весь день")
	assert.False(t, filter.DateRange.Contains(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseTicketFilter_Defaults(t *testing.T) {
	filter, page, err := ParseTicketFilter(url.Values{"sortBy": {"-createdAt"}})
	require.NoError(t, err)
	assert.True(t, filter.AssignedTo.IsZero())
	assert.Nil(t, filter.Status)
	assert.Equal(t, types.Sort{By: "createdAt", Order: types.SortDesc}, filter.Sort)
	assert.Equal(t, types.PageRequest{Page: 1, Limit: types.DefaultLimit}, page)
}

func TestParseFilter_InvalidInput(t *testing.T) {
	_, _, err := ParseTicketFilter(url.Values{"dateFrom": {"вчера"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, _, err = ParseEmployeeFilter(url.Values{"online": {"maybe"}})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	filter, _, err := ParseEmployeeFilter(url.Values{"online": {"true"}, "role": {"agent"}})
	require.NoError(t, err)
	require.NotNil(t, filter.Online)
	assert.True(t, *filter.Online)
	assert.Equal(t, []string{"agent"}, filter.Role)
}

func TestParseClientAndDepartmentFilters(t *testing.T) {
	client, _, err := ParseClientFilter(url.Values{"tags": {"b2b"}, "dateFrom": {"2026-02-01T10:00:00Z"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b2b"}, client.Tags)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), *client.DateRange.From)

	dep, page, err := ParseDepartmentFilter(url.Values{"status": {"active"}, "page": {"abc"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"active"}, dep.Status)
	assert.Equal(t, 1, page.Page)
}

func TestDTOValidation(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Struct(CreateClientDTO{Name: "Acme", Email: "info@acme.io"}))
	assert.Error(t, v.Struct(CreateClientDTO{Name: "Acme", Email: "acme"}))

	assert.NoError(t, v.Struct(UpdateTicketDTO{}), "пустой патч допустим")
	err := v.Struct(UpdateTicketDTO{Status: null.StringFrom("archived")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Status")

	err = v.Struct(BulkUpdateTicketsDTO{})
	assert.Error(t, err)

	assert.Error(t, v.Struct(CreateEmployeeDTO{Name: "Ира", Email: "ira@hd.io", Role: "agent", Password: "short"}))
}
