package storage

import (
	"encoding/json"
)

const (
	KeyAuthToken   = "auth_token"
	KeyCurrentUser = "current_user"

	PrefixFilters    = "filters_"
	PrefixColumns    = "columns_"
	PrefixDraft      = "draft_"
	PrefixCache      = "cache_"
	PrefixOffline    = "offline_"
	PrefixWorkingSet = "mock_"
	PrefixSequence   = "seq_"
)

// CacheKey - ключ записи кэша: cache_<endpoint>_<params-json>.
func CacheKey(endpoint string, params map[string]any) string {
	encoded := []byte("{}")
	if len(params) > 0 {
		if b, err := json.Marshal(params); err == nil {
			encoded = b
		}
	}
	return PrefixCache + endpoint + "_" + string(encoded)
}

// CacheEndpointPrefix - общий префикс всех записей кэша одного адреса.
func CacheEndpointPrefix(endpoint string) string {
	return PrefixCache + endpoint + "_"
}

func OfflineKey(key string) string { return PrefixOffline + key }

func WorkingSetKey(entity string) string { return PrefixWorkingSet + entity }

func SequenceKey(entity string) string { return PrefixSequence + entity }

func FiltersKey(userID string) string { return PrefixFilters + userID }

func ColumnsKey(table string) string { return PrefixColumns + table }

func DraftKey(form string) string { return PrefixDraft + form }
