package utils

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// BuildQueryString сериализует параметры в строку запроса (без "?").
// Срезы превращаются в повторяющиеся ключи, nil и пустые строки пропускаются.
// Ключи упорядочены, чтобы одинаковые параметры давали одинаковую строку.
func BuildQueryString(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		switch v := params[k].(type) {
		case nil:
		case []string:
			for _, item := range v {
				values.Add(k, item)
			}
		case []int:
			for _, item := range v {
				values.Add(k, fmt.Sprint(item))
			}
		case []any:
			for _, item := range v {
				values.Add(k, fmt.Sprint(item))
			}
		case string:
			if v != "" {
				values.Add(k, v)
			}
		case time.Time:
			values.Add(k, v.Format(time.RFC3339))
		default:
			values.Add(k, fmt.Sprint(v))
		}
	}
	return values.Encode()
}

// ContainsFold - регистронезависимый поиск подстроки (с учётом Unicode,
// "ё" и "Ё" совпадают).
func ContainsFold(s, substr string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}
