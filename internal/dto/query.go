package dto

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/types"
)

const dateLayout = "2006-01-02"

// listValues собирает значения параметра: повторяющиеся ключи и списки
// через запятую равноправны.
func listValues(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ParsePage читает page и limit. Некорректные значения заменяются
// значениями по умолчанию.
func ParsePage(q url.Values) types.PageRequest {
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return types.PageRequest{Page: page, Limit: limit}.Normalize()
}

func parseSort(q url.Values) types.Sort {
	by := strings.TrimSpace(q.Get("sortBy"))
	if by == "" {
		return types.Sort{}
	}
	// -field тоже означает сортировку по убыванию
	if strings.HasPrefix(by, "-") {
		return types.Sort{By: by[1:], Order: types.SortDesc}
	}
	return types.Sort{By: by, Order: types.ParseSortOrder(q.Get("sortOrder"))}
}

func parseDateRange(q url.Values) (types.DateRange, error) {
	var r types.DateRange
	if raw := strings.TrimSpace(q.Get("dateFrom")); raw != "" {
		from, _, err := parseTime(raw)
		if err != nil {
			return r, apperrors.NewInvalidInputError("некорректная дата dateFrom: %s", raw)
		}
		r.From = &from
	}
	if raw := strings.TrimSpace(q.Get("dateTo")); raw != "" {
		to, dateOnly, err := parseTime(raw)
		if err != nil {
			return r, apperrors.NewInvalidInputError("некорректная дата dateTo: %s", raw)
		}
		// дата без времени включает весь день
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		r.To = &to
	}
	return r, nil
}

func parseTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(dateLayout, raw)
	return t, true, err
}

func parseBool(q url.Values, key string) (*bool, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("некорректное значение %s: %s", key, raw)
	}
	return &v, nil
}
