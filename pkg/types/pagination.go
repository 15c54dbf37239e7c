package types

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination - метаданные страницы.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Paginated - страница элементов вместе с метаданными.
type Paginated[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// PageRequest - номер страницы и размер. Нулевые значения заменяются умолчаниями.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Normalize приводит страницу к допустимым значениям.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset - индекс первого элемента страницы.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages = ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Paginate вырезает страницу [(page-1)*limit, page*limit) из уже
// отфильтрованного и отсортированного набора. Исходный срез не меняется.
func Paginate[T any](items []T, req PageRequest) Paginated[T] {
	req = req.Normalize()
	total := len(items)

	start := req.Offset()
	if start > total {
		start = total
	}
	end := start + req.Limit
	if end > total {
		end = total
	}

	page := make([]T, end-start)
	copy(page, items[start:end])

	return Paginated[T]{
		Items: page,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: TotalPages(total, req.Limit),
		},
	}
}
