package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"helpdesk-core/internal/dto"
	"helpdesk-core/internal/entities"
	"helpdesk-core/internal/query"
	"helpdesk-core/internal/repositories"
	"helpdesk-core/internal/storage"
	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/types"
	"helpdesk-core/pkg/validation"
)

const defaultEmployeeRating = 5.0

var employeeSorters = query.Sorters[entities.Employee]{
	"id":              query.ByNumericID(func(e entities.Employee) string { return e.ID }),
	"name":            query.ByString(func(e entities.Employee) string { return e.Name }),
	"email":           query.ByString(func(e entities.Employee) string { return e.Email }),
	"role":            query.ByString(func(e entities.Employee) string { return e.Role }),
	"status":          query.ByString(func(e entities.Employee) string { return e.Status }),
	"rating":          query.ByFloat(func(e entities.Employee) float64 { return e.Rating }),
	"ticketsResolved": query.ByInt(func(e entities.Employee) int { return e.TicketsResolved }),
	"lastSeenAt":      query.ByOptionalTime(func(e entities.Employee) *time.Time { return e.LastSeenAt }),
	"createdAt":       query.ByTime(func(e entities.Employee) time.Time { return e.CreatedAt }),
}

// EmployeeService. Хеш пароля хранится в рабочем наборе, но ни один метод
// не возвращает его наружу.
type EmployeeService struct {
	BaseService
	employees    repositories.Repository[entities.Employee]
	passwordCost int
}

func NewEmployeeService(repos *repositories.Repositories, store *storage.Store, v *validation.Validator, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{
		BaseService:  newBaseService("EMPLOYEE", "Сотрудник не найден", store, v, logger.Named("employees")),
		employees:    repos.Employees,
		passwordCost: bcrypt.DefaultCost,
	}
}

func (s *EmployeeService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func public(items []entities.Employee) []entities.Employee {
	out := make([]entities.Employee, len(items))
	for i, e := range items {
		out[i] = e.Public()
	}
	return out
}

func employeePredicates(f dto.EmployeeFilter) []query.Predicate[entities.Employee] {
	return []query.Predicate[entities.Employee]{
		query.Search(f.Search, func(e entities.Employee) []string {
			return []string{e.Name, e.Email, e.Phone}
		}),
		query.InSet(f.Role, func(e entities.Employee) string { return e.Role }),
		query.InSet(f.Status, func(e entities.Employee) string { return e.Status }),
		query.Intersects(f.Departments, func(e entities.Employee) []string { return e.Departments }),
		query.Flag(f.Online, func(e entities.Employee) bool { return e.IsOnline }),
	}
}

func (s *EmployeeService) List(ctx context.Context, filter dto.EmployeeFilter, page types.PageRequest) types.Response[types.Paginated[entities.Employee]] {
	return run(&s.BaseService, "Не удалось загрузить сотрудников", s.code(apperrors.SuffixLoad), func() (types.Paginated[entities.Employee], error) {
		items, err := s.employees.All(ctx)
		if err != nil {
			return types.Paginated[entities.Employee]{}, err
		}
		result := query.Run(items, query.Spec[entities.Employee]{
			Predicates: employeePredicates(filter),
			Sort:       filter.Sort,
			Sorters:    employeeSorters,
			Page:       page,
		})
		result.Items = public(result.Items)
		return result, nil
	})
}

func (s *EmployeeService) Get(ctx context.Context, id string) types.Response[entities.Employee] {
	return run(&s.BaseService, "Не удалось загрузить сотрудника", s.code(apperrors.SuffixLoad), func() (entities.Employee, error) {
		e, err := s.employees.Find(ctx, id)
		return e.Public(), err
	})
}

func employeeEmailTaken(items []entities.Employee, email, exceptID string) bool {
	for _, e := range items {
		if e.ID != exceptID && strings.EqualFold(e.Email, email) {
			return true
		}
	}
	return false
}

// Create: сотрудник не в сети, ticketsResolved = 0, rating = 5.0.
func (s *EmployeeService) Create(ctx context.Context, in dto.CreateEmployeeDTO) types.Response[entities.Employee] {
	return run(&s.BaseService, "Не удалось создать сотрудника", s.code(apperrors.SuffixCreate), func() (entities.Employee, error) {
		if err := s.validate(in); err != nil {
			return entities.Employee{}, err
		}
		hashed, err := s.hash(in.Password)
		if err != nil {
			return entities.Employee{}, err
		}
		now := s.now()
		e, err := s.employees.Insert(ctx, func(nextID string, existing []entities.Employee) (entities.Employee, error) {
			if employeeEmailTaken(existing, in.Email, "") {
				return entities.Employee{}, apperrors.NewInvalidInputError("сотрудник с email %s уже существует", in.Email)
			}
			status := in.Status
			if status == "" {
				status = entities.EmployeeStatusActive
			}
			return entities.Employee{
				ID:              nextID,
				Name:            strings.TrimSpace(in.Name),
				Email:           strings.TrimSpace(in.Email),
				Phone:           in.Phone,
				Role:            in.Role,
				Status:          status,
				Departments:     cloneStrings(in.Departments),
				IsOnline:        false,
				TicketsResolved: 0,
				Rating:          defaultEmployeeRating,
				PasswordHash:    hashed,
				Timestamps:      entities.Timestamps{CreatedAt: now, UpdatedAt: now},
			}, nil
		})
		if err != nil {
			return entities.Employee{}, err
		}
		s.logger.Info("Сотрудник создан", zap.String("id", e.ID))
		return e.Public(), nil
	})
}

func (s *EmployeeService) Update(ctx context.Context, id string, patch dto.UpdateEmployeeDTO) types.Response[entities.Employee] {
	return run(&s.BaseService, "Не удалось обновить сотрудника", s.code(apperrors.SuffixUpdate), func() (entities.Employee, error) {
		if err := s.validate(patch); err != nil {
			return entities.Employee{}, err
		}
		var hashed string
		if patch.Password.Valid {
			h, err := s.hash(patch.Password.String)
			if err != nil {
				return entities.Employee{}, err
			}
			hashed = h
		}
		if patch.Email.Valid {
			all, err := s.employees.All(ctx)
			if err != nil {
				return entities.Employee{}, err
			}
			if employeeEmailTaken(all, patch.Email.String, id) {
				return entities.Employee{}, apperrors.NewInvalidInputError("сотрудник с email %s уже существует", patch.Email.String)
			}
		}
		e, err := s.employees.Update(ctx, id, func(e entities.Employee) (entities.Employee, error) {
			if patch.Name.Valid {
				e.Name = patch.Name.String
			}
			if patch.Email.Valid {
				e.Email = patch.Email.String
			}
			if patch.Phone.Valid {
				e.Phone = patch.Phone.String
			}
			if patch.Role.Valid {
				e.Role = patch.Role.String
			}
			if patch.Status.Valid {
				e.Status = patch.Status.String
			}
			if patch.Departments != nil {
				e.Departments = cloneStrings(*patch.Departments)
			}
			if hashed != "" {
				e.PasswordHash = hashed
			}
			e.UpdatedAt = s.now()
			return e, nil
		})
		return e.Public(), err
	})
}

func (s *EmployeeService) Delete(ctx context.Context, id string) types.Response[entities.Employee] {
	return run(&s.BaseService, "Не удалось удалить сотрудника", s.code(apperrors.SuffixDelete), func() (entities.Employee, error) {
		e, err := s.employees.Delete(ctx, id)
		return e.Public(), err
	})
}

// SetOnlineStatus меняет признак "в сети" и отмечает lastSeenAt.
func (s *EmployeeService) SetOnlineStatus(ctx context.Context, id string, online bool) types.Response[entities.Employee] {
	return run(&s.BaseService, "Не удалось изменить статус сотрудника", s.code(apperrors.SuffixUpdate), func() (entities.Employee, error) {
		now := s.now()
		e, err := s.employees.Update(ctx, id, func(e entities.Employee) (entities.Employee, error) {
			e.IsOnline = online
			e.LastSeenAt = &now
			return e, nil
		})
		return e.Public(), err
	})
}

func (s *EmployeeService) Stats(ctx context.Context) types.Response[dto.EmployeeStatsDTO] {
	return run(&s.BaseService, "Не удалось получить статистику сотрудников", s.code(apperrors.SuffixStats), func() (dto.EmployeeStatsDTO, error) {
		items, err := s.employees.All(ctx)
		if err != nil {
			return dto.EmployeeStatsDTO{}, err
		}
		stats := dto.EmployeeStatsDTO{
			Total:         len(items),
			ByRole:        countBy(items, func(e entities.Employee) string { return e.Role }),
			ByStatus:      countBy(items, func(e entities.Employee) string { return e.Status }),
			AverageRating: average(items, func(e entities.Employee) float64 { return e.Rating }),
		}
		for _, e := range items {
			if e.IsOnline {
				stats.Online++
			}
			stats.TicketsResolved += e.TicketsResolved
		}
		return stats, nil
	})
}
