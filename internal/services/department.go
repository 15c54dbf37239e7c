package services

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"helpdesk-core/internal/dto"
	"helpdesk-core/internal/entities"
	"helpdesk-core/internal/query"
	"helpdesk-core/internal/repositories"
	"helpdesk-core/internal/storage"
	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/types"
	"helpdesk-core/pkg/utils"
	"helpdesk-core/pkg/validation"
)

var departmentSorters = query.Sorters[entities.Department]{
	"id":             query.ByString(func(d entities.Department) string { return d.ID }),
	"name":           query.ByString(func(d entities.Department) string { return d.Name }),
	"status":         query.ByString(func(d entities.Department) string { return d.Status }),
	"employeesCount": query.ByInt(func(d entities.Department) int { return d.EmployeesCount }),
	"ticketsCount":   query.ByInt(func(d entities.Department) int { return d.TicketsCount }),
	"createdAt":      query.ByTime(func(d entities.Department) time.Time { return d.CreatedAt }),
}

type DepartmentService struct {
	BaseService
	departments repositories.Repository[entities.Department]
	employees   repositories.Repository[entities.Employee]
}

func NewDepartmentService(repos *repositories.Repositories, store *storage.Store, v *validation.Validator, logger *zap.Logger) *DepartmentService {
	return &DepartmentService{
		BaseService: newBaseService("DEPARTMENT", "Отдел не найден", store, v, logger.Named("departments")),
		departments: repos.Departments,
		employees:   repos.Employees,
	}
}

func (s *DepartmentService) List(ctx context.Context, filter dto.DepartmentFilter, page types.PageRequest) types.Response[types.Paginated[entities.Department]] {
	return run(&s.BaseService, "Не удалось загрузить отделы", s.code(apperrors.SuffixLoad), func() (types.Paginated[entities.Department], error) {
		items, err := s.departments.All(ctx)
		if err != nil {
			return types.Paginated[entities.Department]{}, err
		}
		return query.Run(items, query.Spec[entities.Department]{
			Predicates: []query.Predicate[entities.Department]{
				query.Search(filter.Search, func(d entities.Department) []string {
					return []string{d.Name, d.Description, d.Email}
				}),
				query.InSet(filter.Status, func(d entities.Department) string { return d.Status }),
			},
			Sort:    filter.Sort,
			Sorters: departmentSorters,
			Page:    page,
		}), nil
	})
}

func (s *DepartmentService) Get(ctx context.Context, id string) types.Response[entities.Department] {
	return run(&s.BaseService, "Не удалось загрузить отдел", s.code(apperrors.SuffixLoad), func() (entities.Department, error) {
		return s.departments.Find(ctx, id)
	})
}

// uniqueSlug: slug названия, при совпадении - slug-2, slug-3 и т.д.
func uniqueSlug(name string, existing []entities.Department) string {
	base := utils.Slugify(name)
	if base == "" {
		base = "department"
	}
	taken := func(id string) bool {
		return slices.ContainsFunc(existing, func(d entities.Department) bool { return d.ID == id })
	}
	slug := base
	for n := 2; taken(slug); n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	return slug
}

func (s *DepartmentService) Create(ctx context.Context, in dto.CreateDepartmentDTO) types.Response[entities.Department] {
	return run(&s.BaseService, "Не удалось создать отдел", s.code(apperrors.SuffixCreate), func() (entities.Department, error) {
		if err := s.validate(in); err != nil {
			return entities.Department{}, err
		}
		now := s.now()
		d, err := s.departments.Insert(ctx, func(_ string, existing []entities.Department) (entities.Department, error) {
			status := in.Status
			if status == "" {
				status = entities.DepartmentStatusActive
			}
			return entities.Department{
				ID:             uniqueSlug(in.Name, existing),
				Name:           strings.TrimSpace(in.Name),
				Description:    in.Description,
				Email:          in.Email,
				ManagerID:      in.ManagerID,
				Status:         status,
				EmployeesCount: 0,
				TicketsCount:   0,
				Timestamps:     entities.Timestamps{CreatedAt: now, UpdatedAt: now},
			}, nil
		})
		if err != nil {
			return d, err
		}
		s.logger.Info("Отдел создан", zap.String("id", d.ID))
		return d, nil
	})
}

func (s *DepartmentService) Update(ctx context.Context, id string, patch dto.UpdateDepartmentDTO) types.Response[entities.Department] {
	return run(&s.BaseService, "Не удалось обновить отдел", s.code(apperrors.SuffixUpdate), func() (entities.Department, error) {
		if err := s.validate(patch); err != nil {
			return entities.Department{}, err
		}
		return s.departments.Update(ctx, id, func(d entities.Department) (entities.Department, error) {
			if patch.Name.Valid {
				d.Name = patch.Name.String
			}
			if patch.Description.Valid {
				d.Description = patch.Description.String
			}
			if patch.Email.Valid {
				d.Email = patch.Email.String
			}
			if patch.ManagerID.Valid {
				d.ManagerID = patch.ManagerID.String
			}
			if patch.Status.Valid {
				d.Status = patch.Status.String
			}
			d.UpdatedAt = s.now()
			return d, nil
		})
	})
}

func (s *DepartmentService) Delete(ctx context.Context, id string) types.Response[entities.Department] {
	return run(&s.BaseService, "Не удалось удалить отдел", s.code(apperrors.SuffixDelete), func() (entities.Department, error) {
		return s.departments.Delete(ctx, id)
	})
}

// Employees - состав отдела.
func (s *DepartmentService) Employees(ctx context.Context, id string, page types.PageRequest) types.Response[types.Paginated[entities.Employee]] {
	return run(&s.BaseService, "Не удалось загрузить состав отдела", s.code(apperrors.SuffixLoad), func() (types.Paginated[entities.Employee], error) {
		if _, err := s.departments.Find(ctx, id); err != nil {
			return types.Paginated[entities.Employee]{}, err
		}
		items, err := s.employees.All(ctx)
		if err != nil {
			return types.Paginated[entities.Employee]{}, err
		}
		result := query.Run(items, query.Spec[entities.Employee]{
			Predicates: []query.Predicate[entities.Employee]{
				func(e entities.Employee) bool { return e.InDepartment(id) },
			},
			Sort:    types.Sort{By: "name"},
			Sorters: employeeSorters,
			Page:    page,
		})
		result.Items = public(result.Items)
		return result, nil
	})
}

func (s *DepartmentService) Stats(ctx context.Context) types.Response[dto.DepartmentStatsDTO] {
	return run(&s.BaseService, "Не удалось получить статистику отделов", s.code(apperrors.SuffixStats), func() (dto.DepartmentStatsDTO, error) {
		items, err := s.departments.All(ctx)
		if err != nil {
			return dto.DepartmentStatsDTO{}, err
		}
		employees, err := s.employees.All(ctx)
		if err != nil {
			return dto.DepartmentStatsDTO{}, err
		}
		stats := dto.DepartmentStatsDTO{
			Total:    len(items),
			ByStatus: countBy(items, func(d entities.Department) string { return d.Status }),
		}
		for _, d := range items {
			stats.TicketsCount += d.TicketsCount
		}
		for _, e := range employees {
			if len(e.Departments) > 0 {
				stats.EmployeesCount++
			}
		}
		return stats, nil
	})
}
