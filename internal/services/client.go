package services

import (
	"context"
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
	"helpdesk-core/pkg/validation"
)

const defaultClientRating = 5.0

var clientSorters = query.Sorters[entities.Client]{
	"id":            query.ByNumericID(func(c entities.Client) string { return c.ID }),
	"name":          query.ByString(func(c entities.Client) string { return c.Name }),
	"email":         query.ByString(func(c entities.Client) string { return c.Email }),
	"company":       query.ByString(func(c entities.Client) string { return c.Company }),
	"status":        query.ByString(func(c entities.Client) string { return c.Status }),
	"ticketsCount":  query.ByInt(func(c entities.Client) int { return c.TicketsCount }),
	"rating":        query.ByFloat(func(c entities.Client) float64 { return c.Rating }),
	"lastContactAt": query.ByOptionalTime(func(c entities.Client) *time.Time { return c.LastContactAt }),
	"createdAt":     query.ByTime(func(c entities.Client) time.Time { return c.CreatedAt }),
}

type ClientService struct {
	BaseService
	clients repositories.Repository[entities.Client]
	tickets repositories.Repository[entities.Ticket]
}

func NewClientService(repos *repositories.Repositories, store *storage.Store, v *validation.Validator, logger *zap.Logger) *ClientService {
	return &ClientService{
		BaseService: newBaseService("CLIENT", "Клиент не найден", store, v, logger.Named("clients")),
		clients:     repos.Clients,
		tickets:     repos.Tickets,
	}
}

func clientPredicates(f dto.ClientFilter) []query.Predicate[entities.Client] {
	return []query.Predicate[entities.Client]{
		query.Search(f.Search, func(c entities.Client) []string {
			return []string{c.Name, c.Email, c.Company, c.Phone}
		}),
		query.InSet(f.Status, func(c entities.Client) string { return c.Status }),
		query.Intersects(f.Tags, func(c entities.Client) []string { return c.Tags }),
		query.InRange(f.DateRange, func(c entities.Client) time.Time { return c.CreatedAt }),
	}
}

func (s *ClientService) List(ctx context.Context, filter dto.ClientFilter, page types.PageRequest) types.Response[types.Paginated[entities.Client]] {
	return run(&s.BaseService, "Не удалось загрузить клиентов", s.code(apperrors.SuffixLoad), func() (types.Paginated[entities.Client], error) {
		items, err := s.clients.All(ctx)
		if err != nil {
			return types.Paginated[entities.Client]{}, err
		}
		return query.Run(items, query.Spec[entities.Client]{
			Predicates: clientPredicates(filter),
			Sort:       filter.Sort,
			Sorters:    clientSorters,
			Page:       page,
		}), nil
	})
}

func (s *ClientService) Get(ctx context.Context, id string) types.Response[entities.Client] {
	return run(&s.BaseService, "Не удалось загрузить клиента", s.code(apperrors.SuffixLoad), func() (entities.Client, error) {
		return s.clients.Find(ctx, id)
	})
}

func emailTaken(clients []entities.Client, email, exceptID string) bool {
	for _, c := range clients {
		if c.ID != exceptID && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

func (s *ClientService) newClient(in dto.CreateClientDTO, id string, now time.Time) entities.Client {
	status := in.Status
	if status == "" {
		status = entities.ClientStatusActive
	}
	return entities.Client{
		ID:           id,
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		Phone:        in.Phone,
		Company:      in.Company,
		Status:       status,
		Tags:         cloneStrings(in.Tags),
		TicketsCount: 0,
		Rating:       defaultClientRating,
		Timestamps:   entities.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
}

// Create: ticketsCount = 0, rating = 5.0. Email клиента уникален.
func (s *ClientService) Create(ctx context.Context, in dto.CreateClientDTO) types.Response[entities.Client] {
	return run(&s.BaseService, "Не удалось создать клиента", s.code(apperrors.SuffixCreate), func() (entities.Client, error) {
		if err := s.validate(in); err != nil {
			return entities.Client{}, err
		}
		now := s.now()
		client, err := s.clients.Insert(ctx, func(nextID string, existing []entities.Client) (entities.Client, error) {
			if emailTaken(existing, in.Email, "") {
				return entities.Client{}, apperrors.NewInvalidInputError("клиент с email %s уже существует", in.Email)
			}
			return s.newClient(in, nextID, now), nil
		})
		if err != nil {
			return client, err
		}
		s.logger.Info("Клиент создан", zap.String("id", client.ID))
		return client, nil
	})
}

func (s *ClientService) Update(ctx context.Context, id string, patch dto.UpdateClientDTO) types.Response[entities.Client] {
	return run(&s.BaseService, "Не удалось обновить клиента", s.code(apperrors.SuffixUpdate), func() (entities.Client, error) {
		if err := s.validate(patch); err != nil {
			return entities.Client{}, err
		}
		if patch.Email.Valid {
			all, err := s.clients.All(ctx)
			if err != nil {
				return entities.Client{}, err
			}
			if emailTaken(all, patch.Email.String, id) {
				return entities.Client{}, apperrors.NewInvalidInputError("клиент с email %s уже существует", patch.Email.String)
			}
		}
		return s.clients.Update(ctx, id, func(c entities.Client) (entities.Client, error) {
			if patch.Name.Valid {
				c.Name = patch.Name.String
			}
			if patch.Email.Valid {
				c.Email = patch.Email.String
			}
			if patch.Phone.Valid {
				c.Phone = patch.Phone.String
			}
			if patch.Company.Valid {
				c.Company = patch.Company.String
			}
			if patch.Status.Valid {
				c.Status = patch.Status.String
			}
			if patch.Rating.Valid {
				c.Rating = patch.Rating.Float64
			}
			if patch.Tags != nil {
				c.Tags = cloneStrings(*patch.Tags)
			}
			c.UpdatedAt = s.now()
			return c, nil
		})
	})
}

func (s *ClientService) Delete(ctx context.Context, id string) types.Response[entities.Client] {
	return run(&s.BaseService, "Не удалось удалить клиента", s.code(apperrors.SuffixDelete), func() (entities.Client, error) {
		return s.clients.Delete(ctx, id)
	})
}

// Tickets - заявки клиента, новые сверху.
func (s *ClientService) Tickets(ctx context.Context, clientID string, page types.PageRequest) types.Response[types.Paginated[entities.Ticket]] {
	return run(&s.BaseService, "Не удалось загрузить заявки клиента", s.code(apperrors.SuffixLoad), func() (types.Paginated[entities.Ticket], error) {
		if _, err := s.clients.Find(ctx, clientID); err != nil {
			return types.Paginated[entities.Ticket]{}, err
		}
		items, err := s.tickets.All(ctx)
		if err != nil {
			return types.Paginated[entities.Ticket]{}, err
		}
		return query.Run(items, query.Spec[entities.Ticket]{
			Predicates: []query.Predicate[entities.Ticket]{
				query.Equals(clientID, func(t entities.Ticket) string { return t.ClientID }),
			},
			Sort:    types.Sort{By: "createdAt", Order: types.SortDesc},
			Sorters: ticketSorters,
			Page:    page,
		}), nil
	})
}

func (s *ClientService) Stats(ctx context.Context) types.Response[dto.ClientStatsDTO] {
	return run(&s.BaseService, "Не удалось получить статистику клиентов", s.code(apperrors.SuffixStats), func() (dto.ClientStatsDTO, error) {
		items, err := s.clients.All(ctx)
		if err != nil {
			return dto.ClientStatsDTO{}, err
		}
		total := 0
		for _, c := range items {
			total += c.TicketsCount
		}
		return dto.ClientStatsDTO{
			Total:         len(items),
			ByStatus:      countBy(items, func(c entities.Client) string { return c.Status }),
			TotalTickets:  total,
			AverageRating: average(items, func(c entities.Client) float64 { return c.Rating }),
		}, nil
	})
}
