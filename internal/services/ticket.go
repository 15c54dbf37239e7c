package services

import (
	"context"
	"errors"
	"slices"
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

var ticketSorters = query.Sorters[entities.Ticket]{
	"id":        query.ByNumericID(func(t entities.Ticket) string { return t.ID }),
	"subject":   query.ByString(func(t entities.Ticket) string { return t.Subject }),
	"status":    query.ByString(func(t entities.Ticket) string { return t.Status }),
	"priority":  query.ByRank(entities.PriorityRank, func(t entities.Ticket) string { return t.Priority }),
	"slaStatus": query.ByString(func(t entities.Ticket) string { return t.SLAStatus }),
	"createdAt": query.ByTime(func(t entities.Ticket) time.Time { return t.CreatedAt }),
	"updatedAt": query.ByTime(func(t entities.Ticket) time.Time { return t.UpdatedAt }),
	"dueAt":     query.ByOptionalTime(func(t entities.Ticket) *time.Time { return t.DueAt }),
}

type TicketService struct {
	BaseService
	tickets  repositories.Repository[entities.Ticket]
	messages repositories.Repository[entities.TicketMessage]
	clients  repositories.Repository[entities.Client]
}

func NewTicketService(repos *repositories.Repositories, store *storage.Store, v *validation.Validator, logger *zap.Logger) *TicketService {
	return &TicketService{
		BaseService: newBaseService("TICKET", "Заявка не найдена", store, v, logger.Named("tickets")),
		tickets:     repos.Tickets,
		messages:    repos.Messages,
		clients:     repos.Clients,
	}
}

func (s *TicketService) predicates(ctx context.Context, f dto.TicketFilter) []query.Predicate[entities.Ticket] {
	return []query.Predicate[entities.Ticket]{
		query.Search(f.Search, func(t entities.Ticket) []string {
			return []string{t.ID, t.Subject, t.Description}
		}),
		query.InSet(f.Status, func(t entities.Ticket) string { return t.Status }),
		query.InSet(f.Priority, func(t entities.Ticket) string { return t.Priority }),
		query.InSet(f.Source, func(t entities.Ticket) string { return t.Source }),
		query.InSet(f.SLAStatus, func(t entities.Ticket) string { return t.SLAStatus }),
		query.Intersects(f.Tags, func(t entities.Ticket) []string { return t.Tags }),
		query.Intersects(f.Departments, func(t entities.Ticket) []string { return t.Departments }),
		query.AssignedTo(f.AssignedTo, s.currentUserID(ctx), func(t entities.Ticket) []string { return t.AssignedTo }),
		query.Equals(f.ClientID, func(t entities.Ticket) string { return t.ClientID }),
		query.InRange(f.DateRange, func(t entities.Ticket) time.Time { return t.CreatedAt }),
	}
}

// List - заявки по фильтру с сортировкой и пагинацией.
func (s *TicketService) List(ctx context.Context, filter dto.TicketFilter, page types.PageRequest) types.Response[types.Paginated[entities.Ticket]] {
	return run(&s.BaseService, "Не удалось загрузить заявки", s.code(apperrors.SuffixLoad), func() (types.Paginated[entities.Ticket], error) {
		items, err := s.tickets.All(ctx)
		if err != nil {
			return types.Paginated[entities.Ticket]{}, err
		}
		return query.Run(items, query.Spec[entities.Ticket]{
			Predicates: s.predicates(ctx, filter),
			Sort:       filter.Sort,
			Sorters:    ticketSorters,
			Page:       page,
		}), nil
	})
}

func (s *TicketService) Get(ctx context.Context, id string) types.Response[entities.Ticket] {
	return run(&s.BaseService, "Не удалось загрузить заявку", s.code(apperrors.SuffixLoad), func() (entities.Ticket, error) {
		return s.tickets.Find(ctx, id)
	})
}

// Create создаёт заявку со статусом new и нулевым счётчиком сообщений.
func (s *TicketService) Create(ctx context.Context, in dto.CreateTicketDTO) types.Response[entities.Ticket] {
	return run(&s.BaseService, "Не удалось создать заявку", s.code(apperrors.SuffixCreate), func() (entities.Ticket, error) {
		if err := s.validate(in); err != nil {
			return entities.Ticket{}, err
		}
		now := s.now()
		ticket, err := s.tickets.Insert(ctx, func(nextID string, _ []entities.Ticket) (entities.Ticket, error) {
			t := entities.Ticket{
				ID:            nextID,
				Subject:       in.Subject,
				Description:   in.Description,
				Status:        entities.TicketStatusNew,
				Priority:      in.Priority,
				Source:        in.Source,
				SLAStatus:     entities.SLAOnTrack,
				ClientID:      in.ClientID,
				AssignedTo:    cloneStrings(in.AssignedTo),
				Departments:   cloneStrings(in.Departments),
				Tags:          cloneStrings(in.Tags),
				DueAt:         in.DueAt,
				MessagesCount: 0,
				Timestamps:    entities.Timestamps{CreatedAt: now, UpdatedAt: now},
			}
			if t.Priority == "" {
				t.Priority = entities.PriorityMedium
			}
			if t.Source == "" {
				t.Source = entities.SourcePortal
			}
			return t, nil
		})
		if err != nil {
			return entities.Ticket{}, err
		}
		s.touchClient(ctx, ticket.ClientID, 1)
		s.logger.Info("Заявка создана", zap.String("id", ticket.ID))
		return ticket, nil
	})
}

// touchClient обновляет счётчик заявок клиента. Сбой не отменяет операцию.
func (s *TicketService) touchClient(ctx context.Context, clientID string, delta int) {
	if clientID == "" {
		return
	}
	now := s.now()
	_, err := s.clients.Update(ctx, clientID, func(c entities.Client) (entities.Client, error) {
		c.TicketsCount = max(0, c.TicketsCount+delta)
		if delta > 0 {
			c.LastContactAt = &now
		}
		return c, nil
	})
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("Не удалось обновить счётчик заявок клиента", zap.String("clientId", clientID), zap.Error(err))
	}
}

func applyTicketPatch(t entities.Ticket, p dto.UpdateTicketDTO, now time.Time) entities.Ticket {
	if p.Subject.Valid {
		t.Subject = p.Subject.String
	}
	if p.Description.Valid {
		t.Description = p.Description.String
	}
	if p.Status.Valid {
		t.Status = p.Status.String
	}
	if p.Priority.Valid {
		t.Priority = p.Priority.String
	}
	if p.Source.Valid {
		t.Source = p.Source.String
	}
	if p.SLAStatus.Valid {
		t.SLAStatus = p.SLAStatus.String
	}
	if p.ClientID.Valid {
		t.ClientID = p.ClientID.String
	}
	if p.AssignedTo != nil {
		t.AssignedTo = cloneStrings(*p.AssignedTo)
	}
	if p.Departments != nil {
		t.Departments = cloneStrings(*p.Departments)
	}
	if p.Tags != nil {
		t.Tags = cloneStrings(*p.Tags)
	}
	if p.DueAt.Valid {
		due := p.DueAt.Time
		t.DueAt = &due
	}
	t.UpdatedAt = now
	return t
}

func (s *TicketService) Update(ctx context.Context, id string, patch dto.UpdateTicketDTO) types.Response[entities.Ticket] {
	return run(&s.BaseService, "Не удалось обновить заявку", s.code(apperrors.SuffixUpdate), func() (entities.Ticket, error) {
		if err := s.validate(patch); err != nil {
			return entities.Ticket{}, err
		}
		return s.patch(ctx, id, patch)
	})
}

// patch применяет изменения; при смене клиента счётчики заявок обоих
// клиентов пересчитываются.
func (s *TicketService) patch(ctx context.Context, id string, p dto.UpdateTicketDTO) (entities.Ticket, error) {
	var previousClient string
	updated, err := s.tickets.Update(ctx, id, func(t entities.Ticket) (entities.Ticket, error) {
		previousClient = t.ClientID
		return applyTicketPatch(t, p, s.now()), nil
	})
	if err != nil {
		return updated, err
	}
	if updated.ClientID != previousClient {
		s.touchClient(ctx, previousClient, -1)
		s.touchClient(ctx, updated.ClientID, 1)
	}
	return updated, nil
}

// Delete удаляет заявку вместе с её перепиской.
func (s *TicketService) Delete(ctx context.Context, id string) types.Response[entities.Ticket] {
	return run(&s.BaseService, "Не удалось удалить заявку", s.code(apperrors.SuffixDelete), func() (entities.Ticket, error) {
		removed, err := s.tickets.Delete(ctx, id)
		if err != nil {
			return removed, err
		}
		s.dropMessages(ctx, id)
		s.touchClient(ctx, removed.ClientID, -1)
		return removed, nil
	})
}

func (s *TicketService) dropMessages(ctx context.Context, ticketID string) {
	all, err := s.messages.All(ctx)
	if err != nil {
		s.logger.Warn("Не удалось загрузить переписку удалённой заявки", zap.String("ticketId", ticketID), zap.Error(err))
		return
	}
	for _, m := range all {
		if m.TicketID != ticketID {
			continue
		}
		if _, err := s.messages.Delete(ctx, m.ID); err != nil {
			s.logger.Warn("Не удалось удалить сообщение", zap.String("id", m.ID), zap.Error(err))
		}
	}
}

// Messages - переписка по заявке от старых сообщений к новым.
func (s *TicketService) Messages(ctx context.Context, ticketID string) types.Response[[]entities.TicketMessage] {
	return run(&s.BaseService, "Не удалось загрузить переписку", apperrors.CodeTicketMessages, func() ([]entities.TicketMessage, error) {
		if _, err := s.tickets.Find(ctx, ticketID); err != nil {
			return nil, err
		}
		all, err := s.messages.All(ctx)
		if err != nil {
			return nil, err
		}
		out := query.Filter(all, query.Equals(ticketID, func(m entities.TicketMessage) string { return m.TicketID }))
		return query.Sort(out, types.Sort{By: "createdAt"}, query.Sorters[entities.TicketMessage]{
			"createdAt": query.ByTime(func(m entities.TicketMessage) time.Time { return m.CreatedAt }),
		}), nil
	})
}

// AddMessage добавляет сообщение и обновляет messagesCount и updatedAt заявки.
func (s *TicketService) AddMessage(ctx context.Context, ticketID string, in dto.CreateMessageDTO) types.Response[entities.TicketMessage] {
	return run(&s.BaseService, "Не удалось добавить сообщение", apperrors.CodeTicketMessages, func() (entities.TicketMessage, error) {
		if err := s.validate(in); err != nil {
			return entities.TicketMessage{}, err
		}
		if _, err := s.tickets.Find(ctx, ticketID); err != nil {
			return entities.TicketMessage{}, err
		}
		now := s.now()
		msg, err := s.messages.Insert(ctx, func(nextID string, _ []entities.TicketMessage) (entities.TicketMessage, error) {
			return entities.TicketMessage{
				ID:         nextID,
				TicketID:   ticketID,
				AuthorID:   in.AuthorID,
				AuthorType: in.AuthorType,
				Body:       in.Body,
				Internal:   in.Internal,
				CreatedAt:  now,
			}, nil
		})
		if err != nil {
			return msg, err
		}
		_, err = s.tickets.Update(ctx, ticketID, func(t entities.Ticket) (entities.Ticket, error) {
			t.MessagesCount++
			t.UpdatedAt = now
			return t, nil
		})
		return msg, err
	})
}

func (s *TicketService) Stats(ctx context.Context) types.Response[dto.TicketStatsDTO] {
	return run(&s.BaseService, "Не удалось получить статистику заявок", s.code(apperrors.SuffixStats), func() (dto.TicketStatsDTO, error) {
		items, err := s.tickets.All(ctx)
		if err != nil {
			return dto.TicketStatsDTO{}, err
		}
		return dto.TicketStatsDTO{
			Total:       len(items),
			ByStatus:    countBy(items, func(t entities.Ticket) string { return t.Status }),
			ByPriority:  countBy(items, func(t entities.Ticket) string { return t.Priority }),
			BySLAStatus: countBy(items, func(t entities.Ticket) string { return t.SLAStatus }),
			BySource:    countBy(items, func(t entities.Ticket) string { return t.Source }),
			Unassigned:  len(query.Filter(items, func(t entities.Ticket) bool { return len(t.AssignedTo) == 0 })),
		}, nil
	})
}

// BulkUpdate применяет один патч к нескольким заявкам. Ненайденные id
// перечисляются в результате и не прерывают операцию.
func (s *TicketService) BulkUpdate(ctx context.Context, in dto.BulkUpdateTicketsDTO) types.Response[dto.BulkResultDTO] {
	return run(&s.BaseService, "Не удалось выполнить массовое обновление", apperrors.CodeTicketBulk, func() (dto.BulkResultDTO, error) {
		if err := s.validate(in); err != nil {
			return dto.BulkResultDTO{}, err
		}
		return s.bulk(in.IDs, func(id string) error {
			_, err := s.patch(ctx, id, in.Patch)
			return err
		})
	})
}

func (s *TicketService) BulkDelete(ctx context.Context, ids []string) types.Response[dto.BulkResultDTO] {
	return run(&s.BaseService, "Не удалось выполнить массовое удаление", apperrors.CodeTicketBulk, func() (dto.BulkResultDTO, error) {
		if len(ids) == 0 {
			return dto.BulkResultDTO{}, apperrors.NewInvalidInputError("не выбрано ни одной заявки")
		}
		return s.bulk(ids, func(id string) error {
			removed, err := s.tickets.Delete(ctx, id)
			if err == nil {
				s.dropMessages(ctx, id)
				s.touchClient(ctx, removed.ClientID, -1)
			}
			return err
		})
	})
}

func (s *TicketService) bulk(ids []string, apply func(id string) error) (dto.BulkResultDTO, error) {
	result := dto.BulkResultDTO{Processed: []string{}, NotFound: []string{}}
	for _, id := range slices.Compact(slices.Sorted(slices.Values(ids))) {
		err := apply(id)
		switch {
		case err == nil:
			result.Processed = append(result.Processed, id)
		case errors.Is(err, apperrors.ErrNotFound):
			result.NotFound = append(result.NotFound, id)
		default:
			return result, err
		}
	}
	return result, nil
}
