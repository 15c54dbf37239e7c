package seeders

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"helpdesk-core/internal/entities"
	"helpdesk-core/internal/repositories"
	"helpdesk-core/internal/storage"
)

// DemoPassword - пароль всех демо-сотрудников.
const DemoPassword = "helpdesk-demo"

// Options управляет заполнением.
type Options struct {
	// Force перезаписывает непустые наборы.
	Force bool
	// PasswordCost - стоимость bcrypt; 0 - bcrypt.DefaultCost.
	PasswordCost int
}

func seedSet[T entities.Record[T]](ctx context.Context, repo repositories.Repository[T], entity string, items []T, force bool, logger *zap.Logger) (int, error) {
	ws, ok := repositories.Local(repo)
	if !ok {
		return 0, fmt.Errorf("%s: заполнение возможно только для локального набора", entity)
	}
	if !force && !ws.Empty(ctx) {
		logger.Info("  - Набор уже заполнен, пропускаем", zap.String("entity", entity))
		return 0, nil
	}
	if err := ws.Replace(ctx, items); err != nil {
		return 0, fmt.Errorf("%s: %w", entity, err)
	}
	logger.Info("  - Набор заполнен", zap.String("entity", entity), zap.Int("count", len(items)))
	return len(items), nil
}

// Seed заполняет пустые рабочие наборы демо-данными и возвращает число
// записанных записей по сущностям. Ошибка одного набора не останавливает
// остальные.
func Seed(ctx context.Context, repos *repositories.Repositories, store *storage.Store, opts Options, logger *zap.Logger) (map[string]int, error) {
	logger = logger.Named("seeder")
	logger.Info("▶️  Запуск наполнения демо-данными")

	cost := opts.PasswordCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("не удалось захешировать демо-пароль: %w", err)
	}
	ds := BuildDataset(store.Now(), string(hash))

	counts := make(map[string]int)
	var errs error
	record := func(entity string, n int, err error) {
		counts[entity] = n
		errs = multierr.Append(errs, err)
	}

	n, err := seedSet(ctx, repos.Departments, repositories.EntityDepartments, ds.Departments, opts.Force, logger)
	record(repositories.EntityDepartments, n, err)
	n, err = seedSet(ctx, repos.Employees, repositories.EntityEmployees, ds.Employees, opts.Force, logger)
	record(repositories.EntityEmployees, n, err)
	n, err = seedSet(ctx, repos.Clients, repositories.EntityClients, ds.Clients, opts.Force, logger)
	record(repositories.EntityClients, n, err)
	n, err = seedSet(ctx, repos.Tickets, repositories.EntityTickets, ds.Tickets, opts.Force, logger)
	record(repositories.EntityTickets, n, err)
	n, err = seedSet(ctx, repos.Messages, repositories.EntityTicketMessages, ds.Messages, opts.Force, logger)
	record(repositories.EntityTicketMessages, n, err)

	if errs != nil {
		logger.Error("❌ Наполнение завершено с ошибками", zap.Error(errs))
		return counts, errs
	}
	logger.Info("✅ Наполнение демо-данными завершено")
	return counts, nil
}
