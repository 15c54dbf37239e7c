package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"helpdesk-core/internal/repositories"
	"helpdesk-core/internal/storage"
	"helpdesk-core/pkg/config"
	applogger "helpdesk-core/pkg/logger"
	"helpdesk-core/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (демо-данные консоли)       ")
	log.Println("======================================================")

	cfg := config.New()
	driver := pflag.String("driver", cfg.Store.Driver, "носитель хранилища: memory | redis | postgres")
	namespace := pflag.String("namespace", cfg.Store.Namespace, "префикс ключей хранилища")
	force := pflag.Bool("force", false, "перезаписать уже заполненные наборы")
	pflag.Parse()

	cfg.Store.Driver = *driver
	cfg.Store.Namespace = *namespace
	if cfg.Store.Driver == "memory" {
		log.Println("❌ Носитель memory не сохраняет данные между запусками, укажите --driver redis или postgres")
		os.Exit(2)
	}

	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.Outputs)
	defer logger.Sync()

	ctx := context.Background()
	medium, closeMedium, err := storage.NewMedium(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Не удалось открыть хранилище", zap.Error(err))
	}
	defer closeMedium()

	store := storage.NewStore(medium, storage.Options{Namespace: cfg.Store.Namespace, DraftMaxAge: cfg.Drafts.MaxAge}, logger)
	repos := repositories.NewRepositories(repositories.Source{Store: store, Logger: logger})

	counts, err := seeders.Seed(ctx, repos, store, seeders.Options{Force: *force}, logger)
	for entity, n := range counts {
		log.Printf("  %-16s %d", entity, n)
	}
	if err != nil {
		logger.Fatal("Сидирование завершилось с ошибкой", zap.Error(err))
	}
	log.Println("✅ Все операции сидирования завершены.")
}
