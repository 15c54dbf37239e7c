// Файл: main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"helpdesk-core/internal/gateway"
	"helpdesk-core/internal/mockapi"
	"helpdesk-core/internal/repositories"
	"helpdesk-core/internal/services"
	"helpdesk-core/internal/storage"
	"helpdesk-core/pkg/config"
	"helpdesk-core/pkg/filestorage"
	applogger "helpdesk-core/pkg/logger"
	"helpdesk-core/pkg/validation"
	"helpdesk-core/seeders"
)

func main() {
	// 1. Конфиг из окружения, поверх - флаги командной строки
	cfg := config.New()
	mode := pflag.String("mode", string(cfg.Mode), "режим шлюза: development | production")
	port := pflag.String("port", cfg.Server.Port, "порт симулятора бэкенда")
	driver := pflag.String("driver", cfg.Store.Driver, "носитель хранилища: memory | redis | postgres")
	namespace := pflag.String("namespace", cfg.Store.Namespace, "префикс ключей хранилища")
	baseURL := pflag.String("api-base-url", cfg.API.BaseURL, "адрес сервера для режима production")
	uploadDir := pflag.String("upload-dir", cfg.Server.UploadDir, "каталог загруженных файлов")
	seed := pflag.Bool("seed", true, "заполнить пустые наборы демо-данными")
	syncInterval := pflag.Duration("sync-interval", time.Minute, "период синхронизации офлайн-очереди, 0 - выключить")
	pflag.Parse()

	cfg.Mode = config.Mode(*mode)
	cfg.Server.Port = *port
	cfg.Store.Driver = *driver
	cfg.Store.Namespace = *namespace
	cfg.API.BaseURL = *baseURL
	cfg.Server.UploadDir = *uploadDir

	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.Outputs)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Хранилище
	consoleNamespace := "console_" + cfg.Store.Namespace
	if err := storage.CheckNamespaces(cfg.Store.Namespace, consoleNamespace); err != nil {
		logger.Fatal("Некорректное пространство имён хранилища", zap.Error(err))
	}
	medium, closeMedium, err := storage.NewMedium(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Не удалось открыть хранилище", zap.Error(err))
	}
	defer closeMedium()

	store := storage.NewStore(medium, storage.Options{Namespace: cfg.Store.Namespace, DraftMaxAge: cfg.Drafts.MaxAge}, logger)
	repos := repositories.NewRepositories(repositories.Source{Store: store, Logger: logger})

	if *seed {
		if _, err := seeders.Seed(ctx, repos, store, seeders.Options{}, logger); err != nil {
			logger.Error("Демо-данные заполнены не полностью", zap.Error(err))
		}
	}

	// 3. Сервисы и маршруты симулятора
	v := validation.New()
	absUploads, err := filepath.Abs(cfg.Server.UploadDir)
	if err != nil {
		logger.Fatal("не удалось получить абсолютный путь к uploads", zap.Error(err))
	}
	files, err := filestorage.NewLocalFileStorage(absUploads)
	if err != nil {
		logger.Fatal("не удалось создать файловое хранилище", zap.Error(err))
	}

	e, err := mockapi.NewRouter(mockapi.Deps{
		Repos:       repos,
		Tickets:     services.NewTicketService(repos, store, v, logger),
		Clients:     services.NewClientService(repos, store, v, logger),
		Employees:   services.NewEmployeeService(repos, store, v, logger),
		Departments: services.NewDepartmentService(repos, store, v, logger),
		TableState:  services.NewTableStateService(store, logger),
		Files:       files,
		UploadDir:   absUploads,
		Now:         store.Now,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("Не удалось собрать маршруты", zap.Error(err))
	}

	// 4. Шлюз консоли: офлайн-очередь консоли лежит в том же носителе
	// под своим префиксом
	consoleStore := storage.NewStore(medium, storage.Options{Namespace: consoleNamespace, DraftMaxAge: cfg.Drafts.MaxAge}, logger)
	gw := gateway.New(gateway.NewTransport(cfg, e, logger), consoleStore, gateway.Options{
		CacheTTL:         cfg.Cache.DefaultTTL,
		OfflineRetention: cfg.Offline.Retention,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("🚀 Симулятор бэкенда запущен", zap.String("port", cfg.Server.Port), zap.String("mode", gw.Mode()))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("Остановка сервера")
		return e.Shutdown(shutdownCtx)
	})

	if *syncInterval > 0 {
		g.Go(func() error {
			health := gw.HealthCheck(gctx)
			logger.Info("Проверка соединения шлюза",
				zap.Bool("reachable", health.Data.Reachable),
				zap.Int64("latencyMs", health.Data.LatencyMs))

			ticker := time.NewTicker(*syncInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if resp := gw.SyncOfflineData(gctx); !resp.Success {
						logger.Warn("Синхронизация офлайн-очереди не выполнена", zap.String("message", resp.Error.Message))
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatal("Ошибка сервера", zap.Error(err))
	}
}
