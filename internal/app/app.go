// Package app wires the whole service together: config, storage, queue,
// Telegram front-end, audit worker and the operational HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"

	"sol-audit-service/internal/config"
	"sol-audit-service/internal/database"
	httpapi "sol-audit-service/internal/http"
	"sol-audit-service/internal/http/handler"
	"sol-audit-service/internal/observability"
	"sol-audit-service/internal/queue"
	"sol-audit-service/internal/renderer"
	"sol-audit-service/internal/repository"
	"sol-audit-service/internal/service"
	"sol-audit-service/internal/telegram"
	"sol-audit-service/internal/worker"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	Server *http.Server

	redis  *redis.Client
	bot    *telegram.Bot
	worker *worker.Worker

	wg sync.WaitGroup
}

// New builds the full dependency graph. Construction is explicit so the
// wiring order is readable top to bottom.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	users := repository.NewUserRepository(db)
	requests := repository.NewAuditRequestRepository(db)
	auditQueue := queue.NewRedisAuditQueue(redisClient, cfg.QueueKey)

	accounts := service.NewAccountService(users, logger)
	submissions := service.NewSubmissionService(users, requests, auditQueue, cfg.UploadsDir, cfg.ReportsDir, logger)

	var (
		notifier telegram.Notifier
		fetcher  telegram.FileFetcher
		bot      *telegram.Bot
	)
	if cfg.TelegramToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("init telegram bot: %w", err)
		}
		notifier = telegram.NewBotNotifier(api)
		fetcher = telegram.NewBotFileFetcher(api, nil)
		bot = telegram.NewBot(api, accounts, submissions, logger)
	} else {
		logger.Warn("no telegram token configured, running without the bot front-end")
		notifier = telegram.NewDevNotifier(logger)
		fetcher = telegram.DevFileFetcher{}
	}

	auditWorker := worker.New(
		users,
		requests,
		auditQueue,
		fetcher,
		renderer.NewWkhtmltopdfRenderer(),
		notifier,
		cfg.WorkerPollInterval,
		cfg.ExternalCallTimeout,
		logger,
	)

	router := httpapi.NewRouter(handler.NewAuditHandler(users, requests, auditQueue))
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return &App{
		Config: cfg,
		Logger: logger,
		Server: server,
		redis:  redisClient,
		bot:    bot,
		worker: auditWorker,
	}, nil
}

// Start launches the worker and, when configured, the bot. Both stop when
// ctx is cancelled. The HTTP server is started by the caller.
func (a *App) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.worker.Run(ctx)
	}()
	if a.bot != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.bot.Run(ctx)
		}()
	}
}

// Shutdown stops the HTTP server, waits for the worker and bot to drain and
// closes the Redis connection.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Server.Shutdown(ctx)
	a.wg.Wait()
	if cerr := a.redis.Close(); err == nil {
		err = cerr
	}
	return err
}
