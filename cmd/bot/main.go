package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wordreminder/internal/config"
	"wordreminder/internal/handler"
	"wordreminder/internal/logger"
	"wordreminder/internal/middleware"
	"wordreminder/internal/notifier"
	"wordreminder/internal/repository/postgres"
	"wordreminder/internal/scheduler"
	"wordreminder/internal/service"
	"wordreminder/internal/session"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting word reminder bot", zap.String("env", cfg.Env))

	if err := run(cfg, log); err != nil {
		log.Fatal("Bot stopped with error", zap.Error(err))
	}

	log.Info("Bot stopped gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, err := cfg.Location()
	if err != nil {
		return err
	}
	defaults, err := cfg.DefaultSettings()
	if err != nil {
		return err
	}

	// Connect to database with retries
	db, err := connectDatabase(ctx, cfg.DSN(), log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Database connection established")

	if err := runMigrations(db, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize repositories
	wordRepo := postgres.NewWordRepo(db)
	settingsRepo := postgres.NewSettingsRepo(db)
	chainRepo := postgres.NewChainRepo(db)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error("Unhandled bot error", zap.Error(err))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	log.Info("Telegram bot initialized", zap.String("username", bot.Me.Username))

	// Initialize services
	sessions := session.NewStore()
	tg := notifier.NewTelegram(bot, notifier.Config{
		MaxRetries:    cfg.Notifier.MaxRetries,
		RetryDelay:    cfg.Notifier.RetryDelay,
		RatePerSecond: cfg.Notifier.RatePerSecond,
		Burst:         cfg.Notifier.Burst,
	}, log)

	settingsService := service.NewSettingsService(settingsRepo, sessions, defaults, log)
	quizService := service.NewQuizService(tg, sessions, log)
	cleanupService := service.NewCleanupService(chainRepo, cfg.Cleanup.Retention, log)

	reminders, err := scheduler.New(
		sessions,
		quizService,
		settingsService,
		chainRepo,
		cfg.SchedulePolicy(),
		log,
		scheduler.WithLocation(location),
	)
	if err != nil {
		return err
	}

	wordService := service.NewWordService(wordRepo, sessions, reminders, log)

	// Initialize handler
	bot.Use(middleware.Recover(log), middleware.Logging(log))
	h := handler.NewHandler(bot, sessions, wordService, settingsService, quizService, reminders, log)
	h.RegisterHandlers()

	log.Info("Handlers registered")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return reminders.Run(gctx)
	})
	g.Go(func() error {
		return cleanupService.Run(gctx, cfg.Cleanup.Schedule)
	})
	g.Go(func() error {
		log.Info("Bot started successfully")
		bot.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received, stopping bot...")
		bot.Stop()
		return nil
	})

	return g.Wait()
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(ctx context.Context, dsn string, log *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		db, err = sql.Open("postgres", dsn)
		if err != nil {
			log.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			continue
		}

		// Test connection
		if err = db.PingContext(ctx); err != nil {
			log.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, log *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("No new migrations to apply")
	case err != nil:
		return err
	default:
		log.Info("Migrations applied successfully")
	}

	return nil
}
