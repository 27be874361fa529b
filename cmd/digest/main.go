package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"trending_digest/internal/config"
	"trending_digest/internal/notifier/email"
	"trending_digest/internal/notifier/telegram"
	"trending_digest/internal/publisher"
	"trending_digest/internal/scheduler"
	"trending_digest/internal/service"
	"trending_digest/internal/source/readme"
	"trending_digest/internal/source/trending"
	"trending_digest/internal/storage/jsonfile"
	"trending_digest/internal/storage/postgres"
	"trending_digest/internal/summarizer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	trendingSource, err := trending.New(trending.Config{
		URL:       cfg.Trending.URL,
		Timeout:   cfg.Trending.Timeout,
		UserAgent: cfg.Trending.UserAgent,
	}, logger)
	if err != nil {
		logger.Error("failed to create trending source", "error", err)
		os.Exit(1)
	}

	readmeSource := readme.New(readme.Config{
		BaseURL:        cfg.Readme.BaseURL,
		Token:          cfg.Readme.Token,
		Timeout:        cfg.Readme.Timeout,
		MaxAttempts:    cfg.Readme.Retry.MaxAttempts,
		InitialBackoff: cfg.Readme.Retry.InitialBackoff,
		MaxBackoff:     cfg.Readme.Retry.MaxBackoff,
	}, logger)

	gemini, err := summarizer.NewGeminiModel(ctx, summarizer.GeminiConfig{
		APIKey:          cfg.Summarizer.APIKey,
		Model:           cfg.Summarizer.Model,
		Temperature:     *cfg.Summarizer.Temperature,
		MaxOutputTokens: cfg.Summarizer.MaxOutputTokens,
		Timeout:         cfg.Summarizer.Timeout,
	})
	if err != nil {
		logger.Error("failed to create summary model", "error", err)
		os.Exit(1)
	}
	defer gemini.Close()

	generator := summarizer.New(gemini, summarizer.Config{
		MaxDocumentLength: cfg.Summarizer.MaxDocumentLength,
		Interval:          cfg.Summarizer.Interval,
	}, logger)

	opts, closers := setupOutputs(cfg, logger)
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	digestService := service.NewDigestService(
		trendingSource,
		readmeSource,
		generator,
		jsonfile.NewStore(cfg.Storage.DataDir),
		cfg.Trending.Limit,
		logger,
		opts...,
	)

	if cfg.Schedule == "" {
		if _, err := digestService.Run(ctx); err != nil {
			logger.Error("digest run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	sched := scheduler.NewScheduler(digestService, cfg.Schedule, logger)
	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

// setupOutputs wires the optional history, broker and notification outputs.
// Missing email credentials are fatal; other outputs are skipped when unconfigured.
func setupOutputs(cfg *config.Config, logger *slog.Logger) ([]service.Option, []io.Closer) {
	var opts []service.Option
	var closers []io.Closer

	if cfg.Database.Enabled() {
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		closers = append(closers, db)
		logger.Info("connected to database")
		opts = append(opts, service.WithHistory(postgres.NewDigestStore(db)))
	}

	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		closers = append(closers, rabbitMQ)
		opts = append(opts, service.WithPublisher(rabbitMQ))
	}

	tmpl, err := email.LoadTemplate(cfg.Email.TemplatePath)
	if err != nil {
		logger.Error("failed to load email template", "error", err)
		os.Exit(1)
	}

	mailer, err := email.New(email.Config{
		APIKey:   cfg.Email.APIKey,
		From:     cfg.Email.From,
		To:       cfg.Email.To,
		Template: tmpl,
	})
	if err != nil {
		logger.Error("failed to create email notifier", "error", err)
		os.Exit(1)
	}
	opts = append(opts, service.WithNotifiers(mailer))

	if cfg.Telegram.Enabled() {
		bot, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			logger.Error("failed to create telegram notifier", "error", err)
			os.Exit(1)
		}
		opts = append(opts, service.WithNotifiers(bot))
	}

	return opts, closers
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
