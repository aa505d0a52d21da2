package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/affiliate"
	"github.com/Kerhoff/giddylist/internal/api"
	"github.com/Kerhoff/giddylist/internal/auth"
	"github.com/Kerhoff/giddylist/internal/config"
	"github.com/Kerhoff/giddylist/internal/handlers"
	"github.com/Kerhoff/giddylist/internal/llm"
	"github.com/Kerhoff/giddylist/internal/metrics"
	"github.com/Kerhoff/giddylist/internal/notify"
	"github.com/Kerhoff/giddylist/internal/repository"
	"github.com/Kerhoff/giddylist/internal/repository/postgres"
	"github.com/Kerhoff/giddylist/internal/scraper"
	"github.com/Kerhoff/giddylist/internal/service"
	"github.com/Kerhoff/giddylist/internal/storage"
	"github.com/Kerhoff/giddylist/internal/telegram"
	"github.com/Kerhoff/giddylist/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel, cfg.LogFormat)
	l.Info("Starting The Giddy List...")

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()

	// Database. Without one the public catalogue routes still serve
	// fallback content.
	var repos *repository.Repositories
	if cfg.HasDatabase() {
		db, err := config.NewDatabase(ctx, cfg.DatabaseURL, l)
		if err != nil {
			l.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Migrate(cfg.MigrationsPath); err != nil {
			l.Fatalf("Failed to run migrations: %v", err)
		}
		repos = postgres.NewRepositories(db.DB)
	} else {
		l.Warn("DATABASE_URL not set, running without a database")
	}

	// Outbound integrations
	scr := scraper.New(nil, l).
		WithObserver(func(r scraper.Retailer, o scraper.Outcome, took time.Duration) {
			m.ObserveScrape(string(r), string(o), took)
		})
	writer := llm.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel, nil, l)
	if !writer.Enabled() {
		l.Warn("LLM_API_KEY not set, guide generation disabled")
	}

	deps := service.Deps{
		Repos:     repos,
		Scraper:   scr,
		Affiliate: affiliate.New(cfg.AmazonAffiliateTag),
		Writer:    writer,
		Metrics:   m,
		Logger:    l,
	}

	if cfg.HasStorage() {
		uploader, err := storage.NewUploader(ctx, storage.Config{
			Endpoint:  cfg.StorageEndpoint,
			Region:    cfg.StorageRegion,
			Bucket:    cfg.StorageBucket,
			PublicURL: cfg.StoragePublicURL,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
		}, l)
		if err != nil {
			l.Fatalf("Failed to create storage uploader: %v", err)
		}
		deps.Uploader = uploader
	}

	var verifier auth.Verifier
	if cfg.SupabaseJWTSecret != "" {
		verifier = auth.NewJWTVerifier(cfg.SupabaseJWTSecret)
	} else if cfg.SupabaseURL != "" {
		verifier = auth.NewRemoteVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey, nil)
	} else {
		l.Warn("No auth provider configured, authenticated routes will reject requests")
	}

	// Notification channels
	var channels []notify.Notifier
	if repos != nil {
		channels = append(channels, notify.NewInApp(repos.Notifications, cfg.SiteURL))
	}

	var bot *telegram.Bot
	if cfg.TelegramToken != "" {
		bot, err = telegram.NewBot(cfg.TelegramToken, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}
		channels = append(channels, notify.NewTelegram(bot, cfg.SiteURL))
	}

	email, err := notify.NewEmail(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SiteURL)
	if err != nil {
		l.Fatalf("Failed to create email notifier: %v", err)
	}
	if email != nil {
		channels = append(channels, email)
	}

	deps.Notifier = notify.NewMulti(l, channels...)

	// Service layer
	svc := service.New(deps)

	if bot != nil {
		registerCommands(bot, svc, cfg.SiteURL, l)
		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
	}

	// HTTP API
	opts := api.Options{
		Verifier:    verifier,
		Metrics:     m,
		ScrapeRPS:   cfg.ScrapeRPS,
		ScrapeBurst: cfg.ScrapeBurst,
	}
	if bot != nil {
		opts.TelegramBot = bot.Username()
	}
	apiServer := api.NewServer(svc, opts, l)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	httpLog := logger.WithComponent(l, "http")
	go func() {
		httpLog.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpLog.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	l.Info("The Giddy List started successfully")

	<-ctx.Done()

	httpLog.Info("Shutting down HTTP server...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		httpLog.Errorf("HTTP shutdown error: %v", err)
	}

	l.Info("The Giddy List stopped")
}

func registerCommands(bot *telegram.Bot, svc *service.Service, siteURL string, l *logrus.Logger) {
	bot.RegisterCommand("start", "Link this chat to your account", handlers.NewStartHandler(svc, l))
	bot.RegisterCommand("registries", "Claim progress for your registries", handlers.NewRegistriesHandler(svc, siteURL, l))
	bot.RegisterCommand("unlink", "Stop notifications in this chat", handlers.NewUnlinkHandler(svc, l))
	bot.RegisterCommand("help", "Show available commands", handlers.NewHelpHandler(l))
}
