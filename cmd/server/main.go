package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/tourism-portal/internal/auth"
	"github.com/iliyamo/tourism-portal/internal/config"
	"github.com/iliyamo/tourism-portal/internal/database"
	"github.com/iliyamo/tourism-portal/internal/handler"
	"github.com/iliyamo/tourism-portal/internal/logger"
	"github.com/iliyamo/tourism-portal/internal/middleware"
	"github.com/iliyamo/tourism-portal/internal/queue"
	"github.com/iliyamo/tourism-portal/internal/repository"
	"github.com/iliyamo/tourism-portal/internal/router"
	"github.com/iliyamo/tourism-portal/internal/validation"
)

func main() {
	cfg := config.Load() // Load environment config
	logger.Initialize(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("schema applied")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	publisher := queue.NewPublisher(cfg.AMQPURL, logger.WithComponent("publisher"))
	defer publisher.Close()
	go publisher.Run(ctx)
	go runConsumer(ctx, cfg.AMQPURL, queue.ContactQueue, queue.ContactLogHandler("logs"))
	go runConsumer(ctx, cfg.AMQPURL, queue.AccountQueue, queue.AccountLogHandler("logs"))

	// ---- repositories ----
	users := repository.NewUserRepo(db)
	statuses := repository.NewStatusRepo(db)
	tokens := repository.NewTokenRepo(db)
	attractions := repository.NewAttractionRepo(db)
	activities := repository.NewActivityRepo(db)
	accommodations := repository.NewAccommodationRepo(db)
	contacts := repository.NewContactRepo(db)

	// ---- account flow ----
	authLog := logger.WithComponent("auth")
	svc, err := auth.NewService(auth.Deps{
		Users:    users,
		Roles:    repository.NewRoleRepo(db),
		Statuses: statuses,
		Sessions: auth.NewTokenSessions(tokens, auth.SessionConfig{
			Secret:       cfg.JWTSecret,
			AccessTTLMin: cfg.AccessTTLMin,
			SessionTTL:   time.Duration(cfg.SessionTTLHours) * time.Hour,
			RememberTTL:  time.Duration(cfg.RememberTTLDays) * 24 * time.Hour,
		}),
		Presence:    auth.NewPresenceTracker(users, statuses, authLog),
		BcryptCost:  cfg.BcryptCost,
		Logger:      authLog,
		Subscribers: []auth.Subscriber{publisher},
	})
	if err != nil {
		log.Error("auth service init failed", "error", err)
		os.Exit(1)
	}

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(requestLogConfig()))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cacheCfg := config.LoadCacheConfig()
	httpLog := logger.WithComponent("http")

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(svc, users, httpLog), cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadLoginRateLimitConfig(), rdb),
		middleware.NewTokenBucket(config.LoadIdentifierRateLimitConfig(), rdb))
	router.RegisterPublic(e, &handler.PortalHandler{
		Attractions:    attractions,
		Activities:     activities,
		Accommodations: accommodations,
		Operators:      users,
		Contacts:       contacts,
		Publisher:      publisher,
		Log:            httpLog,
	}, middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterAdmin(e,
		handler.NewAdminListingHandler(attractions, activities, accommodations, purger(rdb, cacheCfg.Prefix), httpLog),
		&handler.AdminUserHandler{Users: users, Accounts: svc, Statuses: statuses, Contacts: contacts, Log: httpLog},
		cfg.JWTSecret)
	router.RegisterDashboard(e, &handler.DashboardHandler{
		Users:          users,
		Attractions:    attractions,
		Activities:     activities,
		Accommodations: accommodations,
		Log:            httpLog,
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

func runConsumer(ctx context.Context, url, queueName string, h queue.Handler) {
	l := logger.WithComponent("consumer")
	if err := queue.Consume(ctx, url, queueName, h, l); err != nil && !errors.Is(err, context.Canceled) {
		l.Error("consumer exited", "queue", queueName, "error", err)
	}
}

func purger(rdb *redis.Client, prefix string) func(context.Context) error {
	return func(ctx context.Context) error {
		return middleware.PurgeCache(ctx, rdb, prefix)
	}
}

func requestLogConfig() echomw.RequestLoggerConfig {
	l := logger.WithComponent("http")
	return echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status,
				"latency", v.Latency, "request_id", v.RequestID}
			if v.Error != nil {
				l.WarnContext(c.Request().Context(), "request", append(attrs, "error", v.Error)...)
				return nil
			}
			l.InfoContext(c.Request().Context(), "request", attrs...)
			return nil
		},
	}
}
