package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/eventplanner/docs"
	"github.com/fkhayef/eventplanner/internal/config"
	"github.com/fkhayef/eventplanner/internal/database"
	"github.com/fkhayef/eventplanner/internal/event"
	"github.com/fkhayef/eventplanner/internal/expense"
	expensesplit "github.com/fkhayef/eventplanner/internal/expense/split"
	"github.com/fkhayef/eventplanner/internal/friend"
	"github.com/fkhayef/eventplanner/internal/notification"
	"github.com/fkhayef/eventplanner/internal/participant"
	"github.com/fkhayef/eventplanner/internal/queue"
	"github.com/fkhayef/eventplanner/internal/realtime"
	"github.com/fkhayef/eventplanner/internal/settlement"
	"github.com/fkhayef/eventplanner/internal/task"
	"github.com/fkhayef/eventplanner/internal/user"
	mw "github.com/fkhayef/eventplanner/pkg/middleware"
)

// @title                       Event Planner API
// @version                     1.0
// @description                 Events, invitations, friendships, shared expenses and tasks.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// Load .env file
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("no .env file found, using environment variables")
	}

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	if err := database.RunMigrations(context.Background(), db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Notification sinks: websocket sessions and, when configured, the broker
	hub := realtime.NewHub(logger)
	defer hub.Close()
	sinks := []notification.Sink{hub}
	if cfg.AMQPURL != "" {
		publisher := queue.NewPublisher(cfg.AMQPURL, cfg.NotificationQueue, logger)
		defer publisher.Close()
		sinks = append(sinks, publisher)
		logger.Info("publishing notifications", "queue", cfg.NotificationQueue)
	}
	dispatcher := notification.NewDispatcher(logger, sinks...)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" && cfg.RateLimit.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting will fail open", "addr", cfg.Redis.Addr, "error", err)
		}
		cancel()
	}
	limit := mw.RateLimit(redisScripter(rdb), mw.RateLimitOptions{
		Capacity:       cfg.RateLimit.Capacity,
		RefillInterval: cfg.RateLimit.RefillInterval,
		TTL:            cfg.RateLimit.TTL,
		Prefix:         cfg.RateLimit.Prefix,
	}, logger)

	// Split Strategy Factory (Factory Pattern)
	splitFactory := expensesplit.NewSplitStrategyFactory()

	userHandler := user.NewHandler(user.NewService(user.NewRepository(db)))
	eventHandler := event.NewHandler(event.NewService(event.NewRepository(db)))
	participantHandler := participant.NewHandler(participant.NewService(participant.NewRepository(db), dispatcher))
	friendHandler := friend.NewHandler(friend.NewService(friend.NewRepository(db), dispatcher))
	expenseHandler := expense.NewHandler(expense.NewService(expense.NewRepository(db), splitFactory, dispatcher))
	settlementHandler := settlement.NewHandler(settlement.NewService(settlement.NewRepository(db)))
	taskHandler := task.NewHandler(task.NewService(task.NewRepository(db), dispatcher))
	notificationHandler := notification.NewHandler(notification.NewService(notification.NewRepository(db)))

	auth := mw.NewAuthenticator(cfg.JWTSecret, cfg.DevAuth)
	if cfg.DevAuth {
		logger.Warn("dev auth enabled, the X-Test-User-ID header is trusted")
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireUser)

		r.Mount("/api/users", userHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
		r.Get("/ws/notifications", hub.ServeHTTP)

		eventHandler.Register(r)
		expenseHandler.Register(r)
		settlementHandler.Register(r)
		taskHandler.Register(r)

		// invitations and friend requests fan out notifications
		r.Group(func(r chi.Router) {
			r.Use(limit)
			participantHandler.Register(r)
			friendHandler.Register(r)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// redisScripter keeps a nil client from becoming a non-nil interface.
func redisScripter(rdb *redis.Client) redis.Scripter {
	if rdb == nil {
		return nil
	}
	return rdb
}
