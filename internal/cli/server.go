package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-stats-service/internal/app"
	"quiz-stats-service/internal/config"
	"quiz-stats-service/internal/infra/memory"
	"quiz-stats-service/internal/infra/postgres"
	infraredis "quiz-stats-service/internal/infra/redis"
	"quiz-stats-service/internal/logging"
	transport "quiz-stats-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz statistics server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	deps, cleanup, err := buildDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	service := app.NewQuizService(deps)
	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(service, log, cfg.CORS.Origins),
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: the stats websocket is long-lived
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz stats service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildDeps picks Postgres or memory for storage and Redis or memory for caches.
func buildDeps(ctx context.Context, cfg config.Config, log *logrus.Logger) (app.Deps, func(), error) {
	deps := app.Deps{Logger: log}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var loader memory.QuizLoader
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return app.Deps{}, cleanup, err
		}
		closers = append(closers, pool.Close)
		store := postgres.NewQuizStore(pool)
		deps.Quizzes, loader = store, store
		deps.Participations = postgres.NewParticipationStore(pool)
		log.Info("using postgres storage")
	} else {
		store := memory.NewQuizStore()
		deps.Quizzes, loader = store, store
		deps.Participations = memory.NewParticipationStore()
		log.Warn("postgres url not configured, quizzes and participations are kept in memory")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	reportTTL := config.TTLDuration(cfg.Report.TTL, time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = client.Close() })
		deps.Cache = infraredis.NewQuizRepository(client, loader, quizTTL, log)
		deps.Reports = infraredis.NewReportCache(client, reportTTL)
		deps.Feeds = infraredis.NewFeedStore(client, log)
		log.WithField("addr", cfg.Redis.Addr).Info("using redis caches")
	} else {
		deps.Cache = memory.NewQuizRepository(loader, quizTTL)
		deps.Reports = memory.NewReportCache(reportTTL)
		deps.Feeds = memory.NewFeedStore()
	}
	return deps, cleanup, nil
}
