package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/glucotrack/glucotrack/internal/classifier"
	"github.com/glucotrack/glucotrack/internal/config"
	"github.com/glucotrack/glucotrack/internal/handler/middleware"
	v1 "github.com/glucotrack/glucotrack/internal/handler/v1"
	"github.com/glucotrack/glucotrack/internal/repository"
	"github.com/glucotrack/glucotrack/internal/service"
	"github.com/glucotrack/glucotrack/internal/session"
	"github.com/glucotrack/glucotrack/pkg/auth"
	"github.com/glucotrack/glucotrack/pkg/database"
	"github.com/glucotrack/glucotrack/pkg/logger"
	"github.com/glucotrack/glucotrack/pkg/metrics"
	"github.com/glucotrack/glucotrack/pkg/tracer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	sessions := session.NewManager(session.NewRedisStore(redisClient), cfg.Session.TTL)

	// The classifier loads once here and is shared read-only for the
	// process lifetime. A load failure is not fatal.
	clf := classifier.New(cfg.Classifier.ModelPath, log)

	collector := metrics.NewCollector("glucotrack")
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("accessing connection pool: %w", err)
	}
	collector.ObserveDBPool(sqlDB)

	jwtManager := auth.NewJWTManager(cfg.JWT)

	doctorRepo := repository.NewDoctorRepository(db)
	patientRepo := repository.NewPatientRepository(db)

	authSvc := service.NewAuthService(doctorRepo, log)
	intakeSvc := service.NewIntakeService(patientRepo, clf, collector, log)
	patientSvc := service.NewPatientService(patientRepo, log)

	authn := middleware.NewAuthenticator(sessions, jwtManager, cfg.Session.CookieName)

	router := v1.NewRouter(
		cfg,
		log,
		collector,
		authn,
		v1.NewAuthHandler(authSvc, sessions, jwtManager, cfg.Session, collector, log),
		v1.NewPatientHandler(intakeSvc, patientSvc, log),
		v1.NewHealthHandler(db, clf, cfg.App.Version),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("stopped")
	return nil
}
