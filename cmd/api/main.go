package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/pro-scheduler/internal/audit"
	"github.com/BruksfildServices01/pro-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/pro-scheduler/internal/db"
	"github.com/BruksfildServices01/pro-scheduler/internal/handlers"
	"github.com/BruksfildServices01/pro-scheduler/internal/infra/lock"
	infraRepo "github.com/BruksfildServices01/pro-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/pro-scheduler/internal/logger"
	"github.com/BruksfildServices01/pro-scheduler/internal/metrics"
	"github.com/BruksfildServices01/pro-scheduler/internal/middleware"
	"github.com/BruksfildServices01/pro-scheduler/internal/routes"
	"github.com/BruksfildServices01/pro-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/pro-scheduler/internal/usecase/appointment"
	ucProfessional "github.com/BruksfildServices01/pro-scheduler/internal/usecase/professional"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
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
		zap.String("env", cfg.App.Environment),
		zap.String("lock_driver", cfg.Lock.Driver),
	)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ======================================================
	// INFRA
	// ======================================================
	db, err := dbpkg.NewDB(cfg.Database, log)
	if err != nil {
		return err
	}
	if err := dbpkg.Migrate(db, log); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewCollector("scheduler", registry)

	locker, closeLocker, err := newLocker(cfg.Lock, log)
	if err != nil {
		return err
	}
	defer closeLocker()

	appointmentRepo := infraRepo.NewAppointmentGormRepository(db, cfg.Database.Isolation())
	professionalRepo := infraRepo.NewProfessionalGormRepository(db)

	auditDispatcher := audit.NewDispatcher(audit.New(db), log.Named("audit"), m)
	defer auditDispatcher.Close()

	// ======================================================
	// USE CASES
	// ======================================================
	admission := ucAppointment.NewAdmission(
		appointmentRepo,
		locker,
		log.Named("admission"),
		ucAppointment.WithLockWait(cfg.Lock.WaitTimeout),
		ucAppointment.WithMetrics(m),
	)

	appointmentUC := handlers.AppointmentUseCases{
		Propose: ucAppointment.NewProposeAppointment(
			admission, auditDispatcher, log, cfg.Scheduling.DefaultDuration,
		),
		UpdateSchedule: ucAppointment.NewUpdateAppointmentSchedule(
			appointmentRepo, admission, auditDispatcher, log,
		),
		Confirm:      ucAppointment.NewConfirmAppointment(appointmentRepo, auditDispatcher),
		Cancel:       ucAppointment.NewCancelAppointment(appointmentRepo, auditDispatcher),
		Get:          ucAppointment.NewGetAppointment(appointmentRepo),
		List:         ucAppointment.NewListAppointments(appointmentRepo),
		Availability: ucAppointment.NewGetAvailability(appointmentRepo, cfg.Scheduling.DefaultDuration),
		Admission:    admission,
	}

	professionalSvc := ucProfessional.NewService(professionalRepo, auditDispatcher, log)

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(log.Named("http")),
		middleware.Metrics(m),
		middleware.CORSMiddleware(cfg.CORS.AllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	loc := timezone.Location(cfg.Scheduling.Timezone)

	routes.RegisterRoutes(r, routes.Handlers{
		Auth:         handlers.NewAuthHandler(db, cfg, log),
		Me:           handlers.NewMeHandler(db, log),
		Appointment:  handlers.NewAppointmentHandler(appointmentUC, loc, log),
		Professional: handlers.NewProfessionalHandler(professionalSvc, log),
		AuditLogs:    handlers.NewAuditLogsHandler(db, log),
	}, cfg)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func newLocker(cfg config.LockConfig, log *zap.Logger) (lock.Locker, func(), error) {
	if cfg.Driver != "redis" {
		return lock.NewLocal(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connecting redis: %w", err)
	}

	locker := lock.NewRedis(client, lock.RedisOptions{
		Prefix:        cfg.Prefix,
		TTL:           cfg.TTL,
		RetryInterval: cfg.RetryInterval,
	}, log.Named("lock"))

	return locker, func() { _ = client.Close() }, nil
}
