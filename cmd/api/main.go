package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/reslab/attendance-backend-go/internal/config"
	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/auth"
	"github.com/reslab/attendance-backend-go/internal/domain/device"
	"github.com/reslab/attendance-backend-go/internal/domain/member"
	"github.com/reslab/attendance-backend-go/internal/domain/reconciliation"
	"github.com/reslab/attendance-backend-go/internal/domain/scan"
	appHTTP "github.com/reslab/attendance-backend-go/internal/handler/http"
	"github.com/reslab/attendance-backend-go/internal/handler/http/response"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/pkg/cron"
	"github.com/reslab/attendance-backend-go/internal/pkg/database"
	"github.com/reslab/attendance-backend-go/internal/pkg/jwt"
	redisClient "github.com/reslab/attendance-backend-go/internal/pkg/redis"
	"github.com/reslab/attendance-backend-go/internal/pkg/sse"
	"github.com/reslab/attendance-backend-go/internal/repository/memory"
	"github.com/reslab/attendance-backend-go/internal/repository/postgresql"
	redisRepo "github.com/reslab/attendance-backend-go/internal/repository/redis"
	attendanceService "github.com/reslab/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/reslab/attendance-backend-go/internal/service/auth"
	dashboardService "github.com/reslab/attendance-backend-go/internal/service/dashboard"
	deviceService "github.com/reslab/attendance-backend-go/internal/service/device"
	memberService "github.com/reslab/attendance-backend-go/internal/service/member"
	notificationService "github.com/reslab/attendance-backend-go/internal/service/notification"
	reconciliationService "github.com/reslab/attendance-backend-go/internal/service/reconciliation"
	reportService "github.com/reslab/attendance-backend-go/internal/service/report"
	scanService "github.com/reslab/attendance-backend-go/internal/service/scan"
)

type repositories struct {
	attendances attendance.AttendanceRepository
	members     member.MemberRepository
	devices     device.DeviceRepository
	logs        scan.LogRepository
	admins      auth.AdminRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	response.ExposeInternalErrors(cfg.IsDevelopment())

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(
		slog.String("app", "reslab-attendance"),
		slog.String("env", cfg.App.Env),
	)
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := clock.MustLoadLocation(cfg.Piket.Timezone)
	clk := clock.New(loc)
	cutoff, err := clock.ParseTimeOfDay(cfg.Piket.Cutoff)
	if err != nil {
		return err
	}
	policy := attendance.Policy{
		Cutoff:          cutoff,
		MinimumDuration: cfg.Piket.MinimumDuration,
		Location:        loc,
	}

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Redis is optional: without it counters live in process and only the
	// engine mutex guards reconciliation.
	var counters scan.CounterRepository = memory.NewCounterRepository()
	var locker reconciliation.Locker
	if cfg.Redis.Addr != "" {
		rdb, err := redisClient.NewClient(ctx, redisClient.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Warn("redis unavailable, using in-process counters", "error", err)
		} else {
			defer rdb.Close()
			counters = redisRepo.NewCounterRepository(rdb)
			locker = redisRepo.NewLease(rdb, redisRepo.ReconciliationLockKey)
		}
	}

	hub := sse.NewHub()
	dispatcher := notificationService.NewDispatcher(notificationService.Config{}, logger)
	defer dispatcher.Stop()

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	authSvc := serviceAuth.NewAuthService(repos.admins, jwtService, serviceAuth.NewLoginLimiter(clk, 0, 0))
	if err := authSvc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	memberSvc := memberService.NewMemberService(repos.members)
	deviceSvc := deviceService.NewDeviceService(repos.devices, clk, cfg.App.OnlineWindow)
	attendanceSvc := attendanceService.NewAttendanceService(repos.attendances, repos.members, policy, clk, hub)
	scanSvc := scanService.NewScanService(repos.members, repos.attendances, repos.logs, counters, repos.devices, dispatcher, hub,
		scanService.Config{Policy: policy, Clock: clk, Logger: logger})
	engine := reconciliationService.NewEngine(repos.attendances, repos.members, locker, hub,
		reconciliationService.Config{Policy: policy, Clock: clk, Logger: logger})
	dashboardSvc := dashboardService.NewDashboardService(repos.attendances, repos.members, repos.devices, repos.logs, counters,
		dashboardService.Config{Policy: policy, Clock: clk, OnlineWindow: cfg.App.OnlineWindow})
	reportSvc := reportService.NewReportService(repos.attendances, policy, clk)

	scheduler := cron.NewScheduler(loc, logger)
	if err := cron.NewAttendanceJobs(engine).RegisterJobs(scheduler, cfg.Piket.ReconcileSpec); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
		DeviceKey:      cfg.App.DeviceKey,
		JWTService:     jwtService,
	}, appHTTP.Handlers{
		Auth:           appHTTP.NewAuthHandler(jwtService, authSvc),
		Scan:           appHTTP.NewScanHandler(scanSvc),
		Device:         appHTTP.NewDeviceHandler(deviceSvc),
		Member:         appHTTP.NewMemberHandler(memberSvc, attendanceSvc),
		Attendance:     appHTTP.NewAttendanceHandler(attendanceSvc, reportSvc),
		Reconciliation: appHTTP.NewReconciliationHandler(engine),
		Dashboard:      appHTTP.NewDashboardHandler(dashboardSvc),
		Stream:         appHTTP.NewStreamHandler(hub, jwtService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", server.Addr, "storage", cfg.App.Storage, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories, func(), error) {
	if strings.EqualFold(cfg.App.Storage, config.StorageMemory) {
		logger.Warn("using in-memory storage, data is lost on restart")
		return repositories{
			attendances: memory.NewAttendanceRepository(),
			members:     memory.NewMemberRepository(),
			devices:     memory.NewDeviceRepository(),
			logs:        memory.NewScanLogRepository(),
			admins:      memory.NewAdminRepository(),
		}, func() {}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return repositories{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Piket.AutoMigrate {
		if err := database.RunMigrations(db, logger); err != nil {
			db.Close()
			return repositories{}, nil, err
		}
	}

	return repositories{
		attendances: postgresql.NewAttendanceRepository(db),
		members:     postgresql.NewMemberRepository(db),
		devices:     postgresql.NewDeviceRepository(db),
		logs:        postgresql.NewScanLogRepository(db),
		admins:      postgresql.NewAdminRepository(db),
	}, db.Close, nil
}
