// Command coursehub runs the course platform API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/coursehub"
	"github.com/MrEthical07/coursehub/internal/avatar"
	"github.com/MrEthical07/coursehub/internal/config"
	"github.com/MrEthical07/coursehub/internal/courses"
	"github.com/MrEthical07/coursehub/internal/httpapi"
	"github.com/MrEthical07/coursehub/internal/logging"
	"github.com/MrEthical07/coursehub/internal/mail"
	"github.com/MrEthical07/coursehub/internal/migrations"
	"github.com/MrEthical07/coursehub/internal/store/memory"
	"github.com/MrEthical07/coursehub/internal/store/postgres"
	"github.com/MrEthical07/coursehub/metrics/export/prometheus"
)

const shutdownTimeout = 10 * time.Second

type roleSetter interface {
	SetRole(ctx context.Context, id, role string) error
}

type stores struct {
	users   coursehub.UserStore
	roles   roleSetter
	courses courses.Repository
	db      *sql.DB
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration rejected", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Env, os.Stdout, slog.LevelInfo)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}

	builder := coursehub.New().
		WithConfig(cfg.Auth).
		WithRedis(rdb).
		WithUserStore(st.users).
		WithMailer(newMailer(cfg, logger)).
		WithLogger(logger)
	if cfg.Auth.Audit.Enabled {
		builder = builder.WithAuditSink(coursehub.NewSlogSink(logger))
	}
	if cfg.S3.Bucket != "" {
		avatars, err := avatar.New(ctx, cfg.S3)
		if err != nil {
			return err
		}
		builder = builder.WithAvatarStore(avatars)
	} else {
		logger.Warn("S3_BUCKET not set, avatar uploads are disabled")
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := engine.Close(closeCtx); err != nil {
			logger.Warn("audit drain incomplete", "error", err)
		}
	}()

	if err := promoteAdmin(ctx, cfg, engine, st); err != nil {
		return err
	}
	logSecurityReport(logger, engine.SecurityReport())

	app := httpapi.New(httpapi.Deps{
		Engine:      engine,
		Courses:     courses.NewService(st.courses, logger),
		Metrics:     prometheus.NewPrometheusExporter(engine).FiberHandler(),
		Logger:      logger,
		AccessLog:   os.Stdout,
		Production:  cfg.Production(),
		CORSOrigins: cfg.CORSOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		if cfg.Production() {
			return nil, errors.New("DATABASE_URL is required in production")
		}
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		users := memory.NewUsers()
		return &stores{users: users, roles: users, courses: memory.NewCourses()}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	users := postgres.NewUsers(db)
	return &stores{users: users, roles: users, courses: postgres.NewCourses(db), db: db}, nil
}

func newMailer(cfg *config.Config, logger *slog.Logger) coursehub.Mailer {
	renderer := mail.NewRenderer()
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST not set, activation mails are logged instead of sent")
		return mail.NewLogSender(logging.NewSlogLogger(logger).With("component", "mail"), renderer)
	}
	return mail.NewSMTPSender(cfg.SMTP, renderer)
}

// promoteAdmin grants the admin role to ADMIN_EMAIL once that account
// exists. A missing account is not an error; it is retried on next start.
func promoteAdmin(ctx context.Context, cfg *config.Config, engine *coursehub.Engine, st *stores) error {
	if cfg.AdminEmail == "" {
		return nil
	}
	u, err := st.users.UserByEmail(ctx, cfg.AdminEmail)
	if errors.Is(err, coursehub.ErrUserNotFound) {
		slog.Warn("admin account not registered yet", "email", cfg.AdminEmail)
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up admin: %w", err)
	}
	role := engine.Config().Account.AdminRole
	if u.Role == role {
		return nil
	}
	if err := st.roles.SetRole(ctx, u.ID, role); err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}
	slog.Info("admin role granted", "user_id", u.ID)
	return nil
}

func logSecurityReport(logger *slog.Logger, r coursehub.SecurityReport) {
	logger.Info("security posture",
		"production", r.ProductionMode,
		"alg", r.SigningAlgorithm,
		"access_ttl", r.AccessTTL,
		"refresh_ttl", r.RefreshTTL,
		"sessions_expire", r.SessionsExpire,
		"argon2_memory_kb", r.Argon2.Memory,
		"argon2_time", r.Argon2.Time,
		"login_throttle", r.LoginThrottle,
		"activation_throttle", r.ActivationThrottle,
		"refresh_throttle", r.RefreshThrottle,
		"ip_throttle", r.IPThrottle,
		"audit", r.AuditEnabled,
	)
	for _, w := range r.LintWarnings {
		logger.Warn("config lint", "warning", w)
	}
}
