// Package server wires configuration, storage, services and the HTTP API
// into a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/storekeeper/internal/logging"
	"github.com/dmitrijs2005/storekeeper/internal/server/auth"
	"github.com/dmitrijs2005/storekeeper/internal/server/config"
	"github.com/dmitrijs2005/storekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/storekeeper/internal/server/mail"
	"github.com/dmitrijs2005/storekeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storekeeper/internal/server/services"
	"github.com/dmitrijs2005/storekeeper/internal/server/spreadsheet"
	"github.com/dmitrijs2005/storekeeper/internal/server/storage"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	limiter ratelimit.Limiter
	redis   *redis.Client
	server  *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	sheets, err := spreadsheet.NewExcelWriter(c.OrderSheetDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("order sheets: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}
	app.limiter, app.redis = newLimiter(ctx, c)

	mailer := mail.NewSMTPSender(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword, c.MailSender)

	us := services.NewUserService(db, m, c, mailer, logger)
	as := services.NewAuthService(us, auth.NewHS256Signer(), c)
	ps := services.NewProductService(db, m, sheets, newArchive(c), logger)

	app.server = httpapi.NewServer(c.EndpointAddrHTTP, logger, us, ps, as, app.limiter, c.JWTSecret)

	return app, nil
}

// newLimiter prefers Redis so limits hold across instances; without an
// address it falls back to per-process buckets.
func newLimiter(ctx context.Context, c *config.Config) (ratelimit.Limiter, *redis.Client) {
	if c.RedisAddr == "" {
		return ratelimit.NewMemoryLimiter(ctx, c.RateLimitRPS, c.RateLimitBurst), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	return ratelimit.NewRedisLimiter(rdb, c.RateLimitRPS, c.RateLimitBurst), rdb
}

func newArchive(c *config.Config) storage.Archive {
	if !c.ArchiveEnabled() {
		return nil
	}
	return storage.NewS3Archive(storage.S3Config{
		User:         c.S3RootUser,
		Password:     c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	}, http.DefaultClient)
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases every resource the app holds.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(gctx)
	})

	err := g.Wait()
	if cerr := app.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}

	app.logger.Info(context.Background(), "App stopped")
	return err
}

func (app *App) Close() error {
	var errs []error
	if app.limiter != nil {
		errs = append(errs, app.limiter.Close())
	}
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}
