package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/issue-management/internal"
	"github.com/frahmantamala/issue-management/internal/auth"
	authPostgres "github.com/frahmantamala/issue-management/internal/auth/postgres"
	"github.com/frahmantamala/issue-management/internal/core/events"
	"github.com/frahmantamala/issue-management/internal/image"
	imagePostgres "github.com/frahmantamala/issue-management/internal/image/postgres"
	"github.com/frahmantamala/issue-management/internal/issue"
	issuePostgres "github.com/frahmantamala/issue-management/internal/issue/postgres"
	"github.com/frahmantamala/issue-management/internal/transport/rest"
	"github.com/frahmantamala/issue-management/internal/transport/swagger"
	"github.com/frahmantamala/issue-management/internal/user"
	userPostgres "github.com/frahmantamala/issue-management/internal/user/postgres"
	"github.com/frahmantamala/issue-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
		if deps.Redis != nil {
			if err := deps.Redis.Close(); err != nil {
				deps.Logger.Error("redis close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.L()

	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		lg.Warn("openapi spec validation failed", "error", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		lg.Warn("redis unreachable, rate limiting disabled", "error", err)
	}

	bus := events.NewEventBus(lg)
	registerAuditSubscribers(bus, lg)

	tokenGen := &auth.JWTTokenGenerator{
		AccessTokenSecret:  []byte(config.Security.AccessTokenSecret),
		RefreshTokenSecret: []byte(config.Security.RefreshTokenSecret),
		AccessTokenTTL:     config.Security.AccessTokenDuration,
		RefreshTokenTTL:    config.Security.RefreshTokenDuration,
	}

	authRepo := authPostgres.NewAuthRepository(db)
	authService := auth.NewService(authRepo, tokenGen, lg)
	authHandler := auth.NewHandler(authService)

	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo, lg)
	userHandler := user.NewHandler(userService)

	imageRepo := imagePostgres.NewImageRepository(gormDB)
	imageService := image.NewService(imageRepo, lg)
	imageHandler := image.NewHandler(imageService)

	issueRepo := issuePostgres.NewIssueRepository(gormDB)
	issueService := issue.NewService(
		issueRepo,
		userService,
		&imageLinker{svc: imageService},
		bus,
		issue.Thresholds{
			IssueReports:   config.Moderation.IssueReportsThreshold,
			UserViolations: config.Moderation.UserViolationsThreshold,
		},
		lg,
	)
	issueHandler := issue.NewHandler(issueService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.RouterDeps{
		DB:            db.DB,
		Redis:         rdb,
		AuthHandler:   authHandler,
		UserHandler:   userHandler,
		IssueHandler:  issueHandler,
		ImageHandler:  imageHandler,
		DailyIssueCap: config.Moderation.DailyIssueLimit,
		Logger:        lg,
	})

	return &Dependencies{
		Config: config,
		DB:     db,
		Redis:  rdb,
		Router: router,
		Logger: lg,
	}, nil
}

// imageLinker adapts the image service to the issue engine's ImageStore
// without coupling the two packages.
type imageLinker struct {
	svc *image.Service
}

func (a *imageLinker) LinkToIssue(ctx context.Context, issueID, ownerID int64, imageIDs []string) ([]issue.ImageRef, error) {
	linked, err := a.svc.LinkToIssue(ctx, issueID, ownerID, imageIDs)
	if err != nil {
		return nil, err
	}
	refs := make([]issue.ImageRef, 0, len(linked))
	for _, img := range linked {
		refs = append(refs, issue.ImageRef{ID: img.ID, URL: img.URL})
	}
	return refs, nil
}

// registerAuditSubscribers logs every moderation state change so escalations
// leave a trail even without an external audit sink.
func registerAuditSubscribers(bus *events.EventBus, lg *slog.Logger) {
	logEvent := func(ctx context.Context, e events.Event) error {
		lg.Info("moderation event",
			"event_type", e.EventType(),
			"event_id", e.EventID(),
			"payload", e.Payload())
		return nil
	}
	bus.Subscribe(events.EventTypeIssueFlagged, logEvent)
	bus.Subscribe(events.EventTypeIssueCleared, logEvent)
	bus.Subscribe(events.EventTypeUserSuspended, logEvent)
	bus.Subscribe(events.EventTypeUserReinstated, logEvent)
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
