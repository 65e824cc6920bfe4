package labbook

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/sessions"
	"github.com/nasermirzaei89/env"
	"github.com/nasermirzaei89/labbook/authentication"
	"github.com/nasermirzaei89/labbook/authorization"
	"github.com/nasermirzaei89/labbook/authorization/casbin"
	"github.com/nasermirzaei89/labbook/db/sqlite3"
	"github.com/nasermirzaei89/labbook/discuss"
	"github.com/nasermirzaei89/labbook/mail"
	"github.com/nasermirzaei89/labbook/metrics"
	"github.com/nasermirzaei89/labbook/notify"
	"github.com/nasermirzaei89/labbook/random"
	"github.com/nasermirzaei89/labbook/records"
	"github.com/nasermirzaei89/labbook/server"
	"github.com/nasermirzaei89/labbook/web"
	"github.com/robfig/cron/v3"
)

const defaultSessionPurgeSchedule = "@hourly"

type App struct {
	server        *server.Server
	handler       http.Handler
	authSvc       *authentication.Service
	metrics       *metrics.Metrics
	purgeSchedule string
	db            *sql.DB
}

//go:embed policy.csv
var defaultAuthorizationPolicyContent string

// OpenDB opens the database named by DB_DSN.
func OpenDB(ctx context.Context) (*sql.DB, error) {
	db, err := sqlite3.NewDB(ctx, env.GetString("DB_DSN", sqlite3.DefaultDSN))
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	return db, nil
}

func NewApp(ctx context.Context) (*App, error) {
	db, err := OpenDB(ctx)
	if err != nil {
		return nil, err
	}

	app, err := newApp(ctx, db)
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			slog.ErrorContext(ctx, "failed to close database", "error", closeErr)
		}

		return nil, err
	}

	return app, nil
}

func newApp(ctx context.Context, db *sql.DB) (*App, error) {
	err := sqlite3.MigrateUp(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	userRepo := sqlite3.NewUserRepository(db)
	sessionRepo := sqlite3.NewSessionRepository(db)
	recordRepo := sqlite3.NewRecordRepository(db)
	commentRepo := sqlite3.NewCommentRepository(db)
	directoryRepo := sqlite3.NewDirectoryRepository(db)

	authzProvider, err := newAuthorizationProvider(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorization provider: %w", err)
	}

	authzSvc, err := authorization.NewService(authzProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorization service: %w", err)
	}

	authzClient := authorization.NewClient(authzSvc)
	authSvc := authentication.NewService(userRepo, sessionRepo, authzClient)

	err = authSvc.LoadEmailFilter(ctx, 10_000, 0.01)
	if err != nil {
		return nil, fmt.Errorf("failed to load email filter: %w", err)
	}

	appMetrics := metrics.New()

	dispatcher, err := notify.NewDispatcher(newNotifyConfig(), directoryRepo, newMailer())
	if err != nil {
		return nil, fmt.Errorf("failed to create notification dispatcher: %w", err)
	}

	notifier := discuss.NewMetricsNotifier(appMetrics.NotificationsTotal, dispatcher)

	recordsSvc := records.NewAuthorizationMiddleware(authzClient, records.NewService(recordRepo))
	discussSvc := discuss.NewAuthorizationMiddleware(
		authzClient,
		discuss.NewMetricsMiddleware(appMetrics.CommentOperationsTotal, discuss.NewService(commentRepo, notifier)),
	)

	srv := newServer()

	sessionName := env.GetString("SESSION_NAME", "labbook-"+random.Hex(4))
	sessionKey := env.GetString("SESSION_KEY", random.Hex(32))
	cookieStore := sessions.NewCookieStore([]byte(sessionKey))
	cookieStore.Options.HttpOnly = true
	cookieStore.Options.Secure = srv.TLS.Enabled
	cookieStore.Options.SameSite = http.SameSiteLaxMode

	csrfAuthKeys := []byte(env.GetString("CSRF_AUTH_KEY", random.Hex(16)))
	csrfTrustedOrigins := env.GetStringSlice("CSRF_TRUSTED_ORIGINS", []string{})

	httpHandler, err := web.NewHandler(
		authSvc,
		recordsSvc,
		discussSvc,
		cookieStore,
		sessionName,
		csrfAuthKeys,
		csrfTrustedOrigins,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP handler: %w", err)
	}

	app := &App{
		server:        srv,
		handler:       newRootHandler(appMetrics, httpHandler, env.GetBool("METRICS_ENABLED", true)),
		authSvc:       authSvc,
		metrics:       appMetrics,
		purgeSchedule: env.GetString("SESSION_PURGE_SCHEDULE", defaultSessionPurgeSchedule),
		db:            db,
	}

	return app, nil
}

func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer app.Close(ctx)

	jobs, err := app.startJobs(ctx)
	if err != nil {
		return err
	}

	defer func() {
		<-jobs.Stop().Done()
	}()

	err = app.server.Run(ctx, app.handler)
	if err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	return nil
}

// RegisterUser creates an account without going through the web form.
func (app *App) RegisterUser(ctx context.Context, req authentication.RegisterRequest) (*authentication.User, error) {
	user, err := app.authSvc.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return user, nil
}

func (app *App) Close(ctx context.Context) {
	if app.db == nil {
		return
	}

	err := app.db.Close()
	if err != nil {
		slog.ErrorContext(ctx, "failed to close database", "error", err)
	}
}

// newRootHandler mounts the metrics endpoint next to the web handler.
func newRootHandler(appMetrics *metrics.Metrics, webHandler http.Handler, metricsEnabled bool) http.Handler {
	mux := http.NewServeMux()

	if metricsEnabled {
		mux.Handle("GET /metrics", appMetrics.Handler())
	}

	mux.Handle("/", appMetrics.Middleware(webHandler))

	return mux
}

func (app *App) startJobs(ctx context.Context) (*cron.Cron, error) {
	jobs := cron.New(cron.WithLogger(cronLogger{}))

	_, err := jobs.AddFunc(app.purgeSchedule, func() { app.purgeSessions(ctx) })
	if err != nil {
		return nil, fmt.Errorf("failed to schedule session purge %q: %w", app.purgeSchedule, err)
	}

	jobs.Start()

	return jobs, nil
}

func (app *App) purgeSessions(ctx context.Context) {
	deleted, err := app.authSvc.PurgeExpiredSessions(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to purge expired sessions", "error", err)

		return
	}

	app.metrics.SessionsPurgedTotal.Add(float64(deleted))

	slog.DebugContext(ctx, "expired sessions purged", "count", deleted)
}

// cronLogger routes scheduler logs to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

func newServer() *server.Server {
	server := &server.Server{
		Port: env.GetString("PORT", server.DefaultPort),
		Host: env.GetString("HOST", ""),
		TLS: server.ServerTLS{
			Enabled: env.GetBool("TLS_ENABLED", false),
			Mode:    env.GetString("TLS_MODE", server.DefaultTLSMode),
			AutoCert: &server.ServerTLSAutoCert{
				CacheDir: env.GetString("TLS_AUTOCERT_CACHE_DIR", "./cert-cache"),
				Domains:  env.GetStringSlice("TLS_AUTOCERT_DOMAINS", []string{}),
				Email:    env.GetString("TLS_AUTOCERT_EMAIL", ""),
			},
			CertFile: env.GetString("TLS_CERT_FILE", ""),
			KeyFile:  env.GetString("TLS_KEY_FILE", ""),
		},
	}

	return server
}

func newMailConfig() mail.Config {
	return mail.Config{
		Host: env.GetString("SMTP_HOST", ""),
		Port: env.GetString("SMTP_PORT", "587"),
		User: env.GetString("SMTP_USER", ""),
		Pass: env.GetString("SMTP_PASS", ""),
		From: env.GetString("MAIL_FROM", ""),
	}
}

// newMailer falls back to logging messages when SMTP is not configured.
func newMailer() mail.Mailer {
	cfg := newMailConfig()
	if !cfg.IsConfigured() {
		slog.Warn("smtp is not configured, emails will be logged")

		return mail.NewLogMailer(slog.Default())
	}

	return mail.NewSMTPMailer(cfg)
}

// newNotifyConfig enables mail by default only when a real sender is set.
func newNotifyConfig() notify.Config {
	from := env.GetString("MAIL_FROM", "")

	return notify.Config{
		Enabled:  env.GetBool("MAIL_ENABLED", from != "" && from != notify.UnconfiguredSender),
		From:     from,
		FromName: env.GetString("MAIL_FROM_NAME", ""),
		BaseURL:  env.GetString("BASE_URL", ""),
		Language: env.GetString("MAIL_LANGUAGE", "en"),
		AppName:  env.GetString("APP_NAME", "labbook"),
	}
}

func GetLogLevelFromEnv() slog.Level {
	levelStr := env.GetString("LOG_LEVEL", "info")
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, defaulting to info", "level", levelStr)

		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: GetLogLevelFromEnv()}

	switch format := env.GetString("LOG_FORMAT", "text"); format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	default:
		slog.Warn("unknown log format, defaulting to text", "format", format)

		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
}

func newAuthorizationProvider(ctx context.Context, db *sql.DB) (*casbin.AuthorizationProvider, error) {
	adapter, err := casbin.NewSQLiteAdapter(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorization adapter: %w", err)
	}

	provider, err := casbin.NewAuthorizationProvider(adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorization provider: %w", err)
	}

	policyContent, err := loadPolicyContent()
	if err != nil {
		return nil, fmt.Errorf("failed to load authorization policy content: %w", err)
	}

	err = provider.AddPolicyFromCSV(ctx, policyContent)
	if err != nil {
		return nil, fmt.Errorf("failed to add authorization policy from csv: %w", err)
	}

	return provider, nil
}

func loadPolicyContent() (string, error) {
	policyFilePath := env.GetString("AUTHORIZATION_POLICY_FILE", "")

	if policyFilePath == "" {
		return defaultAuthorizationPolicyContent, nil
	}

	content, err := os.ReadFile(policyFilePath) // nolint:gosec
	if err != nil {
		return "", fmt.Errorf("failed to read policy file %q: %w", policyFilePath, err)
	}

	return string(content), nil
}
