package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const version = "1.0.0"

type config struct {
	port int
	env  string
	db   struct {
		driver             string
		dsn                string
		maxOpenConnections int
		maxIdleConnections int
		maxIdleTime        time.Duration
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	session struct {
		secret string
		ttl    time.Duration
		secure bool
	}
	gemini struct {
		baseURL string
		model   string
		timeout time.Duration
	}
}

type application struct {
	config    config
	logger    *logrus.Logger
	storage   *storage
	accounts  *accountService
	notes     *noteService
	tasks     *taskService
	sessions  *sessionManager
	chat      chatClient
	mailer    welcomeSender
	metrics   *metrics
	templates map[string]*template.Template
	wg        sync.WaitGroup
}

func main() {
	logger := logrus.New()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).Warn("could not load .env file")
	}

	cfg := parseConfig(logger)
	if cfg.env == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := openDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("could not open database")
	}
	logger.WithField("driver", cfg.db.driver).Info("established a connection with database")

	if cfg.session.secret == "" {
		secret := make([]byte, 32)
		_, err = rand.Read(secret)
		if err != nil {
			logger.WithError(err).Fatal("could not generate session secret")
		}
		cfg.session.secret = hex.EncodeToString(secret)
		logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	app, err := newApplication(cfg, logger, db, bcrypt.DefaultCost)
	if err != nil {
		logger.WithError(err).Fatal("could not initialise application")
	}
	if cfg.smtp.host != "" {
		app.mailer = newMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.port),
		Handler:      composeRoutes(app),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.gemini.timeout + 10*time.Second,
	}
	if err := app.serve(srv); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

// serve runs srv until SIGINT or SIGTERM, then drains in-flight requests
// and background mail before returning.
func (app *application) serve(srv *http.Server) error {
	shutdownErr := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit
		app.logger.WithField("signal", s.String()).Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			shutdownErr <- err
			return
		}
		app.wg.Wait()
		shutdownErr <- nil
	}()

	app.logger.Infof("Starting %s server on %s", app.config.env, srv.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		return err
	}
	app.logger.Info("stopped server")
	return nil
}

func parseConfig(logger *logrus.Logger) config {
	var cfg config
	flag.IntVar(&cfg.port, "port", envInt(logger, "PORT", 5000), "Server port")
	flag.StringVar(&cfg.env, "env", envString("ENV", "development"), "Environment [development|production]")

	flag.StringVar(&cfg.db.driver, "db-driver", envString("DB_DRIVER", "sqlite"), "Database driver [sqlite|postgres]")
	flag.StringVar(&cfg.db.dsn, "db-dsn", envString("DB_DSN", "database.db"), "Database DSN or sqlite file")
	flag.IntVar(&cfg.db.maxOpenConnections, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.IntVar(&cfg.db.maxIdleConnections, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	flag.DurationVar(&cfg.db.maxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max connection idle time")

	flag.StringVar(&cfg.smtp.host, "smtp-host", os.Getenv("SMTP_HOST"), "SMTP host, welcome mail is disabled when empty")
	flag.IntVar(&cfg.smtp.port, "smtp-port", envInt(logger, "SMTP_PORT", 25), "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", os.Getenv("SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", os.Getenv("SMTP_SENDER"), "SMTP sender")

	flag.StringVar(&cfg.session.secret, "session-secret", os.Getenv("SESSION_SECRET"), "Session signing secret")
	flag.DurationVar(&cfg.session.ttl, "session-ttl", envDuration(logger, "SESSION_TTL", 30*24*time.Hour), "Session lifetime")
	flag.BoolVar(&cfg.session.secure, "session-secure", false, "Mark the session cookie Secure")

	flag.StringVar(&cfg.gemini.baseURL, "gemini-base-url", envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"), "Gemini API base URL")
	flag.StringVar(&cfg.gemini.model, "gemini-model", envString("GEMINI_MODEL", "gemini-2.0-flash"), "Gemini model")
	flag.DurationVar(&cfg.gemini.timeout, "gemini-timeout", envDuration(logger, "GEMINI_TIMEOUT", 30*time.Second), "Gemini request timeout")
	flag.Parse()

	return cfg
}

func newApplication(cfg config, logger *logrus.Logger, db *gorm.DB, hashCost int) (*application, error) {
	st := newStorage(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := st.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	templates, err := newTemplateCache()
	if err != nil {
		return nil, err
	}

	return &application{
		config:    cfg,
		logger:    logger,
		storage:   st,
		accounts:  &accountService{storage: st, hashCost: hashCost},
		notes:     &noteService{storage: st},
		tasks:     &taskService{storage: st},
		sessions:  newSessionManager([]byte(cfg.session.secret), cfg.session.ttl, cfg.session.secure),
		chat:      newGeminiClient(cfg.gemini.baseURL, cfg.gemini.model, cfg.gemini.timeout),
		metrics:   newMetrics(),
		templates: templates,
	}, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(logger *logrus.Logger, key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warnf("invalid value %q for %s defaulting to %d", v, key, fallback)
		return fallback
	}
	return n
}

func envDuration(logger *logrus.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warnf("invalid value %q for %s defaulting to %s", v, key, fallback)
		return fallback
	}
	return d
}
