package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"recipebox/internal/api"
	"recipebox/internal/auth"
	"recipebox/internal/config"
	"recipebox/internal/favorites"
	"recipebox/internal/session"
	"recipebox/internal/spoonacular"
	"recipebox/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	initLogger(cfg.LogLevel, cfg.LogstashAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.WithError(err).Fatal("Server stopped")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	db, err := storage.Open(cfg.DB, logger)
	if err != nil {
		return err
	}
	if err := storage.Migrate(ctx, db); err != nil {
		return err
	}
	store := storage.NewStore(db)
	defer func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Error("Failed to close database")
		}
	}()

	authService, err := auth.NewService(store.Users, 0, logger)
	if err != nil {
		return err
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		logger.Warn("SECRET_KEY is not set, generating a random key; sessions will not survive a restart")
		secret = securecookie.GenerateRandomKey(32)
		if secret == nil {
			return errors.New("generate session key")
		}
	}
	sessionStore := session.NewStore(store.Sessions, cfg.SessionMaxAge, cfg.IsProduction(), logger, secret)

	if cfg.Provider.APIKey == "" {
		logger.Warn("API_KEY is not set, recipe lookups will be rejected upstream")
	}
	metrics := api.InitMetrics()
	provider, err := spoonacular.NewClient(cfg.Provider, spoonacular.WithObserver(metrics.ObserveProvider))
	if err != nil {
		return err
	}

	a := api.New(api.Deps{
		Auth:      authService,
		Sessions:  session.NewManager(sessionStore),
		Recipes:   provider,
		Favorites: favorites.NewService(store, logger),
		DB:        store,
		Metrics:   metrics,
		Logger:    logger,
	})

	opts := api.Options{CORSOrigins: cfg.CORSOrigins}
	if cfg.IsProduction() {
		opts.StaticDir = cfg.StaticDir
	}
	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           a.Handler(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(logrus.Fields{"addr": cfg.Port, "env": cfg.Environment}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessionStore.Sweep(ctx, cfg.SessionCleanupInterval)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
