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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Tandem/internal/adapters/http"
	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/dkeye/Tandem/internal/config"
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/migrate"
	"github.com/dkeye/Tandem/internal/notify"
	"github.com/dkeye/Tandem/internal/repository"
	badgerrepo "github.com/dkeye/Tandem/internal/repository/badger"
	"github.com/dkeye/Tandem/internal/repository/postgres"
)

func openStore(ctx context.Context, cfg config.Store) (repository.MessageStore, func(), error) {
	switch cfg.Driver {
	case "postgres":
		if cfg.Migrate {
			if err := migrate.Up(ctx, cfg.DSN); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewMessageRepo(db), db.Close, nil
	default:
		db, err := badgerrepo.Open(cfg.BadgerPath)
		if err != nil {
			return nil, nil, fmt.Errorf("badger open: %w", err)
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				log.Error().Err(err).Msg("badger close")
			}
		}
		return badgerrepo.NewMessageRepo(db), closeFn, nil
	}
}

func newNotifier(ctx context.Context, cfg config.Notify) (core.Notifier, error) {
	if cfg.Driver == "fcm" {
		return notify.NewFCM(ctx, cfg.CredentialsFile)
	}
	return notify.LogNotifier{}, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	config.ApplyLogLevel(cfg.LogLevel)

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	defer closeStore()

	notifier, err := newNotifier(ctx, cfg.Notify)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init notifier")
	}

	ice, err := cfg.ICEServers()
	if err != nil {
		log.Fatal().Err(err).Msg("bad ice servers")
	}

	o := orch.New(store, notifier, orch.Options{
		NotificationTitle: cfg.Notify.Title,
		NotifyTimeout:     cfg.Notify.Timeout,
		NotifyPeerLeft:    cfg.Signaling.NotifyPeerLeft,
		MaxMessageLen:     cfg.MaxMessageLen,
		ICEServers:        ice,
	})

	r := router.SetupRouter(ctx, cfg, o, store)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Tandem server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	o.Drain()
	log.Info().Msg("Server exited gracefully")
}
