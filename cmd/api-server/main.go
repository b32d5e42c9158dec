package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicbook/appointment-booking/internal/api"
	"github.com/clinicbook/appointment-booking/internal/availability"
	"github.com/clinicbook/appointment-booking/internal/booking"
	"github.com/clinicbook/appointment-booking/internal/config"
	"github.com/clinicbook/appointment-booking/internal/db"
	"github.com/clinicbook/appointment-booking/internal/identity"
	"github.com/clinicbook/appointment-booking/internal/notify"
	redisclient "github.com/clinicbook/appointment-booking/internal/redis"
)

const version = "0.1.0"

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api-server").Logger()
	log.Info().Msg("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("configuration loaded")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	tokens := identity.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	identityRepo := identity.NewPgRepository(pgPool)
	identitySvc := identity.NewService(identityRepo, tokens)

	availabilityStore := availability.NewStore(availability.NewPgRepository(pgPool))

	var notifier notify.Notifier
	if cfg.SendGridAPIKey != "" {
		notifier = notify.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFromAddr)
	} else {
		notifier = notify.NewLogNotifier(log)
		log.Info().Msg("SENDGRID_API_KEY not set, notifications are log only")
	}

	locker := redisclient.NewRedisDoctorLocker(rdb, cfg.LockTTL)
	bookingSvc := booking.NewService(
		booking.NewPgRepository(pgPool),
		availabilityStore,
		identitySvc,
		locker,
		notifier,
		log,
	)

	router := api.NewRouter(api.RouterConfig{
		Identity:     identitySvc,
		Availability: availabilityStore,
		Booking:      bookingSvc,
		Tokens:       tokens,
		PgPool:       pgPool,
		Redis:        rdb,
		Log:          log,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
