package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/clinicbook/appointment-booking/internal/availability"
	"github.com/clinicbook/appointment-booking/internal/booking"
	"github.com/clinicbook/appointment-booking/internal/config"
	"github.com/clinicbook/appointment-booking/internal/db"
	"github.com/clinicbook/appointment-booking/internal/identity"
	"github.com/clinicbook/appointment-booking/internal/notify"
	redisclient "github.com/clinicbook/appointment-booking/internal/redis"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "reminder-worker").Logger()
	log.Info().Msg("reminder-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	log.Info().Str("env", cfg.Env).Str("schedule", cfg.ReminderCron).Msg("configuration loaded")

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

	identitySvc := identity.NewService(identity.NewPgRepository(pgPool), identity.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL))
	availabilityStore := availability.NewStore(availability.NewPgRepository(pgPool))

	var notifier notify.Notifier
	if cfg.SendGridAPIKey != "" {
		notifier = notify.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFromAddr)
	} else {
		notifier = notify.NewLogNotifier(log)
		log.Info().Msg("SENDGRID_API_KEY not set, reminders are log only")
	}

	svc := booking.NewService(
		booking.NewPgRepository(pgPool),
		availabilityStore,
		identitySvc,
		redisclient.NewRedisDoctorLocker(rdb, cfg.LockTTL),
		notifier,
		log,
	)

	c := cron.New()
	if _, err := c.AddFunc(cfg.ReminderCron, func() { runOnce(rootCtx, svc, log) }); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.ReminderCron).Msg("invalid reminder schedule")
	}
	c.Start()

	<-rootCtx.Done()
	log.Info().Msg("shutdown signal received, stopping reminder worker")
	<-c.Stop().Done()
}

// runOnce reminds everyone with an appointment tomorrow (local calendar day).
func runOnce(ctx context.Context, svc *booking.Service, log zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
	to := from.Add(24 * time.Hour)

	start := time.Now()
	sent, failed, err := svc.SendReminders(runCtx, from, to)
	if err != nil {
		log.Error().Err(err).Msg("reminder run error")
		return
	}
	log.Info().
		Int("sent", sent).
		Int("failed", failed).
		Dur("took", time.Since(start)).
		Time("window_from", from).
		Msg("reminder run complete")
}
