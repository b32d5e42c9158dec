package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicbook/appointment-booking/internal/availability"
	"github.com/clinicbook/appointment-booking/internal/booking"
	"github.com/clinicbook/appointment-booking/internal/identity"
)

type RouterConfig struct {
	Identity     *identity.Service
	Availability *availability.Store
	Booking      *booking.Service
	Tokens       *identity.TokenManager
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Log          zerolog.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Public endpoints
	r.Post("/auth/register", registerHandler(cfg.Identity))
	r.Post("/auth/login", loginHandler(cfg.Identity))

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens))

		r.Get("/doctors", listDoctorsHandler(cfg.Identity))
		r.Get("/doctors/{id}", getDoctorHandler(cfg.Identity))
		r.Get("/doctors/{id}/slots", doctorSlotsHandler(cfg.Booking))
		r.Get("/doctors/{id}/availability", doctorAvailabilityHandler(cfg.Availability))

		r.Post("/availability", declareWindowHandler(cfg.Availability))
		r.Get("/availability", listOwnWindowsHandler(cfg.Availability))
		r.Put("/availability/{id}", updateWindowHandler(cfg.Availability))
		r.Delete("/availability/{id}", deleteWindowHandler(cfg.Availability))

		r.Post("/appointments", createAppointmentHandler(cfg.Booking))
		r.Get("/appointments", listAppointmentsHandler(cfg.Booking))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Booking))
		r.Put("/appointments/{id}", rescheduleAppointmentHandler(cfg.Booking))
		r.Delete("/appointments/{id}", cancelAppointmentHandler(cfg.Booking))
	})

	return r
}
