package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicbook/appointment-booking/internal/db"
)

// Every seeded account uses the same password so a dev can log in as anyone.
const seedPassword = "password123"

var log = zerolog.New(os.Stdout).With().Timestamp().Str("service", "seed").Logger()

func main() {
	log.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash seed password")
	}

	doctorIDs, err := seedDoctors(context.Background(), pool, string(hash), 50)
	if err != nil {
		log.Fatal().Err(err).Msg("seed doctors")
	}
	if err := seedPatients(context.Background(), pool, string(hash), 2000); err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}
	if err := seedWindows(context.Background(), pool, doctorIDs); err != nil {
		log.Fatal().Err(err).Msg("seed availability windows")
	}

	log.Info().Msg("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int) ([]uuid.UUID, error) {
	log.Info().Int("count", count).Msg("seeding doctors")

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		userID := uuid.New()
		doctorID := uuid.New()
		name := gofakeit.Name()
		email := fmt.Sprintf("doctor%d@%s", i+1, gofakeit.DomainName())
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'doctor', now(), now())
		`, userID, email, passwordHash, name)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO doctors (id, user_id, specialty, approved, created_at, updated_at)
			VALUES ($1, $2, $3, true, now(), now())
		`, doctorID, userID, spec)
		if err != nil {
			return nil, err
		}
		ids = append(ids, doctorID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Info().Msg("doctors seeded")
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int) error {
	log.Info().Int("count", count).Msg("seeding patients")

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			userID := uuid.New()
			name := gofakeit.Name()
			email := fmt.Sprintf("patient%d@%s", i+1, gofakeit.DomainName())
			phone := gofakeit.Phone()
			dob := gofakeit.DateRange(
				time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2007, 12, 31, 0, 0, 0, 0, time.UTC),
			)

			_, err := tx.Exec(ctx, `
				INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
				VALUES ($1, $2, $3, $4, 'patient', now(), now())
			`, userID, email, passwordHash, name)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO patients (id, user_id, phone, date_of_birth, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, uuid.New(), userID, phone, dob)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Info().Int("done", end).Int("total", count).Msg("patients seeded batch")
	}

	log.Info().Msg("patients seeded")
	return nil
}

// seedWindows gives every doctor a recurring weekday schedule plus a couple of
// one-off dated clinics in the next two weeks.
func seedWindows(ctx context.Context, pool *pgxpool.Pool, doctorIDs []uuid.UUID) error {
	log.Info().Int("doctors", len(doctorIDs)).Msg("seeding availability windows")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	today := time.Now().Truncate(24 * time.Hour)

	for _, doctorID := range doctorIDs {
		// Mon-Fri morning block, 09:00-12:00.
		for wd := time.Monday; wd <= time.Friday; wd++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO availability_windows (id, doctor_id, kind, weekday, date, start_minutes, end_minutes, slot_duration_minutes, created_at, updated_at)
				VALUES ($1, $2, 'recurring', $3, NULL, $4, $5, NULL, now(), now())
			`, uuid.New(), doctorID, int(wd), 9*60, 12*60)
			if err != nil {
				return err
			}
		}

		// Two dated afternoon clinics with their own slot length.
		for i := 0; i < 2; i++ {
			date := today.AddDate(0, 0, gofakeit.Number(1, 14))
			slotMinutes := []int{15, 20, 30}[gofakeit.Number(0, 2)]
			_, err := tx.Exec(ctx, `
				INSERT INTO availability_windows (id, doctor_id, kind, weekday, date, start_minutes, end_minutes, slot_duration_minutes, created_at, updated_at)
				VALUES ($1, $2, 'dated', NULL, $3, $4, $5, $6, now(), now())
			`, uuid.New(), doctorID, date, 14*60, 17*60, slotMinutes)
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info().Msg("availability windows seeded")
	return nil
}
