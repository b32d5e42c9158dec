package availability

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const windowColumns = `id, doctor_id, kind, weekday, date, start_minutes, end_minutes, slot_duration_minutes, created_at, updated_at`

func scanWindow(row pgx.Row) (*AvailabilityWindow, error) {
	var w AvailabilityWindow
	var weekday *int16
	var date *time.Time
	var startMin, endMin int
	var slotMin *int

	err := row.Scan(
		&w.ID,
		&w.DoctorID,
		&w.Kind,
		&weekday,
		&date,
		&startMin,
		&endMin,
		&slotMin,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWindowNotFound
		}
		return nil, err
	}

	if weekday != nil {
		w.Weekday = time.Weekday(*weekday)
	}
	if date != nil {
		w.Date = *date
	}
	w.Start = TimeOfDay(startMin)
	w.End = TimeOfDay(endMin)
	if slotMin != nil {
		w.SlotDuration = time.Duration(*slotMin) * time.Minute
	}
	return &w, nil
}

func windowArgs(w *AvailabilityWindow) (weekday *int16, date *time.Time, slotMin *int) {
	switch w.Kind {
	case KindRecurring:
		wd := int16(w.Weekday)
		weekday = &wd
	case KindDated:
		d := w.Date
		date = &d
		mins := int(w.SlotDuration / time.Minute)
		slotMin = &mins
	}
	return weekday, date, slotMin
}

func (r *PgRepository) Insert(ctx context.Context, w *AvailabilityWindow) error {
	weekday, date, slotMin := windowArgs(w)

	row := r.pool.QueryRow(ctx, `
		INSERT INTO availability_windows (id, doctor_id, kind, weekday, date, start_minutes, end_minutes, slot_duration_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING created_at, updated_at
	`, w.ID, w.DoctorID, w.Kind, weekday, date, int(w.Start), int(w.End), slotMin)

	return row.Scan(&w.CreatedAt, &w.UpdatedAt)
}

func (r *PgRepository) Update(ctx context.Context, w *AvailabilityWindow) error {
	weekday, date, slotMin := windowArgs(w)

	row := r.pool.QueryRow(ctx, `
		UPDATE availability_windows
		SET kind = $2,
		    weekday = $3,
		    date = $4,
		    start_minutes = $5,
		    end_minutes = $6,
		    slot_duration_minutes = $7,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, w.ID, w.Kind, weekday, date, int(w.Start), int(w.End), slotMin)

	err := row.Scan(&w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrWindowNotFound
	}
	return err
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*AvailabilityWindow, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+windowColumns+`
		FROM availability_windows
		WHERE id = $1
	`, id)
	return scanWindow(row)
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM availability_windows
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWindowNotFound
	}
	return nil
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]AvailabilityWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+windowColumns+`
		FROM availability_windows
		WHERE doctor_id = $1
		ORDER BY kind, weekday, date, start_minutes
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AvailabilityWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
