package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor

	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Name,
		&d.Email,
		&d.Specialty,
		&d.Approved,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.DateOfBirth,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PgRepository) CreateUserWithProfile(ctx context.Context, u *User, d *Doctor, p *Patient) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.Role)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	switch {
	case d != nil:
		_, err = tx.Exec(ctx, `
			INSERT INTO doctors (id, user_id, specialty, approved, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, d.ID, d.UserID, d.Specialty, d.Approved)
		if err != nil {
			return fmt.Errorf("insert doctor: %w", err)
		}
	case p != nil:
		_, err = tx.Exec(ctx, `
			INSERT INTO patients (id, user_id, phone, date_of_birth, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, p.ID, p.UserID, p.Phone, p.DateOfBirth)
		if err != nil {
			return fmt.Errorf("insert patient: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PgRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)

	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

const doctorSelect = `
	SELECT d.id, d.user_id, u.name, u.email, d.specialty, d.approved, d.created_at, d.updated_at
	FROM doctors d
	JOIN users u ON u.id = d.user_id
`

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, doctorSelect+`WHERE d.id = $1`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, doctorSelect+`WHERE d.user_id = $1`, userID)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context, filter DoctorFilter) ([]Doctor, error) {
	query := doctorSelect + `WHERE 1=1`
	args := []any{}

	if filter.ApprovedOnly {
		query += ` AND d.approved`
	}
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		query += fmt.Sprintf(` AND u.name ILIKE $%d`, len(args))
	}
	if filter.Specialty != "" {
		args = append(args, "%"+filter.Specialty+"%")
		query += fmt.Sprintf(` AND d.specialty ILIKE $%d`, len(args))
	}
	query += ` ORDER BY u.name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

const patientSelect = `
	SELECT p.id, p.user_id, u.name, u.email, p.phone, p.date_of_birth, p.created_at, p.updated_at
	FROM patients p
	JOIN users u ON u.id = p.user_id
`

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, patientSelect+`WHERE p.id = $1`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetPatientByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, patientSelect+`WHERE p.user_id = $1`, userID)
	return scanPatient(row)
}
