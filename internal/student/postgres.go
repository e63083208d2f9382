package student

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"studentattendance/internal/repository"
)

const uniqueViolation = "23505"

// PostgresRepository persists students in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a repo.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the students table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS students (
			id        SERIAL PRIMARY KEY,
			full_name TEXT NOT NULL,
			email     TEXT UNIQUE NOT NULL
		)
	`)
	return err
}

// Create inserts a student and fills in the store-assigned id.
func (r *PostgresRepository) Create(ctx context.Context, st *Student) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (full_name, email)
		VALUES ($1, $2)
		RETURNING id
	`, st.FullName, st.Email)
	if err := row.Scan(&st.ID); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// List returns up to limit students ordered by id.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, full_name, email FROM students ORDER BY id LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return scanStudents(rows)
}

// ListAll returns every student ordered by id.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, full_name, email FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanStudents(rows)
}

// Get returns a single student by id.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, full_name, email FROM students WHERE id = $1`, id)
	var st Student
	if err := row.Scan(&st.ID, &st.FullName, &st.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

func scanStudents(rows *sql.Rows) ([]Student, error) {
	defer rows.Close()
	res := []Student{}
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.FullName, &st.Email); err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
