package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"searchuser-api/internal/user/domain"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id with telephones loaded, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, `SELECT id, email, name, password_hash, created_at, updated_at, last_login_at
		 FROM users WHERE id = $1`, id)
}

// GetByEmail returns the user with the given email with telephones loaded,
// or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, `SELECT id, email, name, password_hash, created_at, updated_at, last_login_at
		 FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) getBy(ctx context.Context, query, arg string) (*domain.User, error) {
	u := &domain.User{}
	var lastLogin sql.NullTime
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	if err := r.loadTelephones(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepository) loadTelephones(ctx context.Context, u *domain.User) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, number FROM telephones WHERE user_id = $1 ORDER BY id`,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("query telephones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tel domain.Telephone
		if err := rows.Scan(&tel.ID, &tel.UserID, &tel.Number); err != nil {
			return fmt.Errorf("scan telephone: %w", err)
		}
		u.Telephones = append(u.Telephones, tel)
	}
	return rows.Err()
}

// Create persists the user and its telephones in a single transaction.
// The user must have ID set; it is not assigned by this method.
// Returns ErrDuplicateEmail when the email uniqueness constraint fires.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at, updated_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt, u.UpdatedAt, nullTime(u.LastLoginAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	for _, tel := range u.Telephones {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO telephones (id, user_id, number) VALUES ($1, $2, $3)`,
			tel.ID, u.ID, tel.Number,
		)
		if err != nil {
			return fmt.Errorf("insert telephone: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Update rewrites the user's mutable columns. Telephones are not touched.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = $2, updated_at = $3, last_login_at = $4 WHERE id = $1`,
		u.ID, u.Name, u.UpdatedAt, nullTime(u.LastLoginAt),
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
