package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository хранит пользователей. Уникальность email и user_name
// обеспечивает само хранилище: Create возвращает ErrUserExists.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmailOrUserName(ctx context.Context, email, userName string) (bool, error)
	UpdateImage(ctx context.Context, userID, publicID string) error
	Count(ctx context.Context) (int64, error)
	ListExcluding(ctx context.Context, excludeUserID string, offset, limit int) ([]Summary, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `user_id, first_name, last_name, email, password, phone_number, user_name, image_public_id, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.UserID, &u.FirstName, &u.LastName, &u.Email, &u.Password,
		&u.PhoneNumber, &u.UserName, &u.ImagePublicID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *postgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (user_id, first_name, last_name, email, password, phone_number, user_name, image_public_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		u.UserID, u.FirstName, u.LastName, u.Email, u.Password, u.PhoneNumber, u.UserName, u.ImagePublicID,
	).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrUserExists
		}
		return fmt.Errorf("repository: failed to insert user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, userID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("repository: failed to get user by id: %w", err)
	}
	return u, err
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("repository: failed to get user by email: %w", err)
	}
	return u, err
}

func (r *postgresRepository) ExistsByEmailOrUserName(ctx context.Context, email, userName string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR user_name = $2)`
	if err := r.db.QueryRow(ctx, query, email, userName).Scan(&exists); err != nil {
		return false, fmt.Errorf("repository: failed to check user existence: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) UpdateImage(ctx context.Context, userID, publicID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET image_public_id = $2 WHERE user_id = $1`, userID, publicID)
	if err != nil {
		return fmt.Errorf("repository: failed to update image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count users: %w", err)
	}
	return count, nil
}

// ListExcluding returns users in insertion order, skipping offset rows.
func (r *postgresRepository) ListExcluding(ctx context.Context, excludeUserID string, offset, limit int) ([]Summary, error) {
	query := `
		SELECT user_id, user_name, first_name, image_public_id
		FROM users
		WHERE user_id <> $1
		ORDER BY seq
		OFFSET $2 LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, excludeUserID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list users: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0, limit)
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.UserID, &s.UserName, &s.FirstName, &s.ImagePublicID); err != nil {
			return nil, fmt.Errorf("repository: failed to scan user: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed to iterate users: %w", err)
	}

	return summaries, nil
}
