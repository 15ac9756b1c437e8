package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sso-backend/internal/domain"
	"sso-backend/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL DEFAULT '',
	full_name TEXT NOT NULL,
	provider TEXT NOT NULL DEFAULT 'local',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const userColumns = `id, email, hashed_password, full_name, provider, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE email = ?`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) CreateLocal(ctx context.Context, email, passwordHash, fullName string) (*domain.User, error) {
	if passwordHash == "" {
		return nil, errors.New("local user requires a password hash")
	}
	return r.insert(ctx, &domain.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Provider:     domain.ProviderLocal,
	})
}

func (r *UserRepository) CreateExternal(ctx context.Context, email, fullName string, provider domain.Provider) (*domain.User, error) {
	if provider == "" || provider == domain.ProviderLocal {
		return nil, fmt.Errorf("invalid external provider %q", provider)
	}
	return r.insert(ctx, &domain.User{
		Email:    email,
		FullName: fullName,
		Provider: provider,
	})
}

func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+userColumns+`
FROM users
ORDER BY id
LIMIT ? OFFSET ?`,
		limit,
		skip,
	)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (email, hashed_password, full_name, provider, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		user.Email,
		user.PasswordHash,
		user.FullName,
		string(user.Provider),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, fmt.Errorf("%w: %s", repository.ErrAlreadyExists, user.Email)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return user, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user     domain.User
		provider string
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&provider,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Provider = domain.Provider(provider)
	return &user, nil
}
