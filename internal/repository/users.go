package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

func (r *Repository) CreateUser(user *domain.User) error {
	if err := user.Metadata.ValidateFor(user.Role); err != nil {
		return err
	}

	metadata, err := json.Marshal(user.Metadata)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, role, validation_state, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{user.Username, user.PasswordHash, user.Role, user.ValidationState, metadata}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	query := `
		SELECT username, password_hash, role, validation_state, metadata, last_login_at, created_at, version
		FROM users WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	var metadata []byte
	dst := []any{&user.Username, &user.PasswordHash, &user.Role, &user.ValidationState, &metadata, &user.LastLoginAt, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadata, &user.Metadata); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByUsername(username string) (*domain.User, error) {
	query := `
		SELECT id, password_hash, role, validation_state, metadata, last_login_at, created_at, version
		FROM users WHERE username = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		Username: username,
	}

	var metadata []byte
	dst := []any{&user.ID, &user.PasswordHash, &user.Role, &user.ValidationState, &metadata, &user.LastLoginAt, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadata, &user.Metadata); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetPendingUsers() ([]*domain.User, error) {
	query := `
		SELECT id, username, role, validation_state, metadata, last_login_at, created_at, version
		FROM users WHERE validation_state = $1
		ORDER BY created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, domain.ValidationPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		var metadata []byte
		dst := []any{&user.ID, &user.Username, &user.Role, &user.ValidationState, &metadata, &user.LastLoginAt, &user.CreatedAt, &user.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadata, &user.Metadata); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) ApproveUser(id int64) error {
	query := `
		UPDATE users
		SET validation_state = $1, version = version + 1
		WHERE id = $2 AND validation_state = $3
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var returned int64
	if err := r.dbpool.QueryRowContext(ctx, query, domain.ValidationApproved, id, domain.ValidationPending).Scan(&returned); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateLastLogin(id int64, at time.Time) error {
	query := `
		UPDATE users SET last_login_at = $1 WHERE id = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, at, id)
	return err
}

// DeleteUser removes the user and, through the foreign key cascade, its role
// profile.
func (r *Repository) DeleteUser(id int64) error {
	query := `
		DELETE FROM users WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}
