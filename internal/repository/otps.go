package repository

import (
	"context"
	"time"

	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

// ReplaceOneTimeCode deletes any previous codes for the phone and inserts the
// new one in a single transaction, so at most one live code exists per phone.
func (r *Repository) ReplaceOneTimeCode(code *domain.OneTimeCode) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM one_time_codes WHERE phone = $1`, code.Phone); err != nil {
		return err
	}

	query := `
		INSERT INTO one_time_codes (phone, code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, verified, created_at
	`
	if err := tx.QueryRowContext(ctx, query, code.Phone, code.Code, code.ExpiresAt).Scan(&code.ID, &code.Verified, &code.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetOneTimeCode(phone string) (*domain.OneTimeCode, error) {
	query := `
		SELECT id, code, expires_at, verified, created_at
		FROM one_time_codes WHERE phone = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	code := &domain.OneTimeCode{
		Phone: phone,
	}

	dst := []any{&code.ID, &code.Code, &code.ExpiresAt, &code.Verified, &code.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, phone).Scan(dst...); err != nil {
		return nil, err
	}

	return code, nil
}

// MarkOneTimeCodeVerified consumes the code. Verified rows are never updated
// again.
func (r *Repository) MarkOneTimeCodeVerified(id int64) error {
	query := `
		UPDATE one_time_codes SET verified = TRUE WHERE id = $1 AND verified = FALSE
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}
