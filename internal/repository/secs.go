package repository

import (
	"context"
	"time"

	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

func (r *Repository) CreateSEC(sec *domain.SEC) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO secs (phone, full_name, store_id, photo_url, birth_date, marital_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, bonus_eligible, created_at
	`

	args := []any{sec.Phone, sec.FullName, sec.StoreID, sec.PhotoURL, sec.BirthDate, sec.MaritalStatus}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&sec.ID, &sec.BonusEligible, &sec.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSECByID(id int64) (*domain.SEC, error) {
	query := `
		SELECT phone, full_name, store_id, photo_url, birth_date, marital_status, bonus_eligible, created_at
		FROM secs WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	sec := &domain.SEC{
		ID: id,
	}

	dst := []any{&sec.Phone, &sec.FullName, &sec.StoreID, &sec.PhotoURL, &sec.BirthDate, &sec.MaritalStatus, &sec.BonusEligible, &sec.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return sec, nil
}

func (r *Repository) GetSECByPhone(phone string) (*domain.SEC, error) {
	query := `
		SELECT id, full_name, store_id, photo_url, birth_date, marital_status, bonus_eligible, created_at
		FROM secs WHERE phone = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	sec := &domain.SEC{
		Phone: phone,
	}

	dst := []any{&sec.ID, &sec.FullName, &sec.StoreID, &sec.PhotoURL, &sec.BirthDate, &sec.MaritalStatus, &sec.BonusEligible, &sec.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, phone).Scan(dst...); err != nil {
		return nil, err
	}

	return sec, nil
}

func (r *Repository) ListSECs() ([]*domain.SEC, error) {
	query := `
		SELECT id, phone, full_name, store_id, photo_url, birth_date, marital_status, bonus_eligible, created_at
		FROM secs
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	secs := make([]*domain.SEC, 0)
	for rows.Next() {
		sec := &domain.SEC{}
		dst := []any{&sec.ID, &sec.Phone, &sec.FullName, &sec.StoreID, &sec.PhotoURL, &sec.BirthDate, &sec.MaritalStatus, &sec.BonusEligible, &sec.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		secs = append(secs, sec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return secs, nil
}

func (r *Repository) UpdateSECProfile(sec *domain.SEC) error {
	query := `
		UPDATE secs
		SET photo_url = $1, birth_date = $2, marital_status = $3
		WHERE id = $4
		RETURNING phone, full_name, store_id, bonus_eligible, created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{sec.PhotoURL, sec.BirthDate, sec.MaritalStatus, sec.ID}
	dst := []any{&sec.Phone, &sec.FullName, &sec.StoreID, &sec.BonusEligible, &sec.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// SetSECBonusEligible flips the one-time bonus flag. The flag only ever moves
// from false to true.
func (r *Repository) SetSECBonusEligible(secID int64) error {
	query := `
		UPDATE secs SET bonus_eligible = TRUE WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, secID)
	return err
}
