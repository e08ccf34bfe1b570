package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

func (r *Repository) CreateRoleProfile(profile *domain.RoleProfile) error {
	storeIDs, err := json.Marshal(profile.StoreIDs)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO role_profiles (user_id, full_name, phone, email, agency_name, store_ids, parent_manager_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	args := []any{profile.UserID, profile.FullName, profile.Phone, profile.Email, profile.AgencyName, storeIDs, profile.ParentManagerID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&profile.ID, &profile.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRoleProfileByUserID(userID int64) (*domain.RoleProfile, error) {
	query := `
		SELECT id, full_name, phone, email, agency_name, store_ids, parent_manager_id, created_at
		FROM role_profiles WHERE user_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	profile := &domain.RoleProfile{
		UserID: userID,
	}

	var storeIDs []byte
	dst := []any{&profile.ID, &profile.FullName, &profile.Phone, &profile.Email, &profile.AgencyName, &storeIDs, &profile.ParentManagerID, &profile.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, userID).Scan(dst...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(storeIDs, &profile.StoreIDs); err != nil {
		return nil, err
	}

	return profile, nil
}
