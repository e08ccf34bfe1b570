package repository

import (
	"context"
	"time"

	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

func (r *Repository) CreateCampaign(campaign *domain.Campaign) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO campaigns (store_id, device_id, plan_id, incentive_type, incentive_value, start_date, end_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	args := []any{
		campaign.StoreID, campaign.DeviceID, campaign.PlanID, campaign.IncentiveType,
		campaign.IncentiveValue, campaign.StartDate, campaign.EndDate, campaign.Active,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&campaign.ID, &campaign.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) ListCampaigns() ([]*domain.Campaign, error) {
	query := `
		SELECT id, store_id, device_id, plan_id, incentive_type, incentive_value, start_date, end_date, active, created_at
		FROM campaigns
		ORDER BY start_date DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := make([]*domain.Campaign, 0)
	for rows.Next() {
		campaign := &domain.Campaign{}
		dst := []any{
			&campaign.ID, &campaign.StoreID, &campaign.DeviceID, &campaign.PlanID,
			&campaign.IncentiveType, &campaign.IncentiveValue, &campaign.StartDate,
			&campaign.EndDate, &campaign.Active, &campaign.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return campaigns, nil
}

// GetActiveCampaign finds the active campaign whose window covers the sale.
// Returns sql.ErrNoRows when the sale is not campaign-active.
func (r *Repository) GetActiveCampaign(storeID, deviceID, planID string, dateOfSale time.Time) (*domain.Campaign, error) {
	query := `
		SELECT id, incentive_type, incentive_value, start_date, end_date, created_at
		FROM campaigns
		WHERE store_id = $1 AND device_id = $2 AND plan_id = $3
			AND active = TRUE AND start_date <= $4 AND end_date >= $4
		ORDER BY start_date DESC
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	campaign := &domain.Campaign{
		StoreID:  storeID,
		DeviceID: deviceID,
		PlanID:   planID,
		Active:   true,
	}

	dst := []any{&campaign.ID, &campaign.IncentiveType, &campaign.IncentiveValue, &campaign.StartDate, &campaign.EndDate, &campaign.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, storeID, deviceID, planID, dateOfSale).Scan(dst...); err != nil {
		return nil, err
	}

	return campaign, nil
}

func (r *Repository) DeactivateCampaign(id int64) error {
	query := `
		UPDATE campaigns SET active = FALSE WHERE id = $1
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var returned int64
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&returned); err != nil {
		return err
	}

	return nil
}
