package repository

import (
	"context"
	"time"

	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

const salesReportColumns = `
	id, sec_id, store_id, device_id, plan_id, plan_type, plan_price, imei,
	date_of_sale, incentive_earned, paid_at, campaign_active, created_at
`

func scanSalesReport(scan func(dst ...any) error) (*domain.SalesReport, error) {
	report := &domain.SalesReport{}
	dst := []any{
		&report.ID, &report.SECID, &report.StoreID, &report.DeviceID, &report.PlanID,
		&report.PlanType, &report.PlanPrice, &report.IMEI, &report.DateOfSale,
		&report.IncentiveEarned, &report.PaidAt, &report.CampaignActive, &report.CreatedAt,
	}
	if err := scan(dst...); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Repository) CreateSalesReport(report *domain.SalesReport) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO sales_reports (sec_id, store_id, device_id, plan_id, plan_type, plan_price, imei, date_of_sale, incentive_earned, campaign_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	args := []any{
		report.SECID, report.StoreID, report.DeviceID, report.PlanID, report.PlanType,
		report.PlanPrice, report.IMEI, report.DateOfSale, report.IncentiveEarned, report.CampaignActive,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&report.ID, &report.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSalesReportByID(id int64) (*domain.SalesReport, error) {
	query := `SELECT ` + salesReportColumns + ` FROM sales_reports WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	row := r.dbpool.QueryRowContext(ctx, query, id)
	return scanSalesReport(row.Scan)
}

func (r *Repository) ListSalesReportsBySEC(secID int64) ([]*domain.SalesReport, error) {
	query := `SELECT ` + salesReportColumns + ` FROM sales_reports WHERE sec_id = $1 ORDER BY date_of_sale DESC`

	return r.listSalesReports(query, secID)
}

func (r *Repository) ListSalesReports() ([]*domain.SalesReport, error) {
	query := `SELECT ` + salesReportColumns + ` FROM sales_reports ORDER BY date_of_sale DESC`

	return r.listSalesReports(query)
}

// ListPaidSalesReportsSince returns paid reports in leaderboard grouping
// order: date of sale, then id, so repeated calls over the same rows produce
// the same sequence.
func (r *Repository) ListPaidSalesReportsSince(windowStart time.Time) ([]*domain.SalesReport, error) {
	query := `
		SELECT ` + salesReportColumns + `
		FROM sales_reports
		WHERE date_of_sale >= $1 AND paid_at IS NOT NULL
		ORDER BY date_of_sale, id
	`

	return r.listSalesReports(query, windowStart)
}

func (r *Repository) listSalesReports(query string, args ...any) ([]*domain.SalesReport, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]*domain.SalesReport, 0)
	for rows.Next() {
		report, err := scanSalesReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

// SetSalesReportPaidAt overwrites paid_at unconditionally (the single-item
// mark-paid path).
func (r *Repository) SetSalesReportPaidAt(id int64, paidAt time.Time) (bool, error) {
	query := `
		UPDATE sales_reports SET paid_at = $1 WHERE id = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, paidAt, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// MarkSalesReportPaidIfUnpaid sets paid_at only when the row is still unpaid
// (the bulk-approve path; already-paid rows are skipped).
func (r *Repository) MarkSalesReportPaidIfUnpaid(id int64, paidAt time.Time) (bool, error) {
	query := `
		UPDATE sales_reports SET paid_at = $1 WHERE id = $2 AND paid_at IS NULL
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, paidAt, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *Repository) DeleteSalesReport(id int64) (bool, error) {
	query := `
		DELETE FROM sales_reports WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
