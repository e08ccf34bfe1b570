package incentive

import (
	"errors"
	"log/slog"
	"time"

	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

// ErrNotFound is returned when the referenced sales report does not exist.
var ErrNotFound = errors.New("incentive: sales report not found")

type BulkActionType string

const (
	BulkApprove BulkActionType = "approve"
	BulkDiscard BulkActionType = "discard"
)

// LifecycleStore is the slice of the repository the lifecycle manager mutates.
type LifecycleStore interface {
	GetSalesReportByID(id int64) (*domain.SalesReport, error)
	SetSalesReportPaidAt(id int64, paidAt time.Time) (bool, error)
	MarkSalesReportPaidIfUnpaid(id int64, paidAt time.Time) (bool, error)
	DeleteSalesReport(id int64) (bool, error)
}

// ProgressRecorder tracks bulk-job progress in a shared store so progress
// survives instance restarts and multi-instance deployments.
type ProgressRecorder interface {
	Start(jobID string, total int) error
	Advance(jobID string, processed, mutated int) error
	Finish(jobID string, mutated int) error
}

// PayoutNotifier is told about every report that transitioned to paid, on
// both the single mark-paid path and each bulk-approved row. Delivery is
// fire-and-forget; a failed notification never fails the payout.
type PayoutNotifier interface {
	PayoutProcessed(report *domain.SalesReport)
}

type Manager struct {
	store    LifecycleStore
	progress ProgressRecorder
	notifier PayoutNotifier
}

func NewManager(store LifecycleStore, progress ProgressRecorder, notifier PayoutNotifier) *Manager {
	return &Manager{
		store:    store,
		progress: progress,
		notifier: notifier,
	}
}

// MarkPaid transitions a report to paid, overwriting any earlier paid_at.
// There is deliberately no double-payment guard on this single-item path; the
// bulk approve path skips already-paid rows instead.
func (m *Manager) MarkPaid(id int64) (*domain.SalesReport, error) {
	ok, err := m.store.SetSalesReportPaidAt(id, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	report, err := m.store.GetSalesReportByID(id)
	if err != nil {
		return nil, err
	}

	if m.notifier != nil {
		m.notifier.PayoutProcessed(report)
	}

	return report, nil
}

// Discard hard-deletes the report. Paid and Discarded are both terminal.
func (m *Manager) Discard(id int64) error {
	ok, err := m.store.DeleteSalesReport(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	return nil
}

// BulkAction applies approve or discard row by row. A row failure does not
// roll back earlier rows; the returned count is the number of rows actually
// mutated, not the number requested. Approve skips already-paid rows.
func (m *Manager) BulkAction(jobID string, ids []int64, action BulkActionType) (int, error) {
	if action != BulkApprove && action != BulkDiscard {
		return 0, errors.New("incentive: unknown bulk action " + string(action))
	}

	if m.progress != nil {
		if err := m.progress.Start(jobID, len(ids)); err != nil {
			slog.Error("failed to record bulk job start", "jobId", jobID, "error", err)
		}
	}

	mutated := 0
	paidAt := time.Now()

	for i, id := range ids {
		var ok bool
		var err error

		switch action {
		case BulkApprove:
			ok, err = m.store.MarkSalesReportPaidIfUnpaid(id, paidAt)
		case BulkDiscard:
			ok, err = m.store.DeleteSalesReport(id)
		}

		if err != nil {
			// best effort: keep going and report the true count
			slog.Error("bulk action failed on row", "jobId", jobID, "reportId", id, "action", action, "error", err)
		} else if ok {
			mutated++
			if action == BulkApprove && m.notifier != nil {
				report, err := m.store.GetSalesReportByID(id)
				if err != nil {
					slog.Error("failed to load report for payout notification", "jobId", jobID, "reportId", id, "error", err)
				} else {
					m.notifier.PayoutProcessed(report)
				}
			}
		}

		if m.progress != nil {
			if err := m.progress.Advance(jobID, i+1, mutated); err != nil {
				slog.Error("failed to record bulk job progress", "jobId", jobID, "error", err)
			}
		}
	}

	if m.progress != nil {
		if err := m.progress.Finish(jobID, mutated); err != nil {
			slog.Error("failed to record bulk job finish", "jobId", jobID, "error", err)
		}
	}

	return mutated, nil
}
