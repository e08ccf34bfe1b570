package incentive

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

type fakeLifecycleStore struct {
	reports map[int64]*domain.SalesReport
	failOn  map[int64]error
}

func newFakeLifecycleStore(reports ...*domain.SalesReport) *fakeLifecycleStore {
	s := &fakeLifecycleStore{
		reports: make(map[int64]*domain.SalesReport),
		failOn:  make(map[int64]error),
	}
	for _, report := range reports {
		s.reports[report.ID] = report
	}
	return s
}

func (s *fakeLifecycleStore) GetSalesReportByID(id int64) (*domain.SalesReport, error) {
	report, ok := s.reports[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return report, nil
}

func (s *fakeLifecycleStore) SetSalesReportPaidAt(id int64, paidAt time.Time) (bool, error) {
	if err := s.failOn[id]; err != nil {
		return false, err
	}
	report, ok := s.reports[id]
	if !ok {
		return false, nil
	}
	report.PaidAt = &paidAt
	return true, nil
}

func (s *fakeLifecycleStore) MarkSalesReportPaidIfUnpaid(id int64, paidAt time.Time) (bool, error) {
	if err := s.failOn[id]; err != nil {
		return false, err
	}
	report, ok := s.reports[id]
	if !ok || report.PaidAt != nil {
		return false, nil
	}
	report.PaidAt = &paidAt
	return true, nil
}

func (s *fakeLifecycleStore) DeleteSalesReport(id int64) (bool, error) {
	if err := s.failOn[id]; err != nil {
		return false, err
	}
	if _, ok := s.reports[id]; !ok {
		return false, nil
	}
	delete(s.reports, id)
	return true, nil
}

type fakeProgress struct {
	started  bool
	finished bool
	advances int
	total    int
	mutated  int
}

func (p *fakeProgress) Start(jobID string, total int) error {
	p.started = true
	p.total = total
	return nil
}

func (p *fakeProgress) Advance(jobID string, processed, mutated int) error {
	p.advances++
	p.mutated = mutated
	return nil
}

func (p *fakeProgress) Finish(jobID string, mutated int) error {
	p.finished = true
	p.mutated = mutated
	return nil
}

func TestMarkPaidOverwritesPaidAt(t *testing.T) {
	earlier := time.Now().Add(-time.Hour)
	store := newFakeLifecycleStore(&domain.SalesReport{ID: 1, PaidAt: &earlier})
	manager := NewManager(store, nil, nil)

	report, err := manager.MarkPaid(1)
	require.NoError(t, err)
	require.NotNil(t, report.PaidAt)
	assert.True(t, report.PaidAt.After(earlier))
}

func TestMarkPaidNotFound(t *testing.T) {
	manager := NewManager(newFakeLifecycleStore(), nil, nil)

	_, err := manager.MarkPaid(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscardDeletes(t *testing.T) {
	store := newFakeLifecycleStore(&domain.SalesReport{ID: 1})
	manager := NewManager(store, nil, nil)

	require.NoError(t, manager.Discard(1))
	assert.Empty(t, store.reports)
}

func TestDiscardNotFound(t *testing.T) {
	manager := NewManager(newFakeLifecycleStore(), nil, nil)
	assert.ErrorIs(t, manager.Discard(42), ErrNotFound)
}

func TestBulkApproveSkipsPaidRows(t *testing.T) {
	paidAt := time.Now().Add(-time.Hour)
	store := newFakeLifecycleStore(
		&domain.SalesReport{ID: 1},
		&domain.SalesReport{ID: 2, PaidAt: &paidAt},
		&domain.SalesReport{ID: 3},
	)
	manager := NewManager(store, nil, nil)

	count, err := manager.BulkAction("job-1", []int64{1, 2, 3}, BulkApprove)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// nothing is left to approve the second time around
	count, err = manager.BulkAction("job-2", []int64{1, 2, 3}, BulkApprove)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestBulkDiscardIgnoresPaidStatus(t *testing.T) {
	paidAt := time.Now()
	store := newFakeLifecycleStore(
		&domain.SalesReport{ID: 1},
		&domain.SalesReport{ID: 2, PaidAt: &paidAt},
	)
	manager := NewManager(store, nil, nil)

	count, err := manager.BulkAction("job-1", []int64{1, 2, 9}, BulkDiscard)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Empty(t, store.reports)
}

func TestBulkActionContinuesPastRowFailures(t *testing.T) {
	store := newFakeLifecycleStore(
		&domain.SalesReport{ID: 1},
		&domain.SalesReport{ID: 2},
		&domain.SalesReport{ID: 3},
	)
	store.failOn[2] = errors.New("connection reset")
	manager := NewManager(store, nil, nil)

	count, err := manager.BulkAction("job-1", []int64{1, 2, 3}, BulkApprove)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBulkActionRecordsProgress(t *testing.T) {
	store := newFakeLifecycleStore(
		&domain.SalesReport{ID: 1},
		&domain.SalesReport{ID: 2},
	)
	progress := &fakeProgress{}
	manager := NewManager(store, progress, nil)

	count, err := manager.BulkAction("job-1", []int64{1, 2}, BulkApprove)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.True(t, progress.started)
	assert.True(t, progress.finished)
	assert.Equal(t, 2, progress.total)
	assert.Equal(t, 2, progress.advances)
	assert.Equal(t, 2, progress.mutated)
}

type fakeNotifier struct {
	reportIDs []int64
}

func (n *fakeNotifier) PayoutProcessed(report *domain.SalesReport) {
	n.reportIDs = append(n.reportIDs, report.ID)
}

func TestMarkPaidNotifies(t *testing.T) {
	store := newFakeLifecycleStore(&domain.SalesReport{ID: 5})
	notifier := &fakeNotifier{}
	manager := NewManager(store, nil, notifier)

	_, err := manager.MarkPaid(5)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, notifier.reportIDs)
}

func TestBulkApproveNotifiesOnlyMutatedRows(t *testing.T) {
	paidAt := time.Now().Add(-time.Hour)
	store := newFakeLifecycleStore(
		&domain.SalesReport{ID: 1},
		&domain.SalesReport{ID: 2, PaidAt: &paidAt},
		&domain.SalesReport{ID: 3},
	)
	notifier := &fakeNotifier{}
	manager := NewManager(store, nil, notifier)

	count, err := manager.BulkAction("job-1", []int64{1, 2, 3}, BulkApprove)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// the already-paid row is skipped, so it gets no notification either
	assert.Equal(t, []int64{1, 3}, notifier.reportIDs)
}

func TestBulkDiscardDoesNotNotify(t *testing.T) {
	store := newFakeLifecycleStore(
		&domain.SalesReport{ID: 1},
		&domain.SalesReport{ID: 2},
	)
	notifier := &fakeNotifier{}
	manager := NewManager(store, nil, notifier)

	count, err := manager.BulkAction("job-1", []int64{1, 2}, BulkDiscard)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Empty(t, notifier.reportIDs)
}

func TestBulkActionRejectsUnknownAction(t *testing.T) {
	manager := NewManager(newFakeLifecycleStore(), nil, nil)
	_, err := manager.BulkAction("job-1", []int64{1}, BulkActionType("explode"))
	assert.Error(t, err)
}
