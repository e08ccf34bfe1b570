// Package incentive holds the heart-points leaderboard aggregation and the
// payout lifecycle for sales reports.
package incentive

import (
	"sort"
	"time"

	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

// ProfileCompletenessBonus is the one-time heart-point bonus for a SEC whose
// profile has photo, birth date and marital status populated. It is applied
// once per SEC, independent of submission count.
const ProfileCompletenessBonus = 10

// ScoreTable maps plan types to heart points. Plan types missing from Points
// score Default.
type ScoreTable struct {
	Points  map[string]int
	Default int
}

func DefaultScoreTable() ScoreTable {
	return ScoreTable{
		Points: map[string]int{
			"COMBO": 5,
			"ADLD":  3,
		},
		Default: 1,
	}
}

func (t ScoreTable) Score(planType string) int {
	if points, ok := t.Points[planType]; ok {
		return points
	}
	return t.Default
}

type LeaderboardEntry struct {
	SECID       int64  `json:"secId"`
	FullName    string `json:"fullName"`
	StoreID     string `json:"storeId"`
	TotalPoints int    `json:"totalPoints"`
	Submissions int    `json:"submissions"`
}

// Store is the slice of the repository the aggregation engine reads from.
type Store interface {
	ListPaidSalesReportsSince(windowStart time.Time) ([]*domain.SalesReport, error)
	ListSECs() ([]*domain.SEC, error)
}

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// ComputeLeaderboard aggregates paid sales reports dated on or after
// windowStart into per-SEC heart-point totals. Only paid reports count. A SEC
// with a complete profile and no qualifying sales still appears with the
// bonus alone; a SEC with neither is excluded. Ordering is descending by
// total, ties kept in grouping order.
func (e *Engine) ComputeLeaderboard(windowStart time.Time, table ScoreTable) ([]*LeaderboardEntry, error) {
	reports, err := e.store.ListPaidSalesReportsSince(windowStart)
	if err != nil {
		return nil, err
	}

	entryBySEC := make(map[int64]*LeaderboardEntry)
	entries := make([]*LeaderboardEntry, 0)

	for _, report := range reports {
		entry, ok := entryBySEC[report.SECID]
		if !ok {
			entry = &LeaderboardEntry{SECID: report.SECID}
			entryBySEC[report.SECID] = entry
			entries = append(entries, entry)
		}
		entry.TotalPoints += table.Score(report.PlanType)
		entry.Submissions++
	}

	secs, err := e.store.ListSECs()
	if err != nil {
		return nil, err
	}

	for _, sec := range secs {
		entry, ok := entryBySEC[sec.ID]
		if !ok {
			if !sec.ProfileComplete() {
				continue
			}
			// complete profile with zero sales still earns the bonus
			entry = &LeaderboardEntry{SECID: sec.ID}
			entryBySEC[sec.ID] = entry
			entries = append(entries, entry)
		}
		entry.FullName = sec.FullName
		entry.StoreID = sec.StoreID
		if sec.ProfileComplete() {
			entry.TotalPoints += ProfileCompletenessBonus
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})

	return entries, nil
}
