package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMetadataValidateFor(t *testing.T) {
	adminMeta := UserMetadata{Admin: &AdminMetadata{Department: "payouts"}}
	managerMeta := UserMetadata{Manager: &ManagerMetadata{Region: "North"}}

	assert.NoError(t, adminMeta.ValidateFor(RoleZopperAdmin))
	assert.NoError(t, managerMeta.ValidateFor(RoleZSM))

	assert.Error(t, adminMeta.ValidateFor(RoleABM))
	assert.Error(t, managerMeta.ValidateFor(RoleSamsungAdmin))
	assert.Error(t, adminMeta.ValidateFor(RoleSEC))

	empty := UserMetadata{}
	assert.Error(t, empty.ValidateFor(Role("INTERN")))
}

func TestCapabilityRestrictedTierAllowlist(t *testing.T) {
	assert.True(t, CapabilityViewLeaderboard.AllowsRestrictedTier())

	// everything else is closed to restricted accounts
	denied := []Capability{
		CapabilitySubmitSales,
		CapabilityReviewReports,
		CapabilityManageIncentives,
		CapabilityManageCampaigns,
		CapabilityApproveSignups,
	}
	for _, c := range denied {
		assert.False(t, c.AllowsRestrictedTier(), "capability %s", c)
	}
}

func TestSECProfileComplete(t *testing.T) {
	birthDate := time.Date(1998, 2, 14, 0, 0, 0, 0, time.UTC)

	complete := SEC{
		PhotoURL:      "https://cdn.salesdost.example/photos/a.jpg",
		BirthDate:     &birthDate,
		MaritalStatus: "married",
	}
	assert.True(t, complete.ProfileComplete())

	missingPhoto := complete
	missingPhoto.PhotoURL = ""
	assert.False(t, missingPhoto.ProfileComplete())

	missingBirthDate := complete
	missingBirthDate.BirthDate = nil
	assert.False(t, missingBirthDate.ProfileComplete())
}

func TestCampaignCovers(t *testing.T) {
	campaign := Campaign{
		StoreID:   "STR-DEL-001",
		DeviceID:  "SM-0001",
		PlanID:    "PLAN-COMBO-01",
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Active:    true,
	}

	inWindow := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	assert.True(t, campaign.Covers("STR-DEL-001", "SM-0001", "PLAN-COMBO-01", inWindow))
	assert.True(t, campaign.Covers("STR-DEL-001", "SM-0001", "PLAN-COMBO-01", campaign.StartDate))
	assert.True(t, campaign.Covers("STR-DEL-001", "SM-0001", "PLAN-COMBO-01", campaign.EndDate))

	assert.False(t, campaign.Covers("STR-DEL-002", "SM-0001", "PLAN-COMBO-01", inWindow))
	assert.False(t, campaign.Covers("STR-DEL-001", "SM-0001", "PLAN-COMBO-01", campaign.EndDate.AddDate(0, 0, 1)))

	inactive := campaign
	inactive.Active = false
	assert.False(t, inactive.Covers("STR-DEL-001", "SM-0001", "PLAN-COMBO-01", inWindow))
}

func TestCampaignIncentiveFor(t *testing.T) {
	flat := Campaign{IncentiveType: IncentiveFlat, IncentiveValue: decimal.NewFromInt(250)}
	assert.True(t, flat.IncentiveFor(decimal.NewFromInt(1999)).Equal(decimal.NewFromInt(250)))

	percent := Campaign{IncentiveType: IncentivePercent, IncentiveValue: decimal.NewFromInt(10)}
	assert.True(t, percent.IncentiveFor(decimal.NewFromInt(2000)).Equal(decimal.NewFromInt(200)))
}

func TestTestSubmissionPassed(t *testing.T) {
	passing := TestSubmission{Score: 7, TotalQuestions: 10}
	assert.True(t, passing.Passed())

	failing := TestSubmission{Score: 6, TotalQuestions: 10}
	assert.False(t, failing.Passed())

	empty := TestSubmission{}
	assert.False(t, empty.Passed())
}
