package domain

import (
	"slices"
)

// Capability names a group of endpoints. Routes declare the capability they
// need once; the role sets live here instead of being repeated per handler.
type Capability string

const (
	CapabilitySubmitSales      Capability = "sales:submit"
	CapabilityViewLeaderboard  Capability = "leaderboard:view"
	CapabilityReviewReports    Capability = "reports:review"
	CapabilityManageIncentives Capability = "incentives:manage"
	CapabilityManageCampaigns  Capability = "campaigns:manage"
	CapabilityApproveSignups   Capability = "signups:approve"
)

var capabilityRoles = map[Capability][]Role{
	CapabilitySubmitSales:      {RoleSEC},
	CapabilityViewLeaderboard:  {RoleSEC, RoleABM, RoleASE, RoleZSM, RoleZSE, RoleZopperAdmin, RoleSamsungAdmin},
	CapabilityReviewReports:    {RoleABM, RoleASE, RoleZSM, RoleZSE, RoleZopperAdmin, RoleSamsungAdmin},
	CapabilityManageIncentives: {RoleZopperAdmin, RoleSamsungAdmin},
	CapabilityManageCampaigns:  {RoleZopperAdmin, RoleSamsungAdmin},
	CapabilityApproveSignups:   {RoleZopperAdmin},
}

// restrictedTierCapabilities is the allowlist for UAT-flagged accounts.
// A capability absent from this set is denied to restricted accounts no
// matter what their role permits.
var restrictedTierCapabilities = map[Capability]bool{
	CapabilityViewLeaderboard: true,
}

func (r Role) Can(c Capability) bool {
	return slices.Contains(capabilityRoles[c], r)
}

func (c Capability) AllowsRestrictedTier() bool {
	return restrictedTierCapabilities[c]
}
