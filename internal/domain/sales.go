package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type IncentiveType string

const (
	IncentiveFlat    IncentiveType = "FLAT"
	IncentivePercent IncentiveType = "PERCENT"
)

// SalesReport records one protection-plan sale by a SEC. IMEI is globally
// unique; a duplicate submission for the same device is rejected by the store.
type SalesReport struct {
	ID              int64           `json:"id"`
	SECID           int64           `json:"secId"`
	StoreID         string          `json:"storeId"`
	DeviceID        string          `json:"deviceId"`
	PlanID          string          `json:"planId"`
	PlanType        string          `json:"planType"`
	PlanPrice       decimal.Decimal `json:"planPrice"`
	IMEI            string          `json:"imei"`
	DateOfSale      time.Time       `json:"dateOfSale"`
	IncentiveEarned decimal.Decimal `json:"incentiveEarned"`
	PaidAt          *time.Time      `json:"paidAt"`
	CampaignActive  bool            `json:"campaignActive"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Campaign is a promotional window for a store/device/plan combination.
// Read-only to the aggregation engine.
type Campaign struct {
	ID             int64           `json:"id"`
	StoreID        string          `json:"storeId"`
	DeviceID       string          `json:"deviceId"`
	PlanID         string          `json:"planId"`
	IncentiveType  IncentiveType   `json:"incentiveType"`
	IncentiveValue decimal.Decimal `json:"incentiveValue"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Covers reports whether a sale on the given date at the given store for the
// given device/plan falls inside this campaign's active window.
func (c *Campaign) Covers(storeID, deviceID, planID string, dateOfSale time.Time) bool {
	if !c.Active {
		return false
	}
	if c.StoreID != storeID || c.DeviceID != deviceID || c.PlanID != planID {
		return false
	}
	return !dateOfSale.Before(c.StartDate) && !dateOfSale.After(c.EndDate)
}

// IncentiveFor resolves the incentive amount for a sale at the given plan
// price. PERCENT campaigns apply the value as a percentage of the plan price.
func (c *Campaign) IncentiveFor(planPrice decimal.Decimal) decimal.Decimal {
	if c.IncentiveType == IncentivePercent {
		return planPrice.Mul(c.IncentiveValue).Div(decimal.NewFromInt(100))
	}
	return c.IncentiveValue
}
