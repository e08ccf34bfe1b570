package domain

import (
	"time"
)

// OneTimeCode is a short-lived login code for a SEC phone number. At most one
// live code exists per phone: issuing a new one deletes the previous ones.
type OneTimeCode struct {
	ID        int64     `json:"-"`
	Phone     string    `json:"phone"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
