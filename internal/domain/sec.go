package domain

import (
	"time"
)

// SEC is a store-level salesperson. Unlike Users, a SEC's identity is keyed
// by phone number and authenticated through one-time codes.
type SEC struct {
	ID            int64      `json:"id"`
	Phone         string     `json:"phone"`
	FullName      string     `json:"fullName"`
	StoreID       string     `json:"storeId"`
	PhotoURL      string     `json:"photoUrl"`
	BirthDate     *time.Time `json:"birthDate"`
	MaritalStatus string     `json:"maritalStatus"`
	BonusEligible bool       `json:"bonusEligible"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ProfileComplete reports whether the SEC qualifies for the one-time
// profile-completeness leaderboard bonus.
func (s *SEC) ProfileComplete() bool {
	return s.PhotoURL != "" && s.BirthDate != nil && s.MaritalStatus != ""
}
